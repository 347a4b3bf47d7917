package devserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/ranger/internal/project"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server serves a project's output directory while rebuilding it on change.
type Server struct {
	project  *project.Project
	reloader *Reloader
	routes   []*proxyRoute
	logger   zerolog.Logger
	outDir   string
}

type Option func(*Server)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func New(p *project.Project, opts ...Option) (*Server, error) {
	s := &Server{
		project:  p,
		reloader: NewReloader(),
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	out, err := p.OutDir()
	if err != nil {
		return nil, err
	}
	s.outDir = out

	s.routes, err = newProxies(p.Config().ProxyRules(), s.logger)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Server) Reloader() *Reloader {
	return s.reloader
}

// Handler routes reload streams, proxied prefixes and static files.
func (s *Server) Handler() http.Handler {
	static := s.withBase(s.staticHandler())

	mux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == ReloadPath {
			s.reloader.ServeHTTP(w, r)
			return
		}
		if proxy := matchProxy(s.routes, r.URL.Path); proxy != nil {
			proxy.ServeHTTP(w, r)
			return
		}
		static.ServeHTTP(w, r)
	})

	withCORS := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	})

	return otelhttp.NewHandler(AccessLog(s.logger)(withCORS.Handler(mux)), "ranger.devserver")
}

// withBase serves next under the public base path. Requests for the site root
// are redirected into the base, anything else outside it is not found.
func (s *Server) withBase(next http.Handler) http.Handler {
	prefix := basePrefix(s.project.Config().Base)
	if prefix == "" {
		return next
	}

	stripped := http.StripPrefix(prefix, next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, prefix+"/"):
			stripped.ServeHTTP(w, r)
		case r.URL.Path == "/" || r.URL.Path == prefix:
			http.Redirect(w, r, prefix+"/", http.StatusFound)
		default:
			http.NotFound(w, r)
		}
	})
}

// basePrefix returns base without its trailing slash. Absolute URLs point at
// a CDN and are not served locally.
func basePrefix(base string) string {
	if !strings.HasPrefix(base, "/") {
		return ""
	}
	return strings.TrimSuffix(base, "/")
}

// staticHandler serves files from the output directory and falls back to the
// page for unknown routes so client side routing works.
func (s *Server) staticHandler() http.Handler {
	files := http.FileServer(http.Dir(s.outDir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		name := filepath.Join(s.outDir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			w.Header().Set("Cache-Control", "no-cache")
			files.ServeHTTP(w, r)
			return
		}

		if path.Ext(r.URL.Path) != "" && !strings.HasSuffix(r.URL.Path, ".html") {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, filepath.Join(s.outDir, project.PageFile))
	})
}

// Run watches the project and serves it until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	cfg := s.project.Config()
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- s.project.Watch(ctx, ReloadPath, func(res *project.Result, err error) {
			if err != nil {
				s.logger.Error().Err(err).Msg("Rebuild failed")
				return
			}
			s.logger.Info().
				Str("build_id", res.BuildID).
				Int("clients", s.reloader.Clients()).
				Dur("duration", res.Duration).
				Msg("Rebuilt, reloading pages")
			s.reloader.Notify(res.BuildID)
		})
	}()

	srv := configureHTTPServer(addr, s.Handler())
	srv.BaseContext = func(net.Listener) context.Context { return ctx }

	serveErr := make(chan error, 1)
	go func() {
		scheme := "http"
		if cfg.HTTPS {
			scheme = "https"
		}
		s.logger.Info().Str("url", scheme+"://"+addr+basePrefix(cfg.Base)+"/").Msg("Dev server listening")

		if cfg.HTTPS {
			serveErr <- srv.ServeTLS(ln, cfg.Path(cfg.Cert), cfg.Path(cfg.Key))
			return
		}
		serveErr <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
	case err := <-watchErr:
		if err != nil {
			err = fmt.Errorf("watch failed: %w", err)
		}
		cancel()
		s.shutdown(srv)
		return err
	case err := <-serveErr:
		cancel()
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	s.shutdown(srv)
	return <-watchErr
}

func (s *Server) shutdown(srv *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Failed to shutdown dev server")
	}
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Minute,
		// event streams stay open until the page goes away
		WriteTimeout:   0,
		IdleTimeout:    5 * time.Minute,
		MaxHeaderBytes: 8 * 1024, // 8KiB
	}
}
