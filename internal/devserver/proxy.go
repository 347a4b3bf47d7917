package devserver

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/ranger/internal/config"
)

type proxyRoute struct {
	prefix  string
	handler http.Handler
}

// newProxy builds a reverse proxy for one rule.
func newProxy(prefix string, rule config.ProxyRule, logger zerolog.Logger) (*proxyRoute, error) {
	target, err := url.Parse(rule.Target)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid proxy target %q for %s", rule.Target, prefix)
	}

	var rewrite *regexp.Regexp
	if rule.RewriteFrom != "" {
		rewrite, err = regexp.Compile(rule.RewriteFrom)
		if err != nil {
			return nil, fmt.Errorf("invalid rewrite for %s: %w", prefix, err)
		}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !rule.Secure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // dev proxies commonly target self signed upstreams
	}

	proxy := &httputil.ReverseProxy{
		Transport: transport,
		Rewrite: func(pr *httputil.ProxyRequest) {
			if rewrite != nil {
				pr.Out.URL.Path = rewrite.ReplaceAllString(pr.In.URL.Path, rule.RewriteTo)
				pr.Out.URL.RawPath = ""
			}
			pr.SetURL(target)
			pr.SetXForwarded()
			if !rule.ChangeOrigin {
				pr.Out.Host = pr.In.Host
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn().Err(err).Str("path", r.URL.Path).Str("target", rule.Target).Msg("Proxy request failed")
			w.WriteHeader(http.StatusBadGateway)
		},
	}

	return &proxyRoute{prefix: prefix, handler: proxy}, nil
}

// newProxies returns routes for rules, longest prefix first.
func newProxies(rules map[string]config.ProxyRule, logger zerolog.Logger) ([]*proxyRoute, error) {
	routes := make([]*proxyRoute, 0, len(rules))
	for prefix, rule := range rules {
		route, err := newProxy(prefix, rule, logger)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	sort.Slice(routes, func(i, j int) bool {
		if len(routes[i].prefix) != len(routes[j].prefix) {
			return len(routes[i].prefix) > len(routes[j].prefix)
		}
		return routes[i].prefix < routes[j].prefix
	})
	return routes, nil
}

func matchProxy(routes []*proxyRoute, path string) http.Handler {
	for _, route := range routes {
		if strings.HasPrefix(path, route.prefix) {
			return route.handler
		}
	}
	return nil
}
