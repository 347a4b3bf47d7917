package devserver

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ReloadPath is where pages subscribe for reload events.
const ReloadPath = "/__ranger/reload"

// Reloader fans reload events out to every connected page.
type Reloader struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
	// keepAlive is the interval of comment frames that hold idle streams open.
	keepAlive time.Duration
}

func NewReloader() *Reloader {
	return &Reloader{
		clients:   map[chan string]struct{}{},
		keepAlive: 30 * time.Second,
	}
}

// Notify sends a reload event carrying buildID to every client.
func (r *Reloader) Notify(buildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ch := range r.clients {
		select {
		case ch <- buildID:
		default:
			// client is behind, it reloads on the pending event anyway
		}
	}
}

// Clients returns the number of connected pages.
func (r *Reloader) Clients() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *Reloader) subscribe() chan string {
	ch := make(chan string, 1)
	r.mu.Lock()
	r.clients[ch] = struct{}{}
	r.mu.Unlock()
	return ch
}

func (r *Reloader) unsubscribe(ch chan string) {
	r.mu.Lock()
	delete(r.clients, ch)
	r.mu.Unlock()
}

func (r *Reloader) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ch := r.subscribe()
	defer r.unsubscribe(ch)

	ticker := time.NewTicker(r.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-req.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case id := <-ch:
			fmt.Fprintf(w, "event: reload\ndata: %s\n\n", id)
			flusher.Flush()
		}
	}
}
