package twin

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Fault alters the response for one path.
type Fault struct {
	// Status replaces the response with an error of this code. Zero keeps the handler.
	Status int `json:"status,omitempty"`
	// Latency delays the response. The delay ends early if the client goes away.
	Latency time.Duration `json:"latency,omitempty"`
	// Body, when set, is written verbatim with Status (200 if unset).
	Body string `json:"body,omitempty"`
}

// Controls injects faults per path and counts hits.
type Controls struct {
	mu     sync.Mutex
	faults map[string]Fault
	hits   map[string]int
}

// NewControls returns empty controls.
func NewControls() *Controls {
	return &Controls{faults: make(map[string]Fault), hits: make(map[string]int)}
}

// Set installs a fault on path, replacing any previous one.
func (c *Controls) Set(path string, f Fault) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faults[path] = f
}

// Clear removes the fault on path.
func (c *Controls) Clear(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.faults, path)
}

// Reset removes every fault and zeroes the hit counts.
func (c *Controls) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faults = make(map[string]Fault)
	c.hits = make(map[string]int)
}

// Hits returns how many requests reached path.
func (c *Controls) Hits(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits[path]
}

// AllHits copies the hit counts.
func (c *Controls) AllHits() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.hits))
	for k, v := range c.hits {
		out[k] = v
	}
	return out
}

func (c *Controls) record(path string) (Fault, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits[path]++
	f, ok := c.faults[path]
	return f, ok
}

func (c *Controls) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fault, ok := c.record(r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		if fault.Latency > 0 {
			timer := time.NewTimer(fault.Latency)
			select {
			case <-timer.C:
			case <-r.Context().Done():
				timer.Stop()
				return
			}
		}

		switch {
		case fault.Body != "":
			status := fault.Status
			if status == 0 {
				status = http.StatusOK
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(fault.Body))
		case fault.Status != 0:
			writeError(w, fault.Status, "injected fault")
		default:
			next.ServeHTTP(w, r)
		}
	})
}

type faultRequest struct {
	Path    string `json:"path"`
	Status  int    `json:"status"`
	Latency string `json:"latency"`
	Body    string `json:"body"`
}

// adminRoutes exposes the controls over HTTP for out-of-process clients.
func (t *Twin) adminRoutes(r chi.Router) {
	r.Get("/hits", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, t.controls.AllHits())
	})

	r.Post("/faults", func(w http.ResponseWriter, r *http.Request) {
		var req faultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
			writeError(w, http.StatusBadRequest, "path is required")
			return
		}
		fault := Fault{Status: req.Status, Body: req.Body}
		if req.Latency != "" {
			d, err := time.ParseDuration(req.Latency)
			if err != nil || d < 0 {
				writeError(w, http.StatusBadRequest, "invalid latency duration")
				return
			}
			fault.Latency = d
		}
		t.controls.Set(req.Path, fault)
		w.WriteHeader(http.StatusNoContent)
	})

	r.Delete("/faults", func(w http.ResponseWriter, _ *http.Request) {
		t.controls.Reset()
		w.WriteHeader(http.StatusNoContent)
	})
}
