// Package static serves a read-only catalog of thoughts loaded once from the
// bundled fixture. Unlike package api it reports a missing thought in the body
// of a 200 response.
package static

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/technigo/happy-thoughts-api/fixture"
)

// Catalog provides the REST endpoints of the static service.
type Catalog struct {
	Logger *slog.Logger

	thoughts []fixture.Thought

	once      sync.Once
	mux       *http.ServeMux
	endpoints []Endpoint
}

// An Endpoint describes one registered path in the route manifest.
type Endpoint struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Middlewares []string `json:"middlewares"`
}

// New returns a Catalog over thoughts. The slice must not be modified
// afterwards.
func New(logger *slog.Logger, thoughts []fixture.Thought) *Catalog {
	return &Catalog{
		Logger:   logger,
		thoughts: thoughts,
	}
}

func (c *Catalog) setupRoutes() {
	routes := []struct {
		method  string
		path    string
		handler http.HandlerFunc
	}{
		{http.MethodGet, "/", c.listEndpoints},
		{http.MethodGet, "/thoughts", c.listThoughts},
		{http.MethodGet, "/thoughts/{id}", c.getThought},
	}

	mux := http.NewServeMux()
	index := make(map[string]int)
	for _, rt := range routes {
		pattern := rt.path
		if pattern == "/" {
			pattern = "/{$}"
		}
		mux.HandleFunc(rt.method+" "+pattern, rt.handler)

		if i, ok := index[rt.path]; ok {
			c.endpoints[i].Methods = append(c.endpoints[i].Methods, rt.method)
			continue
		}
		index[rt.path] = len(c.endpoints)
		c.endpoints = append(c.endpoints, Endpoint{
			Path:        rt.path,
			Methods:     []string{rt.method},
			Middlewares: []string{"anonymous"},
		})
	}

	c.mux = mux
}

func (c *Catalog) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.once.Do(c.setupRoutes)
	c.Logger.Info("Request received", "method", r.Method, "path", r.URL.Path)
	c.mux.ServeHTTP(w, r)
}

// Endpoints returns the route manifest served at the root path.
func (c *Catalog) Endpoints() []Endpoint {
	c.once.Do(c.setupRoutes)
	return c.endpoints
}

func (c *Catalog) respond(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		c.Logger.Error("Could not encode JSON body", "error", err.Error())
	}
}

func (c *Catalog) listEndpoints(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Endpoints []Endpoint `json:"endpoints"`
	}
	c.respond(w, response{Endpoints: c.endpoints})
}

func (c *Catalog) listThoughts(w http.ResponseWriter, r *http.Request) {
	// A single non-empty value or a repeated parameter selects hearted
	// thoughts; the values themselves are ignored.
	vals := r.URL.Query()["hearts"]
	heartedOnly := len(vals) > 1 || (len(vals) == 1 && vals[0] != "")

	out := make([]fixture.Thought, 0, len(c.thoughts))
	for _, t := range c.thoughts {
		if heartedOnly && t.Hearts <= 0 {
			continue
		}
		out = append(out, t)
	}
	c.respond(w, out)
}

func (c *Catalog) getThought(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Error string `json:"error"`
	}

	id := r.PathValue("id")
	for _, t := range c.thoughts {
		if t.ID == id {
			c.respond(w, t)
			return
		}
	}

	c.Logger.Info("Thought not found", "id", id)
	c.respond(w, response{Error: fmt.Sprintf("Thought with id %s does not exist", id)})
}
