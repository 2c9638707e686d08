package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/technigo/happy-thoughts-api/api/validator"
)

// A DB provides a storage layer that persists thoughts.
type DB interface {
	ListThoughts(ctx context.Context, f Filter) ([]Thought, error)
	GetThought(ctx context.Context, id string) (Thought, error)
	InsertThought(ctx context.Context, t Thought) (Thought, error)
	DeleteThought(ctx context.Context, id string) error
}

// A Cache remembers the ids of deleted thoughts so repeated reads and deletes
// of them are answered without the DB. Live thoughts are never cached: their
// hearts may change outside the API.
type Cache interface {
	Deleted(ctx context.Context, id string) (bool, error)
	MarkDeleted(ctx context.Context, id string) error
	// Flush forgets every deleted id. A reset may bring ids back.
	Flush(ctx context.Context) error
}

// DefaultIDTag is the validation tag used for thought ids when API.IDTag is
// empty. It accepts MongoDB ObjectIDs.
const DefaultIDTag = "mongodb"

// API provides the REST endpoints for the application.
type API struct {
	Logger *slog.Logger
	DB     DB
	// Cache is optional.
	Cache Cache
	Val   *validator.Validator
	// IDTag is the validator tag a thought id must satisfy before the DB is
	// queried.
	IDTag string

	once sync.Once
	mux  *http.ServeMux
}

// An envelope wraps every response of the thoughts endpoints.
type envelope struct {
	Success  bool   `json:"success"`
	Response any    `json:"response"`
	Message  string `json:"message,omitempty"`
}

func (a *API) setupRoutes() {
	if a.Val == nil {
		a.Val = validator.New()
	}
	if a.IDTag == "" {
		a.IDTag = DefaultIDTag
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", a.listAll)
	mux.HandleFunc("GET /thoughts", a.listThoughts)
	mux.HandleFunc("GET /thoughts/{id}", a.getThought)
	mux.HandleFunc("POST /thoughts", a.createThought)
	mux.HandleFunc("DELETE /thoughts/{id}", a.deleteThought)

	a.mux = mux
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.once.Do(a.setupRoutes)
	a.Logger.Info("Request received", "method", r.Method, "path", r.URL.Path)
	a.mux.ServeHTTP(w, r)
}

func (a *API) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.Logger.Error("Could not encode JSON body", "error", err.Error())
	}
}

func (a *API) respondError(w http.ResponseWriter, status int, err error, msg string, payload any) {
	a.Logger.Error("Error", "status", status, "error", err.Error())
	a.respond(w, status, envelope{Success: false, Response: payload, Message: msg})
}

// thoughtID returns the path id in canonical lower case. Stores accept hex
// ids in either case but the validator tags only match lower case.
func (a *API) thoughtID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := r.PathValue("id")
	id := strings.ToLower(raw)
	if len(a.Val.Validate(id, a.IDTag)) > 0 {
		a.respondError(w, http.StatusBadRequest, fmt.Errorf("malformed id %q", raw), fmt.Sprintf("Invalid thought id %s", raw), nil)
		return "", false
	}
	return id, true
}

// knownDeleted reports whether the cache remembers id as deleted. Cache
// errors are logged and treated as a miss.
func (a *API) knownDeleted(ctx context.Context, id string) bool {
	if a.Cache == nil {
		return false
	}
	deleted, err := a.Cache.Deleted(ctx, id)
	if err != nil {
		a.Logger.Error("Could not read deleted thoughts cache", "error", err.Error())
		return false
	}
	return deleted
}

func (a *API) respondNotFound(w http.ResponseWriter, err error, id string) {
	a.respondError(w, http.StatusNotFound, err, fmt.Sprintf("Thought with id %s not found", id), nil)
}

func (a *API) listAll(w http.ResponseWriter, r *http.Request) {
	thoughts, err := a.DB.ListThoughts(r.Context(), Filter{})
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, err.Error(), nil)
		return
	}
	if thoughts == nil {
		thoughts = []Thought{}
	}
	a.respond(w, http.StatusOK, thoughts)
}

func (a *API) listThoughts(w http.ResponseWriter, r *http.Request) {
	var f Filter
	if v := r.URL.Query().Get("hearts"); v != "" {
		// Non-numeric values fall back to listing everything.
		if n, err := strconv.Atoi(v); err == nil {
			f.Hearts = &n
		}
	}

	thoughts, err := a.DB.ListThoughts(r.Context(), f)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, err.Error(), nil)
		return
	}
	a.Logger.Info("Got thoughts from DB", "count", len(thoughts))

	if len(thoughts) == 0 {
		a.respond(w, http.StatusNotFound, envelope{
			Success:  false,
			Response: []Thought{},
			Message:  "No thoughts found",
		})
		return
	}

	a.respond(w, http.StatusOK, envelope{
		Success:  true,
		Response: thoughts,
		Message:  "Thoughts found",
	})
}

func (a *API) getThought(w http.ResponseWriter, r *http.Request) {
	id, ok := a.thoughtID(w, r)
	if !ok {
		return
	}

	if a.knownDeleted(r.Context(), id) {
		a.respondNotFound(w, ErrNotFound, id)
		return
	}

	t, err := a.DB.GetThought(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		a.respondNotFound(w, err, id)
		return
	}
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, err.Error(), nil)
		return
	}

	a.respond(w, http.StatusOK, envelope{Success: true, Response: t, Message: "Thought found"})
}

func (a *API) createThought(w http.ResponseWriter, r *http.Request) {
	type (
		request struct {
			Message string `json:"message" validate:"required"`
		}
		response struct {
			Success bool                        `json:"success"`
			Data    *Thought                    `json:"data"`
			Message string                      `json:"message"`
			Errors  []validator.ValidationError `json:"errors,omitempty"`
		}
	)

	fail := func(status int, err error, msg string, errs []validator.ValidationError) {
		a.Logger.Error("Error", "status", status, "error", err.Error())
		a.respond(w, status, response{Message: msg, Errors: errs})
	}

	var body request
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		fail(http.StatusBadRequest, err, "Could not decode request body", nil)
		return
	}

	if errs := a.Val.ValidateStruct(&body); len(errs) > 0 {
		fail(http.StatusBadRequest, errors.New("validation failed"), "Could not create thought", errs)
		return
	}

	err = r.Body.Close()
	if err != nil {
		fail(http.StatusInternalServerError, err, "Could not close request body", nil)
		return
	}

	t, err := a.DB.InsertThought(r.Context(), Thought{
		Message:   body.Message,
		Hearts:    0,
		CreatedAt: time.Now(),
	})
	if errors.Is(err, ErrInvalidThought) {
		fail(http.StatusBadRequest, err, err.Error(), nil)
		return
	}
	if err != nil {
		fail(http.StatusInternalServerError, err, err.Error(), nil)
		return
	}

	a.respond(w, http.StatusCreated, response{
		Success: true,
		Data:    &t,
		Message: "Thought created",
	})
}

func (a *API) deleteThought(w http.ResponseWriter, r *http.Request) {
	id, ok := a.thoughtID(w, r)
	if !ok {
		return
	}

	if a.knownDeleted(r.Context(), id) {
		a.respondNotFound(w, ErrNotFound, id)
		return
	}

	err := a.DB.DeleteThought(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		a.respondNotFound(w, err, id)
		return
	}
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, err.Error(), nil)
		return
	}

	if a.Cache != nil {
		if err := a.Cache.MarkDeleted(r.Context(), id); err != nil {
			a.Logger.Error("Could not cache deleted thought", "error", err.Error())
		}
	}

	a.respond(w, http.StatusOK, envelope{Success: true, Response: id, Message: "Thought deleted"})
}
