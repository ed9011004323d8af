package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"sqldeck/internal/db"
	"sqldeck/pkg/config"
)

// api wires the dispatcher to the HTTP boundary. The library itself enforces
// no deadlines; the bridge applies one per request.
type api struct {
	svc     *db.Service
	timeout time.Duration
}

type schemaRequest struct {
	ConnectionID string `json:"connectionId"`
	Database     string `json:"database,omitempty"`
}

type queryRequest struct {
	ConnectionID string `json:"connectionId"`
	SQL          string `json:"sql"`
	Database     string `json:"database,omitempty"`
}

type closeRequest struct {
	ConnectionID string `json:"connectionId"`
}

func (a *api) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/engines", a.handleEngines)
	mux.HandleFunc("/api/connect", a.handleConnect)
	mux.HandleFunc("/api/schema", a.handleSchema)
	mux.HandleFunc("/api/query", a.handleQuery)
	mux.HandleFunc("/api/close", a.handleClose)
	return mux
}

// handleEngines lists the registered adapter names.
func (a *api) handleEngines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Engines []string `json:"engines"`
	}{Engines: db.RegisteredEngines()})
}

func (a *api) handleConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var cfg config.ConnectionConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := a.requestCtx(r)
	defer cancel()

	info, err := a.svc.Connect(ctx, cfg)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (a *api) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req schemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := a.requestCtx(r)
	defer cancel()

	res, err := a.svc.ListSchema(ctx, req.ConnectionID, req.Database)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *api) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := a.requestCtx(r)
	defer cancel()

	// execution failures come back inside the result with status 200, so the
	// UI can render them inline next to the statement
	res, err := a.svc.RunQuery(ctx, req.ConnectionID, req.SQL, req.Database)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *api) handleClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req closeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := a.svc.Close(req.ConnectionID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func (a *api) requestCtx(r *http.Request) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return r.Context(), func() {}
	}
	return context.WithTimeout(r.Context(), a.timeout)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeServiceError maps the dispatcher's error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var ue *db.UnsupportedEngineError
	var ce *db.ConnectError
	switch {
	case errors.Is(err, db.ErrConnectionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &ue), errors.As(err, &ce):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
