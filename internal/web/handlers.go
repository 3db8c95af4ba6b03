package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/gradabroad/internal/auth"
	"github.com/JonMunkholm/gradabroad/internal/core"
	"github.com/go-chi/chi/v5"
)

// CollectionResponse describes a collection for clients.
type CollectionResponse struct {
	core.CollectionInfo
	SchemaHint string `json:"schemaHint"`
}

// handleHealth reports liveness, database reachability and running imports.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"imports": s.service.GuardStatus(),
	}
	status := http.StatusOK

	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.pinger.Ping(ctx); err != nil {
			resp["status"] = "degraded"
			resp["database"] = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp["database"] = "ok"
		}
	}

	writeJSON(w, status, resp)
}

// handleListCollections returns every collection with its schema hint.
func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	defs := core.All()
	resp := make([]CollectionResponse, len(defs))
	for i, def := range defs {
		resp[i] = CollectionResponse{CollectionInfo: def.Info, SchemaHint: def.Info.SchemaHint()}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListRecords returns the caller's rows. ?limit caps the count.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	collection := core.Collection(chi.URLParam(r, "collection"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := s.service.ListRecords(r.Context(), auth.CallerFromContext(r.Context()), collection, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if records == nil {
		records = []core.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"collection": collection,
		"count":      len(records),
		"records":    records,
	})
}

// handleUpdateRecord applies a JSON object of column to text value.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	collection := core.Collection(chi.URLParam(r, "collection"))
	id := chi.URLParam(r, "id")

	var fields core.Row
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondError(w, r, fmt.Errorf("%w: body must be a JSON object of column to value: %v", core.ErrInvalidRecord, err))
		return
	}

	if err := s.service.UpdateRecord(r.Context(), auth.CallerFromContext(r.Context()), collection, id, fields); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "updated"})
}

// handleDeleteRecord removes one of the caller's rows.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	collection := core.Collection(chi.URLParam(r, "collection"))
	id := chi.URLParam(r, "id")

	if err := s.service.DeleteRecord(r.Context(), auth.CallerFromContext(r.Context()), collection, id); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
