package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/gradabroad/internal/auth"
	"github.com/JonMunkholm/gradabroad/internal/core"
	"github.com/go-chi/chi/v5"
)

// ImportResponse is the JSON body of an import.
type ImportResponse struct {
	*core.ImportResult
	Headers []string `json:"headers"`
	Message string   `json:"message"`
}

// handlePreview parses and validates the upload without writing anything.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	collection := core.Collection(chi.URLParam(r, "collection"))

	doc, fileName, err := readDocument(w, r, s.cfg.Import.MaxFileSize)
	if err != nil {
		respondError(w, r, err)
		return
	}

	preview, err := s.service.Preview(collection, fileName, doc)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, preview)
}

// handleImport writes the upload for the authenticated caller. ?mode=atomic
// selects a single all-or-nothing insert.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	collection := core.Collection(chi.URLParam(r, "collection"))

	mode, err := core.ParseImportMode(r.URL.Query().Get("mode"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	// An empty request is still handed to the service so that sign-in is
	// reported before missing rows.
	doc, fileName, err := readDocument(w, r, s.cfg.Import.MaxFileSize)
	if err != nil && !errors.Is(err, errNoInput) {
		respondError(w, r, err)
		return
	}

	result, err := s.service.Import(r.Context(), auth.CallerFromContext(r.Context()), core.ImportRequest{
		Collection: collection,
		Document:   doc,
		FileName:   fileName,
		Mode:       mode,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Error != "" {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, ImportResponse{
		ImportResult: result,
		Headers:      doc.Headers,
		Message:      result.Message(),
	})
}
