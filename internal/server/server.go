// Package server implements the document HTTP API.
//
// The API exposes a [store.Store] of diagram documents:
//
//	GET    /healthz                     liveness probe
//	GET    /documents                   list document names
//	GET    /documents/{name}            fetch a document (XML)
//	PUT    /documents/{name}            store a document (XML body)
//	DELETE /documents/{name}            delete a document
//	POST   /documents/{name}/validate   integrity report (JSON)
//
// Stored documents are parsed on PUT so the store never holds a payload
// the codec cannot read back. Errors are returned as a JSON envelope
// carrying a stable machine-readable code.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/inklet/inklet/pkg/codec"
	ierr "github.com/inklet/inklet/pkg/errors"
	"github.com/inklet/inklet/pkg/model"
	"github.com/inklet/inklet/pkg/store"
)

// maxDocumentSize bounds PUT bodies. Diagram files are small; anything
// beyond this is a client mistake.
const maxDocumentSize = 16 << 20

// Server routes document API requests to a backing store.
type Server struct {
	store  store.Store
	logger *log.Logger
	router chi.Router
}

// New creates a Server over st. The logger must not be nil.
func New(st store.Store, logger *log.Logger) *Server {
	s := &Server{store: st, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/documents", s.handleList)
	r.Get("/documents/{name}", s.handleGet)
	r.Put("/documents/{name}", s.handlePut)
	r.Delete("/documents/{name}", s.handleDelete)
	r.Post("/documents/{name}/validate", s.handleValidate)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// logRequests is a minimal structured request logger.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status())
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"documents": names})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Last-Modified", rec.Modified.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	w.Write(rec.Data)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := ierr.ValidateDocumentName(name); err != nil {
		s.writeError(w, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize+1))
	if err != nil {
		s.writeError(w, ierr.Wrap(ierr.ErrCodeInvalidInput, err, "read body"))
		return
	}
	if len(data) > maxDocumentSize {
		s.writeError(w, ierr.New(ierr.ErrCodeInvalidInput, "document exceeds %d bytes", maxDocumentSize))
		return
	}

	// Reject payloads the codec cannot read back.
	if _, err := codec.Read(bytes.NewReader(data)); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.Put(r.Context(), name, data); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("stored document", "name", name, "bytes", len(data))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.store.Delete(r.Context(), name); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("deleted document", "name", name)
	w.WriteHeader(http.StatusNoContent)
}

// validateReport is the response body of the validate endpoint.
type validateReport struct {
	Name     string         `json:"name"`
	Pages    int            `json:"pages"`
	Elements int            `json:"elements"`
	Dangling []danglingItem `json:"dangling"`
}

type danglingItem struct {
	Page      string `json:"page"`
	Connector string `json:"connector"`
	End       string `json:"end"`
	Ref       string `json:"ref"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rec, err := s.store.Get(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}

	d, err := codec.Read(bytes.NewReader(rec.Data))
	if err != nil {
		s.writeError(w, err)
		return
	}

	report := validateReport{Name: name, Pages: d.PageCount(), Dangling: []danglingItem{}}
	for _, p := range d.Pages() {
		report.Elements += p.Len()
		for _, el := range p.Dangling() {
			if el.Connector.SourceDangling {
				report.Dangling = append(report.Dangling, danglingItem{
					Page: p.Name(), Connector: el.ID, End: "source", Ref: el.Connector.Source,
				})
			}
			if el.Connector.TargetDangling {
				report.Dangling = append(report.Dangling, danglingItem{
					Page: p.Name(), Connector: el.ID, End: "target", Ref: el.Connector.Target,
				})
			}
		}
	}
	writeJSON(w, http.StatusOK, report)
}

// =============================================================================
// Error Mapping
// =============================================================================

// errorBody is the JSON error envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    ierr.Code `json:"code"`
	Message string    `json:"message"`
}

// writeError translates core errors into HTTP status codes and the JSON
// error envelope. Unrecognized errors are reported as internal and logged.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code, status := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: ierr.UserMessage(err)}})
}

// classify maps sentinel errors from the core packages onto error codes.
func classify(err error) (ierr.Code, int) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ierr.ErrCodeDocumentNotFound, http.StatusNotFound
	case errors.Is(err, store.ErrInvalidName), ierr.Is(err, ierr.ErrCodeInvalidName):
		return ierr.ErrCodeInvalidName, http.StatusBadRequest
	case errors.Is(err, codec.ErrMalformedXML):
		return ierr.ErrCodeMalformedXML, http.StatusBadRequest
	case errors.Is(err, codec.ErrMalformedCompression):
		return ierr.ErrCodeMalformedCompression, http.StatusBadRequest
	case errors.Is(err, codec.ErrUnresolvedReference):
		return ierr.ErrCodeUnresolvedReference, http.StatusBadRequest
	case errors.Is(err, model.ErrDuplicateID):
		return ierr.ErrCodeDuplicateID, http.StatusBadRequest
	case ierr.Is(err, ierr.ErrCodeInvalidInput):
		return ierr.ErrCodeInvalidInput, http.StatusBadRequest
	default:
		return ierr.ErrCodeInternal, http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
