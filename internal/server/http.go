package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Router returns an HTTP mux exposing the same tools as the MCP transport:
//
//	GET  /healthz       liveness check
//	GET  /tools         tool definitions
//	POST /tools/{name}  run a tool; the body holds its arguments
//
// Tool results are returned as JSON. A malformed body is 400, an unknown tool
// 404 and a failed tool 422 with {"error": "..."}.
func (s *Server) Router() chi.Router {
	root := chi.NewRouter()
	root.Use(middleware.RequestID)
	root.Use(middleware.Recoverer)
	root.Use(s.requestLogger)

	root.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
	})
	root.Get("/tools", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, GetToolDefinitions())
	})
	root.Post("/tools/{name}", s.httpCallTool)
	return root
}

func (s *Server) httpCallTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if len(body) == 0 {
		body = []byte(`{}`)
	}
	if !json.Valid(body) {
		respondError(w, http.StatusBadRequest, errors.New("request body is not valid JSON"))
		return
	}

	result, err := s.executeTool(name, body)
	switch {
	case errors.Is(err, ErrUnknownTool):
		respondError(w, http.StatusNotFound, err)
	case err != nil:
		s.log.Warn("tool failed", "tool", name, "error", err)
		respondError(w, http.StatusUnprocessableEntity, err)
	default:
		respondJSON(w, http.StatusOK, result)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// respondJSON encodes v before writing the header so an unencodable value
// becomes a 500 rather than a truncated 200.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{"error": err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
