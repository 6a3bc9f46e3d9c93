package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/matzehuels/jscadpack/pkg/buildinfo"
	"github.com/matzehuels/jscadpack/pkg/deps"
	errs "github.com/matzehuels/jscadpack/pkg/errors"
	"github.com/matzehuels/jscadpack/pkg/pipeline"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// OrderResponse is the JSON response for POST /order.
type OrderResponse struct {
	Order     []string            `json:"order"`
	Libraries []string            `json:"libraries"`
	Deps      map[string][]string `json:"dependencies"`
	Passes    int                 `json:"passes"`
	Cached    bool                `json:"cached"`
}

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Code       errs.Code `json:"code"`
	Message    string    `json:"message"`
	RequestID  string    `json:"request_id,omitempty"`
	Unresolved []string  `json:"unresolved,omitempty"`
	Cycle      []string  `json:"cycle,omitempty"`
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
	}
}

func (s *Server) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, s.stats.Snapshot())
	}
}

func (s *Server) handleOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		manifest, err := readBody(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		res, err := s.runner.Order(r.Context(), manifest, s.options(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		order := res.Resolution.Order
		if order == nil {
			order = deps.Ordering{}
		}
		writeJSON(w, http.StatusOK, OrderResponse{
			Order:     order,
			Libraries: res.Libraries,
			Deps:      res.Resolution.Graph.Deps,
			Passes:    res.Resolution.Passes,
			Cached:    res.CacheHit,
		})
	}
}

func (s *Server) handleBundle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		manifest, err := readBody(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var buf bytes.Buffer
		if _, err := s.runner.Bundle(r.Context(), manifest, pipeline.NewWriterSink(&buf, s.header), s.options(r)); err != nil {
			s.writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

// options returns the base options with per-request overrides applied.
// "?refresh=1" bypasses cached orderings.
func (s *Server) options(r *http.Request) pipeline.Options {
	opts := s.opts
	switch r.URL.Query().Get("refresh") {
	case "1", "true":
		opts.Refresh = true
	}
	return opts
}

func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxManifestSize+1))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read request body")
	}
	if len(data) > maxManifestSize {
		return nil, errs.New(errs.ErrCodeInvalidInput, "request body exceeds %d bytes", maxManifestSize)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidManifest, "empty package.json")
	}
	return data, nil
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodePackageNotFound, errs.ErrCodeNotFound:
		return http.StatusNotFound
	case errs.ErrCodeCircularDependency:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeInvalidManifest, errs.ErrCodeInvalidInput, errs.ErrCodeInvalidPackage:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	status := statusFor(code)

	resp := ErrorResponse{
		Code:      code,
		Message:   errs.UserMessage(err),
		RequestID: requestIDFrom(r.Context()),
	}
	var ce *deps.CircularDependencyError
	if errors.As(err, &ce) {
		resp.Unresolved = ce.Unresolved
		resp.Cycle = ce.Cycle
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", resp.RequestID, "error", err)
	} else {
		s.logger.Warn("request rejected", "id", resp.RequestID, "code", code, "error", err)
	}
	writeJSON(w, status, resp)
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
