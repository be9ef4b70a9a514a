package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apperr "github.com/matzehuels/alluvial/pkg/errors"
	alio "github.com/matzehuels/alluvial/pkg/io"
	"github.com/matzehuels/alluvial/pkg/pipeline"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/override"
	"github.com/matzehuels/alluvial/pkg/render/alluvial/sink"
)

// diagramRequest is the body of layout and render requests.
type diagramRequest struct {
	Input   *alio.Input      `json:"input"`
	Options pipeline.Options `json:"options"`
	Rules   string           `json:"rules,omitempty"` // TOML
}

// contentTypes maps output formats to response media types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeDiagramRequest reads and validates a layout or render body.
func decodeDiagramRequest(w http.ResponseWriter, r *http.Request) (*diagramRequest, error) {
	var req diagramRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "decode request")
	}
	if req.Input == nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, alio.ErrEmptyInput, "missing input")
	}
	if req.Rules != "" {
		rules, err := alio.ReadRules(strings.NewReader(req.Rules))
		if err != nil {
			return nil, err
		}
		req.Options.Rules = &rules
	}
	return &req, nil
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, err := decodeDiagramRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Layout(r.Context(), req.Input, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := sink.RenderJSON(result.Diagram,
		sink.WithDiagramKey(result.DiagramKey),
		sink.WithJSONOverrides(result.Overrides),
		sink.WithCompactJSON())
	if err != nil {
		s.writeError(w, r, fmt.Errorf("encode layout: %w", err))
		return
	}
	setResultHeaders(w, result)
	writeBytes(w, contentTypes[pipeline.FormatJSON], data)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	req, err := decodeDiagramRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Options.Formats = []string{format}

	result, err := s.runner.Execute(r.Context(), req.Input, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setResultHeaders(w, result)
	writeBytes(w, contentTypes[format], result.Artifacts[format])
}

// setResultHeaders exposes the diagram key and the number of dropped input
// items.
func setResultHeaders(w http.ResponseWriter, result *pipeline.Result) {
	w.Header().Set("X-Diagram-Key", result.DiagramKey)
	w.Header().Set("X-Dropped-Items", strconv.Itoa(result.Stats.Dropped))
}

// diagramKey reads and validates the {key} URL parameter.
func diagramKey(r *http.Request) (string, error) {
	key := chi.URLParam(r, "key")
	if err := apperr.ValidateDiagramKey(key); err != nil {
		return "", err
	}
	return key, nil
}

func (s *Server) handleGetOverrides(w http.ResponseWriter, r *http.Request) {
	key, err := diagramKey(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.runner.Overrides.Load(r.Context(), key))
}

func (s *Server) handlePutRecord(w http.ResponseWriter, r *http.Request) {
	key, err := diagramKey(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := override.ParseRecord(chi.URLParam(r, "record"))
	if err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeNotFound, err, "record"))
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "read body"))
		return
	}
	set := override.NewSet()
	if err := set.Decode(rec, data); err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInvalidRecord, err, "decode %s", rec))
		return
	}
	if err := s.runner.Overrides.Save(r.Context(), key, rec, set); err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeStoreWrite, err, "save %s", rec))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetOverrides(w http.ResponseWriter, r *http.Request) {
	key, err := diagramKey(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.runner.Overrides.Reset(r.Context(), key); err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeStoreWrite, err, "reset overrides"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Responses
// =============================================================================

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code apperr.Code) int {
	switch code.Kind() {
	case apperr.KindInvalid:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: string(apperr.ErrCodeInvalidInput), Message: "request body too large"})
		return
	}

	code := apperr.GetCode(err)
	status := statusFor(code)
	body := errorBody{Error: string(code), Message: apperr.UserMessage(err)}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		if code == "" {
			body = errorBody{Error: string(apperr.ErrCodeInternal), Message: "internal error"}
		}
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
