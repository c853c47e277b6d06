package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"yieldScope/internal/catalog"
	"yieldScope/internal/ilmath"
)

// errBadRequest marks request-shape problems found before the domain is called.
var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error   string        `json:"error"`
	Details []fieldDetail `json:"details,omitempty"`
}

type fieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// fieldError is a validation failure on one request field.
type fieldError struct {
	Field   string
	Message string
}

func (e *fieldError) Error() string { return e.Field + ": " + e.Message }

func (e *fieldError) Unwrap() error { return errBadRequest }

type dataBody struct {
	Data any `json:"data"`
}

// encodeFailedBody is sent when a response value cannot be encoded.
const encodeFailedBody = `{"error":"Internal server error"}` + "\n"

// writeJSON encodes v before touching the response so an encoding failure
// still produces a complete 500.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	var buf bytes.Buffer
	encErr := json.NewEncoder(&buf).Encode(v)
	if encErr != nil {
		status = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString(encodeFailedBody)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil && encErr == nil {
		return err
	}
	return encErr
}

// respond writes v as JSON and logs values that could not be encoded.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	if err := writeJSON(w, status, v); err != nil {
		s.logger.Error("write response",
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID(r.Context())),
			zap.Error(err),
		)
	}
}

func (s *Server) writeData(w http.ResponseWriter, r *http.Request, v any) {
	s.respond(w, r, http.StatusOK, dataBody{Data: v})
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
}

// writeError maps domain errors to status codes. notFound is the message used
// for catalog.ErrNotFound.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var (
		inputErr *ilmath.InputError
		queryErr *catalog.QueryError
		fieldErr *fieldError
	)
	switch {
	case errors.As(err, &fieldErr):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "Validation error",
			Details: []fieldDetail{{Field: fieldErr.Field, Message: fieldErr.Message}},
		})
	case errors.As(err, &inputErr):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "Validation error",
			Details: []fieldDetail{{Field: inputErr.Field, Message: "must be a positive finite number"}},
		})
	case errors.As(err, &queryErr):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "Validation error",
			Details: []fieldDetail{{Field: queryErr.Param, Message: queryErr.Reason}},
		})
	case errors.Is(err, ilmath.ErrInvalidInput), errors.Is(err, catalog.ErrInvalidQuery), errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, catalog.ErrNotFound):
		if notFound == "" {
			notFound = "Not found"
		}
		writeJSON(w, http.StatusNotFound, errorBody{Error: notFound})
	default:
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
	}
}
