package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/asegale/ashlar/pkg/model"
)

// httpError pairs a status code with a client-facing message.
type httpError struct {
	status  int
	message string
}

func badRequest(msg string) *httpError {
	return &httpError{status: http.StatusBadRequest, message: msg}
}

func notFound(msg string) *httpError {
	return &httpError{status: http.StatusNotFound, message: msg}
}

func unprocessable(msg string) *httpError {
	return &httpError{status: http.StatusUnprocessableEntity, message: msg}
}

func internal(err error) *httpError {
	log.Printf("internal error: %v", err)
	return &httpError{status: http.StatusInternalServerError, message: "internal error"}
}

// fromError maps domain errors onto HTTP statuses: unknown element is
// 404, degenerate or missing geometry is 422, anything else is 500.
func fromError(err error) *httpError {
	switch {
	case errors.Is(err, model.ErrElementNotFound):
		return notFound(err.Error())
	case errors.Is(err, model.ErrNoGeometry):
		return unprocessable(err.Error())
	default:
		return internal(err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, e *httpError) {
	writeJSON(w, e.status, map[string]string{"error": e.message})
}

// decodeJSON reads a request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) *httpError {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid request body: " + err.Error())
	}
	return nil
}
