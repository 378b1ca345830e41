package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Gaganb-30/cloud-store/pkg/apperror"
)

// decodeJSONBody decodes r's body into v, writing a validation error
// envelope and returning false on failure.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(envelope{Error: &errorEnvelope{Code: "validation", Message: "invalid request body"}})
		return false
	}
	return true
}

// envelope is the wire shape for every handler response: {data: ...} on
// success, {error: {code, message}} on failure.
type envelope struct {
	Data  interface{}    `json:"data,omitempty"`
	Error *errorEnvelope `json:"error,omitempty"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data})
}

func writeOK(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, data)
}

func writeCreated(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusCreated, data)
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// writeAuthRequired writes a 401 when a handler needs a Principal that
// JWTAuth (or OptionalJWTAuth) did not place in the request context.
func writeAuthRequired(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(envelope{Error: &errorEnvelope{Code: "authentication", Message: "authentication required"}})
}

// writeError maps err to an apperror.Kind via mapError and writes the
// matching {error: {code, message}} envelope.
func writeError(w http.ResponseWriter, err error) {
	appErr := mapError(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperror.HTTPStatus(appErr.Kind))
	_ = json.NewEncoder(w).Encode(envelope{
		Error: &errorEnvelope{
			Code:    apperror.Code(appErr.Kind),
			Message: appErr.Message,
		},
	})
}
