package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/citescan/internal/document"
	"github.com/dgallion1/citescan/internal/pipeline"
)

// statusFor maps pipeline and loader errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, document.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, document.ErrUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, document.ErrMalformed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrNotExtracted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
