// Package respond writes JSON responses and decodes JSON request bodies
// for the API handlers.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/system/apierr"
	"github.com/dalemusser/studyhub/internal/app/system/inputval"
)

// MaxBodyBytes caps the size of a decoded request body.
const MaxBodyBytes = 1 << 20

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes {"message": msg} with status 200.
func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, map[string]string{"message": msg})
}

// Error writes {"detail": "..."} with the status mapped from err.
// Errors outside the apierr taxonomy are reported as a generic 500.
func Error(w http.ResponseWriter, err error) {
	JSON(w, apierr.Status(err), map[string]string{"detail": apierr.Detail(err)})
}

// Decode reads a JSON body into dst and runs struct validation on it.
// Malformed JSON and validation failures are returned as apierr.ErrBadRequest.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return apierr.BadRequest("Request body is required.")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apierr.BadRequest("Request body is required.")
		}
		return apierr.BadRequest("Request body is not valid JSON.")
	}
	if res := inputval.Validate(dst); res.HasErrors() {
		return apierr.BadRequest(res.First())
	}
	return nil
}
