package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/openmeet/server/internal/api/problem"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON decodes and struct-validates a request body, writing a 400
// problem on failure. Reports whether the caller should proceed.
func decodeJSON(w http.ResponseWriter, r *http.Request, env string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Invalid request body", err, env)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make(map[string]any, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields[fe.Field()] = "failed on " + fe.Tag()
			}
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
				"Invalid request body", err, env, problem.WithErrors(fields))
		} else {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
				"Invalid request body", err, env)
		}
		return false
	}
	return true
}

func pathParam(r *http.Request, key string) string {
	if r == nil {
		return ""
	}
	return r.PathValue(key)
}
