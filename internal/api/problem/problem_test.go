package problem

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteSetsContentTypeAndStatus(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/events/", nil)

	Write(w, r, http.StatusNotFound, TypeNotFound, "Event not found", errors.New("no such row"), "test")

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var p Details
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Equal(t, TypeNotFound, p.Type)
	require.Equal(t, "Event not found", p.Title)
	require.Equal(t, http.StatusNotFound, p.Status)
	require.Equal(t, "/events/", p.Instance)
}

func TestWriteExposesErrorDetailOutsideProduction(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login/", nil)

	Write(w, r, http.StatusBadRequest, TypeValidation, "Invalid request", errors.New("boom"), "development")

	var p Details
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Equal(t, "boom", p.Detail)
}

func TestWriteHidesErrorDetailInProduction(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login/", nil)

	Write(w, r, http.StatusInternalServerError, TypeInternal, "Server error", errors.New("secret"), "production")

	var p Details
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Equal(t, http.StatusText(http.StatusInternalServerError), p.Detail)
	require.NotContains(t, w.Body.String(), "secret")
}

func TestWriteWithErrorsAttachesFieldMap(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/register/", nil)

	Write(w, r, http.StatusBadRequest, TypeValidation, "Invalid request", nil, "test",
		WithErrors(map[string]any{"email": "required"}))

	var p Details
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Equal(t, "required", p.Errors["email"])
}
