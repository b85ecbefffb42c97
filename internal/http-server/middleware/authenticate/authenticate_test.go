package authenticate

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func serve(secretKey string, decorate func(*http.Request)) (*httptest.ResponseRecorder, *bool) {
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/joins", nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	New(logger, secretKey)(next).ServeHTTP(rec, req)
	return rec, &reached
}

func TestAcceptsAPIKeyHeader(t *testing.T) {
	rec, reached := serve("secret", func(r *http.Request) {
		r.Header.Set("X-API-Key", "secret")
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, *reached)
}

func TestAcceptsBearerToken(t *testing.T) {
	rec, reached := serve("secret", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer secret")
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, *reached)
}

func TestRejectsMissingKey(t *testing.T) {
	rec, reached := serve("secret", nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, *reached)
	require.Contains(t, rec.Body.String(), "Invalid API key")
}

func TestRejectsWrongKey(t *testing.T) {
	rec, reached := serve("secret", func(r *http.Request) {
		r.Header.Set("X-API-Key", "guess")
	})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, *reached)
}

func TestUnconfiguredKeyIsServerError(t *testing.T) {
	rec, reached := serve("", func(r *http.Request) {
		r.Header.Set("X-API-Key", "anything")
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.False(t, *reached)
	require.Contains(t, rec.Body.String(), "API key not configured")
}
