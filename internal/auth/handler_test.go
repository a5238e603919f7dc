package auth_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/auth-service/internal/auth"
	"github.com/ayush/auth-service/internal/httpx"
	"github.com/ayush/auth-service/internal/logging"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpx.ErrorBody {
	t.Helper()
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandler_MalformedBodyIsInvalidInput(t *testing.T) {
	f := newFixture(t)
	h := auth.NewHandler(f.svc, slog.New(slog.DiscardHandler), auth.CookieOptions{})

	for name, fn := range map[string]http.HandlerFunc{"signup": h.Signup, "signin": h.Signin} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			fn(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json")))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeError(t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, http.StatusBadRequest, body.StatusCode)
			assert.Equal(t, "All fields are required", body.Message)
		})
	}
	assert.Equal(t, 0, f.mem.Len())
}

func TestHandler_CookieAttributes(t *testing.T) {
	f := newFixture(t)
	h := auth.NewHandler(f.svc, slog.New(slog.DiscardHandler), auth.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	rec := httptest.NewRecorder()
	h.Signup(rec, httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"username":"alice","email":"alice@x.com","password":"secret1"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.TokenCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
}

func TestHandler_FailLogsOnlyInternal(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "test", slog.LevelInfo)
	f := newFixture(t)
	h := auth.NewHandler(f.svc, logger, auth.CookieOptions{})

	rec := httptest.NewRecorder()
	h.Fail(rec, httptest.NewRequest(http.MethodPost, "/", nil), auth.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, buf.String())

	rec = httptest.NewRecorder()
	cause := oops.Code("ACCOUNT_LOOKUP_FAILED").With("operation", "find by email").Wrap(errors.New("connection refused"))
	h.Fail(rec, httptest.NewRequest(http.MethodPost, "/", nil), auth.Internal(cause))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, http.StatusInternalServerError, body.StatusCode)
	assert.Contains(t, body.Message, "connection refused")
	assert.Contains(t, buf.String(), "request failed")
}
