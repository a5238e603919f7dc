package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ayush/auth-service/internal/httpx"
	"github.com/ayush/auth-service/internal/logging"
	"github.com/ayush/auth-service/internal/models"
)

// CookieOptions are the attributes set on the access_token cookie. The zero
// value sets HttpOnly only.
type CookieOptions struct {
	Secure   bool
	SameSite http.SameSite
}

type accountIDKey struct{}

// WithAccountID stores an authenticated account id in ctx.
func WithAccountID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, accountIDKey{}, id)
}

// AccountIDFrom returns the authenticated account id stored in ctx.
func AccountIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDKey{}).(string)
	return id, ok && id != ""
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc    *Service
	logger *slog.Logger
	cookie CookieOptions
}

func NewHandler(svc *Service, logger *slog.Logger, cookie CookieOptions) *Handler {
	return &Handler{svc: svc, logger: logger, cookie: cookie}
}

// Signup creates an account, sets the token cookie and responds 201.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Fail(w, r, ErrInvalidInput)
		return
	}

	session, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.setToken(w, session.Token)
	httpx.WriteJSON(w, http.StatusCreated, session.Account)
}

// Signin authenticates an account, sets the token cookie and responds 200.
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req models.SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Fail(w, r, ErrInvalidInput)
		return
	}

	session, err := h.svc.Signin(r.Context(), req)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.setToken(w, session.Token)
	httpx.WriteJSON(w, http.StatusOK, session.Account)
}

// Me returns the currently authenticated account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := AccountIDFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	view, err := h.svc.Account(r.Context(), id)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

// Fail is the terminal error writer: it classifies err, logs internal
// failures and writes the uniform failure body.
func (h *Handler) Fail(w http.ResponseWriter, r *http.Request, err error) {
	classified := Classify(err)
	if classified.Kind == KindInternal {
		logging.LogError(r.Context(), h.logger, "request failed", err)
	}
	httpx.WriteError(w, classified.Status(), classified.Message)
}

func (h *Handler) setToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.SameSite,
	})
}
