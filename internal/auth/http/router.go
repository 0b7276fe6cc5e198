package http

import (
	"net/http"
	"time"

	"github.com/AlibekovAA/fadechat/internal/auth/service"
	"github.com/AlibekovAA/fadechat/internal/common/clock"
	commonhttp "github.com/AlibekovAA/fadechat/internal/common/http"
	"github.com/AlibekovAA/fadechat/internal/common/httpmetrics"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
	"github.com/AlibekovAA/fadechat/internal/common/session"
)

const (
	prefixRegister = "Error creating an account. "
	prefixSignIn   = "Error signing in. "
	prefixSignOut  = "Error logging out. "
)

type registerRequest struct {
	Username        string `json:"username" form:"username" validate:"max=64"`
	Email           string `json:"email" form:"email" validate:"max=254"`
	Password        string `json:"password" form:"password" validate:"max=256"`
	ConfirmPassword string `json:"confirmPassword" form:"confirm-password" validate:"max=256"`
}

type signInRequest struct {
	Username string `json:"username" form:"username" validate:"max=64"`
	Password string `json:"password" form:"password" validate:"max=256"`
}

type Handler struct {
	auth    *service.AuthService
	cookies *session.Cookies
	clock   clock.Clock
	errors  *commonhttp.ErrorHandler
	log     *logger.Logger
}

func NewHandler(
	auth *service.AuthService,
	cookies *session.Cookies,
	clk clock.Clock,
	requestTimeout time.Duration,
	log *logger.Logger,
) http.Handler {
	h := &Handler{
		auth:    auth,
		cookies: cookies,
		clock:   clk,
		errors:  commonhttp.NewErrorHandler(log),
		log:     log,
	}

	mux := http.NewServeMux()
	post := func(path string, fn http.HandlerFunc) {
		httpmetrics.RegisterRoute(path)
		handler := commonhttp.RequireMethod(http.MethodPost)(commonhttp.WithTimeout(requestTimeout)(fn))
		mux.Handle(path, handler)
	}

	httpmetrics.RegisterRoute("/health")
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	post("/api/auth/register", h.register)
	post("/api/auth/signin", h.signIn)
	post("/api/auth/signout", h.signOut)
	return mux
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := commonhttp.DecodeRequest(r, &req); err != nil {
		h.errors.HandleOperationError(w, r, prefixRegister, err)
		return
	}

	_, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.errors.HandleOperationError(w, r, prefixRegister, err)
		return
	}

	commonhttp.WriteSuccess(w, "Successfully created account.", nil)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := commonhttp.DecodeRequest(r, &req); err != nil {
		h.errors.HandleOperationError(w, r, prefixSignIn, err)
		return
	}

	result, err := h.auth.SignIn(r.Context(), service.SignInInput{
		Username:      req.Username,
		Password:      req.Password,
		SourceAddress: commonhttp.GetClientIP(r),
	})
	if err != nil {
		h.errors.HandleOperationError(w, r, prefixSignIn, err)
		return
	}

	cred := session.Credential{Username: result.Username, Token: result.Token}
	if err := h.cookies.Set(w, cred, h.clock.Now()); err != nil {
		h.errors.HandleOperationError(w, r, prefixSignIn, err)
		return
	}

	commonhttp.WriteSuccess(w, "Successfully logged in.", map[string]any{
		"username": result.Username,
		"token":    result.Token,
	})
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	cred, err := h.cookies.Read(r)
	if err != nil {
		// Without a readable credential there is nothing to revoke.
		h.cookies.Clear(w)
		commonhttp.WriteSuccess(w, "Successfully logged out.", nil)
		return
	}

	if err := h.auth.SignOut(r.Context(), cred); err != nil {
		h.errors.HandleOperationError(w, r, prefixSignOut, err)
		return
	}

	h.cookies.Clear(w)
	commonhttp.WriteSuccess(w, "Successfully logged out.", nil)
}
