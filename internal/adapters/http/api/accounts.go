package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/pricewise/internal/domain/errs"
	"github.com/okian/pricewise/internal/domain/types"
	"github.com/okian/pricewise/pkg/logger"
)

// AccountDependencies is the contract required by the account handlers.
type AccountDependencies interface {
	Register(ctx context.Context, username, email, password string) (types.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	UpdateProfile(ctx context.Context, userID uint, username, profilePicture *string) (types.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registerRequest) validate() error {
	if strings.TrimSpace(r.Username) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return errs.New("api.register", errs.ErrValidation, "Username, email, and password are required")
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return errs.New("api.login", errs.ErrValidation, "Email and password are required")
	}
	return nil
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type profileRequest struct {
	Username       *string `json:"username"`
	ProfilePicture *string `json:"profile_picture"`
}

func (r profileRequest) validate() error {
	if r.Username == nil && r.ProfilePicture == nil {
		return errs.New("api.updateProfile", errs.ErrValidation, "Nothing to update")
	}
	return nil
}

type profileResponse struct {
	Message string     `json:"message"`
	User    types.User `json:"user"`
}

type resetRequest struct {
	Email string `json:"email"`
}

func (r resetRequest) validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return errs.New("api.requestReset", errs.ErrValidation, "Email is required")
	}
	return nil
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (r resetPasswordRequest) validate() error {
	if strings.TrimSpace(r.Email) == "" || strings.TrimSpace(r.Code) == "" || r.NewPassword == "" {
		return errs.New("api.resetPassword", errs.ErrValidation, "Email, code, and new password are required")
	}
	return nil
}

// AccountHandler handles registration, login, profile and password reset.
type AccountHandler struct {
	deps AccountDependencies
	log  logger.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(deps AccountDependencies, log logger.Logger) *AccountHandler {
	return &AccountHandler{deps: deps, log: log}
}

// HandleRegister handles POST /register.
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if err := req.validate(); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if _, err := h.deps.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

// HandleLogin handles POST /login.
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if err := req.validate(); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	token, err := h.deps.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token})
}

// HandleUpdateProfile handles PUT /update-profile.
func (h *AccountHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	uid, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, ErrMissingToken.Error())
		return
	}
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if err := req.validate(); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	u, err := h.deps.UpdateProfile(r.Context(), uid, req.Username, req.ProfilePicture)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Message: "Profile updated successfully", User: u})
}

// HandleRequestPasswordReset handles POST /request-password-reset. The reply
// is the same whether or not the address is registered.
func (h *AccountHandler) HandleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req resetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if err := req.validate(); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if err := h.deps.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{
		Message: "If the email is registered, a reset code has been sent",
	})
}

// HandleResetPassword handles POST /reset-password.
func (h *AccountHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if err := req.validate(); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if err := h.deps.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Password reset successfully"})
}
