package adaptor

import (
	"net"
	"net/http"

	"arc-web/internal/dto/request"
	"arc-web/internal/dto/response"
	"arc-web/internal/usecase"
	"arc-web/pkg/utils"

	"go.uber.org/zap"
)

// resetRequestedMessage is returned whether or not the address has an account.
const resetRequestedMessage = "If an account exists for this email, a reset link has been sent."

type AuthHandler struct {
	auth         usecase.AuthService
	verification usecase.VerificationService
	log          *zap.Logger
}

func NewAuthHandler(auth usecase.AuthService, verification usecase.VerificationService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		verification: verification,
		log:          log.With(zap.String("handler", "auth")),
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "register")
		return
	}

	utils.ResponseRaw(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.UserAgent = r.UserAgent()
	req.IPAddress = clientIP(r)

	resp, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "login")
		return
	}

	utils.ResponseSuccess(w, "Login successful", resp)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.auth.Logout(r.Context(), identity.SessionID); err != nil {
		handleServiceError(w, h.log, err, "logout")
		return
	}

	utils.ResponseSuccess(w, "Logout successful", nil)
}

// VerifyEmail handles POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyEmailRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.verification.VerifyEmail(r.Context(), &req); err != nil {
		handleServiceError(w, h.log, err, "verify email")
		return
	}

	utils.ResponseRaw(w, http.StatusOK, response.SuccessResponse{Success: true})
}

// ResendCode handles POST /api/auth/resend-code
func (h *AuthHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req request.ResendCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.verification.ResendCode(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "resend code")
		return
	}

	utils.ResponseRaw(w, http.StatusOK, resp)
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.verification.RequestPasswordReset(r.Context(), &req); err != nil {
		handleServiceError(w, h.log, err, "request password reset")
		return
	}

	utils.ResponseRaw(w, http.StatusOK, response.MessageResponse{Message: resetRequestedMessage})
}

// UpdatePassword handles POST /api/auth/update-password
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req request.UpdatePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.verification.UpdatePassword(r.Context(), &req); err != nil {
		handleServiceError(w, h.log, err, "update password")
		return
	}

	utils.ResponseRaw(w, http.StatusOK, response.MessageResponse{Message: "Password updated. Please log in again."})
}

// ValidateResetToken handles GET /api/auth/validate-reset-token?token=
func (h *AuthHandler) ValidateResetToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		utils.ResponseRaw(w, http.StatusOK, response.ValidResponse{Valid: false})
		return
	}

	valid, err := h.verification.ValidateResetToken(r.Context(), token)
	if err != nil {
		handleServiceError(w, h.log, err, "validate reset token")
		return
	}

	utils.ResponseRaw(w, http.StatusOK, response.ValidResponse{Valid: valid})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
