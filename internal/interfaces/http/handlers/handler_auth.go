package handlers

import (
	"errors"
	"net/http"

	"github.com/manorfm/saas-admin/internal/domain"
	"github.com/manorfm/saas-admin/internal/interfaces/http/dto"
	httperrors "github.com/manorfm/saas-admin/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

const (
	msgLoggedOut      = "Logged out successfully."
	msgForgotPassword = "If your email address is in our system, you will receive a password reset link shortly."
	msgTokenValid     = "Token is valid."
	msgPasswordReset  = "Password has been updated successfully."
)

type HandlerAuth struct {
	authService domain.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService domain.AuthService, logger *zap.Logger) *HandlerAuth {
	return &HandlerAuth{
		authService: authService,
		logger:      logger,
	}
}

func (h *HandlerAuth) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !validateRequest(w, r, &req) {
		return
	}

	tokens, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			httperrors.RespondWithError(w, domain.ErrInvalidCredentials)
			return
		}
		h.logger.Error("failed to login user", zap.Error(err))
		httperrors.RespondWithError(w, domain.ErrInternal)
		return
	}

	respondJSON(w, http.StatusOK, tokens, h.logger)
}

// HandleLogout has nothing to revoke; clients drop their tokens
func (h *HandlerAuth) HandleLogout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.MessageResponse{Message: msgLoggedOut}, h.logger)
}

func (h *HandlerAuth) HandleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if !validateRequest(w, r, &req) {
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			httperrors.RespondWithError(w, domain.ErrUnauthorized)
			return
		}
		h.logger.Error("failed to refresh tokens", zap.Error(err))
		httperrors.RespondWithError(w, domain.ErrInternal)
		return
	}

	respondJSON(w, http.StatusOK, tokens, h.logger)
}

func (h *HandlerAuth) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !validateRequest(w, r, &req) {
		return
	}

	user, err := h.authService.Register(r.Context(), req.ToDomain())
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			httperrors.RespondWithError(w, domain.ErrUserAlreadyExists)
			return
		}
		h.logger.Error("failed to register user", zap.Error(err))
		httperrors.Respond(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, user, h.logger)
}

func (h *HandlerAuth) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := domain.GetUser(r.Context())
	if !ok {
		httperrors.RespondWithError(w, domain.ErrUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, user, h.logger)
}

// HandleForgotPassword answers the same way whether or not the email is known
func (h *HandlerAuth) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if !validateRequest(w, r, &req) {
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Error("forgot password request failed", zap.Error(err))
		httperrors.RespondWithError(w, domain.ErrInternal)
		return
	}

	respondJSON(w, http.StatusOK, dto.MessageResponse{Message: msgForgotPassword}, h.logger)
}

func (h *HandlerAuth) HandleVerifyResetToken(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyResetTokenRequest
	if !validateRequest(w, r, &req) {
		return
	}

	if _, err := h.authService.VerifyPasswordResetToken(r.Context(), req.Token, true); err != nil {
		h.respondResetFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.MessageResponse{Message: msgTokenValid}, h.logger)
}

func (h *HandlerAuth) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !validateRequest(w, r, &req) {
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		h.respondResetFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.MessageResponse{Message: msgPasswordReset}, h.logger)
}

// respondResetFailure reports reset token failures by kind, unlike the
// session endpoints which collapse them into one unauthorized response.
func (h *HandlerAuth) respondResetFailure(w http.ResponseWriter, err error) {
	status, derr := resetFailure(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("password reset failed", zap.Error(err))
	}
	httperrors.RespondWithStatus(w, status, derr)
}

func resetFailure(err error) (int, domain.Error) {
	withMessage := func(kind *domain.BusinessError, message string) domain.Error {
		return domain.NewBusinessError(kind.Code, message)
	}

	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, withMessage(domain.ErrTokenExpired, "Password reset token has expired.")
	case errors.Is(err, domain.ErrSignatureInvalid):
		return http.StatusUnauthorized, withMessage(domain.ErrSignatureInvalid, "Invalid password reset token signature.")
	case errors.Is(err, domain.ErrTokenNotYetValid):
		return http.StatusUnauthorized, withMessage(domain.ErrTokenNotYetValid, "Password reset token not yet valid.")
	case errors.Is(err, domain.ErrInvalidPurpose):
		return http.StatusUnauthorized, withMessage(domain.ErrInvalidPurpose, "Invalid password reset token content.")
	case errors.Is(err, domain.ErrMissingSubject):
		return http.StatusUnauthorized, withMessage(domain.ErrMissingSubject, "Invalid password reset token content.")
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, domain.ErrUserNotFound
	case errors.Is(err, domain.ErrPasswordTooLong):
		return http.StatusBadRequest, domain.ErrPasswordTooLong
	case errors.Is(err, domain.ErrCredentialUpdateFailed):
		return http.StatusInternalServerError, withMessage(domain.ErrCredentialUpdateFailed,
			"Could not update password at this time. Please try again.")
	case domain.IsTokenError(err):
		de, _ := domain.AsError(err)
		return http.StatusUnauthorized, domain.NewBusinessError(de.GetCode(), "Invalid or expired password reset token.")
	}
	return http.StatusInternalServerError, domain.ErrInternal
}
