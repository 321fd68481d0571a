package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"arc-web/internal/usecase"
	"arc-web/pkg/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// decodeBody reads a JSON request body into dst and answers 400 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// handleServiceError maps usecase errors to HTTP responses. Anything unknown is
// logged and reported as a generic 500.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var verr *usecase.ValidationError

	switch {
	case errors.As(err, &verr):
		log.Debug(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, "Validation failed", verr.Fields)

	case errors.Is(err, usecase.ErrInvalidCredentials):
		log.Warn(operation+" failed - invalid credentials")
		utils.ResponseUnauthorized(w, "Invalid email or password")

	case errors.Is(err, usecase.ErrEmailNotVerified),
		errors.Is(err, usecase.ErrAccountDisabled):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, capitalize(err.Error()))

	case errors.Is(err, usecase.ErrEmailTaken),
		errors.Is(err, usecase.ErrAlreadyVerified),
		errors.Is(err, usecase.ErrInvalidOrExpired),
		errors.Is(err, usecase.ErrCartEmpty),
		errors.Is(err, usecase.ErrNotSubscription),
		errors.Is(err, usecase.ErrInvalidDuration):
		log.Debug(operation+" rejected", zap.Error(err))
		utils.ResponseBadRequest(w, capitalize(err.Error()), nil)

	case errors.Is(err, usecase.ErrUserNotFound),
		errors.Is(err, usecase.ErrOrderNotFound),
		errors.Is(err, usecase.ErrProductNotFound),
		errors.Is(err, usecase.ErrCartItemNotFound):
		log.Debug(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, capitalize(err.Error()))

	case errors.Is(err, usecase.ErrOrderNotPaid),
		errors.Is(err, usecase.ErrOrderNotUnpaid),
		errors.Is(err, usecase.ErrKeyLimit):
		log.Debug(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, capitalize(err.Error()))

	case errors.Is(err, usecase.ErrMailDelivery):
		log.Error(operation+" failed - mail delivery", zap.Error(err))
		utils.ResponseInternalError(w, "Could not send email, please try again later")

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func capitalize(msg string) string {
	if msg == "" || msg[0] < 'a' || msg[0] > 'z' {
		return msg
	}
	return string(msg[0]-'a'+'A') + msg[1:]
}
