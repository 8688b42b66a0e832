package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/pratik-mahalle/sitevoice/internal/api/middleware"
	"github.com/pratik-mahalle/sitevoice/internal/domain/billing"
	"github.com/pratik-mahalle/sitevoice/internal/domain/user"
	"github.com/pratik-mahalle/sitevoice/internal/domain/webhook"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/errors"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/utils"
)

// jsonBodyLimit caps JSON request bodies
const jsonBodyLimit = 1 << 20

// toAppError maps service errors onto API errors
func toAppError(err error) *errors.AppError {
	var appErr *errors.AppError
	switch {
	case stderrors.As(err, &appErr):
		return appErr
	case stderrors.Is(err, user.ErrNotFound):
		return errors.NotFound("User")
	case stderrors.Is(err, user.ErrCustomerTaken):
		return errors.Conflict("Billing customer is linked to another account")
	case stderrors.Is(err, billing.ErrNoCustomer):
		return errors.Conflict("No billing account exists yet; start a checkout first")
	case stderrors.Is(err, webhook.ErrInvalidSignature):
		return errors.InvalidSignature(err)
	case stderrors.Is(err, webhook.ErrInvalidPayload):
		return errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid webhook payload", http.StatusBadRequest)
	default:
		return errors.Internal("Internal server error", err)
	}
}

// writeServiceError writes err as an API error, logging server-side failures
func writeServiceError(w http.ResponseWriter, log *logger.Logger, err error, msg string) {
	appErr := toAppError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		log.ErrorWithErr(err, msg)
	}
	utils.WriteError(w, appErr)
}

// requireUserID returns the signed-in user id or writes a 401
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return "", false
	}
	return userID, true
}
