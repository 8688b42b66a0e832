package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/sitevoice/internal/domain/identity"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/metrics"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/utils"
)

// IdentityHandler receives Clerk user lifecycle webhooks
type IdentityHandler struct {
	service identity.Service
	logger  *logger.Logger
}

// NewIdentityHandler creates a new identity handler
func NewIdentityHandler(service identity.Service, log *logger.Logger) *IdentityHandler {
	return &IdentityHandler{
		service: service,
		logger:  log,
	}
}

// Webhook receives Clerk events
func (h *IdentityHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, appErr := readWebhookBody(w, r)
	if appErr != nil {
		metrics.RecordWebhook("clerk", "rejected")
		utils.WriteError(w, appErr)
		return
	}

	result, err := h.service.HandleWebhook(r.Context(), payload, r.Header)
	if err != nil {
		metrics.RecordWebhook("clerk", webhookFailureOutcome(err))
		writeServiceError(w, h.logger, err, "Failed to handle Clerk webhook")
		return
	}

	metrics.RecordWebhook("clerk", result.Outcome())
	utils.WriteSuccess(w, http.StatusOK, result)
}
