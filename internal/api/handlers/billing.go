package handlers

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/pratik-mahalle/sitevoice/internal/api/dto"
	"github.com/pratik-mahalle/sitevoice/internal/config"
	"github.com/pratik-mahalle/sitevoice/internal/domain/billing"
	"github.com/pratik-mahalle/sitevoice/internal/domain/user"
	"github.com/pratik-mahalle/sitevoice/internal/domain/webhook"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/errors"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/metrics"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/utils"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/validator"
)

// webhookBodyLimit caps webhook payloads
const webhookBodyLimit = 64 << 10

// BillingHandler handles billing and subscription related API endpoints
type BillingHandler struct {
	service   billing.Service
	users     user.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(service billing.Service, users user.Service, log *logger.Logger, val *validator.Validator) *BillingHandler {
	return &BillingHandler{
		service:   service,
		users:     users,
		logger:    log,
		validator: val,
	}
}

// ListPlans returns available subscription plans
func (h *BillingHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	current := user.PlanFree
	if u, err := h.users.GetByID(r.Context(), userID); err == nil {
		current = u.Plan
	} else if !stderrors.Is(err, user.ErrNotFound) {
		writeServiceError(w, h.logger, err, "Failed to load user plan")
		return
	}

	plans := h.service.Plans()
	out := make([]dto.PlanDTO, len(plans))
	for i, p := range plans {
		out[i] = dto.PlanDTO{
			ID:       string(p.ID),
			Name:     p.Name,
			Interval: string(p.Interval),
			Features: p.Features,
			// every pro interval counts as current for a pro user
			IsCurrent: p.ID == current,
		}
	}

	utils.WriteSuccess(w, http.StatusOK, out)
}

// CreateCheckoutSession starts a pro subscription checkout
func (h *BillingHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dto.CheckoutRequest
	if appErr := utils.DecodeJSON(w, r, jsonBodyLimit, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	if errs := h.validator.Validate(req); errs != nil {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return
	}

	url, err := h.service.CreateCheckoutSession(r.Context(), userID, config.Interval(req.Interval))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to create checkout session")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.SessionURLResponse{URL: url})
}

// CreatePortalSession opens the Stripe billing portal
func (h *BillingHandler) CreatePortalSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	url, err := h.service.CreatePortalSession(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to create portal session")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.SessionURLResponse{URL: url})
}

// Webhook receives Stripe events
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, appErr := readWebhookBody(w, r)
	if appErr != nil {
		metrics.RecordWebhook("stripe", "rejected")
		utils.WriteError(w, appErr)
		return
	}

	result, err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		metrics.RecordWebhook("stripe", webhookFailureOutcome(err))
		writeServiceError(w, h.logger, err, "Failed to handle Stripe webhook")
		return
	}

	metrics.RecordWebhook("stripe", result.Outcome())
	utils.WriteSuccess(w, http.StatusOK, result)
}

func readWebhookBody(w http.ResponseWriter, r *http.Request) ([]byte, *errors.AppError) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, webhookBodyLimit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			return nil, errors.PayloadTooLarge(webhookBodyLimit)
		}
		return nil, errors.BadRequest("Failed to read request body")
	}
	return payload, nil
}

// webhookFailureOutcome labels a failed delivery: rejected when the sender
// must not retry, failed otherwise
func webhookFailureOutcome(err error) string {
	if stderrors.Is(err, webhook.ErrInvalidSignature) || stderrors.Is(err, webhook.ErrInvalidPayload) {
		return "rejected"
	}
	return "failed"
}
