package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/sitevoice/internal/api/dto"
	"github.com/pratik-mahalle/sitevoice/internal/api/middleware"
	"github.com/pratik-mahalle/sitevoice/internal/domain/user"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/errors"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/utils"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/validator"
)

// ProfileHandler serves the signed-in user's profile
type ProfileHandler struct {
	service   user.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(service user.Service, log *logger.Logger, val *validator.Validator) *ProfileHandler {
	return &ProfileHandler{
		service:   service,
		logger:    log,
		validator: val,
	}
}

// Me returns the current user's profile, creating it on first use
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	u, err := h.service.EnsureProfile(r.Context(), session.UserID, session.Email)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load profile")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewUserDTO(u))
}

// Update changes the business name or trade of the current user
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if appErr := utils.DecodeJSON(w, r, jsonBodyLimit, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	if errs := h.validator.Validate(req); errs != nil {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return
	}

	update := user.ProfileUpdate{BusinessName: req.BusinessName}
	if req.Trade != nil {
		trade := user.Trade(*req.Trade)
		update.Trade = &trade
	}

	u, err := h.service.UpdateProfile(r.Context(), userID, update)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to update profile")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.NewUserDTO(u))
}
