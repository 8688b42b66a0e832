package handlers

import (
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/pratik-mahalle/sitevoice/internal/api/dto"
	"github.com/pratik-mahalle/sitevoice/internal/domain/voice"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/errors"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/utils"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/validator"
)

// multipartOverhead is the room left for form fields next to the audio file
const multipartOverhead = 1 << 20

// VoiceHandler handles transcript extraction endpoints
type VoiceHandler struct {
	service       voice.Service
	logger        *logger.Logger
	validator     *validator.Validator
	maxAudioBytes int64
}

// NewVoiceHandler creates a new voice handler
func NewVoiceHandler(service voice.Service, log *logger.Logger, val *validator.Validator, maxAudioBytes int64) *VoiceHandler {
	return &VoiceHandler{
		service:       service,
		logger:        log,
		validator:     val,
		maxAudioBytes: maxAudioBytes,
	}
}

// Extract turns a transcript or recording into project data
func (h *VoiceHandler) Extract(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var (
		req   dto.ExtractRequest
		audio *voice.Audio
	)
	if isMultipart(r) {
		var appErr *errors.AppError
		req, audio, appErr = h.readMultipart(w, r)
		if appErr != nil {
			utils.WriteError(w, appErr)
			return
		}
	} else if appErr := utils.DecodeJSON(w, r, jsonBodyLimit, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	if errs := h.validator.Validate(req); errs != nil {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return
	}
	if audio == nil && strings.TrimSpace(req.Transcript) == "" {
		utils.WriteError(w, errors.ValidationError("Validation failed", []validator.FieldError{
			{Field: "transcript", Message: "transcript is required"},
		}))
		return
	}

	result, err := h.service.Extract(r.Context(), voice.ExtractInput{
		UserID:     userID,
		Transcript: req.Transcript,
		Trade:      req.Trade,
		Locale:     req.Locale,
		Audio:      audio,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to extract project data")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, result)
}

// Health reports whether the voice backend is reachable
func (h *VoiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.service.Health(r.Context())
	if !status.OK() {
		utils.WriteError(w, errors.ServiceUnavailable("Voice backend is unreachable").WithDetails(status))
		return
	}
	utils.WriteSuccess(w, http.StatusOK, status)
}

func (h *VoiceHandler) readMultipart(w http.ResponseWriter, r *http.Request) (dto.ExtractRequest, *voice.Audio, *errors.AppError) {
	var req dto.ExtractRequest

	limit := h.maxAudioBytes + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			return req, nil, errors.PayloadTooLarge(limit)
		}
		return req, nil, errors.BadRequest("Invalid multipart body")
	}

	req.Transcript = r.FormValue("transcript")
	req.Trade = r.FormValue("trade")
	req.Locale = r.FormValue("locale")

	file, header, err := r.FormFile("audio")
	if stderrors.Is(err, http.ErrMissingFile) {
		return req, nil, nil
	}
	if err != nil {
		return req, nil, errors.BadRequest("Invalid audio upload")
	}
	defer file.Close()

	if header.Size > h.maxAudioBytes {
		return req, nil, errors.PayloadTooLarge(h.maxAudioBytes)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return req, nil, errors.BadRequest("Failed to read audio upload")
	}
	if len(data) == 0 {
		return req, nil, errors.ValidationError("Validation failed", []validator.FieldError{
			{Field: "audio", Message: "audio is empty"},
		})
	}

	return req, &voice.Audio{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}
