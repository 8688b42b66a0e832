package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pratik-mahalle/sitevoice/internal/domain/voice"
	apperrors "github.com/pratik-mahalle/sitevoice/internal/pkg/errors"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/metrics"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/validator"
)

const extractionSystemPrompt = `You turn a contractor's spoken job-site walkthrough into a project record.
Reply with a single JSON object and nothing else, using exactly these keys:
  "title": short job title (required),
  "client_name": client name if mentioned, else "",
  "site_address": job address if mentioned, else "",
  "trade": one of general, plumbing, electrical, hvac, roofing, painting, other,
  "summary": two or three sentence summary,
  "scope_items": array of {"description", "quantity", "unit"},
  "materials": array of {"name", "quantity", "unit"},
  "estimated_hours": number or null,
  "urgency": one of low, normal, high,
  "follow_ups": array of open questions for the client.
Use null for unknown quantities. Do not invent details that were not said.`

// VoiceService implements voice.Service
type VoiceService struct {
	backend       voice.Backend
	archive       voice.Archive
	validator     *validator.Validator
	healthTimeout time.Duration
	logger        *logger.Logger
}

// NewVoiceService creates a new voice service. archive may be nil.
func NewVoiceService(
	backend voice.Backend,
	archive voice.Archive,
	v *validator.Validator,
	healthTimeout time.Duration,
	log *logger.Logger,
) voice.Service {
	if healthTimeout <= 0 {
		healthTimeout = 3 * time.Second
	}
	return &VoiceService{
		backend:       backend,
		archive:       archive,
		validator:     v,
		healthTimeout: healthTimeout,
		logger:        log,
	}
}

// Extract turns a transcript or recording into project data
func (s *VoiceService) Extract(ctx context.Context, in voice.ExtractInput) (*voice.Extraction, error) {
	start := time.Now()
	input := "transcript"
	if in.Audio != nil {
		input = "audio"
	}

	out, err := s.extract(ctx, in)
	metrics.RecordExtraction(input, extractionOutcome(err), time.Since(start))
	return out, err
}

func (s *VoiceService) extract(ctx context.Context, in voice.ExtractInput) (*voice.Extraction, error) {
	out := &voice.Extraction{Transcript: strings.TrimSpace(in.Transcript)}

	if in.Audio != nil && len(in.Audio.Data) > 0 {
		text, err := s.backend.Transcribe(ctx, *in.Audio, in.Locale)
		if err != nil {
			return nil, apperrors.ProviderAPIError("voice backend", err)
		}
		out.Transcript = strings.TrimSpace(text)
		out.AudioKey = s.archiveAudio(ctx, in.UserID, *in.Audio)
	}

	if out.Transcript == "" {
		return nil, apperrors.Wrap(voice.ErrEmptyInput, apperrors.ErrCodeBadRequest,
			"transcript or audio is required", http.StatusBadRequest)
	}

	reply, err := s.backend.CompleteJSON(ctx, extractionSystemPrompt, extractionPrompt(out.Transcript, in.Trade, in.Locale))
	if err != nil {
		return nil, apperrors.ProviderAPIError("voice backend", err)
	}

	var project voice.ProjectData
	if err := json.Unmarshal([]byte(reply), &project); err != nil {
		return nil, apperrors.ProviderAPIError("voice backend",
			fmt.Errorf("%w: %v", voice.ErrInvalidOutput, err))
	}
	normalizeProject(&project, in.Trade)

	if fieldErrs := s.validator.Validate(project); fieldErrs != nil {
		s.logger.WithFields(map[string]interface{}{
			"user_id": in.UserID,
			"errors":  len(fieldErrs),
		}).Warn("Voice backend returned invalid project data")
		return nil, apperrors.ProviderAPIError("voice backend", voice.ErrInvalidOutput).WithDetails(fieldErrs)
	}

	out.Project = project
	return out, nil
}

// archiveAudio stores the recording and returns its key. Archive failures are
// logged and do not fail the extraction.
func (s *VoiceService) archiveAudio(ctx context.Context, userID string, audio voice.Audio) string {
	if s.archive == nil {
		return ""
	}
	if userID == "" {
		userID = "anonymous"
	}

	key := path.Join(userID, uuid.NewString()+path.Ext(audio.Filename))
	if err := s.archive.Put(ctx, key, audio); err != nil {
		s.logger.WithError(err).With("key", key).Warn("Failed to archive recording")
		return ""
	}
	return key
}

// Health probes the voice backend within the health timeout
func (s *VoiceService) Health(ctx context.Context) voice.HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, s.healthTimeout)
	defer cancel()

	start := time.Now()
	err := s.backend.Ping(ctx)
	status := voice.HealthStatus{
		Status:    voice.StatusOK,
		Backend:   s.backend.Name(),
		LatencyMS: time.Since(start).Milliseconds(),
		CheckedAt: time.Now().UTC(),
	}
	if err != nil {
		status.Status = voice.StatusUnreachable
		status.Error = err.Error()
		s.logger.WithError(err).Warn("Voice backend unreachable")
	}

	metrics.SetVoiceBackendUp(status.OK())
	return status
}

func extractionPrompt(transcript, trade, locale string) string {
	var b strings.Builder
	if trade != "" {
		fmt.Fprintf(&b, "The contractor's trade is %s.\n", trade)
	}
	if locale != "" {
		fmt.Fprintf(&b, "The walkthrough was recorded in %s; write the project in that language.\n", locale)
	}
	b.WriteString("Walkthrough transcript:\n")
	b.WriteString(transcript)
	return b.String()
}

// normalizeProject fills defaults the model may leave out
func normalizeProject(p *voice.ProjectData, trade string) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Urgency == "" {
		p.Urgency = voice.UrgencyNormal
	}
	if p.Trade == "" {
		p.Trade = trade
	}
	if p.ScopeItems == nil {
		p.ScopeItems = []voice.ScopeItem{}
	}
	if p.Materials == nil {
		p.Materials = []voice.Material{}
	}
	if p.FollowUps == nil {
		p.FollowUps = []string{}
	}
}

func extractionOutcome(err error) string {
	var appErr *apperrors.AppError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, voice.ErrInvalidOutput):
		return "invalid_output"
	case errors.As(err, &appErr) && appErr.StatusCode == http.StatusBadRequest:
		return "rejected"
	default:
		return "backend_error"
	}
}
