package dto

// ExtractRequest is the JSON body of POST /api/voice/extract. Multipart
// uploads carry the same fields as form values next to an "audio" file.
type ExtractRequest struct {
	Transcript string `json:"transcript" validate:"max=20000"`
	Trade      string `json:"trade,omitempty" validate:"omitempty,oneof=general plumbing electrical hvac roofing painting other"`
	Locale     string `json:"locale,omitempty" validate:"omitempty,bcp47_language_tag"`
}
