package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fpang/vibe-fashion/internal/stylist"
)

// ImageResponse is one generated look.
type ImageResponse struct {
	Base64      string `json:"base64"`
	MIMEType    string `json:"mime_type,omitempty"`
	Description string `json:"description"`
	Instruction string `json:"instruction,omitempty"`
}

// ChatResponse is the body of both styling endpoints.
type ChatResponse struct {
	Text                 string          `json:"text"`
	Images               []ImageResponse `json:"images"`
	Success              bool            `json:"success"`
	ErrorMessage         *string         `json:"error_message"`
	IntentClassification string          `json:"intent_classification,omitempty"`
}

func newChatResponse(r *stylist.Result) ChatResponse {
	resp := ChatResponse{
		Text:                 r.Summary,
		Images:               make([]ImageResponse, 0, len(r.Variants)),
		Success:              r.Success,
		IntentClassification: r.IntentLabel,
	}
	for _, v := range r.Variants {
		resp.Images = append(resp.Images, ImageResponse{
			Base64:      base64.StdEncoding.EncodeToString(v.Image.Data),
			MIMEType:    v.Image.MIMEType,
			Description: v.Description,
			Instruction: v.Instruction,
		})
	}
	if r.ErrorDetail != "" {
		detail := r.ErrorDetail
		resp.ErrorMessage = &detail
	}
	return resp
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("Failed to write JSON response")
	}
}

// httpError sends a JSON error response. The clientMsg is returned to the
// caller; internalDetails are logged but never sent.
func httpError(w http.ResponseWriter, status int, clientMsg string, internalDetails ...string) {
	if len(internalDetails) > 0 {
		log.Warn().
			Int("status", status).
			Str("clientMsg", clientMsg).
			Strs("internalDetails", internalDetails).
			Msg("Request rejected")
	}
	respondJSON(w, status, map[string]string{"error": clientMsg})
}
