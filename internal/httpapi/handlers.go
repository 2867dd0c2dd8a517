package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/fpang/vibe-fashion/internal/chat"
	"github.com/fpang/vibe-fashion/internal/imageutil"
	"github.com/fpang/vibe-fashion/internal/stylist"
)

// Client-facing messages for rejected input.
const (
	msgInvalidImage  = "Invalid image format. Please upload a valid image file."
	msgProcessFailed = "Failed to process the uploaded image."
	msgTextRequired  = "text is required"
	msgImageRequired = "image is required"
	msgInvalidBody   = "invalid request body"
	msgInvalidForm   = "invalid multipart form"
)

const (
	// multipartOverhead is allowed on top of the image limit for form
	// boundaries, the text field and JSON framing.
	multipartOverhead = 1 << 20
	multipartMemory   = 32 << 20
)

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Vibe Fashion API is running!",
		"status":  "healthy",
	})
}

// POST /chat
// Form fields: text (required), image (required file).
func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			s.tooLarge(w)
			return
		}
		httpError(w, http.StatusBadRequest, msgInvalidForm, err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		httpError(w, http.StatusBadRequest, msgTextRequired)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httpError(w, http.StatusBadRequest, msgImageRequired)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.opts.MaxUploadBytes+1))
	if err != nil {
		httpError(w, http.StatusBadRequest, msgProcessFailed, err.Error())
		return
	}
	if int64(len(data)) > s.opts.MaxUploadBytes {
		s.tooLarge(w)
		return
	}

	log.Debug().
		Str("filename", header.Filename).
		Str("content_type", header.Header.Get("Content-Type")).
		Int("bytes", len(data)).
		Msg("Chat upload received")

	s.style(w, r, text, data)
}

// fashionWorkflowRequest is the JSON body of POST /fashion-workflow.
type fashionWorkflowRequest struct {
	Base64Image string `json:"base64_image"`
	UserInput   string `json:"user_input"`
}

// POST /fashion-workflow
// Body: {"base64_image": "<base64 or data URL>", "user_input": "..."}
func (s *server) handleFashionWorkflow(w http.ResponseWriter, r *http.Request) {
	// Base64 inflates by 4/3.
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes*4/3+multipartOverhead)

	var req fashionWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if isTooLarge(err) {
			s.tooLarge(w)
			return
		}
		httpError(w, http.StatusBadRequest, msgInvalidBody, err.Error())
		return
	}

	text := strings.TrimSpace(req.UserInput)
	if text == "" {
		httpError(w, http.StatusBadRequest, "user_input is required")
		return
	}
	if strings.TrimSpace(req.Base64Image) == "" {
		httpError(w, http.StatusBadRequest, "base64_image is required")
		return
	}

	data, err := imageutil.DecodeBase64(req.Base64Image)
	if err != nil {
		httpError(w, http.StatusBadRequest, msgInvalidImage, err.Error())
		return
	}
	if int64(len(data)) > s.opts.MaxUploadBytes {
		s.tooLarge(w)
		return
	}

	s.style(w, r, text, data)
}

// style validates and normalizes the photo, runs the workflow and writes the
// response. The workflow itself never produces an error status.
func (s *server) style(w http.ResponseWriter, r *http.Request, text string, data []byte) {
	requestID := middleware.GetReqID(r.Context())

	if _, err := imageutil.Validate(data); err != nil {
		httpError(w, http.StatusBadRequest, msgInvalidImage, err.Error())
		return
	}
	log.Info().
		Str("request_id", requestID).
		Object("image", imageutil.Inspect(data)).
		Msg("Upload accepted")

	normalized, err := imageutil.Normalize(data, s.opts.MaxImageDimension)
	if err != nil {
		httpError(w, http.StatusBadRequest, msgProcessFailed, err.Error())
		return
	}

	result := s.workflow.Process(r.Context(), stylist.Request{
		ID:       requestID,
		Image:    chat.Image{Data: normalized, MIMEType: "image/jpeg"},
		UserText: text,
	})
	respondJSON(w, http.StatusOK, newChatResponse(result))
}

func (s *server) tooLarge(w http.ResponseWriter) {
	httpError(w, http.StatusRequestEntityTooLarge,
		fmt.Sprintf("image exceeds the %d byte upload limit", s.opts.MaxUploadBytes))
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
