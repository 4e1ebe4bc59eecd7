package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"lazo-pipeline/internal/api/errors"
	"lazo-pipeline/internal/api/middleware"
	"lazo-pipeline/internal/api/v1/dto"
	"lazo-pipeline/internal/api/v1/services"
	"lazo-pipeline/internal/app/api/provider"
	"lazo-pipeline/internal/app/pipeline"
)

// DefaultMaxAudioBytes caps an uploaded recording at 100MB
const DefaultMaxAudioBytes int64 = 100 << 20

// SessionHandler handles session-related API endpoints
type SessionHandler struct {
	service       services.SessionService
	maxAudioBytes int64
}

// NewSessionHandler creates a new session handler. maxAudioBytes <= 0 uses DefaultMaxAudioBytes.
func NewSessionHandler(service services.SessionService, maxAudioBytes int64) *SessionHandler {
	if maxAudioBytes <= 0 {
		maxAudioBytes = DefaultMaxAudioBytes
	}
	return &SessionHandler{
		service:       service,
		maxAudioBytes: maxAudioBytes,
	}
}

// Submit handles POST /api/v1/sessions
// Accepts a multipart recording and answers 202 once the job exists
func (h *SessionHandler) Submit(c *gin.Context) {
	var form dto.SubmitSessionForm
	if err := middleware.ValidateForm(c, &form); err != nil {
		middleware.HandleError(c, err)
		return
	}

	audio, err := h.readAudio(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	audio.Language = strings.TrimSpace(form.InputLanguage)

	userID := strings.TrimSpace(form.UserID)
	if userID == "" {
		userID = c.GetString("user_id")
	}
	if userID != "" {
		c.Set("user_id", userID)
	}

	response, err := h.service.Submit(c.Request.Context(), &pipeline.SubmitRequest{
		UserID:         userID,
		Audio:          audio,
		OutputLanguage: strings.TrimSpace(form.OutputLanguage),
		NoteFormat:     form.Format(),
		Patient:        form.Patient(),
		HighPrecision:  form.HighPrecision,
	})
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.SuccessResponse{
		Code:    http.StatusAccepted,
		Data:    response,
		Message: "Session accepted for processing",
	})
}

// readAudio loads the "audio" part. A missing or empty part yields a nil
// payload so the pipeline rejects it with its own missing-audio error.
func (h *SessionHandler) readAudio(c *gin.Context) (*provider.AudioInput, error) {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return &provider.AudioInput{}, nil
	}
	if fileHeader.Size > h.maxAudioBytes {
		return nil, errors.NewBadRequestError(fmt.Sprintf("Audio file exceeds %d MB", h.maxAudioBytes>>20))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, errors.NewBadRequestError("Failed to read audio file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxAudioBytes+1))
	if err != nil {
		return nil, errors.NewBadRequestError("Failed to read audio file")
	}
	if int64(len(data)) > h.maxAudioBytes {
		return nil, errors.NewBadRequestError(fmt.Sprintf("Audio file exceeds %d MB", h.maxAudioBytes>>20))
	}

	return &provider.AudioInput{
		Data:     data,
		FileName: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
	}, nil
}

// Get handles GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		middleware.HandleError(c, errors.NewBadRequestError("Invalid session ID"))
		return
	}

	response, err := h.service.GetSession(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Code: http.StatusOK, Data: response})
}

// Plan handles GET /api/v1/users/:id/plan
func (h *SessionHandler) Plan(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	if userID == "" {
		middleware.HandleError(c, errors.NewBadRequestError("Invalid user ID"))
		return
	}

	response, err := h.service.GetPlan(c.Request.Context(), userID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Code: http.StatusOK, Data: response})
}

// Action handles POST /api/v1/ai-actions
func (h *SessionHandler) Action(c *gin.Context) {
	var req dto.AIActionRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}
	if req.UserID == "" {
		req.UserID = c.GetString("user_id")
	}

	response, err := h.service.RunAction(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Code: http.StatusOK, Data: response})
}
