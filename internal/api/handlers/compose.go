package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cadenzalabs/composer-api/internal/apierr"
	"github.com/cadenzalabs/composer-api/internal/logger"
	"github.com/cadenzalabs/composer-api/internal/models"
	"github.com/cadenzalabs/composer-api/internal/service"
)

// ComposeHandler exposes the composition operations over HTTP.
type ComposeHandler struct {
	svc *service.CompositionService
}

func NewComposeHandler(svc *service.CompositionService) *ComposeHandler {
	return &ComposeHandler{svc: svc}
}

// GenerateMelody handles POST /generate_melody
func (h *ComposeHandler) GenerateMelody(c *gin.Context) {
	var req models.MelodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Parse(fmt.Sprintf("Invalid request body: %v", err)))
		return
	}
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	data, warnings, err := h.svc.GenerateMelody(req)
	if err != nil {
		logger.Warn("Melody generation rejected", logger.Fields{
			"request_id": c.GetString("request_id"),
			"key":        req.Key,
			"error":      err.Error(),
		})
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(data, warnings...))
}

// Reharmonize handles POST /reharmonize
func (h *ComposeHandler) Reharmonize(c *gin.Context) {
	var req models.ReharmonizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Parse(fmt.Sprintf("Invalid request body: %v", err)))
		return
	}
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	data, err := h.svc.Reharmonize(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(data))
}

// RealizeChord handles POST /realize_chord
func (h *ComposeHandler) RealizeChord(c *gin.Context) {
	var req models.RealizeChordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Parse(fmt.Sprintf("Invalid request body: %v", err)))
		return
	}
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	data, err := h.svc.RealizeChord(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(data))
}

// ExportMidi handles POST /export_midi
func (h *ComposeHandler) ExportMidi(c *gin.Context) {
	var req models.ExportMidiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Parse(fmt.Sprintf("Invalid request body: %v", err)))
		return
	}
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	data, err := h.svc.ExportMidi(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(data))
}

// TransformPhrase handles POST /transform_phrase
func (h *ComposeHandler) TransformPhrase(c *gin.Context) {
	respondError(c, apierr.New(apierr.CodeNotImplemented,
		"transform_phrase is not yet implemented."))
}

// AddVoice handles POST /add_voice
func (h *ComposeHandler) AddVoice(c *gin.Context) {
	respondError(c, apierr.New(apierr.CodeNotImplemented,
		"add_voice is not yet implemented."))
}

// respondError writes the uniform failure envelope. All engine errors are
// user-input faults, so they map to 400.
func respondError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse(err))
}
