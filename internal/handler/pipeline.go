package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"SignBridge/pkg/middleware"
	"SignBridge/pkg/response"
)

func (h *Handlers) handleRecordingStart(c *gin.Context) {
	userID := middleware.SessionUser(c)
	if err := h.controller.BeginRecording(userID); err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, "enregistrement démarré", gin.H{"state": h.controller.StateOf(userID)})
}

func (h *Handlers) handleRecordingCancel(c *gin.Context) {
	userID := middleware.SessionUser(c)
	h.controller.CancelRecording(userID)
	response.Success(c, "enregistrement annulé", gin.H{"state": h.controller.StateOf(userID)})
}

func (h *Handlers) handlePipelineState(c *gin.Context) {
	userID := middleware.SessionUser(c)
	response.Success(c, "état du pipeline", gin.H{"state": h.controller.StateOf(userID)})
}

// handleVoiceToSign accepts the finished recording and runs the full
// pipeline. The run itself never fails; only entry is guarded.
func (h *Handlers) handleVoiceToSign(c *gin.Context) {
	userID := middleware.SessionUser(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, "fichier audio manquant", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		response.Fail(c, "lecture du fichier impossible", nil)
		return
	}

	if err := h.controller.BeginProcessing(userID); err != nil {
		response.FailErr(c, err)
		return
	}
	defer h.controller.Finish(userID)

	result := h.voiceToSign.Process(
		c.Request.Context(), userID, header.Filename, header.Header.Get("Content-Type"), data)
	response.Success(c, "traduction terminée", result)
}

func (h *Handlers) handleSignToVoice(c *gin.Context) {
	var req struct {
		Ticks int `json:"ticks"`
	}
	// body is optional, default is a short detection phase
	_ = c.ShouldBindJSON(&req)
	if req.Ticks <= 0 || req.Ticks > 10 {
		req.Ticks = 3
	}

	result, err := h.signToVoice.Detect(c.Request.Context(), middleware.SessionUser(c), req.Ticks)
	if err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, "détection terminée", result)
}
