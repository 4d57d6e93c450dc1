package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"SignBridge/pkg/middleware"
	"SignBridge/pkg/response"
)

// 20 MB, generous for a one-minute voice memo
const maxAudioBytes = 20 << 20

func (h *Handlers) handleAudioUpload(c *gin.Context) {
	userID := middleware.SessionUser(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, "fichier audio manquant", nil)
		return
	}
	defer file.Close()
	if header.Size > maxAudioBytes {
		response.Fail(c, "fichier audio trop volumineux", nil)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		response.Fail(c, "lecture du fichier impossible", nil)
		return
	}

	artifact, err := h.uploads.UploadAudioFile(
		c.Request.Context(), userID, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		response.FailErr(c, err)
		return
	}
	response.Created(c, "fichier envoyé", artifact)
}

func (h *Handlers) handleAudioList(c *gin.Context) {
	files, err := h.uploads.ListUserAudio(c.Request.Context(), middleware.SessionUser(c))
	if err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, "fichiers audio", files)
}
