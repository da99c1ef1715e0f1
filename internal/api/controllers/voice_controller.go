package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"tripwise/internal/services"
	"tripwise/pkg/utils"
)

// MaxAudioBytes is the transcription provider's upload limit.
const MaxAudioBytes = 25 << 20

type VoiceController struct {
	voiceService services.VoiceServiceInterface
}

func NewVoiceController(voiceService services.VoiceServiceInterface) *VoiceController {
	return &VoiceController{voiceService: voiceService}
}

// Transcribe godoc
// @Summary Speech to text
// @Tags Voice
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file true "Recorded audio"
// @Param language formData string false "Language code" default(zh)
// @Success 200 {object} utils.APIResponse{data=response_models.TranscriptionResponse}
// @Failure 400 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /voice/transcribe [post]
func (v *VoiceController) Transcribe(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxAudioBytes+1<<20)

	header, err := c.FormFile("audio")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "audio file is required")
		return
	}
	if header.Size > MaxAudioBytes {
		utils.RespondError(c, http.StatusRequestEntityTooLarge, "audio file is larger than 25 MB")
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "audio file could not be read")
		return
	}
	defer file.Close()

	result, err := v.voiceService.Transcribe(c.Request.Context(), file, header.Filename, c.PostForm("language"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "")
}
