package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/feynman-ai/feynman-ai/app/logic/v1"
	"github.com/feynman-ai/feynman-ai/app/response"
	"github.com/feynman-ai/feynman-ai/pkg/errors"
	"github.com/feynman-ai/feynman-ai/pkg/i18n"
)

type TranscribeResponse struct {
	Text string `json:"text"`
}

// TranscribeAudio 接收 multipart 音频并转写为文字。
// 音频不落盘，整体读入内存后直接交给模型
func (s *HttpSrv) TranscribeAudio(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.APIError(c, errors.New("TranscribeAudio.FormFile", i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.APIError(c, errors.New("TranscribeAudio.Open", i18n.ERROR_INTERNAL, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.APIError(c, errors.New("TranscribeAudio.ReadAll", i18n.ERROR_INTERNAL, err))
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	text, err := v1.NewAudioLogic(c, s.Core).Transcribe(mimeType, data)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, TranscribeResponse{
		Text: text,
	})
}
