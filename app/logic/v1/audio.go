package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/feynman-ai/feynman-ai/app/core"
	"github.com/feynman-ai/feynman-ai/pkg/ai"
	"github.com/feynman-ai/feynman-ai/pkg/errors"
	"github.com/feynman-ai/feynman-ai/pkg/i18n"
	"github.com/feynman-ai/feynman-ai/pkg/retry"
)

type AudioLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewAudioLogic(ctx context.Context, core *core.Core) *AudioLogic {
	return &AudioLogic{
		ctx:  ctx,
		core: core,
	}
}

// Transcribe 语音转文字，支持英文、中文与粤语
func (l *AudioLogic) Transcribe(mimeType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("AudioLogic.Transcribe.check", i18n.ERROR_EMPTY_CONTENT, nil).Code(http.StatusBadRequest)
	}

	timer := l.core.Metrics().AIRequestTimer("transcribe")
	defer timer.ObserveDuration()

	opts := retry.Media(ai.IsOverloaded).WithOnRetry(func(int) { l.core.Metrics().AIRetryInc("transcribe") })
	text, err := retry.Do(l.ctx, opts, func(ctx context.Context) (string, error) {
		return l.core.Srv().AI().TranscribeAudio(ctx, mimeType, data)
	})
	if err != nil {
		l.core.Metrics().AIErrorInc("transcribe")
		if ai.IsOverloaded(err) {
			return "", errors.New("AudioLogic.Transcribe.TranscribeAudio", i18n.ERROR_AI_OVERLOADED, err).Code(http.StatusServiceUnavailable)
		}
		return "", errors.New("AudioLogic.Transcribe.TranscribeAudio", i18n.ERROR_AI_FAILED, err)
	}

	transcript := strings.TrimSpace(text)
	if transcript == "" {
		return "", errors.New("AudioLogic.Transcribe.empty", i18n.ERROR_AI_FAILED, nil)
	}
	return transcript, nil
}
