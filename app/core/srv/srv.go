package srv

import (
	"github.com/feynman-ai/feynman-ai/pkg/ai"
)

// Srv 承载外部服务的驱动实例
type Srv struct {
	ai ai.Driver
}

type ApplyFunc func(*Srv)

func SetupSrvs(opts ...ApplyFunc) *Srv {
	a := &Srv{}

	for _, opt := range opts {
		opt(a)
	}
	return a
}

func ApplyAI(driver ai.Driver) ApplyFunc {
	return func(s *Srv) {
		s.ai = driver
	}
}

func (s *Srv) AI() ai.Driver {
	return s.ai
}

// GetAIStatus 获取AI系统状态
func (s *Srv) GetAIStatus() map[string]interface{} {
	if s.ai == nil {
		return map[string]interface{}{
			"status": "not_initialized",
		}
	}

	return map[string]interface{}{
		"status": "running",
		"lang":   s.ai.Lang(),
	}
}
