package types

// 对话角色采用 Gemini 的双角色词表，历史消息在进入驱动前统一映射
const (
	CHAT_ROLE_USER  = "user"
	CHAT_ROLE_MODEL = "model"
)

// ChatTurn 单轮历史消息，核心层不持久化，由调用方随请求携带
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NormalizeRole 将任意来源的角色名折叠为 Gemini 的两种角色
func (t ChatTurn) NormalizeRole() string {
	switch t.Role {
	case "assistant", CHAT_ROLE_MODEL:
		return CHAT_ROLE_MODEL
	default:
		return CHAT_ROLE_USER
	}
}
