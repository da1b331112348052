package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildGenerateTreePrompt(t *testing.T) {
	prompt := BuildGenerateTreePrompt("Python List", "English")
	assert.Contains(t, prompt, `"Python List"`)
	assert.Contains(t, prompt, "parentId")
	assert.NotContains(t, prompt, "{topic}")
}

// 检测到的主题语言要注入到语言自适应要求里
func TestBuildGenerateTreePromptCarriesDetectedLang(t *testing.T) {
	prompt := BuildGenerateTreePrompt("二分搜尋", "Mandarin")
	assert.Contains(t, prompt, "主題語言為：Mandarin")
	assert.NotContains(t, prompt, "{topic_lang}")
}

func TestBuildChatSystemInstructionWithoutRag(t *testing.T) {
	instruction := BuildChatSystemInstruction("遞迴", "函數呼叫自身", "")
	assert.Contains(t, instruction, "遞迴")
	assert.Contains(t, instruction, "函數呼叫自身")
	assert.Contains(t, instruction, FLASHCARD_TOOL_NAME)
	assert.NotContains(t, instruction, "【參考筆記】")
}

func TestBuildChatSystemInstructionWithRag(t *testing.T) {
	instruction := BuildChatSystemInstruction("遞迴", "", "- 遞迴需要終止條件")
	assert.Contains(t, instruction, "【參考筆記】")
	assert.Contains(t, instruction, "遞迴需要終止條件")
	// 检索内容注入在角色描述之后、行为准则之前
	ragIdx := strings.Index(instruction, "【參考筆記】")
	rulesIdx := strings.Index(instruction, "你的行為準則")
	assert.Less(t, ragIdx, rulesIdx)
}

func TestBuildChatSystemInstructionDefaultsNodeLabel(t *testing.T) {
	instruction := BuildChatSystemInstruction("", "", "")
	assert.Contains(t, instruction, "未知節點")
}

func TestWrapChatMessage(t *testing.T) {
	wrapped := WrapChatMessage("我懂了，遞迴就是函數呼叫自己")
	assert.True(t, strings.HasPrefix(wrapped, "我懂了"))
	assert.Contains(t, wrapped, "【系統監控】")
	assert.Contains(t, wrapped, FLASHCARD_TOOL_NAME)
}
