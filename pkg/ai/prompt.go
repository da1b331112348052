package ai

import (
	"strings"
)

const GENERATE_TREE_PROMPT_TPL = `
### Role
你是一位精通各領域知識結構的**資深課程設計師與知識圖譜專家**。你擅長將複雜的主題拆解為結構化的學習路徑。

### Task
請為主題 "{topic}" 生成一個**結構化的學習知識樹**。

### Requirements
1. **動態層級結構 (Adaptive Hierarchy)**：
   - 樹的深度與廣度應取決於主題 "{topic}" 的宏觀程度。
   - 若主題宏觀（如 "Computer Science"），結構應深層且複雜（Root -> 領域 -> 子領域 -> 核心概念 -> 知識點）。
   - 若主題具體（如 "Python List"），結構應較淺，專注於細節拆解。

2. **原子化知識點 (Atomic Leaf Nodes)**：
   - 樹狀結構的最底層（葉節點）必須是「原子化知識點」。
   - 定義：**無法再有意義地細分**的單一概念或技能（例如：「變數命名規則」是原子點，「Python 基礎」則不是，因為它還可以細分）。

3. **語言自適應 (Language Matching)**：
   - 節點的 ` + "`label`" + ` 和 ` + "`description`" + ` 語言必須與輸入主題 "{topic}" 的語言嚴格保持一致。
   - 系統偵測到主題語言為：{topic_lang}。請嚴格以該語言輸出所有節點內容。
   - 若輸入是英文，則全英文輸出；若輸入是繁體中文，則全繁體中文輸出。

4. **數據結構 (Adjacency List)**：
   - 雖然是樹狀邏輯，但請返回帶有 ` + "`parentId`" + ` 的扁平化列表（Flat List）。
   - 根節點的 ` + "`parentId`" + ` 為 ` + "`null`" + `。

### Output Format
請僅返回一個純 JSON 對象，不要包含任何 Markdown 標記或額外文字：
{
  "nodes": [
    {
      "id": "唯一標識符 (string)",
      "label": "節點名稱 (string)",
      "description": "簡短的學習目標或定義 (string)",
      "parentId": "父節點ID (string, root 為 null)"
    }
    ...
  ]
}
`

// BuildGenerateTreePrompt 组装建树提示词，topicLang 为检测到的主题语言名称
func BuildGenerateTreePrompt(topic, topicLang string) string {
	prompt := strings.ReplaceAll(GENERATE_TREE_PROMPT_TPL, "{topic}", topic)
	return strings.ReplaceAll(prompt, "{topic_lang}", topicLang)
}

const (
	CHAT_SYSTEM_ROLE_TPL = "你現在不是一個普通的聊天機器人，你是「知識捕獲系統」。\n" +
		"當前上下文：{node_label} - {node_description}\n"

	CHAT_SYSTEM_RAG_TPL = "\n【參考筆記】：用戶之前在這個節點寫過以下筆記，請參考這些內容來輔助回答：\n{rag_context}\n\n"

	CHAT_SYSTEM_RULES = "你的行為準則：\n" +
		"1. **優先回答問題**：如果用戶是在提問（例如「我筆記寫了什麼？」「解釋一下這個概念」），請根據【參考筆記】或你的知識庫直接回答，**不要**調用工具。\n" +
		"2. **捕捉學習成果**：只有當用戶明確地**做出總結**、**解釋概念**、或**說「我懂了，是...」**時，才視為「捕獲時刻」，這時必須調用 `create_flashcard_tool`。\n" +
		"3. ⚠️ **禁止**在用戶提問時建立閃卡。例如用戶問「什麼是 masuxing？」，你應該回答它，而不是把它做成卡片。\n" +
		"4. 如果用戶還沒聽懂，就繼續用蘇格拉底方式引導，不要調用工具。\n"

	// CHAT_INTENT_MONITOR 附加在用户消息之后，强化工具调用的判定
	CHAT_INTENT_MONITOR = "\n\n【系統監控】：請判斷用戶意圖。\n" +
		"- 如果他在**提問**或**索取資訊** -> 請直接回答（不要建卡）。\n" +
		"- 如果他在**輸出知識**或**總結** -> 請立刻調用 `create_flashcard_tool`。"
)

// BuildChatSystemInstruction 组装对话系统提示，检索到的笔记注入在角色与准则之间
func BuildChatSystemInstruction(nodeLabel, nodeDescription, ragContext string) string {
	if nodeLabel == "" {
		nodeLabel = "未知節點"
	}
	instruction := strings.ReplaceAll(CHAT_SYSTEM_ROLE_TPL, "{node_label}", nodeLabel)
	instruction = strings.ReplaceAll(instruction, "{node_description}", nodeDescription)
	if strings.TrimSpace(ragContext) != "" {
		instruction += strings.ReplaceAll(CHAT_SYSTEM_RAG_TPL, "{rag_context}", ragContext)
	}
	return instruction + CHAT_SYSTEM_RULES
}

func WrapChatMessage(message string) string {
	return message + CHAT_INTENT_MONITOR
}

const (
	PROMPT_VISION_OCR_CN = "請詳細轉錄這張圖片中的所有文字。如果是圖表或圖案，請詳細描述其細節和含義。直接輸出內容，不需要開場白。"

	PROMPT_TRANSCRIBE_AUDIO_CN = "請逐字轉錄這段語音。語音可能是英文、中文或粵語（廣東話）。請忽略語氣詞，直接輸出轉錄後的純文字，不要加任何開場白。"

	FLASHCARD_TOOL_DESC_CN   = "創建一張閃卡。只有當用戶明確總結知識或解釋概念時才使用。"
	FLASHCARD_FRONT_DESC_CN  = "閃卡正面內容（繁體中文）"
	FLASHCARD_BACK_DESC_CN   = "閃卡背面內容（精簡答案）"
)
