package chunker

import (
	"log/slog"
	"strings"
)

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 100

	// maxBoundaryLookback 切分点回溯窗口的硬上限
	maxBoundaryLookback = 200
)

// isBoundary 句子终止符或换行，优先作为切分点避免截断句子
func isBoundary(r rune) bool {
	return r == '.' || r == '。' || r == '\n'
}

// Split 将长文本切分成带重叠的片段。
// 每段目标长度 chunkSize（按 rune 计），相邻片段重叠 overlap；
// 切分点在 [end-lookback, end) 内优先选最近的句子边界，
// lookback 取 chunkSize/2 与 200 的较小值。
// 下一段起点为 end-overlap，但每轮至少前进 1，保证循环终止。
// 去除首尾空白后为空的片段被丢弃。
func Split(text string, chunkSize, overlap int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultOverlap
	}

	runes := []rune(text)
	textLen := len(runes)

	var chunks []string
	start := 0
	for start < textLen {
		end := start + chunkSize
		if end < textLen {
			lookback := chunkSize / 2
			if lookback > maxBoundaryLookback {
				lookback = maxBoundaryLookback
			}
			floor := end - lookback
			if floor < start+1 {
				floor = start + 1
			}
			for i := end - 1; i >= floor; i-- {
				if isBoundary(runes[i]) {
					end = i + 1
					break
				}
			}
		}

		sliceEnd := end
		if sliceEnd > textLen {
			sliceEnd = textLen
		}
		if chunk := strings.TrimSpace(string(runes[start:sliceEnd])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		// 步进用未截断的 end 计算，避免末段重叠区再派生一个空尾块
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	slog.Debug("text chunked",
		slog.Int("chunks", len(chunks)),
		slog.Int("chunk_size", chunkSize),
		slog.Int("overlap", overlap))
	return chunks
}
