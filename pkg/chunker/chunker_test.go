package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortText(t *testing.T) {
	chunks := Split("hello world", DefaultChunkSize, DefaultOverlap)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestSplitEmptyText(t *testing.T) {
	assert.Nil(t, Split("", DefaultChunkSize, DefaultOverlap))
	assert.Nil(t, Split("   \n\t  ", DefaultChunkSize, DefaultOverlap))
}

func TestSplitLongTextWithOverlap(t *testing.T) {
	// 2500 个无边界字符，1000/100 切分应得 3 段
	text := strings.Repeat("x", 2500)
	chunks := Split(text, 1000, 100)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 1000)
	assert.Len(t, chunks[1], 1000)
	assert.Len(t, chunks[2], 700)
}

func TestSplitOverlapCarriesTail(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 2500; i++ {
		b.WriteByte(byte('a' + i%26))
	}
	chunks := Split(b.String(), 1000, 100)

	require.GreaterOrEqual(t, len(chunks), 2)
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-100:]
		assert.True(t, strings.HasPrefix(chunks[i], tail), "chunk %d should start with previous tail", i)
	}
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	// 句号落在回溯窗口内，切分点应落在句号之后
	text := strings.Repeat("x", 949) + "." + strings.Repeat("y", 1550)
	chunks := Split(text, 1000, 100)

	require.NotEmpty(t, chunks)
	assert.Len(t, chunks[0], 950)
	assert.True(t, strings.HasSuffix(chunks[0], "."))
}

func TestSplitBoundaryOutsideLookbackIgnored(t *testing.T) {
	// 句号在 end-200 之前，不在回溯窗口内，仍按定长切分
	text := strings.Repeat("x", 700) + "." + strings.Repeat("y", 1799)
	chunks := Split(text, 1000, 100)

	require.NotEmpty(t, chunks)
	assert.Len(t, chunks[0], 1000)
}

func TestSplitCJKRuneSafe(t *testing.T) {
	text := strings.Repeat("學", 1200)
	chunks := Split(text, 1000, 100)

	require.Len(t, chunks, 2)
	for _, c := range chunks {
		for _, r := range c {
			assert.Equal(t, '學', r)
		}
	}
}

func TestSplitAlwaysTerminates(t *testing.T) {
	// 非法重叠参数回落到默认值，循环仍须终止
	chunks := Split(strings.Repeat("z", 500), 100, 100)
	assert.NotEmpty(t, chunks)
}
