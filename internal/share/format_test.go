package share

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		max     int
		want    string
	}{
		{"empty", "", 100, "no content"},
		{"code block", "Try this:\n```go\nfmt.Println(1)\n```\ndone", 100, "Try this: [code block] done"},
		{"inline and emphasis", "Use `go test` with **care** and *style*", 100, "Use go test with care and style"},
		{"link", "See [the docs](https://example.com) now", 100, "See the docs now"},
		{"heading", "## Title\nBody   text", 100, "Title Body text"},
		{"truncated", "abcdefghij", 4, "abcd..."},
		{"runes", "你好世界", 2, "你好..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preview(tt.content, tt.max))
		})
	}
}

func TestFormatText(t *testing.T) {
	s, _ := newTestService(fixedNow)
	msg := Message{Role: "assistant", Content: "The answer is 42.", Timestamp: fixedNow}
	ctxMsgs := []Message{{Role: "user", Content: "What is the answer?", Timestamp: fixedNow}}

	text := s.FormatText(msg, ctxMsgs, Options{IncludeContext: true, ShareLink: "http://x/#/share/1"})

	assert.True(t, strings.HasPrefix(text, "=== AI Conversation Share ===\n\n--- Context ---\nUser ["))
	assert.Contains(t, text, "]: What is the answer?\n\n--- Current Message ---\nAI Assistant [")
	assert.Contains(t, text, "]: The answer is 42.\n\n--- Share Info ---\n")
	assert.Contains(t, text, "Source: deepchat\n")
	assert.Contains(t, text, "Share link: http://x/#/share/1\n")

	plain := s.FormatText(msg, ctxMsgs, Options{})
	assert.NotContains(t, plain, "--- Context ---")
	assert.NotContains(t, plain, "Share link:")
}

func TestFormatTimestampZero(t *testing.T) {
	assert.Equal(t, "unknown time", formatTimestamp(time.Time{}))
}
