package share

import (
	"regexp"
	"strings"
	"time"

	"github.com/bz888/deepchat/internal/api/server/client"
)

var (
	codeBlockRe  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`([^`]+)`")
	boldRe       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe     = regexp.MustCompile(`\*([^*]+)\*`)
	linkRe       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headingRe    = regexp.MustCompile(`#+\s*`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

const timestampLayout = "2006/01/02 15:04"

// FormatText renders a message, and its context when opts.IncludeContext is
// set, as plain text for pasting elsewhere.
func (s *Service) FormatText(message Message, context []Message, opts Options) string {
	var b strings.Builder

	b.WriteString("=== AI Conversation Share ===\n\n")

	if opts.IncludeContext && len(context) > 0 {
		b.WriteString("--- Context ---\n")
		for _, m := range context {
			b.WriteString(roleLabel(m.Role) + " [" + formatTimestamp(m.Timestamp) + "]: " + m.Content + "\n\n")
		}
		b.WriteString("--- Current Message ---\n")
	}

	b.WriteString(roleLabel(message.Role) + " [" + formatTimestamp(message.Timestamp) + "]: " + message.Content + "\n\n")

	b.WriteString("--- Share Info ---\n")
	b.WriteString("Shared at: " + s.now().Format(time.DateTime) + "\n")
	b.WriteString("Source: " + sourceName + "\n")
	if opts.ShareLink != "" {
		b.WriteString("Share link: " + opts.ShareLink + "\n")
	}

	return b.String()
}

// Preview strips Markdown and collapses whitespace, cutting the result to
// maxLength characters followed by "...".
func Preview(content string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultPreviewSize
	}
	if content == "" {
		return "no content"
	}

	clean := codeBlockRe.ReplaceAllString(content, "[code block]")
	clean = inlineCodeRe.ReplaceAllString(clean, "$1")
	clean = boldRe.ReplaceAllString(clean, "$1")
	clean = italicRe.ReplaceAllString(clean, "$1")
	clean = linkRe.ReplaceAllString(clean, "$1")
	clean = headingRe.ReplaceAllString(clean, "")
	clean = strings.TrimSpace(spaceRe.ReplaceAllString(clean, " "))

	runes := []rune(clean)
	if len(runes) > maxLength {
		return string(runes[:maxLength]) + "..."
	}
	return clean
}

func roleLabel(role string) string {
	if role == client.RoleUser {
		return "User"
	}
	return "AI Assistant"
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}
	return t.Local().Format(timestampLayout)
}
