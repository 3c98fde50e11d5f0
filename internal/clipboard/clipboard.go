// Package clipboard copies text to the system clipboard.
package clipboard

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/bz888/deepchat/internal/logger"
)

// write is swapped in tests.
var write = clipboard.WriteAll

// Copy writes text to the clipboard and reports whether it succeeded.
// Empty text is rejected.
func Copy(text string) bool {
	localLogger := logger.NewLogger("clipboard")
	if strings.TrimSpace(text) == "" {
		localLogger.Warn("Nothing to copy, content is empty")
		return false
	}
	if err := write(text); err != nil {
		localLogger.Error("Copy failed: ", err)
		return false
	}
	return true
}

// Supported reports whether a clipboard utility is available.
func Supported() bool {
	return !clipboard.Unsupported
}
