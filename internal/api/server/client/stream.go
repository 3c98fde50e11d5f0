package client

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "data: [DONE]"

	readChunkSize = 4 * 1024
)

// readStream pulls chunks from body until it is exhausted, emitting a
// delta for every content or reasoning fragment. It returns nil on a clean
// end of body. The [DONE] sentinel is skipped; only exhaustion ends the loop.
func (c *DeepSeekClient) readStream(body io.Reader, reasoning bool, emit func(Event)) error {
	buf := newLineBuffer()
	chunk := make([]byte, readChunkSize)

	for {
		n, err := body.Read(chunk)
		if n > 0 {
			for _, line := range buf.Write(chunk[:n]) {
				c.processLine(line, reasoning, emit)
			}
		}
		if errors.Is(err, io.EOF) {
			if tail := strings.TrimSpace(buf.Pending()); tail != "" {
				c.log.Warn("Discarding unterminated stream line: ", tail)
				c.recorder.Warning("truncated_line")
			}
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *DeepSeekClient) processLine(line string, reasoning bool, emit func(Event)) {
	line = strings.TrimSpace(line)
	if line == "" || line == doneSentinel {
		return
	}
	if !strings.HasPrefix(line, dataPrefix) {
		return
	}

	var chunk StreamChunk
	if err := json.Unmarshal([]byte(line[len(dataPrefix):]), &chunk); err != nil {
		c.log.Warn("Failed to parse stream data: ", err)
		c.recorder.Warning("parse")
		return
	}

	if content := chunk.Content(); content != "" {
		emit(Event{Type: EventContent, Text: content})
	}
	if rc := chunk.ReasoningContent(); rc != "" && reasoning {
		emit(Event{Type: EventReasoning, Text: rc})
	}
}
