package client

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the body posted to the completions endpoint.
type ChatCompletionRequest struct {
	Model    Model     `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"` // Always true for streaming
}

// StreamChunk is one `data:` payload of the completions stream.
type StreamChunk struct {
	ID      string        `json:"id,omitempty"`
	Model   string        `json:"model,omitempty"`
	Choices []ChunkChoice `json:"choices"`
}

type ChunkChoice struct {
	Delta        ChunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason,omitempty"` // Pointer to handle null
	Index        int        `json:"index"`
}

type ChunkDelta struct {
	Role             string `json:"role,omitempty"`
	Content          string `json:"content,omitempty"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

// Content returns the first choice's content delta.
func (c *StreamChunk) Content() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].Delta.Content
	}
	return ""
}

// ReasoningContent returns the first choice's reasoning delta.
func (c *StreamChunk) ReasoningContent() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].Delta.ReasoningContent
	}
	return ""
}

// EventType tags an Event produced by a streaming call.
type EventType int

const (
	EventContent EventType = iota
	EventReasoning
	EventComplete
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventContent:
		return "content"
	case EventReasoning:
		return "reasoning"
	case EventComplete:
		return "complete"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one element of a stream. Text is set for content and reasoning
// deltas, Err for EventError.
type Event struct {
	Type EventType
	Text string
	Err  *Error
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

// ChatRequest Request from the TUI to the relay
type ChatRequest struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

// ChatResponse is one NDJSON line streamed from the relay to the TUI.
type ChatResponse struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}
