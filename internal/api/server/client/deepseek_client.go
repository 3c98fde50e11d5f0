package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/bz888/deepchat/internal/logger"
	"github.com/bz888/deepchat/internal/metrics"
)

type Model string

const (
	ModelChat     Model = "deepseek-chat"
	ModelReasoner Model = "deepseek-reasoner"

	DefaultModel = ModelChat

	// HistoryWindow is how many caller messages are forwarded per request.
	// The system prompt is sent in addition.
	HistoryWindow = 10
)

// Models lists the identifiers accepted by SetModel.
var Models = []Model{ModelChat, ModelReasoner}

// ParseModel reports whether name is a recognised model identifier.
func ParseModel(name string) (Model, bool) {
	for _, m := range Models {
		if string(m) == name {
			return m, true
		}
	}
	return "", false
}

// PromptProvider supplies the system message sent ahead of the history.
type PromptProvider interface {
	SystemPrompt() (string, error)
}

// Callbacks receive the events of SendMessageStream. OnReasoning may be nil.
type Callbacks struct {
	OnChunk     func(content string)
	OnComplete  func()
	OnError     func(message string)
	OnReasoning func(reasoning string)
}

type DeepSeekClientInterface interface {
	Model() Model
	SetModel(name string) bool
	Stream(ctx context.Context, credential string, messages []Message) <-chan Event
}

var deepSeekConfig = ClientConfig{
	BaseURL:  "https://api.deepseek.com",
	ChatPath: "/chat/completions",
}

// DeepSeekClient streams chat completions from the DeepSeek API.
type DeepSeekClient struct {
	Client
	prompt   PromptProvider
	recorder metrics.Recorder
	log      *logger.Logger

	mu    sync.RWMutex
	model Model
}

type Option func(*DeepSeekClient)

// WithRecorder routes stream telemetry to r instead of prometheus.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *DeepSeekClient) {
		c.recorder = r
	}
}

// NewDeepSeekClient creates a client for baseURL (the public endpoint when
// empty). httpClient may be nil.
func NewDeepSeekClient(baseURL string, httpClient *http.Client, prompt PromptProvider, opts ...Option) (*DeepSeekClient, error) {
	config := deepSeekConfig
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	base, err := NewClient(config, httpClient)
	if err != nil {
		return nil, err
	}

	c := &DeepSeekClient{
		Client:   *base,
		prompt:   prompt,
		recorder: metrics.Prometheus{},
		log:      logger.NewLogger("deepseek client"),
		model:    DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetModel switches the model used by subsequent requests. Unrecognised
// names leave the selection unchanged and are only logged.
func (c *DeepSeekClient) SetModel(name string) bool {
	model, ok := ParseModel(name)
	if !ok {
		c.log.Warn("Unsupported model: ", name)
		c.recorder.Warning("unsupported_model")
		return false
	}

	c.mu.Lock()
	c.model = model
	c.mu.Unlock()

	c.log.Info("Model switched to: ", name)
	return true
}

func (c *DeepSeekClient) Model() Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SendMessageStream posts messages and delivers the streamed reply through
// cb. Exactly one of OnComplete or OnError is called, after any number of
// OnChunk/OnReasoning calls. All callbacks run on the calling goroutine.
func (c *DeepSeekClient) SendMessageStream(ctx context.Context, credential string, messages []Message, cb Callbacks) {
	c.run(ctx, credential, messages, func(ev Event) {
		switch ev.Type {
		case EventContent:
			if cb.OnChunk != nil {
				cb.OnChunk(ev.Text)
			}
		case EventReasoning:
			if cb.OnReasoning != nil {
				cb.OnReasoning(ev.Text)
			}
		case EventComplete:
			if cb.OnComplete != nil {
				cb.OnComplete()
			}
		case EventError:
			if cb.OnError != nil {
				cb.OnError(ev.Err.Message)
			}
		}
	})
}

// Stream is the channel form of SendMessageStream. The last event is
// always EventComplete or EventError, after which the channel is closed.
// The caller must drain the channel; cancelling ctx ends the stream early
// with an EventError.
func (c *DeepSeekClient) Stream(ctx context.Context, credential string, messages []Message) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		c.run(ctx, credential, messages, func(ev Event) {
			events <- ev
		})
	}()
	return events
}

// BuildRequest returns the body for model: the system prompt followed by
// the last HistoryWindow messages, oldest first.
func (c *DeepSeekClient) BuildRequest(model Model, messages []Message) *ChatCompletionRequest {
	systemPrompt := ""
	if c.prompt != nil {
		prompt, err := c.prompt.SystemPrompt()
		if err != nil {
			c.log.Warn("System prompt unavailable, sending empty prompt: ", err)
			c.recorder.Warning("system_prompt")
		} else {
			systemPrompt = prompt
		}
	}

	if len(messages) > HistoryWindow {
		messages = messages[len(messages)-HistoryWindow:]
	}

	out := make([]Message, 0, len(messages)+1)
	out = append(out, Message{Role: RoleSystem, Content: systemPrompt})
	for _, msg := range messages {
		out = append(out, Message{Role: msg.Role, Content: msg.Content})
	}

	return &ChatCompletionRequest{
		Model:    model,
		Messages: out,
		Stream:   true,
	}
}

// run performs one call and emits its events. It always emits exactly one
// terminal event, last.
func (c *DeepSeekClient) run(ctx context.Context, credential string, messages []Message, emit func(Event)) {
	// The model is read once: it decides both the request body and whether
	// reasoning deltas are delivered for this stream.
	model := c.Model()
	emit = c.instrument(model, emit)

	fail := func(e *Error) {
		emit(Event{Type: EventError, Err: e})
	}

	bts, err := json.Marshal(c.BuildRequest(model, messages))
	if err != nil {
		c.log.Error("Failed to encode chat request: ", err)
		fail(&Error{Kind: KindTransport, Message: MsgConnection, Err: err})
		return
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.GetChatURL(), bytes.NewReader(bts))
	if err != nil {
		c.log.Error("Failed to create chat request: ", err)
		fail(&Error{Kind: KindTransport, Message: MsgConnection, Err: err})
		return
	}
	request.Header.Set("Authorization", "Bearer "+credential)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.http.Do(request)
	if err != nil {
		c.log.Error("API call failed: ", err)
		fail(&Error{Kind: KindTransport, Message: MsgConnection, Err: err})
		return
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		e := classifyResponse(response)
		c.log.Error("Received error response: ", e)
		fail(e)
		return
	}

	if err := c.readStream(response.Body, model == ModelReasoner, emit); err != nil {
		c.log.Error("Stream read error: ", err)
		fail(&Error{Kind: KindStreamRead, Status: response.StatusCode, Message: MsgStreamRead, Err: err})
		return
	}
	emit(Event{Type: EventComplete})
}

func (c *DeepSeekClient) instrument(model Model, emit func(Event)) func(Event) {
	return func(ev Event) {
		switch ev.Type {
		case EventContent, EventReasoning:
			c.recorder.Delta(ev.Type.String())
		case EventComplete:
			c.recorder.Stream(string(model), "complete")
		case EventError:
			c.recorder.Stream(string(model), ev.Err.Kind.String())
		}
		emit(ev)
	}
}
