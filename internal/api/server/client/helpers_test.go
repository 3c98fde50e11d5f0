package client

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// chunkedBody hands out exactly one chunk per Read, then err (io.EOF when nil).
type chunkedBody struct {
	chunks [][]byte
	err    error
	onRead func(i int)
	i      int
}

func (b *chunkedBody) Read(p []byte) (int, error) {
	if b.onRead != nil {
		b.onRead(b.i)
	}
	if b.i >= len(b.chunks) {
		if b.err != nil {
			return 0, b.err
		}
		return 0, io.EOF
	}
	n := copy(p, b.chunks[b.i])
	b.i++
	return n, nil
}

func (b *chunkedBody) Close() error { return nil }

func chunksOf(parts ...string) [][]byte {
	out := make([][]byte, len(parts))
	for i, p := range parts {
		out[i] = []byte(p)
	}
	return out
}

func okResponse(body io.ReadCloser) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Header:     http.Header{"Content-Type": []string{"text/event-stream"}},
		Body:       body,
	}
}

func statusResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

type staticPrompt string

func (p staticPrompt) SystemPrompt() (string, error) { return string(p), nil }

type failingPrompt struct{}

func (failingPrompt) SystemPrompt() (string, error) { return "", errors.New("not loaded") }

type fakeRecorder struct {
	mu       sync.Mutex
	streams  []string
	deltas   map[string]int
	warnings map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{deltas: map[string]int{}, warnings: map[string]int{}}
}

func (r *fakeRecorder) Stream(model, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams = append(r.streams, model+"/"+outcome)
}

func (r *fakeRecorder) Delta(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deltas[kind]++
}

func (r *fakeRecorder) Warning(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings[kind]++
}

func newTestClient(t *testing.T, rt roundTripFunc, prompt PromptProvider, rec *fakeRecorder) *DeepSeekClient {
	t.Helper()
	c, err := NewDeepSeekClient("https://api.example.test", &http.Client{Transport: rt}, prompt, WithRecorder(rec))
	require.NoError(t, err)
	return c
}

// collected records every callback of one SendMessageStream call.
type collected struct {
	chunks    []string
	reasoning []string
	completes int
	errors    []string
}

func (c *collected) callbacks() Callbacks {
	return Callbacks{
		OnChunk:     func(s string) { c.chunks = append(c.chunks, s) },
		OnComplete:  func() { c.completes++ },
		OnError:     func(msg string) { c.errors = append(c.errors, msg) },
		OnReasoning: func(s string) { c.reasoning = append(c.reasoning, s) },
	}
}

func (c *collected) text() string {
	return strings.Join(c.chunks, "")
}

func contentLine(s string) string {
	return `data: {"choices":[{"delta":{"content":` + quote(s) + `}}]}` + "\n"
}

func reasoningLine(s string) string {
	return `data: {"choices":[{"delta":{"reasoning_content":` + quote(s) + `}}]}` + "\n"
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
