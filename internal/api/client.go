package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	serverClient "github.com/bz888/deepchat/internal/api/server/client"
	"github.com/bz888/deepchat/internal/api/server/handlers"
	"github.com/bz888/deepchat/internal/logger"
	"github.com/bz888/deepchat/internal/share"
)

var (
	localLogger *logger.Logger
	baseURL     = "http://localhost:8080"
	httpClient  = &http.Client{}
)

// Init points the client at the relay listening on port.
func Init(port int) {
	localLogger = logger.NewLogger("api client")
	baseURL = fmt.Sprintf("http://localhost:%d", port)
}

// Chat sends text to the relay and calls fn for every streamed line. The
// last line is either "complete" or "error".
func Chat(ctx context.Context, model, text string, fn func(serverClient.ChatResponse)) error {
	clientReq := serverClient.ChatRequest{Model: model, Text: text}
	requestData, err := json.Marshal(clientReq)
	if err != nil {
		return fmt.Errorf("serialize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat", bytes.NewReader(requestData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log().Error("Failed to close response body: ", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		var clientResp serverClient.ChatResponse
		if err := json.Unmarshal(scanner.Bytes(), &clientResp); err != nil {
			log().Error("Failed to decode response: ", err)
			continue
		}
		fn(clientResp)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}

func ListModels(ctx context.Context) (handlers.ModelsResponse, error) {
	var models handlers.ModelsResponse
	err := do(ctx, http.MethodGet, "/models", nil, http.StatusOK, &models)
	return models, err
}

func SelectModel(ctx context.Context, model string) (handlers.ModelsResponse, error) {
	var models handlers.ModelsResponse
	err := do(ctx, http.MethodPut, "/models/current", handlers.SelectModelRequest{Model: model}, http.StatusOK, &models)
	return models, err
}

// Share shares the latest assistant reply, optionally with the turns
// before it.
func Share(ctx context.Context, includeContext bool) (handlers.ShareResponse, error) {
	var shared handlers.ShareResponse
	err := do(ctx, http.MethodPost, "/shares", handlers.ShareRequest{IncludeContext: includeContext}, http.StatusCreated, &shared)
	return shared, err
}

func Shares(ctx context.Context) ([]share.HistoryItem, error) {
	var items []share.HistoryItem
	err := do(ctx, http.MethodGet, "/shares", nil, http.StatusOK, &items)
	return items, err
}

func ClearHistory(ctx context.Context) error {
	return do(ctx, http.MethodDelete, "/history", nil, http.StatusNoContent, nil)
}

func SetKey(ctx context.Context, key string) error {
	return do(ctx, http.MethodPut, "/key", handlers.KeyRequest{Key: key}, http.StatusNoContent, nil)
}

func do(ctx context.Context, method, path string, body interface{}, want int, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("serialize request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// statusError reports the relay's plain-text error body alongside the status.
func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if text := strings.TrimSpace(string(msg)); text != "" {
		return fmt.Errorf("%s: %s", resp.Status, text)
	}
	return fmt.Errorf("%s", resp.Status)
}

func log() *logger.Logger {
	if localLogger == nil {
		localLogger = logger.NewLogger("api client")
	}
	return localLogger
}
