package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	serverClient "github.com/bz888/deepchat/internal/api/server/client"
	"github.com/bz888/deepchat/internal/api/server/handlers"
	"github.com/bz888/deepchat/internal/share"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRelay(t *testing.T, mux *http.ServeMux) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	prev := baseURL
	baseURL = srv.URL
	t.Cleanup(func() { baseURL = prev })
}

func TestChatStreamsLines(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", func(w http.ResponseWriter, r *http.Request) {
		var req serverClient.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, serverClient.ChatRequest{Text: "hi", Model: "deepseek-chat"}, req)

		w.Header().Set("Content-Type", "application/x-ndjson")
		io.WriteString(w, `{"type":"reasoning","text":"think"}`+"\n")
		io.WriteString(w, "garbage\n")
		io.WriteString(w, `{"type":"content","text":"Hello"}`+"\n")
		io.WriteString(w, `{"type":"complete"}`+"\n")
	})
	newRelay(t, mux)

	var got []serverClient.ChatResponse
	err := Chat(context.Background(), "deepseek-chat", "hi", func(resp serverClient.ChatResponse) {
		got = append(got, resp)
	})
	require.NoError(t, err)
	assert.Equal(t, []serverClient.ChatResponse{
		{Type: "reasoning", Text: "think"},
		{Type: "content", Text: "Hello"},
		{Type: "complete"},
	}, got)
}

func TestChatRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Model not found", http.StatusBadRequest)
	})
	newRelay(t, mux)

	err := Chat(context.Background(), "gpt", "hi", func(serverClient.ChatResponse) {
		t.Fatal("no lines expected")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Model not found")
}

func TestModels(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /models", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(handlers.ModelsResponse{Models: []string{"deepseek-chat", "deepseek-reasoner"}, Current: "deepseek-chat"})
	})
	mux.HandleFunc("PUT /models/current", func(w http.ResponseWriter, r *http.Request) {
		var req handlers.SelectModelRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(handlers.ModelsResponse{Models: []string{"deepseek-chat", "deepseek-reasoner"}, Current: req.Model})
	})
	newRelay(t, mux)

	models, err := ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", models.Current)
	assert.Len(t, models.Models, 2)

	models, err = SelectModel(context.Background(), "deepseek-reasoner")
	require.NoError(t, err)
	assert.Equal(t, "deepseek-reasoner", models.Current)
}

func TestShareCalls(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /shares", func(w http.ResponseWriter, r *http.Request) {
		var req handlers.ShareRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.IncludeContext)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(handlers.ShareResponse{
			Share: &share.Share{ID: "share_1_abc"},
			Link:  "http://localhost:8080/#/share/share_1_abc",
		})
	})
	mux.HandleFunc("GET /shares", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]share.HistoryItem{{ID: "share_1_abc", MessagePreview: "answer"}})
	})
	newRelay(t, mux)

	shared, err := Share(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "share_1_abc", shared.Share.ID)
	assert.Equal(t, "http://localhost:8080/#/share/share_1_abc", shared.Link)

	items, err := Shares(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "answer", items[0].MessagePreview)
}

func TestNoContentCalls(t *testing.T) {
	var key string
	cleared := false
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /history", func(w http.ResponseWriter, r *http.Request) {
		cleared = true
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("PUT /key", func(w http.ResponseWriter, r *http.Request) {
		var req handlers.KeyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		key = req.Key
		w.WriteHeader(http.StatusNoContent)
	})
	newRelay(t, mux)

	require.NoError(t, ClearHistory(context.Background()))
	require.NoError(t, SetKey(context.Background(), "sk-1"))
	assert.True(t, cleared)
	assert.Equal(t, "sk-1", key)
}

func TestStatusErrorWithoutBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /history", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	newRelay(t, mux)

	err := ClearHistory(context.Background())
	require.Error(t, err)
	assert.Equal(t, "500 Internal Server Error", err.Error())
}
