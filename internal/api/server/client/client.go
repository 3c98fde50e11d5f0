package client

import (
	"fmt"
	"net/http"
	"net/url"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client holds the transport and resolved endpoints shared by API clients.
type Client struct {
	base    *url.URL
	http    *http.Client
	chatUrl *url.URL
}

// ClientConfig holds the configuration for the client
type ClientConfig struct {
	BaseURL  string
	ChatPath string
}

// NewClient creates a new API client with configurable base URL and endpoints
func NewClient(config ClientConfig, httpClient *http.Client) (*Client, error) {
	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", config.BaseURL, err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", config.BaseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		base:    baseURL,
		http:    httpClient,
		chatUrl: baseURL.JoinPath(config.ChatPath),
	}, nil
}

func (c *Client) GetChatURL() string {
	return c.chatUrl.String()
}
