// Package prompt loads the YAML file that holds the system prompt sent
// ahead of every conversation.
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed systemPrompts.yaml
var defaultPrompts []byte

// ErrNotLoaded is returned by accessors before a successful Load.
var ErrNotLoaded = errors.New("config not loaded, call Load first")

// Config is the parsed prompt file.
type Config struct {
	SystemPrompt string                 `yaml:"system_prompt"`
	Metadata     map[string]interface{} `yaml:"metadata"`
}

// Loader holds the most recently loaded prompt file.
type Loader struct {
	mu     sync.RWMutex
	config *Config
}

func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses the YAML file at path.
func (l *Loader) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load prompt config %q: %w", path, err)
	}
	return l.parse(data)
}

// LoadDefault parses the prompt file compiled into the binary.
func (l *Loader) LoadDefault() (*Config, error) {
	return l.parse(defaultPrompts)
}

func (l *Loader) parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse prompt config: %w", err)
	}
	if config.Metadata == nil {
		config.Metadata = map[string]interface{}{}
	}

	l.mu.Lock()
	l.config = &config
	l.mu.Unlock()
	return &config, nil
}

// SystemPrompt returns the loaded system prompt, "" when the file has none.
func (l *Loader) SystemPrompt() (string, error) {
	config, err := l.Config()
	if err != nil {
		return "", err
	}
	return config.SystemPrompt, nil
}

func (l *Loader) Metadata() (map[string]interface{}, error) {
	config, err := l.Config()
	if err != nil {
		return nil, err
	}
	return config.Metadata, nil
}

// Config returns the whole loaded file.
func (l *Loader) Config() (*Config, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.config == nil {
		return nil, ErrNotLoaded
	}
	return l.config, nil
}
