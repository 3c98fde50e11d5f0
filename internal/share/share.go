// Package share turns chat messages into shareable records, keeps them in
// the local store and formats them as plain text.
package share

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bz888/deepchat/internal/logger"
	"github.com/google/uuid"
)

const (
	SharesKey  = "ai_chat_shares"
	HistoryKey = "ai_chat_share_history"

	MaxShares  = 100
	MaxHistory = 50

	DefaultShareType   = "link"
	DefaultRetainDays  = 30
	DefaultPreviewSize = 100

	sourceName = "deepchat"
)

var ErrNotFound = errors.New("share not found")

// KV is the persistence the service needs; storage.Store satisfies it.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Options struct {
	AllowPublicAccess bool
	IncludeContext    bool
	ShareType         string
	// ShareLink is appended to FormatText output when set.
	ShareLink string
	Client    string
	URL       string
}

type Metadata struct {
	CreatedAt      time.Time `json:"createdAt"`
	PublicAccess   bool      `json:"publicAccess"`
	IncludeContext bool      `json:"includeContext"`
	ShareType      string    `json:"shareType"`
	Client         string    `json:"client,omitempty"`
	URL            string    `json:"url,omitempty"`
}

type Stats struct {
	Views      int        `json:"views"`
	LastViewed *time.Time `json:"lastViewed"`
}

type Share struct {
	ID       string    `json:"id"`
	Message  Message   `json:"message"`
	Context  []Message `json:"context"`
	Metadata Metadata  `json:"metadata"`
	Stats    Stats     `json:"stats"`
}

type HistoryItem struct {
	ID             string    `json:"id"`
	MessagePreview string    `json:"messagePreview"`
	ShareType      string    `json:"shareType"`
	CreatedAt      time.Time `json:"createdAt"`
	Views          int       `json:"views"`
	PublicAccess   bool      `json:"publicAccess"`
}

type Summary struct {
	TotalShares   int            `json:"totalShares"`
	TotalViews    int            `json:"totalViews"`
	PublicShares  int            `json:"publicShares"`
	PrivateShares int            `json:"privateShares"`
	ShareTypes    map[string]int `json:"shareTypes"`
	HistoryCount  int            `json:"historyCount"`
}

type Service struct {
	kv      KV
	baseURL string
	now     func() time.Time
	log     *logger.Logger

	mu sync.Mutex
}

// NewService stores shares in kv. Links are built as baseURL#/share/<id>.
func NewService(kv KV, baseURL string) *Service {
	return &Service{
		kv:      kv,
		baseURL: baseURL,
		now:     time.Now,
		log:     logger.NewLogger("share"),
	}
}

// NewID returns share_<unix millis>_<9 random characters>.
func (s *Service) NewID() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("share_%d_%s", s.now().UnixMilli(), random)
}

// Create builds a share record; it is not persisted until Save.
func (s *Service) Create(message Message, context []Message, opts Options) *Share {
	now := s.now()
	stamp := func(m Message) Message {
		if m.Timestamp.IsZero() {
			m.Timestamp = now
		}
		return m
	}

	ctxMessages := make([]Message, 0, len(context))
	for _, m := range context {
		ctxMessages = append(ctxMessages, stamp(m))
	}

	shareType := opts.ShareType
	if shareType == "" {
		shareType = DefaultShareType
	}

	return &Share{
		ID:      s.NewID(),
		Message: stamp(message),
		Context: ctxMessages,
		Metadata: Metadata{
			CreatedAt:      now.UTC(),
			PublicAccess:   opts.AllowPublicAccess,
			IncludeContext: opts.IncludeContext,
			ShareType:      shareType,
			Client:         opts.Client,
			URL:            opts.URL,
		},
	}
}

// Save appends share, keeping only the newest MaxShares records, and puts
// a history item at the front of the history.
func (s *Service) Save(ctx context.Context, share *Share) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shares, err := s.loadShares(ctx)
	if err != nil {
		return err
	}
	shares = append(shares, *share)
	if len(shares) > MaxShares {
		shares = shares[len(shares)-MaxShares:]
	}
	if err := s.storeShares(ctx, shares); err != nil {
		return err
	}

	history, err := s.loadHistory(ctx)
	if err != nil {
		return err
	}
	item := HistoryItem{
		ID:             share.ID,
		MessagePreview: Preview(share.Message.Content, DefaultPreviewSize),
		ShareType:      share.Metadata.ShareType,
		CreatedAt:      share.Metadata.CreatedAt,
		Views:          share.Stats.Views,
		PublicAccess:   share.Metadata.PublicAccess,
	}
	history = append([]HistoryItem{item}, history...)
	if len(history) > MaxHistory {
		history = history[:MaxHistory]
	}
	return s.storeHistory(ctx, history)
}

// Get returns the share with id and records a view.
func (s *Service) Get(ctx context.Context, id string) (*Share, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shares, err := s.loadShares(ctx)
	if err != nil {
		return nil, err
	}
	for i := range shares {
		if shares[i].ID != id {
			continue
		}
		viewed := s.now().UTC()
		shares[i].Stats.Views++
		shares[i].Stats.LastViewed = &viewed
		if err := s.storeShares(ctx, shares); err != nil {
			return nil, err
		}
		found := shares[i]
		return &found, nil
	}
	return nil, ErrNotFound
}

func (s *Service) All(ctx context.Context) ([]Share, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadShares(ctx)
}

// Update replaces the stored share with the same ID. It returns false when
// no such share exists.
func (s *Service) Update(ctx context.Context, share *Share) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shares, err := s.loadShares(ctx)
	if err != nil {
		return false, err
	}
	for i := range shares {
		if shares[i].ID == share.ID {
			shares[i] = *share
			return true, s.storeShares(ctx, shares)
		}
	}
	return false, nil
}

// Delete removes the share and its history item. Deleting an unknown id is
// not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shares, err := s.loadShares(ctx)
	if err != nil {
		return err
	}
	kept := shares[:0]
	for _, sh := range shares {
		if sh.ID != id {
			kept = append(kept, sh)
		}
	}
	if err := s.storeShares(ctx, kept); err != nil {
		return err
	}

	history, err := s.loadHistory(ctx)
	if err != nil {
		return err
	}
	keptHistory := history[:0]
	for _, item := range history {
		if item.ID != id {
			keptHistory = append(keptHistory, item)
		}
	}
	return s.storeHistory(ctx, keptHistory)
}

func (s *Service) Link(id string) string {
	return s.baseURL + "#/share/" + id
}

func (s *Service) History(ctx context.Context) ([]HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadHistory(ctx)
}

// CleanupExpired drops shares and history items older than days and
// returns how many shares were removed.
func (s *Service) CleanupExpired(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		days = DefaultRetainDays
	}
	cutoff := s.now().AddDate(0, 0, -days)

	s.mu.Lock()
	defer s.mu.Unlock()

	shares, err := s.loadShares(ctx)
	if err != nil {
		return 0, err
	}
	valid := make([]Share, 0, len(shares))
	for _, sh := range shares {
		if sh.Metadata.CreatedAt.After(cutoff) {
			valid = append(valid, sh)
		}
	}
	if err := s.storeShares(ctx, valid); err != nil {
		return 0, err
	}

	history, err := s.loadHistory(ctx)
	if err != nil {
		return 0, err
	}
	validHistory := make([]HistoryItem, 0, len(history))
	for _, item := range history {
		if item.CreatedAt.After(cutoff) {
			validHistory = append(validHistory, item)
		}
	}
	if err := s.storeHistory(ctx, validHistory); err != nil {
		return 0, err
	}

	removed := len(shares) - len(valid)
	s.log.Info("Cleanup finished, removed expired shares: ", removed)
	return removed, nil
}

func (s *Service) Stats(ctx context.Context) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := Summary{ShareTypes: map[string]int{}}
	shares, err := s.loadShares(ctx)
	if err != nil {
		return summary, err
	}
	history, err := s.loadHistory(ctx)
	if err != nil {
		return summary, err
	}

	summary.TotalShares = len(shares)
	summary.HistoryCount = len(history)
	for _, sh := range shares {
		summary.TotalViews += sh.Stats.Views
		if sh.Metadata.PublicAccess {
			summary.PublicShares++
		}
		shareType := sh.Metadata.ShareType
		if shareType == "" {
			shareType = "unknown"
		}
		summary.ShareTypes[shareType]++
	}
	summary.PrivateShares = summary.TotalShares - summary.PublicShares
	return summary, nil
}

// A corrupt stored value reads as empty.
func (s *Service) loadShares(ctx context.Context) ([]Share, error) {
	var shares []Share
	if err := s.load(ctx, SharesKey, &shares); err != nil {
		return nil, err
	}
	return shares, nil
}

func (s *Service) storeShares(ctx context.Context, shares []Share) error {
	return s.store(ctx, SharesKey, shares)
}

func (s *Service) loadHistory(ctx context.Context) ([]HistoryItem, error) {
	var history []HistoryItem
	if err := s.load(ctx, HistoryKey, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *Service) storeHistory(ctx context.Context, history []HistoryItem) error {
	return s.store(ctx, HistoryKey, history)
}

func (s *Service) load(ctx context.Context, key string, v interface{}) error {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.log.Warn("Discarding unreadable ", key, ": ", err)
	}
	return nil
}

func (s *Service) store(ctx context.Context, key string, v interface{}) error {
	bts, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(bts)); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}
