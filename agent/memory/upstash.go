package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
)

const (
	defaultStoreKeyPrefix = "ai_toolkit:memory:"
	maxResponseSizeBytes  = 2 << 20
)

// StoreOption customizes UpstashRedisStore.
type StoreOption func(*UpstashRedisStore)

func WithKeyPrefix(prefix string) StoreOption {
	return func(s *UpstashRedisStore) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func WithHTTPClient(client *http.Client) StoreOption {
	return func(s *UpstashRedisStore) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// UpstashRedisStore persists entries in Upstash Redis via REST, one JSON
// document per (category, key).
type UpstashRedisStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
	keyPrefix  string
	now        func() time.Time
}

var _ Store = (*UpstashRedisStore)(nil)

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

type UpstashRedisConfig struct {
	URL     string        `envconfig:"URL" split_words:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

func NewUpstashRedisStore(cfg UpstashRedisConfig, opts ...StoreOption) (*UpstashRedisStore, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	store := &UpstashRedisStore{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		keyPrefix: defaultStoreKeyPrefix,
		now:       time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}

	return store, nil
}

func (s *UpstashRedisStore) Get(ctx context.Context, category, key string) (Entry, error) {
	category, key, err := normalizeKey(category, key)
	if err != nil {
		return Entry{}, err
	}

	resp, err := s.exec(ctx, []any{"GET", s.redisKey(category, key)})
	if err != nil {
		return Entry{}, fmt.Errorf("%w: get %s/%s: %v", contractx.ErrStorage, category, key, err)
	}

	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return Entry{}, fmt.Errorf("%w: %s/%s", ErrNotFound, category, key)
	}

	var encoded string
	if err := json.Unmarshal(result, &encoded); err != nil {
		return Entry{}, fmt.Errorf("%w: decode memory payload: %v", contractx.ErrStorage, err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(encoded), &entry); err != nil {
		return Entry{}, fmt.Errorf("%w: unmarshal memory entry: %v", contractx.ErrStorage, err)
	}
	return entry, nil
}

func (s *UpstashRedisStore) Set(ctx context.Context, category, key, value string, notes *string) error {
	category, key, err := normalizeKey(category, key)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(Entry{
		Category:  category,
		Key:       key,
		Value:     value,
		Notes:     notes,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("%w: marshal memory entry: %v", contractx.ErrStorage, err)
	}

	if _, err := s.exec(ctx, []any{"SET", s.redisKey(category, key), string(payload)}); err != nil {
		return fmt.Errorf("%w: set %s/%s: %v", contractx.ErrStorage, category, key, err)
	}
	return nil
}

// redisKey escapes both parts so a ':' inside category or key cannot
// make two pairs share a record.
func (s *UpstashRedisStore) redisKey(category, key string) string {
	return s.keyPrefix + url.QueryEscape(category) + ":" + url.QueryEscape(key)
}

func (s *UpstashRedisStore) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	if s == nil {
		return nil, errors.New("nil store")
	}
	if len(command) == 0 {
		return nil, errors.New("empty redis command")
	}

	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}
