package imagery

import (
	"agroscan/internal/metrics"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const DefaultTokenURL = "https://services.sentinel-hub.com/oauth/token"

// RefreshMargin is how long before expiry a cached token is replaced
const RefreshMargin = 60 * time.Second

// TokenStore shares a token between processes. Load returns nil, nil when
// nothing is stored.
type TokenStore interface {
	Load(ctx context.Context) (*oauth2.Token, error)
	Save(ctx context.Context, token *oauth2.Token) error
}

// TokenCache keeps one client-credentials token for the whole process and
// refreshes it shortly before it expires.
type TokenCache struct {
	mu    sync.Mutex
	token *oauth2.Token
	fetch func(ctx context.Context) (*oauth2.Token, error)
	store TokenStore
	now   func() time.Time
}

// NewTokenCache creates a token cache for the given credentials. store may
// be nil.
func NewTokenCache(clientID, clientSecret, tokenURL string, store TokenStore) *TokenCache {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	return newTokenCache(cfg.Token, store)
}

func newTokenCache(fetch func(ctx context.Context) (*oauth2.Token, error), store TokenStore) *TokenCache {
	return &TokenCache{
		fetch: fetch,
		store: store,
		now:   time.Now,
	}
}

// Token returns a bearer token valid for at least RefreshMargin
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fresh(c.token) {
		return c.token.AccessToken, nil
	}

	if c.store != nil {
		stored, err := c.store.Load(ctx)
		if err != nil {
			log.Printf("Warning: failed to load shared token: %v", err)
		} else if c.fresh(stored) {
			c.token = stored
			return stored.AccessToken, nil
		}
	}

	token, err := c.fetch(ctx)
	metrics.RecordTokenRefresh(err)
	if err != nil {
		return "", fmt.Errorf("failed to fetch token: %w", err)
	}
	if token == nil || token.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned an empty token")
	}
	c.token = token

	if c.store != nil {
		if err := c.store.Save(ctx, token); err != nil {
			log.Printf("Warning: failed to share token: %v", err)
		}
	}

	return token.AccessToken, nil
}

func (c *TokenCache) fresh(token *oauth2.Token) bool {
	if token == nil || token.AccessToken == "" {
		return false
	}
	if token.Expiry.IsZero() {
		return true
	}
	return token.Expiry.Sub(c.now()) > RefreshMargin
}

// RedisTokenStore keeps the token in Redis under a single key with a TTL
// matching the token lifetime.
type RedisTokenStore struct {
	client *redis.Client
	key    string
}

// NewRedisTokenStore creates a Redis-backed token store
func NewRedisTokenStore(client *redis.Client, key string) *RedisTokenStore {
	return &RedisTokenStore{client: client, key: key}
}

func (s *RedisTokenStore) Load(ctx context.Context) (*oauth2.Token, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.key, err)
	}
	return decodeToken(data)
}

func (s *RedisTokenStore) Save(ctx context.Context, token *oauth2.Token) error {
	ttl := tokenTTL(token, time.Now())
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := s.client.Set(ctx, s.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.key, err)
	}
	return nil
}

func decodeToken(data []byte) (*oauth2.Token, error) {
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &token, nil
}

// tokenTTL is how long a token stays useful to other instances
func tokenTTL(token *oauth2.Token, now time.Time) time.Duration {
	if token == nil || token.Expiry.IsZero() {
		return 0
	}
	return token.Expiry.Sub(now) - RefreshMargin
}
