package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionTTL is how long a dashboard login stays valid
const SessionTTL = 7 * 24 * time.Hour

// ErrSessionNotFound is returned for unknown or expired sessions
var ErrSessionNotFound = errors.New("session not found")

// UserGuild is a guild the logged-in user belongs to, with their computed permissions
type UserGuild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Permissions int64  `json:"permissions"`
}

// IsAdmin reports whether the user holds the ADMINISTRATOR bit in the guild
func (g UserGuild) IsAdmin() bool {
	return g.Permissions&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator
}

// Session is a logged-in dashboard user
type Session struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Username    string      `json:"username"`
	AccessToken string      `json:"access_token"`
	Guilds      []UserGuild `json:"guilds"`
	CreatedAt   time.Time   `json:"created_at"`
}

// AdminGuild returns the session guild when the user administers it
func (s *Session) AdminGuild(guildID string) (UserGuild, bool) {
	for _, g := range s.Guilds {
		if g.ID == guildID && g.IsAdmin() {
			return g, true
		}
	}
	return UserGuild{}, false
}

// SessionStore persists dashboard sessions
type SessionStore interface {
	// Create assigns a new ID to the session and stores it
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// RedisSessionStore keeps sessions as JSON documents with a TTL
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisClient opens a pooled Redis client and checks it answers
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opts.PoolSize = 10
	opts.MinIdleConns = 1
	opts.ConnMaxIdleTime = 5 * time.Minute
	opts.ConnMaxLifetime = 30 * time.Minute

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return rdb, nil
}

// NewRedisSessionStore creates a session store on top of an existing client
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return "dashboard:session:" + id
}

// Create stores a new session under a random ID
func (s *RedisSessionStore) Create(ctx context.Context, session *Session) error {
	session.ID = uuid.New().String()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.rdb.Set(ctx, sessionKey(session.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get loads a session, returning ErrSessionNotFound when it expired
func (s *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

// Delete removes a session; deleting an unknown session is not an error
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
