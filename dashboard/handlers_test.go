package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"birthdaybot/domain/entities"
	"birthdaybot/domain/services"
	"birthdaybot/domain/testhelpers"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memorySessionStore struct {
	sessions map[string]*Session
	next     int
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]*Session)}
}

func (m *memorySessionStore) Create(ctx context.Context, session *Session) error {
	m.next++
	session.ID = fmt.Sprintf("sess-%d", m.next)
	m.sessions[session.ID] = session
	return nil
}

func (m *memorySessionStore) Get(ctx context.Context, id string) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *memorySessionStore) Delete(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

type fakeAuthenticator struct {
	exchangeErr error
}

func (f *fakeAuthenticator) AuthCodeURL(state string) string {
	return "https://discord.test/oauth2/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeAuthenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oauth2.Token{AccessToken: "access-" + code}, nil
}

type fakeUserClient struct {
	user   *discordgo.User
	guilds []UserGuild
}

func (f *fakeUserClient) CurrentUser(ctx context.Context, accessToken string) (*discordgo.User, error) {
	return f.user, nil
}

func (f *fakeUserClient) CurrentUserGuilds(ctx context.Context, accessToken string) ([]UserGuild, error) {
	return f.guilds, nil
}

type fakeCatalog struct {
	details map[string]*GuildDetails
}

func (f *fakeCatalog) HasGuild(guildID string) bool {
	_, ok := f.details[guildID]
	return ok
}

func (f *fakeCatalog) GuildDetails(ctx context.Context, guildID string) (*GuildDetails, error) {
	d, ok := f.details[guildID]
	if !ok {
		return nil, errors.New("unknown guild")
	}
	return d, nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

const adminPermissions = int64(discordgo.PermissionAdministrator)

type testEnv struct {
	server    *Server
	sessions  *memorySessionStore
	auth      *fakeAuthenticator
	users     *fakeUserClient
	birthdays *testhelpers.MockBirthdayService
	settings  *testhelpers.MockGuildSettingsService
	pingErr   error
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		sessions: newMemorySessionStore(),
		auth:     &fakeAuthenticator{},
		users: &fakeUserClient{
			user: &discordgo.User{ID: "500", Username: "alice"},
			guilds: []UserGuild{
				{ID: "100", Name: "Admin here", Permissions: adminPermissions},
				{ID: "200", Name: "Member only", Permissions: 0},
				{ID: "300", Name: "Bot absent", Permissions: adminPermissions},
			},
		},
		birthdays: new(testhelpers.MockBirthdayService),
		settings:  new(testhelpers.MockGuildSettingsService),
	}

	catalog := &fakeCatalog{details: map[string]*GuildDetails{
		"100": {
			ID:       "100",
			Name:     "Admin here",
			Roles:    []NamedEntity{{ID: "900", Name: "Anniversaire"}},
			Channels: []NamedEntity{{ID: "700", Name: "general"}},
			Members:  []MemberEntry{{ID: "10", Username: "bob", DisplayName: "Bob"}},
		},
		"200": {ID: "200", Name: "Member only"},
	}}

	env.server = NewServer(Config{Addr: ":0"}, Dependencies{
		Sessions:  env.sessions,
		Auth:      env.auth,
		Users:     env.users,
		Catalog:   catalog,
		Birthdays: env.birthdays,
		Settings:  env.settings,
		Health:    pingFunc(func(ctx context.Context) error { return env.pingErr }),
	})
	return env
}

// loggedIn stores a session for the default user and returns its ID
func (e *testEnv) loggedIn() string {
	session := &Session{UserID: "500", Username: "alice", Guilds: e.users.guilds}
	_ = e.sessions.Create(context.Background(), session)
	return session.ID
}

func (e *testEnv) do(method, path, sessionID string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionID})
	}

	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	env.pingErr = errors.New("connection refused")
	w = env.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/login", "", nil)
	require.Equal(t, http.StatusFound, w.Code)

	var state string
	for _, c := range w.Result().Cookies() {
		if c.Name == stateCookie {
			state = c.Value
		}
	}
	require.NotEmpty(t, state)
	assert.Contains(t, w.Header().Get("Location"), "state="+url.QueryEscape(state))

	t.Run("state mismatch is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/callback?code=abc&state=forged", nil)
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: state})
		w := httptest.NewRecorder()
		env.server.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, env.sessions.sessions)
	})

	t.Run("valid callback creates a session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/callback?code=abc&state="+url.QueryEscape(state), nil)
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: state})
		w := httptest.NewRecorder()
		env.server.Handler().ServeHTTP(w, req)

		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/dashboard", w.Header().Get("Location"))

		var sessionID string
		for _, c := range w.Result().Cookies() {
			if c.Name == sessionCookie {
				sessionID = c.Value
				assert.True(t, c.HttpOnly)
				assert.Equal(t, int(SessionTTL.Seconds()), c.MaxAge)
			}
		}
		require.NotEmpty(t, sessionID)

		session, err := env.sessions.Get(context.Background(), sessionID)
		require.NoError(t, err)
		assert.Equal(t, "500", session.UserID)
		assert.Equal(t, "access-abc", session.AccessToken)
		assert.Len(t, session.Guilds, 3)

		w = env.do(http.MethodGet, "/logout", sessionID, nil)
		assert.Equal(t, http.StatusFound, w.Code)
		_, err = env.sessions.Get(context.Background(), sessionID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestCallback_ExchangeFailure(t *testing.T) {
	env := newTestEnv(t)
	env.auth.exchangeErr = errors.New("invalid_grant")

	req := httptest.NewRequest(http.MethodGet, "/callback?code=abc&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "s1"})
	w := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Empty(t, env.sessions.sessions)
}

func TestListGuilds(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/guilds", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/api/guilds", "expired", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/api/guilds", env.loggedIn(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	guilds := decode(t, w)["guilds"].([]any)
	require.Len(t, guilds, 1)
	assert.Equal(t, "100", guilds[0].(map[string]any)["id"])
}

func TestGetGuild(t *testing.T) {
	t.Run("requires administrator rights", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do(http.MethodGet, "/api/guilds/200", env.loggedIn(), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown to the bot", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do(http.MethodGet, "/api/guilds/300", env.loggedIn(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("returns settings and birthdays", func(t *testing.T) {
		env := newTestEnv(t)
		channelID := int64(700)
		env.settings.On("GetSettings", mock.Anything, int64(100)).
			Return(&entities.GuildSettings{GuildID: 100, ChannelID: &channelID}, nil)
		env.birthdays.On("GetGuildBirthdays", mock.Anything, int64(100)).Return([]*entities.Birthday{
			{GuildID: 100, MemberID: 10, Date: time.Date(1990, time.March, 15, 0, 0, 0, 0, time.UTC)},
		}, nil)

		w := env.do(http.MethodGet, "/api/guilds/100", env.loggedIn(), nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decode(t, w)
		assert.Equal(t, "Admin here", body["guild"].(map[string]any)["name"])
		settings := body["settings"].(map[string]any)
		assert.Equal(t, "700", settings["channel_id"])
		assert.Nil(t, settings["role_id"])
		assert.Equal(t, entities.DefaultBirthdayMessage, settings["message"])
		assert.Equal(t, map[string]any{"10": "1990-03-15"}, body["birthdays"])
		assert.Len(t, body["members"], 1)
	})
}

func TestUpdateSettings(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]string
		status  int
		message string
	}{
		{"missing channel", map[string]string{"message": "Bravo @membres"}, http.StatusBadRequest, "Le canal est obligatoire"},
		{"missing placeholder", map[string]string{"channel_id": "700", "message": "Bravo"}, http.StatusBadRequest, `Le message doit contenir "@membres"`},
		{"malformed channel", map[string]string{"channel_id": "general", "message": "Bravo @membres"}, http.StatusBadRequest, "Salon invalide"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := env.do(http.MethodPost, "/api/guilds/100/settings", env.loggedIn(), tt.body)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, decode(t, w)["error"])
			env.settings.AssertNotCalled(t, "UpdateSettings", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("saves settings", func(t *testing.T) {
		env := newTestEnv(t)
		roleID, channelID := int64(900), int64(700)
		env.settings.On("UpdateSettings", mock.Anything, int64(100), &roleID, &channelID, "Bravo @membres").
			Return(&entities.GuildSettings{GuildID: 100}, nil)

		w := env.do(http.MethodPost, "/api/guilds/100/settings", env.loggedIn(), map[string]string{
			"role_id": "900", "channel_id": "700", "message": "Bravo @membres",
		})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decode(t, w)["success"])
		env.settings.AssertExpectations(t)
	})

	t.Run("empty role disables role handling", func(t *testing.T) {
		env := newTestEnv(t)
		channelID := int64(700)
		env.settings.On("UpdateSettings", mock.Anything, int64(100), (*int64)(nil), &channelID, "Bravo @membres").
			Return(&entities.GuildSettings{GuildID: 100}, nil)

		w := env.do(http.MethodPost, "/api/guilds/100/settings", env.loggedIn(), map[string]string{
			"role_id": "", "channel_id": "700", "message": "Bravo @membres",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		env.settings.AssertExpectations(t)
	})

	t.Run("non admin is refused", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do(http.MethodPost, "/api/guilds/200/settings", env.loggedIn(), map[string]string{
			"channel_id": "700", "message": "Bravo @membres",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestUpdateBirthday(t *testing.T) {
	t.Run("requires a session", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do(http.MethodPost, "/api/birthdays", "", map[string]string{
			"guild_id": "100", "member_id": "10", "birthday_date": "1990-03-15",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Authentification requise", decode(t, w)["error"])
	})

	t.Run("missing data", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do(http.MethodPost, "/api/birthdays", env.loggedIn(), map[string]string{"guild_id": "100"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Données manquantes", decode(t, w)["error"])
	})

	t.Run("invalid date", func(t *testing.T) {
		env := newTestEnv(t)
		env.birthdays.On("RegisterBirthday", mock.Anything, int64(100), int64(10), "15/03/1990", services.SourceDashboard).
			Return(nil, fmt.Errorf("%w: bad layout", services.ErrInvalidBirthdayDate))

		w := env.do(http.MethodPost, "/api/birthdays", env.loggedIn(), map[string]string{
			"guild_id": "100", "member_id": "10", "birthday_date": "15/03/1990",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Format de date invalide, attendu YYYY-MM-DD", decode(t, w)["error"])
	})

	t.Run("non admin is refused", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do(http.MethodPost, "/api/birthdays", env.loggedIn(), map[string]string{
			"guild_id": "200", "member_id": "10", "birthday_date": "1990-03-15",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
		env.birthdays.AssertNotCalled(t, "RegisterBirthday", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("saves birthday", func(t *testing.T) {
		env := newTestEnv(t)
		env.birthdays.On("RegisterBirthday", mock.Anything, int64(100), int64(10), "1990-03-15", services.SourceDashboard).
			Return(&entities.Birthday{GuildID: 100, MemberID: 10}, nil)

		w := env.do(http.MethodPost, "/api/birthdays", env.loggedIn(), map[string]string{
			"guild_id": "100", "member_id": "10", "birthday_date": "1990-03-15",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Anniversaire mis à jour", decode(t, w)["message"])
		env.birthdays.AssertExpectations(t)
	})
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t)
	env.server.limiters = NewLimiterStore(1, 2, time.Minute)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/healthz", "", nil).Code)
	w := env.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}
