package dashboard

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/oauth2"
)

var discordEndpoint = oauth2.Endpoint{
	AuthURL:   "https://discord.com/oauth2/authorize",
	TokenURL:  "https://discord.com/api/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// Authenticator runs the OAuth2 authorization code flow
type Authenticator interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// DiscordOAuth is the Discord implementation of Authenticator
type DiscordOAuth struct {
	config *oauth2.Config
}

// NewDiscordOAuth configures the identify+guilds flow
func NewDiscordOAuth(clientID, clientSecret, redirectURI string) *DiscordOAuth {
	return &DiscordOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"identify", "guilds"},
			Endpoint:     discordEndpoint,
		},
	}
}

func (o *DiscordOAuth) AuthCodeURL(state string) string {
	return o.config.AuthCodeURL(state)
}

func (o *DiscordOAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}
	return token, nil
}

// UserClient reads the logged-in user's profile with their bearer token
type UserClient interface {
	CurrentUser(ctx context.Context, accessToken string) (*discordgo.User, error)
	CurrentUserGuilds(ctx context.Context, accessToken string) ([]UserGuild, error)
}

// DiscordUserClient calls the Discord REST API through a bearer-token discordgo session
type DiscordUserClient struct{}

// NewDiscordUserClient creates a user client
func NewDiscordUserClient() *DiscordUserClient {
	return &DiscordUserClient{}
}

func (c *DiscordUserClient) session(accessToken string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bearer " + accessToken)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	return s, nil
}

func (c *DiscordUserClient) CurrentUser(ctx context.Context, accessToken string) (*discordgo.User, error) {
	s, err := c.session(accessToken)
	if err != nil {
		return nil, err
	}
	user, err := s.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to load current user: %w", err)
	}
	return user, nil
}

func (c *DiscordUserClient) CurrentUserGuilds(ctx context.Context, accessToken string) ([]UserGuild, error) {
	s, err := c.session(accessToken)
	if err != nil {
		return nil, err
	}
	guilds, err := s.UserGuilds(200, "", "", false, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to load user guilds: %w", err)
	}

	result := make([]UserGuild, 0, len(guilds))
	for _, g := range guilds {
		result = append(result, UserGuild{
			ID:          g.ID,
			Name:        g.Name,
			Icon:        g.Icon,
			Permissions: g.Permissions,
		})
	}
	return result, nil
}
