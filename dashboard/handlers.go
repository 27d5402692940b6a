package dashboard

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"birthdaybot/domain/entities"
	"birthdaybot/domain/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const stateCookieMaxAge = 10 * 60

func (s *Server) health(c *gin.Context) {
	ctx, cancel := s.ctx(c)
	defer cancel()

	if s.deps.Health != nil {
		if err := s.deps.Health.Ping(ctx); err != nil {
			log.WithError(err).Warn("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) login(c *gin.Context) {
	state := uuid.New().String()
	s.setCookie(c, stateCookie, state, stateCookieMaxAge)
	c.Redirect(http.StatusFound, s.deps.Auth.AuthCodeURL(state))
}

func (s *Server) callback(c *gin.Context) {
	expected, err := c.Cookie(stateCookie)
	if err != nil || expected == "" || c.Query("state") != expected {
		abortWithError(c, http.StatusBadRequest, "État OAuth invalide")
		return
	}
	s.setCookie(c, stateCookie, "", -1)

	code := c.Query("code")
	if code == "" {
		abortWithError(c, http.StatusBadRequest, "Code d'autorisation manquant")
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	token, err := s.deps.Auth.Exchange(ctx, code)
	if err != nil {
		log.WithError(err).Warn("OAuth code exchange failed")
		abortWithError(c, http.StatusBadGateway, "Connexion à Discord impossible")
		return
	}

	user, err := s.deps.Users.CurrentUser(ctx, token.AccessToken)
	if err != nil {
		log.WithError(err).Warn("Failed to load Discord user")
		abortWithError(c, http.StatusBadGateway, "Connexion à Discord impossible")
		return
	}
	guilds, err := s.deps.Users.CurrentUserGuilds(ctx, token.AccessToken)
	if err != nil {
		log.WithError(err).Warn("Failed to load Discord user guilds")
		abortWithError(c, http.StatusBadGateway, "Connexion à Discord impossible")
		return
	}

	session := &Session{
		UserID:      user.ID,
		Username:    user.Username,
		AccessToken: token.AccessToken,
		Guilds:      guilds,
	}
	if err := s.deps.Sessions.Create(ctx, session); err != nil {
		log.WithError(err).Error("Failed to create dashboard session")
		abortWithError(c, http.StatusInternalServerError, "Erreur interne")
		return
	}

	log.WithFields(log.Fields{
		"user_id": user.ID,
		"guilds":  len(guilds),
	}).Info("Dashboard login")

	s.setCookie(c, sessionCookie, session.ID, int(SessionTTL.Seconds()))
	c.Redirect(http.StatusFound, "/dashboard")
}

func (s *Server) logout(c *gin.Context) {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		ctx, cancel := s.ctx(c)
		defer cancel()
		if err := s.deps.Sessions.Delete(ctx, id); err != nil {
			log.WithError(err).Warn("Failed to delete dashboard session")
		}
	}
	s.setCookie(c, sessionCookie, "", -1)
	c.Redirect(http.StatusFound, "/")
}

// listGuilds returns the guilds the user administers and the bot is a member of
func (s *Server) listGuilds(c *gin.Context) {
	session := sessionFrom(c)

	guilds := make([]UserGuild, 0, len(session.Guilds))
	for _, g := range session.Guilds {
		if g.IsAdmin() && s.deps.Catalog.HasGuild(g.ID) {
			guilds = append(guilds, g)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   gin.H{"id": session.UserID, "username": session.Username},
		"guilds": guilds,
	})
}

type settingsView struct {
	RoleID    *string `json:"role_id"`
	ChannelID *string `json:"channel_id"`
	Message   string  `json:"message"`
}

func newSettingsView(settings *entities.GuildSettings) settingsView {
	view := settingsView{Message: settings.MessageTemplate()}
	if settings.HasRole() {
		id := strconv.FormatInt(*settings.RoleID, 10)
		view.RoleID = &id
	}
	if settings.HasChannel() {
		id := strconv.FormatInt(*settings.ChannelID, 10)
		view.ChannelID = &id
	}
	return view
}

func (s *Server) getGuild(c *gin.Context) {
	guildIDStr := c.GetString(guildContextKey)
	guildID, _ := parseSnowflake(guildIDStr)

	ctx, cancel := s.ctx(c)
	defer cancel()

	details, err := s.deps.Catalog.GuildDetails(ctx, guildIDStr)
	if err != nil {
		log.WithError(err).WithField("guild_id", guildIDStr).Error("Failed to load guild from Discord")
		abortWithError(c, http.StatusBadGateway, "Impossible de charger le serveur")
		return
	}

	settings, err := s.deps.Settings.GetSettings(ctx, guildID)
	if err != nil {
		log.WithError(err).WithField("guild_id", guildIDStr).Error("Failed to load guild settings")
		abortWithError(c, http.StatusInternalServerError, "Erreur interne")
		return
	}

	birthdays, err := s.deps.Birthdays.GetGuildBirthdays(ctx, guildID)
	if err != nil {
		log.WithError(err).WithField("guild_id", guildIDStr).Error("Failed to load guild birthdays")
		abortWithError(c, http.StatusInternalServerError, "Erreur interne")
		return
	}

	birthdayMap := make(map[string]string, len(birthdays))
	for _, b := range birthdays {
		birthdayMap[strconv.FormatInt(b.MemberID, 10)] = b.ISODate()
	}

	c.JSON(http.StatusOK, gin.H{
		"guild":     gin.H{"id": details.ID, "name": details.Name},
		"settings":  newSettingsView(settings),
		"roles":     details.Roles,
		"channels":  details.Channels,
		"members":   details.Members,
		"birthdays": birthdayMap,
	})
}

type updateSettingsRequest struct {
	RoleID    string `json:"role_id"`
	ChannelID string `json:"channel_id"`
	Message   string `json:"message"`
}

func (s *Server) updateSettings(c *gin.Context) {
	guildID, _ := parseSnowflake(c.GetString(guildContextKey))

	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Requête invalide")
		return
	}

	if strings.TrimSpace(req.ChannelID) == "" {
		abortWithError(c, http.StatusBadRequest, "Le canal est obligatoire")
		return
	}
	if !strings.Contains(req.Message, entities.MembersPlaceholder) {
		abortWithError(c, http.StatusBadRequest, `Le message doit contenir "@membres"`)
		return
	}

	channelID, err := parseSnowflake(req.ChannelID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Salon invalide")
		return
	}
	var roleID *int64
	if strings.TrimSpace(req.RoleID) != "" {
		id, err := parseSnowflake(req.RoleID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Rôle invalide")
			return
		}
		roleID = &id
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	_, err = s.deps.Settings.UpdateSettings(ctx, guildID, roleID, &channelID, req.Message)
	switch {
	case errors.Is(err, entities.ErrChannelRequired):
		abortWithError(c, http.StatusBadRequest, "Le canal est obligatoire")
		return
	case errors.Is(err, entities.ErrMissingPlaceholder):
		abortWithError(c, http.StatusBadRequest, `Le message doit contenir "@membres"`)
		return
	case err != nil:
		log.WithError(err).WithField("guild_id", guildID).Error("Failed to save guild settings")
		abortWithError(c, http.StatusInternalServerError, "Erreur interne")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type updateBirthdayRequest struct {
	GuildID      string `json:"guild_id"`
	MemberID     string `json:"member_id"`
	BirthdayDate string `json:"birthday_date"`
}

// updateBirthday lets a guild administrator set any member's birthday
func (s *Server) updateBirthday(c *gin.Context) {
	var req updateBirthdayRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.GuildID == "" || req.MemberID == "" || req.BirthdayDate == "" {
		abortWithError(c, http.StatusBadRequest, "Données manquantes")
		return
	}

	guildID, err := parseSnowflake(req.GuildID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Données manquantes")
		return
	}
	memberID, err := parseSnowflake(req.MemberID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Données manquantes")
		return
	}

	if _, ok := sessionFrom(c).AdminGuild(req.GuildID); !ok {
		abortWithError(c, http.StatusForbidden, "Accès refusé")
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	_, err = s.deps.Birthdays.RegisterBirthday(ctx, guildID, memberID, req.BirthdayDate, services.SourceDashboard)
	if errors.Is(err, services.ErrInvalidBirthdayDate) {
		abortWithError(c, http.StatusBadRequest, "Format de date invalide, attendu YYYY-MM-DD")
		return
	}
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guild_id":  guildID,
			"member_id": memberID,
		}).Error("Failed to save birthday from dashboard")
		abortWithError(c, http.StatusInternalServerError, "Erreur interne")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Anniversaire mis à jour"})
}

func (s *Server) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", s.cfg.SecureCookies, true)
}

// parseSnowflake accepts only positive Discord IDs
func parseSnowflake(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("snowflake must be positive")
	}
	return id, nil
}
