package dashboard

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	sessionCookie = "birthdaybot_session"
	stateCookie   = "birthdaybot_oauth_state"

	sessionContextKey = "session"
	guildContextKey   = "guild_id"
)

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(log.Fields{
			"method":     c.Request.Method,
			"path":       path,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		})

		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("HTTP request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("HTTP request rejected")
		default:
			entry.Debug("HTTP request")
		}
	}
}

func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiters.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			abortWithError(c, http.StatusTooManyRequests, "Trop de requêtes, réessaie dans un instant")
			return
		}
		c.Next()
	}
}

// requireSession loads the session named by the cookie, answering 401 without one
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		if err != nil || id == "" {
			abortWithError(c, http.StatusUnauthorized, "Authentification requise")
			return
		}

		ctx, cancel := s.ctx(c)
		defer cancel()

		session, err := s.deps.Sessions.Get(ctx, id)
		if errors.Is(err, ErrSessionNotFound) {
			abortWithError(c, http.StatusUnauthorized, "Authentification requise")
			return
		}
		if err != nil {
			log.WithError(err).Error("Failed to load dashboard session")
			abortWithError(c, http.StatusInternalServerError, "Erreur interne")
			return
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// requireGuildAdmin answers 403 unless the user administers the guild, and 404
// when the bot is not in it
func (s *Server) requireGuildAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		guildID := c.Param("guild_id")
		if _, err := parseSnowflake(guildID); err != nil {
			abortWithError(c, http.StatusBadRequest, "Serveur invalide")
			return
		}

		if _, ok := sessionFrom(c).AdminGuild(guildID); !ok {
			abortWithError(c, http.StatusForbidden, "Accès refusé")
			return
		}
		if !s.deps.Catalog.HasGuild(guildID) {
			abortWithError(c, http.StatusNotFound, "Le bot n'est pas sur ce serveur")
			return
		}

		c.Set(guildContextKey, guildID)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *Session {
	return c.MustGet(sessionContextKey).(*Session)
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}
