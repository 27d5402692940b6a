package dashboard

import (
	"context"
	"errors"
	"net/http"
	"time"

	"birthdaybot/domain/interfaces"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Pinger checks a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds dashboard configuration
type Config struct {
	Addr          string
	SecureCookies bool
	RateLimit     rate.Limit // Requests per second per client IP
	RateBurst     int
}

// Dependencies are the collaborators the dashboard handlers call
type Dependencies struct {
	Sessions  SessionStore
	Auth      Authenticator
	Users     UserClient
	Catalog   GuildCatalog
	Birthdays interfaces.BirthdayService
	Settings  interfaces.GuildSettingsService
	Health    Pinger
}

// Server is the administration web API
type Server struct {
	cfg      Config
	deps     Dependencies
	router   *gin.Engine
	limiters *LimiterStore
}

// NewServer builds the router and registers every route
func NewServer(cfg Config, deps Dependencies) *Server {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 5
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 20
	}

	s := &Server{
		cfg:      cfg,
		deps:     deps,
		router:   gin.New(),
		limiters: NewLimiterStore(cfg.RateLimit, cfg.RateBurst, 10*time.Minute),
	}

	r := s.router
	r.Use(gin.Recovery())
	r.Use(s.loggingMiddleware())
	r.Use(s.rateLimitMiddleware())

	r.GET("/healthz", s.health)
	r.GET("/login", s.login)
	r.GET("/callback", s.callback)
	r.GET("/logout", s.logout)

	api := r.Group("/api")
	api.Use(s.requireSession())
	{
		api.GET("/guilds", s.listGuilds)
		api.POST("/birthdays", s.updateBirthday)

		guild := api.Group("/guilds/:guild_id")
		guild.Use(s.requireGuildAdmin())
		{
			guild.GET("", s.getGuild)
			guild.POST("/settings", s.updateSettings)
		}
	}

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP in the background and returns a cleanup function
func (s *Server) Start(ctx context.Context) func() {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", s.cfg.Addr).Info("Dashboard listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Dashboard server stopped")
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Dashboard shutdown failed")
		}
	}
}

func (s *Server) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 10*time.Second)
}
