package cmd

import (
	"context"
	"fmt"
	"time"

	"birthdaybot/application"
	"birthdaybot/bot"
	"birthdaybot/config"
	"birthdaybot/dashboard"
	"birthdaybot/database"
	"birthdaybot/domain/interfaces"
	"birthdaybot/domain/services"
	"birthdaybot/events"
	"birthdaybot/infrastructure"
	"birthdaybot/repository"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// readyTimeout bounds how long the one-shot check waits for the gateway
const readyTimeout = 30 * time.Second

// app holds the components shared by the long-running bot and the one-shot check
type app struct {
	cfg       *config.Config
	loc       *time.Location
	db        *database.DB
	nats      *infrastructure.NATSClient
	publisher events.Publisher
	bot       *bot.Bot
	job       *application.BirthdayJob

	birthdayService interfaces.BirthdayService
	settingsService interfaces.GuildSettingsService
}

// ConfigureLogging sets the logrus level and formatter
func ConfigureLogging(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", level)
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}

// bootstrap connects the database, migrates it, and wires services and the bot
func bootstrap(ctx context.Context, cfg *config.Config, publishEvents bool) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, loc: loc}

	log.Info("Connecting to database...")
	databaseURL := cfg.GetDatabaseURL()
	db, err := database.ConnectWithRetry(ctx, databaseURL, cfg.PoolOptions(), cfg.DatabaseConnectAttempts, cfg.DatabaseConnectDelay)
	if err != nil {
		return nil, err
	}
	a.db = db
	log.Info("Database connection established successfully")

	if err := database.RunMigrationsWithURL(databaseURL); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a.publisher = infrastructure.NewNoopEventPublisher()
	if publishEvents && cfg.NATSServers != "" {
		a.connectNATS(ctx)
	}

	birthdayRepo := repository.NewBirthdayRepository(db)
	settingsRepo := repository.NewGuildSettingsRepository(db)

	a.birthdayService = services.NewBirthdayService(birthdayRepo, a.publisher)
	a.settingsService = services.NewGuildSettingsService(settingsRepo, a.publisher)

	discordBot, err := bot.New(bot.Config{Token: cfg.DiscordToken}, a.birthdayService, a.settingsService)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	a.bot = discordBot

	a.job = application.NewBirthdayJob(birthdayRepo, settingsRepo, discordBot.Directory(), a.publisher)
	return a, nil
}

// connectNATS switches the publisher to NATS; a broker outage only disables events
func (a *app) connectNATS(ctx context.Context) {
	client := infrastructure.NewNATSClient(a.cfg.NATSServers)
	if err := client.Connect(ctx); err != nil {
		log.WithError(err).Warn("NATS unavailable, birthday events will not be published")
		return
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := infrastructure.EnsureBirthdayEventStream(client, mapper); err != nil {
		log.WithError(err).Warn("Failed to ensure birthday event stream, birthday events will not be published")
		client.Close()
		return
	}

	a.nats = client
	a.publisher = infrastructure.NewNATSEventPublisher(client, mapper)
}

func (a *app) close() {
	if a.bot != nil {
		if err := a.bot.Close(); err != nil {
			log.WithError(err).Warn("Error closing Discord bot")
		}
	}
	if a.nats != nil {
		a.nats.Close()
	}
	if a.db != nil {
		log.Info("Closing database connection...")
		a.db.Close()
	}
}

// Run starts the bot, the daily scheduler and the dashboard, and blocks until ctx is cancelled
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg.LogLevel)
	log.Info("Starting birthday bot...")

	a, err := bootstrap(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.bot.Open(); err != nil {
		return fmt.Errorf("failed to connect Discord bot: %w", err)
	}

	scheduler := application.NewScheduler(a.job, cfg.CheckTime, a.loc, a.bot.Ready())
	stopScheduler := scheduler.Start(ctx)
	defer stopScheduler()

	if cfg.DashboardEnabled() {
		stopDashboard, err := a.startDashboard(ctx)
		if err != nil {
			log.WithError(err).Error("Dashboard disabled")
		} else {
			defer stopDashboard()
		}
	} else {
		log.Info("Dashboard disabled (DISCORD_CLIENT_ID, DISCORD_CLIENT_SECRET or REDIRECT_URI missing)")
	}

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"timezone":    cfg.Timezone,
		"check_time":  cfg.CheckTime.String(),
	}).Info("Birthday bot is running")

	<-ctx.Done()
	log.Info("Shutting down birthday bot...")
	return nil
}

func (a *app) startDashboard(ctx context.Context) (func(), error) {
	rdb, err := dashboard.NewRedisClient(ctx, a.cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	server := dashboard.NewServer(dashboard.Config{
		Addr:          a.cfg.DashboardAddr,
		SecureCookies: a.cfg.Environment == "production",
	}, dashboard.Dependencies{
		Sessions:  dashboard.NewRedisSessionStore(rdb, dashboard.SessionTTL),
		Auth:      dashboard.NewDiscordOAuth(a.cfg.DiscordClientID, a.cfg.DiscordClientSecret, a.cfg.RedirectURI),
		Users:     dashboard.NewDiscordUserClient(),
		Catalog:   dashboard.NewBotCatalog(a.bot.GetSession()),
		Birthdays: a.birthdayService,
		Settings:  a.settingsService,
		Health:    a.db,
	})

	stop := server.Start(ctx)
	return func() {
		stop()
		closeRedis(rdb)
	}, nil
}

func closeRedis(rdb *redis.Client) {
	if err := rdb.Close(); err != nil {
		log.WithError(err).Warn("Error closing redis client")
	}
}

// RunCheck runs one birthday check for the given date and exits. Events are not published.
func RunCheck(ctx context.Context, date time.Time) error {
	cfg := config.Get()
	ConfigureLogging(cfg.LogLevel)

	a, err := bootstrap(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.bot.Open(); err != nil {
		return fmt.Errorf("failed to connect Discord bot: %w", err)
	}

	select {
	case <-a.bot.Ready():
	case <-time.After(readyTimeout):
		return fmt.Errorf("discord gateway not ready after %v", readyTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	scheduler := application.NewScheduler(a.job, cfg.CheckTime, a.loc, nil)
	report, _ := scheduler.TriggerFor(ctx, date)
	if report == nil {
		return fmt.Errorf("birthday check for %s did not complete", date.Format("2006-01-02"))
	}
	if failures := report.Failures(); failures > 0 {
		return fmt.Errorf("birthday check for %s finished with %d failure(s)", date.Format("2006-01-02"), failures)
	}
	return nil
}
