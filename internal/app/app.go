// Package app wires configuration into the database, senders and the MIA
// engine. Both the API server and stillctl build on it.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/quocanhngo/stillalive/internal/config"
	"github.com/quocanhngo/stillalive/internal/mia"
	"github.com/quocanhngo/stillalive/internal/repository"
	"github.com/quocanhngo/stillalive/internal/scheduler"
	"github.com/quocanhngo/stillalive/pkg/mailer"
	"github.com/quocanhngo/stillalive/pkg/notification"
	"github.com/quocanhngo/stillalive/pkg/sealer"
	"github.com/quocanhngo/stillalive/pkg/sms"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// App holds the long-lived dependencies of a process
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *gorm.DB
	Redis   *redis.Client
	Gateway *repository.Gateway
	Mailer  *mailer.Mailer
	SMS     *sms.Client
	Push    *notification.NotificationService
	Engine  *mia.Engine
}

// OpenDB connects to PostgreSQL with gorm logging tuned to APP_ENV
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.App.IsProduction() {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}
	return gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{Logger: gormLogger})
}

// OpenRedis connects and pings Redis
func OpenRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// NewSealer returns nil when no last-words secret is configured
func NewSealer(cfg config.LastWordsConfig) (*sealer.Sealer, error) {
	if cfg.EncPassword == "" && cfg.EncSalt == "" {
		return nil, nil
	}
	s, err := sealer.New(cfg.EncPassword, cfg.EncSalt)
	if errors.Is(err, sealer.ErrMissingSecret) {
		return nil, fmt.Errorf("LAST_WORDS_ENC_PASSWORD and LAST_WORDS_ENC_SALT must be set together: %w", err)
	}
	return s, err
}

// New builds the database-backed engine. Redis is opened only when withRedis
// is set; the scheduler lock and token revocation need it.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, withRedis bool) (*App, error) {
	db, err := OpenDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	log.Info("connected to PostgreSQL")
	return build(ctx, cfg, log, db, withRedis)
}

// build owns db from here on and closes it if any later step fails
func build(ctx context.Context, cfg *config.Config, log *zap.Logger, db *gorm.DB, withRedis bool) (_ *App, err error) {
	a := &App{Config: cfg, Logger: log, DB: db}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if withRedis {
		a.Redis, err = OpenRedis(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr()))
	}

	seal, err := NewSealer(cfg.LastWords)
	if err != nil {
		return nil, err
	}
	if seal == nil {
		log.Warn("last words encryption disabled, messages are stored as plain text")
	}

	a.Gateway = repository.NewGateway(db, repository.NewLastWordsRepository(db, seal))

	a.Mailer = mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
		Timeout:  cfg.SMTP.Timeout,
	}, log)
	log.Info("SMTP configured", zap.String("host", cfg.SMTP.Host), zap.String("port", cfg.SMTP.Port))

	a.SMS = sms.New(sms.Config{
		AccountSID: cfg.Twilio.AccountSID,
		AuthToken:  cfg.Twilio.AuthToken,
		FromNumber: cfg.Twilio.FromNumber,
		APIBaseURL: cfg.Twilio.APIBaseURL,
	}, log)

	channel := mia.ParseChannel(cfg.MIA.AlertChannel)
	if channel == mia.ChannelSMS && !a.SMS.Enabled() {
		log.Warn("MIA_ALERT_CHANNEL is sms but Twilio is not configured; emergency sends will fail and be retried")
	}

	a.Push = notification.NewNotificationService(ctx, cfg.Firebase.CredentialsFile, a.Gateway.Users, log)

	opts := mia.Options{Channel: channel, BaseURL: cfg.App.BaseURL}
	if a.Push != nil {
		opts.Pusher = a.Push
	}
	a.Engine = mia.NewEngine(a.Gateway, a.Mailer, a.SMS, log.Named("mia"), opts)
	return a, nil
}

// Scheduler builds the sweep scheduler, with the Redis lock when enabled
func (a *App) Scheduler() *scheduler.Scheduler {
	opts := scheduler.Options{
		Interval: a.Config.MIA.SweepInterval,
		Logger:   a.Logger.Named("scheduler"),
	}
	if a.Config.MIA.LockEnabled && a.Redis != nil {
		opts.Locker = scheduler.NewRedisLocker(a.Redis, scheduler.DefaultLockKey, a.Config.MIA.LockTTL)
	}
	return scheduler.New(a.Engine, opts)
}

// Close releases the database and Redis connections
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB == nil {
		return
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
