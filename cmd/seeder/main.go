package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/app"
	"github.com/quocanhngo/stillalive/internal/config"
	"github.com/quocanhngo/stillalive/internal/model"
	"github.com/quocanhngo/stillalive/internal/repository"
	"github.com/quocanhngo/stillalive/pkg/auth"
	"github.com/quocanhngo/stillalive/pkg/logger"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// demoUser is seeded with a check-in `silence` ago, so the next sweep finds
// each user in a different phase.
type demoUser struct {
	name      string
	threshold int
	silence   time.Duration
}

var demoUsers = []demoUser{
	{"Safe Sam", 24, 2 * time.Hour},
	{"Pre-alert Pat", 24, 23*time.Hour + 20*time.Minute},
	{"Emergency Erin", 12, 13 * time.Hour},
	{"Farewell Finn", 12, 50 * time.Hour},
}

func main() {
	cfg := config.Load()

	zl, err := logger.New(logger.Config{Level: "info", Format: "console", Service: "seeder"})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	db, err := app.OpenDB(cfg)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	// Force DB logging off to avoid noise
	db.Logger = gormlogger.Default.LogMode(gormlogger.Silent)

	seal, err := app.NewSealer(cfg.LastWords)
	if err != nil {
		zl.Fatal("invalid last words secret", zap.Error(err))
	}
	gw := repository.NewGateway(db, repository.NewLastWordsRepository(db, seal))
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, 30*24*time.Hour)

	ctx := context.Background()
	now := time.Now().UTC()

	zl.Info("seeding demo users", zap.Int("count", len(demoUsers)))
	for i, d := range demoUsers {
		id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("stillalive-demo-%d", i+1)))
		email := fmt.Sprintf("demo%d@stillalive.local", i+1)

		user, err := gw.Users.UpsertProfile(ctx, id, email, d.name)
		if err != nil {
			zl.Error("failed to create user", zap.String("email", email), zap.Error(err))
			continue
		}

		if err := seedUser(ctx, gw, user, d, now); err != nil {
			zl.Error("failed to seed user", zap.String("email", email), zap.Error(err))
			continue
		}

		token, err := jwtManager.GenerateToken(user.ID, user.Email, user.Name)
		if err != nil {
			zl.Fatal("failed to sign token", zap.Error(err))
		}
		zl.Info("seeded user",
			zap.String("name", d.name),
			zap.String("email", email),
			zap.Duration("silent_for", d.silence),
			zap.String("token", token),
		)
	}

	zl.Info("seeding completed")
}

func seedUser(ctx context.Context, gw *repository.Gateway, user *model.User, d demoUser, now time.Time) error {
	settings := model.DefaultSettings(user.ID)
	settings.MiaThresholdHrs = d.threshold
	if err := gw.Settings.Save(ctx, &settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	if n, err := gw.Contacts.Count(ctx, user.ID); err != nil {
		return err
	} else if n == 0 {
		email := fmt.Sprintf("contact+%s@stillalive.local", user.ID.String()[:8])
		contact := &model.EmergencyContact{
			ID:          uuid.New(),
			UserID:      user.ID,
			Name:        "Demo Contact",
			Email:       &email,
			IsConfirmed: true,
		}
		if err := gw.Contacts.Create(ctx, contact, model.MaxEmergencyContacts); err != nil {
			return fmt.Errorf("create contact: %w", err)
		}
	}

	message := fmt.Sprintf("Hi, it's %s. If you're reading this, please water my plants.", user.Name)
	if err := gw.LastWords.Save(ctx, user.ID, &message, model.DefaultLastWordsDeliveryThreshold); err != nil {
		return fmt.Errorf("save last words: %w", err)
	}

	checkIn := &model.CheckIn{
		ID:          uuid.New(),
		UserID:      user.ID,
		CheckInTime: now.Add(-d.silence),
		StreakCount: 1,
	}
	return gw.CheckIns.Create(ctx, checkIn)
}
