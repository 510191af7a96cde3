package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/model"
)

const recentCheckIns = 3

type checkInStore interface {
	Create(ctx context.Context, c *model.CheckIn) error
	Latest(ctx context.Context, userID uuid.UUID) (*model.CheckIn, error)
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]model.CheckIn, error)
}

// CheckInService records "still alive" check-ins
type CheckInService struct {
	store checkInStore
	now   func() time.Time
}

func NewCheckInService(store checkInStore) *CheckInService {
	return &CheckInService{store: store, now: time.Now}
}

// CheckIn appends a check-in, which starts a new silence episode
func (s *CheckInService) CheckIn(ctx context.Context, userID uuid.UUID) (*model.CheckInResponse, error) {
	now := s.now().UTC()

	last, err := s.store.Latest(ctx, userID)
	if err != nil {
		return nil, err
	}

	c := &model.CheckIn{
		ID:          uuid.New(),
		UserID:      userID,
		CheckInTime: now,
		StreakCount: NextStreak(last, now),
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}

	recent, err := s.store.ListRecent(ctx, userID, recentCheckIns)
	if err != nil {
		return nil, err
	}
	return &model.CheckInResponse{CheckIn: *c, CurrentStreak: c.StreakCount, Recent: recent}, nil
}

// Recent returns the latest check-ins and the current streak
func (s *CheckInService) Recent(ctx context.Context, userID uuid.UUID) (*model.CheckInResponse, error) {
	recent, err := s.store.ListRecent(ctx, userID, recentCheckIns)
	if err != nil {
		return nil, err
	}
	resp := &model.CheckInResponse{Recent: recent}
	if len(recent) > 0 {
		resp.CheckIn = recent[0]
		resp.CurrentStreak = recent[0].StreakCount
	}
	return resp, nil
}

// NextStreak continues the streak of last. A check-in on the same UTC day
// keeps the count, the next day within 24h adds one, and anything longer
// starts over.
func NextStreak(last *model.CheckIn, now time.Time) int {
	if last == nil || now.Sub(last.CheckInTime) > 24*time.Hour {
		return 1
	}
	ly, lm, ld := last.CheckInTime.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	if ly == ny && lm == nm && ld == nd {
		return last.StreakCount
	}
	return last.StreakCount + 1
}
