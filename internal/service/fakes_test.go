package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/model"
	"github.com/quocanhngo/stillalive/internal/repository"
)

type fakeCheckIns struct {
	rows []model.CheckIn
}

func (f *fakeCheckIns) Create(ctx context.Context, c *model.CheckIn) error {
	f.rows = append(f.rows, *c)
	return nil
}

func (f *fakeCheckIns) sorted(userID uuid.UUID) []model.CheckIn {
	var out []model.CheckIn
	for _, c := range f.rows {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInTime.After(out[j].CheckInTime) })
	return out
}

func (f *fakeCheckIns) Latest(ctx context.Context, userID uuid.UUID) (*model.CheckIn, error) {
	rows := f.sorted(userID)
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (f *fakeCheckIns) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]model.CheckIn, error) {
	rows := f.sorted(userID)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

type fakeSettings struct {
	rows  map[uuid.UUID]model.Settings
	saves int
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{rows: map[uuid.UUID]model.Settings{}}
}

func (f *fakeSettings) Get(ctx context.Context, userID uuid.UUID) (*model.Settings, error) {
	s, ok := f.rows[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeSettings) Save(ctx context.Context, s *model.Settings) error {
	f.saves++
	f.rows[s.UserID] = *s
	return nil
}

func (f *fakeSettings) GetThreshold(ctx context.Context, userID uuid.UUID) (int, error) {
	if s, ok := f.rows[userID]; ok {
		return s.MiaThresholdHrs, nil
	}
	return model.DefaultMiaThresholdHrs, nil
}

type fakeContacts struct {
	rows map[uuid.UUID]*model.EmergencyContact
	// staleCount makes Count report zero, as a read racing another insert would
	staleCount bool
}

func newFakeContacts() *fakeContacts {
	return &fakeContacts{rows: map[uuid.UUID]*model.EmergencyContact{}}
}

func (f *fakeContacts) List(ctx context.Context, userID uuid.UUID, confirmedOnly bool) ([]model.EmergencyContact, error) {
	var out []model.EmergencyContact
	for _, c := range f.rows {
		if c.UserID == userID && (!confirmedOnly || c.IsConfirmed) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeContacts) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.EmergencyContact, error) {
	c, ok := f.rows[id]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeContacts) FindByToken(ctx context.Context, token string) (*model.EmergencyContact, error) {
	for _, c := range f.rows {
		if c.ConfirmationToken != nil && *c.ConfirmationToken == token {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeContacts) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	if f.staleCount {
		return 0, nil
	}
	return f.count(userID), nil
}

func (f *fakeContacts) count(userID uuid.UUID) int64 {
	var n int64
	for _, c := range f.rows {
		if c.UserID == userID {
			n++
		}
	}
	return n
}

func (f *fakeContacts) ExistsWith(ctx context.Context, userID uuid.UUID, column, value string, exclude uuid.UUID) (bool, error) {
	for _, c := range f.rows {
		if c.UserID != userID || c.ID == exclude {
			continue
		}
		switch column {
		case "email":
			if c.EmailAddress() == value {
				return true, nil
			}
		case "phone":
			if c.PhoneNumber() == value {
				return true, nil
			}
		default:
			return false, errors.New("unknown column")
		}
	}
	return false, nil
}

func (f *fakeContacts) Create(ctx context.Context, c *model.EmergencyContact, limit int) error {
	if f.count(c.UserID) >= int64(limit) {
		return repository.ErrContactLimit
	}
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeContacts) Update(ctx context.Context, c *model.EmergencyContact) error {
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeContacts) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	c, ok := f.rows[id]
	if !ok || c.UserID != userID {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

func (f *fakeContacts) Confirm(ctx context.Context, id uuid.UUID) error {
	c := f.rows[id]
	c.IsConfirmed = true
	c.ConfirmationExpires = nil
	return nil
}

type fakeLastWords struct {
	rows map[uuid.UUID]model.LastWords
}

func newFakeLastWords() *fakeLastWords {
	return &fakeLastWords{rows: map[uuid.UUID]model.LastWords{}}
}

func (f *fakeLastWords) Get(ctx context.Context, userID uuid.UUID) (*model.LastWords, error) {
	lw, ok := f.rows[userID]
	if !ok {
		return nil, nil
	}
	return &lw, nil
}

func (f *fakeLastWords) Save(ctx context.Context, userID uuid.UUID, message *string, threshold int) error {
	f.rows[userID] = model.LastWords{UserID: userID, Message: message, DeliveryThreshold: threshold}
	return nil
}

func (f *fakeLastWords) ClearMessage(ctx context.Context, userID uuid.UUID) error {
	lw, ok := f.rows[userID]
	if !ok {
		lw = model.LastWords{UserID: userID, DeliveryThreshold: model.DefaultLastWordsDeliveryThreshold}
	}
	lw.Message = nil
	f.rows[userID] = lw
	return nil
}

type sentMessage struct {
	To, Subject, Body string
}

type fakeSender struct {
	sent []sentMessage
	fail map[string]error
}

func (f *fakeSender) SendEmail(ctx context.Context, to, subject, body string) error {
	f.sent = append(f.sent, sentMessage{To: to, Subject: subject, Body: body})
	return f.fail[to]
}

func (f *fakeSender) SendSMS(ctx context.Context, to, body string) error {
	f.sent = append(f.sent, sentMessage{To: to, Body: body})
	return f.fail[to]
}

func ptr[T any](v T) *T { return &v }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
