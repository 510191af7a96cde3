package mia

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/model"
)

// fakeStore is an in-memory Store for engine tests
type fakeStore struct {
	mu sync.Mutex

	users      []model.User
	settings   map[uuid.UUID]model.Settings
	checkIns   map[uuid.UUID][]model.CheckIn
	states     map[uuid.UUID]model.MiaNotificationState
	contacts   map[uuid.UUID][]model.EmergencyContact
	deliveries Deliveries
	lastWords  map[uuid.UUID]model.LastWords

	settingsErr map[uuid.UUID]error
	expired     []uuid.UUID
	upserts     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		settings:    make(map[uuid.UUID]model.Settings),
		checkIns:    make(map[uuid.UUID][]model.CheckIn),
		states:      make(map[uuid.UUID]model.MiaNotificationState),
		contacts:    make(map[uuid.UUID][]model.EmergencyContact),
		deliveries:  Deliveries{},
		lastWords:   make(map[uuid.UUID]model.LastWords),
		settingsErr: make(map[uuid.UUID]error),
	}
}

func (f *fakeStore) addUser(name, email string) model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := model.User{ID: uuid.New(), Name: name, Email: email}
	f.users = append(f.users, u)
	return u
}

func (f *fakeStore) setSettings(s model.Settings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[s.UserID] = s
}

func (f *fakeStore) checkIn(userID uuid.UUID, at time.Time) model.CheckIn {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := model.CheckIn{ID: uuid.New(), UserID: userID, CheckInTime: at, StreakCount: 1}
	f.checkIns[userID] = append(f.checkIns[userID], c)
	return c
}

func (f *fakeStore) addContact(userID uuid.UUID, name, email string) model.EmergencyContact {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := model.EmergencyContact{ID: uuid.New(), UserID: userID, Name: name, Email: &email, IsConfirmed: true}
	f.contacts[userID] = append(f.contacts[userID], c)
	return c
}

func (f *fakeStore) addPhoneContact(userID uuid.UUID, name, phone string, confirmed bool) model.EmergencyContact {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := model.EmergencyContact{ID: uuid.New(), UserID: userID, Name: name, Phone: &phone, IsConfirmed: confirmed}
	f.contacts[userID] = append(f.contacts[userID], c)
	return c
}

func (f *fakeStore) setLastWords(userID uuid.UUID, message string, threshold int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastWords[userID] = model.LastWords{UserID: userID, Message: &message, DeliveryThreshold: threshold}
}

func (f *fakeStore) state(userID uuid.UUID) *model.MiaNotificationState {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.states[userID]
	return &s
}

func (f *fakeStore) delivery(key model.DeliveryKey) (model.AlertDelivery, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deliveries[key]
	return d, ok
}

func (f *fakeStore) ListUsers(ctx context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.User(nil), f.users...), nil
}

func (f *fakeStore) GetSettings(ctx context.Context, userID uuid.UUID) (*model.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.settingsErr[userID]; err != nil {
		return nil, err
	}
	s, ok := f.settings[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeStore) ExpireEmergencyMode(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.settings[userID]
	if !ok {
		return errors.New("settings not found")
	}
	s.EmergencyModeEnabled = false
	s.EmergencyModeEndTime = nil
	s.EmergencyModeMultiplier = model.DefaultEmergencyModeMultiplier
	f.settings[userID] = s
	f.expired = append(f.expired, userID)
	return nil
}

func (f *fakeStore) LatestCheckIn(ctx context.Context, userID uuid.UUID) (*model.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := append([]model.CheckIn(nil), f.checkIns[userID]...)
	if len(rows) == 0 {
		return nil, nil
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CheckInTime.After(rows[j].CheckInTime) })
	return &rows[0], nil
}

func (f *fakeStore) GetNotificationState(ctx context.Context, userID uuid.UUID) (*model.MiaNotificationState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.states[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeStore) mark(userID uuid.UUID, set func(*model.MiaNotificationState)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.states[userID]
	s.UserID = userID
	set(&s)
	f.states[userID] = s
}

func (f *fakeStore) MarkPreAlert(ctx context.Context, userID, checkInID uuid.UUID) error {
	f.mark(userID, func(s *model.MiaNotificationState) { s.PreAlertForCheckInID = &checkInID })
	return nil
}

func (f *fakeStore) MarkEmergency(ctx context.Context, userID, checkInID uuid.UUID) error {
	f.mark(userID, func(s *model.MiaNotificationState) { s.EmergencyForCheckInID = &checkInID })
	return nil
}

func (f *fakeStore) MarkLastWords(ctx context.Context, userID, checkInID uuid.UUID) error {
	f.mark(userID, func(s *model.MiaNotificationState) { s.LastWordsForCheckInID = &checkInID })
	return nil
}

func (f *fakeStore) ListContacts(ctx context.Context, userID uuid.UUID, confirmedOnly bool) ([]model.EmergencyContact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.EmergencyContact
	for _, c := range f.contacts[userID] {
		if confirmedOnly && !c.IsConfirmed {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) GetAlertDelivery(ctx context.Context, key model.DeliveryKey) (*model.AlertDelivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deliveries[key]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (f *fakeStore) UpsertAlertDelivery(ctx context.Context, d *model.AlertDelivery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	f.deliveries.Put(*d)
	return nil
}

func (f *fakeStore) GetLastWords(ctx context.Context, userID uuid.UUID) (*model.LastWords, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lw, ok := f.lastWords[userID]
	if !ok {
		return nil, nil
	}
	return &lw, nil
}

type sentMessage struct {
	To      string
	Subject string
	Body    string
}

// fakeMailer records sends; addresses in fail are rejected
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMessage
	fail map[string]bool
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{fail: make(map[string]bool)}
}

func (m *fakeMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[to] {
		return errors.New("smtp: 451 temporary failure")
	}
	m.sent = append(m.sent, sentMessage{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) SendSMS(ctx context.Context, to, body string) error {
	return m.SendEmail(ctx, to, "", body)
}

func (m *fakeMailer) setFail(addr string, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[addr] = fail
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) since(n int) []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent[n:]...)
}

type fakePusher struct {
	calls []uuid.UUID
}

func (p *fakePusher) SendCheckInReminder(ctx context.Context, userID uuid.UUID, title, body string) error {
	p.calls = append(p.calls, userID)
	return nil
}

// fakeClock is a settable wall clock
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}
