package mia

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// panickingStore blows up while loading settings for one user
type panickingStore struct {
	*fakeStore
	victim uuid.UUID
}

func (s *panickingStore) GetSettings(ctx context.Context, userID uuid.UUID) (*model.Settings, error) {
	if userID == s.victim {
		panic("corrupt settings row")
	}
	return s.fakeStore.GetSettings(ctx, userID)
}

func (f *fakeStore) seedDelivery(d model.AlertDelivery) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deliveries.Put(d)
}

func TestSweep_PanicForOneUserIsRecovered(t *testing.T) {
	h := newHarness(ChannelEmail)
	bad := h.store.addUser("Broken", "broken@example.com")
	h.store.checkIn(bad.ID, t0)
	good := h.store.addUser("Ana", "ana@example.com")
	h.store.checkIn(good.ID, t0)
	h.store.addContact(good.ID, "Ben", "ben@example.com")

	h.engine = NewEngine(&panickingStore{fakeStore: h.store, victim: bad.ID}, h.mail, h.mail, zap.NewNop(), Options{
		Channel: ChannelEmail,
		BaseURL: baseURL,
		Now:     h.clock.Now,
	})

	var r Report
	require.NotPanics(t, func() { r = h.sweepAt(t, t0.Add(24*time.Hour)) })
	assert.Equal(t, 2, r.Users)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, 1, r.EmergenciesCompleted)
	assert.Equal(t, []string{"ben@example.com"}, addresses(h.mail.since(0)))

	_, err := h.engine.ProcessUser(context.Background(), &bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt settings row")
}

// A crash between the last-words send and its marker leaves an ok delivery
// row behind. The next pass must set the marker without mailing again.
func TestSweep_LastWordsResumeFromDeliveredRow(t *testing.T) {
	h := newHarness(ChannelEmail)
	user := h.store.addUser("Ana", "ana@example.com")
	ci := h.store.checkIn(user.ID, t0)
	h.store.addContact(user.ID, "Ben", "ben@example.com")
	h.store.setLastWords(user.ID, "bye", 48)
	require.NoError(t, h.store.MarkEmergency(context.Background(), user.ID, ci.ID))
	h.store.seedDelivery(model.AlertDelivery{
		UserID:    user.ID,
		CheckInID: ci.ID,
		ContactID: user.ID,
		Type:      model.AlertTypeLastWordsEmail,
		OK:        true,
	})

	r := h.sweepAt(t, t0.Add(48*time.Hour))
	assert.Zero(t, h.mail.count())
	assert.Zero(t, h.store.upserts)
	assert.Equal(t, 1, r.LastWordsSent)
	assert.True(t, h.store.state(user.ID).LastWordsSentFor(ci.ID))

	h.sweepAt(t, t0.Add(49*time.Hour))
	assert.Zero(t, h.mail.count())
}

// Every contact already has an ok row but the emergency marker was never
// written. The pass completes the episode without resending.
func TestSweep_EmergencyResumeFromDeliveredRows(t *testing.T) {
	h := newHarness(ChannelEmail)
	user := h.store.addUser("Ana", "ana@example.com")
	ci := h.store.checkIn(user.ID, t0)
	for _, c := range []model.EmergencyContact{
		h.store.addContact(user.ID, "Ben", "ben@example.com"),
		h.store.addContact(user.ID, "Cy", "cy@example.com"),
	} {
		h.store.seedDelivery(model.AlertDelivery{
			UserID:    user.ID,
			CheckInID: ci.ID,
			ContactID: c.ID,
			Type:      model.AlertTypeEmergencyEmail,
			OK:        true,
		})
	}

	r := h.sweepAt(t, t0.Add(25*time.Hour))
	assert.Zero(t, h.mail.count())
	assert.Zero(t, r.EmergencySends)
	assert.Equal(t, 1, r.EmergenciesCompleted)
	assert.True(t, h.store.state(user.ID).EmergencySentFor(ci.ID))
}

func TestSweep_TwoEnginesSharingStoreSendOnce(t *testing.T) {
	h := newHarness(ChannelEmail)
	other := NewEngine(h.store, h.mail, h.mail, zap.NewNop(), Options{
		Channel: ChannelEmail,
		BaseURL: baseURL,
		Now:     h.clock.Now,
	})
	user := h.store.addUser("Ana", "ana@example.com")
	ci := h.store.checkIn(user.ID, t0)
	h.store.addContact(user.ID, "Ben", "ben@example.com")
	h.store.addContact(user.ID, "Cy", "cy@example.com")
	h.store.setLastWords(user.ID, "bye", 48)

	engines := []*Engine{h.engine, other}
	steps := []struct {
		at   time.Duration
		want int
	}{
		{23 * time.Hour, 1},
		{hours(23.5), 1},
		{24 * time.Hour, 3},
		{30 * time.Hour, 3},
		{48 * time.Hour, 4},
		{72 * time.Hour, 4},
	}
	for i, step := range steps {
		h.clock.Set(t0.Add(step.at))
		// Alternate which engine goes first, then let the other follow.
		first, second := engines[i%2], engines[(i+1)%2]
		_, err := first.Sweep(context.Background())
		require.NoError(t, err)
		_, err = second.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, step.want, h.mail.count(), "after T+%s", step.at)
	}

	assert.ElementsMatch(t,
		[]string{"ana@example.com", "ben@example.com", "cy@example.com", "ana@example.com"},
		addresses(h.mail.since(0)))
	state := h.store.state(user.ID)
	assert.True(t, state.PreAlertSentFor(ci.ID))
	assert.True(t, state.EmergencySentFor(ci.ID))
	assert.True(t, state.LastWordsSentFor(ci.ID))
}
