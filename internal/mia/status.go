package mia

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/model"
)

// Status is a read-only view of a user's current episode
type Status struct {
	Evaluation
	EmergencyModeActive bool
	State               *model.MiaNotificationState
}

// Status evaluates a user without sending or writing anything. A lapsed
// emergency mode is reported as inactive; the next sweep switches it off.
func (e *Engine) Status(ctx context.Context, userID uuid.UUID) (*Status, error) {
	now := e.now()

	settings, err := e.store.GetSettings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	last, err := e.store.LatestCheckIn(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("latest check-in: %w", err)
	}
	state, err := e.store.GetNotificationState(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get notification state: %w", err)
	}

	ev := Evaluate(now, last, settings)
	suspended, _ := ResolveEmergencyMode(now, settings)
	if suspended {
		ev.Phase = PhaseSafe
	} else if ev.Phase == PhaseEmergencyDue {
		lw, err := e.store.GetLastWords(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("get last words: %w", err)
		}
		ev.Phase = LastWordsPhase(now, ev, state, lw)
	}

	return &Status{Evaluation: ev, EmergencyModeActive: suspended, State: state}, nil
}

// Response converts the status into its API shape
func (s *Status) Response() model.MiaStatusResponse {
	resp := model.MiaStatusResponse{
		Phase:               s.Phase.String(),
		ThresholdHrs:        s.ThresholdHrs,
		EmergencyModeActive: s.EmergencyModeActive,
	}
	if s.CheckIn != nil {
		at, pre, alert := s.CheckIn.CheckInTime, s.PreAlertAt, s.AlertAt
		resp.LastCheckInAt = &at
		resp.PreAlertAt = &pre
		resp.AlertAt = &alert
		resp.PreAlertSent = s.State.PreAlertSentFor(s.CheckIn.ID)
		resp.EmergencySent = s.State.EmergencySentFor(s.CheckIn.ID)
		resp.LastWordsSent = s.State.LastWordsSentFor(s.CheckIn.ID)
	}
	return resp
}
