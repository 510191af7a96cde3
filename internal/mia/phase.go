// Package mia decides, for every user, which missing-in-action notifications
// are due and delivers each one at most once per check-in episode.
package mia

import (
	"time"

	"github.com/quocanhngo/stillalive/internal/model"
)

// Phase is where a user stands in the current silence episode
type Phase int

const (
	PhaseSafe Phase = iota
	PhasePreAlertDue
	PhaseEmergencyDue
	PhaseLastWordsDue
)

func (p Phase) String() string {
	switch p {
	case PhasePreAlertDue:
		return "PRE_ALERT_DUE"
	case PhaseEmergencyDue:
		return "EMERGENCY_DUE"
	case PhaseLastWordsDue:
		return "LAST_WORDS_DUE"
	default:
		return "SAFE"
	}
}

var (
	allowedThresholds          = map[int]bool{12: true, 24: true, 36: true, 48: true}
	allowedLastWordsThresholds = map[int]bool{36: true, 48: true, 72: true}
	allowedMultipliers         = map[int]bool{2: true, 3: true, 4: true}
)

// ValidThreshold reports whether hrs is an accepted MIA threshold
func ValidThreshold(hrs int) bool { return allowedThresholds[hrs] }

// ValidLastWordsThreshold reports whether hrs is an accepted last-words delay
func ValidLastWordsThreshold(hrs int) bool { return allowedLastWordsThresholds[hrs] }

// ValidMultiplier reports whether m is an accepted emergency-mode multiplier
func ValidMultiplier(m int) bool { return allowedMultipliers[m] }

// ClampThreshold maps out-of-range stored values to the default threshold
func ClampThreshold(hrs int) int {
	if allowedThresholds[hrs] {
		return hrs
	}
	return model.DefaultMiaThresholdHrs
}

// ClampLastWordsThreshold maps out-of-range stored values to the default delay
func ClampLastWordsThreshold(hrs int) int {
	if allowedLastWordsThresholds[hrs] {
		return hrs
	}
	return model.DefaultLastWordsDeliveryThreshold
}

// ClampMultiplier maps out-of-range stored values to the default multiplier
func ClampMultiplier(m int) int {
	if allowedMultipliers[m] {
		return m
	}
	return model.DefaultEmergencyModeMultiplier
}

// Evaluation is the outcome of classifying one user at one instant
type Evaluation struct {
	Phase        Phase
	ThresholdHrs int
	CheckIn      *model.CheckIn
	PreAlertAt   time.Time
	AlertAt      time.Time
}

// Evaluate classifies a user from their most recent check-in. A nil
// check-in is always SAFE. Settings may be nil (defaults apply).
//
// Evaluate never returns PhaseLastWordsDue; that phase depends on the
// emergency ledger and is resolved by LastWordsPhase.
func Evaluate(now time.Time, last *model.CheckIn, settings *model.Settings) Evaluation {
	threshold := model.DefaultMiaThresholdHrs
	if settings != nil {
		threshold = ClampThreshold(settings.MiaThresholdHrs)
	}

	ev := Evaluation{Phase: PhaseSafe, ThresholdHrs: threshold, CheckIn: last}
	if last == nil {
		return ev
	}

	ev.PreAlertAt = last.CheckInTime.Add(time.Duration(threshold-1) * time.Hour)
	ev.AlertAt = last.CheckInTime.Add(time.Duration(threshold) * time.Hour)

	switch {
	case now.Before(ev.PreAlertAt):
		ev.Phase = PhaseSafe
	case now.Before(ev.AlertAt):
		ev.Phase = PhasePreAlertDue
	default:
		ev.Phase = PhaseEmergencyDue
	}
	return ev
}

// ResolveEmergencyMode reports whether alerts are suspended at now, and
// whether an enabled emergency mode has lapsed and must be switched off
// before evaluation continues.
func ResolveEmergencyMode(now time.Time, settings *model.Settings) (suspended, expired bool) {
	if settings == nil || !settings.EmergencyModeEnabled {
		return false, false
	}
	end := settings.EmergencyModeEndTime
	if end != nil && end.After(now) {
		return true, false
	}
	return false, true
}

// LastWordsAt is the instant last words become deliverable for a check-in
func LastWordsAt(last *model.CheckIn, lw *model.LastWords) time.Time {
	hrs := model.DefaultLastWordsDeliveryThreshold
	if lw != nil {
		hrs = ClampLastWordsThreshold(lw.DeliveryThreshold)
	}
	return last.CheckInTime.Add(time.Duration(hrs) * time.Hour)
}

// LastWordsPhase promotes an EMERGENCY_DUE evaluation to LAST_WORDS_DUE when
// the emergency alert has fully succeeded for this check-in, last words were
// not yet delivered, a non-blank message exists and its own delay elapsed.
func LastWordsPhase(now time.Time, ev Evaluation, state *model.MiaNotificationState, lw *model.LastWords) Phase {
	if ev.Phase != PhaseEmergencyDue || ev.CheckIn == nil {
		return ev.Phase
	}
	id := ev.CheckIn.ID
	if !state.EmergencySentFor(id) || state.LastWordsSentFor(id) {
		return ev.Phase
	}
	if !HasMessage(lw) {
		return ev.Phase
	}
	if now.Before(LastWordsAt(ev.CheckIn, lw)) {
		return ev.Phase
	}
	return PhaseLastWordsDue
}
