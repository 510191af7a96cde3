package mia

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/model"
	"go.uber.org/zap"
)

// Channel selects how emergency contacts are reached
type Channel string

const (
	// ChannelEmail emails every contact
	ChannelEmail Channel = "email"
	// ChannelSMS texts confirmed contacts only
	ChannelSMS Channel = "sms"
)

// ParseChannel maps a config value to a Channel, defaulting to email
func ParseChannel(s string) Channel {
	if Channel(s) == ChannelSMS {
		return ChannelSMS
	}
	return ChannelEmail
}

// Options tunes an Engine
type Options struct {
	Channel Channel
	BaseURL string
	Pusher  Pusher
	Now     func() time.Time
}

// Report summarizes one sweep
type Report struct {
	Users                int
	Failed               int
	Suspended            int
	EmergencyModeExpired int
	PreAlertsSent        int
	EmergencySends       int
	EmergenciesCompleted int
	LastWordsSent        int
	SendFailures         int
	Duration             time.Duration
}

func (r *Report) add(o Report) {
	r.Suspended += o.Suspended
	r.EmergencyModeExpired += o.EmergencyModeExpired
	r.PreAlertsSent += o.PreAlertsSent
	r.EmergencySends += o.EmergencySends
	r.EmergenciesCompleted += o.EmergenciesCompleted
	r.LastWordsSent += o.LastWordsSent
	r.SendFailures += o.SendFailures
}

// Engine reconciles every user's check-in history against their settings
// and delivers the notifications that are newly due. All gating is read
// from the Store, so repeated and overlapping runs are safe.
type Engine struct {
	store   Store
	email   EmailSender
	sms     SMSSender
	pusher  Pusher
	channel Channel
	baseURL string
	now     func() time.Time
	logger  *zap.Logger
}

func NewEngine(store Store, email EmailSender, sms SMSSender, logger *zap.Logger, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Channel == "" {
		opts.Channel = ChannelEmail
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:   store,
		email:   email,
		sms:     sms,
		pusher:  opts.Pusher,
		channel: opts.Channel,
		baseURL: opts.BaseURL,
		now:     opts.Now,
		logger:  logger,
	}
}

// Channel reports how emergency contacts are reached
func (e *Engine) Channel() Channel {
	return e.channel
}

// Sweep processes every user once, sequentially. A failure for one user is
// logged and counted; it never stops the remaining users.
func (e *Engine) Sweep(ctx context.Context) (Report, error) {
	start := time.Now()
	var report Report

	users, err := e.store.ListUsers(ctx)
	if err != nil {
		return report, fmt.Errorf("list users: %w", err)
	}

	for i := range users {
		if ctx.Err() != nil {
			break
		}
		report.Users++
		out, err := e.ProcessUser(ctx, &users[i])
		report.add(out)
		if err != nil {
			report.Failed++
			e.logger.Error("mia: user processing failed",
				zap.String("user_id", users[i].ID.String()),
				zap.Error(err),
			)
		}
	}

	report.Duration = time.Since(start)
	return report, nil
}

// ProcessUser runs the reconciliation for a single user. Panics are
// converted to errors so a bad record cannot take the sweep down.
func (e *Engine) ProcessUser(ctx context.Context, user *model.User) (report Report, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic processing user %s: %v", user.ID, p)
		}
	}()
	err = e.processUser(ctx, user, &report)
	return report, err
}

func (e *Engine) processUser(ctx context.Context, user *model.User, r *Report) error {
	now := e.now()

	settings, err := e.store.GetSettings(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("get settings: %w", err)
	}

	suspended, expired := ResolveEmergencyMode(now, settings)
	if suspended {
		r.Suspended++
		return nil
	}
	if expired {
		if err := e.store.ExpireEmergencyMode(ctx, user.ID); err != nil {
			return fmt.Errorf("expire emergency mode: %w", err)
		}
		settings.EmergencyModeEnabled = false
		settings.EmergencyModeEndTime = nil
		settings.EmergencyModeMultiplier = model.DefaultEmergencyModeMultiplier
		r.EmergencyModeExpired++
		e.logger.Info("mia: emergency mode expired", zap.String("user_id", user.ID.String()))
	}

	last, err := e.store.LatestCheckIn(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("latest check-in: %w", err)
	}

	ev := Evaluate(now, last, settings)
	if ev.Phase == PhaseSafe {
		return nil
	}

	state, err := e.store.GetNotificationState(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("get notification state: %w", err)
	}

	switch ev.Phase {
	case PhasePreAlertDue:
		return e.dispatchPreAlert(ctx, user, last, state, r)
	case PhaseEmergencyDue:
		if !state.EmergencySentFor(last.ID) {
			if err := e.dispatchEmergency(ctx, user, ev, r); err != nil {
				return err
			}
		}
		return e.dispatchLastWords(ctx, now, user, ev, r)
	}
	return nil
}

func (e *Engine) dispatchPreAlert(ctx context.Context, user *model.User, last *model.CheckIn, state *model.MiaNotificationState, r *Report) error {
	if state.PreAlertSentFor(last.ID) {
		return nil
	}
	if user.Email == "" {
		e.logger.Warn("mia: pre-alert skipped, user has no email", zap.String("user_id", user.ID.String()))
		return nil
	}

	msg := PreAlertMessage(e.baseURL)
	if err := e.email.SendEmail(ctx, user.Email, msg.Subject, msg.Body); err != nil {
		r.SendFailures++
		e.logger.Warn("mia: pre-alert send failed",
			zap.String("user_id", user.ID.String()),
			zap.String("check_in_id", last.ID.String()),
			zap.Error(err),
		)
		return nil
	}

	if err := e.store.MarkPreAlert(ctx, user.ID, last.ID); err != nil {
		return fmt.Errorf("mark pre-alert: %w", err)
	}
	r.PreAlertsSent++
	e.logger.Info("mia: pre-alert sent",
		zap.String("user_id", user.ID.String()),
		zap.String("check_in_id", last.ID.String()),
	)

	if e.pusher != nil {
		title, body := PushReminder()
		if err := e.pusher.SendCheckInReminder(ctx, user.ID, title, body); err != nil {
			e.logger.Warn("mia: reminder push failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}
	return nil
}

func (e *Engine) emergencyAlertType() model.AlertType {
	if e.channel == ChannelSMS {
		return model.AlertTypeEmergencySMS
	}
	return model.AlertTypeEmergencyEmail
}

func (e *Engine) dispatchEmergency(ctx context.Context, user *model.User, ev Evaluation, r *Report) error {
	last := ev.CheckIn
	contacts, err := e.store.ListContacts(ctx, user.ID, e.channel == ChannelSMS)
	if err != nil {
		return fmt.Errorf("list contacts: %w", err)
	}
	if len(contacts) == 0 {
		e.logger.Debug("mia: emergency due but no eligible contacts", zap.String("user_id", user.ID.String()))
		return nil
	}

	alertType := e.emergencyAlertType()
	ds := Deliveries{}
	for _, c := range contacts {
		existing, err := e.store.GetAlertDelivery(ctx, model.DeliveryKey{CheckInID: last.ID, ContactID: c.ID, Type: alertType})
		if err != nil {
			return fmt.Errorf("get alert delivery: %w", err)
		}
		if existing != nil {
			ds.Put(*existing)
		}
	}

	name := user.DisplayName("Your friend")
	email, err := EmergencyEmail(name, ev.ThresholdHrs, last.CheckInTime, e.baseURL)
	if err != nil {
		return fmt.Errorf("render emergency email: %w", err)
	}
	text := EmergencySMS(name, ev.ThresholdHrs, last.CheckInTime)

	for _, c := range PendingContacts(last.ID, alertType, contacts, ds) {
		var sendErr error
		if e.channel == ChannelSMS {
			sendErr = e.sendSMS(ctx, c.PhoneNumber(), text)
		} else {
			sendErr = e.sendEmail(ctx, c.EmailAddress(), email)
		}

		d := deliveryFor(user.ID, last.ID, c.ID, alertType, sendErr)
		if err := e.store.UpsertAlertDelivery(ctx, &d); err != nil {
			return fmt.Errorf("record alert delivery: %w", err)
		}
		ds.Put(d)

		if sendErr != nil {
			r.SendFailures++
			e.logger.Warn("mia: emergency send failed",
				zap.String("user_id", user.ID.String()),
				zap.String("check_in_id", last.ID.String()),
				zap.String("contact_id", c.ID.String()),
				zap.String("type", string(alertType)),
				zap.Error(sendErr),
			)
			continue
		}
		r.EmergencySends++
	}

	if !EmergencyComplete(last.ID, alertType, contacts, ds) {
		return nil
	}
	if err := e.store.MarkEmergency(ctx, user.ID, last.ID); err != nil {
		return fmt.Errorf("mark emergency: %w", err)
	}
	r.EmergenciesCompleted++
	e.logger.Info("mia: emergency dispatched",
		zap.String("user_id", user.ID.String()),
		zap.String("check_in_id", last.ID.String()),
		zap.Int("contacts", len(contacts)),
	)
	return nil
}

// dispatchLastWords reads the ledger again so it observes an emergency
// marker written earlier in the same pass.
func (e *Engine) dispatchLastWords(ctx context.Context, now time.Time, user *model.User, ev Evaluation, r *Report) error {
	last := ev.CheckIn
	state, err := e.store.GetNotificationState(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("get notification state: %w", err)
	}
	if !state.EmergencySentFor(last.ID) || state.LastWordsSentFor(last.ID) {
		return nil
	}

	lw, err := e.store.GetLastWords(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("get last words: %w", err)
	}
	if LastWordsPhase(now, ev, state, lw) != PhaseLastWordsDue {
		return nil
	}
	if user.Email == "" {
		e.logger.Warn("mia: last words skipped, user has no email", zap.String("user_id", user.ID.String()))
		return nil
	}

	// The user's own id stands in for the contact in the delivery ledger.
	key := model.DeliveryKey{CheckInID: last.ID, ContactID: user.ID, Type: model.AlertTypeLastWordsEmail}
	existing, err := e.store.GetAlertDelivery(ctx, key)
	if err != nil {
		return fmt.Errorf("get alert delivery: %w", err)
	}

	if existing == nil || !existing.OK {
		threshold := ClampLastWordsThreshold(lw.DeliveryThreshold)
		msg, err := LastWordsEmail(user.DisplayName("User"), threshold, *lw.Message)
		if err != nil {
			return fmt.Errorf("render last words: %w", err)
		}

		sendErr := e.sendEmail(ctx, user.Email, msg)
		d := deliveryFor(user.ID, last.ID, user.ID, model.AlertTypeLastWordsEmail, sendErr)
		if err := e.store.UpsertAlertDelivery(ctx, &d); err != nil {
			return fmt.Errorf("record alert delivery: %w", err)
		}
		if sendErr != nil {
			r.SendFailures++
			e.logger.Warn("mia: last words send failed",
				zap.String("user_id", user.ID.String()),
				zap.String("check_in_id", last.ID.String()),
				zap.Error(sendErr),
			)
			return nil
		}
	}

	if err := e.store.MarkLastWords(ctx, user.ID, last.ID); err != nil {
		return fmt.Errorf("mark last words: %w", err)
	}
	r.LastWordsSent++
	e.logger.Info("mia: last words delivered",
		zap.String("user_id", user.ID.String()),
		zap.String("check_in_id", last.ID.String()),
	)
	return nil
}

var errNoAddress = errors.New("recipient has no address")

func (e *Engine) sendEmail(ctx context.Context, to string, msg Message) error {
	if to == "" {
		return errNoAddress
	}
	return e.email.SendEmail(ctx, to, msg.Subject, msg.Body)
}

func (e *Engine) sendSMS(ctx context.Context, to, body string) error {
	if to == "" {
		return errNoAddress
	}
	if e.sms == nil {
		return errors.New("sms sender not configured")
	}
	return e.sms.SendSMS(ctx, to, body)
}

func deliveryFor(userID, checkInID, contactID uuid.UUID, t model.AlertType, sendErr error) model.AlertDelivery {
	d := model.AlertDelivery{
		UserID:    userID,
		CheckInID: checkInID,
		ContactID: contactID,
		Type:      t,
		OK:        sendErr == nil,
	}
	if sendErr != nil {
		msg := sendErr.Error()
		d.Error = &msg
	}
	return d
}
