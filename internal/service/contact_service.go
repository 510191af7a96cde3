package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/mia"
	"github.com/quocanhngo/stillalive/internal/model"
	"github.com/quocanhngo/stillalive/internal/repository"
	"go.uber.org/zap"
)

const (
	maxEmailLength    = 320
	confirmationTTL   = 24 * time.Hour
	confirmationBytes = 24
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	e164Pattern  = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
)

type contactStore interface {
	List(ctx context.Context, userID uuid.UUID, confirmedOnly bool) ([]model.EmergencyContact, error)
	FindByID(ctx context.Context, userID, id uuid.UUID) (*model.EmergencyContact, error)
	FindByToken(ctx context.Context, token string) (*model.EmergencyContact, error)
	Count(ctx context.Context, userID uuid.UUID) (int64, error)
	ExistsWith(ctx context.Context, userID uuid.UUID, column, value string, exclude uuid.UUID) (bool, error)
	Create(ctx context.Context, c *model.EmergencyContact, limit int) error
	Update(ctx context.Context, c *model.EmergencyContact) error
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
	Confirm(ctx context.Context, id uuid.UUID) error
}

type alertContext interface {
	GetThreshold(ctx context.Context, userID uuid.UUID) (int, error)
}

type latestCheckIn interface {
	Latest(ctx context.Context, userID uuid.UUID) (*model.CheckIn, error)
}

// ConfirmResult is the outcome of following a confirmation link
type ConfirmResult int

const (
	Confirmed ConfirmResult = iota
	AlreadyConfirmed
)

// ContactService manages emergency contacts. The alert channel decides
// whether contacts are reached by email or by SMS; SMS contacts must opt in.
type ContactService struct {
	store    contactStore
	settings alertContext
	checkIns latestCheckIn
	email    mia.EmailSender
	sms      mia.SMSSender
	channel  mia.Channel
	baseURL  string
	logger   *zap.Logger
	now      func() time.Time
}

func NewContactService(
	store contactStore,
	settings alertContext,
	checkIns latestCheckIn,
	email mia.EmailSender,
	sms mia.SMSSender,
	channel mia.Channel,
	baseURL string,
	logger *zap.Logger,
) *ContactService {
	return &ContactService{
		store:    store,
		settings: settings,
		checkIns: checkIns,
		email:    email,
		sms:      sms,
		channel:  channel,
		baseURL:  baseURL,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns the user's contacts
func (s *ContactService) List(ctx context.Context, userID uuid.UUID) ([]model.EmergencyContact, error) {
	contacts, err := s.store.List(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []model.EmergencyContact{}
	}
	return contacts, nil
}

// Create adds a contact, up to the per-user limit
func (s *ContactService) Create(ctx context.Context, user *model.User, req model.ContactRequest) (*model.EmergencyContact, error) {
	in, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	count, err := s.store.Count(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if count >= model.MaxEmergencyContacts {
		return nil, ErrContactLimit
	}
	if err := s.checkDuplicate(ctx, user.ID, in, uuid.Nil); err != nil {
		return nil, err
	}

	c := &model.EmergencyContact{
		ID:          uuid.New(),
		UserID:      user.ID,
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		IsConfirmed: s.channel != mia.ChannelSMS,
	}
	if s.channel == mia.ChannelSMS {
		if err := s.resetConfirmation(c); err != nil {
			return nil, err
		}
	}

	// The count above is only a fast path; the store enforces the limit.
	if err := s.store.Create(ctx, c, model.MaxEmergencyContacts); err != nil {
		if errors.Is(err, repository.ErrContactLimit) {
			return nil, ErrContactLimit
		}
		return nil, err
	}
	if s.channel == mia.ChannelSMS {
		s.sendConfirmation(ctx, user, c)
	}
	return c, nil
}

// Update changes a contact's details. Changing the phone number of an SMS
// contact requires confirming again.
func (s *ContactService) Update(ctx context.Context, user *model.User, id uuid.UUID, req model.ContactRequest) (*model.EmergencyContact, error) {
	in, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	c, err := s.store.FindByID(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	if err := s.checkDuplicate(ctx, user.ID, in, c.ID); err != nil {
		return nil, err
	}

	phoneChanged := c.PhoneNumber() != derefString(in.Phone)
	c.Name, c.Email, c.Phone = in.Name, in.Email, in.Phone

	reconfirm := s.channel == mia.ChannelSMS && phoneChanged
	if reconfirm {
		if err := s.resetConfirmation(c); err != nil {
			return nil, err
		}
	}

	if err := s.store.Update(ctx, c); err != nil {
		return nil, err
	}
	if reconfirm {
		s.sendConfirmation(ctx, user, c)
	}
	return c, nil
}

// Delete removes a contact
func (s *ContactService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.store.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Confirm records an SMS contact's opt-in from the link they were texted
func (s *ContactService) Confirm(ctx context.Context, token string) (ConfirmResult, error) {
	if token == "" {
		return 0, ErrNotFound
	}
	c, err := s.store.FindByToken(ctx, token)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, ErrNotFound
	}
	if c.IsConfirmed {
		return AlreadyConfirmed, nil
	}
	if c.ConfirmationExpired(s.now()) {
		return 0, ErrConfirmationExpired
	}
	if err := s.store.Confirm(ctx, c.ID); err != nil {
		return 0, err
	}
	return Confirmed, nil
}

// TestAlert sends a [TEST] copy of the emergency alert to every contact
// reachable on the current channel. It never touches the alert ledgers.
func (s *ContactService) TestAlert(ctx context.Context, user *model.User) (*model.TestAlertResponse, error) {
	contacts, err := s.store.List(ctx, user.ID, s.channel == mia.ChannelSMS)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, ErrNoContacts
	}

	threshold, err := s.settings.GetThreshold(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	threshold = mia.ClampThreshold(threshold)

	var lastAt *time.Time
	last, err := s.checkIns.Latest(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if last != nil {
		lastAt = &last.CheckInTime
	}

	msg := mia.EmergencyTestEmail(user.DisplayName("Your friend"), threshold, lastAt, s.baseURL)

	resp := &model.TestAlertResponse{Results: make([]model.TestAlertResult, 0, len(contacts))}
	for _, c := range contacts {
		var address string
		var sendErr error
		if s.channel == mia.ChannelSMS {
			address = MaskPhone(c.PhoneNumber())
			sendErr = s.sms.SendSMS(ctx, c.PhoneNumber(), msg.Subject+"\n\n"+msg.Body)
		} else {
			address = c.EmailAddress()
			sendErr = s.email.SendEmail(ctx, c.EmailAddress(), msg.Subject, msg.Body)
		}

		r := model.TestAlertResult{ID: c.ID, Address: address, OK: sendErr == nil}
		if sendErr != nil {
			r.Error = sendErr.Error()
			resp.Failed++
		} else {
			resp.Sent++
		}
		resp.Results = append(resp.Results, r)
	}
	return resp, nil
}

type contactInput struct {
	Name  string
	Email *string
	Phone *string
}

func (s *ContactService) normalize(req model.ContactRequest) (contactInput, error) {
	in := contactInput{Name: strings.TrimSpace(req.Name)}
	if in.Name == "" {
		return in, ErrInvalidName
	}

	email := NormalizeEmail(req.Email)
	phone := strings.TrimSpace(req.Phone)

	if s.channel == mia.ChannelSMS {
		if !ValidPhone(phone) {
			return in, ErrInvalidPhone
		}
		in.Phone = &phone
		if email != "" {
			if !ValidEmail(email) {
				return in, ErrInvalidEmail
			}
			in.Email = &email
		}
		return in, nil
	}

	if !ValidEmail(email) {
		return in, ErrInvalidEmail
	}
	in.Email = &email
	if phone != "" {
		if !ValidPhone(phone) {
			return in, ErrInvalidPhone
		}
		in.Phone = &phone
	}
	return in, nil
}

func (s *ContactService) checkDuplicate(ctx context.Context, userID uuid.UUID, in contactInput, exclude uuid.UUID) error {
	if in.Email != nil {
		taken, err := s.store.ExistsWith(ctx, userID, "email", *in.Email, exclude)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateContact
		}
	}
	if in.Phone != nil {
		taken, err := s.store.ExistsWith(ctx, userID, "phone", *in.Phone, exclude)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateContact
		}
	}
	return nil
}

func (s *ContactService) resetConfirmation(c *model.EmergencyContact) error {
	token, err := NewConfirmationToken()
	if err != nil {
		return err
	}
	expires := s.now().Add(confirmationTTL)
	c.IsConfirmed = false
	c.ConfirmationToken = &token
	c.ConfirmationExpires = &expires
	return nil
}

// sendConfirmation texts the opt-in link. A failed send leaves the contact
// pending; the user can edit the number to trigger a new link.
func (s *ContactService) sendConfirmation(ctx context.Context, user *model.User, c *model.EmergencyContact) {
	link := s.baseURL + "/api/v1/contacts/confirm?token=" + url.QueryEscape(*c.ConfirmationToken)
	body := mia.ContactConfirmationSMS(user.DisplayName("A friend"), link)
	if err := s.sms.SendSMS(ctx, c.PhoneNumber(), body); err != nil {
		s.logger.Warn("contact confirmation sms failed",
			zap.String("user_id", user.ID.String()),
			zap.String("contact_id", c.ID.String()),
			zap.Error(err),
		)
	}
}

// NormalizeEmail trims and lowercases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail checks length and the local@domain.tld shape
func ValidEmail(email string) bool {
	return len(email) <= maxEmailLength && emailPattern.MatchString(email)
}

// ValidPhone reports whether phone is in E.164 form
func ValidPhone(phone string) bool {
	return e164Pattern.MatchString(phone)
}

// MaskPhone hides all but the country prefix and last three digits
func MaskPhone(phone string) string {
	if !strings.HasPrefix(phone, "+") || len(phone) <= 5 {
		return phone
	}
	prefix, tail := phone[:2], phone[len(phone)-3:]
	return prefix + strings.Repeat("X", len(phone)-len(prefix)-len(tail)) + tail
}

// NewConfirmationToken returns 48 random hex characters
func NewConfirmationToken() (string, error) {
	b := make([]byte, confirmationBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
