package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/mia"
	"github.com/quocanhngo/stillalive/internal/model"
)

type lastWordsStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*model.LastWords, error)
	Save(ctx context.Context, userID uuid.UUID, message *string, threshold int) error
	ClearMessage(ctx context.Context, userID uuid.UUID) error
}

// LastWordsService manages the farewell message and its delivery delay
type LastWordsService struct {
	store   lastWordsStore
	email   mia.EmailSender
	baseURL string
}

func NewLastWordsService(store lastWordsStore, email mia.EmailSender, baseURL string) *LastWordsService {
	return &LastWordsService{store: store, email: email, baseURL: baseURL}
}

// Get returns the saved message, or defaults when nothing is saved
func (s *LastWordsService) Get(ctx context.Context, userID uuid.UUID) (*model.LastWordsResponse, error) {
	lw, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if lw == nil {
		return &model.LastWordsResponse{DeliveryThreshold: model.DefaultLastWordsDeliveryThreshold}, nil
	}
	return &model.LastWordsResponse{Message: lw.Message, DeliveryThreshold: lw.DeliveryThreshold}, nil
}

// Update changes whichever of message and threshold the request carries
func (s *LastWordsService) Update(ctx context.Context, userID uuid.UUID, req model.UpdateLastWordsRequest) (*model.LastWordsResponse, error) {
	if req.Message != nil && utf8.RuneCountInString(*req.Message) > model.MaxLastWordsLength {
		return nil, ErrMessageTooLong
	}
	if req.DeliveryThreshold != nil && !mia.ValidLastWordsThreshold(*req.DeliveryThreshold) {
		return nil, ErrInvalidThreshold
	}

	current, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	message := req.Message
	threshold := model.DefaultLastWordsDeliveryThreshold
	if current != nil {
		threshold = current.DeliveryThreshold
		if message == nil {
			message = current.Message
		}
	}
	if req.DeliveryThreshold != nil {
		threshold = *req.DeliveryThreshold
	}

	if err := s.store.Save(ctx, userID, message, threshold); err != nil {
		return nil, err
	}
	return &model.LastWordsResponse{Message: message, DeliveryThreshold: threshold}, nil
}

// Delete clears the message and keeps the threshold
func (s *LastWordsService) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.store.ClearMessage(ctx, userID)
}

// TestSend emails the user a [TEST] preview of their last words
func (s *LastWordsService) TestSend(ctx context.Context, user *model.User) error {
	if user.Email == "" {
		return ErrNoEmail
	}
	lw, err := s.store.Get(ctx, user.ID)
	if err != nil {
		return err
	}
	if !mia.HasMessage(lw) {
		return ErrNoLastWords
	}

	msg := mia.LastWordsTestEmail(
		user.DisplayName("User"),
		mia.ClampLastWordsThreshold(lw.DeliveryThreshold),
		strings.TrimSpace(*lw.Message),
		s.baseURL,
	)
	return s.email.SendEmail(ctx, user.Email, msg.Subject, msg.Body)
}
