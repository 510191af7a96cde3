package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/mia"
	"github.com/quocanhngo/stillalive/internal/model"
)

type settingsStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*model.Settings, error)
	Save(ctx context.Context, s *model.Settings) error
}

// SettingsService manages the MIA threshold and emergency mode
type SettingsService struct {
	store settingsStore
	now   func() time.Time
}

func NewSettingsService(store settingsStore) *SettingsService {
	return &SettingsService{store: store, now: time.Now}
}

func (s *SettingsService) load(ctx context.Context, userID uuid.UUID) (*model.Settings, error) {
	settings, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		d := model.DefaultSettings(userID)
		settings = &d
	}
	return settings, nil
}

// GetThreshold returns the user's MIA threshold in hours
func (s *SettingsService) GetThreshold(ctx context.Context, userID uuid.UUID) (int, error) {
	settings, err := s.load(ctx, userID)
	if err != nil {
		return 0, err
	}
	return settings.MiaThresholdHrs, nil
}

// UpdateThreshold sets the MIA threshold to one of the allowed values
func (s *SettingsService) UpdateThreshold(ctx context.Context, userID uuid.UUID, hrs int) (int, error) {
	if !mia.ValidThreshold(hrs) {
		return 0, ErrInvalidThreshold
	}
	settings, err := s.load(ctx, userID)
	if err != nil {
		return 0, err
	}
	settings.MiaThresholdHrs = hrs
	if err := s.store.Save(ctx, settings); err != nil {
		return 0, err
	}
	return hrs, nil
}

// GetEmergencyMode returns the emergency-mode window
func (s *SettingsService) GetEmergencyMode(ctx context.Context, userID uuid.UUID) (*model.EmergencyModeResponse, error) {
	settings, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return emergencyModeResponse(settings), nil
}

// UpdateEmergencyMode turns emergency mode on for threshold x multiplier
// hours from now, or off. Turning it off restores the default multiplier.
func (s *SettingsService) UpdateEmergencyMode(ctx context.Context, userID uuid.UUID, req model.UpdateEmergencyModeRequest) (*model.EmergencyModeResponse, error) {
	multiplier := req.Multiplier
	if multiplier == 0 {
		multiplier = model.DefaultEmergencyModeMultiplier
	}
	if req.Enabled && !mia.ValidMultiplier(multiplier) {
		return nil, ErrInvalidMultiplier
	}

	settings, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Enabled {
		window := time.Duration(mia.ClampThreshold(settings.MiaThresholdHrs)*multiplier) * time.Hour
		end := s.now().UTC().Add(window)
		settings.EmergencyModeEnabled = true
		settings.EmergencyModeEndTime = &end
		settings.EmergencyModeMultiplier = multiplier
	} else {
		settings.EmergencyModeEnabled = false
		settings.EmergencyModeEndTime = nil
		settings.EmergencyModeMultiplier = model.DefaultEmergencyModeMultiplier
	}

	if err := s.store.Save(ctx, settings); err != nil {
		return nil, err
	}
	return emergencyModeResponse(settings), nil
}

func emergencyModeResponse(s *model.Settings) *model.EmergencyModeResponse {
	return &model.EmergencyModeResponse{
		MiaThresholdHrs:         s.MiaThresholdHrs,
		EmergencyModeEnabled:    s.EmergencyModeEnabled,
		EmergencyModeEndTime:    s.EmergencyModeEndTime,
		EmergencyModeMultiplier: s.EmergencyModeMultiplier,
	}
}
