package model

import (
	"time"

	"github.com/google/uuid"
)

// ========== Check-in DTOs ==========

type CheckInResponse struct {
	CheckIn       CheckIn   `json:"check_in"`
	CurrentStreak int       `json:"current_streak"`
	Recent        []CheckIn `json:"recent"`
}

// ========== Settings DTOs ==========

type UpdateThresholdRequest struct {
	MiaThresholdHrs int `json:"mia_threshold_hrs" binding:"required"`
}

type ThresholdResponse struct {
	MiaThresholdHrs int `json:"mia_threshold_hrs"`
}

type UpdateEmergencyModeRequest struct {
	Enabled    bool `json:"enabled"`
	Multiplier int  `json:"multiplier"`
}

type EmergencyModeResponse struct {
	MiaThresholdHrs         int        `json:"mia_threshold_hrs"`
	EmergencyModeEnabled    bool       `json:"emergency_mode_enabled"`
	EmergencyModeEndTime    *time.Time `json:"emergency_mode_end_time"`
	EmergencyModeMultiplier int        `json:"emergency_mode_multiplier"`
}

// ========== Contact DTOs ==========

type ContactRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ContactListResponse struct {
	Contacts []EmergencyContact `json:"contacts"`
}

type TestAlertResult struct {
	ID      uuid.UUID `json:"id"`
	Address string    `json:"address"`
	OK      bool      `json:"ok"`
	Error   string    `json:"error,omitempty"`
}

type TestAlertResponse struct {
	Sent    int               `json:"sent"`
	Failed  int               `json:"failed"`
	Results []TestAlertResult `json:"results"`
}

// ========== Last Words DTOs ==========

type UpdateLastWordsRequest struct {
	Message           *string `json:"message"`
	DeliveryThreshold *int    `json:"delivery_threshold"`
}

type LastWordsResponse struct {
	Message           *string `json:"message"`
	DeliveryThreshold int     `json:"delivery_threshold"`
}

// ========== Device DTOs ==========

type RegisterDeviceRequest struct {
	FCMToken   string `json:"fcm_token" binding:"required"`
	DeviceType string `json:"device_type" binding:"required"`
}

// ========== MIA Status DTOs ==========

type MiaStatusResponse struct {
	Phase               string     `json:"phase"`
	ThresholdHrs        int        `json:"threshold_hrs"`
	LastCheckInAt       *time.Time `json:"last_check_in_at"`
	PreAlertAt          *time.Time `json:"pre_alert_at"`
	AlertAt             *time.Time `json:"alert_at"`
	EmergencyModeActive bool       `json:"emergency_mode_active"`
	PreAlertSent        bool       `json:"pre_alert_sent"`
	EmergencySent       bool       `json:"emergency_sent"`
	LastWordsSent       bool       `json:"last_words_sent"`
}

// ========== Common ==========

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
