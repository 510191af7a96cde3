package mia

import (
	"bytes"
	"fmt"
	"text/template"
	"time"
)

const brand = "Still Alive?"

var (
	emergencyEmailTmpl = template.Must(template.New("emergency_email").Parse(
		`You're receiving this because {{.Name}} added you as an emergency contact on {{.Brand}}.

{{.Name}} hasn't checked in for {{.Threshold}} hours.
Last check-in: {{.LastCheckIn}}

Suggested actions:
1) Try calling/texting them.
2) If you can, check on them in person.
3) If you believe this is an emergency, contact local emergency services.

If they're fine, remind them to check in here: {{.Dashboard}}
`))

	lastWordsEmailTmpl = template.Must(template.New("last_words_email").Parse(
		`This is a pre-written message from {{.Name}} on {{.Brand}}.

It's being sent because they haven't checked in for {{.Threshold}} hours.

Their message:

{{.Message}}

-- Sent automatically by {{.Brand}}
`))
)

type messageData struct {
	Brand       string
	Name        string
	Threshold   int
	LastCheckIn string
	Dashboard   string
	Message     string
}

// Message is a rendered notification
type Message struct {
	Subject string
	Body    string
}

// FormatCheckInTime renders t the way alerts show it, e.g. "Mar 04, 2026 - 9:15 PM"
func FormatCheckInTime(t time.Time) string {
	return t.UTC().Format("Jan 02, 2006 - 3:04 PM")
}

func dashboardURL(baseURL string) string {
	return baseURL + "/dashboard"
}

// PreAlertMessage is the one-hour warning sent to the user
func PreAlertMessage(baseURL string) Message {
	return Message{
		Subject: "Wake up! You're about to be marked as MIA!",
		Body: fmt.Sprintf("Hey! You have 1 hour left to check in on %s to avoid alerting your contacts.\n\n"+
			"Check in here: %s\n", brand, dashboardURL(baseURL)),
	}
}

// EmergencyEmail is the alert sent to each emergency contact by email
func EmergencyEmail(name string, threshold int, lastCheckIn time.Time, baseURL string) (Message, error) {
	var buf bytes.Buffer
	err := emergencyEmailTmpl.Execute(&buf, messageData{
		Brand:       brand,
		Name:        name,
		Threshold:   threshold,
		LastCheckIn: FormatCheckInTime(lastCheckIn),
		Dashboard:   dashboardURL(baseURL),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Subject: fmt.Sprintf("[%s] Emergency Alert: %s may be MIA", brand, name),
		Body:    buf.String(),
	}, nil
}

// EmergencySMS is the alert texted to each confirmed contact
func EmergencySMS(name string, threshold int, lastCheckIn time.Time) string {
	return fmt.Sprintf("[%s] %s hasn't checked in for %d hours (last: %s). Please try to reach them.",
		brand, name, threshold, FormatCheckInTime(lastCheckIn))
}

// LastWordsEmail carries the user's saved farewell message
func LastWordsEmail(name string, threshold int, message string) (Message, error) {
	var buf bytes.Buffer
	err := lastWordsEmailTmpl.Execute(&buf, messageData{
		Brand:     brand,
		Name:      name,
		Threshold: threshold,
		Message:   message,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Subject: fmt.Sprintf("Last Message from %s (Maybe -- Or They Just Forgot to Check In)", name),
		Body:    buf.String(),
	}, nil
}

// PushReminder is the device nudge that accompanies a pre-alert
func PushReminder() (title, body string) {
	return brand, "1 hour left to check in before your contacts are alerted."
}

// EmergencyTestEmail previews the emergency alert for the contacts. It is
// marked [TEST] so nobody mistakes it for a real alert.
func EmergencyTestEmail(name string, threshold int, lastCheckIn *time.Time, baseURL string) Message {
	last := "N/A"
	if lastCheckIn != nil {
		last = FormatCheckInTime(*lastCheckIn)
	}
	return Message{
		Subject: fmt.Sprintf("[TEST] [%s] Emergency Alert: %s may be MIA", brand, name),
		Body: fmt.Sprintf("This is a TEST message sent by %s via %s.\n\n"+
			"Configured MIA threshold: %d hours\n"+
			"Last check-in: %s\n\n"+
			"Dashboard: %s\n\n"+
			"If this were real, you'd be receiving this because %s hasn't checked in for %d hours.\n",
			name, brand, threshold, last, dashboardURL(baseURL), name, threshold),
	}
}

// LastWordsTestEmail previews the saved last words for their author
func LastWordsTestEmail(name string, threshold int, message, baseURL string) Message {
	return Message{
		Subject: fmt.Sprintf("[TEST] Last Message from %s (%s)", name, brand),
		Body: fmt.Sprintf("This is a TEST preview of your last words.\n\n"+
			"Delivery threshold (configured): %d hours\n"+
			"Dashboard: %s\n\n"+
			"Your message:\n\n%s\n\n"+
			"-- Sent automatically by %s (test mode)\n",
			threshold, dashboardURL(baseURL), message, brand),
	}
}

// ContactConfirmationSMS asks a new SMS contact to opt in
func ContactConfirmationSMS(name, link string) string {
	return fmt.Sprintf("[%s] %s added you as an emergency contact. Confirm within 24h: %s", brand, name, link)
}
