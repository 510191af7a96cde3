package mia

import (
	"strings"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/model"
)

// Deliveries indexes AlertDelivery rows by their natural key
type Deliveries map[model.DeliveryKey]model.AlertDelivery

// Put records d, replacing any previous row with the same key
func (ds Deliveries) Put(d model.AlertDelivery) {
	ds[d.Key()] = d
}

// Delivered reports whether the keyed recipient already succeeded
func (ds Deliveries) Delivered(key model.DeliveryKey) bool {
	d, ok := ds[key]
	return ok && d.OK
}

// PendingContacts returns the contacts with no successful delivery of
// alertType for checkInID, in input order.
func PendingContacts(checkInID uuid.UUID, alertType model.AlertType, contacts []model.EmergencyContact, ds Deliveries) []model.EmergencyContact {
	var pending []model.EmergencyContact
	for _, c := range contacts {
		if !ds.Delivered(model.DeliveryKey{CheckInID: checkInID, ContactID: c.ID, Type: alertType}) {
			pending = append(pending, c)
		}
	}
	return pending
}

// EmergencyComplete reports whether the per-user emergency marker may be set:
// there is at least one contact and every contact currently has a
// successful delivery for this check-in.
func EmergencyComplete(checkInID uuid.UUID, alertType model.AlertType, contacts []model.EmergencyContact, ds Deliveries) bool {
	if len(contacts) == 0 {
		return false
	}
	return len(PendingContacts(checkInID, alertType, contacts, ds)) == 0
}

// HasMessage reports whether lw carries a non-blank message
func HasMessage(lw *model.LastWords) bool {
	return lw != nil && lw.Message != nil && strings.TrimSpace(*lw.Message) != ""
}
