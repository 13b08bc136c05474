package domain

import (
	"errors"
	"time"
)

// Well-known package statuses. CurrentStatus is otherwise free text taken
// verbatim from the latest courier event.
const (
	StatusTrackingInProgress = "Tracking in progress..."
	StatusNotFound           = "Package not found"
	StatusDelivered          = "Delivered"
)

// deliveredPhrases is the exact vocabulary couriers use for a final delivery
// scan. Matching is case-sensitive.
var deliveredPhrases = map[string]struct{}{
	"Delivered":                   {},
	"Shipment Delivered":          {},
	"Shipment delivered":          {},
	"Successfully Delivered":      {},
	"Shipment has been delivered": {},
}

// IsDeliveredPhrase reports whether an event description confirms delivery.
func IsDeliveredPhrase(details string) bool {
	_, ok := deliveredPhrases[details]
	return ok
}

var ErrPackageNotFound = errors.New("package not found")
var ErrDuplicatePackage = errors.New("package already exists")
var ErrNoTrackingData = errors.New("no courier has data for this tracking number")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")

// TrackedPackage is the persisted aggregate for one tracking number.
type TrackedPackage struct {
	ID                string     `json:"id" bson:"_id,omitempty"`
	TrackingNumber    string     `json:"tracking_number" bson:"tracking_number"`
	CourierService    string     `json:"courier_service" bson:"courier_service"`
	Description       string     `json:"description" bson:"description"`
	CurrentStatus     string     `json:"current_status" bson:"current_status"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty" bson:"estimated_delivery,omitempty"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" bson:"updated_at"`
}

// Delivered reports whether the package has reached its terminal state.
// Terminal packages are excluded from scheduled polling.
func (p *TrackedPackage) Delivered() bool {
	return p.CurrentStatus == StatusDelivered
}
