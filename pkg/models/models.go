package models

import (
	"strings"
	"time"
)

// DonationStatus represents the availability state of a donation.
type DonationStatus string

const (
	DonationAvailable DonationStatus = "available"
	DonationClaimed   DonationStatus = "claimed"
	DonationDelivered DonationStatus = "delivered"
)

// Target is who the food is meant for.
type Target string

const (
	TargetHuman  Target = "human"
	TargetAnimal Target = "animal"
)

// Valid reports whether t is a known target.
func (t Target) Valid() bool {
	return t == TargetHuman || t == TargetAnimal
}

// Donation is a surplus-food offer posted by a donor.
// JSON field names match the persisted "donations" collection.
type Donation struct {
	ID         string         `json:"id"`
	FoodImage  string         `json:"foodImage"` // opaque, usually a data URL
	Purpose    string         `json:"purpose"`
	Location   string         `json:"location"`
	Phone      string         `json:"phone"`
	ExpiryTime string         `json:"expiryTime"` // as entered, see ExpiresAt
	Target     Target         `json:"target"`
	DonorID    string         `json:"donorId"`
	Status     DonationStatus `json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt,omitzero"`
}

// expiryLayouts are the accepted spellings of ExpiryTime. The second one is
// what an HTML datetime-local input produces.
var expiryLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseExpiry parses an expiry time in any accepted layout. Layouts without a
// zone are read in loc.
func ParseExpiry(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range expiryLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// ExpiresAt returns the parsed expiry time in local time.
func (d *Donation) ExpiresAt() (time.Time, error) {
	return ParseExpiry(d.ExpiryTime, time.Local)
}

// Expired reports whether the donation's expiry lies before now.
// An unparseable expiry is never considered expired.
func (d *Donation) Expired(now time.Time) bool {
	t, err := d.ExpiresAt()
	if err != nil {
		return false
	}
	return t.Before(now)
}

// RequestType says how the food travels to the recipient.
type RequestType string

const (
	RequestPickup    RequestType = "pickup"    // recipient collects it
	RequestVolunteer RequestType = "volunteer" // a volunteer delivers it
)

// Valid reports whether t is a known request type.
func (t RequestType) Valid() bool {
	return t == RequestPickup || t == RequestVolunteer
}

// RequestStatus represents the lifecycle state of a request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAssigned  RequestStatus = "assigned"
	RequestPicked    RequestStatus = "picked"
	RequestDelivered RequestStatus = "delivered"
)

// Request is a recipient's claim against a donation.
type Request struct {
	ID          string        `json:"id"`
	DonationID  string        `json:"donationId"`
	RecipientID string        `json:"recipientId"`
	Type        RequestType   `json:"type"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	VolunteerID string        `json:"volunteerId,omitempty"`
	UpdatedAt   time.Time     `json:"updatedAt,omitzero"`
}

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 10
)

// VolunteerRating is a recipient's score for a completed delivery.
type VolunteerRating struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"requestId"`
	VolunteerID string    `json:"volunteerId"`
	Rating      int       `json:"rating"`
	CreatedAt   time.Time `json:"createdAt"`
}

// VolunteerProfile holds a volunteer's payout identifier and earned credits.
type VolunteerProfile struct {
	VolunteerID string `json:"volunteerId"`
	Name        string `json:"name,omitempty"`
	UPIID       string `json:"upiId"`
	Credits     int    `json:"credits"`
}

// Sponsor is a sponsorship submission. Amount is kept as entered.
type Sponsor struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	Location   string    `json:"location"`
	Amount     string    `json:"amount"`
	Screenshot string    `json:"screenshot"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PayoutStatus is the display state of a payout.
type PayoutStatus string

const (
	PayoutPending PayoutStatus = "pending"
	PayoutPaid    PayoutStatus = "paid"
)

// Payout is a projection of a volunteer's credits into a currency amount.
// It is never persisted.
type Payout struct {
	ID            string       `json:"id"`
	VolunteerID   string       `json:"volunteerId"`
	VolunteerName string       `json:"volunteerName"`
	Credits       int          `json:"credits"`
	UPIID         string       `json:"upiId"`
	Amount        int          `json:"amount"`
	Status        PayoutStatus `json:"status"`
	Reference     string       `json:"reference,omitempty"` // set when marked paid
}
