// Package store defines the repository contract shared by every storage
// backend. All reads and writes happen inside a transaction so that a
// lifecycle step touching several collections is applied whole or not at all.
package store

import (
	"context"
	"errors"

	"github.com/jredh-dev/foodshare/pkg/models"
)

var (
	// ErrNotFound is returned when a record with the given id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrMalformed is returned when a stored collection cannot be decoded.
	ErrMalformed = errors.New("malformed store")
)

// Collection names. The key-value backend uses them as keys verbatim.
const (
	KeyDonations        = "donations"
	KeyRequests         = "requests"
	KeyVolunteerRatings = "volunteerRatings"
	KeyVolunteerProfile = "volunteerProfile"
	KeySponsors         = "sponsors"
)

// Keys lists every collection in a fixed order.
var Keys = []string{KeyDonations, KeyRequests, KeyVolunteerRatings, KeyVolunteerProfile, KeySponsors}

// RequestFilter narrows a request listing. Empty fields match anything.
type RequestFilter struct {
	DonationID  string
	RecipientID string
	VolunteerID string
	Type        models.RequestType
	Status      models.RequestStatus
}

// Match reports whether r passes the filter.
func (f RequestFilter) Match(r *models.Request) bool {
	if f.DonationID != "" && r.DonationID != f.DonationID {
		return false
	}
	if f.RecipientID != "" && r.RecipientID != f.RecipientID {
		return false
	}
	if f.VolunteerID != "" && r.VolunteerID != f.VolunteerID {
		return false
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

// Tx is a consistent view of every collection. Listings come back in
// insertion order. Writes made through a Tx passed to Store.Update are
// visible to later reads in the same Tx and are discarded if the
// callback returns an error.
type Tx interface {
	Donation(id string) (*models.Donation, error)
	// Donations lists donations with the given status, or all if status is empty.
	Donations(status models.DonationStatus) ([]models.Donation, error)
	// PutDonation inserts d, or replaces the stored donation with the same id.
	PutDonation(d *models.Donation) error

	Request(id string) (*models.Request, error)
	Requests(f RequestFilter) ([]models.Request, error)
	PutRequest(r *models.Request) error

	// Ratings lists ratings for volunteerID, or all if it is empty.
	Ratings(volunteerID string) ([]models.VolunteerRating, error)
	AddRating(r *models.VolunteerRating) error

	// Profile returns ErrNotFound if the volunteer has never been seen.
	Profile(volunteerID string) (*models.VolunteerProfile, error)
	// Profiles lists every profile ordered by volunteer id.
	Profiles() ([]models.VolunteerProfile, error)
	PutProfile(p *models.VolunteerProfile) error

	Sponsors() ([]models.Sponsor, error)
	AddSponsor(s *models.Sponsor) error
}

// Store is a transactional repository.
type Store interface {
	// View runs fn against a read-only snapshot.
	View(ctx context.Context, fn func(Tx) error) error
	// Update runs fn and commits its writes atomically if fn returns nil.
	Update(ctx context.Context, fn func(Tx) error) error
	Close() error
}
