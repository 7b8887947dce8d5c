package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jredh-dev/foodshare/internal/store"
	"github.com/jredh-dev/foodshare/pkg/models"
)

// RequestInput is what a recipient submits.
type RequestInput struct {
	DonationID  string
	RecipientID string
	Type        models.RequestType
}

func (in *RequestInput) validate() error {
	var v validator
	v.require("donationId", in.DonationID)
	v.require("recipientId", in.RecipientID)
	v.check(in.Type.Valid(), "type", "must be pickup or volunteer")
	return v.err()
}

// CreateRequest files a request against a donation and claims the donation.
// The donation must exist and be available. A pickup request is complete on
// creation, so its donation goes straight through to delivered.
func (s *Service) CreateRequest(ctx context.Context, in RequestInput) (*models.Request, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var r *models.Request
	err := s.store.Update(ctx, func(tx store.Tx) error {
		now := s.now()
		d, err := claim(tx, in.DonationID, now)
		if err != nil {
			return err
		}

		r = &models.Request{
			ID:          s.ids.Next(now),
			DonationID:  d.ID,
			RecipientID: in.RecipientID,
			Type:        in.Type,
			Status:      models.InitialRequestStatus(in.Type),
			CreatedAt:   now,
		}
		if r.Status == models.RequestDelivered {
			if err := d.Advance(models.DonationDelivered, now); err != nil {
				return err
			}
		}
		if err := tx.PutDonation(d); err != nil {
			return err
		}
		return tx.PutRequest(r)
	})
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.log.Info("request created",
		"request_id", r.ID, "donation_id", r.DonationID,
		"recipient_id", r.RecipientID, "type", r.Type, "status", r.Status)
	return r, nil
}

// Claim moves an available donation to claimed without filing a request.
func (s *Service) Claim(ctx context.Context, donationID string) (*models.Donation, error) {
	var d *models.Donation
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var err error
		if d, err = claim(tx, donationID, s.now()); err != nil {
			return err
		}
		return tx.PutDonation(d)
	})
	if err != nil {
		return nil, fmt.Errorf("claim donation: %w", err)
	}
	s.log.Info("donation claimed", "donation_id", d.ID)
	return d, nil
}

// claim loads a donation and advances it to claimed. The caller writes it.
func claim(tx store.Tx, donationID string, now time.Time) (*models.Donation, error) {
	d, err := tx.Donation(donationID)
	if err != nil {
		return nil, err
	}
	if err := d.Advance(models.DonationClaimed, now); err != nil {
		return nil, err
	}
	return d, nil
}

// Assign hands a pending volunteer request to volunteerID.
func (s *Service) Assign(ctx context.Context, requestID, volunteerID string) (*models.Request, error) {
	var v validator
	v.require("volunteerId", volunteerID)
	if err := v.err(); err != nil {
		return nil, err
	}

	r, err := s.advance(ctx, requestID, models.RequestAssigned, func(tx store.Tx, r *models.Request, now time.Time) error {
		r.VolunteerID = volunteerID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("assign request: %w", err)
	}
	return r, nil
}

// Pick marks an assigned request as collected from the donor.
func (s *Service) Pick(ctx context.Context, requestID string) (*models.Request, error) {
	r, err := s.advance(ctx, requestID, models.RequestPicked, nil)
	if err != nil {
		return nil, fmt.Errorf("pick request: %w", err)
	}
	return r, nil
}

// Delivery is the outcome of a completed volunteer delivery.
type Delivery struct {
	Request  *models.Request
	Donation *models.Donation
	Profile  *models.VolunteerProfile
}

// Deliver completes a picked request. The volunteer earns
// Economics.CreditsPerDelivery, and the donation moves to delivered.
func (s *Service) Deliver(ctx context.Context, requestID string) (*Delivery, error) {
	var out Delivery
	r, err := s.advance(ctx, requestID, models.RequestDelivered, func(tx store.Tx, r *models.Request, now time.Time) error {
		d, err := tx.Donation(r.DonationID)
		if err != nil {
			return err
		}
		if err := d.Advance(models.DonationDelivered, now); err != nil {
			return err
		}
		if err := tx.PutDonation(d); err != nil {
			return err
		}

		p, err := tx.Profile(r.VolunteerID)
		if errors.Is(err, store.ErrNotFound) {
			p = &models.VolunteerProfile{VolunteerID: r.VolunteerID}
		} else if err != nil {
			return err
		}
		p.Credits += s.econ.CreditsPerDelivery
		if err := tx.PutProfile(p); err != nil {
			return err
		}

		out.Donation, out.Profile = d, p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("deliver request: %w", err)
	}
	out.Request = r

	s.log.Info("credits awarded",
		"request_id", r.ID, "volunteer_id", r.VolunteerID,
		"credits", s.econ.CreditsPerDelivery, "total", out.Profile.Credits)
	return &out, nil
}

// advance moves a request one step inside a transaction. extra, if set,
// runs after the status change and before the request is written.
func (s *Service) advance(ctx context.Context, requestID string, next models.RequestStatus,
	extra func(tx store.Tx, r *models.Request, now time.Time) error) (*models.Request, error) {
	var r *models.Request
	var from models.RequestStatus
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var err error
		if r, err = tx.Request(requestID); err != nil {
			return err
		}
		from = r.Status
		now := s.now()
		if err := r.Advance(next, now); err != nil {
			return err
		}
		if extra != nil {
			if err := extra(tx, r, now); err != nil {
				return err
			}
		}
		return tx.PutRequest(r)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("request advanced",
		"request_id", r.ID, "volunteer_id", r.VolunteerID, "from", from, "to", r.Status)
	return r, nil
}

// Request returns one request.
func (s *Service) Request(ctx context.Context, id string) (*models.Request, error) {
	var r *models.Request
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		r, err = tx.Request(id)
		return err
	})
	return r, err
}

// Requests lists requests matching f.
func (s *Service) Requests(ctx context.Context, f store.RequestFilter) ([]models.Request, error) {
	var out []models.Request
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.Requests(f)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return out, nil
}

// OpenTasks lists volunteer requests waiting for a volunteer.
func (s *Service) OpenTasks(ctx context.Context) ([]models.Request, error) {
	return s.Requests(ctx, store.RequestFilter{Type: models.RequestVolunteer, Status: models.RequestPending})
}

// VolunteerDeliveries lists the requests assigned to volunteerID at any stage.
func (s *Service) VolunteerDeliveries(ctx context.Context, volunteerID string) ([]models.Request, error) {
	return s.Requests(ctx, store.RequestFilter{Type: models.RequestVolunteer, VolunteerID: volunteerID})
}

// RecipientRequests lists the requests filed by recipientID.
func (s *Service) RecipientRequests(ctx context.Context, recipientID string) ([]models.Request, error) {
	return s.Requests(ctx, store.RequestFilter{RecipientID: recipientID})
}
