package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/jredh-dev/foodshare/internal/store"
	"github.com/jredh-dev/foodshare/pkg/contact"
	"github.com/jredh-dev/foodshare/pkg/models"
)

// DonationInput is what a donor fills in.
type DonationInput struct {
	FoodImage  string
	Purpose    string
	Location   string
	Phone      string
	ExpiryTime string
	Target     models.Target
	DonorID    string
}

func (in *DonationInput) validate() error {
	var v validator
	v.require("purpose", in.Purpose)
	v.require("location", in.Location)
	if v.require("phone", in.Phone) {
		v.check(contact.ValidPhone(in.Phone), "phone", "is not a phone number")
	}
	if v.require("expiryTime", in.ExpiryTime) {
		_, err := models.ParseExpiry(in.ExpiryTime, time.Local)
		v.check(err == nil, "expiryTime", "is not a date and time")
	}
	v.check(in.Target.Valid(), "target", "must be human or animal")
	v.require("donorId", in.DonorID)
	return v.err()
}

// CreateDonation records a new available donation. The expiry is checked for
// format only; a donation that is already past expiry is still listed.
func (s *Service) CreateDonation(ctx context.Context, in DonationInput) (*models.Donation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	d := &models.Donation{
		ID:         s.ids.Next(now),
		FoodImage:  in.FoodImage,
		Purpose:    contact.CleanText(in.Purpose),
		Location:   contact.CleanText(in.Location),
		Phone:      contact.NormalizePhone(in.Phone),
		ExpiryTime: in.ExpiryTime,
		Target:     in.Target,
		DonorID:    in.DonorID,
		Status:     models.DonationAvailable,
		CreatedAt:  now,
	}
	err := s.store.Update(ctx, func(tx store.Tx) error {
		return tx.PutDonation(d)
	})
	if err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}

	s.log.Info("donation created", "donation_id", d.ID, "donor_id", d.DonorID, "target", d.Target)
	return d, nil
}

// Donation returns one donation.
func (s *Service) Donation(ctx context.Context, id string) (*models.Donation, error) {
	var d *models.Donation
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		d, err = tx.Donation(id)
		return err
	})
	return d, err
}

// ListAvailable returns available donations in the order they were posted.
func (s *Service) ListAvailable(ctx context.Context) ([]models.Donation, error) {
	return s.donations(ctx, models.DonationAvailable, "")
}

// Donations returns every donation in any status.
func (s *Service) Donations(ctx context.Context) ([]models.Donation, error) {
	return s.donations(ctx, "", "")
}

// DonorDonations returns the donations posted by donorID in any status.
func (s *Service) DonorDonations(ctx context.Context, donorID string) ([]models.Donation, error) {
	return s.donations(ctx, "", donorID)
}

func (s *Service) donations(ctx context.Context, status models.DonationStatus, donorID string) ([]models.Donation, error) {
	var out []models.Donation
	err := s.store.View(ctx, func(tx store.Tx) error {
		all, err := tx.Donations(status)
		if err != nil {
			return err
		}
		for _, d := range all {
			if donorID == "" || d.DonorID == donorID {
				out = append(out, d)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	return out, nil
}
