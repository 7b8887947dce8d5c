package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jredh-dev/foodshare/internal/store"
	"github.com/jredh-dev/foodshare/pkg/contact"
	"github.com/jredh-dev/foodshare/pkg/models"
)

// Profile returns a volunteer's profile. A volunteer with no stored profile
// gets an empty one with zero credits.
func (s *Service) Profile(ctx context.Context, volunteerID string) (*models.VolunteerProfile, error) {
	var p *models.VolunteerProfile
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		p, err = tx.Profile(volunteerID)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return &models.VolunteerProfile{VolunteerID: volunteerID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// ProfileInput carries the editable profile fields. Credits are only ever
// changed by deliveries.
type ProfileInput struct {
	VolunteerID string
	Name        string
	UPIID       string
}

// SaveProfile sets a volunteer's name and UPI id, keeping their credits.
func (s *Service) SaveProfile(ctx context.Context, in ProfileInput) (*models.VolunteerProfile, error) {
	var v validator
	v.require("volunteerId", in.VolunteerID)
	if v.require("upiId", in.UPIID) {
		v.check(contact.ValidUPI(in.UPIID), "upiId", "is not a UPI id (name@bank)")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	var p *models.VolunteerProfile
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var err error
		p, err = tx.Profile(in.VolunteerID)
		if errors.Is(err, store.ErrNotFound) {
			p = &models.VolunteerProfile{VolunteerID: in.VolunteerID}
		} else if err != nil {
			return err
		}
		p.UPIID = strings.TrimSpace(in.UPIID)
		if name := contact.CleanText(in.Name); name != "" {
			p.Name = name
		}
		return tx.PutProfile(p)
	})
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.log.Info("profile saved", "volunteer_id", p.VolunteerID)
	return p, nil
}
