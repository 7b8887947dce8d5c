package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jredh-dev/foodshare/internal/store"
	"github.com/jredh-dev/foodshare/pkg/contact"
	"github.com/jredh-dev/foodshare/pkg/models"
)

// DefaultSponsors are always part of the ranking.
func DefaultSponsors() []models.Sponsor {
	return []models.Sponsor{
		{ID: "1", FirstName: "Tech", LastName: "Solutions", Amount: "50000"},
		{ID: "2", FirstName: "Green", LastName: "Foods Ltd", Amount: "75000"},
		{ID: "3", FirstName: "Community", LastName: "Foundation", Amount: "100000"},
		{ID: "4", FirstName: "Local", LastName: "Business", Amount: "25000"},
	}
}

// SponsorInput is a sponsorship form submission.
type SponsorInput struct {
	FirstName  string
	LastName   string
	Phone      string
	Email      string
	Location   string
	Amount     string
	Screenshot string
}

func (in *SponsorInput) validate() error {
	var v validator
	v.require("firstName", in.FirstName)
	v.require("lastName", in.LastName)
	if v.require("phone", in.Phone) {
		v.check(contact.ValidPhone(in.Phone), "phone", "is not a phone number")
	}
	if v.require("email", in.Email) {
		v.check(contact.ValidEmail(in.Email), "email", "is not an email address")
	}
	v.require("location", in.Location)
	if v.require("amount", in.Amount) {
		v.check(ParseAmount(in.Amount) > 0, "amount", "must be a positive number")
	}
	return v.err()
}

// CreateSponsor stores a sponsorship. The amount is kept as entered.
func (s *Service) CreateSponsor(ctx context.Context, in SponsorInput) (*models.Sponsor, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	sp := &models.Sponsor{
		ID:         s.ids.Next(now),
		FirstName:  contact.CleanText(in.FirstName),
		LastName:   contact.CleanText(in.LastName),
		Phone:      contact.NormalizePhone(in.Phone),
		Email:      contact.NormalizeEmail(in.Email),
		Location:   contact.CleanText(in.Location),
		Amount:     strings.TrimSpace(in.Amount),
		Screenshot: in.Screenshot,
		CreatedAt:  now,
	}
	err := s.store.Update(ctx, func(tx store.Tx) error {
		return tx.AddSponsor(sp)
	})
	if err != nil {
		return nil, fmt.Errorf("create sponsor: %w", err)
	}

	s.log.Info("sponsor added", "sponsor_id", sp.ID, "amount", sp.Amount)
	return sp, nil
}

// RankSponsors returns the top sponsors, defaults included.
func (s *Service) RankSponsors(ctx context.Context) ([]models.Sponsor, error) {
	var stored []models.Sponsor
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		stored, err = tx.Sponsors()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("rank sponsors: %w", err)
	}
	return Rank(DefaultSponsors(), stored, s.econ.SponsorSlots), nil
}

// Rank merges defaults and stored sponsors, orders them by amount from
// highest to lowest and keeps the first slots. Ties keep merge order.
// With nothing stored the defaults come back as given, unsorted.
func Rank(defaults, stored []models.Sponsor, slots int) []models.Sponsor {
	if len(stored) == 0 {
		return append([]models.Sponsor(nil), defaults...)
	}

	all := make([]models.Sponsor, 0, len(defaults)+len(stored))
	all = append(all, defaults...)
	all = append(all, stored...)
	sort.SliceStable(all, func(i, j int) bool {
		return ParseAmount(all[i].Amount) > ParseAmount(all[j].Amount)
	})
	if slots > 0 && len(all) > slots {
		all = all[:slots]
	}
	return all
}

// ParseAmount reads the leading integer of s after any spaces and ignores
// the rest, so "5000 INR" is 5000 and "75,000" is 75. Anything without a
// leading number is 0.
func ParseAmount(s string) int64 {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}

	var n int64
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int64(c-'0')
	}
	if neg {
		return -n
	}
	return n
}
