package lifecycle

import (
	"context"
	"fmt"

	"github.com/jredh-dev/foodshare/internal/store"
	"github.com/jredh-dev/foodshare/pkg/models"
)

// Stats are the admin dashboard counters.
type Stats struct {
	Donations    int `json:"donations"`
	MealsServed  int `json:"mealsServed"` // delivered requests
	Sponsors     int `json:"sponsors"`    // stored, defaults excluded
	Volunteers   int `json:"volunteers"`  // distinct volunteers seen on requests
	TotalCredits int `json:"totalCredits"`
}

// Stats reads every counter from one snapshot.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.store.View(ctx, func(tx store.Tx) error {
		donations, err := tx.Donations("")
		if err != nil {
			return err
		}
		st.Donations = len(donations)

		requests, err := tx.Requests(store.RequestFilter{})
		if err != nil {
			return err
		}
		volunteers := make(map[string]struct{})
		for _, r := range requests {
			if r.Status == models.RequestDelivered {
				st.MealsServed++
			}
			if r.VolunteerID != "" {
				volunteers[r.VolunteerID] = struct{}{}
			}
		}
		st.Volunteers = len(volunteers)

		sponsors, err := tx.Sponsors()
		if err != nil {
			return err
		}
		st.Sponsors = len(sponsors)

		profiles, err := tx.Profiles()
		if err != nil {
			return err
		}
		for _, p := range profiles {
			st.TotalCredits += p.Credits
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return &st, nil
}
