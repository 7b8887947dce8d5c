package lifecycle

import (
	"context"
	"fmt"

	"github.com/jredh-dev/foodshare/internal/store"
	"github.com/jredh-dev/foodshare/pkg/models"
)

// Rate records a recipient's score for a delivered volunteer request.
// volunteerID may be empty, in which case the request's volunteer is used.
// Every rating is kept, including repeats for the same request.
func (s *Service) Rate(ctx context.Context, requestID, volunteerID string, value int) (*models.VolunteerRating, error) {
	var v validator
	v.require("requestId", requestID)
	v.check(value >= models.MinRating && value <= models.MaxRating,
		"rating", fmt.Sprintf("must be between %d and %d", models.MinRating, models.MaxRating))
	if err := v.err(); err != nil {
		return nil, err
	}

	var rating *models.VolunteerRating
	err := s.store.Update(ctx, func(tx store.Tx) error {
		r, err := tx.Request(requestID)
		if err != nil {
			return err
		}

		var rv validator
		rv.check(r.Type == models.RequestVolunteer, "requestId", "is not a volunteer delivery")
		rv.check(r.Status == models.RequestDelivered, "requestId", "has not been delivered")
		rv.check(volunteerID == "" || volunteerID == r.VolunteerID, "volunteerId", "did not deliver this request")
		if err := rv.err(); err != nil {
			return err
		}

		now := s.now()
		rating = &models.VolunteerRating{
			ID:          s.ids.Next(now),
			RequestID:   r.ID,
			VolunteerID: r.VolunteerID,
			Rating:      value,
			CreatedAt:   now,
		}
		return tx.AddRating(rating)
	})
	if err != nil {
		return nil, fmt.Errorf("rate volunteer: %w", err)
	}

	s.log.Info("volunteer rated", "request_id", requestID, "volunteer_id", rating.VolunteerID, "rating", value)
	return rating, nil
}

// AverageRating returns the mean of every rating volunteerID has received.
// ok is false when there are none.
func (s *Service) AverageRating(ctx context.Context, volunteerID string) (avg float64, ok bool, err error) {
	var ratings []models.VolunteerRating
	err = s.store.View(ctx, func(tx store.Tx) error {
		var err error
		ratings, err = tx.Ratings(volunteerID)
		return err
	})
	if err != nil {
		return 0, false, fmt.Errorf("average rating: %w", err)
	}
	avg, ok = Mean(ratings)
	return avg, ok, nil
}

// Mean averages ratings. ok is false for an empty slice.
func Mean(ratings []models.VolunteerRating) (avg float64, ok bool) {
	if len(ratings) == 0 {
		return 0, false
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings)), true
}

// Ratings returns every rating.
func (s *Service) Ratings(ctx context.Context) ([]models.VolunteerRating, error) {
	var out []models.VolunteerRating
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.Ratings("")
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return out, nil
}
