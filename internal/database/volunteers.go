package database

import (
	"database/sql"
	"fmt"

	"github.com/jredh-dev/foodshare/internal/store"
	"github.com/jredh-dev/foodshare/pkg/models"
)

// --- Ratings ---

const ratingColumns = `id, request_id, volunteer_id, rating, created_at`

// Ratings returns ratings for a volunteer, or every rating if volunteerID is empty.
func (t *sqlTx) Ratings(volunteerID string) ([]models.VolunteerRating, error) {
	var q string
	var args []interface{}
	if volunteerID != "" {
		q = `SELECT ` + ratingColumns + ` FROM volunteer_ratings WHERE volunteer_id = ? ORDER BY rowid`
		args = append(args, volunteerID)
	} else {
		q = `SELECT ` + ratingColumns + ` FROM volunteer_ratings ORDER BY rowid`
	}

	var out []models.VolunteerRating
	err := t.query(q, func(row scanner) error {
		var r models.VolunteerRating
		if err := row.Scan(&r.ID, &r.RequestID, &r.VolunteerID, &r.Rating, &r.CreatedAt); err != nil {
			return err
		}
		out = append(out, r)
		return nil
	}, args...)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return out, nil
}

// AddRating inserts a rating.
func (t *sqlTx) AddRating(r *models.VolunteerRating) error {
	const q = `INSERT INTO volunteer_ratings (` + ratingColumns + `) VALUES (?, ?, ?, ?, ?)`
	if err := t.exec(q, r.ID, r.RequestID, r.VolunteerID, r.Rating, r.CreatedAt); err != nil {
		return fmt.Errorf("add rating: %w", err)
	}
	return nil
}

// --- Profiles ---

const profileColumns = `volunteer_id, name, upi_id, credits`

func scanProfile(row scanner) (*models.VolunteerProfile, error) {
	p := &models.VolunteerProfile{}
	err := row.Scan(&p.VolunteerID, &p.Name, &p.UPIID, &p.Credits)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// Profile returns a volunteer's profile.
func (t *sqlTx) Profile(volunteerID string) (*models.VolunteerProfile, error) {
	q := `SELECT ` + profileColumns + ` FROM volunteer_profiles WHERE volunteer_id = ?`
	p, err := scanProfile(t.tx.QueryRowContext(t.ctx, q, volunteerID))
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", volunteerID, err)
	}
	if p == nil {
		return nil, fmt.Errorf("profile %s: %w", volunteerID, store.ErrNotFound)
	}
	return p, nil
}

// Profiles returns every profile ordered by volunteer id.
func (t *sqlTx) Profiles() ([]models.VolunteerProfile, error) {
	q := `SELECT ` + profileColumns + ` FROM volunteer_profiles ORDER BY volunteer_id`
	var out []models.VolunteerProfile
	err := t.query(q, func(row scanner) error {
		p, err := scanProfile(row)
		if err != nil {
			return err
		}
		out = append(out, *p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

// PutProfile inserts or replaces a profile.
func (t *sqlTx) PutProfile(p *models.VolunteerProfile) error {
	const q = `INSERT INTO volunteer_profiles (` + profileColumns + `) VALUES (?, ?, ?, ?)
	           ON CONFLICT(volunteer_id) DO UPDATE SET
	               name = excluded.name, upi_id = excluded.upi_id, credits = excluded.credits`
	if err := t.exec(q, p.VolunteerID, p.Name, p.UPIID, p.Credits); err != nil {
		return fmt.Errorf("put profile %s: %w", p.VolunteerID, err)
	}
	return nil
}

// --- Sponsors ---

const sponsorColumns = `id, first_name, last_name, phone, email, location, amount, screenshot, created_at`

// Sponsors returns stored sponsors in submission order.
func (t *sqlTx) Sponsors() ([]models.Sponsor, error) {
	q := `SELECT ` + sponsorColumns + ` FROM sponsors ORDER BY rowid`
	var out []models.Sponsor
	err := t.query(q, func(row scanner) error {
		var s models.Sponsor
		if err := row.Scan(
			&s.ID, &s.FirstName, &s.LastName, &s.Phone, &s.Email,
			&s.Location, &s.Amount, &s.Screenshot, &s.CreatedAt,
		); err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list sponsors: %w", err)
	}
	return out, nil
}

// AddSponsor inserts a sponsor.
func (t *sqlTx) AddSponsor(s *models.Sponsor) error {
	const q = `INSERT INTO sponsors (` + sponsorColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	err := t.exec(q,
		s.ID, s.FirstName, s.LastName, s.Phone, s.Email,
		s.Location, s.Amount, s.Screenshot, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("add sponsor: %w", err)
	}
	return nil
}
