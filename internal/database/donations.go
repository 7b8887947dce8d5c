package database

import (
	"database/sql"
	"fmt"

	"github.com/jredh-dev/foodshare/internal/store"
	"github.com/jredh-dev/foodshare/pkg/models"
)

const donationColumns = `id, food_image, purpose, location, phone, expiry_time, target, donor_id, status, created_at, updated_at`

func scanDonation(row scanner) (*models.Donation, error) {
	d := &models.Donation{}
	err := row.Scan(
		&d.ID, &d.FoodImage, &d.Purpose, &d.Location, &d.Phone,
		&d.ExpiryTime, &d.Target, &d.DonorID, &d.Status,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

// Donation returns a donation by ID.
func (t *sqlTx) Donation(id string) (*models.Donation, error) {
	q := `SELECT ` + donationColumns + ` FROM donations WHERE id = ?`
	d, err := scanDonation(t.tx.QueryRowContext(t.ctx, q, id))
	if err != nil {
		return nil, fmt.Errorf("get donation %s: %w", id, err)
	}
	if d == nil {
		return nil, fmt.Errorf("donation %s: %w", id, store.ErrNotFound)
	}
	return d, nil
}

// Donations returns donations filtered by status. If status is empty, all donations are returned.
func (t *sqlTx) Donations(status models.DonationStatus) ([]models.Donation, error) {
	var q string
	var args []interface{}

	if status != "" {
		q = `SELECT ` + donationColumns + ` FROM donations WHERE status = ? ORDER BY rowid`
		args = append(args, string(status))
	} else {
		q = `SELECT ` + donationColumns + ` FROM donations ORDER BY rowid`
	}

	var out []models.Donation
	err := t.query(q, func(row scanner) error {
		d, err := scanDonation(row)
		if err != nil {
			return err
		}
		out = append(out, *d)
		return nil
	}, args...)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	return out, nil
}

// PutDonation inserts or replaces a donation.
func (t *sqlTx) PutDonation(d *models.Donation) error {
	const q = `INSERT INTO donations (` + donationColumns + `)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	           ON CONFLICT(id) DO UPDATE SET
	               food_image = excluded.food_image, purpose = excluded.purpose,
	               location = excluded.location, phone = excluded.phone,
	               expiry_time = excluded.expiry_time, target = excluded.target,
	               donor_id = excluded.donor_id, status = excluded.status,
	               created_at = excluded.created_at, updated_at = excluded.updated_at`
	err := t.exec(q,
		d.ID, d.FoodImage, d.Purpose, d.Location, d.Phone,
		d.ExpiryTime, string(d.Target), d.DonorID, string(d.Status),
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("put donation %s: %w", d.ID, err)
	}
	return nil
}
