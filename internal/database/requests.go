package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jredh-dev/foodshare/internal/store"
	"github.com/jredh-dev/foodshare/pkg/models"
)

const requestColumns = `id, donation_id, recipient_id, type, status, volunteer_id, created_at, updated_at`

func scanRequest(row scanner) (*models.Request, error) {
	r := &models.Request{}
	err := row.Scan(
		&r.ID, &r.DonationID, &r.RecipientID, &r.Type, &r.Status,
		&r.VolunteerID, &r.CreatedAt, &r.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

// Request returns a request by ID.
func (t *sqlTx) Request(id string) (*models.Request, error) {
	q := `SELECT ` + requestColumns + ` FROM requests WHERE id = ?`
	r, err := scanRequest(t.tx.QueryRowContext(t.ctx, q, id))
	if err != nil {
		return nil, fmt.Errorf("get request %s: %w", id, err)
	}
	if r == nil {
		return nil, fmt.Errorf("request %s: %w", id, store.ErrNotFound)
	}
	return r, nil
}

// Requests returns the requests matching f in insertion order.
func (t *sqlTx) Requests(f store.RequestFilter) ([]models.Request, error) {
	var where []string
	var args []interface{}
	add := func(col, val string) {
		if val != "" {
			where = append(where, col+" = ?")
			args = append(args, val)
		}
	}
	add("donation_id", f.DonationID)
	add("recipient_id", f.RecipientID)
	add("volunteer_id", f.VolunteerID)
	add("type", string(f.Type))
	add("status", string(f.Status))

	q := `SELECT ` + requestColumns + ` FROM requests`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY rowid`

	var out []models.Request
	err := t.query(q, func(row scanner) error {
		r, err := scanRequest(row)
		if err != nil {
			return err
		}
		out = append(out, *r)
		return nil
	}, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return out, nil
}

// PutRequest inserts or replaces a request.
func (t *sqlTx) PutRequest(r *models.Request) error {
	const q = `INSERT INTO requests (` + requestColumns + `)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	           ON CONFLICT(id) DO UPDATE SET
	               donation_id = excluded.donation_id, recipient_id = excluded.recipient_id,
	               type = excluded.type, status = excluded.status,
	               volunteer_id = excluded.volunteer_id,
	               created_at = excluded.created_at, updated_at = excluded.updated_at`
	err := t.exec(q,
		r.ID, r.DonationID, r.RecipientID, string(r.Type), string(r.Status),
		r.VolunteerID, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("put request %s: %w", r.ID, err)
	}
	return nil
}
