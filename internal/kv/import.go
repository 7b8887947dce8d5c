package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/jredh-dev/foodshare/internal/store"
	"github.com/jredh-dev/foodshare/pkg/models"
)

// Dump is the decoded content of a browser localStorage export.
type Dump struct {
	Donations []models.Donation
	Requests  []models.Request
	Ratings   []models.VolunteerRating
	Profiles  map[string]models.VolunteerProfile
	Sponsors  []models.Sponsor
}

// ParseDump reads a JSON object mapping localStorage keys to their values.
// localStorage holds strings, so a value may be the collection itself or a
// JSON string containing it. Keys other than the five collections are ignored.
func ParseDump(r io.Reader, defaultVolunteer string) (*Dump, error) {
	var top map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&top); err != nil {
		return nil, fmt.Errorf("%w: dump is not a JSON object: %v", store.ErrMalformed, err)
	}

	raw := make(map[string][]byte, len(store.Keys))
	for _, key := range store.Keys {
		v, ok := top[key]
		if !ok {
			continue
		}
		b, err := unquote(v)
		if err != nil {
			return nil, malformed(key, err)
		}
		raw[key] = b
	}

	snap, err := (&Repository{defaultVolunteer: defaultVolunteer}).decode(raw)
	if err != nil {
		return nil, err
	}
	return &Dump{
		Donations: snap.donations,
		Requests:  snap.requests,
		Ratings:   snap.ratings,
		Profiles:  snap.profiles,
		Sponsors:  snap.sponsors,
	}, nil
}

// unquote returns the inner JSON of a JSON-encoded string, or v unchanged.
func unquote(v json.RawMessage) ([]byte, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || v[0] != '"' {
		return v, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// ImportResult counts what an import wrote.
type ImportResult struct {
	BatchID   string
	Donations int
	Requests  int
	Ratings   int
	Profiles  int
	Sponsors  int
}

// Import writes d into dst in one transaction. Donations, requests and
// profiles are upserted by id. Ratings and sponsors are append-only, so
// ones whose id is already present are skipped, which makes re-importing
// the same dump a no-op.
func Import(ctx context.Context, dst store.Store, d *Dump) (ImportResult, error) {
	var res ImportResult
	err := dst.Update(ctx, func(tx store.Tx) error {
		res = ImportResult{}

		for i := range d.Donations {
			if err := tx.PutDonation(&d.Donations[i]); err != nil {
				return err
			}
			res.Donations++
		}
		for i := range d.Requests {
			if err := tx.PutRequest(&d.Requests[i]); err != nil {
				return err
			}
			res.Requests++
		}

		existing, err := tx.Ratings("")
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(existing))
		for _, r := range existing {
			seen[r.ID] = true
		}
		for i := range d.Ratings {
			if seen[d.Ratings[i].ID] {
				continue
			}
			if err := tx.AddRating(&d.Ratings[i]); err != nil {
				return err
			}
			seen[d.Ratings[i].ID] = true
			res.Ratings++
		}

		for _, p := range d.Profiles {
			p := p
			if err := tx.PutProfile(&p); err != nil {
				return err
			}
			res.Profiles++
		}

		sponsors, err := tx.Sponsors()
		if err != nil {
			return err
		}
		seen = make(map[string]bool, len(sponsors))
		for _, s := range sponsors {
			seen[s.ID] = true
		}
		for i := range d.Sponsors {
			if seen[d.Sponsors[i].ID] {
				continue
			}
			if err := tx.AddSponsor(&d.Sponsors[i]); err != nil {
				return err
			}
			seen[d.Sponsors[i].ID] = true
			res.Sponsors++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("import: %w", err)
	}
	res.BatchID = uuid.NewString()
	return res, nil
}
