package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jredh-dev/foodshare/internal/store"
	"github.com/jredh-dev/foodshare/pkg/models"
)

var errReadOnly = errors.New("kv: write in read-only transaction")

// Repository implements store.Store over a KV. Each collection is one JSON
// value: donations, requests, volunteerRatings and sponsors are arrays in
// insertion order, volunteerProfile is an object keyed by volunteer id.
type Repository struct {
	kv               KV
	prefix           string
	defaultVolunteer string
}

var _ store.Store = (*Repository)(nil)

// Option configures a Repository.
type Option func(*Repository)

// WithPrefix namespaces every key, e.g. "foodshare:".
func WithPrefix(prefix string) Option {
	return func(r *Repository) { r.prefix = prefix }
}

// WithDefaultVolunteer sets the volunteer that a legacy single-profile
// volunteerProfile value is attributed to.
func WithDefaultVolunteer(id string) Option {
	return func(r *Repository) { r.defaultVolunteer = id }
}

// NewRepository wraps kv.
func NewRepository(kv KV, opts ...Option) *Repository {
	r := &Repository{kv: kv}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) keys() []string {
	out := make([]string, len(store.Keys))
	for i, k := range store.Keys {
		out[i] = r.prefix + k
	}
	return out
}

// View decodes every collection and runs fn against the result.
func (r *Repository) View(ctx context.Context, fn func(store.Tx) error) error {
	raw, err := r.kv.Get(ctx, r.keys()...)
	if err != nil {
		return err
	}
	snap, err := r.decode(raw)
	if err != nil {
		return err
	}
	snap.readOnly = true
	return fn(snap)
}

// Update runs fn against a decoded snapshot and writes back the collections
// it changed. fn may run more than once; it must not have side effects
// outside the Tx.
func (r *Repository) Update(ctx context.Context, fn func(store.Tx) error) error {
	return r.kv.Txn(ctx, r.keys(), func(raw map[string][]byte) (map[string][]byte, error) {
		snap, err := r.decode(raw)
		if err != nil {
			return nil, err
		}
		if err := fn(snap); err != nil {
			return nil, err
		}
		return r.encode(snap)
	})
}

func (r *Repository) Close() error {
	return r.kv.Close()
}

func (r *Repository) decode(raw map[string][]byte) (*snapshot, error) {
	s := &snapshot{dirty: make(map[string]bool)}
	if err := decodeList(raw[r.prefix+store.KeyDonations], &s.donations); err != nil {
		return nil, malformed(store.KeyDonations, err)
	}
	if err := decodeList(raw[r.prefix+store.KeyRequests], &s.requests); err != nil {
		return nil, malformed(store.KeyRequests, err)
	}
	if err := decodeList(raw[r.prefix+store.KeyVolunteerRatings], &s.ratings); err != nil {
		return nil, malformed(store.KeyVolunteerRatings, err)
	}
	if err := decodeList(raw[r.prefix+store.KeySponsors], &s.sponsors); err != nil {
		return nil, malformed(store.KeySponsors, err)
	}
	profiles, err := decodeProfiles(raw[r.prefix+store.KeyVolunteerProfile], r.defaultVolunteer)
	if err != nil {
		return nil, malformed(store.KeyVolunteerProfile, err)
	}
	s.profiles = profiles
	return s, nil
}

func (r *Repository) encode(s *snapshot) (map[string][]byte, error) {
	out := make(map[string][]byte, len(s.dirty))
	for key := range s.dirty {
		var v interface{}
		switch key {
		case store.KeyDonations:
			v = s.donations
		case store.KeyRequests:
			v = s.requests
		case store.KeyVolunteerRatings:
			v = s.ratings
		case store.KeySponsors:
			v = s.sponsors
		case store.KeyVolunteerProfile:
			v = s.profiles
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		out[r.prefix+key] = b
	}
	return out, nil
}

func malformed(key string, err error) error {
	return fmt.Errorf("%s: %w: %v", key, store.ErrMalformed, err)
}

// decodeList decodes a JSON array. A missing or null value is an empty list.
func decodeList(b []byte, dst interface{}) error {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}

// legacyProfile is the single-volunteer shape the browser app writes.
type legacyProfile struct {
	UPIID   string `json:"upiId"`
	Credits int    `json:"credits"`
}

// decodeProfiles accepts either an object keyed by volunteer id or the
// legacy single profile, which is filed under defaultVolunteer.
func decodeProfiles(b []byte, defaultVolunteer string) (map[string]models.VolunteerProfile, error) {
	out := make(map[string]models.VolunteerProfile)
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return out, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}

	legacy := false
	for _, v := range fields {
		if v = bytes.TrimSpace(v); len(v) == 0 || v[0] != '{' {
			legacy = true
			break
		}
	}
	if legacy {
		if defaultVolunteer == "" {
			return nil, errors.New("single volunteer profile but no default volunteer configured")
		}
		var p legacyProfile
		if err := json.Unmarshal(b, &p); err != nil {
			return nil, err
		}
		out[defaultVolunteer] = models.VolunteerProfile{
			VolunteerID: defaultVolunteer,
			UPIID:       p.UPIID,
			Credits:     p.Credits,
		}
		return out, nil
	}

	for id, v := range fields {
		var p models.VolunteerProfile
		if err := json.Unmarshal(v, &p); err != nil {
			return nil, fmt.Errorf("profile %s: %w", id, err)
		}
		p.VolunteerID = id
		out[id] = p
	}
	return out, nil
}

// snapshot is a decoded copy of every collection. It implements store.Tx.
type snapshot struct {
	donations []models.Donation
	requests  []models.Request
	ratings   []models.VolunteerRating
	profiles  map[string]models.VolunteerProfile
	sponsors  []models.Sponsor

	dirty    map[string]bool
	readOnly bool
}

func (s *snapshot) touch(key string) error {
	if s.readOnly {
		return errReadOnly
	}
	s.dirty[key] = true
	return nil
}

func (s *snapshot) Donation(id string) (*models.Donation, error) {
	for i := range s.donations {
		if s.donations[i].ID == id {
			d := s.donations[i]
			return &d, nil
		}
	}
	return nil, fmt.Errorf("donation %s: %w", id, store.ErrNotFound)
}

func (s *snapshot) Donations(status models.DonationStatus) ([]models.Donation, error) {
	var out []models.Donation
	for _, d := range s.donations {
		if status == "" || d.Status == status {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *snapshot) PutDonation(d *models.Donation) error {
	if err := s.touch(store.KeyDonations); err != nil {
		return err
	}
	for i := range s.donations {
		if s.donations[i].ID == d.ID {
			s.donations[i] = *d
			return nil
		}
	}
	s.donations = append(s.donations, *d)
	return nil
}

func (s *snapshot) Request(id string) (*models.Request, error) {
	for i := range s.requests {
		if s.requests[i].ID == id {
			r := s.requests[i]
			return &r, nil
		}
	}
	return nil, fmt.Errorf("request %s: %w", id, store.ErrNotFound)
}

func (s *snapshot) Requests(f store.RequestFilter) ([]models.Request, error) {
	var out []models.Request
	for i := range s.requests {
		if f.Match(&s.requests[i]) {
			out = append(out, s.requests[i])
		}
	}
	return out, nil
}

func (s *snapshot) PutRequest(r *models.Request) error {
	if err := s.touch(store.KeyRequests); err != nil {
		return err
	}
	for i := range s.requests {
		if s.requests[i].ID == r.ID {
			s.requests[i] = *r
			return nil
		}
	}
	s.requests = append(s.requests, *r)
	return nil
}

func (s *snapshot) Ratings(volunteerID string) ([]models.VolunteerRating, error) {
	var out []models.VolunteerRating
	for _, r := range s.ratings {
		if volunteerID == "" || r.VolunteerID == volunteerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *snapshot) AddRating(r *models.VolunteerRating) error {
	if err := s.touch(store.KeyVolunteerRatings); err != nil {
		return err
	}
	s.ratings = append(s.ratings, *r)
	return nil
}

func (s *snapshot) Profile(volunteerID string) (*models.VolunteerProfile, error) {
	p, ok := s.profiles[volunteerID]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", volunteerID, store.ErrNotFound)
	}
	return &p, nil
}

func (s *snapshot) Profiles() ([]models.VolunteerProfile, error) {
	out := make([]models.VolunteerProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VolunteerID < out[j].VolunteerID })
	return out, nil
}

func (s *snapshot) PutProfile(p *models.VolunteerProfile) error {
	if err := s.touch(store.KeyVolunteerProfile); err != nil {
		return err
	}
	s.profiles[p.VolunteerID] = *p
	return nil
}

func (s *snapshot) Sponsors() ([]models.Sponsor, error) {
	return append([]models.Sponsor(nil), s.sponsors...), nil
}

func (s *snapshot) AddSponsor(sp *models.Sponsor) error {
	if err := s.touch(store.KeySponsors); err != nil {
		return err
	}
	s.sponsors = append(s.sponsors, *sp)
	return nil
}
