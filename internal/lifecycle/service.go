// Package lifecycle implements the donation, request and volunteer rules on
// top of a store.Store. Every mutation runs inside a single store
// transaction, so a compound step such as "create a request and claim its
// donation" is applied whole or not at all.
package lifecycle

import (
	"io"
	"log/slog"
	"time"

	"github.com/jredh-dev/foodshare/internal/ids"
	"github.com/jredh-dev/foodshare/internal/store"
)

// Economics are the tunable numbers of the volunteer and sponsor programs.
type Economics struct {
	CreditsPerDelivery   int
	RupeesPerCredit      int
	SponsorSlots         int
	DefaultVolunteerID   string
	DefaultVolunteerName string
}

// DefaultEconomics returns the values the app has always used.
func DefaultEconomics() Economics {
	return Economics{
		CreditsPerDelivery:   10,
		RupeesPerCredit:      5,
		SponsorSlots:         4,
		DefaultVolunteerID:   "volunteer-123",
		DefaultVolunteerName: "John Doe",
	}
}

// Service runs lifecycle operations against a store.
type Service struct {
	store  store.Store
	ids    *ids.Generator
	now    func() time.Time
	log    *slog.Logger
	econ   Economics
	ledger *Ledger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithEconomics overrides DefaultEconomics.
func WithEconomics(e Economics) Option {
	return func(s *Service) { s.econ = e }
}

// New creates a Service over st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		ids:    ids.New(),
		now:    time.Now,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		econ:   DefaultEconomics(),
		ledger: NewLedger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Economics returns the values in effect.
func (s *Service) Economics() Economics {
	return s.econ
}
