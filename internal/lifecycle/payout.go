package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jredh-dev/foodshare/internal/store"
	"github.com/jredh-dev/foodshare/pkg/models"
)

// Ledger remembers which payouts have been marked paid. It lives only as
// long as the process and never touches credits or amounts.
type Ledger struct {
	mu   sync.RWMutex
	paid map[string]string // payout id -> payment reference
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{paid: make(map[string]string)}
}

// MarkPaid records payoutID as paid and returns its payment reference.
// Marking an already paid payout returns the original reference.
func (l *Ledger) MarkPaid(payoutID string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ref, ok := l.paid[payoutID]; ok {
		return ref
	}
	ref := uuid.NewString()
	l.paid[payoutID] = ref
	return ref
}

// Apply sets status and reference on p from the ledger.
func (l *Ledger) Apply(p *models.Payout) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if ref, ok := l.paid[p.ID]; ok {
		p.Status = models.PayoutPaid
		p.Reference = ref
		return
	}
	p.Status = models.PayoutPending
	p.Reference = ""
}

// ComputePayout projects a profile into a payout. The payout id is the
// volunteer id, so there is one payout per volunteer.
func ComputePayout(p models.VolunteerProfile, e Economics) models.Payout {
	name := p.Name
	if name == "" {
		name = e.DefaultVolunteerName
	}
	return models.Payout{
		ID:            p.VolunteerID,
		VolunteerID:   p.VolunteerID,
		VolunteerName: name,
		Credits:       p.Credits,
		UPIID:         p.UPIID,
		Amount:        p.Credits * e.RupeesPerCredit,
		Status:        models.PayoutPending,
	}
}

// Payouts lists one payout per volunteer profile with its paid status.
func (s *Service) Payouts(ctx context.Context) ([]models.Payout, error) {
	var profiles []models.VolunteerProfile
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		profiles, err = tx.Profiles()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}

	out := make([]models.Payout, len(profiles))
	for i, p := range profiles {
		out[i] = ComputePayout(p, s.econ)
		s.ledger.Apply(&out[i])
	}
	return out, nil
}

// MarkPaid flags a payout as paid. Credits stay as they are.
func (s *Service) MarkPaid(ctx context.Context, payoutID string) (*models.Payout, error) {
	var p *models.VolunteerProfile
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		p, err = tx.Profile(payoutID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("mark paid: %w", err)
	}

	ref := s.ledger.MarkPaid(payoutID)
	out := ComputePayout(*p, s.econ)
	s.ledger.Apply(&out)
	s.log.Info("payout marked paid", "payout_id", payoutID, "amount", out.Amount, "reference", ref)
	return &out, nil
}
