package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jredh-dev/foodshare/internal/kv"
	"github.com/jredh-dev/foodshare/pkg/models"
)

func TestComputePayout(t *testing.T) {
	e := DefaultEconomics()

	p := ComputePayout(models.VolunteerProfile{VolunteerID: "v1", UPIID: "v1@upi", Credits: 30}, e)
	assert.Equal(t, "v1", p.ID)
	assert.Equal(t, 150, p.Amount)
	assert.Equal(t, "John Doe", p.VolunteerName)
	assert.Equal(t, models.PayoutPending, p.Status)

	p = ComputePayout(models.VolunteerProfile{VolunteerID: "v2", Name: "Asha"}, e)
	assert.Equal(t, "Asha", p.VolunteerName)
	assert.Zero(t, p.Amount)
}

func TestPayouts_MarkPaid(t *testing.T) {
	svc := New(kv.NewRepository(kv.NewMemory()))
	ctx := context.Background()
	deliver(t, svc, "v1")
	deliver(t, svc, "v1")
	deliver(t, svc, "v2")

	payouts, err := svc.Payouts(ctx)
	require.NoError(t, err)
	require.Len(t, payouts, 2)
	assert.Equal(t, 20, payouts[0].Credits)
	assert.Equal(t, 100, payouts[0].Amount)
	assert.Equal(t, 50, payouts[1].Amount)

	paid, err := svc.MarkPaid(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, models.PayoutPaid, paid.Status)
	assert.NotEmpty(t, paid.Reference)
	assert.Equal(t, 20, paid.Credits)
	assert.Equal(t, 100, paid.Amount)

	again, err := svc.MarkPaid(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, paid.Reference, again.Reference)

	payouts, err = svc.Payouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutPaid, payouts[0].Status)
	assert.Equal(t, models.PayoutPending, payouts[1].Status)

	// Paying out does not touch credits.
	p, err := svc.Profile(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 20, p.Credits)

	_, err = svc.MarkPaid(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPayouts_CustomEconomics(t *testing.T) {
	e := DefaultEconomics()
	e.CreditsPerDelivery = 3
	e.RupeesPerCredit = 7
	svc := New(kv.NewRepository(kv.NewMemory()), WithEconomics(e))
	deliver(t, svc, "v1")

	payouts, err := svc.Payouts(context.Background())
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, 21, payouts[0].Amount)
}

func TestStats(t *testing.T) {
	svc := New(kv.NewRepository(kv.NewMemory()))
	ctx := context.Background()

	deliver(t, svc, "v1")
	deliver(t, svc, "v2")

	d, err := svc.CreateDonation(ctx, donationInput())
	require.NoError(t, err)
	_, err = svc.CreateRequest(ctx, RequestInput{DonationID: d.ID, RecipientID: "r2", Type: models.RequestPickup})
	require.NoError(t, err)
	_, err = svc.CreateDonation(ctx, donationInput())
	require.NoError(t, err)

	_, err = svc.CreateSponsor(ctx, SponsorInput{
		FirstName: "A", LastName: "B", Phone: "9876543210",
		Email: "a@b.in", Location: "Hyd", Amount: "1000",
	})
	require.NoError(t, err)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Stats{
		Donations:    4,
		MealsServed:  3,
		Sponsors:     1,
		Volunteers:   2,
		TotalCredits: 20,
	}, st)
}
