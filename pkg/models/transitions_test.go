package models

import (
	"errors"
	"testing"
	"time"
)

func TestDonationStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to DonationStatus
		want     bool
	}{
		{DonationAvailable, DonationClaimed, true},
		{DonationClaimed, DonationDelivered, true},
		{DonationAvailable, DonationDelivered, false},
		{DonationClaimed, DonationAvailable, false},
		{DonationDelivered, DonationClaimed, false},
		{DonationDelivered, DonationAvailable, false},
		{DonationAvailable, DonationAvailable, false},
		{"bogus", DonationClaimed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to RequestStatus
		want     bool
	}{
		{RequestPending, RequestAssigned, true},
		{RequestAssigned, RequestPicked, true},
		{RequestPicked, RequestDelivered, true},
		{RequestPending, RequestPicked, false},
		{RequestPending, RequestDelivered, false},
		{RequestAssigned, RequestPending, false},
		{RequestDelivered, RequestPending, false},
		{RequestPicked, RequestAssigned, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInitialRequestStatus(t *testing.T) {
	if got := InitialRequestStatus(RequestPickup); got != RequestDelivered {
		t.Errorf("pickup starts %q, want %q", got, RequestDelivered)
	}
	if got := InitialRequestStatus(RequestVolunteer); got != RequestPending {
		t.Errorf("volunteer starts %q, want %q", got, RequestPending)
	}
}

func TestDonationAdvance(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := &Donation{ID: "d1", Status: DonationAvailable}

	if err := d.Advance(DonationClaimed, now); err != nil {
		t.Fatalf("Advance to claimed: %v", err)
	}
	if d.Status != DonationClaimed {
		t.Errorf("Status = %q, want %q", d.Status, DonationClaimed)
	}
	if !d.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", d.UpdatedAt, now)
	}

	err := d.Advance(DonationAvailable, now)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransitionError, got %T", err)
	}
	if te.From != "claimed" || te.To != "available" || te.Entity != "donation" {
		t.Errorf("unexpected transition error %+v", te)
	}
	if d.Status != DonationClaimed {
		t.Errorf("rejected transition changed status to %q", d.Status)
	}
}

func TestRequestAdvance_PickupNeverMoves(t *testing.T) {
	r := &Request{ID: "r1", Type: RequestPickup, Status: RequestPending}
	if err := r.Advance(RequestAssigned, time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected pickup request to reject transitions, got %v", err)
	}
}

func TestRequestAdvance_FullPath(t *testing.T) {
	r := &Request{ID: "r1", Type: RequestVolunteer, Status: RequestPending}
	now := time.Now()
	for _, next := range []RequestStatus{RequestAssigned, RequestPicked, RequestDelivered} {
		if err := r.Advance(next, now); err != nil {
			t.Fatalf("Advance to %s: %v", next, err)
		}
	}
	if _, ok := r.Status.Next(); ok {
		t.Errorf("delivered should be terminal")
	}
}

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"rfc3339", "2026-03-01T18:30:00Z", time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC), false},
		{"datetime-local", "2026-03-01T18:30", time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC), false},
		{"with seconds", "2026-03-01T18:30:15", time.Date(2026, 3, 1, 18, 30, 15, 0, time.UTC), false},
		{"space separated", "2026-03-01 18:30", time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC), false},
		{"date only", "2026-03-01", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), false},
		{"padded", "  2026-03-01  ", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), false},
		{"garbage", "tomorrow", time.Time{}, true},
		{"empty", "", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExpiry(tt.input, time.UTC)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseExpiry: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseExpiry(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDonationExpired(t *testing.T) {
	now := time.Now()
	past := &Donation{ExpiryTime: now.Add(-time.Hour).Format(time.RFC3339)}
	future := &Donation{ExpiryTime: now.Add(time.Hour).Format(time.RFC3339)}
	junk := &Donation{ExpiryTime: "soon"}

	if !past.Expired(now) {
		t.Error("past expiry should be expired")
	}
	if future.Expired(now) {
		t.Error("future expiry should not be expired")
	}
	if junk.Expired(now) {
		t.Error("unparseable expiry should not be expired")
	}
}
