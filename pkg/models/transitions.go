package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition is matched by every *TransitionError.
var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionError describes a rejected status change.
type TransitionError struct {
	Entity string // "donation" or "request"
	ID     string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %s: cannot move from %q to %q", e.Entity, e.ID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Each state has exactly one successor. Terminal states are absent.
var donationNext = map[DonationStatus]DonationStatus{
	DonationAvailable: DonationClaimed,
	DonationClaimed:   DonationDelivered,
}

var requestNext = map[RequestStatus]RequestStatus{
	RequestPending:  RequestAssigned,
	RequestAssigned: RequestPicked,
	RequestPicked:   RequestDelivered,
}

// Valid reports whether s is a known donation status.
func (s DonationStatus) Valid() bool {
	switch s {
	case DonationAvailable, DonationClaimed, DonationDelivered:
		return true
	}
	return false
}

// CanTransition reports whether s may move to next.
func (s DonationStatus) CanTransition(next DonationStatus) bool {
	n, ok := donationNext[s]
	return ok && n == next
}

// Valid reports whether s is a known request status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestAssigned, RequestPicked, RequestDelivered:
		return true
	}
	return false
}

// CanTransition reports whether s may move to next.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	n, ok := requestNext[s]
	return ok && n == next
}

// Next returns the successor of s, or false if s is terminal.
func (s RequestStatus) Next() (RequestStatus, bool) {
	n, ok := requestNext[s]
	return n, ok
}

// InitialRequestStatus is the status a new request of type t starts in.
// A pickup needs no volunteer, so it is complete on creation.
func InitialRequestStatus(t RequestType) RequestStatus {
	if t == RequestPickup {
		return RequestDelivered
	}
	return RequestPending
}

// Advance moves the donation to next or returns a *TransitionError.
func (d *Donation) Advance(next DonationStatus, now time.Time) error {
	if !d.Status.CanTransition(next) {
		return &TransitionError{Entity: "donation", ID: d.ID, From: string(d.Status), To: string(next)}
	}
	d.Status = next
	d.UpdatedAt = now
	return nil
}

// Advance moves the request to next or returns a *TransitionError.
// Pickup requests are born delivered and never move.
func (r *Request) Advance(next RequestStatus, now time.Time) error {
	if r.Type != RequestVolunteer || !r.Status.CanTransition(next) {
		return &TransitionError{Entity: "request", ID: r.ID, From: string(r.Status), To: string(next)}
	}
	r.Status = next
	r.UpdatedAt = now
	return nil
}
