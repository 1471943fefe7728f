package marketplace

import (
	"fmt"

	"github.com/squadhub/squadhub-backend/internal/apperr"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Party is the side of a booking a caller is on.
type Party string

const (
	PartyProvider Party = "provider"
	PartyCustomer Party = "customer"
)

var (
	ErrWrongParty    = apperr.Forbidden("you are not allowed to make this change")
	ErrProofRequired = apperr.Conflict("payment proof must be uploaded before the booking can start")
)

type edge struct {
	from, to Status
}

type rule struct {
	parties    []Party
	needsProof bool
}

var transitions = map[edge]rule{
	{StatusPending, StatusAccepted}:   {parties: []Party{PartyProvider}},
	{StatusPending, StatusCancelled}:  {parties: []Party{PartyProvider, PartyCustomer}},
	{StatusAccepted, StatusCancelled}: {parties: []Party{PartyProvider, PartyCustomer}},
	{StatusAccepted, StatusOngoing}:   {parties: []Party{PartyProvider}, needsProof: true},
	{StatusOngoing, StatusCompleted}:  {parties: []Party{PartyCustomer}},
}

// TransitionError reports a move that is not an edge of the booking graph.
type TransitionError struct {
	From, To Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move booking from %s to %s", e.From, e.To)
}

// Unwrap classifies the error as a conflict.
func (e *TransitionError) Unwrap() error {
	return apperr.Conflict(e.Error())
}

// CheckTransition validates a status change before any write. Guards run in
// order: edge exists, party may take it, payment proof when required.
func CheckTransition(from, to Status, party Party, hasProof bool) error {
	r, ok := transitions[edge{from, to}]
	if !ok {
		return &TransitionError{From: from, To: to}
	}
	allowed := false
	for _, p := range r.parties {
		if p == party {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrWrongParty
	}
	if r.needsProof && !hasProof {
		return ErrProofRequired
	}
	return nil
}

// Terminal reports whether no transition leaves s.
func Terminal(s Status) bool {
	for e := range transitions {
		if e.from == s {
			return false
		}
	}
	return true
}

// acceptsProof reports whether a payment proof may be uploaded in s.
func acceptsProof(s Status) bool {
	return s == StatusPending || s == StatusAccepted
}
