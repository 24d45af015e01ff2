package grading

import (
	"errors"
	"strings"
)

// AppreciationState is the review state of a tutor's narrative comment.
type AppreciationState string

const (
	StateEmpty    AppreciationState = "empty"
	StateDraft    AppreciationState = "draft"
	StateSent     AppreciationState = "sent"
	StateApproved AppreciationState = "approved"
)

var (
	ErrInvalidTransition = errors.New("transición de apreciación no permitida")
	ErrAppreciationEmpty = errors.New("la apreciación no tiene texto")
)

// Appreciation is the (comment, approval) pair stored per student and
// period. Approval is tri-state: nil draft, false sent, true approved.
type Appreciation struct {
	Comment  string
	Approval *bool
}

// NewAppreciation copies the stored fields into a value.
func NewAppreciation(comment *string, approval *bool) Appreciation {
	a := Appreciation{}
	if comment != nil {
		a.Comment = *comment
	}
	if approval != nil {
		v := *approval
		a.Approval = &v
	}
	return a
}

// State derives the state from the stored fields.
func (a Appreciation) State() AppreciationState {
	if a.Approval != nil {
		if *a.Approval {
			return StateApproved
		}
		return StateSent
	}
	if strings.TrimSpace(a.Comment) == "" {
		return StateEmpty
	}
	return StateDraft
}

// IsApproved reports the approved state.
func (a Appreciation) IsApproved() bool {
	return a.State() == StateApproved
}

// Equal compares comment and approval.
func (a Appreciation) Equal(o Appreciation) bool {
	if a.Comment != o.Comment {
		return false
	}
	if (a.Approval == nil) != (o.Approval == nil) {
		return false
	}
	return a.Approval == nil || *a.Approval == *o.Approval
}

// WithText replaces the comment. Unchanged text returns a unchanged and
// false. Any real change invalidates an approval in the same step:
// Approved falls back to Sent so the reviewer sees it again, Sent stays
// Sent, and text emptied out of a Sent or Approved comment returns it to
// Empty since nothing is left to review.
func (a Appreciation) WithText(text string) (Appreciation, bool) {
	if text == a.Comment {
		return a, false
	}
	next := Appreciation{Comment: text}
	if strings.TrimSpace(text) == "" {
		return next, true
	}
	switch a.State() {
	case StateApproved, StateSent:
		next.Approval = boolPtr(false)
	}
	return next, true
}

// Submit moves a draft to review. Resubmitting a sent comment is a no-op.
func (a Appreciation) Submit() (Appreciation, error) {
	switch a.State() {
	case StateDraft:
		return Appreciation{Comment: a.Comment, Approval: boolPtr(false)}, nil
	case StateSent:
		return a, nil
	case StateEmpty:
		return a, ErrAppreciationEmpty
	}
	return a, ErrInvalidTransition
}

// Approve is only reachable from Sent.
func (a Appreciation) Approve() (Appreciation, error) {
	if a.State() != StateSent {
		return a, ErrInvalidTransition
	}
	return Appreciation{Comment: a.Comment, Approval: boolPtr(true)}, nil
}

// Revoke takes an approval back without touching the text.
func (a Appreciation) Revoke() (Appreciation, error) {
	switch a.State() {
	case StateApproved:
		return Appreciation{Comment: a.Comment, Approval: boolPtr(false)}, nil
	case StateSent:
		return a, nil
	}
	return a, ErrInvalidTransition
}

// SetApproval applies Approve or Revoke.
func (a Appreciation) SetApproval(approved bool) (Appreciation, error) {
	if approved {
		if a.State() == StateApproved {
			return a, nil
		}
		return a.Approve()
	}
	return a.Revoke()
}

// Toggle flips between Sent and Approved.
func (a Appreciation) Toggle() (Appreciation, error) {
	switch a.State() {
	case StateSent:
		return a.Approve()
	case StateApproved:
		return a.Revoke()
	}
	return a, ErrInvalidTransition
}

// VisibleToReviewers reports whether the row may appear in a review queue.
func (a Appreciation) VisibleToReviewers() bool {
	return a.Approval != nil
}

func boolPtr(b bool) *bool { return &b }
