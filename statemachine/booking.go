package statemachine

import (
	"fmt"
	"strings"

	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
)

// Transition defines a valid booking status change and who can perform it.
type Transition struct {
	From  string
	To    string
	Actor string // models.RoleCustomer or models.RoleAdmin
}

var bookingTransitions = []Transition{
	{From: models.BookingRequested, To: models.BookingConfirmed, Actor: models.RoleAdmin},
	{From: models.BookingRequested, To: models.BookingCancelled, Actor: models.RoleAdmin},
	{From: models.BookingRequested, To: models.BookingCancelled, Actor: models.RoleCustomer},
	{From: models.BookingConfirmed, To: models.BookingCompleted, Actor: models.RoleAdmin},
	{From: models.BookingConfirmed, To: models.BookingCancelled, Actor: models.RoleAdmin},
	{From: models.BookingConfirmed, To: models.BookingCancelled, Actor: models.RoleCustomer},
}

type transitionKey struct {
	From, To, Actor string
}

var bookingTransitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool, len(bookingTransitions))
	for _, t := range bookingTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// BookingTransitionsFrom returns the distinct statuses reachable from status.
func BookingTransitionsFrom(status string) []string {
	var next []string
	seen := map[string]bool{}
	for _, t := range bookingTransitions {
		if t.From == status && !seen[t.To] {
			next = append(next, t.To)
			seen[t.To] = true
		}
	}
	return next
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status string) bool {
	return len(BookingTransitionsFrom(status)) == 0
}

// CanTransitionBooking returns a validation error when actor may not move a
// booking from one status to another.
func CanTransitionBooking(from, to, actor string) error {
	if bookingTransitionMap[transitionKey{from, to, actor}] {
		return nil
	}

	valid := "none (terminal state)"
	if !IsTerminal(from) {
		valid = strings.Join(BookingTransitionsFrom(from), ", ")
	}
	return utils.NewValidationError("status",
		fmt.Sprintf("cannot change booking from %s to %s as %s; valid next statuses: %s", from, to, actor, valid))
}
