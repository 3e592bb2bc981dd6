package statemachine

import (
	"fmt"

	"homechef-api/apperrors"
	"homechef-api/models"
)

// Actor is the capacity in which a principal touches an order.
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorChef     Actor = "chef"
	ActorAdmin    Actor = "admin"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

// validTransitions is the authoritative state machine definition.
// Once accepted, an order can no longer be cancelled through this engine;
// the only way forward is delivery.
var validTransitions = []Transition{
	{From: models.OrderPending, To: models.OrderAccepted, Actor: ActorChef},
	{From: models.OrderPending, To: models.OrderAccepted, Actor: ActorAdmin},
	{From: models.OrderPending, To: models.OrderCancelled, Actor: ActorChef},
	{From: models.OrderPending, To: models.OrderCancelled, Actor: ActorCustomer},
	{From: models.OrderPending, To: models.OrderCancelled, Actor: ActorAdmin},
	{From: models.OrderAccepted, To: models.OrderDelivered, Actor: ActorChef},
	{From: models.OrderAccepted, To: models.OrderDelivered, Actor: ActorAdmin},
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// IsTerminal reports whether no transition leaves the given state.
func IsTerminal(status models.OrderStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

// CanTransition checks if a given actor can move an order from one state
// to another. The returned error names the attempted edge and wraps
// apperrors.ErrInvalidTransition.
func CanTransition(from, to models.OrderStatus, actor Actor) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s is not allowed for actor %q (valid from %s: %s)",
		apperrors.ErrInvalidTransition, from, to, actor, from, describeValidFrom(from))
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
