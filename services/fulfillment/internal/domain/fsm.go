package domain

import (
	"fmt"
	"strings"
)

type TransitionPolicy string

const (
	// PolicyStrict allows only the next step of the forward sequence, so
	// assign followed directly by COMPLETE needs PolicyLegacy.
	PolicyStrict TransitionPolicy = "strict"
	// PolicyLegacy accepts any known delivery status from any state.
	PolicyLegacy TransitionPolicy = "legacy"
)

func ParseTransitionPolicy(s string) (TransitionPolicy, error) {
	switch p := TransitionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyStrict, nil
	case PolicyStrict, PolicyLegacy:
		return p, nil
	}
	return "", fmt.Errorf("unknown delivery transition policy %q", s)
}

// CheckTransition rejects moves the policy does not allow.
func CheckTransition(policy TransitionPolicy, from, to DeliveryStatus) error {
	if to.rank() < 0 {
		return fmt.Errorf("%w: unknown delivery status %q", ErrValidation, to)
	}
	if policy == PolicyLegacy {
		return nil
	}
	if from.rank() < 0 || to.rank() != from.rank()+1 {
		return fmt.Errorf("%w: delivery cannot move from %s to %s", ErrInvalidState, from, to)
	}
	return nil
}

// Effect is what a delivery status implies for the rider log and the order.
type Effect struct {
	RiderActivity RiderActivityStatus
	Order         OrderStatus
}

var propagation = map[DeliveryStatus]Effect{
	DeliveryPending:        {RiderActivity: ActivityAssigned, Order: OrderOnDelivery},
	DeliveryForPickUp:      {RiderActivity: ActivityOutForDelivery, Order: OrderOnDelivery},
	DeliveryOutForDelivery: {RiderActivity: ActivityOutForDelivery, Order: OrderOnDelivery},
	DeliveryComplete:       {RiderActivity: ActivityDelivered, Order: OrderComplete},
}

func Propagate(s DeliveryStatus) (Effect, error) {
	e, ok := propagation[s]
	if !ok {
		return Effect{}, fmt.Errorf("%w: unknown delivery status %q", ErrValidation, s)
	}
	return e, nil
}
