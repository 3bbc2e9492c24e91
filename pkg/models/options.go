package models

import (
	"time"

	"github.com/rzzdr/payoff-engine/pkg/utils/errors"
)

// Defines the type of option
type OptionType int

const (
	OptionTypeCall OptionType = iota
	OptionTypePut
)

// String returns the wire representation of the option type.
func (t OptionType) String() string {
	if t == OptionTypePut {
		return "put"
	}
	return "call"
}

// ParseOptionType converts the wire representation ("call" or "put") to an
// OptionType.
func ParseOptionType(s string) (OptionType, error) {
	switch s {
	case "call":
		return OptionTypeCall, nil
	case "put":
		return OptionTypePut, nil
	default:
		return OptionTypeCall, errors.InvalidParameterf("option type must be 'call' or 'put', got %q", s)
	}
}

// MaxLegs is the largest number of legs a strategy may hold.
const MaxLegs = 4

// Leg is one option position within a strategy: contract type, strike,
// premium paid or received per unit, and a signed quantity (positive = long,
// negative = short). Legs are immutable once constructed.
type Leg struct {
	Type     OptionType
	Strike   float64
	Premium  float64
	Quantity int
}

// NewLeg constructs a validated Leg. A zero quantity is rejected: a disabled
// leg should be omitted from the strategy rather than passed in with
// quantity zero.
func NewLeg(optionType OptionType, strike, premium float64, quantity int) (Leg, error) {
	if optionType != OptionTypeCall && optionType != OptionTypePut {
		return Leg{}, errors.InvalidParameter("invalid option type")
	}
	if strike <= 0 {
		return Leg{}, errors.InvalidParameterf("strike must be positive, got %f", strike)
	}
	if quantity == 0 {
		return Leg{}, errors.InvalidParameter("leg quantity must be nonzero; omit disabled legs")
	}
	return Leg{
		Type:     optionType,
		Strike:   strike,
		Premium:  premium,
		Quantity: quantity,
	}, nil
}

// Strategy is a named, ordered collection of up to MaxLegs legs. The order
// carries no pricing meaning but is preserved for deterministic summation
// and display.
type Strategy struct {
	ID      string
	Name    string
	Legs    []Leg
	Created time.Time
	Updated time.Time
}

// ValidateLegs checks a leg list against the per-strategy constraints. An
// empty list is valid and prices to zero everywhere.
func ValidateLegs(legs []Leg) error {
	if len(legs) > MaxLegs {
		return errors.InvalidParameterf("a strategy holds at most %d legs, got %d", MaxLegs, len(legs))
	}
	for i, leg := range legs {
		if leg.Type != OptionTypeCall && leg.Type != OptionTypePut {
			return errors.InvalidParameterf("leg %d: invalid option type", i)
		}
		if leg.Strike <= 0 {
			return errors.InvalidParameterf("leg %d: strike must be positive", i)
		}
		if leg.Quantity == 0 {
			return errors.InvalidParameterf("leg %d: quantity must be nonzero", i)
		}
	}
	return nil
}
