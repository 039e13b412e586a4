// Package demand defines the demand token a subscriber hands to its
// subscription to signal how many notifications it is willing to receive.
package demand

import (
	"fmt"
	"math"
)

// Demand is either unlimited or a bounded, non-negative count.
// The zero value is Max(0).
type Demand struct {
	n         int
	unlimited bool
}

// Unlimited is demand with no upper bound.
var Unlimited = Demand{unlimited: true}

// None is demand for zero notifications.
var None = Demand{}

// Max returns a bounded demand for n notifications. It panics if n is negative.
func Max(n int) Demand {
	if n < 0 {
		panic(fmt.Sprintf("demand: negative demand %d", n))
	}
	return Demand{n: n}
}

// IsUnlimited reports whether d has no upper bound.
func (d Demand) IsUnlimited() bool {
	return d.unlimited
}

// Max returns the bounded count and true, or 0 and false for unlimited demand.
func (d Demand) Max() (int, bool) {
	if d.unlimited {
		return 0, false
	}
	return d.n, true
}

// Add returns the sum of d and other. The sum saturates at Unlimited:
// adding anything to Unlimited, or overflowing int, yields Unlimited.
func (d Demand) Add(other Demand) Demand {
	if d.unlimited || other.unlimited {
		return Unlimited
	}
	if d.n > math.MaxInt-other.n {
		return Unlimited
	}
	return Demand{n: d.n + other.n}
}

// String returns "unlimited" or "max(n)".
func (d Demand) String() string {
	if d.unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("max(%d)", d.n)
}
