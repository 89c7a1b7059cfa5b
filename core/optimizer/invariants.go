package optimizer

import (
	"errors"
	"fmt"

	"github.com/kilianp07/evplanner/core/model"
)

// ErrInvariant marks a plan that violates a structural guarantee.
var ErrInvariant = errors.New("charging plan invariant violated")

func checkInvariants(res model.SOCOptimizationResult, maxStops int) error {
	if len(res.Stops) > maxStops {
		return fmt.Errorf("%w: %d stops exceeds limit %d", ErrInvariant, len(res.Stops), maxStops)
	}
	for i, s := range res.Stops {
		if s.StopNumber != i+1 {
			return fmt.Errorf("%w: stop %d numbered %d", ErrInvariant, i+1, s.StopNumber)
		}
		if s.TargetSOC <= s.ArrivalSOC || s.TargetSOC > 100 {
			return fmt.Errorf("%w: stop %d target %.2f outside (%.2f,100]", ErrInvariant, s.StopNumber, s.TargetSOC, s.ArrivalSOC)
		}
		if s.DwellTimeMinutes < 0 {
			return fmt.Errorf("%w: stop %d negative dwell %d", ErrInvariant, s.StopNumber, s.DwellTimeMinutes)
		}
		if s.CostUSD < 0 {
			return fmt.Errorf("%w: stop %d negative cost", ErrInvariant, s.StopNumber)
		}
		if i > 0 && s.TargetSOC < res.Stops[i-1].TargetSOC {
			return fmt.Errorf("%w: stop %d charges below previous stop", ErrInvariant, s.StopNumber)
		}
	}
	return nil
}
