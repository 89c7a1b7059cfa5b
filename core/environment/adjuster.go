// Package environment estimates how elevation and wind along a route shift
// the expected range of a vehicle.
package environment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/evplanner/core/model"
)

const (
	// elevationPctPerKm is the range penalty per 1000 m of net climb.
	elevationPctPerKm = 2.0
	// windPctPerMph is the range penalty per mph of net headwind.
	windPctPerMph = 0.5

	gainWarnMeters   = 500.0
	headwindWarnMph  = 10.0
	tailwindNoteMph  = 10.0
	crosswindNoteMph = 15.0
	flatRouteMeters  = 100.0
)

// Analyze walks the elevation profile and averages the wind samples. The wind
// is projected on a fixed north-bound bearing rather than the route heading.
func Analyze(elevation []model.ElevationSample, wind []model.WindSample) model.ElevationWindImpact {
	var out model.ElevationWindImpact
	for i := 1; i < len(elevation); i++ {
		d := elevation[i].ElevationMeters - elevation[i-1].ElevationMeters
		if d > 0 {
			out.ElevationGain += d
		} else {
			out.ElevationLoss += -d
		}
	}
	out.NetChange = out.ElevationGain - out.ElevationLoss

	if len(wind) > 0 {
		speeds := make([]float64, len(wind))
		dirs := make([]float64, len(wind))
		for i, w := range wind {
			speeds[i] = w.SpeedMph
			dirs[i] = w.DirectionDeg
		}
		avgSpeed := stat.Mean(speeds, nil)
		avgDir := stat.Mean(dirs, nil)
		out.HeadwindMph = math.Max(0, avgSpeed*math.Cos((avgDir-180)*math.Pi/180))
		out.TailwindMph = math.Max(0, avgSpeed*math.Cos(avgDir*math.Pi/180))
		out.CrosswindMph = math.Abs(avgSpeed * math.Sin(avgDir*math.Pi/180))
	}

	out.ElevationDeltaPct = out.NetChange / 1000 * elevationPctPerKm
	out.WindDeltaPct = (out.HeadwindMph - out.TailwindMph) * windPctPerMph
	out.CombinedDeltaPct = out.ElevationDeltaPct + out.WindDeltaPct
	out.Recommendations = recommendations(out, len(elevation) > 0)
	return out
}

func recommendations(imp model.ElevationWindImpact, haveElevation bool) []string {
	recs := []string{}
	if imp.ElevationGain > gainWarnMeters {
		recs = append(recs, fmt.Sprintf("Significant climbing ahead (%.0f m gain): expect reduced range", imp.ElevationGain))
	}
	if imp.HeadwindMph > headwindWarnMph {
		recs = append(recs, fmt.Sprintf("Strong headwind (%.0f mph): consider charging to a higher level", imp.HeadwindMph))
	}
	if imp.TailwindMph > tailwindNoteMph {
		recs = append(recs, fmt.Sprintf("Tailwind (%.0f mph) will improve efficiency", imp.TailwindMph))
	}
	if imp.CrosswindMph > crosswindNoteMph {
		recs = append(recs, fmt.Sprintf("Crosswind (%.0f mph): expect reduced stability at speed", imp.CrosswindMph))
	}
	if haveElevation && math.Abs(imp.NetChange) < flatRouteMeters {
		recs = append(recs, "Mostly flat route: minimal elevation impact on range")
	}
	return recs
}

// AdjustedRangeMiles applies the combined delta to a rated range. A positive
// delta shortens the range; the result is never negative.
func AdjustedRangeMiles(ratedRangeMiles float64, imp model.ElevationWindImpact) float64 {
	return math.Max(0, ratedRangeMiles*(1-imp.CombinedDeltaPct/100))
}
