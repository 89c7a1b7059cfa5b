package recommend

import (
	"fmt"
	"strings"

	"github.com/kilianp07/evplanner/core/model"
)

// BuildPrompt renders the request as instructions for the inference service.
func BuildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are an EV road-trip planning assistant. Pick the best route for the vehicle below.\n\n")
	fmt.Fprintf(&b, "Vehicle: %s\n", vehicleName(req.EV))
	fmt.Fprintf(&b, "- Battery capacity: %.1f kWh\n", req.EV.BatteryCapacityKWh)
	fmt.Fprintf(&b, "- Efficiency: %.3f kWh/mi\n", req.EV.EfficiencyKWhPerMile)
	fmt.Fprintf(&b, "- Rated range: %.0f mi\n", req.EV.RatedRangeMiles)
	fmt.Fprintf(&b, "- Starting charge: %.0f%%\n\n", req.StartingBatteryPercent)
	b.WriteString("Routes:\n")
	for _, r := range req.Routes {
		fmt.Fprintf(&b, "- id=%q distance=%.1f mi duration=%.0f min efficiency=%.3f kWh/mi cost=$%.2f",
			r.ID, r.DistanceMiles, r.DurationMin, r.EnergyEfficiency, r.EstimatedCost)
		if plan, ok := req.ChargingPlans[r.ID]; ok && len(plan.Stops) > 0 {
			fmt.Fprintf(&b, " charging_stops=%d charging_min=%.0f", len(plan.Stops), plan.TotalChargingTimeMin)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nRespond with a single JSON object and nothing else, using exactly these fields:\n")
	b.WriteString(`{"summary": string, "recommendedRouteId": string (one of the ids above), "confidence": number 0-100, ` +
		`"reasons": [string], "chargingPlan": [{"stop": string, "minutes": number}], "risks": [string]}`)
	b.WriteString("\n")
	return b.String()
}

func vehicleName(ev model.EVModel) string {
	if ev.Name == "" {
		return "electric vehicle"
	}
	return ev.Name
}
