// Package export writes computed trip plans for offline use.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"

	"github.com/kilianp07/evplanner/core/model"
	"github.com/kilianp07/evplanner/core/planner"
)

// StopRow is one charging stop of one route in the CSV export.
type StopRow struct {
	PlanID   string `csv:"plan_id"`
	RouteID  string `csv:"route_id"`
	Strategy string `csv:"strategy"`
	model.ChargeStop
}

// Rows flattens the plan into one row per charging stop.
func Rows(plan planner.TripPlan) []StopRow {
	var rows []StopRow
	for _, rp := range plan.Routes {
		for _, s := range rp.Charging.Stops {
			rows = append(rows, StopRow{
				PlanID:     plan.PlanID,
				RouteID:    rp.Route.ID,
				Strategy:   rp.Charging.Strategy.String(),
				ChargeStop: s,
			})
		}
	}
	return rows
}

// WriteJSON writes the full plan to w as indented JSON.
func WriteJSON(w io.Writer, plan planner.TripPlan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

// WriteCSV writes every charging stop of the plan to w. A plan without stops
// yields the header only.
func WriteCSV(w io.Writer, plan planner.TripPlan) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	rows := Rows(plan)
	var err error
	if len(rows) == 0 {
		err = enc.EncodeHeader(StopRow{})
	} else {
		err = enc.Encode(rows)
	}
	if err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV decodes rows previously written by WriteCSV.
func ReadCSV(r io.Reader) ([]StopRow, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	var rows []StopRow
	if err := dec.Decode(&rows); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	return rows, nil
}

// Write dispatches on format ("json" or "csv").
func Write(w io.Writer, plan planner.TripPlan, format string) error {
	switch format {
	case "json", "":
		return WriteJSON(w, plan)
	case "csv":
		return WriteCSV(w, plan)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
