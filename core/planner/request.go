package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/evplanner/core/model"
)

// ErrInvalidRequest wraps every validation failure of a TripRequest.
var ErrInvalidRequest = errors.New("invalid trip request")

// TripRequest is the full input of a planning run.
type TripRequest struct {
	EV                     model.EVModel                    `json:"ev" yaml:"ev"`
	Routes                 []model.RouteCandidate           `json:"routes" yaml:"routes" validate:"min=1,dive"`
	Stations               []model.ChargingStationCandidate `json:"stations" yaml:"stations" validate:"dive"`
	StartingBatteryPercent float64                          `json:"startingBatteryPercent" yaml:"starting_battery_percent" validate:"gte=0,lte=100"`
	Strategy               model.Strategy                   `json:"strategy" yaml:"strategy"`
	// Origin and Destination enable the traffic lookup when both are set.
	Origin      *model.LatLng           `json:"origin,omitempty" yaml:"origin"`
	Destination *model.LatLng           `json:"destination,omitempty" yaml:"destination"`
	Elevation   []model.ElevationSample `json:"elevation,omitempty" yaml:"elevation"`
	Wind        []model.WindSample      `json:"wind,omitempty" yaml:"wind"`
}

// Validate checks field ranges and route id uniqueness.
func (r TripRequest) Validate() error {
	if err := model.ValidateStruct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	seen := make(map[string]struct{}, len(r.Routes))
	for _, rt := range r.Routes {
		if _, dup := seen[rt.ID]; dup {
			return fmt.Errorf("%w: duplicate route id %q", ErrInvalidRequest, rt.ID)
		}
		seen[rt.ID] = struct{}{}
	}
	return nil
}

// HasEndpoints reports whether a traffic lookup is possible.
func (r TripRequest) HasEndpoints() bool {
	return r.Origin != nil && r.Destination != nil
}

// LoadRequest reads a TripRequest from a YAML or JSON file.
func LoadRequest(path string) (TripRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return TripRequest{}, err
	}
	defer func() { _ = f.Close() }()
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return DecodeRequest(f, format)
}

// DecodeRequest parses a TripRequest from r in the given format.
func DecodeRequest(r io.Reader, format string) (TripRequest, error) {
	var req TripRequest
	switch format {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&req); err != nil {
			return req, fmt.Errorf("decode yaml: %w", err)
		}
	case "json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return req, fmt.Errorf("decode json: %w", err)
		}
	default:
		return req, fmt.Errorf("unsupported format %q", format)
	}
	return req, nil
}
