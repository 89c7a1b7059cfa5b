package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kilianp07/evplanner/core/model"
)

// DefaultAIConfidence is used when the reply carries no usable confidence.
const DefaultAIConfidence = 75

var (
	// ErrNoJSON is returned when the reply contains no balanced JSON object.
	ErrNoJSON = errors.New("no json object in reply")
	// ErrMissingRoute is returned when the reply names no route.
	ErrMissingRoute = errors.New("reply has no recommendedRouteId")
)

// Reply is the structured part of an inference answer after coercion.
type Reply struct {
	Summary            string
	RecommendedRouteID string
	Confidence         int
	Reasons            []string
	ChargingPlan       []model.ChargingPlanEntry
	Risks              []string
}

// ParseReply extracts the first balanced JSON object from free text and
// coerces its fields. Odd types are converted where a sensible reading
// exists and replaced by defaults otherwise.
func ParseReply(text string) (Reply, error) {
	raw, ok := firstObject(text)
	if !ok {
		return Reply{}, ErrNoJSON
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Reply{}, fmt.Errorf("decode reply: %w", err)
	}
	r := Reply{
		Summary:            asString(fields["summary"]),
		RecommendedRouteID: strings.TrimSpace(asString(fields["recommendedRouteId"])),
		Confidence:         asConfidence(fields["confidence"]),
		Reasons:            asStrings(fields["reasons"]),
		ChargingPlan:       asChargingPlan(fields["chargingPlan"]),
		Risks:              asStrings(fields["risks"]),
	}
	if r.RecommendedRouteID == "" {
		return Reply{}, ErrMissingRoute
	}
	return r, nil
}

// firstObject scans for the first '{' and returns the text up to its matching
// '}', ignoring braces inside JSON strings.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func asStrings(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case string:
		if t != "" {
			out = append(out, t)
		}
	case []any:
		for _, e := range t {
			if s := asString(e); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(t), "%"), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// asConfidence accepts 0-100 numbers, numeric strings and 0-1 fractions.
func asConfidence(v any) int {
	f, ok := asNumber(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return DefaultAIConfidence
	}
	if f > 0 && f < 1 {
		f *= 100
	}
	return int(math.Round(math.Max(0, math.Min(100, f))))
}

func asChargingPlan(v any) []model.ChargingPlanEntry {
	out := []model.ChargingPlanEntry{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for i, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			continue
		}
		e := model.ChargingPlanEntry{Stop: asString(obj["stop"])}
		if e.Stop == "" {
			e.Stop = fmt.Sprintf("Stop %d", i+1)
		}
		if m, ok := asNumber(obj["minutes"]); ok && m > 0 {
			e.Minutes = int(math.Round(m))
		}
		out = append(out, e)
	}
	return out
}
