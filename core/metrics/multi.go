package metrics

// MultiSink fans events out to several sinks. Sinks that do not implement an
// optional recorder are skipped for that event family.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPlan forwards to all sinks, returning the first error.
func (m *MultiSink) RecordPlan(ev PlanEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordPlan(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordRecommendation forwards to sinks implementing RecommendationRecorder.
func (m *MultiSink) RecordRecommendation(ev RecommendationEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RecommendationRecorder); ok {
			if err := rec.RecordRecommendation(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordTraffic forwards to sinks implementing TrafficRecorder.
func (m *MultiSink) RecordTraffic(ev TrafficEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(TrafficRecorder); ok {
			if err := rec.RecordTraffic(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
