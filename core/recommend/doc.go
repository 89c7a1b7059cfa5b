// Package recommend picks one route among candidates and explains why. An
// optional Advisor (an external inference service) is asked first; any
// failure on that path falls back to a deterministic ranking, so Recommend
// always returns a usable Recommendation and never an error.
package recommend
