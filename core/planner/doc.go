// Package planner composes range prediction, environmental adjustment,
// charge-stop optimization, trip metrics, traffic and the route
// recommendation into a single TripPlan.
package planner
