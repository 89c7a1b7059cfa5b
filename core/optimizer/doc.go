// Package optimizer builds a charging-stop plan for a trip using greedy,
// threshold-driven rules. It favours a feasible, explainable plan over a
// globally optimal one: candidates are visited in route order and a stop is
// scheduled whenever reaching the next station would drop the battery below
// the stop floor.
package optimizer
