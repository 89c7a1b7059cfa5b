// Package rangemodel converts a trip distance into battery consumption and
// predicts whether the destination is reachable on the current charge.
package rangemodel
