// Package e2e runs the planner against real brokers and time series stores
// started with testcontainers.
package e2e

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient is a small helper around the official InfluxDB v2 client
// used to inspect what the planner wrote.
type InfluxClient struct {
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient creates a client for a running server.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{
		bucket: bucket,
		client: c,
		query:  c.QueryAPI(org),
	}
}

// Ready reports whether the server answers its health check.
func (c *InfluxClient) Ready(ctx context.Context) bool {
	h, err := c.client.Health(ctx)
	return err == nil && h.Status == "pass"
}

// CountPoints returns how many field values of measurement were written in
// the last window, optionally restricted to one tag value.
func (c *InfluxClient) CountPoints(ctx context.Context, measurement, tag, value string, window time.Duration) (int, error) {
	flux := fmt.Sprintf(`from(bucket:%q) |> range(start:-%ds) |> filter(fn:(r) => r._measurement == %q)`,
		c.bucket, int(window.Seconds()), measurement)
	if tag != "" {
		flux += fmt.Sprintf(` |> filter(fn:(r) => r[%q] == %q)`, tag, value)
	}
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	n := 0
	for res.Next() {
		n++
	}
	return n, res.Err()
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }
