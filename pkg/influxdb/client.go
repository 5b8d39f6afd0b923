package influxdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

var (
	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrUnhealthy indicates the server answered the ping but reported itself unhealthy.
	ErrUnhealthy = errors.New("influxdb: server not healthy")
)

const defaultPingTimeout = 5 * time.Second

// Record is one row of a single-value Flux table.
type Record struct {
	Time  time.Time
	Value float64
}

// Client wraps the InfluxDB v2 client for read-side Flux queries.
type Client struct {
	client influxdb2.Client
	query  api.QueryAPI
	org    string
}

// Connect creates the client with token auth and verifies it with a ping.
func Connect(ctx context.Context, url, token, org string) (*Client, error) {
	client := influxdb2.NewClientWithOptions(url, token, influxdb2.DefaultOptions().SetHTTPRequestTimeout(30))

	c := &Client{client: client, query: client.QueryAPI(org), org: org}
	if err := c.Health(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return c, nil
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	healthy, err := c.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("influxdb ping: %w", err)
	}
	if !healthy {
		return ErrUnhealthy
	}
	return nil
}

// Query runs a Flux query and returns (_time, _value) pairs across all tables.
func (c *Client) Query(ctx context.Context, flux string) ([]Record, error) {
	result, err := c.query.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("influxdb query: %w", err)
	}
	defer result.Close()

	var out []Record
	for result.Next() {
		rec := result.Record()
		v, ok := toFloat(rec.Value())
		if !ok {
			continue
		}
		out = append(out, Record{Time: rec.Time(), Value: v})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("influxdb result: %w", err)
	}
	return out, nil
}

// Close releases the underlying HTTP resources.
func (c *Client) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
