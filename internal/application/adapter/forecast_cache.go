// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"
)

// ForecastCache stores computed month forecasts.
// Invalidate drops every cached entry at once.
type ForecastCache interface {
	// Get returns the cached value for key. The boolean is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for the given time to live.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate drops every cached forecast.
	Invalidate(ctx context.Context) error
}
