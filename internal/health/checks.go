package health

import (
	"context"
	"errors"
)

// ErrNoRoutes is reported by RouteTableCheck while no route table is
// loaded.
var ErrNoRoutes = errors.New("route table is empty")

// HealthCheck defines the interface for health checks.
type HealthCheck interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthCheckFunc is a function type that implements HealthCheck.
type HealthCheckFunc struct {
	name      string
	checkFunc func(ctx context.Context) error
}

// Name returns the name of the health check.
func (f *HealthCheckFunc) Name() string {
	return f.name
}

// Check performs the health check.
func (f *HealthCheckFunc) Check(ctx context.Context) error {
	return f.checkFunc(ctx)
}

// NewHealthCheckFunc creates a new health check function.
func NewHealthCheckFunc(name string, check func(ctx context.Context) error) *HealthCheckFunc {
	return &HealthCheckFunc{
		name:      name,
		checkFunc: check,
	}
}

// Pinger is a dependency that can be pinged.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck checks a dependency by pinging it.
func PingCheck(name string, p Pinger) *HealthCheckFunc {
	return NewHealthCheckFunc(name, p.Ping)
}

// RouteTableCheck fails while count reports no routes.
func RouteTableCheck(count func() int) *HealthCheckFunc {
	return NewHealthCheckFunc("routes", func(context.Context) error {
		if count() == 0 {
			return ErrNoRoutes
		}
		return nil
	})
}
