// Package system reports the health of the components the service depends on.
package system

import (
	"context"
	"sort"
	"time"

	"github.com/miminchandrank/Csv-data-analyst/src/log"
)

type ComponentStatus string

const (
	StatusUp   ComponentStatus = "up"
	StatusDown ComponentStatus = "down"

	Healthy   = "healthy"
	Unhealthy = "unhealthy"
)

const defaultCheckTimeout = 3 * time.Second

// Checker returns nil when the component is usable
type Checker func(ctx context.Context) error

type HealthStatus struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
}

type Service struct {
	checks  map[string]Checker
	timeout time.Duration
}

func NewService() *Service {
	return &Service{
		checks:  make(map[string]Checker),
		timeout: defaultCheckTimeout,
	}
}

// Register adds a component; a later registration under the same name wins
func (s *Service) Register(name string, check Checker) {
	s.checks[name] = check
}

// CheckHealth runs every check; the system is unhealthy when any component is down
func (s *Service) CheckHealth(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{
		Status:     Healthy,
		Components: make(map[string]ComponentStatus, len(s.checks)),
	}

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.checks[name](checkCtx)
		cancel()

		if err != nil {
			log.Error(err, "health check failed", "component", name)
			status.Components[name] = StatusDown
			status.Status = Unhealthy
			continue
		}
		status.Components[name] = StatusUp
	}

	return status, nil
}
