package system_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miminchandrank/Csv-data-analyst/src/core/system"
)

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]system.Checker
		wantStatus string
		want       map[string]system.ComponentStatus
	}{
		{
			name:       "no components",
			checks:     nil,
			wantStatus: system.Healthy,
			want:       map[string]system.ComponentStatus{},
		},
		{
			name: "all up",
			checks: map[string]system.Checker{
				"ollama":       func(context.Context) error { return nil },
				"vector_store": func(context.Context) error { return nil },
			},
			wantStatus: system.Healthy,
			want: map[string]system.ComponentStatus{
				"ollama":       system.StatusUp,
				"vector_store": system.StatusUp,
			},
		},
		{
			name: "one down",
			checks: map[string]system.Checker{
				"ollama":   func(context.Context) error { return errors.New("connection refused") },
				"database": func(context.Context) error { return nil },
			},
			wantStatus: system.Unhealthy,
			want: map[string]system.ComponentStatus{
				"ollama":   system.StatusDown,
				"database": system.StatusUp,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := system.NewService()
			for name, check := range tt.checks {
				svc.Register(name, check)
			}

			status, err := svc.CheckHealth(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, tt.want, status.Components)
		})
	}
}

func TestCheckHasDeadline(t *testing.T) {
	svc := system.NewService()
	svc.Register("slow", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		if !ok {
			return errors.New("no deadline")
		}
		return nil
	})

	status, err := svc.CheckHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, system.StatusUp, status.Components["slow"])
}
