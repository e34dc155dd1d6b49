//go:build unit

package jobqueue_test

import (
	"testing"
	"time"

	"garage-orchestrator/internal/infra/jobqueue"

	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{-1, 10 * time.Second},
		{0, 10 * time.Second},
		{1, 20 * time.Second},
		{3, 80 * time.Second},
		{8, 2560 * time.Second},
		{9, time.Hour},
		{40, time.Hour},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, jobqueue.Backoff(tt.attempt), "attempt %d", tt.attempt)
	}
}
