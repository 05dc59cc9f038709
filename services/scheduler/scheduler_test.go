package schedulersvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logsvc "github.com/trezcool/hrms/services/logger"
)

func TestSchedulerRunsJobs(t *testing.T) {
	s := New(time.UTC, logsvc.NewDiscard(), time.Second)

	ran := make(chan struct{}, 1)
	require.NoError(t, s.Add("@every 1s", "tick", func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return errors.New("ignored")
	}))
	s.Start()
	defer s.Stop(context.Background())

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	s := New(time.UTC, logsvc.NewDiscard(), time.Second)
	assert.Error(t, s.Add("not a schedule", "bad", func(ctx context.Context) error { return nil }))
}

func TestFormatKV(t *testing.T) {
	assert.Equal(t, "run entry=1 next=2", formatKV("run", []interface{}{"entry", 1, "next", 2}))
	assert.Equal(t, "run", formatKV("run", []interface{}{"dangling"}))
}
