package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	fail  atomic.Bool
	calls atomic.Int32
}

func (p *fakePinger) Ping(ctx context.Context) error {
	p.calls.Add(1)
	if p.fail.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func TestHealthScheduler_Check(t *testing.T) {
	pinger := &fakePinger{}
	var results []bool
	s := NewHealthScheduler("", pinger, func(up bool) { results = append(results, up) })

	status, checkedAt := s.Status()
	assert.Equal(t, StatusUnknown, status)
	assert.True(t, checkedAt.IsZero())

	s.Check()
	status, checkedAt = s.Status()
	assert.Equal(t, StatusUp, status)
	assert.False(t, checkedAt.IsZero())

	pinger.fail.Store(true)
	s.Check()
	status, _ = s.Status()
	assert.Equal(t, StatusDown, status)

	assert.Equal(t, []bool{true, false}, results)
}

func TestHealthScheduler_StartRunsJob(t *testing.T) {
	pinger := &fakePinger{}
	s := NewHealthScheduler("@every 1s", pinger, nil)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return pinger.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestHealthScheduler_InvalidSpec(t *testing.T) {
	s := NewHealthScheduler("every now and then", &fakePinger{}, nil)
	assert.Error(t, s.Start())
}
