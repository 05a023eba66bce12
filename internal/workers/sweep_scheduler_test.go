package workers

import (
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantgate/tenantgate/internal/tasks"
)

type recordingEnqueuer struct {
	types []string
	err   error
}

func (r *recordingEnqueuer) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.types = append(r.types, task.Type())
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}

func TestNewSweepScheduler(t *testing.T) {
	c, err := NewSweepScheduler("*/15 * * * *", &recordingEnqueuer{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	_, err = NewSweepScheduler("every now and then", &recordingEnqueuer{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestEnqueueSweep(t *testing.T) {
	client := &recordingEnqueuer{}
	enqueueSweep(client, zerolog.Nop())
	assert.Equal(t, []string{tasks.TypeSweepSessions}, client.types)

	// duplicates and failures are logged, not raised
	enqueueSweep(&recordingEnqueuer{err: asynq.ErrDuplicateTask}, zerolog.Nop())
	enqueueSweep(&recordingEnqueuer{err: errors.New("redis down")}, zerolog.Nop())
}

func TestNextSweep(t *testing.T) {
	from := time.Date(2024, 1, 1, 10, 7, 0, 0, time.UTC)

	next := NextSweep("*/15 * * * *", from)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC), *next)

	assert.Nil(t, NextSweep("", from))
	assert.Nil(t, NextSweep("bogus", from))
}
