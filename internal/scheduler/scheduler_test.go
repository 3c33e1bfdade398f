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

type fakeReminder struct {
	calls atomic.Int32
	err   error
}

func (f *fakeReminder) SendOverdueReminders(context.Context) (int, int, error) {
	f.calls.Add(1)

	return 2, 1, f.err
}

func TestAddOverdueRemindersInvalidSchedule(t *testing.T) {
	s := New(time.UTC)

	err := s.AddOverdueReminders("not a schedule", &fakeReminder{})
	assert.Error(t, err)
}

func TestAddOverdueRemindersAcceptsSeconds(t *testing.T) {
	s := New(nil)

	require.NoError(t, s.AddOverdueReminders("0 0 9 * * *", &fakeReminder{}))
	require.NoError(t, s.AddOverdueReminders("@daily", &fakeReminder{}))
}

func TestOverdueRemindersRun(t *testing.T) {
	s := New(time.UTC)
	reminder := &fakeReminder{}

	require.NoError(t, s.AddOverdueReminders("@every 1s", reminder))
	s.Start()
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool {
		return reminder.calls.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)
}

func TestRunOverdueRemindersError(t *testing.T) {
	s := New(time.UTC)
	reminder := &fakeReminder{err: errors.New("db down")}

	assert.NotPanics(t, func() {
		s.runOverdueReminders(reminder)
	})
	assert.Equal(t, int32(1), reminder.calls.Load())
}
