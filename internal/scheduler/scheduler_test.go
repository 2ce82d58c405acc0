package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleRuns(t *testing.T) {
	s := New()
	defer s.Stop()

	done := make(chan struct{})
	assert.True(t, s.Schedule("dev/ls-1", 10*time.Millisecond, func() { close(done) }))
	assert.True(t, s.Pending("dev/ls-1"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
	assert.Eventually(t, func() bool { return !s.Pending("dev/ls-1") }, time.Second, 5*time.Millisecond)
}

func TestScheduleReplacesPendingTask(t *testing.T) {
	s := New()
	defer s.Stop()

	var first, second int32
	s.Schedule("k", 20*time.Millisecond, func() { atomic.AddInt32(&first, 1) })
	s.Schedule("k", 40*time.Millisecond, func() { atomic.AddInt32(&second, 1) })
	assert.Equal(t, 1, s.Len())

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&second) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&first))
}

func TestCancel(t *testing.T) {
	s := New()
	defer s.Stop()

	var ran int32
	s.Schedule("k", 20*time.Millisecond, func() { atomic.AddInt32(&ran, 1) })
	assert.True(t, s.Cancel("k"))
	assert.False(t, s.Cancel("k"))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&ran))
}

func TestKeysAreIndependent(t *testing.T) {
	s := New()
	defer s.Stop()

	var a, b int32
	s.Schedule(Key("dev", "ls-1"), 10*time.Millisecond, func() { atomic.AddInt32(&a, 1) })
	s.Schedule(Key("dev", "ls-2"), 10*time.Millisecond, func() { atomic.AddInt32(&b, 1) })

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&a) == 1 && atomic.LoadInt32(&b) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestStopRejectsNewTasks(t *testing.T) {
	s := New()
	var ran int32
	s.Schedule("k", 10*time.Millisecond, func() { atomic.AddInt32(&ran, 1) })
	s.Stop()

	assert.False(t, s.Schedule("k", time.Millisecond, func() { atomic.AddInt32(&ran, 1) }))
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&ran))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "dev-1/ls-1", Key("dev-1", "ls-1"))
	assert.Equal(t, "solo", Key("solo"))
}
