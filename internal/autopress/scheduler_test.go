package autopress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/shotwatch/pkg/logging"
)

type fakeDesktop struct {
	mu      sync.Mutex
	title   string
	down    map[Key]bool
	presses map[Key]int
}

func newFakeDesktop(title string) *fakeDesktop {
	return &fakeDesktop{title: title, down: map[Key]bool{}, presses: map[Key]int{}}
}

func (f *fakeDesktop) ForegroundWindowTitle() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.title, nil
}

func (f *fakeDesktop) KeyDown(k Key) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.down[k], nil
}

func (f *fakeDesktop) Press(k Key) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presses[k]++
	return nil
}

func (f *fakeDesktop) setDown(k Key, down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down[k] = down
}

func (f *fakeDesktop) setTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title = title
}

func (f *fakeDesktop) pressCount(k Key) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.presses[k]
}

func testSettings() Settings {
	return Settings{
		ToggleKey:         'O',
		TriggerKey:        'A',
		TargetWindowTitle: "Tarkov",
		Interval:          5 * time.Millisecond,
	}
}

func runScheduler(t *testing.T, s *Scheduler) {
	t.Helper()
	s.pollInterval = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

// tap holds the key long enough for the poller to see it, then releases it.
func tap(d *fakeDesktop, k Key) {
	d.setDown(k, true)
	time.Sleep(20 * time.Millisecond)
	d.setDown(k, false)
	time.Sleep(20 * time.Millisecond)
}

func TestScheduler_ToggleIsEdgeTriggered(t *testing.T) {
	d := newFakeDesktop("EscapeFromTarkov")
	tl := logging.NewTestLogger(t)
	s := NewScheduler(testSettings(), d, tl.Logger)
	runScheduler(t, s)

	d.setDown('O', true)
	require.Eventually(t, s.Enabled, time.Second, time.Millisecond)

	// Holding the key does not flip it back.
	time.Sleep(30 * time.Millisecond)
	assert.True(t, s.Enabled())

	d.setDown('O', false)
	time.Sleep(20 * time.Millisecond)
	tap(d, 'O')
	assert.False(t, s.Enabled())
	tl.AssertContains(t, `"status":"enabled"`)
	tl.AssertContains(t, `"status":"disabled"`)
}

func TestScheduler_ToggleIgnoredOutsideTarget(t *testing.T) {
	d := newFakeDesktop("Notepad")
	s := NewScheduler(testSettings(), d, nil)
	runScheduler(t, s)

	tap(d, 'O')
	assert.False(t, s.Enabled())
}

func TestScheduler_PressesOnlyWhenEnabledAndFocused(t *testing.T) {
	d := newFakeDesktop("EscapeFromTarkov")
	s := NewScheduler(testSettings(), d, nil)
	runScheduler(t, s)

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, d.pressCount('A'), "disabled scheduler must not press")

	tap(d, 'O')
	require.True(t, s.Enabled())
	require.Eventually(t, func() bool { return d.pressCount('A') >= 2 }, time.Second, time.Millisecond)

	d.setTitle("Desktop")
	time.Sleep(20 * time.Millisecond)
	before := d.pressCount('A')
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, before, d.pressCount('A'), "no presses while another window is focused")
}

func TestScheduler_NextDelay(t *testing.T) {
	s := NewScheduler(Settings{Interval: 100 * time.Millisecond, Jitter: 20 * time.Millisecond}, newFakeDesktop(""), nil)

	s.jitterN = func(int64) int64 { return 0 }
	assert.Equal(t, 80*time.Millisecond, s.nextDelay())

	s.jitterN = func(n int64) int64 { return n - 1 }
	assert.Equal(t, 120*time.Millisecond-1, s.nextDelay())

	s.settings.Jitter = 0
	assert.Equal(t, 100*time.Millisecond, s.nextDelay())

	s.settings = Settings{Interval: time.Millisecond, Jitter: time.Second}
	s.jitterN = func(int64) int64 { return 0 }
	assert.Zero(t, s.nextDelay(), "clamped at zero")
}
