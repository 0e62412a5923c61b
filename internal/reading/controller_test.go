package reading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuebird/cuebird/internal/service"
)

func TestController_StateTransitions(t *testing.T) {
	c := NewController()
	assert.Equal(t, service.ScrollIdle, c.State())

	c.Start()
	assert.Equal(t, service.ScrollActive, c.State())

	c.Pause()
	assert.Equal(t, service.ScrollPaused, c.State())

	c.Resume()
	assert.Equal(t, service.ScrollActive, c.State())

	c.Stop()
	assert.Equal(t, service.ScrollIdle, c.State())
	assert.Zero(t, c.Progress(), "stop resets the position")
}

func TestController_GuardedTransitions(t *testing.T) {
	c := NewController()

	c.Pause()
	assert.Equal(t, service.ScrollIdle, c.State(), "pause from idle is a no-op")

	c.Resume()
	assert.Equal(t, service.ScrollIdle, c.State(), "resume from idle is a no-op")

	c.Start()
	c.Resume()
	assert.Equal(t, service.ScrollActive, c.State(), "resume while scrolling is a no-op")
}

func TestController_SpeedClamping(t *testing.T) {
	c := NewController()
	assert.InDelta(t, DefaultSpeed, c.Speed(), 0.001)

	c.SetSpeed(2.5)
	assert.InDelta(t, 2.5, c.Speed(), 0.001)

	c.SetSpeed(100)
	assert.InDelta(t, MaxSpeed, c.Speed(), 0.001)

	c.SetSpeed(0)
	assert.InDelta(t, MinSpeed, c.Speed(), 0.001)

	c.SetSpeed(-3)
	assert.InDelta(t, MinSpeed, c.Speed(), 0.001)
}

func TestController_ProgressValidation(t *testing.T) {
	c := NewController()

	require.NoError(t, c.SetProgress(0.4))
	assert.InDelta(t, 0.4, c.Progress(), 0.001)

	assert.Error(t, c.SetProgress(-0.1))
	assert.Error(t, c.SetProgress(1.5))
	assert.InDelta(t, 0.4, c.Progress(), 0.001, "failed set must not change position")
}

func TestController_FinishesAtEnd(t *testing.T) {
	c := NewController()
	c.Start()

	require.NoError(t, c.SetProgress(1))
	assert.Equal(t, service.ScrollFinished, c.State())

	// Jumping back from the end re-enters the paused state so the
	// reader can resume from the new position.
	require.NoError(t, c.JumpTo(0.5))
	assert.Equal(t, service.ScrollPaused, c.State())
	assert.InDelta(t, 0.5, c.Progress(), 0.001)
}

func TestController_ProgressAtEndWhileIdle(t *testing.T) {
	c := NewController()

	require.NoError(t, c.SetProgress(1))
	assert.Equal(t, service.ScrollIdle, c.State(), "only an active scroll finishes")
}

func TestController_JumpTo(t *testing.T) {
	c := NewController()
	c.Start()

	require.NoError(t, c.JumpTo(0.75))
	assert.InDelta(t, 0.75, c.Progress(), 0.001)
	assert.Equal(t, service.ScrollActive, c.State(), "jump keeps the scroll running")

	assert.Error(t, c.JumpTo(2))
	assert.Error(t, c.JumpTo(-1))
}
