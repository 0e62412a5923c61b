package reading

import (
	"fmt"

	"github.com/cuebird/cuebird/internal/service"
)

// Speed multiplier bounds for the scroll controller.
const (
	MinSpeed     = 0.1
	MaxSpeed     = 5.0
	DefaultSpeed = 1.0
	SpeedStep    = 0.1
)

// Controller is the scroll state machine: idle -> scrolling <-> paused,
// finishing when progress reaches the end. It owns speed and position;
// actually moving the viewport is the consumer's job.
type Controller struct {
	state    service.ScrollState
	speed    float64
	progress float64
}

// Ensure Controller satisfies the reading-controller capability.
var _ service.ReadingController = (*Controller)(nil)

// NewController creates an idle controller at the default speed.
func NewController() *Controller {
	return &Controller{state: service.ScrollIdle, speed: DefaultSpeed}
}

// Start begins scrolling from the current position.
func (c *Controller) Start() {
	c.state = service.ScrollActive
}

// Pause suspends scrolling. No-op unless currently scrolling.
func (c *Controller) Pause() {
	if c.state == service.ScrollActive {
		c.state = service.ScrollPaused
	}
}

// Resume continues scrolling after a pause. No-op unless paused.
func (c *Controller) Resume() {
	if c.state == service.ScrollPaused {
		c.state = service.ScrollActive
	}
}

// Stop returns to idle and resets the position.
func (c *Controller) Stop() {
	c.state = service.ScrollIdle
	c.progress = 0
}

// State returns the current scroll state.
func (c *Controller) State() service.ScrollState {
	return c.state
}

// SetSpeed sets the speed multiplier, clamped to [MinSpeed, MaxSpeed].
func (c *Controller) SetSpeed(speed float64) {
	if speed < MinSpeed {
		speed = MinSpeed
	}
	if speed > MaxSpeed {
		speed = MaxSpeed
	}
	c.speed = speed
}

// Speed returns the current speed multiplier.
func (c *Controller) Speed() float64 {
	return c.speed
}

// SetProgress records the scroll position. Reaching 1.0 while scrolling
// transitions to finished.
func (c *Controller) SetProgress(progress float64) error {
	if progress < 0 || progress > 1 {
		return fmt.Errorf("progress must be between 0.0 and 1.0, got %v", progress)
	}
	c.progress = progress
	if progress >= 1 && c.state == service.ScrollActive {
		c.state = service.ScrollFinished
	}
	return nil
}

// Progress returns the current position, 0.0-1.0.
func (c *Controller) Progress() float64 {
	return c.progress
}

// JumpTo moves to a position without changing the scroll state, except
// that jumping away from the end leaves the finished state.
func (c *Controller) JumpTo(position float64) error {
	if position < 0 || position > 1 {
		return fmt.Errorf("position must be between 0.0 and 1.0, got %v", position)
	}
	c.progress = position
	if c.state == service.ScrollFinished && position < 1 {
		c.state = service.ScrollPaused
	}
	return nil
}
