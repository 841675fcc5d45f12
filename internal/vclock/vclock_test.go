package vclock_test

import (
	"testing"
	"time"

	"github.com/aretw0/glyph/internal/vclock"
	"github.com/stretchr/testify/assert"
)

func TestClock_AdvanceFiresInDeadlineOrder(t *testing.T) {
	c := vclock.New()
	start := c.Now()
	var fired []string

	c.AfterFunc(30*time.Millisecond, func() { fired = append(fired, "late") })
	c.AfterFunc(10*time.Millisecond, func() { fired = append(fired, "early") })
	assert.Equal(t, 2, c.Pending())

	c.Advance(20 * time.Millisecond)
	assert.Equal(t, []string{"early"}, fired)
	assert.Equal(t, start.Add(20*time.Millisecond), c.Now())

	c.Advance(10 * time.Millisecond)
	assert.Equal(t, []string{"early", "late"}, fired)
	assert.Equal(t, 0, c.Pending())
}

func TestClock_Stop(t *testing.T) {
	c := vclock.New()
	fired := false
	timer := c.AfterFunc(time.Millisecond, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	c.Advance(time.Second)
	assert.False(t, fired)
}

func TestClock_CallbackMayArmTimers(t *testing.T) {
	c := vclock.New()
	var count int
	var rearm func()
	rearm = func() {
		count++
		if count < 3 {
			c.AfterFunc(10*time.Millisecond, rearm)
		}
	}
	c.AfterFunc(10*time.Millisecond, rearm)

	c.Advance(time.Second)
	assert.Equal(t, 3, count)
}
