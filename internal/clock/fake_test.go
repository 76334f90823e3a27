package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeAfterFunc(t *testing.T) {
	t.Run("fires at deadline", func(t *testing.T) {
		c := Fake(epoch)
		fired := 0
		c.AfterFunc(10*time.Second, func() { fired++ })

		c.Advance(9 * time.Second)
		assert.Equal(t, 0, fired)
		assert.Equal(t, 1, c.Pending())

		c.Advance(time.Second)
		assert.Equal(t, 1, fired)
		assert.Equal(t, 0, c.Pending())

		c.Advance(time.Minute)
		assert.Equal(t, 1, fired, "one-shot timer fired twice")
	})

	t.Run("stop prevents firing", func(t *testing.T) {
		c := Fake(epoch)
		fired := false
		timer := c.AfterFunc(time.Second, func() { fired = true })

		assert.True(t, timer.Stop())
		assert.False(t, timer.Stop())
		c.Advance(time.Hour)
		assert.False(t, fired)
	})

	t.Run("stop after fire reports false", func(t *testing.T) {
		c := Fake(epoch)
		timer := c.AfterFunc(time.Second, func() {})
		c.Advance(time.Second)
		assert.False(t, timer.Stop())
	})

	t.Run("fires in deadline order", func(t *testing.T) {
		c := Fake(epoch)
		var order []int
		c.AfterFunc(3*time.Second, func() { order = append(order, 3) })
		c.AfterFunc(1*time.Second, func() { order = append(order, 1) })
		c.AfterFunc(2*time.Second, func() { order = append(order, 2) })

		c.Advance(5 * time.Second)
		assert.Equal(t, []int{1, 2, 3}, order)
	})

	t.Run("now advances", func(t *testing.T) {
		c := Fake(epoch)
		c.Advance(90 * time.Second)
		assert.Equal(t, epoch.Add(90*time.Second), c.Now())
	})
}
