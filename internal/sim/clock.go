package sim

import "fmt"

// Clock is the shared simulated time source. It only moves forward.
type Clock struct {
	now float64
}

func (c *Clock) Now() float64 { return c.now }

func (c *Clock) advanceTo(t float64) {
	if t < c.now {
		panic(fmt.Sprintf("sim: clock moved backwards from %g to %g", c.now, t))
	}
	c.now = t
}
