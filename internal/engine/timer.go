package engine

// stepEpsilon absorbs float error when seconds*TargetFrameRate is meant to
// be a whole number of steps (0.1s is 3.0000000000000004 steps).
const stepEpsilon = 1e-9

// TickTimer is a restartable countdown advanced once per simulation step.
// Elapsed time is counted in steps so an interval that is a whole number of
// steps fires exactly on that step; overshoot carries into the next period.
//
// A TickTimer belongs to the entity that created it and must not be shared.
type TickTimer struct {
	interval float64 // in steps
	elapsed  float64 // in steps
}

// NewInterval creates a timer firing every seconds of simulated time.
// seconds must be positive.
func NewInterval(seconds float64) *TickTimer {
	t := &TickTimer{}
	t.SetInterval(seconds)
	return t
}

// NewFrequency creates a timer firing hz times per simulated second.
func NewFrequency(hz float64) *TickTimer {
	return NewInterval(1 / hz)
}

// SetInterval changes the period without touching elapsed time.
func (t *TickTimer) SetInterval(seconds float64) {
	t.interval = seconds * TargetFrameRate
}

// Interval returns the period in seconds.
func (t *TickTimer) Interval() float64 {
	return t.interval / TargetFrameRate
}

// Tick advances the timer by one step and reports whether it fired.
func (t *TickTimer) Tick() bool {
	t.elapsed++
	if t.elapsed >= t.interval-stepEpsilon {
		t.elapsed -= t.interval
		return true
	}
	return false
}

// Reset restarts the countdown.
func (t *TickTimer) Reset() {
	t.elapsed = 0
}
