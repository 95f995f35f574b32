package workout

import (
	"math"

	log "github.com/sirupsen/logrus"
)

type angleState string

const (
	angleStateUp   angleState = "up"
	angleStateDown angleState = "down"
)

// two sides whose confidences are this close get averaged instead of
// picking a winner
const sideConfidenceDelta = 0.1

type angleParams struct {
	exercise Mode

	left, right JointTriple

	// lowState is entered when the smoothed angle drops below
	// enterLowBelow, highState when it rises above enterHighAbove.
	lowState, highState angleState
	enterLowBelow       float64
	enterHighAbove      float64

	windowSize int
	smoothing  SmoothingPolicy

	minConfidence float64

	// minimum frames between state changes, 0 disables the dwell gate
	minFramesInState int

	// when set, entering highState only counts a rep if lowState was
	// visited since the last rep
	requirePriorLow bool

	initialState angleState
}

// angleCounter is the hysteresis state machine shared by push-ups,
// squats and arm curls. Every rep is one lowState/highState round trip.
type angleCounter struct {
	params angleParams
	window *angleWindow

	state           angleState
	count           int
	frameCount      int
	lastStateChange int
	visitedLow      bool
	side            string
}

func newAngleCounter(params angleParams) *angleCounter {
	return &angleCounter{
		params: params,
		window: newAngleWindow(params.windowSize, params.smoothing),
		state:  params.initialState,
		side:   SideNone,
	}
}

func (c *angleCounter) Analyze(kp Keypoints) Result {
	c.frameCount++

	if !kp.HasPerson() {
		return c.pending()
	}

	angle, side, ok := c.measure(kp)
	if !ok {
		return c.pending()
	}

	smoothed, ok := c.window.push(angle)
	if !ok {
		// window still filling up
		return c.pending()
	}

	c.side = side
	c.advance(smoothed)

	return Result{Count: c.count, Angle: &smoothed, Side: c.side}
}

// pending is the result for frames that yield no usable measurement;
// nothing about the state machine changes.
func (c *angleCounter) pending() Result {
	return Result{Count: c.count, Side: c.side}
}

// measure picks the body side to read the angle from. Both sides valid
// and similarly confident: average them. Otherwise the more confident
// valid side wins.
func (c *angleCounter) measure(kp Keypoints) (float64, string, bool) {
	leftAngle, leftOK := tripleAngle(kp, c.params.left)
	rightAngle, rightOK := tripleAngle(kp, c.params.right)
	leftConf := kp.TripleConfidence(c.params.left)
	rightConf := kp.TripleConfidence(c.params.right)

	if leftOK && leftConf < c.params.minConfidence {
		leftOK = false
	}
	if rightOK && rightConf < c.params.minConfidence {
		rightOK = false
	}

	switch {
	case leftOK && rightOK:
		if math.Abs(leftConf-rightConf) < sideConfidenceDelta {
			return (leftAngle + rightAngle) / 2, SideBoth, true
		}
		if rightConf > leftConf {
			return rightAngle, SideRight, true
		}
		return leftAngle, SideLeft, true
	case rightOK:
		return rightAngle, SideRight, true
	case leftOK:
		return leftAngle, SideLeft, true
	}
	return 0, SideNone, false
}

func tripleAngle(kp Keypoints, t JointTriple) (float64, bool) {
	return Angle(kp[t.A], kp[t.B], kp[t.C])
}

// advance runs one step of the phase machine on the smoothed angle.
func (c *angleCounter) advance(angle float64) {
	p := c.params
	if p.minFramesInState > 0 && c.frameCount-c.lastStateChange < p.minFramesInState {
		return
	}

	switch {
	case c.state == p.highState && angle < p.enterLowBelow:
		c.state = p.lowState
		c.lastStateChange = c.frameCount
		c.visitedLow = true
		log.Debugf("%s: %s phase at %.1f°, frame %d", p.exercise, p.lowState, angle, c.frameCount)
	case c.state == p.lowState && angle > p.enterHighAbove:
		c.state = p.highState
		c.lastStateChange = c.frameCount
		if !p.requirePriorLow || c.visitedLow {
			c.count++
			c.visitedLow = false
			log.Debugf("%s: rep %d at %.1f°, frame %d", p.exercise, c.count, angle, c.frameCount)
		} else {
			log.Debugf("%s: reached %s without a prior %s, not counting", p.exercise, p.highState, p.lowState)
		}
	}
}

func (c *angleCounter) Reset() {
	c.window.reset()
	c.state = c.params.initialState
	c.count = 0
	c.frameCount = 0
	c.lastStateChange = 0
	c.visitedLow = false
	c.side = SideNone
}

func (c *angleCounter) Status() Status {
	return Status{Count: c.count, State: string(c.state)}
}
