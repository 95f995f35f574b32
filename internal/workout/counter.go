package workout

import "time"

// Counter analyzes a stream of pose frames for one exercise and keeps a
// monotonically increasing repetition count.
type Counter interface {
	// Analyze processes one frame and returns the counter view after it.
	Analyze(kp Keypoints) Result
	// Reset clears all accumulated state, including the rep count.
	Reset()
	// Status returns the current count and phase without processing a frame.
	Status() Status
}

// Result is the per-frame outcome of a counter.
type Result struct {
	// Count is the total reps so far.
	Count int
	// Angle is the smoothed joint angle for angle-based exercises,
	// nil when no measurement was possible this frame.
	Angle *float64
	// Position is the movement label for motion-based exercises.
	Position string
	// Side reports which body side produced the angle: left, right or both.
	Side string
}

// Status is a counter snapshot.
type Status struct {
	Count int    `json:"count"`
	State string `json:"state"`
}

// Side labels for angle measurements.
const (
	SideLeft  = "left"
	SideRight = "right"
	SideBoth  = "both"
	SideNone  = "none"
)

// NewCounter builds the counter for the given mode. The now func is the
// counter clock; pass nil for time.Now.
func NewCounter(mode Mode, tuning *Tuning, now func() time.Time) Counter {
	if now == nil {
		now = time.Now
	}
	switch mode {
	case ModePushup:
		return newAngleCounter(pushupParams(tuning))
	case ModeSquat:
		return newAngleCounter(squatParams(tuning))
	case ModeArmCurl:
		return newAngleCounter(armCurlParams(tuning))
	default:
		// chin-ups and pull-ups share the displacement counter
		return newMotionCounter(motionParams{
			movementThreshold:    tuning.GetMovementThreshold(),
			minMovementRange:     tuning.GetMinMovementRange(),
			minConsecutiveFrames: tuning.GetMinConsecutiveFrames(),
			repCooldown:          tuning.GetRepCooldown(),
			minConfidence:        tuning.GetMinConfidence(),
		}, now)
	}
}

func pushupParams(t *Tuning) angleParams {
	return angleParams{
		exercise:         ModePushup,
		left:             leftElbowTriple,
		right:            rightElbowTriple,
		lowState:         angleStateDown,
		highState:        angleStateUp,
		enterLowBelow:    t.GetPushupDownAngle(),
		enterHighAbove:   t.GetPushupUpAngle(),
		windowSize:       3,
		smoothing:        SmoothLastTwoMean,
		minConfidence:    t.GetMinConfidence(),
		minFramesInState: 2,
		requirePriorLow:  true,
		initialState:     angleStateUp,
	}
}

func squatParams(t *Tuning) angleParams {
	return angleParams{
		exercise:         ModeSquat,
		left:             leftKneeTriple,
		right:            rightKneeTriple,
		lowState:         angleStateDown,
		highState:        angleStateUp,
		enterLowBelow:    t.GetSquatDownAngle(),
		enterHighAbove:   t.GetSquatUpAngle(),
		windowSize:       3,
		smoothing:        SmoothLastTwoMean,
		minConfidence:    t.GetMinConfidence(),
		minFramesInState: 2,
		requirePriorLow:  true,
		initialState:     angleStateUp,
	}
}

// Arm curls invert the angle geometry: a small elbow angle is the curled
// (up) phase, a large one the extended (down) phase, and a rep completes
// on the extend.
func armCurlParams(t *Tuning) angleParams {
	return angleParams{
		exercise:         ModeArmCurl,
		left:             leftElbowTriple,
		right:            rightElbowTriple,
		lowState:         angleStateUp,
		highState:        angleStateDown,
		enterLowBelow:    t.GetArmCurlUpAngle(),
		enterHighAbove:   t.GetArmCurlDownAngle(),
		windowSize:       5,
		smoothing:        SmoothFullWindowMean,
		minConfidence:    t.GetArmCurlMinConfidence(),
		minFramesInState: 0,
		requirePriorLow:  false,
		initialState:     angleStateDown,
	}
}
