package workout

import (
	"math"
	"time"

	log "github.com/sirupsen/logrus"
)

// Position labels reported by the motion counter.
const (
	PositionNeutral       = "neutral"
	PositionNoPerson      = "no_person"
	PositionLowConfidence = "low_confidence"
	PositionStarting      = "starting"
	PositionPullingUp     = "pulling_up"
	PositionLoweringDown  = "lowering_down"
	PositionStable        = "stable"
)

type direction string

const (
	directionStable direction = "stable"
	directionUp     direction = "up"
	directionDown   direction = "down"
)

const (
	// samples of vertical displacement kept for direction detection
	positionHistorySize = 30
	// confirmed direction changes kept for rep detection
	directionLogSize = 10
	// movement is measured across this many samples
	directionWindowSize = 5
	// per-frame decay applied to both streak counters on a stable frame
	streakDecay = 0.5
)

// directionChange records one confirmed direction flip.
type directionChange struct {
	direction    direction
	at           time.Time
	displacement float64
}

type motionParams struct {
	movementThreshold    float64
	minMovementRange     float64
	minConsecutiveFrames int
	repCooldown          time.Duration
	minConfidence        float64
}

// motionCounter counts pull-ups and chin-ups from the vertical
// displacement between the wrists and the shoulders. Direction flips are
// debounced through streak counters, and a rep is a confirmed down
// followed by a confirmed up spanning a large enough displacement range.
type motionCounter struct {
	params motionParams
	now    func() time.Time

	count      int
	frameCount int
	position   string

	positionHistory  []float64
	directionLog     []directionChange
	currentDirection direction

	upStreak   float64
	downStreak float64

	lastRepTime time.Time
}

func newMotionCounter(params motionParams, now func() time.Time) *motionCounter {
	return &motionCounter{
		params:           params,
		now:              now,
		position:         PositionNeutral,
		positionHistory:  make([]float64, 0, positionHistorySize),
		directionLog:     make([]directionChange, 0, directionLogSize),
		currentDirection: directionStable,
	}
}

func (c *motionCounter) Analyze(kp Keypoints) Result {
	c.frameCount++

	if !kp.HasPerson() {
		return Result{Count: c.count, Position: PositionNoPerson}
	}

	// the weakest of the four tracked joints gates the whole frame
	minConf := math.Min(
		math.Min(kp[LeftShoulder].Confidence, kp[RightShoulder].Confidence),
		math.Min(kp[LeftWrist].Confidence, kp[RightWrist].Confidence),
	)
	if minConf < c.params.minConfidence {
		return Result{Count: c.count, Position: PositionLowConfidence}
	}

	shoulderY := (kp[LeftShoulder].Y + kp[RightShoulder].Y) / 2
	wristY := (kp[LeftWrist].Y + kp[RightWrist].Y) / 2
	displacement := wristY - shoulderY

	dir, ok := c.trackDirection(displacement)
	if !ok {
		c.position = PositionStarting
		return Result{Count: c.count, Position: c.position}
	}

	c.detectRep()

	switch dir {
	case directionUp:
		c.position = PositionPullingUp
	case directionDown:
		c.position = PositionLoweringDown
	default:
		c.position = PositionStable
	}

	return Result{Count: c.count, Position: c.position}
}

// trackDirection folds the new displacement sample into the history and
// returns the debounced movement direction. ok is false while there are
// not enough samples yet.
func (c *motionCounter) trackDirection(displacement float64) (direction, bool) {
	c.positionHistory = append(c.positionHistory, displacement)
	if len(c.positionHistory) > positionHistorySize {
		c.positionHistory = c.positionHistory[1:]
	}
	if len(c.positionHistory) < directionWindowSize {
		return directionStable, false
	}

	n := len(c.positionHistory)
	movement := c.positionHistory[n-1] - c.positionHistory[n-directionWindowSize]

	// shoulders sink relative to the wrists while pulling up, so a growing
	// displacement means upward body movement
	switch {
	case movement > c.params.movementThreshold:
		c.upStreak++
		c.downStreak = 0
	case movement < -c.params.movementThreshold:
		c.downStreak++
		c.upStreak = 0
	default:
		c.upStreak = math.Max(0, c.upStreak-streakDecay)
		c.downStreak = math.Max(0, c.downStreak-streakDecay)
	}

	confirmed := c.currentDirection
	minStreak := float64(c.params.minConsecutiveFrames)
	switch {
	case c.upStreak >= minStreak:
		confirmed = directionUp
	case c.downStreak >= minStreak:
		confirmed = directionDown
	case c.upStreak == 0 && c.downStreak == 0:
		confirmed = directionStable
	}

	if confirmed != c.currentDirection {
		c.currentDirection = confirmed
		c.directionLog = append(c.directionLog, directionChange{
			direction:    confirmed,
			at:           c.now(),
			displacement: displacement,
		})
		if len(c.directionLog) > directionLogSize {
			c.directionLog = c.directionLog[1:]
		}
		log.Debugf("pull-up direction %s, displacement %.1f, frame %d", confirmed, displacement, c.frameCount)
	}

	return confirmed, true
}

// detectRep counts a rep when the two latest confirmed changes are a
// down followed by an up and the displacement travelled between them is
// large enough. A cooldown suppresses double counting.
func (c *motionCounter) detectRep() {
	if len(c.directionLog) < 2 {
		return
	}
	now := c.now()
	if !c.lastRepTime.IsZero() && now.Sub(c.lastRepTime) <= c.params.repCooldown {
		return
	}

	prev := c.directionLog[len(c.directionLog)-2]
	last := c.directionLog[len(c.directionLog)-1]
	if prev.direction != directionDown || last.direction != directionUp {
		return
	}

	movementRange := math.Abs(last.displacement - prev.displacement)
	if movementRange <= c.params.minMovementRange {
		return
	}

	c.count++
	c.lastRepTime = now
	c.directionLog = c.directionLog[:0]
	log.Debugf("pull-up rep %d, range %.1f px", c.count, movementRange)
}

func (c *motionCounter) Reset() {
	c.count = 0
	c.frameCount = 0
	c.position = PositionNeutral
	c.positionHistory = c.positionHistory[:0]
	c.directionLog = c.directionLog[:0]
	c.currentDirection = directionStable
	c.upStreak = 0
	c.downStreak = 0
	c.lastRepTime = time.Time{}
}

func (c *motionCounter) Status() Status {
	return Status{Count: c.count, State: c.position}
}
