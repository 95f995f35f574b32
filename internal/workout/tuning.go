package workout

import (
	"fmt"
	"time"
)

// Tuning carries the runtime-adjustable counter parameters. All fields
// are pointers so a partial JSON body (or TOML section) only overrides
// what it names; nil fields resolve to the defaults via the getters.
type Tuning struct {
	// angle thresholds, in degrees
	PushupUpAngle    *float64 `json:"pushup_up_angle,omitempty" toml:"pushup_up_angle"`
	PushupDownAngle  *float64 `json:"pushup_down_angle,omitempty" toml:"pushup_down_angle"`
	SquatUpAngle     *float64 `json:"squat_up_angle,omitempty" toml:"squat_up_angle"`
	SquatDownAngle   *float64 `json:"squat_down_angle,omitempty" toml:"squat_down_angle"`
	ArmCurlUpAngle   *float64 `json:"armcurl_up_angle,omitempty" toml:"armcurl_up_angle"`
	ArmCurlDownAngle *float64 `json:"armcurl_down_angle,omitempty" toml:"armcurl_down_angle"`

	// pull-up / chin-up movement parameters, displacements in pixels
	MovementThreshold    *float64 `json:"movement_threshold,omitempty" toml:"movement_threshold"`
	MinMovementRange     *float64 `json:"min_movement_range,omitempty" toml:"min_movement_range"`
	MinConsecutiveFrames *int     `json:"min_consecutive_frames,omitempty" toml:"min_consecutive_frames"`
	RepCooldown          *string  `json:"rep_cooldown,omitempty" toml:"rep_cooldown"`

	// keypoint confidence floors
	MinConfidence        *float64 `json:"min_confidence,omitempty" toml:"min_confidence"`
	ArmCurlMinConfidence *float64 `json:"armcurl_min_confidence,omitempty" toml:"armcurl_min_confidence"`
}

// Defaults for all tunable parameters.
const (
	DefaultPushupUpAngle    = 135.0
	DefaultPushupDownAngle  = 105.0
	DefaultSquatUpAngle     = 170.0
	DefaultSquatDownAngle   = 140.0
	DefaultArmCurlUpAngle   = 90.0
	DefaultArmCurlDownAngle = 120.0

	DefaultMovementThreshold    = 4.0
	DefaultMinMovementRange     = 15.0
	DefaultMinConsecutiveFrames = 3
	DefaultRepCooldown          = 500 * time.Millisecond

	DefaultMinConfidence        = 0.3
	DefaultArmCurlMinConfidence = 0.5
)

func (t *Tuning) GetPushupUpAngle() float64 {
	if t == nil || t.PushupUpAngle == nil {
		return DefaultPushupUpAngle
	}
	return *t.PushupUpAngle
}

func (t *Tuning) GetPushupDownAngle() float64 {
	if t == nil || t.PushupDownAngle == nil {
		return DefaultPushupDownAngle
	}
	return *t.PushupDownAngle
}

func (t *Tuning) GetSquatUpAngle() float64 {
	if t == nil || t.SquatUpAngle == nil {
		return DefaultSquatUpAngle
	}
	return *t.SquatUpAngle
}

func (t *Tuning) GetSquatDownAngle() float64 {
	if t == nil || t.SquatDownAngle == nil {
		return DefaultSquatDownAngle
	}
	return *t.SquatDownAngle
}

func (t *Tuning) GetArmCurlUpAngle() float64 {
	if t == nil || t.ArmCurlUpAngle == nil {
		return DefaultArmCurlUpAngle
	}
	return *t.ArmCurlUpAngle
}

func (t *Tuning) GetArmCurlDownAngle() float64 {
	if t == nil || t.ArmCurlDownAngle == nil {
		return DefaultArmCurlDownAngle
	}
	return *t.ArmCurlDownAngle
}

func (t *Tuning) GetMovementThreshold() float64 {
	if t == nil || t.MovementThreshold == nil {
		return DefaultMovementThreshold
	}
	return *t.MovementThreshold
}

func (t *Tuning) GetMinMovementRange() float64 {
	if t == nil || t.MinMovementRange == nil {
		return DefaultMinMovementRange
	}
	return *t.MinMovementRange
}

func (t *Tuning) GetMinConsecutiveFrames() int {
	if t == nil || t.MinConsecutiveFrames == nil {
		return DefaultMinConsecutiveFrames
	}
	return *t.MinConsecutiveFrames
}

func (t *Tuning) GetRepCooldown() time.Duration {
	if t == nil || t.RepCooldown == nil {
		return DefaultRepCooldown
	}
	d, err := time.ParseDuration(*t.RepCooldown)
	if err != nil {
		return DefaultRepCooldown
	}
	return d
}

func (t *Tuning) GetMinConfidence() float64 {
	if t == nil || t.MinConfidence == nil {
		return DefaultMinConfidence
	}
	return *t.MinConfidence
}

func (t *Tuning) GetArmCurlMinConfidence() float64 {
	if t == nil || t.ArmCurlMinConfidence == nil {
		return DefaultArmCurlMinConfidence
	}
	return *t.ArmCurlMinConfidence
}

// Validate checks the semantic constraints between the set fields. It
// resolves through the getters so a partially-set tuning is validated
// against the effective values.
func (t *Tuning) Validate() error {
	angles := map[string]float64{
		"pushup_up_angle":    t.GetPushupUpAngle(),
		"pushup_down_angle":  t.GetPushupDownAngle(),
		"squat_up_angle":     t.GetSquatUpAngle(),
		"squat_down_angle":   t.GetSquatDownAngle(),
		"armcurl_up_angle":   t.GetArmCurlUpAngle(),
		"armcurl_down_angle": t.GetArmCurlDownAngle(),
	}
	for name, deg := range angles {
		if deg < 0 || deg > 180 {
			return fmt.Errorf("%s: %f out of range [0, 180]", name, deg)
		}
	}

	if t.GetPushupUpAngle() <= t.GetPushupDownAngle() {
		return fmt.Errorf("pushup_up_angle must be above pushup_down_angle")
	}
	if t.GetSquatUpAngle() <= t.GetSquatDownAngle() {
		return fmt.Errorf("squat_up_angle must be above squat_down_angle")
	}
	// the curled (up) elbow angle is smaller than the extended (down) one
	if t.GetArmCurlUpAngle() >= t.GetArmCurlDownAngle() {
		return fmt.Errorf("armcurl_up_angle must be below armcurl_down_angle")
	}

	if t.GetMovementThreshold() <= 0 {
		return fmt.Errorf("movement_threshold must be positive")
	}
	if t.GetMinMovementRange() <= 0 {
		return fmt.Errorf("min_movement_range must be positive")
	}
	if t.GetMinConsecutiveFrames() < 1 {
		return fmt.Errorf("min_consecutive_frames must be at least 1")
	}
	if t.RepCooldown != nil {
		if _, err := time.ParseDuration(*t.RepCooldown); err != nil {
			return fmt.Errorf("rep_cooldown: %w", err)
		}
	}

	for name, conf := range map[string]float64{
		"min_confidence":         t.GetMinConfidence(),
		"armcurl_min_confidence": t.GetArmCurlMinConfidence(),
	} {
		if conf < 0 || conf > 1 {
			return fmt.Errorf("%s: %f out of range [0, 1]", name, conf)
		}
	}

	return nil
}

// Merge overlays the set fields of other onto t.
func (t *Tuning) Merge(other *Tuning) {
	if other == nil {
		return
	}
	if other.PushupUpAngle != nil {
		t.PushupUpAngle = other.PushupUpAngle
	}
	if other.PushupDownAngle != nil {
		t.PushupDownAngle = other.PushupDownAngle
	}
	if other.SquatUpAngle != nil {
		t.SquatUpAngle = other.SquatUpAngle
	}
	if other.SquatDownAngle != nil {
		t.SquatDownAngle = other.SquatDownAngle
	}
	if other.ArmCurlUpAngle != nil {
		t.ArmCurlUpAngle = other.ArmCurlUpAngle
	}
	if other.ArmCurlDownAngle != nil {
		t.ArmCurlDownAngle = other.ArmCurlDownAngle
	}
	if other.MovementThreshold != nil {
		t.MovementThreshold = other.MovementThreshold
	}
	if other.MinMovementRange != nil {
		t.MinMovementRange = other.MinMovementRange
	}
	if other.MinConsecutiveFrames != nil {
		t.MinConsecutiveFrames = other.MinConsecutiveFrames
	}
	if other.RepCooldown != nil {
		t.RepCooldown = other.RepCooldown
	}
	if other.MinConfidence != nil {
		t.MinConfidence = other.MinConfidence
	}
	if other.ArmCurlMinConfidence != nil {
		t.ArmCurlMinConfidence = other.ArmCurlMinConfidence
	}
}

// Effective returns a fully-populated copy, with every field resolved
// to its current effective value. Handy for the tuning read endpoint.
func (t *Tuning) Effective() Tuning {
	f64 := func(v float64) *float64 { return &v }
	i := func(v int) *int { return &v }
	s := func(v string) *string { return &v }
	return Tuning{
		PushupUpAngle:        f64(t.GetPushupUpAngle()),
		PushupDownAngle:      f64(t.GetPushupDownAngle()),
		SquatUpAngle:         f64(t.GetSquatUpAngle()),
		SquatDownAngle:       f64(t.GetSquatDownAngle()),
		ArmCurlUpAngle:       f64(t.GetArmCurlUpAngle()),
		ArmCurlDownAngle:     f64(t.GetArmCurlDownAngle()),
		MovementThreshold:    f64(t.GetMovementThreshold()),
		MinMovementRange:     f64(t.GetMinMovementRange()),
		MinConsecutiveFrames: i(t.GetMinConsecutiveFrames()),
		RepCooldown:          s(t.GetRepCooldown().String()),
		MinConfidence:        f64(t.GetMinConfidence()),
		ArmCurlMinConfidence: f64(t.GetArmCurlMinConfidence()),
	}
}
