package workout

// Keypoint is a single detected body joint in image coordinates,
// with the detector confidence in [0, 1].
type Keypoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Keypoints is one pose observation in the standard 17-point COCO layout,
// index-addressed via the joint constants below.
type Keypoints []Keypoint

// NumKeypoints is the size of the COCO body-pose layout.
const NumKeypoints = 17

// Joint indices within a Keypoints frame.
const (
	Nose          = 0
	LeftEye       = 1
	RightEye      = 2
	LeftEar       = 3
	RightEar      = 4
	LeftShoulder  = 5
	RightShoulder = 6
	LeftElbow     = 7
	RightElbow    = 8
	LeftWrist     = 9
	RightWrist    = 10
	LeftHip       = 11
	RightHip      = 12
	LeftKnee      = 13
	RightKnee     = 14
	LeftAnkle     = 15
	RightAnkle    = 16
)

// HasPerson reports whether the frame carries a full detected skeleton.
func (kp Keypoints) HasPerson() bool {
	return len(kp) >= NumKeypoints
}

// JointTriple names the three joints used to compute one angle,
// with B as the vertex (e.g. shoulder-elbow-wrist for the elbow angle).
type JointTriple struct {
	A, B, C int
}

// TripleConfidence returns the mean confidence of the three joints.
func (kp Keypoints) TripleConfidence(t JointTriple) float64 {
	return (kp[t.A].Confidence + kp[t.B].Confidence + kp[t.C].Confidence) / 3
}

// Arm and leg triples used by the angle-based exercises.
var (
	leftElbowTriple  = JointTriple{A: LeftShoulder, B: LeftElbow, C: LeftWrist}
	rightElbowTriple = JointTriple{A: RightShoulder, B: RightElbow, C: RightWrist}
	leftKneeTriple   = JointTriple{A: LeftHip, B: LeftKnee, C: LeftAnkle}
	rightKneeTriple  = JointTriple{A: RightHip, B: RightKnee, C: RightAnkle}
)
