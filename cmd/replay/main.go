package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/tarofit/fitcoach/internal/workout"
)

// Replays recorded pose keypoints through a workout session, one frame
// per line, and prints what the counter makes of them. Handy for tuning
// thresholds against a captured workout without the whole service.
//
// Each input line is a JSON array of [x, y, confidence] triples in the
// 17-point COCO layout. Empty lines and lines starting with # are
// skipped, a line holding "null" is a frame with no person detected.
func main() {
	mode := flag.String("mode", "chinup", "exercise mode [chinup | pullup | pushup | squat | armcurl]")
	filePath := flag.String("file", "", "JSONL file with one keypoints frame per line")
	tuningPath := flag.String("tuning", "", "optional JSON file with tuning overrides")
	flag.Parse()

	if *filePath == "" {
		log.Fatalln("no input, use -file to point to a JSONL keypoints file")
	}

	var tuning *workout.Tuning
	if *tuningPath != "" {
		tuningBytes, err := os.ReadFile(*tuningPath)
		if err != nil {
			log.Fatalf("read tuning file: %s", err)
		}
		tuning = &workout.Tuning{}
		if err := json.Unmarshal(tuningBytes, tuning); err != nil {
			log.Fatalf("parse tuning file: %s", err)
		}
		if err := tuning.Validate(); err != nil {
			log.Fatalf("tuning: %s", err)
		}
	}

	framesFile, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("open frames file: %s", err)
	}
	defer func() { _ = framesFile.Close() }()

	session := workout.NewSession(workout.ParseMode(*mode), tuning, nil)

	scanner := bufio.NewScanner(framesFile)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNo++
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		keypoints, err := parseFrame(line)
		if err != nil {
			log.Fatalf("line %d: %s", lineNo, err)
		}

		result := session.Update(keypoints)
		fmt.Printf("frame %4d: count=%d%s%s%s\n",
			session.FrameCount(), result.Count,
			formatAngle(result.Angle),
			formatLabel("position", result.Position),
			formatLabel("side", result.Side),
		)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("read frames file: %s", err)
	}

	status := session.Status()
	fmt.Printf("\n%s: %d reps in %d frames, final state: %s\n",
		status.Mode, status.Count, status.FrameCount, status.State)
}

func parseFrame(line string) (workout.Keypoints, error) {
	var raw [][3]float64
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return nil, fmt.Errorf("parse keypoints: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	if len(raw) < workout.NumKeypoints {
		return nil, fmt.Errorf("got %d keypoints, need %d", len(raw), workout.NumKeypoints)
	}

	keypoints := make(workout.Keypoints, len(raw))
	for i, kp := range raw {
		keypoints[i] = workout.Keypoint{X: kp[0], Y: kp[1], Confidence: kp[2]}
	}
	return keypoints, nil
}

func formatAngle(angle *float64) string {
	if angle == nil {
		return ""
	}
	return fmt.Sprintf(" angle=%.1f", *angle)
}

func formatLabel(name, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf(" %s=%s", name, value)
}
