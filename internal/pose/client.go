package pose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tarofit/fitcoach/internal/workout"
)

const defaultTimeout = 10 * time.Second

// detector responses are small, this is just an upper bound for reads
const maxResponseSize = 1 << 20

// Client talks to the pose detector service over HTTP. The detector
// receives a JPEG frame and responds with the keypoints of the most
// prominent person, or null when nobody is in the frame.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type detectResponse struct {
	Keypoints [][3]float64 `json:"keypoints"`
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

// Detect sends one JPEG frame to the detector. A nil Keypoints result
// with a nil error means no person was detected.
func (c *Client) Detect(ctx context.Context, frame []byte) (workout.Keypoints, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		c.baseURL+"/detect",
		bytes.NewReader(frame),
	)
	if err != nil {
		return nil, fmt.Errorf("create detect request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detector request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read detector response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector status %d: %s", resp.StatusCode, body)
	}

	var dr detectResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return nil, fmt.Errorf("unmarshal detector response: %w", err)
	}

	if dr.Keypoints == nil {
		return nil, nil
	}
	if len(dr.Keypoints) < workout.NumKeypoints {
		return nil, fmt.Errorf("detector returned %d keypoints, need %d", len(dr.Keypoints), workout.NumKeypoints)
	}

	kp := make(workout.Keypoints, len(dr.Keypoints))
	for i, p := range dr.Keypoints {
		kp[i] = workout.Keypoint{X: p[0], Y: p[1], Confidence: p[2]}
	}
	return kp, nil
}

// Ping checks the detector health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("detector health request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detector health status %d", resp.StatusCode)
	}
	return nil
}
