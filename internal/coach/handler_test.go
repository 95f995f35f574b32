package coach_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tarofit/fitcoach/internal/coach"
	"github.com/tarofit/fitcoach/internal/debugframes"
	"github.com/tarofit/fitcoach/internal/sessions"
	"github.com/tarofit/fitcoach/internal/telemetry/metrics"
	"github.com/tarofit/fitcoach/internal/workout"
)

type handlerMocks struct {
	detector  *MockposeDetector
	motivator *Mockmotivator
	frames    *MockframeStore
	store     *sessions.Store
	metrics   *metrics.Manager
}

func newTestHandler(t *testing.T, limiter *MockrateLimiter) (*coach.Handler, *handlerMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := &handlerMocks{
		detector:  NewMockposeDetector(ctrl),
		motivator: NewMockmotivator(ctrl),
		frames:    NewMockframeStore(ctrl),
		store:     sessions.NewStore(time.Minute, nil),
		metrics:   metrics.NewTestManager(),
	}

	params := coach.NewHandlerParams{
		Detector:        m.detector,
		Store:           m.store,
		Motivator:       m.motivator,
		Frames:          m.frames,
		Tuning:          coach.NewTuningBox(nil),
		FrameRatePerMin: 60,
		Metrics:         m.metrics,
	}
	if limiter != nil {
		params.RateLimiter = limiter
	}
	return coach.NewHandler(params), m
}

func neutralPose() workout.Keypoints {
	kp := make(workout.Keypoints, workout.NumKeypoints)
	for i := range kp {
		kp[i] = workout.Keypoint{X: 50, Y: 50, Confidence: 0.9}
	}
	return kp
}

func frameRequest(t *testing.T, mode string, frame []byte, clientID string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if frame != nil {
		fw, err := mw.CreateFormFile("file", "frame.jpg")
		require.NoError(t, err)
		_, err = fw.Write(frame)
		require.NoError(t, err)
	}
	if mode != "" {
		require.NoError(t, mw.WriteField("mode", mode))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/workout/frame", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if clientID != "" {
		req.Header.Set(coach.ClientIDHeader, clientID)
	}
	return req
}

func TestHandler_AnalyzeFrame(t *testing.T) {
	handler, m := newTestHandler(t, nil)

	frame := []byte("jpeg-bytes")
	m.detector.EXPECT().Detect(gomock.Any(), frame).Return(neutralPose(), nil).Times(2)
	m.frames.EXPECT().Enabled().Return(false).Times(2)
	m.motivator.EXPECT().ForRep(0).Return("Ready to start!").Times(2)

	rr := httptest.NewRecorder()
	handler.HandleAnalyzeFrame(rr, frameRequest(t, "chinup", frame, ""))
	require.Equal(t, http.StatusOK, rr.Code)

	var state coach.WorkoutState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.NotEmpty(t, state.ClientID)
	assert.Equal(t, state.ClientID, rr.Header().Get(coach.ClientIDHeader))
	assert.Equal(t, "chinup", state.Mode)
	assert.Equal(t, 0, state.RepCount)
	assert.Equal(t, 1, state.FramesSent)
	assert.Equal(t, workout.PositionStarting, state.Position)
	assert.Equal(t, "Ready to start!", state.Motivation)
	assert.True(t, state.IsConnected)
	assert.True(t, state.IsWorkoutActive)
	assert.Nil(t, state.LastRepAt)
	assert.Equal(t, 1, m.store.Len())

	// second frame with the minted client id lands in the same session
	rr = httptest.NewRecorder()
	handler.HandleAnalyzeFrame(rr, frameRequest(t, "chinup", frame, state.ClientID))
	require.Equal(t, http.StatusOK, rr.Code)

	var state2 coach.WorkoutState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state2))
	assert.Equal(t, state.ClientID, state2.ClientID)
	assert.Equal(t, 2, state2.FramesSent)
	assert.Equal(t, 1, m.store.Len())

	framesAnalyzed := m.metrics.CounterFramesAnalyzed.With(prometheus.Labels{"mode": "chinup"})
	assert.Equal(t, float64(2), testutil.ToFloat64(framesAnalyzed))
}

func TestHandler_AnalyzeFrame_BadRequests(t *testing.T) {
	t.Run("mode missing", func(t *testing.T) {
		handler, _ := newTestHandler(t, nil)
		rr := httptest.NewRecorder()
		handler.HandleAnalyzeFrame(rr, frameRequest(t, "", []byte("jpeg-bytes"), ""))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "mode empty")
	})

	t.Run("frame file missing", func(t *testing.T) {
		handler, _ := newTestHandler(t, nil)
		rr := httptest.NewRecorder()
		handler.HandleAnalyzeFrame(rr, frameRequest(t, "chinup", nil, ""))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "frame file missing")
	})

	t.Run("not multipart", func(t *testing.T) {
		handler, _ := newTestHandler(t, nil)
		req := httptest.NewRequest("POST", "/workout/frame", bytes.NewReader([]byte("nope")))
		rr := httptest.NewRecorder()
		handler.HandleAnalyzeFrame(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandler_AnalyzeFrame_NoPerson(t *testing.T) {
	handler, m := newTestHandler(t, nil)

	m.detector.EXPECT().Detect(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.frames.EXPECT().Enabled().Return(false)
	m.motivator.EXPECT().ForRep(0).Return("Ready to start!")

	rr := httptest.NewRecorder()
	handler.HandleAnalyzeFrame(rr, frameRequest(t, "chinup", []byte("jpeg-bytes"), ""))
	require.Equal(t, http.StatusOK, rr.Code)

	var state coach.WorkoutState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.Equal(t, workout.PositionNoPerson, state.Position)
	assert.False(t, state.IsWorkoutActive)
	assert.True(t, state.IsConnected)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.metrics.CounterFramesNoPerson))
}

func TestHandler_AnalyzeFrame_DetectorError(t *testing.T) {
	handler, m := newTestHandler(t, nil)

	m.detector.EXPECT().Detect(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("detector down"))

	rr := httptest.NewRecorder()
	handler.HandleAnalyzeFrame(rr, frameRequest(t, "pushup", []byte("jpeg-bytes"), "client-1"))
	require.Equal(t, http.StatusBadGateway, rr.Code)

	var state coach.WorkoutState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.Equal(t, "client-1", state.ClientID)
	assert.Equal(t, "pose detection failed", state.ErrorMessage)
	assert.False(t, state.IsConnected)
	// no session is created for a failed frame
	assert.Equal(t, 0, m.store.Len())
}

func TestHandler_AnalyzeFrame_RateLimited(t *testing.T) {
	ctrl := gomock.NewController(t)
	limiter := NewMockrateLimiter(ctrl)
	handler, m := newTestHandler(t, limiter)

	limiter.EXPECT().
		Allow(gomock.Any(), "frame||client-1", redis_rate.PerMinute(60)).
		Return(&redis_rate.Result{Allowed: 0, RetryAfter: time.Second}, nil)

	rr := httptest.NewRecorder()
	handler.HandleAnalyzeFrame(rr, frameRequest(t, "chinup", []byte("jpeg-bytes"), "client-1"))
	assert.Equal(t, http.StatusTooEarly, rr.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.metrics.CounterRateLimitedRequests))
}

func TestHandler_AnalyzeFrame_DebugFramesSaved(t *testing.T) {
	handler, m := newTestHandler(t, nil)

	frame := []byte("jpeg-bytes")
	m.detector.EXPECT().Detect(gomock.Any(), frame).Return(neutralPose(), nil)
	m.motivator.EXPECT().ForRep(0).Return("Ready to start!")
	m.frames.EXPECT().Enabled().Return(true)
	m.frames.EXPECT().
		Save(frame, gomock.Any()).
		DoAndReturn(func(_ []byte, info debugframes.FrameInfo) error {
			assert.Equal(t, "client-1", info.ClientID)
			assert.Equal(t, "chinup", info.Mode)
			assert.Equal(t, 1, info.FrameCount)
			assert.Equal(t, 0, info.RepCount)
			return nil
		})

	rr := httptest.NewRecorder()
	handler.HandleAnalyzeFrame(rr, frameRequest(t, "chinup", frame, "client-1"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandler_Reset(t *testing.T) {
	handler, m := newTestHandler(t, nil)

	entry := m.store.Get("client-1", workout.ModePushup)
	entry.Do(func(s *workout.Session) {
		s.Update(neutralPose())
		s.Update(neutralPose())
	})
	m.motivator.EXPECT().ForRep(0).Return("Ready to start!")

	req := httptest.NewRequest("POST", "/workout/reset", nil)
	req.Header.Set(coach.ClientIDHeader, "client-1")
	rr := httptest.NewRecorder()
	handler.HandleReset(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var state coach.WorkoutState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.Equal(t, "pushup", state.Mode)
	assert.Equal(t, 0, state.RepCount)
	assert.Equal(t, 0, state.FramesSent)

	t.Run("reset with mode change", func(t *testing.T) {
		m.motivator.EXPECT().ForRep(0).Return("Ready to start!")

		req := httptest.NewRequest("POST", "/workout/reset?mode=squat", nil)
		req.Header.Set(coach.ClientIDHeader, "client-1")
		rr := httptest.NewRecorder()
		handler.HandleReset(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var state coach.WorkoutState
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
		assert.Equal(t, "squat", state.Mode)
	})

	t.Run("client id missing", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.HandleReset(rr, httptest.NewRequest("POST", "/workout/reset", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown client", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/workout/reset", nil)
		req.Header.Set(coach.ClientIDHeader, "who-dis")
		rr := httptest.NewRecorder()
		handler.HandleReset(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandler_Status(t *testing.T) {
	handler, m := newTestHandler(t, nil)

	entry := m.store.Get("client-1", workout.ModeChinup)
	entry.Do(func(s *workout.Session) {
		s.Update(neutralPose())
	})

	req := httptest.NewRequest("GET", "/workout/status", nil)
	req.Header.Set(coach.ClientIDHeader, "client-1")
	rr := httptest.NewRecorder()
	handler.HandleStatus(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var status workout.SessionStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, workout.ModeChinup, status.Mode)
	assert.Equal(t, 0, status.Count)
	assert.Equal(t, 1, status.FrameCount)

	t.Run("unknown client", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/workout/status", nil)
		req.Header.Set(coach.ClientIDHeader, "who-dis")
		rr := httptest.NewRecorder()
		handler.HandleStatus(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandler_GetTuning(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	rr := httptest.NewRecorder()
	handler.HandleGetTuning(rr, httptest.NewRequest("GET", "/workout/tuning", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var tuning workout.Tuning
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tuning))
	require.NotNil(t, tuning.PushupUpAngle)
	assert.Equal(t, workout.DefaultPushupUpAngle, *tuning.PushupUpAngle)
	require.NotNil(t, tuning.RepCooldown)
	assert.Equal(t, "500ms", *tuning.RepCooldown)
}

func TestHandler_UpdateTuning(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	body := bytes.NewReader([]byte(`{"pushup_up_angle": 150, "rep_cooldown": "1s"}`))
	rr := httptest.NewRecorder()
	handler.HandleUpdateTuning(rr, httptest.NewRequest("PUT", "/workout/tuning", body))
	require.Equal(t, http.StatusOK, rr.Code)

	var tuning workout.Tuning
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tuning))
	require.NotNil(t, tuning.PushupUpAngle)
	assert.Equal(t, 150.0, *tuning.PushupUpAngle)
	require.NotNil(t, tuning.RepCooldown)
	assert.Equal(t, "1s", *tuning.RepCooldown)
	// untouched fields stay at their defaults
	require.NotNil(t, tuning.SquatUpAngle)
	assert.Equal(t, workout.DefaultSquatUpAngle, *tuning.SquatUpAngle)

	t.Run("rejected update leaves tuning untouched", func(t *testing.T) {
		body := bytes.NewReader([]byte(`{"pushup_up_angle": 90}`))
		rr := httptest.NewRecorder()
		handler.HandleUpdateTuning(rr, httptest.NewRequest("PUT", "/workout/tuning", body))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "pushup_up_angle")

		rr = httptest.NewRecorder()
		handler.HandleGetTuning(rr, httptest.NewRequest("GET", "/workout/tuning", nil))
		var current workout.Tuning
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &current))
		assert.Equal(t, 150.0, *current.PushupUpAngle)
	})

	t.Run("invalid json", func(t *testing.T) {
		body := bytes.NewReader([]byte(`{"pushup_up_angle": `))
		rr := httptest.NewRecorder()
		handler.HandleUpdateTuning(rr, httptest.NewRequest("PUT", "/workout/tuning", body))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
