package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-redis/redis_rate/v9"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tarofit/fitcoach/internal/debugframes"
	"github.com/tarofit/fitcoach/internal/sessions"
	"github.com/tarofit/fitcoach/internal/telemetry/metrics"
	"github.com/tarofit/fitcoach/internal/telemetry/tracing"
	"github.com/tarofit/fitcoach/internal/workout"
	"github.com/tarofit/fitcoach/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=coach_test

// ClientIDHeader carries the per-client session ID. A client without one
// gets a freshly minted ID back in the response and is expected to send
// it on every following frame.
const ClientIDHeader = "X-FIT-CLIENT-ID"

// frames are jpeg snapshots from a phone camera, anything bigger is junk
const maxFrameBytes = 8 << 20

type poseDetector interface {
	Detect(ctx context.Context, frame []byte) (workout.Keypoints, error)
}

type sessionStore interface {
	Get(clientID string, mode workout.Mode) *sessions.Entry
	Lookup(clientID string) (*sessions.Entry, bool)
	Remove(clientID string)
	Len() int
}

type motivator interface {
	ForRep(repCount int) string
}

type frameStore interface {
	Enabled() bool
	Save(frame []byte, info debugframes.FrameInfo) error
}

type rateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// WorkoutState is the per-frame response sent back to the client.
type WorkoutState struct {
	ClientID        string     `json:"clientId"`
	Mode            string     `json:"mode"`
	RepCount        int        `json:"repCount"`
	Angle           *float64   `json:"angle,omitempty"`
	Position        string     `json:"position,omitempty"`
	Side            string     `json:"side,omitempty"`
	FramesSent      int        `json:"framesSent"`
	Motivation      string     `json:"motivation"`
	IsWorkoutActive bool       `json:"isWorkoutActive"`
	IsConnected     bool       `json:"isConnected"`
	LastRepAt       *time.Time `json:"lastRepAt,omitempty"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
}

type Handler struct {
	detector        poseDetector
	store           sessionStore
	motivator       motivator
	frames          frameStore
	tuning          *TuningBox
	rateLimiter     rateLimiter
	frameRatePerMin int
	metrics         *metrics.Manager
}

type NewHandlerParams struct {
	Detector        poseDetector
	Store           sessionStore
	Motivator       motivator
	Frames          frameStore
	Tuning          *TuningBox
	RateLimiter     rateLimiter
	FrameRatePerMin int
	Metrics         *metrics.Manager
}

func NewHandler(params NewHandlerParams) *Handler {
	if params.Tuning == nil {
		params.Tuning = NewTuningBox(nil)
	}
	return &Handler{
		detector:        params.Detector,
		store:           params.Store,
		motivator:       params.Motivator,
		frames:          params.Frames,
		tuning:          params.Tuning,
		rateLimiter:     params.RateLimiter,
		frameRatePerMin: params.FrameRatePerMin,
		metrics:         params.Metrics,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	workoutRouter := mainRouter.PathPrefix("/workout").Subrouter()
	workoutRouter.HandleFunc("/frame", handler.HandleAnalyzeFrame).Methods("POST", "OPTIONS").Name("analyze-frame")
	workoutRouter.HandleFunc("/reset", handler.HandleReset).Methods("POST", "OPTIONS").Name("reset-session")
	workoutRouter.HandleFunc("/status", handler.HandleStatus).Methods("GET", "OPTIONS").Name("session-status")
	workoutRouter.HandleFunc("/tuning", handler.HandleGetTuning).Methods("GET", "OPTIONS").Name("get-tuning")
	workoutRouter.HandleFunc("/tuning", handler.HandleUpdateTuning).Methods("PUT").Name("update-tuning")
}

func (handler *Handler) HandleAnalyzeFrame(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "coachHandler.analyzeFrame")
	defer span.End()

	clientID := r.Header.Get(ClientIDHeader)
	if clientID == "" {
		clientID = uuid.NewString()
		log.Tracef("frame from new client, minted id: %s", clientID)
	}
	span.SetAttributes(attribute.String("workout.client_id", clientID))
	w.Header().Set(ClientIDHeader, clientID)

	if handler.rateLimiter != nil {
		limitRes, err := handler.rateLimiter.Allow(
			ctx, "frame||"+clientID,
			redis_rate.PerMinute(handler.frameRatePerMin),
		)
		if err != nil {
			span.SetStatus(codes.Error, fmt.Sprintf("rate limiter error: %s", err))
			log.Errorf("analyze frame, rate limiter: %s", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if limitRes.Allowed == 0 {
			handler.metrics.CounterRateLimitedRequests.Inc()
			span.SetStatus(codes.Error, "rate limited")
			http.Error(w, "too many frames", http.StatusTooEarly)
			return
		}
	}

	if err := r.ParseMultipartForm(maxFrameBytes); err != nil {
		http.Error(w, "error, invalid multipart form", http.StatusBadRequest)
		return
	}

	modeStr := r.FormValue("mode")
	if modeStr == "" {
		http.Error(w, "error, mode empty", http.StatusBadRequest)
		return
	}
	mode := workout.ParseMode(modeStr)
	span.SetAttributes(attribute.String("workout.mode", string(mode)))

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "error, frame file missing", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	frame, err := io.ReadAll(io.LimitReader(file, maxFrameBytes+1))
	if err != nil {
		log.Errorf("analyze frame, read frame: %s", err)
		http.Error(w, "error, read frame failed", http.StatusInternalServerError)
		return
	}
	if len(frame) > maxFrameBytes {
		http.Error(w, "error, frame too large", http.StatusRequestEntityTooLarge)
		return
	}

	analysisStart := time.Now()
	keypoints, err := handler.detector.Detect(ctx, frame)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("pose detection failed: %s", err))
		log.Errorf("analyze frame, pose detection: %s", err)
		handler.writeState(w, span, WorkoutState{
			ClientID:     clientID,
			Mode:         string(mode),
			ErrorMessage: "pose detection failed",
		}, http.StatusBadGateway)
		return
	}

	var (
		result      workout.Result
		status      workout.SessionStatus
		countBefore int
	)
	entry := handler.store.Get(clientID, mode)
	entry.Do(func(s *workout.Session) {
		s.SwitchMode(mode)
		countBefore = s.Count()
		result = s.Update(keypoints)
		status = s.Status()
	})

	handler.metrics.HistFrameAnalysisDuration.Observe(time.Since(analysisStart).Seconds())
	handler.metrics.CounterFramesAnalyzed.With(prometheus.Labels{"mode": string(mode)}).Inc()
	handler.metrics.GaugeActiveSessions.Set(float64(handler.store.Len()))
	if keypoints == nil {
		handler.metrics.CounterFramesNoPerson.Inc()
	}
	if result.Position == workout.PositionLowConfidence {
		handler.metrics.CounterFramesLowConfidence.Inc()
	}
	if status.Count > countBefore {
		handler.metrics.CounterRepsCounted.With(prometheus.Labels{"mode": string(mode)}).Inc()
	}

	if handler.frames != nil && handler.frames.Enabled() {
		if err := handler.frames.Save(frame, debugframes.FrameInfo{
			ClientID:   clientID,
			Mode:       string(status.Mode),
			FrameCount: status.FrameCount,
			RepCount:   status.Count,
			Position:   result.Position,
			Angle:      result.Angle,
		}); err != nil {
			log.Errorf("analyze frame, save debug frame: %s", err)
		}
	}

	handler.writeState(w, span, WorkoutState{
		ClientID:        clientID,
		Mode:            string(status.Mode),
		RepCount:        status.Count,
		Angle:           result.Angle,
		Position:        result.Position,
		Side:            result.Side,
		FramesSent:      status.FrameCount,
		Motivation:      handler.motivator.ForRep(status.Count),
		IsWorkoutActive: keypoints.HasPerson(),
		IsConnected:     true,
		LastRepAt:       status.LastRepAt,
	}, http.StatusOK)
}

func (handler *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "coachHandler.reset")
	defer span.End()

	clientID := r.Header.Get(ClientIDHeader)
	if clientID == "" {
		http.Error(w, "error, client id empty", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("workout.client_id", clientID))

	entry, ok := handler.store.Lookup(clientID)
	if !ok {
		http.Error(w, "error, session not found", http.StatusNotFound)
		return
	}

	// an optional mode form value or query param switches the exercise
	modeStr := r.FormValue("mode")

	var status workout.SessionStatus
	entry.Do(func(s *workout.Session) {
		if modeStr != "" {
			s.SwitchMode(workout.ParseMode(modeStr))
		}
		s.Reset()
		status = s.Status()
	})

	log.Debugf("session reset for client %s, mode %s", clientID, status.Mode)
	handler.writeState(w, span, WorkoutState{
		ClientID:    clientID,
		Mode:        string(status.Mode),
		RepCount:    status.Count,
		FramesSent:  status.FrameCount,
		Motivation:  handler.motivator.ForRep(status.Count),
		IsConnected: true,
	}, http.StatusOK)
}

func (handler *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "coachHandler.status")
	defer span.End()

	clientID := r.Header.Get(ClientIDHeader)
	if clientID == "" {
		http.Error(w, "error, client id empty", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("workout.client_id", clientID))

	entry, ok := handler.store.Lookup(clientID)
	if !ok {
		http.Error(w, "error, session not found", http.StatusNotFound)
		return
	}

	var status workout.SessionStatus
	entry.Do(func(s *workout.Session) {
		status = s.Status()
	})

	statusBytes, err := json.Marshal(status)
	if err != nil {
		log.Errorf("session status, marshal: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	span.SetStatus(codes.Ok, fmt.Sprintf("status for client %s", clientID))
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, statusBytes)
}

func (handler *Handler) HandleGetTuning(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "coachHandler.getTuning")
	defer span.End()

	effective := handler.tuning.Effective()
	tuningBytes, err := json.Marshal(effective)
	if err != nil {
		log.Errorf("get tuning, marshal: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	span.SetStatus(codes.Ok, "tuning returned")
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, tuningBytes)
}

func (handler *Handler) HandleUpdateTuning(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "coachHandler.updateTuning")
	defer span.End()

	var partial workout.Tuning
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		http.Error(w, "error, invalid tuning json", http.StatusBadRequest)
		return
	}

	effective, err := handler.tuning.Update(&partial)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("tuning rejected: %s", err))
		http.Error(w, fmt.Sprintf("error, %s", err), http.StatusBadRequest)
		return
	}

	tuningBytes, err := json.Marshal(effective)
	if err != nil {
		log.Errorf("update tuning, marshal: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Infof("counter tuning updated: %s", tuningBytes)
	span.SetStatus(codes.Ok, "tuning updated")
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, tuningBytes)
}

func (handler *Handler) writeState(
	w http.ResponseWriter,
	span trace.Span,
	state WorkoutState,
	statusCode int,
) {
	stateBytes, err := json.Marshal(state)
	if err != nil {
		log.Errorf("marshal workout state: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if statusCode == http.StatusOK {
		span.SetStatus(codes.Ok, fmt.Sprintf("client %s at %d reps", state.ClientID, state.RepCount))
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, stateBytes, statusCode)
}
