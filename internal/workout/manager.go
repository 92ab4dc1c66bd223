package workout

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/terraincognita07/daybook/internal/metrics"
	"github.com/terraincognita07/daybook/internal/models"
)

var (
	ErrNoActiveSession      = errors.New("no active workout")
	ErrSessionActive        = errors.New("a workout is already in progress")
	ErrRoutineEmpty         = errors.New("routine has no exercises")
	ErrLogIndexOutOfRange   = errors.New("exercise position out of range")
	ErrConfirmationRequired = errors.New("confirmation required")
)

const (
	promptCancel      = "Cancel this workout? Progress will be lost."
	promptFinish      = "Finish the workout and save your progress?"
	promptFinishEarly = "Some exercises are still pending (%d/%d done). Finish anyway?"
)

type RoutineLoader interface {
	RoutineDetails(userID uint, routineID uint) (models.Routine, error)
}

type Recorder interface {
	RecordWorkout(userID uint, workout *models.Workout, logs []models.WorkoutLog) error
	UpdateLastWeights(userID uint, weights map[uint]float64) error
}

// Manager drives the per-user session lifecycle. Every change is written to
// the store before it returns.
type Manager struct {
	store    Store
	routines RoutineLoader
	recorder Recorder
	logger   *log.Logger
	now      func() time.Time

	mu         sync.Mutex
	background sync.WaitGroup
}

func NewManager(store Store, routines RoutineLoader, recorder Recorder, logger *log.Logger) *Manager {
	return &Manager{
		store:    store,
		routines: routines,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Active returns the user's persisted session, or nil when idle.
func (manager *Manager) Active(userID uint) (*Session, error) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	return manager.load(userID)
}

func (manager *Manager) Start(userID uint, routineID uint) (*Session, error) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	current, err := manager.load(userID)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return nil, ErrSessionActive
	}

	routine, err := manager.routines.RoutineDetails(userID, routineID)
	if err != nil {
		return nil, err
	}
	if len(routine.Exercises) == 0 {
		return nil, ErrRoutineEmpty
	}

	session := &Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		RoutineID:    routine.ID,
		RoutineTitle: routine.Name,
		StartTime:    manager.now().UTC(),
		Exercises:    make([]SessionExercise, 0, len(routine.Exercises)),
		Logs:         make([]LogEntry, 0, len(routine.Exercises)),
	}
	for _, link := range routine.Exercises {
		exercise := SessionExercise{ExerciseID: link.ExerciseID, Sets: link.Sets, Reps: link.Reps}
		lastWeight := 0.0
		if link.Exercise != nil {
			exercise.Name = link.Exercise.Name
			exercise.VideoURL = link.Exercise.VideoURL
			lastWeight = link.Exercise.LastWeight
		}
		if exercise.Reps == "" {
			exercise.Reps = models.DefaultRoutineReps
		}
		session.Exercises = append(session.Exercises, exercise)
		session.Logs = append(session.Logs, LogEntry{
			ExerciseID: link.ExerciseID,
			Weight:     lastWeight,
			Reps:       exercise.Reps,
		})
	}

	if err := manager.save(session); err != nil {
		return nil, err
	}
	manager.logger.Info("workout started", "user_id", userID, "routine_id", routine.ID, "exercises", len(session.Exercises))
	return session, nil
}

func (manager *Manager) UpdateLog(userID uint, index int, update LogUpdate) (*Session, error) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	session, err := manager.load(userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoActiveSession
	}
	if index < 0 || index >= len(session.Logs) {
		return nil, ErrLogIndexOutOfRange
	}

	entry := &session.Logs[index]
	if update.Done != nil {
		entry.Done = *update.Done
	}
	if update.Weight != nil {
		entry.Weight = *update.Weight
	}
	if update.Reps != nil {
		entry.Reps = *update.Reps
	}

	if err := manager.save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Elapsed reports the running time of the user's session, recomputed from
// the persisted start time.
func (manager *Manager) Elapsed(userID uint) (time.Duration, error) {
	session, err := manager.Active(userID)
	if err != nil {
		return 0, err
	}
	if session == nil {
		return 0, ErrNoActiveSession
	}
	return session.Elapsed(manager.now()), nil
}

func CancelPrompt() string {
	return promptCancel
}

// FinishPrompt warns when not every exercise is marked done.
func FinishPrompt(session *Session) string {
	if session == nil || session.AllDone() {
		return promptFinish
	}
	return fmt.Sprintf(promptFinishEarly, session.DoneCount(), len(session.Exercises))
}

func (manager *Manager) Cancel(userID uint, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	manager.mu.Lock()
	defer manager.mu.Unlock()

	session, err := manager.load(userID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrNoActiveSession
	}
	if err := manager.store.Delete(SessionKey(userID)); err != nil {
		return err
	}
	manager.logger.Info("workout cancelled", "user_id", userID, "session", session.ID)
	return nil
}

// Finish writes the workout header and one log per exercise position, then
// clears the session. Last-weight updates run afterwards in the background
// and never fail the finish.
func (manager *Manager) Finish(userID uint, confirmed bool) (models.Workout, error) {
	if !confirmed {
		return models.Workout{}, ErrConfirmationRequired
	}
	manager.mu.Lock()
	defer manager.mu.Unlock()

	session, err := manager.load(userID)
	if err != nil {
		return models.Workout{}, err
	}
	if session == nil {
		return models.Workout{}, ErrNoActiveSession
	}

	end := manager.now().UTC()
	elapsed := session.Elapsed(end)
	record := models.Workout{
		RoutineTitle:    session.RoutineTitle,
		StartTime:       session.StartTime.UTC(),
		EndTime:         &end,
		DurationSeconds: max(int64(elapsed/time.Second), 1),
	}

	logs := make([]models.WorkoutLog, 0, len(session.Logs))
	weights := make(map[uint]float64)
	for index, entry := range session.Logs {
		logs = append(logs, models.WorkoutLog{
			ExerciseID:   entry.ExerciseID,
			ExerciseName: session.Exercises[index].Name,
			Weight:       entry.Weight,
			Reps:         ParseReps(entry.Reps),
		})
		if entry.Weight > 0 {
			weights[entry.ExerciseID] = entry.Weight
		}
	}

	if err := manager.recorder.RecordWorkout(userID, &record, logs); err != nil {
		manager.logger.Error("workout save failed", "user_id", userID, "session", session.ID, "err", err)
		return models.Workout{}, err
	}
	if err := manager.store.Delete(SessionKey(userID)); err != nil {
		manager.logger.Warn("workout saved but session not cleared", "user_id", userID, "err", err)
	}
	metrics.WorkoutFinished()
	manager.logger.Info("workout finished", "user_id", userID, "workout_id", record.ID, "duration", elapsed)

	if len(weights) > 0 {
		manager.background.Add(1)
		go manager.updateLastWeights(userID, weights)
	}
	return record, nil
}

func (manager *Manager) updateLastWeights(userID uint, weights map[uint]float64) {
	defer manager.background.Done()
	if err := manager.recorder.UpdateLastWeights(userID, weights); err != nil {
		metrics.BestEffortFailure("update_last_weight")
		manager.logger.Warn("last weight update failed", "user_id", userID, "err", err)
	}
}

// Wait blocks until background weight updates have finished.
func (manager *Manager) Wait() {
	manager.background.Wait()
}

func (manager *Manager) load(userID uint) (*Session, error) {
	raw, err := manager.store.Load(SessionKey(userID))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	session := &Session{}
	if err := json.Unmarshal(raw, session); err != nil {
		manager.logger.Warn("discarding unreadable workout session", "user_id", userID, "err", err)
		return nil, nil
	}
	if len(session.Logs) != len(session.Exercises) {
		manager.logger.Warn("discarding inconsistent workout session", "user_id", userID,
			"logs", len(session.Logs), "exercises", len(session.Exercises))
		return nil, nil
	}
	return session, nil
}

func (manager *Manager) save(session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return manager.store.Save(SessionKey(session.UserID), raw)
}
