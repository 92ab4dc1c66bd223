package workout

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/daybook/internal/logger"
	"github.com/terraincognita07/daybook/internal/models"
)

type routineLoaderStub struct {
	routine models.Routine
}

func (stub *routineLoaderStub) RoutineDetails(userID uint, routineID uint) (models.Routine, error) {
	if routineID != stub.routine.ID {
		return models.Routine{}, errors.New("routine not found")
	}
	return stub.routine, nil
}

type recorderStub struct {
	mu        sync.Mutex
	workout   *models.Workout
	logs      []models.WorkoutLog
	recordErr error
	weightErr error
	weights   map[uint]float64
}

func (stub *recorderStub) RecordWorkout(userID uint, workout *models.Workout, logs []models.WorkoutLog) error {
	if stub.recordErr != nil {
		return stub.recordErr
	}
	workout.ID = 11
	workout.UserID = userID
	stub.workout = workout
	stub.logs = logs
	return nil
}

func (stub *recorderStub) UpdateLastWeights(userID uint, weights map[uint]float64) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.weights = weights
	return stub.weightErr
}

func testRoutine() models.Routine {
	return models.Routine{
		ID:   3,
		Name: "Upper",
		Exercises: []models.RoutineExercise{
			{ExerciseID: 1, Sets: 3, Reps: "8-12", Exercise: &models.Exercise{ID: 1, Name: "Bench", LastWeight: 60}},
			{ExerciseID: 2, Sets: 4, Reps: "10", Exercise: &models.Exercise{ID: 2, Name: "Row", LastWeight: 0}},
		},
	}
}

type clock struct {
	current time.Time
}

func (c *clock) now() time.Time {
	return c.current
}

func newTestManager(t *testing.T, store Store, recorder *recorderStub) (*Manager, *clock) {
	t.Helper()
	testClock := &clock{current: time.Date(2025, time.May, 5, 18, 0, 0, 0, time.UTC)}
	manager := NewManager(store, &routineLoaderStub{routine: testRoutine()}, recorder, logger.Discard())
	manager.now = testClock.now
	return manager, testClock
}

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestStartSeedsLogsFromRoutine(t *testing.T) {
	manager, _ := newTestManager(t, newFileStore(t), &recorderStub{})

	session, err := manager.Start(1, 3)
	require.NoError(t, err)
	require.Len(t, session.Logs, 2)
	assert.Equal(t, LogEntry{ExerciseID: 1, Weight: 60, Reps: "8-12"}, session.Logs[0])
	assert.Equal(t, LogEntry{ExerciseID: 2, Weight: 0, Reps: "10"}, session.Logs[1])
	assert.Equal(t, "Upper", session.RoutineTitle)

	_, err = manager.Start(1, 3)
	assert.ErrorIs(t, err, ErrSessionActive)
}

func TestStartRejectsEmptyRoutine(t *testing.T) {
	manager := NewManager(newFileStore(t), &routineLoaderStub{routine: models.Routine{ID: 9}}, &recorderStub{}, logger.Discard())

	_, err := manager.Start(1, 9)
	assert.ErrorIs(t, err, ErrRoutineEmpty)
}

func TestElapsedSurvivesReload(t *testing.T) {
	store := newFileStore(t)
	manager, testClock := newTestManager(t, store, &recorderStub{})
	_, err := manager.Start(1, 3)
	require.NoError(t, err)

	reloaded, reloadedClock := newTestManager(t, store, &recorderStub{})
	reloadedClock.current = testClock.current.Add(95 * time.Second)

	elapsed, err := reloaded.Elapsed(1)
	require.NoError(t, err)
	assert.Equal(t, 95*time.Second, elapsed)

	reloadedClock.current = testClock.current.Add(-time.Minute)
	elapsed, err = reloaded.Elapsed(1)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), elapsed, "clock skew must not yield negative time")
}

func TestUpdateLogMergesPartialFields(t *testing.T) {
	manager, _ := newTestManager(t, newFileStore(t), &recorderStub{})
	_, err := manager.Start(1, 3)
	require.NoError(t, err)

	done := true
	weight := 65.0
	session, err := manager.UpdateLog(1, 0, LogUpdate{Done: &done, Weight: &weight})
	require.NoError(t, err)
	assert.Equal(t, LogEntry{ExerciseID: 1, Done: true, Weight: 65, Reps: "8-12"}, session.Logs[0])

	_, err = manager.UpdateLog(1, 5, LogUpdate{Done: &done})
	assert.ErrorIs(t, err, ErrLogIndexOutOfRange)
	_, err = manager.UpdateLog(2, 0, LogUpdate{Done: &done})
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestCancelRequiresConfirmationAndClearsSession(t *testing.T) {
	store := newFileStore(t)
	manager, _ := newTestManager(t, store, &recorderStub{})
	_, err := manager.Start(1, 3)
	require.NoError(t, err)

	assert.ErrorIs(t, manager.Cancel(1, false), ErrConfirmationRequired)
	active, err := manager.Active(1)
	require.NoError(t, err)
	assert.NotNil(t, active)

	require.NoError(t, manager.Cancel(1, true))
	reloaded, _ := newTestManager(t, store, &recorderStub{})
	active, err = reloaded.Active(1)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestFinishWithNothingDoneStillSavesEveryPosition(t *testing.T) {
	recorder := &recorderStub{}
	manager, testClock := newTestManager(t, newFileStore(t), recorder)
	session, err := manager.Start(1, 3)
	require.NoError(t, err)
	assert.Equal(t, "Some exercises are still pending (0/2 done). Finish anyway?", FinishPrompt(session))

	_, err = manager.Finish(1, false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)

	testClock.current = testClock.current.Add(45 * time.Minute)
	workout, err := manager.Finish(1, true)
	require.NoError(t, err)
	manager.Wait()

	assert.Equal(t, int64(45*60), workout.DurationSeconds)
	require.NotNil(t, workout.EndTime)
	require.Len(t, recorder.logs, len(session.Exercises))
	assert.Equal(t, 8, recorder.logs[0].Reps)
	assert.Equal(t, "Bench", recorder.logs[0].ExerciseName)
	assert.Equal(t, map[uint]float64{1: 60}, recorder.weights)

	active, err := manager.Active(1)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestFinishDiscardsSessionWithMismatchedLogs(t *testing.T) {
	store := newFileStore(t)
	recorder := &recorderStub{}
	manager, _ := newTestManager(t, store, recorder)
	_, err := manager.Start(1, 3)
	require.NoError(t, err)

	raw, err := store.Load(SessionKey(1))
	require.NoError(t, err)
	session := &Session{}
	require.NoError(t, json.Unmarshal(raw, session))
	session.Logs = append(session.Logs, LogEntry{ExerciseID: 99, Reps: "5"})
	raw, err = json.Marshal(session)
	require.NoError(t, err)
	require.NoError(t, store.Save(SessionKey(1), raw))

	require.NotPanics(t, func() {
		_, err = manager.Finish(1, true)
	})
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Nil(t, recorder.workout)

	active, err := manager.Active(1)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestFinishKeepsSessionWhenSaveFails(t *testing.T) {
	recorder := &recorderStub{recordErr: errors.New("database is locked")}
	manager, _ := newTestManager(t, newFileStore(t), recorder)
	_, err := manager.Start(1, 3)
	require.NoError(t, err)

	_, err = manager.Finish(1, true)
	require.Error(t, err)

	active, err := manager.Active(1)
	require.NoError(t, err)
	assert.NotNil(t, active)
}

func TestFinishIgnoresWeightUpdateFailure(t *testing.T) {
	recorder := &recorderStub{weightErr: errors.New("exercise 1: disk full")}
	manager, _ := newTestManager(t, newFileStore(t), recorder)
	_, err := manager.Start(1, 3)
	require.NoError(t, err)

	_, err = manager.Finish(1, true)
	require.NoError(t, err)
	manager.Wait()
}

func TestFinishPromptWhenAllDone(t *testing.T) {
	session := &Session{
		Exercises: []SessionExercise{{ExerciseID: 1}},
		Logs:      []LogEntry{{ExerciseID: 1, Done: true}},
	}
	assert.Equal(t, "Finish the workout and save your progress?", FinishPrompt(session))
	assert.Equal(t, "Cancel this workout? Progress will be lost.", CancelPrompt())
}

func TestParseReps(t *testing.T) {
	cases := map[string]int{
		"10":    10,
		" 12 ":  12,
		"8-12":  8,
		"AMRAP": 0,
		"":      0,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseReps(raw), "reps %q", raw)
	}
}
