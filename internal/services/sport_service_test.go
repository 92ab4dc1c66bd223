package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/daybook/internal/models"
	"gorm.io/gorm"
)

type exerciseRepositoryStub struct {
	exercises     map[uint]models.Exercise
	nextID        uint
	weightUpdates map[uint]float64
	failWeightFor uint
}

func newExerciseRepositoryStub(exercises ...models.Exercise) *exerciseRepositoryStub {
	stub := &exerciseRepositoryStub{exercises: map[uint]models.Exercise{}, nextID: 100, weightUpdates: map[uint]float64{}}
	for _, exercise := range exercises {
		stub.exercises[exercise.ID] = exercise
	}
	return stub
}

func (stub *exerciseRepositoryStub) ListByUser(userID uint) ([]models.Exercise, error) {
	result := make([]models.Exercise, 0)
	for _, exercise := range stub.exercises {
		if exercise.UserID == userID {
			result = append(result, exercise)
		}
	}
	return result, nil
}

func (stub *exerciseRepositoryStub) ListByIDs(userID uint, exerciseIDs []uint) ([]models.Exercise, error) {
	result := make([]models.Exercise, 0)
	for _, id := range exerciseIDs {
		if exercise, ok := stub.exercises[id]; ok && exercise.UserID == userID {
			result = append(result, exercise)
		}
	}
	return result, nil
}

func (stub *exerciseRepositoryStub) FindByIDForUser(userID uint, exerciseID uint) (models.Exercise, error) {
	exercise, ok := stub.exercises[exerciseID]
	if !ok || exercise.UserID != userID {
		return models.Exercise{}, gorm.ErrRecordNotFound
	}
	return exercise, nil
}

func (stub *exerciseRepositoryStub) Create(exercise *models.Exercise) error {
	stub.nextID++
	exercise.ID = stub.nextID
	stub.exercises[exercise.ID] = *exercise
	return nil
}

func (stub *exerciseRepositoryStub) Save(exercise *models.Exercise) error {
	stub.exercises[exercise.ID] = *exercise
	return nil
}

func (stub *exerciseRepositoryStub) UpdateLastWeight(userID uint, exerciseID uint, weight float64) error {
	if exerciseID == stub.failWeightFor {
		return errors.New("disk full")
	}
	stub.weightUpdates[exerciseID] = weight
	return nil
}

func (stub *exerciseRepositoryStub) Delete(userID uint, exerciseID uint) (bool, error) {
	if _, ok := stub.exercises[exerciseID]; !ok {
		return false, nil
	}
	delete(stub.exercises, exerciseID)
	return true, nil
}

func (stub *exerciseRepositoryStub) ListLogs(userID uint, exerciseID uint, ascending bool) ([]models.WorkoutLog, error) {
	return []models.WorkoutLog{{ExerciseID: exerciseID, Weight: 50, Reps: 5}}, nil
}

type routineRepositoryStub struct {
	created      *models.Routine
	createdLinks []models.RoutineExercise
	replaced     bool
}

func (stub *routineRepositoryStub) ListByUser(userID uint) ([]models.Routine, error) {
	return nil, nil
}

func (stub *routineRepositoryStub) FindWithExercises(userID uint, routineID uint) (models.Routine, error) {
	return models.Routine{}, gorm.ErrRecordNotFound
}

func (stub *routineRepositoryStub) CreateWithExercises(routine *models.Routine, links []models.RoutineExercise) error {
	routine.ID = 7
	stub.created = routine
	stub.createdLinks = links
	return nil
}

func (stub *routineRepositoryStub) ReplaceExercises(userID uint, routineID uint, name string, links []models.RoutineExercise) (bool, error) {
	stub.replaced = true
	return routineID == 7, nil
}

func (stub *routineRepositoryStub) RemoveExercise(userID uint, linkID uint) (bool, error) {
	return false, nil
}

func (stub *routineRepositoryStub) Delete(userID uint, routineID uint) (bool, error) {
	return routineID == 7, nil
}

type workoutRepositoryStub struct {
	adjustments []float64
	adjustedDay time.Time
	recorded    []models.WorkoutLog
	failCreate  bool
}

func (stub *workoutRepositoryStub) CreateWithLogs(workout *models.Workout, logs []models.WorkoutLog) error {
	if stub.failCreate {
		return errors.New("tx aborted")
	}
	workout.ID = 1
	stub.recorded = logs
	return nil
}

func (stub *workoutRepositoryStub) AppendManualAdjustment(userID uint, exerciseID uint, exerciseName string, weight float64, dayStart time.Time, dayEnd time.Time, now time.Time) error {
	stub.adjustments = append(stub.adjustments, weight)
	stub.adjustedDay = dayStart
	return nil
}

func (stub *workoutRepositoryStub) ListRecentByUser(userID uint, limit int) ([]models.Workout, error) {
	return nil, nil
}

func (stub *workoutRepositoryStub) CountSessions(userID uint) (int64, error) {
	return 0, nil
}

type mediaStoreStub struct {
	folder string
	name   string
	body   string
	err    error
}

func (stub *mediaStoreStub) Put(ctx context.Context, folder string, filename string, body io.Reader) (string, error) {
	if stub.err != nil {
		return "", stub.err
	}
	raw, _ := io.ReadAll(body)
	stub.folder = folder
	stub.name = filename
	stub.body = string(raw)
	return "/media/" + folder + "/" + filename, nil
}

func newSportServiceForTest(exercises *exerciseRepositoryStub, routines *routineRepositoryStub, workouts *workoutRepositoryStub, media MediaStore) *SportService {
	return NewSportService(exercises, routines, workouts, media, time.UTC)
}

func floatPtr(value float64) *float64 {
	return &value
}

func TestCreateExerciseUploadsMediaAndNormalizesTags(t *testing.T) {
	media := &mediaStoreStub{}
	exercises := newExerciseRepositoryStub()
	service := newSportServiceForTest(exercises, &routineRepositoryStub{}, &workoutRepositoryStub{}, media)

	exercise, err := service.CreateExercise(context.Background(), 1, ExerciseInput{
		Name:   "  Squat ",
		Tags:   []string{"legs", " Legs", "", "compound"},
		Upload: &MediaUpload{Filename: "squat.mp4", Body: strings.NewReader("video")},
	})
	if err != nil {
		t.Fatalf("create exercise: %v", err)
	}
	if exercise.Name != "Squat" {
		t.Fatalf("expected trimmed name, got %q", exercise.Name)
	}
	if exercise.VideoURL != "/media/exercises/squat.mp4" || media.body != "video" {
		t.Fatalf("expected uploaded media url, got %q (body %q)", exercise.VideoURL, media.body)
	}
	if len(exercise.Tags) != 2 || exercise.Tags[0] != "legs" || exercise.Tags[1] != "compound" {
		t.Fatalf("unexpected tags %#v", exercise.Tags)
	}
}

func TestCreateExerciseRejectsInvalidInput(t *testing.T) {
	service := newSportServiceForTest(newExerciseRepositoryStub(), &routineRepositoryStub{}, &workoutRepositoryStub{}, nil)

	if _, err := service.CreateExercise(context.Background(), 1, ExerciseInput{Name: " "}); !errors.Is(err, ErrExerciseNameRequired) {
		t.Fatalf("expected ErrExerciseNameRequired, got %v", err)
	}
	if _, err := service.CreateExercise(context.Background(), 1, ExerciseInput{Name: "Row", LastWeight: floatPtr(-1)}); !errors.Is(err, ErrExerciseWeightInvalid) {
		t.Fatalf("expected ErrExerciseWeightInvalid, got %v", err)
	}
	upload := &MediaUpload{Filename: "a.png", Body: strings.NewReader("x")}
	if _, err := service.CreateExercise(context.Background(), 1, ExerciseInput{Name: "Row", Upload: upload}); !errors.Is(err, ErrMediaUploadFailed) {
		t.Fatalf("expected ErrMediaUploadFailed without a media store, got %v", err)
	}
}

func TestUpdateExerciseRecordsManualAdjustmentOnlyWhenWeightChanges(t *testing.T) {
	exercises := newExerciseRepositoryStub(models.Exercise{ID: 5, UserID: 1, Name: "Bench", LastWeight: 60, VideoURL: "/media/old.mp4"})
	workouts := &workoutRepositoryStub{}
	service := newSportServiceForTest(exercises, &routineRepositoryStub{}, workouts, nil)
	now := time.Date(2025, time.March, 10, 15, 30, 0, 0, time.UTC)

	updated, err := service.UpdateExercise(context.Background(), 1, 5, ExerciseInput{Name: "Bench press", LastWeight: floatPtr(60)}, now)
	if err != nil {
		t.Fatalf("update exercise: %v", err)
	}
	if len(workouts.adjustments) != 0 {
		t.Fatalf("expected no adjustment for unchanged weight, got %v", workouts.adjustments)
	}
	if updated.VideoURL != "/media/old.mp4" {
		t.Fatalf("expected existing video kept, got %q", updated.VideoURL)
	}

	updated, err = service.UpdateExercise(context.Background(), 1, 5, ExerciseInput{Name: "Bench press", LastWeight: floatPtr(62.5)}, now)
	if err != nil {
		t.Fatalf("update exercise weight: %v", err)
	}
	if len(workouts.adjustments) != 1 || workouts.adjustments[0] != 62.5 {
		t.Fatalf("expected one manual adjustment of 62.5, got %v", workouts.adjustments)
	}
	if !workouts.adjustedDay.Equal(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected adjustment on today's workout, got %s", workouts.adjustedDay)
	}
	if updated.LastWeight != 62.5 || exercises.exercises[5].LastWeight != 62.5 {
		t.Fatalf("expected stored weight 62.5, got %v", exercises.exercises[5].LastWeight)
	}

	if _, err := service.UpdateExercise(context.Background(), 2, 5, ExerciseInput{Name: "x"}, now); !errors.Is(err, ErrExerciseNotFound) {
		t.Fatalf("expected ErrExerciseNotFound for other user, got %v", err)
	}
}

func TestCreateRoutineAppliesDefaultsAndRejectsForeignExercises(t *testing.T) {
	exercises := newExerciseRepositoryStub(
		models.Exercise{ID: 1, UserID: 1, Name: "Squat"},
		models.Exercise{ID: 2, UserID: 1, Name: "Row"},
		models.Exercise{ID: 3, UserID: 2, Name: "Other"},
	)
	routines := &routineRepositoryStub{}
	service := newSportServiceForTest(exercises, routines, &workoutRepositoryStub{}, nil)

	routine, err := service.CreateRoutine(1, "Leg day", []RoutineItem{
		{ExerciseID: 2, Sets: 4, Reps: "8-12"},
		{ExerciseID: 1},
	})
	if err != nil {
		t.Fatalf("create routine: %v", err)
	}
	if routine.ID != 7 || len(routines.createdLinks) != 2 {
		t.Fatalf("unexpected routine %#v links %#v", routine, routines.createdLinks)
	}
	if routines.createdLinks[0].ExerciseID != 2 || routines.createdLinks[0].Reps != "8-12" {
		t.Fatalf("expected submitted order kept, got %#v", routines.createdLinks[0])
	}
	if routines.createdLinks[1].Sets != models.DefaultRoutineSets || routines.createdLinks[1].Reps != models.DefaultRoutineReps {
		t.Fatalf("expected default sets and reps, got %#v", routines.createdLinks[1])
	}

	if _, err := service.CreateRoutine(1, "Mixed", []RoutineItem{{ExerciseID: 3}}); !errors.Is(err, ErrRoutineExerciseUnknown) {
		t.Fatalf("expected ErrRoutineExerciseUnknown, got %v", err)
	}
	if err := service.UpdateRoutine(1, 99, "Missing", nil); !errors.Is(err, ErrRoutineNotFound) {
		t.Fatalf("expected ErrRoutineNotFound, got %v", err)
	}
	if _, err := service.RoutineDetails(1, 99); !errors.Is(err, ErrRoutineNotFound) {
		t.Fatalf("expected ErrRoutineNotFound for details, got %v", err)
	}
}

func TestRecordWorkoutRequiresLogs(t *testing.T) {
	workouts := &workoutRepositoryStub{}
	service := newSportServiceForTest(newExerciseRepositoryStub(), &routineRepositoryStub{}, workouts, nil)

	if err := service.RecordWorkout(1, &models.Workout{}, nil); !errors.Is(err, ErrWorkoutEmpty) {
		t.Fatalf("expected ErrWorkoutEmpty, got %v", err)
	}

	workout := &models.Workout{StartTime: time.Now().UTC(), DurationSeconds: 60}
	if err := service.RecordWorkout(1, workout, []models.WorkoutLog{{ExerciseID: 1, Weight: 20, Reps: 8}}); err != nil {
		t.Fatalf("record workout: %v", err)
	}
	if workout.UserID != 1 || workout.RoutineTitle != "Workout" || len(workouts.recorded) != 1 {
		t.Fatalf("unexpected recorded workout %#v", workout)
	}
}

func TestUpdateLastWeightsJoinsFailures(t *testing.T) {
	exercises := newExerciseRepositoryStub()
	exercises.failWeightFor = 2
	service := newSportServiceForTest(exercises, &routineRepositoryStub{}, &workoutRepositoryStub{}, nil)

	err := service.UpdateLastWeights(1, map[uint]float64{1: 40, 2: 50, 3: 60})
	if err == nil || !strings.Contains(err.Error(), "exercise 2") {
		t.Fatalf("expected failure for exercise 2, got %v", err)
	}
	if exercises.weightUpdates[1] != 40 || exercises.weightUpdates[3] != 60 {
		t.Fatalf("expected other exercises updated, got %#v", exercises.weightUpdates)
	}
}
