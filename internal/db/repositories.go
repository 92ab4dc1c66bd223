package db

import "gorm.io/gorm"

type Repositories struct {
	Users            *UserRepository
	Habits           *HabitRepository
	Tasks            *TaskRepository
	Notes            *NoteRepository
	CalendarSettings *CalendarSettingRepository
	Exercises        *ExerciseRepository
	Routines         *RoutineRepository
	Workouts         *WorkoutRepository
	Progress         *ProgressRepository
	AppSettings      *AppSettingsRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:            NewUserRepository(database),
		Habits:           NewHabitRepository(database),
		Tasks:            NewTaskRepository(database),
		Notes:            NewNoteRepository(database),
		CalendarSettings: NewCalendarSettingRepository(database),
		Exercises:        NewExerciseRepository(database),
		Routines:         NewRoutineRepository(database),
		Workouts:         NewWorkoutRepository(database),
		Progress:         NewProgressRepository(database),
		AppSettings:      NewAppSettingsRepository(database),
	}
}
