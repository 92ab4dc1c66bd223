package models

import "time"

const (
	DefaultRoutineSets = 3
	DefaultRoutineReps = "10"

	// ManualAdjustmentTitle names the zero-duration workout that records
	// weight edits made outside a session.
	ManualAdjustmentTitle = "Manual adjustment"
)

type Exercise struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"-"`
	Name       string    `gorm:"not null" json:"name"`
	VideoURL   string    `json:"video_url,omitempty"`
	LastWeight float64   `gorm:"not null" json:"last_weight"`
	Tags       []string  `gorm:"serializer:json" json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
}

type Routine struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"not null;index" json:"-"`
	Name      string            `gorm:"not null" json:"name"`
	CreatedAt time.Time         `json:"created_at"`
	Exercises []RoutineExercise `gorm:"foreignKey:RoutineID" json:"exercises,omitempty"`
}

type RoutineExercise struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RoutineID  uint      `gorm:"not null;index" json:"routine_id"`
	ExerciseID uint      `gorm:"not null" json:"exercise_id"`
	OrderIndex int       `gorm:"not null" json:"order_index"`
	Sets       int       `gorm:"not null" json:"sets"`
	Reps       string    `gorm:"not null" json:"reps"`
	Exercise   *Exercise `gorm:"foreignKey:ExerciseID" json:"exercise,omitempty"`
}

type Workout struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	UserID          uint         `gorm:"not null;index" json:"-"`
	RoutineTitle    string       `gorm:"not null" json:"routine_title"`
	StartTime       time.Time    `gorm:"not null" json:"start_time"`
	EndTime         *time.Time   `json:"end_time,omitempty"`
	DurationSeconds int64        `gorm:"not null" json:"duration_seconds"`
	CreatedAt       time.Time    `json:"created_at"`
	Logs            []WorkoutLog `gorm:"foreignKey:WorkoutID" json:"logs,omitempty"`
}

type WorkoutLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	WorkoutID    uint      `gorm:"not null;index" json:"workout_id"`
	ExerciseID   uint      `gorm:"not null;index" json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	Weight       float64   `gorm:"not null" json:"weight"`
	Reps         int       `gorm:"not null" json:"reps"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserProgress struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	Date      string    `gorm:"not null" json:"date"`
	Weight    float64   `gorm:"not null" json:"weight"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}
