package workout

import (
	"strconv"
	"strings"
	"time"
)

// SessionExercise is one routine position frozen at session start.
type SessionExercise struct {
	ExerciseID uint   `json:"exercise_id"`
	Name       string `json:"name"`
	Sets       int    `json:"sets"`
	Reps       string `json:"reps"`
	VideoURL   string `json:"video_url,omitempty"`
}

type LogEntry struct {
	ExerciseID uint    `json:"exercise_id"`
	Done       bool    `json:"done"`
	Weight     float64 `json:"weight"`
	Reps       string  `json:"reps"`
}

// Session is an in-progress workout. Logs[i] belongs to Exercises[i].
type Session struct {
	ID           string            `json:"id"`
	UserID       uint              `json:"user_id"`
	RoutineID    uint              `json:"routine_id"`
	RoutineTitle string            `json:"routine_title"`
	StartTime    time.Time         `json:"start_time"`
	Exercises    []SessionExercise `json:"exercises"`
	Logs         []LogEntry        `json:"logs"`
}

// LogUpdate carries the fields to merge into one log entry; nil fields are
// left unchanged.
type LogUpdate struct {
	Done   *bool    `json:"done,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
	Reps   *string  `json:"reps,omitempty"`
}

// Elapsed is now minus the stored start time, never negative.
func (session *Session) Elapsed(now time.Time) time.Duration {
	elapsed := now.Sub(session.StartTime)
	if elapsed < 0 {
		return 0
	}
	return elapsed.Truncate(time.Second)
}

func (session *Session) DoneCount() int {
	done := 0
	for _, entry := range session.Logs {
		if entry.Done {
			done++
		}
	}
	return done
}

func (session *Session) AllDone() bool {
	return session.DoneCount() == len(session.Exercises)
}

// ParseReps reads the leading integer of a reps value such as "10" or
// "8-12", and returns 0 when there is none.
func ParseReps(raw string) int {
	value := strings.TrimSpace(raw)
	end := 0
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	reps, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0
	}
	return reps
}
