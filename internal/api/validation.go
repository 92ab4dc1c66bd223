package api

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	dateKeyRegex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

type credentialsInput struct {
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	RememberMe      bool   `json:"remember_me" form:"remember_me"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password" form:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" form:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required"`
}

type habitInput struct {
	Name      string `json:"name" validate:"required,max=120"`
	Frequency []int  `json:"frequency" validate:"required,min=1,max=7,dive,min=1,max=7"`
	Color     string `json:"color" validate:"omitempty,hexcolor6"`
}

type habitPatchInput struct {
	Name      *string `json:"name" validate:"omitempty,max=120"`
	Frequency []int   `json:"frequency" validate:"omitempty,max=7,dive,min=1,max=7"`
}

type toggleInput struct {
	Date      string `json:"date" validate:"omitempty,datekey"`
	Completed bool   `json:"completed"`
}

type taskInput struct {
	Title string `json:"title" validate:"required,max=500"`
	Date  string `json:"date" validate:"required,datekey"`
}

type noteInput struct {
	Content string `json:"content" validate:"max=20000"`
}

type calendarSettingInput struct {
	Name      string `json:"name" validate:"max=200"`
	Color     string `json:"color" validate:"omitempty,hexcolor6"`
	IsVisible bool   `json:"is_visible"`
}

type eventInput struct {
	CalendarID string `json:"calendar_id"`
	Title      string `json:"title" validate:"required,max=500"`
	Date       string `json:"date" validate:"required,datekey"`
	// Time is "HH:MM"; empty creates an all-day event.
	Time            string `json:"time" validate:"omitempty,len=5"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=1,max=1440"`
}

type routineInput struct {
	Name  string `json:"name" validate:"required,max=120"`
	Items []struct {
		ExerciseID uint   `json:"exercise_id" validate:"required"`
		Sets       int    `json:"sets" validate:"min=0,max=100"`
		Reps       string `json:"reps" validate:"max=20"`
	} `json:"exercises" validate:"dive"`
}

type workoutStartInput struct {
	RoutineID uint `json:"routine_id" validate:"required"`
}

type confirmInput struct {
	Confirm bool `json:"confirm" form:"confirm"`
}

type settingsInput struct {
	ShowStats    bool   `json:"show_stats" form:"show_stats"`
	ShowCalendar bool   `json:"show_calendar" form:"show_calendar"`
	ShowSports   bool   `json:"show_sports" form:"show_sports"`
	Theme        string `json:"theme" form:"theme" validate:"omitempty,oneof=light dark"`
}

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("hexcolor6", func(field validator.FieldLevel) bool {
		return hexColorRegex.MatchString(field.Field().String())
	})
	_ = validate.RegisterValidation("datekey", func(field validator.FieldLevel) bool {
		return dateKeyRegex.MatchString(field.Field().String())
	})
	return validate
}

// bindAndValidate parses the request body into payload and runs the struct
// rules. The returned message is safe to show to the client.
func (handler *Handler) bindAndValidate(c *fiber.Ctx, payload any) error {
	if err := c.BodyParser(payload); err != nil {
		return errors.New("invalid input")
	}
	if err := handler.validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			first := validationErrors[0]
			return fmt.Errorf("invalid %s", strings.ToLower(first.Field()))
		}
		return errors.New("invalid input")
	}
	return nil
}
