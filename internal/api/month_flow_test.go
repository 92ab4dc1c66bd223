package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/daybook/internal/models"
	"github.com/terraincognita07/daybook/internal/services"
)

func createTestHabit(t *testing.T, env *testEnv, cookie string, name string) models.Habit {
	t.Helper()
	response := env.do(t, http.MethodPost, "/api/habits", map[string]any{
		"name":      name,
		"frequency": []int{1, 2, 3, 4, 5, 6, 7},
		"color":     "#ff8800",
	}, cookie)
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected create habit status 201, got %d", response.StatusCode)
	}
	habit := models.Habit{}
	decodeJSON(t, response, &habit)
	return habit
}

func TestHabitToggleIsVisibleInDayAndMonth(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.registerUser(t, "habits@example.com")
	habit := createTestHabit(t, env, cookie, "Read")
	today := todayKey()

	toggle := env.do(t, http.MethodPost, fmt.Sprintf("/api/habits/%d/toggle", habit.ID), map[string]any{"completed": true}, cookie)
	if toggle.StatusCode != http.StatusOK {
		t.Fatalf("expected toggle status 200, got %d", toggle.StatusCode)
	}

	dayResponse := env.do(t, http.MethodGet, "/api/days/"+today, nil, cookie)
	if dayResponse.StatusCode != http.StatusOK {
		t.Fatalf("expected day status 200, got %d", dayResponse.StatusCode)
	}
	view := services.DayView{}
	decodeJSON(t, dayResponse, &view)
	if len(view.CompletedHabitIDs) != 1 || view.CompletedHabitIDs[0] != habit.ID {
		t.Fatalf("expected habit %d completed, got %v", habit.ID, view.CompletedHabitIDs)
	}
	if view.Completion == nil || *view.Completion != 100 {
		t.Fatalf("expected completion 100, got %v", view.Completion)
	}

	monthHTTP := env.do(t, http.MethodGet, "/api/month?refresh=true", nil, cookie)
	if monthHTTP.StatusCode != http.StatusOK {
		t.Fatalf("expected month status 200, got %d", monthHTTP.StatusCode)
	}
	payload := monthResponse{}
	decodeJSON(t, monthHTTP, &payload)
	if len(payload.Logs) != 1 || payload.Logs[0].Date != today {
		t.Fatalf("expected one persisted log for %s, got %+v", today, payload.Logs)
	}
	if len(payload.Days)%7 != 0 {
		t.Fatalf("expected whole weeks in month grid, got %d cells", len(payload.Days))
	}

	dayLogs := env.do(t, http.MethodGet, "/api/habits/logs?date="+today, nil, cookie)
	if dayLogs.StatusCode != http.StatusOK {
		t.Fatalf("expected habit logs status 200, got %d", dayLogs.StatusCode)
	}
}

func TestHabitToggleRejectsFutureDay(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.registerUser(t, "future@example.com")
	habit := createTestHabit(t, env, cookie, "Stretch")
	future := time.Now().UTC().AddDate(0, 0, 2).Format(models.DateLayout)

	response := env.do(t, http.MethodPost, fmt.Sprintf("/api/habits/%d/toggle", habit.ID), map[string]any{
		"date":      future,
		"completed": true,
	}, cookie)
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", response.StatusCode)
	}
}

func TestHabitRejectsEmptyFrequency(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.registerUser(t, "frequency@example.com")

	response := env.do(t, http.MethodPost, "/api/habits", map[string]any{
		"name":      "Nothing",
		"frequency": []int{},
	}, cookie)
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", response.StatusCode)
	}
}

func TestTaskLifecycle(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.registerUser(t, "tasks@example.com")
	today := todayKey()

	created := env.do(t, http.MethodPost, "/api/tasks", map[string]string{"title": "Buy milk", "date": today}, cookie)
	if created.StatusCode != http.StatusCreated {
		t.Fatalf("expected create task status 201, got %d", created.StatusCode)
	}
	task := models.Task{}
	decodeJSON(t, created, &task)

	toggled := env.do(t, http.MethodPost, fmt.Sprintf("/api/tasks/%d/toggle", task.ID), map[string]bool{"completed": true}, cookie)
	if toggled.StatusCode != http.StatusOK {
		t.Fatalf("expected toggle status 200, got %d", toggled.StatusCode)
	}

	listed := env.do(t, http.MethodGet, "/api/tasks?date="+today, nil, cookie)
	payload := struct {
		Pending   []models.Task `json:"pending"`
		Completed []models.Task `json:"completed"`
	}{}
	decodeJSON(t, listed, &payload)
	if len(payload.Pending) != 0 || len(payload.Completed) != 1 {
		t.Fatalf("expected one completed task, got pending=%d completed=%d", len(payload.Pending), len(payload.Completed))
	}

	deleted := env.do(t, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), nil, cookie)
	if deleted.StatusCode != http.StatusOK {
		t.Fatalf("expected delete status 200, got %d", deleted.StatusCode)
	}
	missing := env.do(t, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), nil, cookie)
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected second delete status 404, got %d", missing.StatusCode)
	}
}

func TestNoteSaveAndRead(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.registerUser(t, "notes@example.com")
	today := todayKey()

	saved := env.do(t, http.MethodPut, "/api/notes/"+today, map[string]string{"content": "Quiet day"}, cookie)
	if saved.StatusCode != http.StatusOK {
		t.Fatalf("expected save note status 200, got %d", saved.StatusCode)
	}

	read := env.do(t, http.MethodGet, "/api/notes/"+today, nil, cookie)
	payload := map[string]string{}
	decodeJSON(t, read, &payload)
	if payload["content"] != "Quiet day" {
		t.Fatalf("expected saved note content, got %q", payload["content"])
	}

	invalid := env.do(t, http.MethodGet, "/api/notes/2024-13-40", nil, cookie)
	if invalid.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected invalid date status 400, got %d", invalid.StatusCode)
	}
}

func TestMonthPayloadGridMatchesRequestedMonth(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.registerUser(t, "months@example.com")

	for _, month := range []string{"2024-02", "2024-03", "2024-02"} {
		response := env.do(t, http.MethodGet, "/api/month?month="+month, nil, cookie)
		if response.StatusCode != http.StatusOK {
			t.Fatalf("expected month %s status 200, got %d", month, response.StatusCode)
		}
		payload := monthResponse{}
		decodeJSON(t, response, &payload)
		if payload.Month != month {
			t.Fatalf("expected month %s, got %s", month, payload.Month)
		}
		inMonth := 0
		for _, day := range payload.Days {
			if !day.InMonth {
				continue
			}
			inMonth++
			if !strings.HasPrefix(day.Date, month) {
				t.Fatalf("grid for %s contains in-month cell %s", month, day.Date)
			}
		}
		if inMonth == 0 || payload.From[:7] != month {
			t.Fatalf("unexpected grid for %s: %d in-month cells, from %s", month, inMonth, payload.From)
		}
	}
}
