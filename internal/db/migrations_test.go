package db

import (
	"io/fs"
	"testing"
	"time"

	"github.com/terraincognita07/daybook/internal/models"
	embeddedmigrations "github.com/terraincognita07/daybook/migrations"
)

func TestOpenSQLiteAppliesEmbeddedMigrationsOnCleanDatabase(t *testing.T) {
	database := openTestDatabase(t)

	for _, table := range []string{
		"users", "habits", "habit_logs", "tasks", "day_notes", "calendar_settings",
		"exercises", "routines", "routine_exercises", "workouts", "workout_logs",
		"user_progress", "app_settings",
	} {
		if !database.Migrator().HasTable(table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}

	statuses, err := ListMigrationStatus(database)
	if err != nil {
		t.Fatalf("list migration status: %v", err)
	}
	entries, err := fs.Glob(embeddedmigrations.Files, "*.sql")
	if err != nil {
		t.Fatalf("glob embedded migrations: %v", err)
	}
	if len(statuses) != len(entries) {
		t.Fatalf("expected %d migration statuses, got %d", len(entries), len(statuses))
	}
	for _, status := range statuses {
		if !status.Applied {
			t.Fatalf("expected migration %s to be applied", status.Name)
		}
	}
}

func TestOpenSQLiteIsIdempotentAcrossRestarts(t *testing.T) {
	database := openTestDatabase(t)
	if err := applyEmbeddedMigrations(database); err != nil {
		t.Fatalf("re-apply migrations: %v", err)
	}

	var count int64
	if err := database.Raw(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count).Error; err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	entries, _ := fs.Glob(embeddedmigrations.Files, "*.sql")
	if int(count) != len(entries) {
		t.Fatalf("expected %d recorded migrations, got %d", len(entries), count)
	}
}

func TestOpenSQLiteCreatesCaseInsensitiveUserEmailUniqueIndex(t *testing.T) {
	database := openTestDatabase(t)

	first := models.User{Email: "QA-Test@Daybook.Local", PasswordHash: "hash-1", CreatedAt: time.Now().UTC()}
	if err := database.Create(&first).Error; err != nil {
		t.Fatalf("create first user: %v", err)
	}

	second := models.User{Email: "qa-test@daybook.local", PasswordHash: "hash-2", CreatedAt: time.Now().UTC()}
	if err := database.Create(&second).Error; err == nil {
		t.Fatal("expected unique index violation for case-insensitive duplicate email")
	}
}

func TestSplitSQLStatementsDropsBlankParts(t *testing.T) {
	statements := splitSQLStatements("CREATE TABLE a (id INTEGER);\n\n ;CREATE INDEX i ON a(id);")
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %#v", len(statements), statements)
	}
}
