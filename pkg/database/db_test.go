package database

import (
	"testing"

	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogMode(t *testing.T) {
	cases := map[string]gormlogger.LogLevel{
		"debug": gormlogger.Info,
		"info":  gormlogger.Warn,
		"warn":  gormlogger.Warn,
		"error": gormlogger.Error,
		"":      gormlogger.Error,
	}
	for level, want := range cases {
		if got := gormLogMode(level); got != want {
			t.Errorf("gormLogMode(%q) = %v, want %v", level, got, want)
		}
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 || len(entries)%2 != 0 {
		t.Fatalf("expected paired up/down migrations, got %d files", len(entries))
	}
}
