package config

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/koba/db-changelog/internal/database"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Author != "dbchangelog" || cfg.Log.Level != "info" {
		t.Fatalf("got %+v", cfg)
	}
	if len(cfg.Properties) != 0 {
		t.Fatalf("got properties %v", cfg.Properties)
	}
	if _, err := cfg.Database(); err == nil || !strings.Contains(err.Error(), "database type is required") {
		t.Fatalf("got %v", err)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("DB_TYPE", "oracle")
	t.Setenv("DBCHANGELOG_DB_TYPE", "postgresql")
	t.Setenv("DB_NAME", "app")
	t.Setenv("DB_USER", "legacy")
	t.Setenv("DBCHANGELOG_AUTHOR", "koba")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	db, err := cfg.Database()
	if err != nil {
		t.Fatalf("database: %v", err)
	}
	want := database.Config{Type: database.TypePostgres, Host: "localhost", Port: "5432", Database: "app", User: "legacy"}
	if db != want {
		t.Fatalf("got %+v, want %+v", db, want)
	}
	if cfg.Author != "koba" {
		t.Fatalf("got author %q", cfg.Author)
	}
}

func TestLoadFileAndFlags(t *testing.T) {
	propsFile := writeFile(t, "props.yaml", "Schema: public\nTable: from_file\n")
	configFile := writeFile(t, "dbchangelog.yaml", `
db:
  type: sqlite
  name: app.db
author: file-author
properties_file: `+propsFile+`
properties:
  Table: employee
  Limit: 10
log:
  level: debug
`)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("author", "", "")
	flags.String("log-level", "", "")
	if err := flags.Parse([]string{"--author=flag-author"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configFile, flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Author != "flag-author" {
		t.Fatalf("got author %q", cfg.Author)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("got level %q", cfg.Log.Level)
	}
	want := map[string]string{"Schema": "public", "Table": "employee", "Limit": "10"}
	if !reflect.DeepEqual(cfg.Properties, want) {
		t.Fatalf("got properties %v, want %v", cfg.Properties, want)
	}
	db, err := cfg.Database()
	if err != nil {
		t.Fatalf("database: %v", err)
	}
	if db.Type != database.TypeSQLite || db.Database != "app.db" || db.Host != "" {
		t.Fatalf("got %+v", db)
	}

	var buf bytes.Buffer
	logger, err := cfg.Logger(&buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hello")
	if !strings.Contains(buf.String(), "level=DEBUG msg=hello") {
		t.Fatalf("got log %q", buf.String())
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatal("expected error for missing config file")
	}

	t.Setenv("DBCHANGELOG_PROPERTIES_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load("", nil); err == nil || !strings.Contains(err.Error(), "load properties") {
		t.Fatalf("got %v", err)
	}

	cfg := &Config{Log: LogConfig{Level: "loud"}}
	if _, err := cfg.Logger(&bytes.Buffer{}); err == nil {
		t.Fatal("expected error for bad level")
	}

	cfg = &Config{DB: database.Config{Type: "mysql"}}
	if _, err := cfg.Database(); err == nil || err.Error() != "database name is required (db.name)" {
		t.Fatalf("got %v", err)
	}
}
