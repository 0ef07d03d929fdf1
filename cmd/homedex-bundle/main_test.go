package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeCSV(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildThenInspect(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "bundle")
	text := writeCSV(t, src, "text.csv", "1,0.2,0.9\n0.2,1,0.4\n0.9,0.4,1\n")
	loc := writeCSV(t, src, "loc.csv", "1,0.5,0.5\n0.5,1,0.5\n0.5,0.5,1\n")

	msg, err := run(t, "build", out,
		"--names", writeCSV(t, src, "names.csv", "name\nA\nB\nC\n"),
		"--text", text, "--location", loc, "--amenity", loc,
		"--landmarks", writeCSV(t, src, "lm.csv", "name,latitude,longitude\nMetro,28.45,77.05\n"),
		"--coordinates", writeCSV(t, src, "co.csv", "property,latitude,longitude\nA,28.46,77.05\nB,28.47,77.06\n"),
	)
	if err != nil {
		t.Fatalf("build: %v (%s)", err, msg)
	}
	if !strings.Contains(msg, "3 properties, 2 distances") {
		t.Errorf("unexpected build output %q", msg)
	}

	msg, err = run(t, "inspect", "--json", out)
	if err != nil {
		t.Fatalf("inspect: %v (%s)", err, msg)
	}
	var s Summary
	if err := json.Unmarshal([]byte(msg), &s); err != nil {
		t.Fatalf("decode %q: %v", msg, err)
	}
	if s.Properties != 3 || s.Distances != 2 || len(s.Locations) != 1 || s.Locations[0] != "Metro" {
		t.Errorf("unexpected summary %+v", s)
	}
	if len(s.Signals) != 3 || s.Signals[0].Name != "text" || s.Signals[0].Min != 0.2 || s.Signals[0].Max != 0.9 {
		t.Errorf("unexpected signals %+v", s.Signals)
	}
}

func TestInspect_InvalidBundle(t *testing.T) {
	inspectJSON = false
	if _, err := run(t, "inspect", t.TempDir()); err == nil {
		t.Fatal("expected error for empty directory")
	}
}
