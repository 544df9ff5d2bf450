package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const tinyBoard = `
name: Tiny
description: Smallest legal board
topology: {outer_size: 4, inner_size: 4, hub_tile: %d, inner_exit_tile: 3, jail_tile: 1, go_to_jail_tile: 2}
rules:
  starting_money: 500
tiles:
  - {id: 0, name: Start, kind: START}
  - {id: 1, name: Jail, kind: JAIL}
  - {id: 2, name: Cops, kind: PARKING}
  - {id: 3, name: Airport, kind: AIRPORT}
  - {id: 4, name: Hub, kind: START}
  - {id: 5, name: Lab, kind: PROPERTY, price: 100, base_rent: 10}
  - {id: 6, name: Chance, kind: CHANCE}
  - {id: 7, name: Mall, kind: SHOPPING}
`

func writeBoard(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write board: %v", err)
	}
	return path
}

func hasMessage(result ValidationResult, substr string) bool {
	for _, msg := range result.Errors {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		valid   bool
		message string
	}{
		{"valid yaml", "tiny.yaml", strings.Replace(tinyBoard, "%d", "4", 1), true, "✓ Reachability: All 8 tiles reachable from Start"},
		{"hub skips first inner tile", "skip.yaml", strings.Replace(tinyBoard, "%d", "5", 1), false, "Unreachable: Tile 4 (Hub)"},
		{"bad yaml", "bad.yaml", "name: [unclosed", false, "Invalid board"},
		{"schema violation", "extra.json", `{"name": "X", "description": "Y", "tiles": [], "colour": "red"}`, false, "Invalid board"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeBoard(t, tt.file, tt.content)

			result := validateConfig(path)
			if result.Valid != tt.valid {
				t.Errorf("Expected valid=%v, got %v: %v", tt.valid, result.Valid, result.Errors)
			}
			if result.File != tt.file {
				t.Errorf("Expected file name %s, got %s", tt.file, result.File)
			}
			if !hasMessage(result, tt.message) {
				t.Errorf("Expected message %q, got %v", tt.message, result.Errors)
			}
		})
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig("/non/existent/file.yaml")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !hasMessage(result, "Failed to read file") {
		t.Error("Expected 'Failed to read file' error")
	}
}

func TestValidateConfig_Summary(t *testing.T) {
	path := writeBoard(t, "tiny.yaml", strings.Replace(tinyBoard, "%d", "4", 1))

	result := validateConfig(path)

	for _, want := range []string{
		"✓ Name: Tiny",
		"✓ Tiles: 8 (4 outer, 4 inner)",
		"✓ Properties: 1 worth $100",
		"✓ Starting money: $500",
		"START=2",
	} {
		if !hasMessage(result, want) {
			t.Errorf("Expected %q in summary, got %v", want, result.Errors)
		}
	}
}

func TestConfigFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.json", "c.yml", "notes.txt"} {
		os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644)
	}
	os.Mkdir(filepath.Join(dir, "nested.yaml"), 0755)

	files, err := configFiles(dir)
	if err != nil {
		t.Fatalf("configFiles failed: %v", err)
	}
	if len(files) != 3 {
		t.Errorf("Expected 3 board files, got %v", files)
	}

	if _, err := configFiles(filepath.Join(dir, "absent")); err == nil {
		t.Error("Expected error for a missing directory")
	}
}

func TestRepositoryBoardsAreValid(t *testing.T) {
	files, err := configFiles("../configs")
	if err != nil {
		t.Skipf("configs directory not found: %v", err)
	}
	for _, file := range files {
		if result := validateConfig(file); !result.Valid {
			t.Errorf("%s is invalid: %v", filepath.Base(file), result.Errors)
		}
	}
}
