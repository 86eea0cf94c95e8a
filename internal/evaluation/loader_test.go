package evaluation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGoldenQueries_ValidFile(t *testing.T) {
	content := `[
		{"id": "q1", "query": "the library", "expected_type": "building", "expected_id": "G26", "difficulty": "easy"},
		{"id": "q2", "query": "libary", "expected_type": "building", "expected_id": "G26", "type_hints": ["building"], "difficulty": "hard"}
	]`
	path := writeTempFile(t, content)

	queries, err := LoadGoldenQueries(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(queries))
	}
	if queries[0].ID != "q1" {
		t.Errorf("expected id q1, got %s", queries[0].ID)
	}
	if queries[0].ExpectedKey() != "Building:G26" {
		t.Errorf("unexpected expected key %s", queries[0].ExpectedKey())
	}
	if queries[1].Query != "libary" {
		t.Errorf("expected query 'libary', got %s", queries[1].Query)
	}
	if len(queries[1].TypeHints) != 1 {
		t.Errorf("expected 1 type hint, got %d", len(queries[1].TypeHints))
	}
}

func TestLoadGoldenQueries_InvalidFile(t *testing.T) {
	_, err := LoadGoldenQueries("/nonexistent/path.json")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadGoldenQueries_InvalidJSON(t *testing.T) {
	path := writeTempFile(t, `not valid json`)
	_, err := LoadGoldenQueries(path)
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadGoldenQueries_EmptyArray(t *testing.T) {
	path := writeTempFile(t, `[]`)
	queries, err := LoadGoldenQueries(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries) != 0 {
		t.Errorf("expected 0 queries, got %d", len(queries))
	}
}

func TestValidateGoldenQueries_MissingID(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "", Query: "test", ExpectedType: "building", ExpectedID: "G26", Difficulty: "easy"},
	}
	if err := ValidateGoldenQueries(queries); err == nil {
		t.Error("expected validation error for missing ID")
	}
}

func TestValidateGoldenQueries_MissingQuery(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "", ExpectedType: "building", ExpectedID: "G26", Difficulty: "easy"},
	}
	if err := ValidateGoldenQueries(queries); err == nil {
		t.Error("expected validation error for missing query")
	}
}

func TestValidateGoldenQueries_UnknownExpectedType(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "test", ExpectedType: "spaceship", ExpectedID: "G26", Difficulty: "easy"},
	}
	if err := ValidateGoldenQueries(queries); err == nil {
		t.Error("expected validation error for unknown expected type")
	}
}

func TestValidateGoldenQueries_MissingExpectedID(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "test", ExpectedType: "building", Difficulty: "easy"},
	}
	if err := ValidateGoldenQueries(queries); err == nil {
		t.Error("expected validation error for missing expected id")
	}
}

func TestValidateGoldenQueries_UnknownTypeHint(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "test", ExpectedType: "building", ExpectedID: "G26", TypeHints: []string{"starbase"}, Difficulty: "easy"},
	}
	if err := ValidateGoldenQueries(queries); err == nil {
		t.Error("expected validation error for unknown type hint")
	}
}

func TestValidateGoldenQueries_InvalidDifficulty(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "test", ExpectedType: "building", ExpectedID: "G26", Difficulty: "impossible"},
	}
	if err := ValidateGoldenQueries(queries); err == nil {
		t.Error("expected validation error for invalid difficulty")
	}
}

func TestValidateGoldenQueries_DuplicateIDs(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "library", ExpectedType: "building", ExpectedID: "G26", Difficulty: "easy"},
		{ID: "q1", Query: "mensa", ExpectedType: "poi", ExpectedID: "mensa-1", Difficulty: "easy"},
	}
	if err := ValidateGoldenQueries(queries); err == nil {
		t.Error("expected validation error for duplicate IDs")
	}
}

func TestValidateGoldenQueries_Valid(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "library", ExpectedType: "building", ExpectedID: "G26", Difficulty: "easy"},
		{ID: "q2", Query: "uni tram stop", ExpectedType: "stop", ExpectedID: "stop-1", TypeHints: []string{"stop"}, Difficulty: "medium"},
	}
	if err := ValidateGoldenQueries(queries); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}
