package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/crimson-sun/sift/internal/model"
	"github.com/crimson-sun/sift/internal/output"
)

func testRecord(name, content string) model.PreprocessedData {
	return model.PreprocessedData{
		Filename: name,
		Content:  content,
		Metadata: model.ExtractionMetadata{
			DataType:           model.LogsAndErrors,
			ExtractionStrategy: "crime_scene",
			Confidence:         0.9,
			Source:             model.FromRuleBased,
		},
		OriginalSize:  1024,
		ProcessedSize: len(content),
	}
}

func TestWriteProducesValidNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.Standard)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := out.Write(context.Background(), testRecord("app.log", "snippet")); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	out.Close()

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	for i, line := range lines {
		var rec output.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Errorf("line %d: invalid JSON: %v", i, err)
		}
		if rec.Filename != "app.log" {
			t.Errorf("line %d: filename = %q, want app.log", i, rec.Filename)
		}
	}
}

func TestRotationTriggersAtMaxSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jsonl")

	out, err := New(path, output.Standard, WithMaxSizeMB(1))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	big := strings.Repeat("x", 600*1024)
	for i := 0; i < 3; i++ {
		if err := out.Write(context.Background(), testRecord("big.log", big)); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	out.Close()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected a rotated backup next to %s, got %d files", path, len(entries))
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("current file stat error: %v", err)
	}
	if info.Size() == 0 {
		t.Error("current file is empty after rotation")
	}
}

func TestCloseFlushesData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.Standard)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	out.Write(context.Background(), testRecord("notes.md", "text"))
	out.Close()

	data, _ := os.ReadFile(path)
	if len(data) == 0 {
		t.Error("file is empty, Close did not flush buffered data")
	}
}

func TestVerbosityMinimalStripsContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.Minimal)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	out.Write(context.Background(), testRecord("app.log", "secret snippet"))
	out.Close()

	data, _ := os.ReadFile(path)
	var rec map[string]any
	json.Unmarshal([]byte(strings.TrimSpace(string(data))), &rec)

	if _, ok := rec["content"]; ok {
		t.Error("Minimal verbosity should strip 'content' field")
	}
	if _, ok := rec["metadata"]; !ok {
		t.Error("metadata should be kept at Minimal")
	}
}

func TestConcurrentWritesSafe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.Standard)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out.Write(context.Background(), testRecord("app.log", "snippet"))
		}()
	}
	wg.Wait()
	out.Close()

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 50 {
		t.Errorf("got %d lines, want 50", len(lines))
	}
}

func TestNewFailsOnBadPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(filepath.Join(blocker, "out.jsonl"), output.Standard); err == nil {
		t.Fatal("expected error when the parent is a regular file")
	}
}
