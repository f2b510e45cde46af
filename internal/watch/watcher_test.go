package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestFileWatcher_Start(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "messages.ruma")
	if err := os.WriteFile(testFile, []byte("initial content"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	// Track changes
	var mu sync.Mutex
	var changes [][]string

	watcher, err := NewFileWatcher(tmpDir, zap.NewNop(), func(files []string) error {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, files)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	// Modify file
	time.Sleep(200 * time.Millisecond) // Allow watcher to initialize
	if err := os.WriteFile(testFile, []byte("modified content"), 0644); err != nil {
		t.Fatalf("Failed to modify file: %v", err)
	}

	// Wait for debounce
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if len(changes) == 0 {
		t.Error("Expected changes to be detected")
	}
}

func TestFileWatcher_IgnoresNonDefinitions(t *testing.T) {
	tmpDir := t.TempDir()

	var mu sync.Mutex
	var changes [][]string

	watcher, err := NewFileWatcher(tmpDir, zap.NewNop(), func(files []string) error {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, files)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	for _, name := range []string{"notes.txt", ".messages.ruma.swp"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if len(changes) != 0 {
		t.Errorf("Expected no changes, got %v", changes)
	}
}

func TestIsDefinition(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"api/messages.ruma", true},
		{"messages.ruma", true},
		{"api/.messages.ruma.swp", false},
		{"api/messages.txt", false},
	}

	for _, tt := range tests {
		if got := isDefinition(tt.path); got != tt.want {
			t.Errorf("isDefinition(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDebouncer_Add(t *testing.T) {
	var mu sync.Mutex
	var called bool
	var files []string

	debouncer := NewDebouncer(50 * time.Millisecond)
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		defer mu.Unlock()
		called = true
		files = f
	})
	defer debouncer.Stop()

	debouncer.Add("a.ruma")
	debouncer.Add("b.ruma")
	debouncer.Add("a.ruma")

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if !called {
		t.Fatal("Expected callback to fire")
	}
	if len(files) != 2 {
		t.Errorf("Expected 2 deduplicated files, got %v", files)
	}
}

func TestDebouncer_ResetOnAdd(t *testing.T) {
	var mu sync.Mutex
	var calls int

	debouncer := NewDebouncer(80 * time.Millisecond)
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		defer mu.Unlock()
		calls++
	})
	defer debouncer.Stop()

	// Adds inside the window collapse into one callback
	debouncer.Add("a.ruma")
	time.Sleep(40 * time.Millisecond)
	debouncer.Add("b.ruma")
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if calls != 1 {
		t.Errorf("Expected 1 callback, got %d", calls)
	}
}
