package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/strct/ruma/internal/cli/config"
)

const validDefinition = `endpoint get_versions {
  metadata {
    description: "List supported protocol versions."
    method: GET
    name: "get_versions"
    path: "/_matrix/client/versions"
    rate_limited: false
    authentication: None
  }
  request {
  }
  response {
    versions: array<string>
  }
}
`

func writeProject(t *testing.T, definitions map[string]string) *config.Config {
	t.Helper()

	tmpDir := t.TempDir()
	apiDir := filepath.Join(tmpDir, "api")
	if err := os.MkdirAll(apiDir, 0755); err != nil {
		t.Fatal(err)
	}
	for name, content := range definitions {
		if err := os.WriteFile(filepath.Join(apiDir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	return &config.Config{
		InputDir:  apiDir,
		OutputDir: filepath.Join(tmpDir, "gen"),
		Package:   "client",
	}
}

func TestCompileAll(t *testing.T) {
	cfg := writeProject(t, map[string]string{"versions.ruma": validDefinition})

	result, list := compileAll(cfg, zap.NewNop())
	if list.HasErrors() {
		t.Fatalf("unexpected errors: %v", list)
	}

	if len(result.Endpoints) != 1 || result.Endpoints[0] != "get_versions" {
		t.Errorf("unexpected endpoints: %v", result.Endpoints)
	}

	code, ok := result.Files["get_versions.go"]
	if !ok {
		t.Fatal("missing generated file")
	}
	if !strings.Contains(code, "package client") {
		t.Error("generated code should use the configured package")
	}
}

func TestCompileAllMissingInputDir(t *testing.T) {
	cfg := &config.Config{
		InputDir:  filepath.Join(t.TempDir(), "nope"),
		OutputDir: "gen",
		Package:   "client",
	}

	_, list := compileAll(cfg, zap.NewNop())
	if !list.HasErrors() {
		t.Fatal("expected an error for missing input directory")
	}
}

func TestCompileAllDuplicateEndpoint(t *testing.T) {
	cfg := writeProject(t, map[string]string{
		"a.ruma": validDefinition,
		"b.ruma": validDefinition,
	})

	_, list := compileAll(cfg, zap.NewNop())
	if !list.HasErrors() {
		t.Fatal("expected a duplicate endpoint error")
	}
	if !strings.Contains(list.Error(), "duplicate endpoint definition") {
		t.Errorf("unexpected diagnostics: %v", list)
	}
}

func TestCompileAllAggregatesAcrossFiles(t *testing.T) {
	badDefinition := `endpoint bad {
  metadata {
    method: FETCH
    name: "bad"
    path: "/x"
  }
  request {
  }
  response {
  }
}
`
	cfg := writeProject(t, map[string]string{
		"good.ruma": validDefinition,
		"bad.ruma":  badDefinition,
	})

	_, list := compileAll(cfg, zap.NewNop())
	if !list.HasErrors() {
		t.Fatal("expected errors from the bad file")
	}

	var badFileSeen bool
	for _, e := range list.Errors {
		if strings.HasSuffix(e.File, "bad.ruma") {
			badFileSeen = true
		}
		if strings.HasSuffix(e.File, "good.ruma") {
			t.Errorf("good file should not produce diagnostics: %v", e)
		}
	}
	if !badFileSeen {
		t.Error("diagnostics should carry the offending file name")
	}
}
