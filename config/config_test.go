package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/multierr"

	"github.com/wippyai/hostbridge/bridge"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
namespaces:
  Demo: example.com/demo
  Demo.Widgets: example.com/demo/widgets
marshal_by_value:
  - Point
  - example.com/demo.Rect
workers: 4
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := &Config{
		Namespaces: map[string]string{
			"Demo":         "example.com/demo",
			"Demo.Widgets": "example.com/demo/widgets",
		},
		MarshalByValue: []string{"Point", "example.com/demo.Rect"},
		Workers:        4,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.Options()) != 1 {
		t.Errorf("options = %d, want 1", len(cfg.Options()))
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Namespaces) != 0 || len(cfg.Options()) != 0 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		errors int
	}{
		{"unknown key", "namespace: {}", 1},
		{"placeholder", "namespaces: {\"<uuid>\": example.com/x}", 1},
		{"empty package", "namespaces: {Demo: \"\"}", 1},
		{"duplicate package", "namespaces: {A: example.com/x, B: example.com/x}", 1},
		{"several problems", "namespaces: {Demo: \"\"}\nmarshal_by_value: [\"\"]\nworkers: -1", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := len(multierr.Errors(err)); got != tt.errors {
				t.Errorf("errors = %d, want %d: %v", got, tt.errors, err)
			}
		})
	}
}

func TestLoadAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	data := "namespaces:\n  Demo: example.com/demo\nmarshal_by_value: [Point]\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	eng := bridge.New(nil, cfg.Options()...)
	defer eng.Close()
	if err := cfg.Apply(eng); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if pkg, err := eng.Mapper().Package("Demo"); err != nil || pkg != "example.com/demo" {
		t.Errorf("Package(Demo) = %q, %v", pkg, err)
	}
	if diff := cmp.Diff([]string{"Point"}, eng.Marshaller().ByValueNames()); diff != "" {
		t.Errorf("by-value mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error")
	}
}
