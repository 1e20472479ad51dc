package cmd

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// writeTree creates empty files under root.
func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
}

func slashed(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.ToSlash(p)
	}
	return out
}

func TestExpandSources_IncludeExclude(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"src/main.c",
		"src/uart.c",
		"src/gen/tables.c",
		"src/driver/gpio.cpp",
		"README.md",
	)

	files, err := expandSources(root, []string{"src/**/*.c", "src/**/*.cpp"}, []string{"src/gen/**"}, nil)
	if err != nil {
		t.Fatalf("expandSources: %v", err)
	}

	got := slashed(files)
	slices.Sort(got)
	want := []string{"src/driver/gpio.cpp", "src/main.c", "src/uart.c"}
	if !slices.Equal(got, want) {
		t.Errorf("files = %v, want %v", got, want)
	}
}

func TestExpandSources_ArgsAndDuplicates(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "src/main.c", "src/uart.c", "lib/extra.c")

	files, err := expandSources(root, []string{"src/*.c"}, nil, []string{"lib/*.c", "src/main.c", "./src/uart.c", "missing.c"})
	if err != nil {
		t.Fatalf("expandSources: %v", err)
	}

	got := slashed(files)
	// Glob matches first, explicit arguments after; duplicates dropped.
	if len(got) != 4 {
		t.Fatalf("files = %v, want 4 entries", got)
	}
	if got[len(got)-1] != "missing.c" {
		t.Errorf("explicit file not kept verbatim: %v", got)
	}
	sorted := slices.Clone(got)
	slices.Sort(sorted)
	want := []string{"lib/extra.c", "missing.c", "src/main.c", "src/uart.c"}
	if !slices.Equal(sorted, want) {
		t.Errorf("files = %v, want %v", sorted, want)
	}
}

func TestExpandSources_ExcludeAppliesToArgs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "src/main.c")

	files, err := expandSources(root, nil, []string{"vendor/**"}, []string{"vendor/lib.c", "src/main.c"})
	if err != nil {
		t.Fatalf("expandSources: %v", err)
	}
	if got := slashed(files); !slices.Equal(got, []string{"src/main.c"}) {
		t.Errorf("files = %v, want [src/main.c]", got)
	}
}

func TestExpandSources_InvalidPattern(t *testing.T) {
	root := t.TempDir()

	if _, err := expandSources(root, []string{"src/[a-"}, nil, nil); err == nil {
		t.Error("expected error for invalid include pattern")
	}
	if _, err := expandSources(root, nil, []string{"{a,b"}, nil); err == nil {
		t.Error("expected error for invalid exclude pattern")
	}
}

func TestExpandSources_NoMatches(t *testing.T) {
	files, err := expandSources(t.TempDir(), []string{"**/*.c"}, nil, nil)
	if err != nil {
		t.Fatalf("expandSources: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("files = %v, want none", files)
	}
}

func TestMatchesSources(t *testing.T) {
	include := []string{"src/**/*.c", "main.c"}
	exclude := []string{"src/gen/**"}

	tests := []struct {
		rel  string
		want bool
	}{
		{"src/uart.c", true},
		{"src/driver/gpio.c", true},
		{"main.c", true},
		{"src/gen/tables.c", false},
		{"src/uart.h", false},
		{"docs/readme.c", false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			if got := matchesSources(filepath.FromSlash(tt.rel), include, exclude); got != tt.want {
				t.Errorf("matchesSources(%q) = %v, want %v", tt.rel, got, tt.want)
			}
		})
	}
}
