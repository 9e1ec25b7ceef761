package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/james-see/codecomposer/pkg/render"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("CODECOMPOSER_DB", "")
	t.Setenv("CODECOMPOSER_STYLES_FILE", "")
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		outputFile, languageName, voicesName = "", "", "both"
		saveHistory, printTree, tokensAsInput = false, false, false
	})
	return rootCmd.Execute()
}

func TestGetOutputPath(t *testing.T) {
	tests := []struct {
		input, output, want string
	}{
		{"src/main.go", "", "src/main.mid"},
		{"script.py", "out.alda", "out.alda"},
		{"-", "", ""},
	}
	for _, tt := range tests {
		outputFile = tt.output
		if got := getOutputPath(tt.input); got != tt.want {
			t.Errorf("getOutputPath(%q) with -o %q = %q, want %q", tt.input, tt.output, got, tt.want)
		}
	}
	outputFile = ""
}

func TestIndent(t *testing.T) {
	if got := indent("a\nb\n", "  "); got != "  a\n  b" {
		t.Errorf("indent() = %q", got)
	}
}

func TestComposeCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.c")
	if err := os.WriteFile(src, []byte("int main(void) {\n  for (int i = 0; i < 3; i++) {}\n  return 0;\n}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "prog.mid")

	if err := execute(t, "compose", src, "-o", out, "--style", "waltz", "--seed", "9"); err != nil {
		t.Fatalf("compose error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	summary, err := render.Inspect(data)
	if err != nil {
		t.Fatalf("Inspect() error: %v", err)
	}
	if math.Abs(summary.Tempo-90) > 0.01 {
		t.Errorf("tempo = %v, want the waltz tempo 90", summary.Tempo)
	}
	if summary.Meter != "4/4" || summary.Notes == 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestComposeCommandUnsupportedLanguage(t *testing.T) {
	src := filepath.Join(t.TempDir(), "notes.rb")
	if err := os.WriteFile(src, []byte("puts 1"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "compose", src); err == nil {
		t.Error("expected error for unsupported language")
	}
}
