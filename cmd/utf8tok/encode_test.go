package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadEncodeInput_PrefersFlag(t *testing.T) {
	got, err := readEncodeInput("from flag", strings.NewReader("from stdin"))
	if err != nil {
		t.Fatalf("readEncodeInput: %v", err)
	}
	if got != "from flag" {
		t.Errorf("got %q, want %q", got, "from flag")
	}
}

func TestReadEncodeInput_FallsBackToStdin(t *testing.T) {
	got, err := readEncodeInput("", strings.NewReader("piped text"))
	if err != nil {
		t.Fatalf("readEncodeInput: %v", err)
	}
	if got != "piped text" {
		t.Errorf("got %q, want %q", got, "piped text")
	}
}

func TestReadEncodeInput_PreservesStdinExactly(t *testing.T) {
	// Trailing newlines and surrounding whitespace are data, not noise.
	const input = "  line one\nline two\n"

	got, err := readEncodeInput("", strings.NewReader(input))
	if err != nil {
		t.Fatalf("readEncodeInput: %v", err)
	}
	if got != input {
		t.Errorf("got %q, want %q", got, input)
	}
}

func TestReadDecodeInput_PrefersFlag(t *testing.T) {
	got, err := readDecodeInput("72 101", strings.NewReader("1 2 3"))
	if err != nil {
		t.Fatalf("readDecodeInput: %v", err)
	}
	if got != "72 101" {
		t.Errorf("got %q, want %q", got, "72 101")
	}
}

func TestWriteOutput_Stdout(t *testing.T) {
	var b strings.Builder

	if err := writeOutput("-", "72 101\n", &b); err != nil {
		t.Fatalf("writeOutput: %v", err)
	}
	if b.String() != "72 101\n" {
		t.Errorf("stdout = %q, want %q", b.String(), "72 101\n")
	}
}

func TestWriteOutput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.txt")

	if err := writeOutput(path, "72 101\n", nil); err != nil {
		t.Fatalf("writeOutput: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	if string(data) != "72 101\n" {
		t.Errorf("file contents = %q, want %q", data, "72 101\n")
	}
}
