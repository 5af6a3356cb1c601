package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"testing"
)

func lines(h *History) []string {
	var out []string
	for _, e := range h.Entries() {
		out = append(out, e.String())
	}

	return out
}

func TestHistory_Add(t *testing.T) {
	h := NewHistory("")

	steps := []struct {
		line string
		mode inputMode
	}{
		{"var x = 1;", modeEval},
		{"list", modeCtrl},
		{"  list  ", modeCtrl}, // same as last after trimming
		{"", modeEval},
		{"var x = 1;", modeEval}, // moves to the end
		{"list", modeEval},       // same line, other mode
	}

	for _, s := range steps {
		if err := h.Add(s.line, s.mode); err != nil {
			t.Fatalf("Add(%q) error = %v", s.line, err)
		}
	}

	want := []string{"C:list", "E:var x = 1;", "E:list"}
	if got := lines(h); !slices.Equal(got, want) {
		t.Errorf("entries = %q, want %q", got, want)
	}
}

func TestHistory_Limit(t *testing.T) {
	h := NewHistory("")
	h.limit = 3

	for i := range 5 {
		if err := h.Add(strconv.Itoa(i), modeEval); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{"E:2", "E:3", "E:4"}
	if got := lines(h); !slices.Equal(got, want) {
		t.Errorf("entries = %q, want %q", got, want)
	}
}

func TestHistory_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() of missing file error = %v", err)
	}

	for _, e := range []HistoryEntry{
		{"print(1);", modeEval},
		{"reset", modeCtrl},
		{"print(2);", modeEval},
		{"print(1);", modeEval}, // rewrites the file
		{"quit", modeCtrl},      // appends
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q) error = %v", e.Line, err)
		}
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"C:reset", "E:print(2);", "E:print(1);", "C:quit"}
	if got := lines(reloaded); !slices.Equal(got, want) {
		t.Errorf("reloaded entries = %q, want %q", got, want)
	}
}

func TestHistory_LoadUnprefixed(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	if err := os.WriteFile(path, []byte("var a = 1;\n\nC:edit\nE:a;\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{
		{"var a = 1;", modeEval},
		{"edit", modeCtrl},
		{"a;", modeEval},
	}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

func TestHistory_Entry(t *testing.T) {
	h := NewHistory("")
	_ = h.Add("help", modeCtrl)

	e, err := h.Entry(0)
	if err != nil || e.Line != "help" || e.Mode != modeCtrl {
		t.Errorf("Entry(0) = %v, %v", e, err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d) error = %v, want %v", i, err, ErrOutOfBounds)
		}
	}
}
