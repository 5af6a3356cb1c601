package pkg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "brewin" {
		t.Errorf("Name = %q, want %q", Name, "brewin")
	}
}

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("read VERSION: %v", err)
	}

	if want := strings.TrimSpace(string(buf)); Version() != want {
		t.Errorf("Version() = %q, want %q", Version(), want)
	}

	if Version() == "" {
		t.Error("Version() is empty")
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("Author is empty")
	}

	for i, a := range Author {
		if a.Name == "" && a.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}

	if got := (AuthorInfo{Name: "a", Email: "a@b"}).String(); got != "a <a@b>" {
		t.Errorf("String() = %q", got)
	}
}

func TestDirs(t *testing.T) {
	for name, dir := range map[string]string{
		"ConfigDir": ConfigDir(),
		"CacheDir":  CacheDir(),
	} {
		if filepath.Base(dir) != Prefix() {
			t.Errorf("%s() = %q, want it to end in %q", name, dir, Prefix())
		}
	}

	if strings.HasPrefix(Prefix(), ".") || Prefix() == "" {
		t.Errorf("Prefix() = %q", Prefix())
	}
}

func TestError_Is(t *testing.T) {
	cause := errors.New("disk on fire")
	err := fmt.Errorf("load: %w", ErrConfig.Wrap(cause))

	if !errors.Is(err, ErrConfig) {
		t.Errorf("errors.Is(%v, ErrConfig) = false", err)
	}

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(%v, cause) = false", err)
	}

	if errors.Is(err, ErrDefine) {
		t.Errorf("errors.Is(%v, ErrDefine) = true", err)
	}

	if got, want := ErrSourceNotFound.Wrapf("x").Error(), "source not found: x"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
