package patterns

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "plain",
			content: ".html\n..;/\n%2e%2e/\n",
			want:    []string{".html", "..;/", "%2e%2e/"},
		},
		{
			name:    "comments blanks and whitespace",
			content: "# bypass patterns\n\n  .json  \r\n\t\n#.bak\n.old\n",
			want:    []string{".json", ".old"},
		},
		{
			name:    "duplicates keep first order",
			content: ".b\n.a\n.b\n.c\n.a\n",
			want:    []string{".b", ".a", ".c"},
		},
		{
			name:    "empty file",
			content: "",
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(writeFile(t, tt.content), DefaultFallback)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Load = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadMissingFallsBack(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.txt")
	got, err := Load(missing, DefaultFallback)
	if !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
	if !reflect.DeepEqual(got, []string{".html"}) {
		t.Errorf("fallback = %q", got)
	}

	got[0] = "mutated"
	if DefaultFallback[0] != ".html" {
		t.Error("Load must not alias the fallback slice")
	}
}

func TestLoadTargets(t *testing.T) {
	path := writeFile(t, "http://a.example/admin\n# staging\nhttp://b.example/\nhttp://a.example/admin\n")
	got, err := LoadTargets(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"http://a.example/admin", "http://b.example/"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadTargets = %q, want %q", got, want)
	}
}

func TestLoadTargetsMissing(t *testing.T) {
	got, err := LoadTargets(filepath.Join(t.TempDir(), "urls.txt"))
	if !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no targets, got %q", got)
	}
}

func TestLoadUnreadable(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir, DefaultFallback)
	if err == nil || errors.Is(err, ErrMissing) {
		t.Errorf("reading a directory should fail without ErrMissing, got %v", err)
	}
}
