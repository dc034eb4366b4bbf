package extract

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadFolder_PriorityOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "plain notes")
	writeFile(t, dir, "faq.json", `{"q":"hours","a":"9 to 5"}`)
	writeFile(t, dir, "rows.csv", "a,b\n1,2\n")

	l := NewLoader(zap.NewNop())
	docs, err := l.LoadFolder(dir)
	if err != nil {
		t.Fatalf("LoadFolder: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d documents, want 3", len(docs))
	}
	want := []string{"faq.json", "rows.csv", "notes.txt"}
	for i, w := range want {
		if docs[i].Source != w {
			t.Errorf("docs[%d].Source = %s, want %s", i, docs[i].Source, w)
		}
	}
}

func TestLoadFolder_SkipsBadAndUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.txt", "content")
	writeFile(t, dir, "broken.json", "{not json")
	writeFile(t, dir, "image.png", "\x89PNG")
	writeFile(t, dir, "empty.txt", "   ")
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(zap.NewNop())
	docs, err := l.LoadFolder(dir)
	if err != nil {
		t.Fatalf("LoadFolder: %v", err)
	}
	if len(docs) != 1 || docs[0].Source != "good.txt" {
		t.Errorf("got %+v, want only good.txt", docs)
	}
}

func TestLoadFolder_MissingDir(t *testing.T) {
	l := NewLoader(zap.NewNop())
	if _, err := l.LoadFolder(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing folder")
	}
}
