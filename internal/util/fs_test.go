package util

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PNG", "a.jpg", "notes.txt", "c.jpeg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.jpg"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ListImages(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.PNG"),
		filepath.Join(dir, "c.jpeg"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("ListImages = %v, want %v", got, want)
	}
}

func TestReadUpload(t *testing.T) {
	if _, err := ReadUpload("   "); err == nil {
		t.Error("expected error for empty path")
	}
	path := filepath.Join(t.TempDir(), "photo.bin")
	if err := os.WriteFile(path, []byte("not really an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := ReadUpload(path)
	if err != nil {
		t.Fatalf("ReadUpload: %v", err)
	}
	if string(data) != "not really an image" {
		t.Errorf("data = %q", data)
	}
	if _, err := ReadUpload(path + ".missing"); err == nil {
		t.Error("expected error for missing file")
	}
}
