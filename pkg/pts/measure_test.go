package pts

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMeasureFile_SHA256(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "kernel.img", "hello world")

	e := New()
	m, err := e.MeasureFile(path)
	if err != nil {
		t.Fatalf("MeasureFile failed: %v", err)
	}

	// sha256("hello world")
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if m.Digest != want {
		t.Errorf("Digest = %s, want %s", m.Digest, want)
	}
	if m.Algorithm != AlgSHA256 {
		t.Errorf("Algorithm = %s, want %s", m.Algorithm, AlgSHA256)
	}
	if m.Size != int64(len("hello world")) {
		t.Errorf("Size = %d, want %d", m.Size, len("hello world"))
	}
	if m.Path != path {
		t.Errorf("Path = %s, want %s", m.Path, path)
	}
}

func TestMeasureFile_AlgorithmSelection(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "blob", "data")

	e := New()
	if err := e.SetAlgorithm(AlgSHA512); err != nil {
		t.Fatalf("SetAlgorithm failed: %v", err)
	}

	m, err := e.MeasureFile(path)
	if err != nil {
		t.Fatalf("MeasureFile failed: %v", err)
	}
	if len(m.Digest) != 128 { // 64 bytes hex-encoded
		t.Errorf("SHA-512 digest length = %d hex chars, want 128", len(m.Digest))
	}
}

func TestSetAlgorithm_Unsupported(t *testing.T) {
	e := New()
	if err := e.SetAlgorithm(Algorithm("MD5")); err == nil {
		t.Error("expected error for unsupported algorithm")
	}
	if e.Algorithm() != AlgSHA256 {
		t.Errorf("Algorithm changed despite error: %s", e.Algorithm())
	}
}

func TestMeasureFile_Directory(t *testing.T) {
	dir := t.TempDir()
	e := New()
	if _, err := e.MeasureFile(dir); err == nil {
		t.Error("expected error measuring a directory as a file")
	}
}

func TestMeasureFile_Missing(t *testing.T) {
	e := New()
	if _, err := e.MeasureFile("/nonexistent/path"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMeasureDirectory_OrderedByPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.conf", "bbb")
	writeFile(t, dir, "a.conf", "aaa")
	writeFile(t, dir, "c.conf", "ccc")
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0755); err != nil {
		t.Fatal(err)
	}

	e := New()
	measurements, err := e.MeasureDirectory(dir)
	if err != nil {
		t.Fatalf("MeasureDirectory failed: %v", err)
	}

	// Subdirectories are skipped, regular files sorted by path
	if len(measurements) != 3 {
		t.Fatalf("got %d measurements, want 3", len(measurements))
	}
	for i, want := range []string{"a.conf", "b.conf", "c.conf"} {
		if filepath.Base(measurements[i].Path) != want {
			t.Errorf("measurement %d = %s, want %s", i, measurements[i].Path, want)
		}
	}
}

func TestEngine_PlatformInfoOverride(t *testing.T) {
	e := New()
	e.SetPlatformInfo("Debian 12 6.1.0-25-amd64")
	if got := e.PlatformInfo(); got != "Debian 12 6.1.0-25-amd64" {
		t.Errorf("PlatformInfo() = %q", got)
	}
}
