package jarx

import (
	"path/filepath"
	"testing"
)

func TestWriteAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "round.jar")

	w, err := NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteDir("com/example/"); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFile("com/example/A.class", []byte{0xCA, 0xFE}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFile("META-INF/MANIFEST.MF", []byte("Manifest-Version: 1.0\n")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	j, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()

	if got := len(j.Entries()); got != 3 {
		t.Fatalf("entries: got %d, want 3", got)
	}

	data, err := j.ReadEntry("META-INF/MANIFEST.MF")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Manifest-Version: 1.0\n" {
		t.Errorf("manifest payload: %q", data)
	}

	classData, found, err := j.ReadClass("com/example/A")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("class A not found")
	}
	if len(classData) != 2 || classData[0] != 0xCA {
		t.Errorf("class payload: %x", classData)
	}

	if _, found, _ := j.ReadClass("com/example/Missing"); found {
		t.Error("unexpected hit for missing class")
	}

	if _, err := j.ReadEntry("nope"); err == nil {
		t.Error("expected error for unknown entry")
	}
}

func TestNamePredicates(t *testing.T) {
	tests := []struct {
		name       string
		dir, class bool
	}{
		{"com/example/", true, false},
		{"com/example/A.class", false, true},
		{"META-INF/MANIFEST.MF", false, false},
	}
	for _, tt := range tests {
		if got := IsDir(tt.name); got != tt.dir {
			t.Errorf("IsDir(%q) = %v", tt.name, got)
		}
		if got := IsClass(tt.name); got != tt.class {
			t.Errorf("IsClass(%q) = %v", tt.name, got)
		}
	}

	if got := ClassName("com/example/A.class"); got != "com/example/A" {
		t.Errorf("ClassName: %q", got)
	}
}
