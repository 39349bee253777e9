// SPDX-License-Identifier: Unlicense OR MIT

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPathMissing(t *testing.T) {
	f, err := LoadPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if f != (File{}) {
		t.Errorf("missing file yielded %+v, want zero", f)
	}
}

func TestLoadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shell.yaml")
	data := "backend: gpu\nvsync: false\nmultisampling: 4\ntheme: dark\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := LoadPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.Backend != "gpu" || f.Theme != "dark" {
		t.Errorf("got %+v", f)
	}
	if f.VSync == nil || *f.VSync {
		t.Error("vsync not parsed as explicit false")
	}
	if f.Multisampling == nil || *f.Multisampling != 4 {
		t.Error("multisampling not parsed")
	}
}

func TestLoadPathMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shell.yaml")
	if err := os.WriteFile(path, []byte(":\n\t"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPath(path); err == nil {
		t.Error("malformed yaml did not error")
	}
}
