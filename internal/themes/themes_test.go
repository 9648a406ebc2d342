package themes

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTheme(t *testing.T, dir, slug, manifest string) {
	t.Helper()
	themeDir := filepath.Join(dir, slug)
	if err := os.MkdirAll(themeDir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v, want nil", err)
	}
	if manifest != "" {
		if err := os.WriteFile(filepath.Join(themeDir, ManifestFile), []byte(manifest), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v, want nil", err)
		}
	}
}

func TestNewInventory(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "themeB", "name = \"Theme B\"\nversion = \"1.2.0\"\n")
	writeTheme(t, dir, "bare-theme", "")
	if err := os.WriteFile(filepath.Join(dir, "not-a-theme.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v, want nil", err)
	}

	inv, err := NewInventory(dir)
	if err != nil {
		t.Fatalf("NewInventory() error = %v, want nil", err)
	}

	if !inv.Exists("themeB") {
		t.Errorf("Exists(themeB) = false, want true")
	}
	if !inv.Exists("bare-theme") {
		t.Errorf("Exists(bare-theme) = false, want true without manifest")
	}
	if inv.Exists("not-a-theme.txt") {
		t.Errorf("plain file listed as theme")
	}
	if inv.Exists("") {
		t.Errorf("Exists(\"\") = true, want false")
	}

	if got := inv.Name("themeB"); got != "Theme B" {
		t.Errorf("Name(themeB) = %q, want Theme B", got)
	}
	if got := inv.Name("bare-theme"); got != "bare-theme" {
		t.Errorf("Name(bare-theme) = %q, want slug fallback", got)
	}

	slugs := inv.Slugs()
	if len(slugs) != 2 || slugs[0] != "bare-theme" || slugs[1] != "themeB" {
		t.Errorf("Slugs() = %v, want sorted [bare-theme themeB]", slugs)
	}
}

func TestNewInventory_MissingDir(t *testing.T) {
	if _, err := NewInventory(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("NewInventory() error = nil, want error for missing directory")
	}
}

func TestReload_PicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "themeB", "")

	inv, err := NewInventory(dir)
	if err != nil {
		t.Fatalf("NewInventory() error = %v, want nil", err)
	}
	if inv.Exists("themeC") {
		t.Fatalf("Exists(themeC) = true before install")
	}

	writeTheme(t, dir, "themeC", "name = \"Theme C\"\n")
	if err := inv.Reload(); err != nil {
		t.Fatalf("Reload() error = %v, want nil", err)
	}
	if !inv.Exists("themeC") {
		t.Errorf("Exists(themeC) = false after reload")
	}
}

func TestWatcher_ReloadsOnInstall(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "themeB", "")

	inv, err := NewInventory(dir)
	if err != nil {
		t.Fatalf("NewInventory() error = %v, want nil", err)
	}
	w, err := NewWatcher(inv)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v, want nil", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v, want nil", err)
	}
	defer w.Stop()

	writeTheme(t, dir, "themeC", "")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if inv.Exists("themeC") {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Exists(themeC) = false after install, watcher never reloaded")
}
