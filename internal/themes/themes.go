// Package themes maintains the inventory of installed themes: one
// subdirectory per theme under the themes root, each carrying a theme.toml
// manifest. Resolution validates every candidate theme slug against this
// inventory before applying an override.
package themes

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/osomworks/themerouter/internal/types"
)

// ManifestFile is the per-theme metadata file name.
const ManifestFile = "theme.toml"

// Manifest is the parsed theme.toml.
type Manifest struct {
	Name        string `toml:"name"`
	Version     string `toml:"version"`
	Author      string `toml:"author"`
	Description string `toml:"description"`
}

// Inventory is the set of installed themes. Safe for concurrent reads;
// Reload swaps the whole set atomically.
type Inventory struct {
	dir string

	mu     sync.RWMutex
	themes map[types.ThemeSlug]Manifest
}

// NewInventory creates an inventory rooted at dir and performs the initial
// scan. A missing themes directory is an error; a theme directory without a
// readable manifest is still listed under its slug with an empty manifest,
// matching hosts that treat the directory itself as the theme identity.
func NewInventory(dir string) (*Inventory, error) {
	inv := &Inventory{dir: dir, themes: make(map[types.ThemeSlug]Manifest)}
	if err := inv.Reload(); err != nil {
		return nil, err
	}
	return inv, nil
}

// Reload rescans the themes directory.
func (inv *Inventory) Reload() error {
	entries, err := os.ReadDir(inv.dir)
	if err != nil {
		return fmt.Errorf("failed to read themes directory %s: %w", inv.dir, err)
	}

	themes := make(map[types.ThemeSlug]Manifest, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		slug := types.ThemeSlug(entry.Name())

		var m Manifest
		raw, err := os.ReadFile(filepath.Join(inv.dir, entry.Name(), ManifestFile))
		if err == nil {
			// Unparseable manifests degrade to the bare slug.
			_ = toml.Unmarshal(raw, &m)
		}
		themes[slug] = m
	}

	inv.mu.Lock()
	inv.themes = themes
	inv.mu.Unlock()
	return nil
}

// Exists reports whether a theme with the given slug is installed.
func (inv *Inventory) Exists(slug types.ThemeSlug) bool {
	if slug == "" {
		return false
	}
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	_, ok := inv.themes[slug]
	return ok
}

// Name returns the theme's display name, falling back to the slug when the
// manifest carries none or the theme is not installed.
func (inv *Inventory) Name(slug types.ThemeSlug) string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	if m, ok := inv.themes[slug]; ok && m.Name != "" {
		return m.Name
	}
	return string(slug)
}

// Slugs returns all installed theme slugs, sorted.
func (inv *Inventory) Slugs() []types.ThemeSlug {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	slugs := make([]types.ThemeSlug, 0, len(inv.themes))
	for slug := range inv.themes {
		slugs = append(slugs, slug)
	}
	sort.Slice(slugs, func(i, j int) bool { return slugs[i] < slugs[j] })
	return slugs
}
