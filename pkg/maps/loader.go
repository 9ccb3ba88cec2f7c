package maps

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
)

//go:embed data/*.png
var mapFiles embed.FS

// DefaultMapID is the embedded world used when no bitmap is configured.
const DefaultMapID = "world"

// DecodeBitmap decodes a PNG or BMP province bitmap.
func DecodeBitmap(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode bitmap: %w", err)
	}
	return img, nil
}

// LoadWorld reads a bitmap from disk and builds its world.
// The map ID is the file name without extension.
func LoadWorld(filename string, opts Options) (*World, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open map file: %w", err)
	}
	defer f.Close()

	img, err := DecodeBitmap(f)
	if err != nil {
		return nil, err
	}

	id := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return NewWorld(id, displayName(id), img, opts)
}

// LoadEmbedded builds one of the bundled worlds by ID.
func LoadEmbedded(id string, opts Options) (*World, error) {
	data, err := mapFiles.ReadFile(path.Join("data", id+".png"))
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}
	img, err := DecodeBitmap(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return NewWorld(id, displayName(id), img, opts)
}

func displayName(id string) string {
	name := strings.ReplaceAll(id, "_", " ")
	if name == "" {
		return id
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// MapInfo contains basic map information for listing.
type MapInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	ProvinceCount int    `json:"province_count"`
}

// Catalog holds the worlds a process has loaded. Worlds are immutable, so
// one instance is shared by every game on that map.
type Catalog struct {
	mu     sync.RWMutex
	worlds map[string]*World
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{worlds: make(map[string]*World)}
}

// LoadAll builds every embedded world.
func (c *Catalog) LoadAll(opts Options) error {
	entries, err := mapFiles.ReadDir("data")
	if err != nil {
		return fmt.Errorf("failed to read map directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		w, err := LoadEmbedded(id, opts)
		if err != nil {
			return fmt.Errorf("failed to load map %s: %w", entry.Name(), err)
		}
		c.Register(w)
	}
	return nil
}

// Register adds a world to the catalog, replacing any with the same ID.
func (c *Catalog) Register(w *World) {
	if w == nil || w.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.worlds[w.ID] = w
}

// Get retrieves a world by ID.
func (c *Catalog) Get(id string) *World {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.worlds[id]
}

// List returns all worlds sorted by ID.
func (c *Catalog) List() []MapInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]MapInfo, 0, len(c.worlds))
	for _, w := range c.worlds {
		infos = append(infos, MapInfo{
			ID:            w.ID,
			Name:          w.Name,
			Width:         w.Width,
			Height:        w.Height,
			ProvinceCount: len(w.Provinces),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}
