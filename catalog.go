package itemscan

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/kestrelcv/itemscan/internal/analyze"
	"github.com/kestrelcv/itemscan/internal/pixel"
)

// Entity is one known item, weapon, tome, or character in the reference
// catalog.
//
// Icon is the reference image used for template matching. Rarity is
// optional border-tier metadata ("uncommon", "rare", "epic",
// "legendary"); when set it contributes a weak agreement signal to
// ensemble scoring.
type Entity struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Category Category    `json:"category"`
	Rarity   string      `json:"rarity,omitempty"`
	Icon     image.Image `json:"-"`
}

// catalogEntry is an Entity plus precomputed matching state: the icon as
// a pixel block and its dominant color bucket for cheap prefiltering.
type catalogEntry struct {
	entity   Entity
	icon     *pixel.Block
	dominant analyze.Category
}

// Catalog is the read-only reference set of known entities. It is built
// once at initialization and never mutated by the detection subsystem.
type Catalog struct {
	entries []catalogEntry
}

// NewCatalog prepares a catalog from the supplied entities.
//
// Icon pixel data and dominant-color buckets are precomputed here so the
// per-cell scoring path never touches image.Image. Entities with a nil
// or empty icon are kept but can only ever match through non-template
// signals, so in practice they are skipped by the scorer.
func NewCatalog(entities []Entity) *Catalog {
	c := &Catalog{entries: make([]catalogEntry, 0, len(entities))}
	for _, e := range entities {
		entry := catalogEntry{entity: e, dominant: analyze.CategoryNeutral}
		if e.Icon != nil {
			entry.icon = pixel.FromImage(e.Icon)
			entry.dominant = analyze.DominantColor(entry.icon)
		}
		c.entries = append(c.entries, entry)
	}
	return c
}

// Len returns the number of entities in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entities returns a copy of the catalog's entity list.
func (c *Catalog) Entities() []Entity {
	if c == nil {
		return nil
	}
	out := make([]Entity, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.entity
	}
	return out
}

// LoadCatalogDir builds an entity list from a directory of reference
// icons laid out as <dir>/<category>/<id>.<ext> with PNG, JPEG, or GIF
// icons. The entity name is the id with underscores replaced by spaces.
//
// Files with unknown extensions are skipped; a category directory that
// is not one of the known categories maps to CategoryItem.
func LoadCatalogDir(dir string) ([]Entity, error) {
	catDirs, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog dir: %w", err)
	}

	var entities []Entity
	for _, cd := range catDirs {
		if !cd.IsDir() {
			continue
		}
		category := parseCategory(cd.Name())
		files, err := os.ReadDir(filepath.Join(dir, cd.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read category dir %q: %w", cd.Name(), err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(f.Name()))
			switch ext {
			case ".png", ".jpg", ".jpeg", ".gif":
			default:
				continue
			}
			path := filepath.Join(dir, cd.Name(), f.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read icon %q: %w", path, err)
			}
			block, err := pixel.DecodeBytes(data)
			if err != nil {
				return nil, fmt.Errorf("failed to decode icon %q: %w", path, err)
			}
			id := strings.TrimSuffix(f.Name(), ext)
			entities = append(entities, Entity{
				ID:       id,
				Name:     strings.ReplaceAll(id, "_", " "),
				Category: category,
				Icon:     block.ToImage(),
			})
		}
	}
	return entities, nil
}

func parseCategory(name string) Category {
	switch strings.ToLower(name) {
	case "weapon", "weapons":
		return CategoryWeapon
	case "tome", "tomes":
		return CategoryTome
	case "character", "characters":
		return CategoryCharacter
	default:
		return CategoryItem
	}
}
