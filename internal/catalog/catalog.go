// Package catalog provides the static crop-profile table: per-crop
// physical and economic parameters used by every scoring stage.
//
// The catalog is assembled once at process start (built-in table,
// optionally merged with a YAML file) and is read-only afterward, so
// concurrent workflow runs share it without locking.
package catalog

import (
	"fmt"
	"sort"

	"github.com/spf13/viper"

	"github.com/agrisense-ai/agrisense/pkg/models"
	"github.com/agrisense-ai/agrisense/pkg/utils"
)

// Catalog maps canonical crop names to their profiles. Unknown crops
// resolve to a generic default profile.
type Catalog struct {
	profiles map[string]models.CropProfile
	generic  models.CropProfile
}

// NewBuiltin returns a catalog containing only the built-in profiles.
func NewBuiltin() *Catalog {
	c := &Catalog{
		profiles: make(map[string]models.CropProfile, len(builtinProfiles)),
		generic:  genericProfile,
	}
	for _, p := range builtinProfiles {
		c.profiles[p.Name] = p
	}
	return c
}

// Load returns the built-in catalog merged with profiles from a YAML
// file. File entries override built-ins with the same name. An empty
// path returns the built-in catalog unchanged.
func Load(path string) (*Catalog, error) {
	c := NewBuiltin()
	if path == "" {
		return c, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}

	var extra []models.CropProfile
	if err := v.UnmarshalKey("profiles", &extra); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}

	for _, p := range extra {
		name := utils.NormalizeCrop(p.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog file %s: profile with empty name", path)
		}
		p.Name = name
		c.profiles[name] = p
	}
	return c, nil
}

// Lookup resolves a crop name (case-insensitive, alias-aware) to its
// profile. The second return value is false when the crop is unknown
// and the generic default profile was returned instead.
func (c *Catalog) Lookup(crop string) (models.CropProfile, bool) {
	name := utils.NormalizeCrop(crop)
	if p, ok := c.profiles[name]; ok {
		return p, true
	}
	return c.generic, false
}

// Generic returns the default profile used for unknown crops.
func (c *Catalog) Generic() models.CropProfile {
	return c.generic
}

// Names returns the sorted list of known crop names.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.profiles))
	for name := range c.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of known profiles.
func (c *Catalog) Count() int {
	return len(c.profiles)
}
