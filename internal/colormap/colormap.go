// Package colormap maps category names to the RGB colors used when drawing
// annotations.
package colormap

import (
	"fmt"
	"image/color"
	"maps"
	"os"

	"gopkg.in/yaml.v3"

	dberrors "github.com/maruel/nuimages/internal/errors"
)

// Map is a category name to color lookup.
type Map map[string]color.RGBA

// Lookup returns the color of a category.
func (m Map) Lookup(category string) (color.RGBA, error) {
	c, ok := m[category]
	if !ok {
		return color.RGBA{}, dberrors.NotFound(dberrors.ErrColorNotFound, "no color for category %q", category)
	}
	return c, nil
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Default returns a fresh copy of the standard palette.
func Default() Map {
	return maps.Clone(defaultMap)
}

var defaultMap = Map{
	"noise":                                rgb(0, 0, 0),
	"animal":                               rgb(70, 130, 180),
	"human.pedestrian.adult":               rgb(0, 0, 230),
	"human.pedestrian.child":               rgb(135, 206, 235),
	"human.pedestrian.construction_worker": rgb(100, 149, 237),
	"human.pedestrian.personal_mobility":   rgb(219, 112, 147),
	"human.pedestrian.police_officer":      rgb(0, 0, 128),
	"human.pedestrian.stroller":            rgb(240, 128, 128),
	"human.pedestrian.wheelchair":          rgb(138, 43, 226),
	"movable_object.barrier":               rgb(112, 128, 144),
	"movable_object.debris":                rgb(210, 105, 30),
	"movable_object.pushable_pullable":     rgb(105, 105, 105),
	"movable_object.trafficcone":           rgb(47, 79, 79),
	"static_object.bicycle_rack":           rgb(188, 143, 143),
	"vehicle.bicycle":                      rgb(220, 20, 60),
	"vehicle.bus.bendy":                    rgb(255, 127, 80),
	"vehicle.bus.rigid":                    rgb(255, 69, 0),
	"vehicle.car":                          rgb(255, 158, 0),
	"vehicle.construction":                 rgb(233, 150, 70),
	"vehicle.emergency.ambulance":          rgb(255, 83, 0),
	"vehicle.emergency.police":             rgb(255, 215, 0),
	"vehicle.motorcycle":                   rgb(255, 61, 99),
	"vehicle.trailer":                      rgb(255, 140, 0),
	"vehicle.truck":                        rgb(255, 99, 71),
	"flat.driveable_surface":               rgb(0, 207, 191),
	"flat.other":                           rgb(175, 0, 75),
	"flat.sidewalk":                        rgb(75, 0, 75),
	"flat.terrain":                         rgb(112, 180, 60),
	"static.manmade":                       rgb(222, 184, 135),
	"static.other":                         rgb(255, 228, 196),
	"static.vegetation":                    rgb(0, 175, 0),
	"vehicle.ego":                          rgb(255, 240, 245),
}

// RGB is a color as written in YAML: [r, g, b].
type RGB [3]uint8

// Overrides maps category names to colors, as read from a YAML document.
type Overrides map[string]RGB

// Apply returns a copy of m with the overrides set.
func (o Overrides) Apply(m Map) Map {
	out := maps.Clone(m)
	if out == nil {
		out = Map{}
	}
	for name, c := range o {
		out[name] = rgb(c[0], c[1], c[2])
	}
	return out
}

// ParseOverrides parses a YAML mapping of category name to [r, g, b].
func ParseOverrides(data []byte) (Overrides, error) {
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse color overrides: %w", err)
	}
	return o, nil
}

// LoadFile returns base with the overrides found in a YAML file applied. A nil
// base means the default palette. The path is provided by the CLI user.
func LoadFile(path string, base Map) (Map, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-specified color file
	if err != nil {
		return nil, fmt.Errorf("failed to read color file: %w", err)
	}
	o, err := ParseOverrides(data)
	if err != nil {
		return nil, err
	}
	if base == nil {
		base = defaultMap
	}
	return o.Apply(base), nil
}
