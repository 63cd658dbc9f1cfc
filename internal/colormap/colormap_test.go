package colormap

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	dberrors "github.com/maruel/nuimages/internal/errors"
)

func TestLookup(t *testing.T) {
	m := Default()
	c, err := m.Lookup("vehicle.car")
	if err != nil {
		t.Fatal(err)
	}
	if want := (color.RGBA{255, 158, 0, 255}); c != want {
		t.Errorf("Lookup(vehicle.car) = %v, want %v", c, want)
	}
	_, err = m.Lookup("spaceship")
	if !dberrors.IsNotFound(err) || dberrors.CodeOf(err) != dberrors.ErrColorNotFound {
		t.Errorf("Lookup(spaceship) error = %v, want COLOR_NOT_FOUND", err)
	}

	// Default hands out copies.
	m["vehicle.car"] = color.RGBA{}
	if c, _ := Default().Lookup("vehicle.car"); c.R != 255 {
		t.Error("Default() shares state between calls")
	}
}

func TestOverrides(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		o, err := ParseOverrides([]byte("person: [255, 0, 0]\nvehicle.car: [1, 2, 3]\n"))
		if err != nil {
			t.Fatal(err)
		}
		m := o.Apply(Default())
		tests := []struct {
			name string
			want color.RGBA
		}{
			{"person", color.RGBA{255, 0, 0, 255}},
			{"vehicle.car", color.RGBA{1, 2, 3, 255}},
			{"flat.sidewalk", color.RGBA{75, 0, 75, 255}},
		}
		for _, tt := range tests {
			if got, err := m.Lookup(tt.name); err != nil || got != tt.want {
				t.Errorf("Lookup(%q) = %v, %v; want %v", tt.name, got, err, tt.want)
			}
		}
	})

	t.Run("nil base", func(t *testing.T) {
		m := Overrides{"x": {9, 9, 9}}.Apply(nil)
		if _, err := m.Lookup("x"); err != nil {
			t.Error(err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, data := range []string{"person: [300, 0, 0]", "person: red", "- 1\n- 2"} {
			if _, err := ParseOverrides([]byte(data)); err == nil {
				t.Errorf("ParseOverrides(%q) succeeded", data)
			}
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "colors.yaml")
		if err := os.WriteFile(path, []byte("person: [255, 0, 0]\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		m, err := LoadFile(path, nil)
		if err != nil {
			t.Fatal(err)
		}
		if c, err := m.Lookup("person"); err != nil || c.R != 255 {
			t.Errorf("Lookup(person) = %v, %v", c, err)
		}
		if _, err := m.Lookup("vehicle.car"); err != nil {
			t.Errorf("nil base dropped the default palette: %v", err)
		}

		base := Map{"vehicle.car": rgb(1, 2, 3)}
		m, err = LoadFile(path, base)
		if err != nil {
			t.Fatal(err)
		}
		if c, _ := m.Lookup("vehicle.car"); c != rgb(1, 2, 3) {
			t.Errorf("Lookup(vehicle.car) = %v, want the base color", c)
		}
		if _, err := base.Lookup("person"); err == nil {
			t.Error("LoadFile modified its base")
		}
		if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
			t.Error("LoadFile(missing) succeeded")
		}
	})
}
