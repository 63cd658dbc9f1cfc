package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/maruel/nuimages/internal/dataset/datasettest"
	dberrors "github.com/maruel/nuimages/internal/errors"
	"github.com/maruel/nuimages/internal/models"
)

// openMini writes the mini dataset to a temp directory and opens it.
func openMini(t *testing.T, opts *Options) (*Store, *datasettest.Dataset) {
	t.Helper()
	d := datasettest.Mini()
	root := d.Write(t, t.TempDir(), datasettest.Version)
	s, err := Open(root, datasettest.Version, opts)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s, d
}

func TestOpen(t *testing.T) {
	t.Run("lazy", func(t *testing.T) {
		s, _ := openMini(t, nil)
		if !s.Lazy() {
			t.Error("nil options should mean lazy")
		}
		for _, name := range models.TableNames {
			if s.Loaded(name) {
				t.Errorf("table %s loaded before first access", name)
			}
		}
	})

	t.Run("eager", func(t *testing.T) {
		s, _ := openMini(t, &Options{Lazy: false})
		for _, name := range models.TableNames {
			if !s.Loaded(name) {
				t.Errorf("table %s not loaded by eager Open", name)
			}
		}
	})

	t.Run("eager missing table", func(t *testing.T) {
		d := datasettest.Mini()
		d.Missing = []string{models.TableEgoPose}
		root := d.Write(t, t.TempDir(), datasettest.Version)
		_, err := Open(root, datasettest.Version, &Options{Lazy: false})
		if !dberrors.IsNotFound(err) || dberrors.CodeOf(err) != dberrors.ErrTableFileNotFound {
			t.Errorf("Open() error = %v, want TABLE_FILE_NOT_FOUND", err)
		}
		// The same dataset opens lazily; only touching the table fails.
		s, err := Open(root, datasettest.Version, &Options{Lazy: true})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Get(models.TableEgoPose, "ego1"); dberrors.CodeOf(err) != dberrors.ErrTableFileNotFound {
			t.Errorf("Get(ego_pose) error = %v, want TABLE_FILE_NOT_FOUND", err)
		}
		if _, err := s.Get(models.TableSample, "s1"); err != nil {
			t.Errorf("Get(sample) failed: %v", err)
		}
	})

	t.Run("missing version", func(t *testing.T) {
		for _, opts := range []*Options{{Lazy: true}, {Lazy: false}} {
			_, err := Open(t.TempDir(), "v9.9", opts)
			if !dberrors.IsConfig(err) || dberrors.CodeOf(err) != dberrors.ErrVersionNotFound {
				t.Errorf("Open(lazy=%v) error = %v, want VERSION_NOT_FOUND", opts.Lazy, err)
			}
		}
	})

	t.Run("version is a file", func(t *testing.T) {
		root := t.TempDir()
		if err := os.WriteFile(filepath.Join(root, "v1"), nil, 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Open(root, "v1", nil); !dberrors.IsConfig(err) {
			t.Errorf("Open() error = %v, want config error", err)
		}
	})

	t.Run("paths", func(t *testing.T) {
		s, _ := openMini(t, nil)
		if got, want := s.TableRoot(), filepath.Join(s.DataRoot(), datasettest.Version); got != want {
			t.Errorf("TableRoot() = %q, want %q", got, want)
		}
		if s.Version() != datasettest.Version {
			t.Errorf("Version() = %q", s.Version())
		}
	})
}

func TestGet(t *testing.T) {
	t.Run("every record", func(t *testing.T) {
		s, d := openMini(t, nil)
		check := func(name string, want []models.Record) {
			t.Run(name, func(t *testing.T) {
				for i, r := range want {
					got, err := s.Get(name, r.GetToken())
					if err != nil {
						t.Fatalf("Get(%s, %s) failed: %v", name, r.GetToken(), err)
					}
					if diff := cmp.Diff(r, got); diff != "" {
						t.Errorf("Get(%s, %s) mismatch (-want +got):\n%s", name, r.GetToken(), diff)
					}
					idx, err := s.IndexOf(name, r.GetToken())
					if err != nil || idx != i {
						t.Errorf("IndexOf(%s, %s) = %d, %v; want %d", name, r.GetToken(), idx, err, i)
					}
				}
				_, err := s.Get(name, "no-such-token")
				if !dberrors.IsNotFound(err) || dberrors.CodeOf(err) != dberrors.ErrTokenNotFound {
					t.Errorf("Get(%s, no-such-token) error = %v, want TOKEN_NOT_FOUND", name, err)
				}
			})
		}
		check(models.TableAttribute, records(d.Attribute))
		check(models.TableCalibratedSensor, records(d.CalibratedSensor))
		check(models.TableCategory, records(d.Category))
		check(models.TableEgoPose, records(d.EgoPose))
		check(models.TableLog, records(d.Log))
		check(models.TableObjectAnn, records(d.ObjectAnn))
		check(models.TableSample, records(d.Sample))
		check(models.TableSampleData, records(d.SampleData))
		check(models.TableSensor, records(d.Sensor))
		check(models.TableSurfaceAnn, records(d.SurfaceAnn))
	})

	t.Run("unknown table", func(t *testing.T) {
		s, _ := openMini(t, nil)
		for _, err := range []error{
			func() error { _, err := s.Get("scene", "s1"); return err }(),
			func() error { _, err := s.IndexOf("scene", "s1"); return err }(),
			s.Load("scene"),
		} {
			if !dberrors.IsNotFound(err) || dberrors.CodeOf(err) != dberrors.ErrUnknownTable {
				t.Errorf("error = %v, want UNKNOWN_TABLE", err)
			}
		}
		if s.Loaded("scene") {
			t.Error("Loaded(scene) = true")
		}
	})

	t.Run("typed", func(t *testing.T) {
		s, _ := openMini(t, nil)
		sd, err := s.SampleData("sd-cam1")
		if err != nil {
			t.Fatal(err)
		}
		cs, err := s.CalibratedSensor(sd.CalibratedSensorToken)
		if err != nil {
			t.Fatal(err)
		}
		sensor, err := s.Sensor(cs.SensorToken)
		if err != nil {
			t.Fatal(err)
		}
		if sensor.Channel != "CAM_FRONT" {
			t.Errorf("channel = %q, want CAM_FRONT", sensor.Channel)
		}
		sample, err := s.Sample(sd.SampleToken)
		if err != nil {
			t.Fatal(err)
		}
		if l, err := s.Log(sample.LogToken); err != nil || l.Location != "singapore-onenorth" {
			t.Errorf("Log() = %+v, %v", l, err)
		}
		if _, err := s.Category("nope"); !dberrors.IsNotFound(err) {
			t.Errorf("Category(nope) error = %v", err)
		}
	})
}

func records[T models.Record](rows []T) []models.Record {
	out := make([]models.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r)
	}
	return out
}

func TestLazyMaterialization(t *testing.T) {
	s, _ := openMini(t, nil)
	if _, err := s.Get(models.TableSampleData, "sd-cam1"); err != nil {
		t.Fatal(err)
	}
	for _, name := range models.TableNames {
		want := name == models.TableSampleData
		if got := s.Loaded(name); got != want {
			t.Errorf("Loaded(%s) = %v, want %v", name, got, want)
		}
	}
	// Stays resident.
	if err := s.Load(models.TableSampleData); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(models.TableSampleData, "sd-cam2"); err != nil {
		t.Fatal(err)
	}
	if !s.Loaded(models.TableSampleData) {
		t.Error("table dropped after use")
	}
}

func TestSampleToKeyFrame(t *testing.T) {
	t.Run("consistency", func(t *testing.T) {
		s, d := openMini(t, nil)
		n := 0
		for _, sd := range d.SampleData {
			if !sd.IsKeyFrame {
				continue
			}
			modality := models.ModalityLidar
			if sd.FileFormat == models.FileFormatJPG {
				modality = models.ModalityCamera
			}
			got, err := s.SampleToKeyFrame(sd.SampleToken, modality)
			if err != nil {
				t.Fatalf("SampleToKeyFrame(%s, %s) failed: %v", sd.SampleToken, modality, err)
			}
			if got != sd.Token {
				t.Errorf("SampleToKeyFrame(%s, %s) = %q, want %q", sd.SampleToken, modality, got, sd.Token)
			}
			n++
		}
		if n != 3 {
			t.Errorf("checked %d keyframes, want 3", n)
		}
	})

	t.Run("missing", func(t *testing.T) {
		s, _ := openMini(t, nil)
		tests := []struct {
			sample   string
			modality models.Modality
		}{
			{"s2", models.ModalityLidar},
			{"no-such-sample", models.ModalityCamera},
			{"s1", models.Modality("radar")},
		}
		for _, tt := range tests {
			_, err := s.SampleToKeyFrame(tt.sample, tt.modality)
			if !dberrors.IsNotFound(err) || dberrors.CodeOf(err) != dberrors.ErrKeyFrameNotFound {
				t.Errorf("SampleToKeyFrame(%s, %s) error = %v, want KEYFRAME_NOT_FOUND", tt.sample, tt.modality, err)
			}
		}
	})
}

func TestAnnotationsFor(t *testing.T) {
	s, _ := openMini(t, nil)
	objs, err := s.ObjectAnnsFor("sd-cam1")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, a := range objs {
		got = append(got, a.Token)
	}
	if diff := cmp.Diff([]string{"obj-ped", "obj-car"}, got); diff != "" {
		t.Errorf("ObjectAnnsFor(sd-cam1) mismatch (-want +got):\n%s", diff)
	}
	surfs, err := s.SurfaceAnnsFor("sd-cam2")
	if err != nil {
		t.Fatal(err)
	}
	if len(surfs) != 1 || surfs[0].Token != "surf-road2" {
		t.Errorf("SurfaceAnnsFor(sd-cam2) = %+v", surfs)
	}
	if objs, err := s.ObjectAnnsFor("sd-lidar1"); err != nil || len(objs) != 0 {
		t.Errorf("ObjectAnnsFor(sd-lidar1) = %v, %v; want empty", objs, err)
	}
}

func TestWholeTables(t *testing.T) {
	s, d := openMini(t, nil)
	lengths := []struct {
		name string
		rows func() (int, error)
		want int
	}{
		{models.TableAttribute, func() (int, error) { r, err := s.Attributes(); return len(r), err }, len(d.Attribute)},
		{models.TableCalibratedSensor, func() (int, error) { r, err := s.CalibratedSensors(); return len(r), err }, len(d.CalibratedSensor)},
		{models.TableCategory, func() (int, error) { r, err := s.Categories(); return len(r), err }, len(d.Category)},
		{models.TableEgoPose, func() (int, error) { r, err := s.EgoPoses(); return len(r), err }, len(d.EgoPose)},
		{models.TableLog, func() (int, error) { r, err := s.Logs(); return len(r), err }, len(d.Log)},
		{models.TableObjectAnn, func() (int, error) { r, err := s.ObjectAnns(); return len(r), err }, len(d.ObjectAnn)},
		{models.TableSample, func() (int, error) { r, err := s.Samples(); return len(r), err }, len(d.Sample)},
		{models.TableSampleData, func() (int, error) { r, err := s.SampleDatas(); return len(r), err }, len(d.SampleData)},
		{models.TableSensor, func() (int, error) { r, err := s.Sensors(); return len(r), err }, len(d.Sensor)},
		{models.TableSurfaceAnn, func() (int, error) { r, err := s.SurfaceAnns(); return len(r), err }, len(d.SurfaceAnn)},
	}
	for _, tt := range lengths {
		got, err := tt.rows()
		if err != nil || got != tt.want {
			t.Errorf("%s: %d rows, %v; want %d", tt.name, got, err, tt.want)
		}
		if !s.Loaded(tt.name) {
			t.Errorf("%s not loaded after reading all rows", tt.name)
		}
	}
}
