// Package dataset exposes the ten tables of one dataset version as a lazily
// loaded, token-indexed store.
package dataset

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	dberrors "github.com/maruel/nuimages/internal/errors"
	"github.com/maruel/nuimages/internal/jsondb"
	"github.com/maruel/nuimages/internal/models"
)

// Options configures Open.
type Options struct {
	// Lazy defers loading each table to its first use. When false every table
	// is loaded by Open, which fails on the first missing one.
	Lazy bool
}

// table is the name-addressable view of a jsondb.Table.
type table interface {
	Name() string
	Load() error
	Loaded() bool
	IndexOf(token string) (int, error)
	Row(token string) (jsondb.Row, error)
}

// Store gives read-only access to one dataset version.
//
// Tables are loaded on first use and kept for the lifetime of the Store. It is
// safe for concurrent use.
type Store struct {
	dataRoot string
	version  string
	lazy     bool

	attribute        *jsondb.Table[*models.Attribute]
	calibratedSensor *jsondb.Table[*models.CalibratedSensor]
	category         *jsondb.Table[*models.Category]
	egoPose          *jsondb.Table[*models.EgoPose]
	log              *jsondb.Table[*models.Log]
	objectAnn        *jsondb.Table[*models.ObjectAnn]
	sample           *jsondb.Table[*models.Sample]
	sampleData       *jsondb.Table[*models.SampleData]
	sensor           *jsondb.Table[*models.Sensor]
	surfaceAnn       *jsondb.Table[*models.SurfaceAnn]
	tables           map[string]table

	objectAnnBySampleData  *jsondb.GroupIndex[string, *models.ObjectAnn]
	surfaceAnnBySampleData *jsondb.GroupIndex[string, *models.SurfaceAnn]

	mu        sync.Mutex
	keyFrames map[models.Modality]map[string]string
}

// Open opens the dataset stored in dataRoot/version.
//
// A nil opts means lazy loading.
func Open(dataRoot, version string, opts *Options) (*Store, error) {
	if opts == nil {
		opts = &Options{Lazy: true}
	}
	s := &Store{
		dataRoot: dataRoot,
		version:  version,
		lazy:     opts.Lazy,
	}
	root := s.TableRoot()
	fi, err := os.Stat(root)
	if err != nil {
		return nil, dberrors.Config(dberrors.ErrVersionNotFound, "database version not found: %s", root).Wrap(err)
	}
	if !fi.IsDir() {
		return nil, dberrors.Config(dberrors.ErrVersionNotFound, "database version is not a directory: %s", root)
	}

	start := time.Now()
	fsys := os.DirFS(root)
	s.attribute = jsondb.NewTable[*models.Attribute](fsys, models.TableAttribute)
	s.calibratedSensor = jsondb.NewTable[*models.CalibratedSensor](fsys, models.TableCalibratedSensor)
	s.category = jsondb.NewTable[*models.Category](fsys, models.TableCategory)
	s.egoPose = jsondb.NewTable[*models.EgoPose](fsys, models.TableEgoPose)
	s.log = jsondb.NewTable[*models.Log](fsys, models.TableLog)
	s.objectAnn = jsondb.NewTable[*models.ObjectAnn](fsys, models.TableObjectAnn)
	s.sample = jsondb.NewTable[*models.Sample](fsys, models.TableSample)
	s.sampleData = jsondb.NewTable[*models.SampleData](fsys, models.TableSampleData)
	s.sensor = jsondb.NewTable[*models.Sensor](fsys, models.TableSensor)
	s.surfaceAnn = jsondb.NewTable[*models.SurfaceAnn](fsys, models.TableSurfaceAnn)
	s.tables = map[string]table{
		models.TableAttribute:        s.attribute,
		models.TableCalibratedSensor: s.calibratedSensor,
		models.TableCategory:         s.category,
		models.TableEgoPose:          s.egoPose,
		models.TableLog:              s.log,
		models.TableObjectAnn:        s.objectAnn,
		models.TableSample:           s.sample,
		models.TableSampleData:       s.sampleData,
		models.TableSensor:           s.sensor,
		models.TableSurfaceAnn:       s.surfaceAnn,
	}
	s.objectAnnBySampleData = jsondb.NewGroupIndex(s.objectAnn, func(a *models.ObjectAnn) string { return a.SampleDataToken })
	s.surfaceAnnBySampleData = jsondb.NewGroupIndex(s.surfaceAnn, func(a *models.SurfaceAnn) string { return a.SampleDataToken })

	if !s.lazy {
		for _, name := range models.TableNames {
			if err := s.tables[name].Load(); err != nil {
				return nil, err
			}
		}
	}
	slog.Debug("Opened dataset", "root", dataRoot, "version", version, "lazy", s.lazy, "dur", time.Since(start).Round(time.Millisecond))
	return s, nil
}

// DataRoot returns the dataset root directory.
func (s *Store) DataRoot() string {
	return s.dataRoot
}

// Version returns the dataset version, e.g. "v1.0-mini".
func (s *Store) Version() string {
	return s.version
}

// Lazy reports whether tables are loaded on first use.
func (s *Store) Lazy() bool {
	return s.lazy
}

// TableRoot returns the directory holding the table files.
func (s *Store) TableRoot() string {
	return filepath.Join(s.dataRoot, s.version)
}

func (s *Store) table(name string) (table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, dberrors.NotFound(dberrors.ErrUnknownTable, "table %s not found", name)
	}
	return t, nil
}

// Load loads a table if it isn't already loaded.
func (s *Store) Load(name string) error {
	t, err := s.table(name)
	if err != nil {
		return err
	}
	return t.Load()
}

// Loaded reports whether a table is resident. Unknown tables are never loaded.
func (s *Store) Loaded(name string) bool {
	t, ok := s.tables[name]
	return ok && t.Loaded()
}

// Get returns the record of a table with the given token in constant time.
func (s *Store) Get(name, token string) (models.Record, error) {
	t, err := s.table(name)
	if err != nil {
		return nil, err
	}
	return t.Row(token)
}

// IndexOf returns the position of a record in its table in constant time.
func (s *Store) IndexOf(name, token string) (int, error) {
	t, err := s.table(name)
	if err != nil {
		return 0, err
	}
	return t.IndexOf(token)
}

// SampleToKeyFrame returns the token of the keyframe SampleData of a sample
// for the given modality.
//
// The sample → keyframe map is built on the first call by one scan of the
// sample_data table.
func (s *Store) SampleToKeyFrame(sampleToken string, modality models.Modality) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keyFrames == nil {
		rows, err := s.sampleData.Rows()
		if err != nil {
			return "", err
		}
		m := map[models.Modality]map[string]string{
			models.ModalityCamera: {},
			models.ModalityLidar:  {},
		}
		for _, sd := range rows {
			if sd.IsKeyFrame {
				m[sd.Modality()][sd.SampleToken] = sd.Token
			}
		}
		s.keyFrames = m
	}
	token, ok := s.keyFrames[modality][sampleToken]
	if !ok {
		return "", dberrors.NotFound(dberrors.ErrKeyFrameNotFound, "no %s keyframe for sample %q", modality, sampleToken)
	}
	return token, nil
}

// ObjectAnnsFor returns the object annotations of a SampleData in table order.
func (s *Store) ObjectAnnsFor(sampleDataToken string) ([]*models.ObjectAnn, error) {
	return s.objectAnnBySampleData.Lookup(sampleDataToken)
}

// SurfaceAnnsFor returns the surface annotations of a SampleData in table order.
func (s *Store) SurfaceAnnsFor(sampleDataToken string) ([]*models.SurfaceAnn, error) {
	return s.surfaceAnnBySampleData.Lookup(sampleDataToken)
}

// Typed accessors.

// Attribute returns the attribute with the given token.
func (s *Store) Attribute(token string) (*models.Attribute, error) { return s.attribute.Get(token) }

// CalibratedSensor returns the calibrated sensor with the given token.
func (s *Store) CalibratedSensor(token string) (*models.CalibratedSensor, error) {
	return s.calibratedSensor.Get(token)
}

// Category returns the category with the given token.
func (s *Store) Category(token string) (*models.Category, error) { return s.category.Get(token) }

// EgoPose returns the ego pose with the given token.
func (s *Store) EgoPose(token string) (*models.EgoPose, error) { return s.egoPose.Get(token) }

// Log returns the log with the given token.
func (s *Store) Log(token string) (*models.Log, error) { return s.log.Get(token) }

// ObjectAnn returns the object annotation with the given token.
func (s *Store) ObjectAnn(token string) (*models.ObjectAnn, error) { return s.objectAnn.Get(token) }

// Sample returns the sample with the given token.
func (s *Store) Sample(token string) (*models.Sample, error) { return s.sample.Get(token) }

// SampleData returns the sample data with the given token.
func (s *Store) SampleData(token string) (*models.SampleData, error) { return s.sampleData.Get(token) }

// Sensor returns the sensor with the given token.
func (s *Store) Sensor(token string) (*models.Sensor, error) { return s.sensor.Get(token) }

// SurfaceAnn returns the surface annotation with the given token.
func (s *Store) SurfaceAnn(token string) (*models.SurfaceAnn, error) { return s.surfaceAnn.Get(token) }

// Whole tables, in file order. The slices are shared and must not be modified.

// Attributes returns the attribute table.
func (s *Store) Attributes() ([]*models.Attribute, error) { return s.attribute.Rows() }

// CalibratedSensors returns the calibrated_sensor table.
func (s *Store) CalibratedSensors() ([]*models.CalibratedSensor, error) {
	return s.calibratedSensor.Rows()
}

// Categories returns the category table.
func (s *Store) Categories() ([]*models.Category, error) { return s.category.Rows() }

// EgoPoses returns the ego_pose table.
func (s *Store) EgoPoses() ([]*models.EgoPose, error) { return s.egoPose.Rows() }

// Logs returns the log table.
func (s *Store) Logs() ([]*models.Log, error) { return s.log.Rows() }

// ObjectAnns returns the object_ann table.
func (s *Store) ObjectAnns() ([]*models.ObjectAnn, error) { return s.objectAnn.Rows() }

// Samples returns the sample table.
func (s *Store) Samples() ([]*models.Sample, error) { return s.sample.Rows() }

// SampleDatas returns the sample_data table.
func (s *Store) SampleDatas() ([]*models.SampleData, error) { return s.sampleData.Rows() }

// Sensors returns the sensor table.
func (s *Store) Sensors() ([]*models.Sensor, error) { return s.sensor.Rows() }

// SurfaceAnns returns the surface_ann table.
func (s *Store) SurfaceAnns() ([]*models.SurfaceAnn, error) { return s.surfaceAnn.Rows() }
