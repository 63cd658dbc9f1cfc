// Package datasettest writes small datasets to disk for tests.
package datasettest

import (
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/maruel/nuimages/internal/models"
)

// Version is the version directory used when none is given.
const Version = "v1.0-test"

// Dataset holds the rows of every table. A nil slice is written as an empty
// table; tables listed in Missing are not written at all.
type Dataset struct {
	Attribute        []*models.Attribute
	CalibratedSensor []*models.CalibratedSensor
	Category         []*models.Category
	EgoPose          []*models.EgoPose
	Log              []*models.Log
	ObjectAnn        []*models.ObjectAnn
	Sample           []*models.Sample
	SampleData       []*models.SampleData
	Sensor           []*models.Sensor
	SurfaceAnn       []*models.SurfaceAnn

	Missing []string
}

// Write stores the dataset in root/version and returns root.
func (d *Dataset) Write(t testing.TB, root, version string) string {
	t.Helper()
	dir := filepath.Join(root, version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	tables := map[string]any{
		models.TableAttribute:        orEmpty(d.Attribute),
		models.TableCalibratedSensor: orEmpty(d.CalibratedSensor),
		models.TableCategory:         orEmpty(d.Category),
		models.TableEgoPose:          orEmpty(d.EgoPose),
		models.TableLog:              orEmpty(d.Log),
		models.TableObjectAnn:        orEmpty(d.ObjectAnn),
		models.TableSample:           orEmpty(d.Sample),
		models.TableSampleData:       orEmpty(d.SampleData),
		models.TableSensor:           orEmpty(d.Sensor),
		models.TableSurfaceAnn:       orEmpty(d.SurfaceAnn),
	}
	for name, rows := range tables {
		if slices.Contains(d.Missing, name) {
			continue
		}
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func orEmpty[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}

// WriteJPEG writes a w x h image filled with c to root/name at maximum quality.
func WriteJPEG(t testing.TB, root, name string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatal(err)
	}
}

// Mini returns a dataset with one log, two samples, camera and lidar frames,
// and a few annotations on the first camera keyframe.
//
//	sample s1: sd-cam1 (jpg keyframe), sd-cam1b (jpg, not keyframe), sd-lidar1 (bin keyframe)
//	sample s2: sd-cam2 (jpg keyframe)
func Mini() *Dataset {
	return &Dataset{
		Attribute: []*models.Attribute{
			{Token: "attr-standing", Name: "pedestrian.standing", Description: "Standing still"},
			{Token: "attr-moving", Name: "vehicle.moving", Description: "Moving vehicle"},
			{Token: "attr-unused", Name: "cycle.with_rider", Description: "Rider on a cycle"},
		},
		Sensor: []*models.Sensor{
			{Token: "sensor-front", Channel: "CAM_FRONT", Modality: "camera"},
			{Token: "sensor-back", Channel: "CAM_BACK", Modality: "camera"},
			{Token: "sensor-lidar", Channel: "LIDAR_TOP", Modality: "lidar"},
		},
		CalibratedSensor: []*models.CalibratedSensor{
			{Token: "cs-front", SensorToken: "sensor-front", Rotation: [4]float64{1, 0, 0, 0}},
			{Token: "cs-back", SensorToken: "sensor-back", Rotation: [4]float64{1, 0, 0, 0}},
			{Token: "cs-front2", SensorToken: "sensor-front", Rotation: [4]float64{1, 0, 0, 0}},
			{Token: "cs-lidar", SensorToken: "sensor-lidar", Rotation: [4]float64{1, 0, 0, 0}},
		},
		Category: []*models.Category{
			{Token: "cat-adult", Name: "human.pedestrian.adult", Description: "Adult subcategory"},
			{Token: "cat-car", Name: "vehicle.car", Description: "Vehicle designed primarily for personal use"},
			{Token: "cat-road", Name: "flat.driveable_surface", Description: "Surfaces should be regarded with no concern of traffic rules"},
			{Token: "cat-empty", Name: "animal", Description: "All animals"},
		},
		EgoPose: []*models.EgoPose{
			{Token: "ego1", Rotation: [4]float64{1, 0, 0, 0}, Timestamp: 1000000},
		},
		Log: []*models.Log{
			{Token: "log1", Logfile: "n013-2018-08-01", Vehicle: "n013", DateCaptured: "2018-08-01", Location: "singapore-onenorth"},
			{Token: "log2", Logfile: "n008-2018-09-18", Vehicle: "n008", DateCaptured: "2018-09-18", Location: "boston-seaport"},
		},
		Sample: []*models.Sample{
			{Token: "s1", Timestamp: 1000000, LogToken: "log1", KeyCameraToken: "sd-cam1"},
			{Token: "s2", Timestamp: 2000000, LogToken: "log1", KeyCameraToken: "sd-cam2"},
		},
		SampleData: []*models.SampleData{
			{Token: "sd-cam1b", SampleToken: "s1", CalibratedSensorToken: "cs-front", EgoPoseToken: "ego1", Filename: "sweeps/CAM_FRONT/b.jpg", FileFormat: "jpg", Width: 16, Height: 12, Timestamp: 1100000},
			{Token: "sd-cam1", SampleToken: "s1", CalibratedSensorToken: "cs-front", EgoPoseToken: "ego1", Filename: "samples/CAM_FRONT/a.jpg", FileFormat: "jpg", Width: 16, Height: 12, Timestamp: 1000000, IsKeyFrame: true, Next: "sd-cam1b"},
			{Token: "sd-lidar1", SampleToken: "s1", CalibratedSensorToken: "cs-lidar", EgoPoseToken: "ego1", Filename: "samples/LIDAR_TOP/a.bin", FileFormat: "bin", Timestamp: 950000, IsKeyFrame: true},
			{Token: "sd-cam2", SampleToken: "s2", CalibratedSensorToken: "cs-back", EgoPoseToken: "ego1", Filename: "samples/CAM_BACK/c.jpg", FileFormat: "jpg", Width: 16, Height: 12, Timestamp: 2000000, IsKeyFrame: true},
		},
		ObjectAnn: []*models.ObjectAnn{
			{Token: "obj-ped", SampleDataToken: "sd-cam1", CategoryToken: "cat-adult", AttributeTokens: []string{"attr-standing"}, BBox: [4]int{1, 1, 5, 9}},
			{Token: "obj-car", SampleDataToken: "sd-cam1", CategoryToken: "cat-car", AttributeTokens: []string{"attr-moving", "attr-standing"}, BBox: [4]int{8, 2, 14, 8}},
			{Token: "obj-car2", SampleDataToken: "sd-cam2", CategoryToken: "cat-car", AttributeTokens: []string{}, BBox: [4]int{0, 0, 3, 3}},
		},
		SurfaceAnn: []*models.SurfaceAnn{
			{Token: "surf-road", SampleDataToken: "sd-cam1", CategoryToken: "cat-road"},
			{Token: "surf-road2", SampleDataToken: "sd-cam2", CategoryToken: "cat-road"},
		},
	}
}
