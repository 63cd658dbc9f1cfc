// Package models defines the record types of the dataset tables.
//
// Records never embed one another: every relationship is a token field that
// names a row in another table.
package models

// Record is implemented by every table row.
type Record interface {
	GetToken() string
}

// Table names, as found on disk as `<name>.json`.
const (
	TableAttribute        = "attribute"
	TableCalibratedSensor = "calibrated_sensor"
	TableCategory         = "category"
	TableEgoPose          = "ego_pose"
	TableLog              = "log"
	TableObjectAnn        = "object_ann"
	TableSample           = "sample"
	TableSampleData       = "sample_data"
	TableSensor           = "sensor"
	TableSurfaceAnn       = "surface_ann"
)

// TableNames lists every table in canonical order.
var TableNames = []string{
	TableAttribute,
	TableCalibratedSensor,
	TableCategory,
	TableEgoPose,
	TableLog,
	TableObjectAnn,
	TableSample,
	TableSampleData,
	TableSensor,
	TableSurfaceAnn,
}

// Modality is the kind of sensor data held by a SampleData.
type Modality string

const (
	// ModalityCamera is an image.
	ModalityCamera Modality = "camera"
	// ModalityLidar is a point cloud.
	ModalityLidar Modality = "lidar"
)

// File formats of SampleData.
const (
	FileFormatJPG = "jpg"
	FileFormatBin = "bin"
)

// Attribute is a describable property of an instance, such as pose or occlusion.
type Attribute struct {
	Token       string `json:"token" jsonschema:"description=Unique record identifier"`
	Name        string `json:"name" jsonschema:"description=Attribute name"`
	Description string `json:"description" jsonschema:"description=Attribute description"`
}

// CalibratedSensor is the calibration of a sensor at a point in time.
type CalibratedSensor struct {
	Token            string      `json:"token" jsonschema:"description=Unique record identifier"`
	SensorToken      string      `json:"sensor_token" jsonschema:"description=Foreign key to sensor"`
	Translation      [3]float64  `json:"translation" jsonschema:"description=Coordinate system origin in meters: x y z"`
	Rotation         [4]float64  `json:"rotation" jsonschema:"description=Coordinate system orientation as quaternion: w x y z"`
	CameraIntrinsic  [][]float64 `json:"camera_intrinsic" jsonschema:"description=Intrinsic camera calibration"`
	CameraDistortion []float64   `json:"camera_distortion" jsonschema:"description=Distortion parameters"`
}

// Category is an object or region class.
type Category struct {
	Token       string `json:"token" jsonschema:"description=Unique record identifier"`
	Name        string `json:"name" jsonschema:"description=Category name with subcategories separated by a period"`
	Description string `json:"description" jsonschema:"description=Category description"`
}

// EgoPose is the vehicle pose at a timestamp.
type EgoPose struct {
	Token        string     `json:"token" jsonschema:"description=Unique record identifier"`
	Translation  [3]float64 `json:"translation" jsonschema:"description=Coordinate system origin in meters: x y z"`
	Rotation     [4]float64 `json:"rotation" jsonschema:"description=Coordinate system orientation as quaternion: w x y z"`
	RotationRate [3]float64 `json:"rotation_rate" jsonschema:"description=Angular velocity in rad/s"`
	Acceleration [3]float64 `json:"acceleration" jsonschema:"description=Acceleration in m/s^2"`
	Speed        float64    `json:"speed" jsonschema:"description=Speed in m/s"`
	Timestamp    int64      `json:"timestamp" jsonschema:"description=Unix time in microseconds"`
}

// Log is a recording session.
type Log struct {
	Token        string `json:"token" jsonschema:"description=Unique record identifier"`
	Logfile      string `json:"logfile" jsonschema:"description=Log file name"`
	Vehicle      string `json:"vehicle" jsonschema:"description=Vehicle name"`
	DateCaptured string `json:"date_captured" jsonschema:"description=Date (YYYY-MM-DD)"`
	Location     string `json:"location" jsonschema:"description=Area where the log was captured"`
}

// Sample groups the sensor captures of one logical timestamp.
type Sample struct {
	Token          string `json:"token" jsonschema:"description=Unique record identifier"`
	Timestamp      int64  `json:"timestamp" jsonschema:"description=Unix time in microseconds"`
	LogToken       string `json:"log_token" jsonschema:"description=Foreign key to log"`
	KeyCameraToken string `json:"key_camera_token" jsonschema:"description=Foreign key to the keyframe camera sample_data"`
}

// SampleData is one captured frame: an image or a point cloud.
type SampleData struct {
	Token                 string `json:"token" jsonschema:"description=Unique record identifier"`
	SampleToken           string `json:"sample_token" jsonschema:"description=Foreign key to sample"`
	EgoPoseToken          string `json:"ego_pose_token" jsonschema:"description=Foreign key to ego_pose"`
	CalibratedSensorToken string `json:"calibrated_sensor_token" jsonschema:"description=Foreign key to calibrated_sensor"`
	Filename              string `json:"filename" jsonschema:"description=Path relative to the dataset root"`
	FileFormat            string `json:"fileformat" jsonschema:"description=jpg for images or bin for point clouds"`
	Width                 int    `json:"width" jsonschema:"description=Image width in pixels"`
	Height                int    `json:"height" jsonschema:"description=Image height in pixels"`
	Timestamp             int64  `json:"timestamp" jsonschema:"description=Unix time in microseconds"`
	IsKeyFrame            bool   `json:"is_key_frame" jsonschema:"description=Whether the frame is time aligned with its sample and may be annotated"`
	Next                  string `json:"next" jsonschema:"description=Next sample_data of the same sensor or empty at the end"`
	Prev                  string `json:"prev" jsonschema:"description=Previous sample_data of the same sensor or empty at the start"`
}

// Modality derives the modality from the file format.
func (s *SampleData) Modality() Modality {
	if s.FileFormat == FileFormatJPG {
		return ModalityCamera
	}
	return ModalityLidar
}

// Sensor is a physical sensor.
type Sensor struct {
	Token    string `json:"token" jsonschema:"description=Unique record identifier"`
	Channel  string `json:"channel" jsonschema:"description=Sensor channel name such as CAM_FRONT"`
	Modality string `json:"modality" jsonschema:"description=camera or lidar"`
}

// RLE is a run-length encoded binary mask. Size is [height, width].
type RLE struct {
	Size   [2]int `json:"size" jsonschema:"description=Mask height and width"`
	Counts string `json:"counts" jsonschema:"description=Base64 encoded COCO compressed run lengths"`
}

// ObjectAnn is an instance-level annotation on one SampleData.
type ObjectAnn struct {
	Token           string   `json:"token" jsonschema:"description=Unique record identifier"`
	SampleDataToken string   `json:"sample_data_token" jsonschema:"description=Foreign key to sample_data"`
	CategoryToken   string   `json:"category_token" jsonschema:"description=Foreign key to category"`
	AttributeTokens []string `json:"attribute_tokens" jsonschema:"description=Foreign keys to attribute in display order"`
	BBox            [4]int   `json:"bbox" jsonschema:"description=Bounding box in pixels: xmin ymin xmax ymax"`
	Mask            *RLE     `json:"mask" jsonschema:"description=Instance mask or null when missing"`
}

// SurfaceAnn is a region-level annotation on one SampleData.
type SurfaceAnn struct {
	Token           string `json:"token" jsonschema:"description=Unique record identifier"`
	SampleDataToken string `json:"sample_data_token" jsonschema:"description=Foreign key to sample_data"`
	CategoryToken   string `json:"category_token" jsonschema:"description=Foreign key to category"`
	Mask            *RLE   `json:"mask" jsonschema:"description=Region mask or null when missing"`
}

func (r *Attribute) GetToken() string        { return r.Token }
func (r *CalibratedSensor) GetToken() string { return r.Token }
func (r *Category) GetToken() string         { return r.Token }
func (r *EgoPose) GetToken() string          { return r.Token }
func (r *Log) GetToken() string              { return r.Token }
func (r *Sample) GetToken() string           { return r.Token }
func (r *SampleData) GetToken() string       { return r.Token }
func (r *Sensor) GetToken() string           { return r.Token }
func (r *ObjectAnn) GetToken() string        { return r.Token }
func (r *SurfaceAnn) GetToken() string       { return r.Token }
