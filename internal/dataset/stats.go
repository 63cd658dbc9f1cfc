// Summary statistics over the dataset tables.

package dataset

import (
	"cmp"
	"slices"

	"github.com/maruel/nuimages/internal/models"
)

// AttributeStat is one line of ListAttributes.
type AttributeStat struct {
	Annotations int
	Name        string
	Description string
}

// ListAttributes returns every attribute with the number of object
// annotations carrying it.
func (s *Store) ListAttributes() ([]AttributeStat, error) {
	attributes, err := s.Attributes()
	if err != nil {
		return nil, err
	}
	anns, err := s.ObjectAnns()
	if err != nil {
		return nil, err
	}
	freqs := map[string]int{}
	for _, ann := range anns {
		for _, token := range ann.AttributeTokens {
			freqs[token]++
		}
	}
	out := make([]AttributeStat, 0, len(attributes))
	for _, a := range attributes {
		out = append(out, AttributeStat{Annotations: freqs[a.Token], Name: a.Name, Description: a.Description})
	}
	return out, nil
}

// CameraStat is one line of ListCameras.
type CameraStat struct {
	Channel string
	// CalibratedSensors is the number of calibrations of the channel.
	CalibratedSensors int
	// Samples is the number of keyframes captured by the channel.
	Samples int
}

// ListCameras returns every sensor channel, in order of first calibration,
// with its number of calibrations and keyframes.
func (s *Store) ListCameras() ([]CameraStat, error) {
	calibrations, err := s.CalibratedSensors()
	if err != nil {
		return nil, err
	}
	sampleDatas, err := s.SampleDatas()
	if err != nil {
		return nil, err
	}
	var channels []string
	csFreqs := map[string]int{}
	for _, cs := range calibrations {
		sensor, err := s.Sensor(cs.SensorToken)
		if err != nil {
			return nil, err
		}
		if _, ok := csFreqs[sensor.Channel]; !ok {
			channels = append(channels, sensor.Channel)
		}
		csFreqs[sensor.Channel]++
	}
	channelFreqs := map[string]int{}
	for _, sd := range sampleDatas {
		if !sd.IsKeyFrame {
			continue
		}
		cs, err := s.CalibratedSensor(sd.CalibratedSensorToken)
		if err != nil {
			return nil, err
		}
		sensor, err := s.Sensor(cs.SensorToken)
		if err != nil {
			return nil, err
		}
		channelFreqs[sensor.Channel]++
	}
	out := make([]CameraStat, 0, len(channels))
	for _, ch := range channels {
		out = append(out, CameraStat{Channel: ch, CalibratedSensors: csFreqs[ch], Samples: channelFreqs[ch]})
	}
	return out, nil
}

// CategoryStat is one line of ListCategories.
type CategoryStat struct {
	ObjectAnns  int
	SurfaceAnns int
	Name        string
	Description string
}

// ListCategories returns every category that has at least one annotation,
// with its object and surface annotation counts.
//
// When sampleTokens is non-nil only annotations of those samples are counted.
func (s *Store) ListCategories(sampleTokens []string) ([]CategoryStat, error) {
	var keep map[string]bool
	if sampleTokens != nil {
		keep = make(map[string]bool, len(sampleTokens))
		for _, t := range sampleTokens {
			keep[t] = true
		}
	}
	inScope := func(sampleDataToken string) (bool, error) {
		if keep == nil {
			return true, nil
		}
		sd, err := s.SampleData(sampleDataToken)
		if err != nil {
			return false, err
		}
		return keep[sd.SampleToken], nil
	}

	objects, err := s.ObjectAnns()
	if err != nil {
		return nil, err
	}
	surfaces, err := s.SurfaceAnns()
	if err != nil {
		return nil, err
	}
	categories, err := s.Categories()
	if err != nil {
		return nil, err
	}
	objectFreqs := map[string]int{}
	for _, ann := range objects {
		ok, err := inScope(ann.SampleDataToken)
		if err != nil {
			return nil, err
		}
		if ok {
			objectFreqs[ann.CategoryToken]++
		}
	}
	surfaceFreqs := map[string]int{}
	for _, ann := range surfaces {
		ok, err := inScope(ann.SampleDataToken)
		if err != nil {
			return nil, err
		}
		if ok {
			surfaceFreqs[ann.CategoryToken]++
		}
	}
	var out []CategoryStat
	for _, c := range categories {
		o, su := objectFreqs[c.Token], surfaceFreqs[c.Token]
		if o == 0 && su == 0 {
			continue
		}
		out = append(out, CategoryStat{ObjectAnns: o, SurfaceAnns: su, Name: c.Name, Description: c.Description})
	}
	return out, nil
}

// LogStat is one line of ListLogs.
type LogStat struct {
	Samples  int
	Logfile  string
	Location string
}

// ListLogs returns every log with its number of samples.
func (s *Store) ListLogs() ([]LogStat, error) {
	samples, err := s.Samples()
	if err != nil {
		return nil, err
	}
	logs, err := s.Logs()
	if err != nil {
		return nil, err
	}
	freqs := map[string]int{}
	for _, sample := range samples {
		freqs[sample.LogToken]++
	}
	out := make([]LogStat, 0, len(logs))
	for _, l := range logs {
		out = append(out, LogStat{Samples: freqs[l.Token], Logfile: l.Logfile, Location: l.Location})
	}
	return out, nil
}

// SampleDataEntry is one SampleData of a sample with its capture time
// relative to the sample, in seconds.
type SampleDataEntry struct {
	RelTime float64
	Token   string
}

// SampleContent lists the SampleData of one modality.
type SampleContent struct {
	Modality models.Modality
	Entries  []SampleDataEntry
}

// ListSampleContent returns the camera (jpg) then the lidar (bin) SampleData
// of a sample, each sorted by timestamp. Other file formats are not listed.
func (s *Store) ListSampleContent(sampleToken string) ([]SampleContent, error) {
	sample, err := s.Sample(sampleToken)
	if err != nil {
		return nil, err
	}
	all, err := s.SampleDatas()
	if err != nil {
		return nil, err
	}
	var out []SampleContent
	for _, m := range []struct {
		modality   models.Modality
		fileFormat string
	}{
		{models.ModalityCamera, models.FileFormatJPG},
		{models.ModalityLidar, models.FileFormatBin},
	} {
		var sel []*models.SampleData
		for _, sd := range all {
			if sd.SampleToken == sampleToken && sd.FileFormat == m.fileFormat {
				sel = append(sel, sd)
			}
		}
		slices.SortStableFunc(sel, func(a, b *models.SampleData) int { return cmp.Compare(a.Timestamp, b.Timestamp) })
		content := SampleContent{Modality: m.modality, Entries: []SampleDataEntry{}}
		for _, sd := range sel {
			content.Entries = append(content.Entries, SampleDataEntry{
				RelTime: float64(sd.Timestamp-sample.Timestamp) / 1e6,
				Token:   sd.Token,
			})
		}
		out = append(out, content)
	}
	return out, nil
}
