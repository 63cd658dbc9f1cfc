// Reflects record types into JSON Schema documents.

package models

import (
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

var recordTypes = map[string]reflect.Type{
	TableAttribute:        reflect.TypeFor[Attribute](),
	TableCalibratedSensor: reflect.TypeFor[CalibratedSensor](),
	TableCategory:         reflect.TypeFor[Category](),
	TableEgoPose:          reflect.TypeFor[EgoPose](),
	TableLog:              reflect.TypeFor[Log](),
	TableObjectAnn:        reflect.TypeFor[ObjectAnn](),
	TableSample:           reflect.TypeFor[Sample](),
	TableSampleData:       reflect.TypeFor[SampleData](),
	TableSensor:           reflect.TypeFor[Sensor](),
	TableSurfaceAnn:       reflect.TypeFor[SurfaceAnn](),
}

// IsTable reports whether name is one of the dataset tables.
func IsTable(name string) bool {
	_, ok := recordTypes[name]
	return ok
}

// Schema returns the JSON Schema describing one row of the named table.
//
// Field descriptions come from the `jsonschema:"description=..."` tags.
func Schema(table string) (*jsonschema.Schema, error) {
	t, ok := recordTypes[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	s := r.ReflectFromType(t)
	s.Title = table
	return s, nil
}
