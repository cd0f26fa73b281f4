package domain

// ProductRecord is a raw catalog record as decoded from JSON or YAML.
// It is the loader's output before normalisation.
type ProductRecord map[string]any

// RecordShape identifies which raw layout a ProductRecord uses.
type RecordShape int

const (
	// ShapeUnknown is a record that matches no known layout.
	ShapeUnknown RecordShape = iota

	// ShapeLegacy nests attributes under "values" as
	// attribute-name -> [{"data": value}, ...].
	ShapeLegacy

	// ShapeFlat keeps attributes as arbitrary top-level keys.
	ShapeFlat
)

// LegacyValuesKey is the marker key of the legacy shape.
const LegacyValuesKey = "values"

// Shape detects the record layout. A record whose "values" key holds an
// object is legacy; any other non-empty record is flat.
func (r ProductRecord) Shape() RecordShape {
	if len(r) == 0 {
		return ShapeUnknown
	}
	if v, ok := r[LegacyValuesKey]; ok {
		if _, isMap := v.(map[string]any); isMap {
			return ShapeLegacy
		}
	}
	return ShapeFlat
}

// String returns the string representation.
func (s RecordShape) String() string {
	switch s {
	case ShapeLegacy:
		return "legacy"
	case ShapeFlat:
		return "flat"
	default:
		return "unknown"
	}
}
