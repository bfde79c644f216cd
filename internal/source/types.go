package source

import "github.com/theirongolddev/orgburn/internal/model"

// Shape classifies the top-level layout of a usage export.
type Shape int

const (
	// ShapeUnknown is any layout that carries no recognizable usage data.
	ShapeUnknown Shape = iota
	// ShapeBuckets is an object whose "data" array holds time-windowed buckets.
	ShapeBuckets
	// ShapeFlat is an array of already-extracted usage records.
	ShapeFlat
)

func (s Shape) String() string {
	switch s {
	case ShapeBuckets:
		return "buckets"
	case ShapeFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// Bucket is one reporting window of a bucketed export. Results are partial
// records: they gain their date and time window during extraction.
type Bucket struct {
	StartTime *int64
	EndTime   *int64
	Results   []model.UsageRecord
}

// Document is a parsed usage export in one of the supported shapes.
type Document struct {
	Shape   Shape
	Buckets []Bucket            // ShapeBuckets only
	Records []model.UsageRecord // ShapeFlat only
}

// BucketDocument builds a bucketed document.
func BucketDocument(buckets ...Bucket) Document {
	return Document{Shape: ShapeBuckets, Buckets: buckets}
}

// FlatDocument wraps already-extracted records so they can be fed back through Extract.
func FlatDocument(records []model.UsageRecord) Document {
	return Document{Shape: ShapeFlat, Records: records}
}

// DiscoveredFile represents a JSON export found during scanning.
type DiscoveredFile struct {
	Path string
	Name string // base name without extension
}
