// Package source discovers, parses and extracts usage records from JSON usage exports.
package source

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/orgburn/internal/model"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when an export is not well-formed JSON.
var ErrInvalidJSON = errors.New("source: export is not valid JSON")

// ParseResult holds the output of parsing a single export file.
type ParseResult struct {
	File    DiscoveredFile
	Shape   Shape
	Records []model.UsageRecord
	Err     error
}

// ParseDocument classifies a raw export and decodes it leniently. Fields of the
// wrong type read as absent. A well-formed document of an unexpected layout
// yields an empty ShapeUnknown document, not an error.
func ParseDocument(data []byte) (Document, error) {
	if !gjson.ValidBytes(data) {
		return Document{}, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)

	switch {
	case root.IsArray():
		doc := Document{Shape: ShapeFlat, Records: []model.UsageRecord{}}
		root.ForEach(func(_, v gjson.Result) bool {
			if v.IsObject() {
				doc.Records = append(doc.Records, parseRecord(v))
			}
			return true
		})
		return doc, nil

	case root.IsObject():
		data := root.Get("data")
		if !data.IsArray() {
			return Document{}, nil
		}
		doc := Document{Shape: ShapeBuckets}
		data.ForEach(func(_, b gjson.Result) bool {
			if !b.IsObject() {
				return true
			}
			results := b.Get("results")
			if !results.Exists() {
				// Some exports name the array "result".
				results = b.Get("result")
			}
			if !results.IsArray() {
				return true
			}
			bucket := Bucket{
				StartTime: intField(b, "start_time"),
				EndTime:   intField(b, "end_time"),
			}
			results.ForEach(func(_, r gjson.Result) bool {
				if r.IsObject() {
					bucket.Results = append(bucket.Results, parseRecord(r))
				}
				return true
			})
			doc.Buckets = append(doc.Buckets, bucket)
			return true
		})
		return doc, nil
	}

	return Document{}, nil
}

// Extract flattens a document into usage records. Bucket results gain the
// bucket's date (calendar day of start_time in loc) and time window, in bucket
// order then result order. Flat records pass through unchanged except that an
// undated record with a start_time is dated in loc. Unknown layouts yield no
// records.
func Extract(doc Document, loc *time.Location) []model.UsageRecord {
	switch doc.Shape {
	case ShapeFlat:
		return dateFlat(doc.Records, loc)
	case ShapeBuckets:
	default:
		return nil
	}

	var out []model.UsageRecord
	for _, b := range doc.Buckets {
		for _, r := range b.Results {
			rec := r
			if b.StartTime != nil {
				start := *b.StartTime
				rec.StartTime = &start
				rec.Date = model.FormatDate(start, loc)
			}
			if b.EndTime != nil {
				end := *b.EndTime
				rec.EndTime = &end
				if b.StartTime == nil {
					rec.Date = model.FormatDate(end, loc)
				}
			}
			out = append(out, rec)
		}
	}
	return out
}

// ParseFile reads one export file and extracts its records.
func ParseFile(df DiscoveredFile, loc *time.Location) ParseResult {
	data, err := os.ReadFile(df.Path)
	if err != nil {
		return ParseResult{File: df, Err: err}
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return ParseResult{File: df, Err: fmt.Errorf("%s: %w", df.Path, err)}
	}
	return ParseResult{
		File:    df,
		Shape:   doc.Shape,
		Records: Extract(doc, loc),
	}
}

func parseRecord(v gjson.Result) model.UsageRecord {
	rec := model.UsageRecord{
		Date:      stringField(v, "date"),
		StartTime: intField(v, "start_time"),
		EndTime:   intField(v, "end_time"),
		UserID:    stringField(v, "user_id"),
		UserEmail: stringField(v, "user_email"),
		ProjectID: stringField(v, "project_id"),
		APIKeyID:  stringField(v, "api_key_id"),
		LineItem:  stringField(v, "line_item"),
	}
	if amount := v.Get("amount"); amount.IsObject() {
		rec.Amount = &model.Amount{Currency: stringField(amount, "currency")}
		if value := amount.Get("value"); value.Type == gjson.Number {
			rec.Amount.Value = value.Float()
		}
	}
	return rec
}

func stringField(v gjson.Result, key string) string {
	f := v.Get(key)
	if f.Type != gjson.String {
		return ""
	}
	return f.String()
}

func intField(v gjson.Result, key string) *int64 {
	f := v.Get(key)
	if f.Type != gjson.Number {
		return nil
	}
	n := f.Int()
	return &n
}

func dateFlat(records []model.UsageRecord, loc *time.Location) []model.UsageRecord {
	if records == nil {
		return nil
	}
	out := make([]model.UsageRecord, len(records))
	copy(out, records)
	for i := range out {
		if out[i].Date == "" && out[i].StartTime != nil {
			out[i].Date = model.FormatDate(*out[i].StartTime, loc)
		}
	}
	return out
}
