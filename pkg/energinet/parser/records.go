// Package parser converts the Energi Data Service JSON envelope into the
// canonical time-indexed table form.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/edu230991/energinet-go/pkg/energinet/models"
)

// utcMarker tags the timestamp fields the index is built from. Each UTC
// field may be paired with a redundant local-time field whose name carries
// localMarker instead; those are dropped.
const (
	utcMarker   = "UTC"
	localMarker = "DK"
)

// wireTimeLayout is the timestamp format used in response records. The wire
// value is naive; the API defines it as UTC.
const wireTimeLayout = "2006-01-02T15:04:05"

// MalformedResponseError reports a response body that does not follow the
// API's envelope conventions. It signals API contract drift.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed response: " + e.Reason
}

// ParseRecords parses a response body into a canonical table: UTC timestamp
// fields become the (possibly composite) index with the marker stripped from
// their names, paired local-time fields are dropped, and rows are sorted
// ascending by index. Discriminator column names participate in the
// uniqueness check alongside the index.
func ParseRecords(body []byte, discriminators []string) (*models.Table, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &MalformedResponseError{Reason: "body is not a JSON object"}
	}
	rawRecords, ok := envelope["records"]
	if !ok {
		return nil, &MalformedResponseError{Reason: "missing records field"}
	}
	var records []json.RawMessage
	// Unmarshal accepts a JSON null without error; only a real array
	// (possibly empty) yields a non-nil slice.
	if err := json.Unmarshal(rawRecords, &records); err != nil || records == nil {
		return nil, &MalformedResponseError{Reason: "records is not an array"}
	}

	t := &models.Table{}
	if len(records) == 0 {
		return t, nil
	}

	keys, _, err := decodeRecord(records[0])
	if err != nil {
		return nil, err
	}

	var timeKeys, valueKeys []string
	dropped := make(map[string]bool)
	for _, k := range keys {
		if strings.Contains(k, utcMarker) {
			timeKeys = append(timeKeys, k)
			dropped[strings.Replace(k, utcMarker, localMarker, 1)] = true
		}
	}
	if len(timeKeys) == 0 {
		return nil, &MalformedResponseError{Reason: "no " + utcMarker + "-suffixed timestamp field"}
	}
	isTime := make(map[string]bool, len(timeKeys))
	for _, k := range timeKeys {
		isTime[k] = true
		t.IndexNames = append(t.IndexNames, strings.Replace(k, utcMarker, "", 1))
	}
	for _, k := range keys {
		if !isTime[k] && !dropped[k] {
			valueKeys = append(valueKeys, k)
			t.Columns = append(t.Columns, models.Col(k))
		}
	}

	for i, raw := range records {
		_, fields, err := decodeRecord(raw)
		if err != nil {
			return nil, err
		}
		row := models.Row{
			Index: make([]time.Time, len(timeKeys)),
			Cells: make([]models.Value, len(valueKeys)),
		}
		for ti, k := range timeKeys {
			ts, err := parseWireTime(fields[k])
			if err != nil {
				return nil, &MalformedResponseError{
					Reason: fmt.Sprintf("record %d: field %s: %v", i, k, err),
				}
			}
			row.Index[ti] = ts
		}
		for vi, k := range valueKeys {
			row.Cells[vi] = fields[k]
		}
		t.Rows = append(t.Rows, row)
	}

	t.SortByIndex()
	if err := t.CheckUnique(discriminators); err != nil {
		return nil, err
	}
	return t, nil
}

// decodeRecord decodes one flat record preserving field order.
func decodeRecord(raw json.RawMessage) ([]string, map[string]models.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, &MalformedResponseError{Reason: "unreadable record"}
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, &MalformedResponseError{Reason: "record is not an object"}
	}

	var keys []string
	fields := make(map[string]models.Value)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, &MalformedResponseError{Reason: "unreadable record field"}
		}
		key := keyTok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, &MalformedResponseError{Reason: "unreadable value for field " + key}
		}
		keys = append(keys, key)
		fields[key] = convertValue(v)
	}
	return keys, fields, nil
}

// convertValue normalizes decoded JSON values: integral numbers become
// int64, other numbers float64.
func convertValue(v any) models.Value {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// parseWireTime parses a naive wire timestamp and tags it UTC.
func parseWireTime(v models.Value) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("timestamp is not a string")
	}
	ts, err := time.ParseInLocation(wireTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q", s)
	}
	return ts, nil
}
