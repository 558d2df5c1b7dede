package task

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/*.json
var schemaFS embed.FS

var recordSchemas = map[Variant]*jsonschema.Schema{
	VariantStatus:     mustCompileSchema("schema/status-record.json"),
	VariantCompletion: mustCompileSchema("schema/completion-record.json"),
}

func mustCompileSchema(name string) *jsonschema.Schema {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("read embedded schema %s: %v", name, err))
	}
	return jsonschema.MustCompileString(name, string(data))
}

// statusRecord is the persisted shape of a four-state task.
type statusRecord struct {
	Text   string `json:"text"`
	Status Status `json:"status"`
	ID     string `json:"id,omitempty"`
}

// completionRecord is the persisted shape of a two-state task.
type completionRecord struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	ID        string `json:"id,omitempty"`
}

// RecordError describes a persisted record that was dropped while decoding.
type RecordError struct {
	Index int    // position of the record in the stored array
	Path  string // location inside the record, if known
	Err   error
}

func (e *RecordError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("record %d: %s: %v", e.Index, e.Path, e.Err)
	}
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

// Unwrap returns the underlying error.
func (e *RecordError) Unwrap() error {
	return e.Err
}

// Encode serializes tasks as a JSON array of records in order.
// A nil or empty slice encodes as [].
func Encode(tasks []Task, v Variant) ([]byte, error) {
	var records any
	switch v {
	case VariantCompletion:
		rs := make([]completionRecord, 0, len(tasks))
		for _, t := range tasks {
			rs = append(rs, completionRecord{Text: t.Text, Completed: t.Completed, ID: t.ID})
		}
		records = rs
	case VariantStatus:
		rs := make([]statusRecord, 0, len(tasks))
		for _, t := range tasks {
			rs = append(rs, statusRecord{Text: t.Text, Status: t.Status, ID: t.ID})
		}
		records = rs
	default:
		return nil, fmt.Errorf("unknown variant: %s", v)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return data, nil
}

// Decode parses a stored JSON array of records.
//
// An empty payload decodes to no tasks. A payload that is not a JSON array
// returns an error. Records that do not match the variant's record schema
// are dropped and reported in dropped; the remaining records keep their
// order. Records without an id are given one.
func Decode(data []byte, v Variant) (tasks []Task, dropped []error, err error) {
	schema, ok := recordSchemas[v]
	if !ok {
		return nil, nil, fmt.Errorf("unknown variant: %s", v)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, nil, fmt.Errorf("parse tasks: %w", err)
	}

	for i, raw := range raws {
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			dropped = append(dropped, &RecordError{Index: i, Err: err})
			continue
		}
		if err := schema.Validate(doc); err != nil {
			dropped = append(dropped, schemaRecordError(i, err))
			continue
		}

		t, err := decodeRecord(raw, v)
		if err != nil {
			dropped = append(dropped, &RecordError{Index: i, Err: err})
			continue
		}
		if t.ID == "" {
			t.ID = NewID()
		}
		tasks = append(tasks, t)
	}

	return tasks, dropped, nil
}

func decodeRecord(raw json.RawMessage, v Variant) (Task, error) {
	if v == VariantCompletion {
		var r completionRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return Task{}, err
		}
		return Task{ID: r.ID, Text: r.Text, Completed: r.Completed}, nil
	}

	var r statusRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return Task{}, err
	}
	return Task{ID: r.ID, Text: r.Text, Status: r.Status}, nil
}

// schemaRecordError flattens a schema validation error into a RecordError
// pointing at the first failing location.
func schemaRecordError(index int, err error) *RecordError {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &RecordError{Index: index, Err: err}
	}

	leaves := collectLeaves(ve, nil)
	if len(leaves) == 0 {
		return &RecordError{Index: index, Err: fmt.Errorf("%s", ve.Message)}
	}

	msgs := make([]string, 0, len(leaves))
	for _, leaf := range leaves {
		msgs = append(msgs, leaf.Message)
	}
	return &RecordError{
		Index: index,
		Path:  jsonPointerToPath(leaves[0].InstanceLocation),
		Err:   fmt.Errorf("%s", strings.Join(msgs, "; ")),
	}
}

func collectLeaves(err *jsonschema.ValidationError, out []*jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return append(out, err)
	}
	for _, cause := range err.Causes {
		out = collectLeaves(cause, out)
	}
	return out
}

func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	return strings.ReplaceAll(ptr, "/", ".")
}
