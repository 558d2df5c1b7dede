package task

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStatusNext_Cycle(t *testing.T) {
	want := []Status{StatusNotStarted, StatusInProgress, StatusCompleted, StatusNone}

	s := StatusNone
	for i, w := range want {
		s = s.Next()
		if s != w {
			t.Fatalf("step %d: expected %v, got %v", i+1, w, s)
		}
	}
}

func TestStatusNext_OutOfCycleRestarts(t *testing.T) {
	if got := Status(42).Next(); got != StatusNone {
		t.Errorf("expected None, got %v", got)
	}
}

func TestStatusJSON(t *testing.T) {
	tests := []struct {
		status Status
		json   string
	}{
		{StatusNone, `null`},
		{StatusNotStarted, `"Not Started"`},
		{StatusInProgress, `"In Progress"`},
		{StatusCompleted, `"Completed"`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.status)
		if err != nil {
			t.Fatalf("marshal %v: %v", tt.status, err)
		}
		if string(data) != tt.json {
			t.Errorf("marshal %v: expected %s, got %s", tt.status, tt.json, data)
		}

		var got Status
		if err := json.Unmarshal([]byte(tt.json), &got); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.json, err)
		}
		if got != tt.status {
			t.Errorf("unmarshal %s: expected %v, got %v", tt.json, tt.status, got)
		}
	}
}

func TestStatusUnmarshal_Rejects(t *testing.T) {
	for _, in := range []string{`""`, `"Done"`, `true`, `3`} {
		var s Status
		if err := json.Unmarshal([]byte(in), &s); err == nil {
			t.Errorf("expected error for %s", in)
		}
	}
}

func TestParseVariant(t *testing.T) {
	tests := map[string]Variant{
		"status":       VariantStatus,
		" Completion ": VariantCompletion,
		"two-state":    VariantCompletion,
		"four-state":   VariantStatus,
	}
	for in, want := range tests {
		got, err := ParseVariant(in)
		if err != nil {
			t.Fatalf("ParseVariant(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseVariant(%q): expected %s, got %s", in, want, got)
		}
	}

	if _, err := ParseVariant("kanban"); err == nil {
		t.Error("expected error for unknown variant")
	}
}

func TestNew_AssignsIDAndInitialStatus(t *testing.T) {
	a := New("Buy milk")
	b := New("Buy milk")

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a.ID, b.ID)
	}
	if a.Status != StatusNone || a.Completed {
		t.Errorf("expected initial status, got %+v", a)
	}
	if a.Text != "Buy milk" {
		t.Errorf("expected text preserved, got %q", a.Text)
	}
}

func TestShortID(t *testing.T) {
	tests := map[string]string{
		"3f2a9c1d-1111-4000-8000-000000000000": "3f2a9c1d",
		"12345678-9abc-4000-8000-000000000000": "12345678-",
		"1234567890":                           "1234567890",
		"abc":                                  "abc",
	}
	for id, want := range tests {
		if got := ShortID(id); got != want {
			t.Errorf("ShortID(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestEncode_StatusVariant(t *testing.T) {
	tasks := []Task{
		{ID: "id-1", Text: "a", Status: StatusNone},
		{ID: "id-2", Text: "b", Status: StatusInProgress},
	}

	data, err := Encode(tasks, VariantStatus)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := `[{"text":"a","status":null,"id":"id-1"},{"text":"b","status":"In Progress","id":"id-2"}]`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestEncode_CompletionVariant(t *testing.T) {
	tasks := []Task{{ID: "id-1", Text: "a", Completed: true}}

	data, err := Encode(tasks, VariantCompletion)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := `[{"text":"a","completed":true,"id":"id-1"}]`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestEncode_EmptyIsArray(t *testing.T) {
	data, err := Encode(nil, VariantStatus)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("expected [], got %s", data)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, v := range []Variant{VariantStatus, VariantCompletion} {
		t.Run(string(v), func(t *testing.T) {
			original := []Task{
				{ID: NewID(), Text: "first"},
				{ID: NewID(), Text: "second", Status: StatusCompleted, Completed: v == VariantCompletion},
				{ID: NewID(), Text: "first"},
			}
			if v == VariantStatus {
				original[0].Status = StatusNotStarted
			}

			data, err := Encode(original, v)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, dropped, err := Decode(data, v)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if len(dropped) != 0 {
				t.Fatalf("unexpected dropped records: %v", dropped)
			}

			if v == VariantCompletion {
				// The completion shape carries no four-state status.
				for i := range original {
					original[i].Status = StatusNone
				}
			}
			if diff := cmp.Diff(original, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_BrowserRecordsWithoutIDs(t *testing.T) {
	data := []byte(`[{"text":"a","status":null},{"text":"b","status":"Completed"}]`)

	tasks, dropped, err := Decode(data, VariantStatus)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(dropped) != 0 {
		t.Fatalf("unexpected dropped records: %v", dropped)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	for _, tk := range tasks {
		if tk.ID == "" {
			t.Errorf("expected generated id for %q", tk.Text)
		}
	}
	if tasks[1].Status != StatusCompleted {
		t.Errorf("expected Completed, got %v", tasks[1].Status)
	}
}

func TestDecode_EmptyPayload(t *testing.T) {
	for _, in := range []string{"", "  ", "null", "[]"} {
		tasks, dropped, err := Decode([]byte(in), VariantStatus)
		if err != nil {
			t.Errorf("Decode(%q): unexpected error %v", in, err)
		}
		if len(tasks) != 0 || len(dropped) != 0 {
			t.Errorf("Decode(%q): expected nothing, got %v / %v", in, tasks, dropped)
		}
	}
}

func TestDecode_MalformedPayload(t *testing.T) {
	for _, in := range []string{"{", `{"text":"a"}`, `"tasks"`} {
		if _, _, err := Decode([]byte(in), VariantStatus); err == nil {
			t.Errorf("Decode(%q): expected error", in)
		}
	}
}

func TestDecode_DropsMalformedRecords(t *testing.T) {
	data := []byte(`[
		{"text":"keep","status":"In Progress"},
		{"text":"","status":null},
		{"text":"   ","status":null},
		{"text":"bad status","status":"Done"},
		{"status":null},
		42,
		{"text":"extra","status":null,"priority":1},
		{"text":"also keep","status":null}
	]`)

	tasks, dropped, err := Decode(data, VariantStatus)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	var texts []string
	for _, tk := range tasks {
		texts = append(texts, tk.Text)
	}
	if diff := cmp.Diff([]string{"keep", "also keep"}, texts); diff != "" {
		t.Errorf("kept records mismatch (-want +got):\n%s", diff)
	}

	if len(dropped) != 6 {
		t.Fatalf("expected 6 dropped records, got %d: %v", len(dropped), dropped)
	}
	var rerr *RecordError
	if !errors.As(dropped[0], &rerr) {
		t.Fatalf("expected *RecordError, got %T", dropped[0])
	}
	if rerr.Index != 1 {
		t.Errorf("expected first dropped index 1, got %d", rerr.Index)
	}
}

func TestDecode_CrossVariantRecordsRejected(t *testing.T) {
	twoState := []byte(`[{"text":"a","completed":false}]`)
	tasks, dropped, err := Decode(twoState, VariantStatus)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(tasks) != 0 || len(dropped) != 1 {
		t.Errorf("expected the two-state record to be dropped, got %v / %v", tasks, dropped)
	}

	fourState := []byte(`[{"text":"a","status":null}]`)
	tasks, dropped, err = Decode(fourState, VariantCompletion)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(tasks) != 0 || len(dropped) != 1 {
		t.Errorf("expected the four-state record to be dropped, got %v / %v", tasks, dropped)
	}
}

func TestRecordError_Message(t *testing.T) {
	_, dropped, err := Decode([]byte(`[{"text":"a","status":"Done"}]`), VariantStatus)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(dropped) != 1 {
		t.Fatalf("expected 1 dropped record, got %d", len(dropped))
	}
	if !strings.HasPrefix(dropped[0].Error(), "record 0") {
		t.Errorf("expected message to name the record, got %q", dropped[0].Error())
	}
}

func TestTaskStatusLabel(t *testing.T) {
	if got := (Task{Completed: true}).StatusLabel(VariantCompletion); got != "Completed" {
		t.Errorf("expected Completed, got %q", got)
	}
	if got := (Task{}).StatusLabel(VariantStatus); got != "" {
		t.Errorf("expected empty label for None, got %q", got)
	}
	if got := (Task{Status: StatusInProgress}).StatusLabel(VariantStatus); got != "In Progress" {
		t.Errorf("expected In Progress, got %q", got)
	}
}
