package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"

	"tasklist/internal/repository"
	"tasklist/internal/task"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// Formats lists the supported export formats.
var Formats = []string{FormatJSON, FormatYAML, FormatCSV, FormatPDF}

// Export writes the snapshot to w in the given format.
func Export(w io.Writer, format string, snap repository.Snapshot, v task.Variant) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return exportJSON(w, snap, v)
	case FormatYAML, "yml":
		return exportYAML(w, snap, v)
	case FormatCSV:
		return exportCSV(w, snap, v)
	case FormatPDF:
		return exportPDF(w, snap, v)
	default:
		return fmt.Errorf("unknown export format: %s", format)
	}
}

// jsonExport carries the same records as storage, under the storage keys.
type jsonExport struct {
	Variant   task.Variant    `json:"variant"`
	Tasks     json.RawMessage `json:"tasks"`
	Completed json.RawMessage `json:"completedTasks,omitempty"`
}

func exportJSON(w io.Writer, snap repository.Snapshot, v task.Variant) error {
	doc := jsonExport{Variant: v}

	var err error
	if doc.Tasks, err = task.Encode(snap.Tasks, v); err != nil {
		return err
	}
	if v == task.VariantCompletion {
		if doc.Completed, err = task.Encode(snap.Completed, v); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

type yamlTask struct {
	ID     string `yaml:"id"`
	Text   string `yaml:"text"`
	Status string `yaml:"status,omitempty"`
}

type yamlExport struct {
	Variant   string     `yaml:"variant"`
	Tasks     []yamlTask `yaml:"tasks"`
	Completed []yamlTask `yaml:"completedTasks,omitempty"`
}

func toYAML(tasks []task.Task, v task.Variant) []yamlTask {
	out := make([]yamlTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, yamlTask{ID: t.ID, Text: t.Text, Status: t.StatusLabel(v)})
	}
	return out
}

func exportYAML(w io.Writer, snap repository.Snapshot, v task.Variant) error {
	doc := yamlExport{
		Variant: string(v),
		Tasks:   toYAML(snap.Tasks, v),
	}
	if v == task.VariantCompletion {
		doc.Completed = toYAML(snap.Completed, v)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func exportCSV(w io.Writer, snap repository.Snapshot, v task.Variant) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"list", "position", "id", "text", "status"}); err != nil {
		return err
	}

	write := func(list string, tasks []task.Task) error {
		for i, t := range tasks {
			if err := cw.Write([]string{list, strconv.Itoa(i + 1), t.ID, t.Text, t.StatusLabel(v)}); err != nil {
				return err
			}
		}
		return nil
	}
	if err := write(repository.TasksKey, snap.Tasks); err != nil {
		return err
	}
	if v == task.VariantCompletion {
		if err := write(repository.CompletedTasksKey, snap.Completed); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func exportPDF(w io.Writer, snap repository.Snapshot, v task.Variant) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Tasks")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	if len(snap.Tasks) == 0 {
		pdf.MultiCell(0, 6, NoTasks, "0", "L", false)
	}
	for i, t := range snap.Tasks {
		line := fmt.Sprintf("%d. %s%s", i+1, t.Text, statusSuffix(t, v))
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
	}

	if v == task.VariantCompletion {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(40, 10, CompletedTitle)
		pdf.Ln(12)

		pdf.SetFont("Arial", "", 10)
		if len(snap.Completed) == 0 {
			pdf.MultiCell(0, 6, NoCompleted, "0", "L", false)
		} else {
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(140, 7, "Task", "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 7, "Status", "1", 1, "L", false, 0, "")
			pdf.SetFont("Arial", "", 10)
			for _, t := range snap.Completed {
				pdf.CellFormat(140, 7, tr(t.Text), "1", 0, "L", false, 0, "")
				pdf.CellFormat(40, 7, t.StatusLabel(v), "1", 1, "L", false, 0, "")
			}
		}
	}

	return pdf.Output(w)
}
