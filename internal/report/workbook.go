package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"campaign-caller-go/internal/types"
)

const (
	// Filename and MIME type offered on download.
	Filename = "call_analysis.xlsx"
	MIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	callDataSheet = "CallData"
	qaSheet       = "QA Evaluation"
)

// Error wraps serialization-layer failures; fatal to the export action
// alone.
type Error struct {
	cause error
}

func (e *Error) Error() string { return fmt.Sprintf("report serialization failed: %v", e.cause) }
func (e *Error) Unwrap() error { return e.cause }

// BuildWorkbook assembles the two-sheet analysis workbook: one row of
// structured call fields (keys sorted for a stable column order) and
// one row per QA item. Both inputs may be empty; missing data yields
// placeholder content, never an error.
func BuildWorkbook(structured map[string]any, items []types.QAEvaluationItem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", callDataSheet); err != nil {
		return nil, &Error{cause: err}
	}
	if err := writeCallData(f, structured); err != nil {
		return nil, &Error{cause: err}
	}

	if _, err := f.NewSheet(qaSheet); err != nil {
		return nil, &Error{cause: err}
	}
	if err := writeQA(f, items); err != nil {
		return nil, &Error{cause: err}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, &Error{cause: err}
	}
	return buf.Bytes(), nil
}

func writeCallData(f *excelize.File, structured map[string]any) error {
	keys := make([]string, 0, len(structured))
	for k := range structured {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	header := make([]any, len(keys))
	values := make([]any, len(keys))
	for i, k := range keys {
		header[i] = k
		values[i] = fmt.Sprint(structured[k])
	}
	if err := f.SetSheetRow(callDataSheet, "A1", &header); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return f.SetSheetRow(callDataSheet, "A2", &values)
}

func writeQA(f *excelize.File, items []types.QAEvaluationItem) error {
	if err := f.SetSheetRow(qaSheet, "A1", &[]any{"question", "rating", "explanation"}); err != nil {
		return err
	}
	if len(items) == 0 {
		items = []types.QAEvaluationItem{{
			Question:    "N/A",
			Rating:      "N/A",
			Explanation: "No evaluation performed",
		}}
	}
	for i, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{item.Question, item.Rating, item.Explanation}
		if err := f.SetSheetRow(qaSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
