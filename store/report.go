package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/xuri/excelize/v2"

	"github.com/AgesFranciscoTeran/ecuador-news-nlp-pipeline/pipeline"
)

// WriteReportJSON uploads the run report as indented JSON.
func WriteReportJSON(ctx context.Context, fs afs.Service, URL string, report *pipeline.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("store: failed to encode report: %w", err)
	}
	data = append(data, '\n')
	if err := fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("store: failed to upload %s: %w", URL, err)
	}
	return nil
}

// WriteReportCSV uploads the rejection breakdown as reason,count rows.
func WriteReportCSV(ctx context.Context, fs afs.Service, URL string, report *pipeline.Report) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"reason", "count"}); err != nil {
		return fmt.Errorf("store: failed to write csv header: %w", err)
	}
	for _, entry := range report.ReasonCounts() {
		if err := writer.Write([]string{entry.Reason, strconv.Itoa(entry.Count)}); err != nil {
			return fmt.Errorf("store: failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("store: failed to flush csv: %w", err)
	}
	if err := fs.Upload(ctx, URL, file.DefaultFileOsMode, &buf); err != nil {
		return fmt.Errorf("store: failed to upload %s: %w", URL, err)
	}
	return nil
}

// WriteReportXLSX uploads the report as a workbook with Summary, Reasons and
// Failures sheets, for the editorial team reviewing filter behavior.
func WriteReportXLSX(ctx context.Context, fs afs.Service, URL string, report *pipeline.Report) error {
	book := excelize.NewFile()
	defer book.Close()

	const summary = "Summary"
	if err := book.SetSheetName(book.GetSheetName(0), summary); err != nil {
		return fmt.Errorf("store: failed to name summary sheet: %w", err)
	}
	summaryRows := [][]interface{}{
		{"documents", report.Documents},
		{"candidates", report.Candidates},
		{"accepted", report.Accepted},
		{"rejected", report.Rejected},
		{"score_min", report.Scores.Min},
		{"score_max", report.Scores.Max},
		{"score_avg", report.Scores.Avg},
	}
	for i, row := range summaryRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := book.SetSheetRow(summary, cell, &row); err != nil {
			return fmt.Errorf("store: failed to write summary row: %w", err)
		}
	}

	const reasons = "Reasons"
	if _, err := book.NewSheet(reasons); err != nil {
		return fmt.Errorf("store: failed to add reasons sheet: %w", err)
	}
	if err := book.SetSheetRow(reasons, "A1", &[]interface{}{"reason", "count"}); err != nil {
		return fmt.Errorf("store: failed to write reasons header: %w", err)
	}
	for i, entry := range report.ReasonCounts() {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{entry.Reason, entry.Count}
		if err := book.SetSheetRow(reasons, cell, &row); err != nil {
			return fmt.Errorf("store: failed to write reasons row: %w", err)
		}
	}

	const failures = "Failures"
	if _, err := book.NewSheet(failures); err != nil {
		return fmt.Errorf("store: failed to add failures sheet: %w", err)
	}
	if err := book.SetSheetRow(failures, "A1", &[]interface{}{"document_id", "kind", "detail"}); err != nil {
		return fmt.Errorf("store: failed to write failures header: %w", err)
	}
	for i, failure := range report.Failures {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{failure.DocumentID, failure.Kind, failure.Detail}
		if err := book.SetSheetRow(failures, cell, &row); err != nil {
			return fmt.Errorf("store: failed to write failures row: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := book.Write(&buf); err != nil {
		return fmt.Errorf("store: failed to serialize workbook: %w", err)
	}
	if err := fs.Upload(ctx, URL, file.DefaultFileOsMode, &buf); err != nil {
		return fmt.Errorf("store: failed to upload %s: %w", URL, err)
	}
	return nil
}
