package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"carecompliance/internal/overview/models"
	"carecompliance/pkg/domain"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/audit"
	"carecompliance/pkg/requestcontext"
)

const exportSheet = "Compliance"

var exportHeaders = []string{"Item", "Location", "Type", "Due Date", "Status", "Days Until Due", "Last Action", "Active Alert"}

// ExportList renders the selected items, or the full overview when refs is
// empty, as an xlsx workbook. Unknown refs are skipped.
func (s *Service) ExportList(ctx context.Context, actorID string, refs []domain.ItemRef) ([]byte, error) {
	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	items, err := s.overviewFor(ctx, role)
	if err != nil {
		return nil, err
	}
	if len(refs) > 0 {
		items, _ = resolveRefs(items, refs)
	}

	data, err := writeWorkbook(items)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build export")
	}

	s.logger.InfoContext(ctx, "compliance list exported",
		"request_id", requestcontext.RequestID(ctx),
		"rows", len(items),
	)
	s.logAudit(ctx, role.SubjectID, audit.EventListExported, map[string]string{
		"rows": strconv.Itoa(len(items)),
	})
	return data, nil
}

func writeWorkbook(items []models.Item) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for col, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(exportSheet, "A1", last, headerStyle); err != nil {
		return nil, err
	}

	for i, it := range items {
		row := i + 2
		alert := ""
		if it.ActiveAlertID != nil {
			alert = it.ActiveAlertID.String()
		}
		lastAction := ""
		if !it.LastAction.IsZero() {
			lastAction = it.LastAction.UTC().Format("2006-01-02")
		}
		values := []any{
			it.Ref.String(),
			it.Location,
			string(it.Type),
			it.DueDate.UTC().Format("2006-01-02"),
			string(it.Status),
			it.DaysUntilDue,
			lastAction,
			alert,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "A", 44); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "B", "G", 16); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "H", "H", 38); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
