package report

import (
	"bytes"
	"fmt"
	"os"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
	"github.com/amurata/GoogleFitNotionIntegration/internal/notion"
	"github.com/amurata/GoogleFitNotionIntegration/internal/service"

	"github.com/xuri/excelize/v2"
)

// SheetName 批处理结果工作表
const SheetName = "Range Report"

// RangeReportHeader 表头
var RangeReportHeader = []string{
	"Date", "Status", "Stage", "Error", "Action", "Page ID",
	"Steps", "Distance (km)", "Calories (kcal)", "Intensity (min)",
	"Avg Heart Rate", "Resting Heart Rate", "Oxygen (%)", "Weight (kg)", "Sleep (min)", "Activities",
}

var columnWidths = []float64{12, 10, 10, 40, 10, 38, 10, 14, 16, 16, 16, 18, 12, 12, 12, 40}

// GenerateRangeReport 生成批处理结果 Excel，每个日期一行
func GenerateRangeReport(r *service.RangeReport) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range RangeReportHeader {
		if err := setCellValue(f, col+1, 1, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header: %w", err)
		}
		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetCellStyle(SheetName, name+"1", name+"1", headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		if err := f.SetColWidth(SheetName, name, name, columnWidths[col]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, res := range r.Results {
		for col, value := range rowValues(res) {
			if value == nil {
				continue
			}
			if err := setCellValue(f, col+1, i+2, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell at row %d: %w", i+2, err)
			}
		}
	}

	// 冻结表头
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteRangeReport 写入文件
func WriteRangeReport(path string, r *service.RangeReport) error {
	data, err := GenerateRangeReport(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func rowValues(res models.ProcessResult) []any {
	row := make([]any, len(RangeReportHeader))
	row[0] = res.Date.String()
	row[1] = string(res.Status)
	if res.Err != nil {
		row[2] = string(res.Stage())
		row[3] = res.Err.Error()
	}
	if rec := res.Reconciliation; rec != nil {
		row[4] = string(rec.Action)
		row[5] = rec.DocumentID
	}
	if m := res.Metrics; m != nil {
		row[6] = m.Steps
		row[7] = m.DistanceKm
		row[8] = m.CaloriesKcal
		row[9] = m.ActivityIntensityScore
		row[10] = m.AvgHeartRateBpm
		row[11] = m.RestingHeartRateBpm
		row[12] = m.AvgOxygenSaturationPct
		if m.LatestWeightKg != nil {
			row[13] = *m.LatestWeightKg
		}
		row[14] = m.TotalSleepMinutes
		if len(m.ActivitySummary) > 0 {
			row[15] = notion.ActivityText(m.ActivitySummary)
		}
	}
	return row
}

func setCellValue(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(SheetName, cell, value)
}
