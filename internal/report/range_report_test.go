package report

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
	"github.com/amurata/GoogleFitNotionIntegration/internal/service"
)

func sampleReport() *service.RangeReport {
	d1 := models.MustParseDate("2024-03-15")
	d2 := models.MustParseDate("2024-03-16")

	m := models.NewDailyMetrics(d1)
	m.Steps = 10000
	m.DistanceKm = 4.0
	m.RestingHeartRateBpm = 50.0
	m.ActivitySummary = map[string]int{"Running": 60}

	return &service.RangeReport{
		RunID: "run-1",
		Results: []models.ProcessResult{
			{
				Date:           d1,
				Status:         models.StatusSuccess,
				Metrics:        m,
				Reconciliation: &models.ReconciliationResult{Action: models.ActionCreated, DocumentID: "page-1"},
			},
			{
				Date:   d2,
				Status: models.StatusError,
				Err:    models.NewStageError(d2, models.StageAuth, errors.New("refresh failed")),
			},
		},
		Succeeded: 1,
		Failed:    1,
	}
}

func readSheet(t *testing.T, data []byte) [][]string {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	return rows
}

func TestGenerateRangeReport(t *testing.T) {
	data, err := GenerateRangeReport(sampleReport())
	require.NoError(t, err)

	rows := readSheet(t, data)
	require.Len(t, rows, 3)
	assert.Equal(t, RangeReportHeader, rows[0])

	assert.Equal(t, "2024-03-15", rows[1][0])
	assert.Equal(t, "success", rows[1][1])
	assert.Equal(t, "created", rows[1][4])
	assert.Equal(t, "page-1", rows[1][5])
	assert.Equal(t, "10000", rows[1][6])
	assert.Equal(t, "50", rows[1][11])
	assert.Equal(t, "Running 60分", rows[1][15])

	assert.Equal(t, "2024-03-16", rows[2][0])
	assert.Equal(t, "error", rows[2][1])
	assert.Equal(t, "auth", rows[2][2])
	assert.Contains(t, rows[2][3], "refresh failed")
}

func TestWriteRangeReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteRangeReport(path, sampleReport()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetName}, f.GetSheetList())
}
