package services

import (
	"fmt"
	"time"

	"ai-trend-tracker/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ExportService writes a date window of observations to an Excel workbook.
type ExportService struct {
	trendRepo *repositories.TrendRecordRepository
}

func NewExportService(trendRepo *repositories.TrendRecordRepository) *ExportService {
	return &ExportService{
		trendRepo: trendRepo,
	}
}

// ExportRange writes all observations in [startDate, endDate] to path as an
// xlsx file and returns the number of rows written.
func (s *ExportService) ExportRange(startDate, endDate time.Time, path string) (int, error) {
	rows, err := s.trendRepo.GetRange(startDate, endDate)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Trends"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return 0, err
	}

	headers := []string{"Repository", "Description", "Language", "Stars", "Stars Growth", "Date", "Ranking", "AI Relevance", "URL"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return 0, err
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.RepoName,
			row.Description,
			row.Language,
			row.Stars,
			row.StarsGrowth,
			row.Date,
			row.Ranking,
			row.AIRelevanceReason,
			row.URL,
		}
		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return 0, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return 0, err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("failed to save export file: %w", err)
	}

	return len(rows), nil
}
