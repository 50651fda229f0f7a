package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"courtline/internal/domain"
	"courtline/internal/models"
	"courtline/internal/service"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// ScheduleExporter renders the weekly booking grid of an organization to an
// Excel workbook. Rows are coaches, columns are days.
type ScheduleExporter struct {
	store  domain.Store
	path   string
	logger *zerolog.Logger
}

func NewScheduleExporter(store domain.Store, path string, logger *zerolog.Logger) *ScheduleExporter {
	return &ScheduleExporter{store: store, path: path, logger: logger}
}

// WeeklySchedule writes the seven days starting at weekStart to a file and
// returns its path. Admin only.
func (e *ScheduleExporter) WeeklySchedule(ctx context.Context, caller *models.Caller, weekStart time.Time) (string, error) {
	if !caller.IsAdmin() {
		return "", service.ErrForbidden
	}

	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	weekEnd := weekStart.AddDate(0, 0, 6)
	bookings, err := e.store.ListBookings(ctx, caller.OrganizationID, weekStart, weekEnd)
	if err != nil {
		return "", fmt.Errorf("error loading bookings: %w", err)
	}
	profiles, err := e.store.ListProfiles(ctx, caller.OrganizationID)
	if err != nil {
		return "", fmt.Errorf("error loading profiles: %w", err)
	}

	names := make(map[string]string, len(profiles))
	var coaches []*models.Profile
	for _, p := range profiles {
		names[p.ID] = p.Name
		if p.Role == models.RoleCoach {
			coaches = append(coaches, p)
		}
	}
	sort.Slice(coaches, func(i, j int) bool { return coaches[i].Name < coaches[j].Name })

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Schedule"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("Week of %s", models.DateOnly(weekStart)))
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	_ = f.MergeCell(sheet, "A1", "H1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	dayColumns := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		day := weekStart.AddDate(0, 0, i)
		cell, _ := excelize.CoordinatesToCellName(i+2, 2)
		_ = f.SetCellValue(sheet, cell, day.Format("Mon 02.01"))
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
		dayColumns[models.DateOnly(day)] = i + 2
	}

	rowByCoach := make(map[string]int, len(coaches))
	for i, coach := range coaches {
		row := i + 3
		rowByCoach[coach.ID] = row
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheet, cell, coach.Name)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	cells := make(map[string][]string)
	for _, b := range bookings {
		if b.Status == models.StatusCancelled {
			continue
		}
		row, ok := rowByCoach[b.CoachID]
		if !ok {
			continue
		}
		col, ok := dayColumns[models.DateOnly(b.Date)]
		if !ok {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(col, row)
		entry := fmt.Sprintf("%s-%s %s (%s)", b.Start, b.End, names[b.StudentID], b.Status)
		cells[cell] = append(cells[cell], entry)
	}
	for cell, entries := range cells {
		sort.Strings(entries)
		_ = f.SetCellValue(sheet, cell, strings.Join(entries, "\n"))
	}

	_ = f.SetColWidth(sheet, "A", "A", 25)
	_ = f.SetColWidth(sheet, "B", "H", 28)

	fileName := fmt.Sprintf("schedule_%s.xlsx", models.DateOnly(weekStart))
	filePath := filepath.Join(e.path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("schedule exported")
	return filePath, nil
}
