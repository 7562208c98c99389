package calendar

import (
	"context"
	"time"

	"github.com/pomtech-site/backend/internal/storage/models"
)

// DayCell is one cell of the month grid. Leading and trailing pad cells
// carry Day == 0 and InMonth == false.
type DayCell struct {
	Day     int                    `json:"day"`
	Date    models.DateKey         `json:"date,omitempty"`
	InMonth bool                   `json:"in_month"`
	Today   bool                   `json:"today"`
	Events  []models.CalendarEvent `json:"events,omitempty"`
}

// MonthGrid is the renderable month view: a flat run of cells padded at
// both ends to whole weeks, starting on the configured week-start day.
type MonthGrid struct {
	Year  int            `json:"year"`
	Month time.Month     `json:"month"`
	Today models.DateKey `json:"today"`
	Cells []DayCell      `json:"cells"`
}

// MonthGrid builds the grid for the given month. It is a pure view over
// the store; nothing is persisted. today marks the current-day cell when
// it falls inside the month.
func (e *Engine) MonthGrid(ctx context.Context, year int, month time.Month, today models.DateKey) (*MonthGrid, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, e.loc)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	events, err := e.repo.ListByMonth(ctx, models.NewDateKey(year, month, 1))
	if err != nil {
		return nil, err
	}
	byDate := make(map[models.DateKey][]models.CalendarEvent)
	for _, ev := range events {
		byDate[ev.Date] = append(byDate[ev.Date], ev)
	}

	grid := &MonthGrid{
		Year:  first.Year(),
		Month: first.Month(),
		Today: today,
	}

	offset := int(first.Weekday()-e.weekStart+7) % 7
	for i := 0; i < offset; i++ {
		grid.Cells = append(grid.Cells, DayCell{})
	}

	for day := 1; day <= daysInMonth; day++ {
		key := models.NewDateKey(grid.Year, grid.Month, day)
		grid.Cells = append(grid.Cells, DayCell{
			Day:     day,
			Date:    key,
			InMonth: true,
			Today:   key == today,
			Events:  byDate[key],
		})
	}

	// Pad the final week.
	for len(grid.Cells)%7 != 0 {
		grid.Cells = append(grid.Cells, DayCell{})
	}

	return grid, nil
}
