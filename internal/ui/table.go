package ui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/tunen/internal/models"
)

var (
	headerStyle  = NewBold("#7D56F4").Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	expiredStyle = NewStyle("#FFA500").Padding(0, 1)
)

// SessionsTable renders summaries as a table. Rows whose access token has expired at now are highlighted.
func SessionsTable(summaries []models.SessionSummary, now time.Time) string {
	expired := make(map[int]bool, len(summaries))
	rows := make([][]string, 0, len(summaries))

	for i, s := range summaries {
		refresh := "no"
		if s.HasRefreshToken {
			refresh = "yes"
		}
		state := "valid"
		if !now.Before(s.ExpiresAt) {
			state = "expired"
			expired[i] = true
		}

		rows = append(rows, []string{
			s.SessionID,
			s.ExpiresAt.Local().Format(time.DateTime),
			state,
			refresh,
			s.UpdatedAt.Local().Format(time.DateTime),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(NewStyle("#626262")).
		Headers("SESSION", "TOKEN EXPIRES", "STATE", "REFRESH", "UPDATED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case expired[row]:
				return expiredStyle
			default:
				return cellStyle
			}
		})

	return t.Render()
}
