package formatter

import (
	"strconv"
	"strings"

	"github.com/alexanderramin/slaguard/internal/domain"
)

func FormatTechnicianList(techs []*domain.Technician) string {
	headers := []string{"ID", "NAME", "SKILLS", "CAPACITY", "LOCATION", "STATE"}
	rows := make([][]string, 0, len(techs))
	for _, t := range techs {
		state := StyleGreen.Render("● active")
		if !t.Active {
			state = StyleDim.Render("○ inactive")
		}
		rows = append(rows, []string{
			TruncID(t.ID),
			t.Name,
			OrDash(strings.Join(t.Specialization, ", ")),
			strconv.Itoa(t.MaxDailyTasks),
			OrDash(t.LocationPreference),
			state,
		})
	}
	return RenderTable(headers, rows)
}
