package reports

import (
	"math"
	"sort"
	"time"

	"timeclock/internal/domain/punch"
)

type DayTotal struct {
	Date           string  `json:"date"`
	Sessions       int     `json:"sessions"`
	WorkedHours    float64 `json:"workedHours"`
	InvalidPunches int     `json:"invalidPunches"`
}

type Timesheet struct {
	EmployeeID     string     `json:"employeeId"`
	EmployeeName   string     `json:"employeeName"`
	From           time.Time  `json:"from"`
	To             time.Time  `json:"to"`
	Days           []DayTotal `json:"days"`
	TotalHours     float64    `json:"totalHours"`
	InvalidPunches int        `json:"invalidPunches"`
}

// BuildTimesheet groups sessions by punch-in day and totals worked hours. An
// open session counts against now, matching the live-status display. Hours
// are rounded to two decimals here, at the presentation boundary.
func BuildTimesheet(emp punch.Employee, sessions []punch.Session, from, to, now time.Time) Timesheet {
	byDay := map[string]*DayTotal{}
	total := 0.0
	invalid := 0

	for _, session := range sessions {
		day := session.PunchInAt.UTC().Format("2006-01-02")
		entry, ok := byDay[day]
		if !ok {
			entry = &DayTotal{Date: day}
			byDay[day] = entry
		}

		hours := session.WorkedHours(now)
		entry.Sessions++
		entry.WorkedHours += hours
		total += hours

		if !session.PunchInValid {
			entry.InvalidPunches++
			invalid++
		}
		if session.PunchOutValid != nil && !*session.PunchOutValid {
			entry.InvalidPunches++
			invalid++
		}
	}

	days := make([]DayTotal, 0, len(byDay))
	for _, entry := range byDay {
		entry.WorkedHours = roundHours(entry.WorkedHours)
		days = append(days, *entry)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	return Timesheet{
		EmployeeID:     emp.ID,
		EmployeeName:   emp.Name,
		From:           from,
		To:             to,
		Days:           days,
		TotalHours:     roundHours(total),
		InvalidPunches: invalid,
	}
}

func roundHours(hours float64) float64 {
	return math.Round(hours*100) / 100
}
