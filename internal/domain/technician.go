package domain

import (
	"slices"
	"strings"
	"time"
)

type Technician struct {
	ID                 string
	Name               string
	Specialization     []string
	MaxDailyTasks      int
	LocationPreference string
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasSkill matches specialization tags case-insensitively.
func (t *Technician) HasSkill(tag string) bool {
	if tag == "" {
		return false
	}
	return slices.ContainsFunc(t.Specialization, func(s string) bool {
		return strings.EqualFold(s, tag)
	})
}

// TechnicianLoad pairs a technician with its assigned open-item count,
// computed from the work item store at read time.
type TechnicianLoad struct {
	Technician    *Technician
	AssignedCount int
}

// AtCapacity reports whether the technician cannot take another item.
func (l TechnicianLoad) AtCapacity() bool {
	return l.AssignedCount >= l.Technician.MaxDailyTasks
}
