package class

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-portal/core"
)

type Class struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Section      string `json:"section"`
	ClassTeacher string `json:"classTeacher"`
	Capacity     int    `json:"capacity"`
	StudentCount int    `json:"studentCount"`
}

// Label is the display name of the class, e.g. "Grade 5 A".
func (c Class) Label() string {
	return core.FullName(c.Name, c.Section)
}

// NewClass contains information needed to create a new Class (the add-class modal).
type NewClass struct {
	Name         string `json:"name" validate:"required,notblank"`
	Section      string `json:"section" validate:"required,alphanum_,max=10"`
	ClassTeacher string `json:"classTeacher,omitempty"`
	Capacity     int    `json:"capacity,omitempty" validate:"gte=0,lte=200"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Section = strings.ToUpper(core.CleanString(nc.Section))
	nc.ClassTeacher = core.CleanString(nc.ClassTeacher)
	return validate.Struct(nc)
}

// Filter is applied in memory on the fetched list.
type Filter struct {
	Search  string // name or class teacher
	Section string
}

func (f Filter) Match(c Class) bool {
	return core.ContainsFold(f.Search, c.Label(), c.ClassTeacher) && core.EqualFoldOrEmpty(f.Section, c.Section)
}

func (f Filter) Apply(classes []Class) []Class {
	found := make([]Class, 0, len(classes))
	for _, c := range classes {
		if f.Match(c) {
			found = append(found, c)
		}
	}
	return found
}
