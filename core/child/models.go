package child

import (
	"github.com/trezcool/masomo-portal/core"
)

type (
	Guardian struct {
		Name     string `json:"name"`
		Relation string `json:"relation"`
		Phone    string `json:"phone"`
		Email    string `json:"email"`
	}

	// Child is a student as seen by its parent. It is read-only.
	Child struct {
		ID         string   `json:"id"`
		FirstName  string   `json:"firstName"`
		LastName   string   `json:"lastName"`
		Class      string   `json:"class"`
		Section    string   `json:"section"`
		RollNumber string   `json:"rollNumber"`
		Guardian   Guardian `json:"guardian"`
		Address    string   `json:"address"`
	}

	Result struct {
		Subject  string  `json:"subject"`
		Exam     string  `json:"exam"`
		Marks    float64 `json:"marks"`
		MaxMarks float64 `json:"maxMarks"`
		Grade    string  `json:"grade"`
	}
)

func (c Child) Name() string {
	return core.FullName(c.FirstName, c.LastName)
}

// ClassLabel is the class and section, e.g. "Grade 5 A".
func (c Child) ClassLabel() string {
	return core.FullName(c.Class, c.Section)
}

// Percentage is the score of the result out of 100; 0 when MaxMarks is unknown.
func (r Result) Percentage() float64 {
	if r.MaxMarks <= 0 {
		return 0
	}
	return r.Marks * 100 / r.MaxMarks
}

// Average is the mean percentage of the results whose MaxMarks is known.
// ok is false when there is none.
func Average(results []Result) (avg float64, ok bool) {
	var sum float64
	var n int
	for _, r := range results {
		if r.MaxMarks > 0 {
			sum += r.Percentage()
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

type Filter struct {
	Search string // name or roll number
	Class  string
}

func (f Filter) Match(c Child) bool {
	return core.ContainsFold(f.Search, c.Name(), c.RollNumber) && core.EqualFoldOrEmpty(f.Class, c.Class)
}

func (f Filter) Apply(children []Child) []Child {
	found := make([]Child, 0, len(children))
	for _, c := range children {
		if f.Match(c) {
			found = append(found, c)
		}
	}
	return found
}
