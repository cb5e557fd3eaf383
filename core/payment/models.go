package payment

import (
	"sort"
	"time"

	"github.com/trezcool/masomo-portal/core"
)

// Statuses
const (
	StatusPaid    = "paid"
	StatusPending = "pending"
	StatusFailed  = "failed"
)

var Statuses = []string{StatusPaid, StatusPending, StatusFailed}

type (
	Student struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Class string `json:"class"`
	}

	Installment struct {
		Amount  float64 `json:"amount"`
		DueDate string  `json:"dueDate"`
		Status  string  `json:"status"`
	}

	Payment struct {
		ID           string        `json:"id"`
		Student      Student       `json:"student"`
		Amount       float64       `json:"amount"`
		FeeType      string        `json:"feeType"`
		Status       string        `json:"status"`
		Installments []Installment `json:"installments"`
		CreatedAt    time.Time     `json:"createdAt"`
	}
)

func (p Payment) IsPending() bool {
	return core.EqualFoldOrEmpty(StatusPending, p.Status)
}

// Filter is applied in memory on the fetched list.
type Filter struct {
	Search  string // student name, class or payment id
	Status  string
	FeeType string
}

func (f Filter) Match(p Payment) bool {
	return core.ContainsFold(f.Search, p.Student.Name, p.Student.Class, p.ID) &&
		core.EqualFoldOrEmpty(f.Status, p.Status) &&
		core.EqualFoldOrEmpty(f.FeeType, p.FeeType)
}

func (f Filter) Apply(payments []Payment) []Payment {
	found := make([]Payment, 0, len(payments))
	for _, p := range payments {
		if f.Match(p) {
			found = append(found, p)
		}
	}
	return found
}

// FeeTypes lists the distinct fee types of `payments`, sorted; used to fill the fee type dropdown.
func FeeTypes(payments []Payment) []string {
	seen := make(map[string]bool)
	types := make([]string, 0)
	for _, p := range payments {
		ft := core.Fold(core.CleanString(p.FeeType))
		if ft == "" || seen[ft] {
			continue
		}
		seen[ft] = true
		types = append(types, ft)
	}
	sort.Strings(types)
	return types
}

type (
	Total struct {
		Count  int
		Amount float64
	}

	// Summary is the billing report built from the fetched payments.
	Summary struct {
		Total     Total
		ByStatus  map[string]Total
		ByFeeType map[string]Total
	}
)

// CollectionRate is the share of the billed amount that was paid, between 0 and 1.
func (s Summary) CollectionRate() float64 {
	if s.Total.Amount == 0 {
		return 0
	}
	return s.ByStatus[StatusPaid].Amount / s.Total.Amount
}

// Summarize totals `payments` per status and per fee type.
func Summarize(payments []Payment) Summary {
	sum := Summary{
		ByStatus:  make(map[string]Total),
		ByFeeType: make(map[string]Total),
	}
	for _, p := range payments {
		sum.Total = sum.Total.add(p.Amount)

		status := core.Fold(core.CleanString(p.Status))
		sum.ByStatus[status] = sum.ByStatus[status].add(p.Amount)

		feeType := core.Fold(core.CleanString(p.FeeType))
		sum.ByFeeType[feeType] = sum.ByFeeType[feeType].add(p.Amount)
	}
	return sum
}

func (t Total) add(amount float64) Total {
	return Total{Count: t.Count + 1, Amount: t.Amount + amount}
}
