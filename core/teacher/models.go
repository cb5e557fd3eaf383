package teacher

import (
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-portal/core"
)

// Genders
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

var (
	Genders = []string{GenderMale, GenderFemale, GenderOther}

	// Designations offered by the add form. The backend accepts any non-blank designation.
	Designations = []string{
		"Principal",
		"Vice Principal",
		"Head Teacher",
		"Senior Teacher",
		"Teacher",
		"Assistant Teacher",
		"Lab Assistant",
	}
)

type BankDetails struct {
	BankName      string `json:"bankName" validate:"required,notblank"`
	AccountNumber string `json:"accountNumber" validate:"required,numeric,min=6,max=20"`
	IFSC          string `json:"ifscCode" validate:"required,ifsc"`
}

type Teacher struct {
	ID                string      `json:"id"`
	FirstName         string      `json:"firstName"`
	LastName          string      `json:"lastName"`
	Email             string      `json:"email"`
	Phone             string      `json:"phone"`
	Gender            string      `json:"gender"`
	Designation       string      `json:"designation"`
	Subjects          []string    `json:"subjects"`
	Salary            float64     `json:"salary"`
	Bank              BankDetails `json:"bankDetails"`
	JoiningDate       string      `json:"joiningDate"`
	IsPasswordUpdated bool        `json:"isPasswordUpdated"`
}

func (t Teacher) Name() string {
	return core.FullName(t.FirstName, t.LastName)
}

// NewTeacher contains information needed to create a new Teacher.
// An empty Password makes the client generate one (GeneratedPassword is then set).
type NewTeacher struct {
	FirstName         string      `json:"firstName" validate:"required,notblank"`
	LastName          string      `json:"lastName" validate:"required,notblank"`
	Email             string      `json:"email" validate:"required,email"`
	Phone             string      `json:"phone" validate:"required,phone"`
	Gender            string      `json:"gender" validate:"required,oneof=male female other"`
	Designation       string      `json:"designation" validate:"required,notblank"`
	Subjects          []string    `json:"subjects" validate:"required,min=1,dive,notblank"`
	Salary            float64     `json:"salary" validate:"required,gt=0"`
	JoiningDate       string      `json:"joiningDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Bank              BankDetails `json:"bankDetails"`
	Password          string      `json:"password,omitempty" validate:"omitempty,pwdminlen,pwdnospace,pwdnotallnum,pwdcplx,pwdtoosim"`
	GeneratedPassword bool        `json:"generatedPassword"`
}

// Clean normalizes user input before validation.
func (nt *NewTeacher) Clean() {
	nt.FirstName = core.CleanString(nt.FirstName)
	nt.LastName = core.CleanString(nt.LastName)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Phone = core.CleanString(nt.Phone)
	nt.Gender = core.CleanString(nt.Gender, true /* lower */)
	nt.Designation = core.CleanString(nt.Designation)
	nt.Subjects = cleanSubjects(nt.Subjects)
	nt.JoiningDate = core.CleanString(nt.JoiningDate)
	nt.Bank.BankName = core.CleanString(nt.Bank.BankName)
	nt.Bank.AccountNumber = core.CleanString(nt.Bank.AccountNumber)
	nt.Bank.IFSC = core.CleanString(nt.Bank.IFSC)
	nt.Bank.IFSC = strings.ToUpper(nt.Bank.IFSC)
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Clean()
	return validate.Struct(nt)
}

func (nt NewTeacher) passwordAttrs() []string {
	return []string{nt.FirstName, nt.LastName, nt.Email}
}

// UpdateTeacher defines what information may be provided to modify an existing Teacher.
// Blank fields keep their current value.
type UpdateTeacher struct {
	FirstName   string      `json:"firstName" validate:"required,notblank"`
	LastName    string      `json:"lastName" validate:"required,notblank"`
	Email       string      `json:"email" validate:"required,email"`
	Phone       string      `json:"phone" validate:"required,phone"`
	Gender      string      `json:"gender" validate:"required,oneof=male female other"`
	Designation string      `json:"designation" validate:"required,notblank"`
	Subjects    []string    `json:"subjects" validate:"required,min=1,dive,notblank"`
	Salary      float64     `json:"salary" validate:"required,gt=0"`
	JoiningDate string      `json:"joiningDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Bank        BankDetails `json:"bankDetails"`
	Password    string      `json:"password,omitempty" validate:"omitempty,pwdminlen,pwdnospace,pwdnotallnum,pwdcplx,pwdtoosim"`
}

func (ut *UpdateTeacher) Validate(orig Teacher, validate *validator.Validate) error {
	ut.FirstName = orDefault(core.CleanString(ut.FirstName), orig.FirstName)
	ut.LastName = orDefault(core.CleanString(ut.LastName), orig.LastName)
	ut.Email = orDefault(core.CleanString(ut.Email, true /* lower */), orig.Email)
	ut.Phone = orDefault(core.CleanString(ut.Phone), orig.Phone)
	ut.Gender = orDefault(core.CleanString(ut.Gender, true /* lower */), orig.Gender)
	ut.Designation = orDefault(core.CleanString(ut.Designation), orig.Designation)
	if subjects := cleanSubjects(ut.Subjects); len(subjects) > 0 {
		ut.Subjects = subjects
	} else {
		ut.Subjects = orig.Subjects
	}
	if ut.Salary == 0 {
		ut.Salary = orig.Salary
	}
	ut.JoiningDate = orDefault(core.CleanString(ut.JoiningDate), orig.JoiningDate)
	ut.Bank.BankName = orDefault(core.CleanString(ut.Bank.BankName), orig.Bank.BankName)
	ut.Bank.AccountNumber = orDefault(core.CleanString(ut.Bank.AccountNumber), orig.Bank.AccountNumber)
	ut.Bank.IFSC = strings.ToUpper(orDefault(core.CleanString(ut.Bank.IFSC), orig.Bank.IFSC))
	return validate.Struct(ut)
}

func (ut UpdateTeacher) passwordAttrs() []string {
	return []string{ut.FirstName, ut.LastName, ut.Email}
}

// Filter is applied in memory on the fetched list.
// Search does a case-insensitive match on one of name, email or phone;
// the other fields are exact (case-insensitive) dropdown matches. Empty fields match everything.
type Filter struct {
	Search      string
	Designation string
	Gender      string
	Subject     string
}

func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(f.Search+f.Designation+f.Gender+f.Subject) == ""
}

func (f Filter) Match(t Teacher) bool {
	if !core.ContainsFold(f.Search, t.Name(), t.Email, t.Phone) {
		return false
	}
	if !core.EqualFoldOrEmpty(f.Designation, t.Designation) || !core.EqualFoldOrEmpty(f.Gender, t.Gender) {
		return false
	}
	if strings.TrimSpace(f.Subject) == "" {
		return true
	}
	for _, s := range t.Subjects {
		if core.EqualFoldOrEmpty(f.Subject, s) {
			return true
		}
	}
	return false
}

// Apply returns the teachers matching f, in their original order. `teachers` is left untouched.
func (f Filter) Apply(teachers []Teacher) []Teacher {
	found := make([]Teacher, 0, len(teachers))
	for _, t := range teachers {
		if f.Match(t) {
			found = append(found, t)
		}
	}
	return found
}

type SubjectCount struct {
	Name     string
	Teachers []string
}

// Subjects lists the distinct subjects taught, with the teachers teaching them, sorted by name.
func Subjects(teachers []Teacher) []SubjectCount {
	idx := make(map[string]int)
	subjects := make([]SubjectCount, 0)
	for _, t := range teachers {
		for _, s := range cleanSubjects(t.Subjects) {
			key := core.Fold(s)
			i, ok := idx[key]
			if !ok {
				i = len(subjects)
				idx[key] = i
				subjects = append(subjects, SubjectCount{Name: core.Title(s)})
			}
			subjects[i].Teachers = append(subjects[i].Teachers, t.Name())
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects
}

func cleanSubjects(subjects []string) []string {
	if subjects == nil {
		return nil
	}
	cleaned := make([]string, 0, len(subjects))
	seen := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		s = core.CleanString(s)
		if s == "" || seen[core.Fold(s)] {
			continue
		}
		seen[core.Fold(s)] = true
		cleaned = append(cleaned, s)
	}
	return cleaned
}

func orDefault(val, def string) string {
	if val == "" {
		return def
	}
	return val
}
