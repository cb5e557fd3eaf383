package teacher

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
)

type Step int

const (
	StepPersonal Step = iota + 1
	StepEmployment
)

func (s Step) String() string {
	switch s {
	case StepPersonal:
		return "Personal details"
	case StepEmployment:
		return "Employment & bank details"
	default:
		return "unknown step"
	}
}

var (
	errLastStep    = errors.New("already on the last step")
	errNotLastStep = errors.New("complete every step before submitting")

	// struct field names validated by each step
	stepFields = map[Step][]string{
		StepPersonal: {"FirstName", "LastName", "Email", "Phone", "Gender", "Designation", "Subjects"},
		StepEmployment: {
			"Salary", "JoiningDate", "Bank.BankName", "Bank.AccountNumber", "Bank.IFSC", "Password",
		},
	}
)

// Onboarding is the two-step add-teacher wizard. Data accumulates across steps and is only
// posted by Submit; nothing is saved on failure.
type Onboarding struct {
	svc  *Service
	step Step
	Data NewTeacher
}

func (svc *Service) NewOnboarding() *Onboarding {
	return &Onboarding{svc: svc, step: StepPersonal}
}

func (o *Onboarding) Step() Step   { return o.step }
func (o *Onboarding) IsLast() bool { return o.step == StepEmployment }

// Next validates the fields of the current step only, then moves forward.
func (o *Onboarding) Next() error {
	if o.IsLast() {
		return errLastStep
	}
	if err := o.validateStep(o.step); err != nil {
		return err
	}
	o.step++
	return nil
}

// Back moves to the previous step without validating anything.
func (o *Onboarding) Back() {
	if o.step > StepPersonal {
		o.step--
	}
}

// Submit validates the current step and posts the accumulated teacher.
func (o *Onboarding) Submit(ctx context.Context) (Created, error) {
	if !o.IsLast() {
		return Created{}, errNotLastStep
	}
	if err := o.validateStep(o.step); err != nil {
		return Created{}, err
	}
	return o.svc.Add(ctx, o.Data)
}

func (o *Onboarding) validateStep(step Step) error {
	o.Data.Clean()
	if err := o.svc.validate.StructPartial(o.Data, stepFields[step]...); err != nil {
		return core.TranslateValidation(err, o.svc.translator)
	}
	return nil
}
