package teacher

import (
	"context"
	"net/http"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-portal/core"
	testutil "github.com/trezcool/masomo-portal/tests"
)

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate, translator
}

func setup(t *testing.T) (*Service, *testutil.FakeAPI) {
	t.Helper()
	api := testutil.NewFakeAPI()
	validate, translator := newValidator()
	return NewService(api, validate, translator), api
}

var (
	jane = Teacher{
		ID: "t1", FirstName: "Jane", LastName: "Doe", Email: "jane.doe@school.test", Phone: "+254711111111",
		Gender: GenderFemale, Designation: "Senior Teacher", Subjects: []string{"Mathematics", "Physics"},
		Salary: 60000, Bank: BankDetails{BankName: "Equity", AccountNumber: "1000200030", IFSC: "EQBL0000001"},
	}
	john = Teacher{
		ID: "t2", FirstName: "John", LastName: "Kamau", Email: "john.k@school.test", Phone: "+254722222222",
		Gender: GenderMale, Designation: "Teacher", Subjects: []string{"English"},
		Salary: 40000, Bank: BankDetails{BankName: "KCB", AccountNumber: "2000300040", IFSC: "KCBL0000002"},
	}
	mary = Teacher{
		ID: "t3", FirstName: "Mary", LastName: "Wambui", Email: "mjane@school.test", Phone: "+254733333333",
		Gender: GenderFemale, Designation: "Head Teacher", Subjects: []string{"Chemistry", "mathematics"},
		Salary: 75000, Bank: BankDetails{BankName: "NCBA", AccountNumber: "3000400050", IFSC: "NCBA0000003"},
	}
	all = []Teacher{jane, john, mary}
)

func validNewTeacher() NewTeacher {
	return NewTeacher{
		FirstName:   "Alice",
		LastName:    "Mwangi",
		Email:       "Alice.Mwangi@School.test ",
		Phone:       "+254 700 123456",
		Gender:      "Female",
		Designation: "Teacher",
		Subjects:    []string{"Biology"},
		Salary:      45000,
		Bank:        BankDetails{BankName: "KCB", AccountNumber: "12345678", IFSC: "kcbl0001234"},
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr), "want *core.ValidationError, got %v", err)
	flds := make(map[string]string, len(vErr.Fields))
	for _, f := range vErr.Fields {
		flds[f.Field] = f.Error
	}
	return flds
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []Teacher
	}{
		{name: "empty filter", filter: Filter{}, want: all},
		{name: "typing jane matches name or email", filter: Filter{Search: "jane"}, want: []Teacher{jane, mary}},
		{name: "search is case-insensitive", filter: Filter{Search: "KAMAU"}, want: []Teacher{john}},
		{name: "search on phone", filter: Filter{Search: "7333"}, want: []Teacher{mary}},
		{name: "unknown search", filter: Filter{Search: "lol"}, want: []Teacher{}},
		{name: "designation", filter: Filter{Designation: "teacher"}, want: []Teacher{john}},
		{name: "gender", filter: Filter{Gender: "female"}, want: []Teacher{jane, mary}},
		{name: "subject ignores case", filter: Filter{Subject: "Mathematics"}, want: []Teacher{jane, mary}},
		{name: "combined", filter: Filter{Search: "jane", Gender: "female", Subject: "physics"}, want: []Teacher{jane}},
		{name: "combined (empty)", filter: Filter{Search: "jane", Designation: "Teacher"}, want: []Teacher{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(all)
			assert.Equal(t, tt.want, got)
			// filtering is idempotent
			assert.Equal(t, got, tt.filter.Apply(got))
		})
	}
	assert.Len(t, all, 3, "input list must not be modified")
}

func TestSubjects(t *testing.T) {
	got := Subjects(all)
	assert.Equal(t, []SubjectCount{
		{Name: "Chemistry", Teachers: []string{"Mary Wambui"}},
		{Name: "English", Teachers: []string{"John Kamau"}},
		{Name: "Mathematics", Teachers: []string{"Jane Doe", "Mary Wambui"}},
		{Name: "Physics", Teachers: []string{"Jane Doe"}},
	}, got)
	assert.Empty(t, Subjects(nil))
}

func TestNewTeacher_Validate(t *testing.T) {
	validate, translator := newValidator()

	t.Run("minimal valid payload", func(t *testing.T) {
		nt := validNewTeacher()
		require.NoError(t, nt.Validate(validate))
		assert.Equal(t, "alice.mwangi@school.test", nt.Email)
		assert.Equal(t, "female", nt.Gender)
		assert.Equal(t, "KCBL0001234", nt.Bank.IFSC)
	})

	t.Run("empty form", func(t *testing.T) {
		nt := NewTeacher{}
		err := core.TranslateValidation(nt.Validate(validate), translator)
		flds := fieldErrors(t, err)
		for _, f := range []string{"firstName", "lastName", "email", "phone", "gender", "designation", "subjects", "salary", "bankName", "accountNumber", "ifscCode"} {
			assert.Equal(t, "this field is required", flds[f], f)
		}
		assert.NotContains(t, flds, "password")
		assert.NotContains(t, flds, "joiningDate")
	})

	tests := []struct {
		name   string
		modify func(nt *NewTeacher)
		field  string
		want   string
	}{
		{name: "blank name", modify: func(nt *NewTeacher) { nt.FirstName = "   " }, field: "firstName", want: "this field is required"},
		{name: "bad email", modify: func(nt *NewTeacher) { nt.Email = "alice" }, field: "email", want: "email must be a valid email address"},
		{name: "bad phone", modify: func(nt *NewTeacher) { nt.Phone = "12ab" }, field: "phone", want: "enter a valid phone number"},
		{name: "bad ifsc", modify: func(nt *NewTeacher) { nt.Bank.IFSC = "KCB1" }, field: "ifscCode", want: ifscText},
		{name: "no subjects", modify: func(nt *NewTeacher) { nt.Subjects = []string{" "} }, field: "subjects", want: "subjects must contain at least 1 item"},
		{name: "short password", modify: func(nt *NewTeacher) { nt.Password = "Ab1!" }, field: "password", want: pwdMinLenText},
		{name: "password with space", modify: func(nt *NewTeacher) { nt.Password = "Abc 123!xyz" }, field: "password", want: pwdNoSpaceText},
		{name: "numeric password", modify: func(nt *NewTeacher) { nt.Password = "1234567890" }, field: "password", want: pwdNotAllNumText},
		{name: "simple password", modify: func(nt *NewTeacher) { nt.Password = "abcdefgh1" }, field: "password", want: pwdComplexityText},
		{name: "password like the email", modify: func(nt *NewTeacher) { nt.Password = "Mwangi#1" }, field: "password", want: pwdAttrSimText},
		{name: "bad joining date", modify: func(nt *NewTeacher) { nt.JoiningDate = "12/01/2024" }, field: "joiningDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nt := validNewTeacher()
			tt.modify(&nt)
			flds := fieldErrors(t, core.TranslateValidation(nt.Validate(validate), translator))
			require.Contains(t, flds, tt.field)
			if tt.want != "" {
				assert.Equal(t, tt.want, flds[tt.field])
			}
		})
	}
}

func TestGeneratePassword(t *testing.T) {
	validate, _ := newValidator()
	for i := 0; i < 20; i++ {
		pwd, err := GeneratePassword()
		require.NoError(t, err)
		assert.Len(t, pwd, generatedPwdLen)

		nt := validNewTeacher()
		nt.Password = pwd
		assert.NoError(t, nt.Validate(validate), pwd)
	}
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, api := setup(t)
		api.Reply(http.MethodGet, "/teachers", all)

		got, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, all, got)

		st := svc.State()
		assert.False(t, st.Loading)
		assert.Empty(t, st.Error)
		assert.Equal(t, all, st.Data)
	})

	t.Run("failure", func(t *testing.T) {
		svc, api := setup(t)
		api.Reply(http.MethodGet, "/teachers", all)
		_, err := svc.List(ctx)
		require.NoError(t, err)

		api.Fail(http.MethodGet, "/teachers", http.StatusInternalServerError, "Server error")
		_, err = svc.List(ctx)
		require.Error(t, err)

		st := svc.State()
		assert.False(t, st.Loading)
		assert.Equal(t, "Server error", st.Error)
		assert.Nil(t, st.Data)
	})
}

func TestService_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid form is not sent", func(t *testing.T) {
		svc, api := setup(t)
		_, err := svc.Add(ctx, NewTeacher{FirstName: "Alice"})
		require.Error(t, err)
		assert.Empty(t, api.Calls())
	})

	t.Run("generates password and re-fetches", func(t *testing.T) {
		svc, api := setup(t)
		api.On(http.MethodPost, "/teachers", func(req core.Request) (interface{}, error) {
			nt := req.Body.(NewTeacher)
			return Teacher{ID: "t9", FirstName: nt.FirstName, LastName: nt.LastName, Email: nt.Email}, nil
		})
		api.Reply(http.MethodGet, "/teachers", []Teacher{jane})

		created, err := svc.Add(ctx, validNewTeacher())
		require.NoError(t, err)
		assert.Equal(t, "t9", created.Teacher.ID)
		assert.Len(t, created.Password, generatedPwdLen)

		body := api.LastBody(t, http.MethodPost, "/teachers")
		assert.Equal(t, true, body["generatedPassword"])
		assert.Equal(t, created.Password, body["password"])
		assert.Equal(t, 1, api.Count(http.MethodPost, "/teachers"))
		assert.Equal(t, 1, api.Count(http.MethodGet, "/teachers"))
		assert.Equal(t, []Teacher{jane}, svc.State().Data)
	})

	t.Run("provided password is kept", func(t *testing.T) {
		svc, api := setup(t)
		api.Reply(http.MethodPost, "/teachers", Teacher{ID: "t9"})
		api.Reply(http.MethodGet, "/teachers", []Teacher{})

		nt := validNewTeacher()
		nt.Password = "Str0ng#Pass"
		created, err := svc.Add(ctx, nt)
		require.NoError(t, err)
		assert.Empty(t, created.Password)
		assert.Equal(t, false, api.LastBody(t, http.MethodPost, "/teachers")["generatedPassword"])
	})

	t.Run("backend failure", func(t *testing.T) {
		svc, api := setup(t)
		api.Fail(http.MethodPost, "/teachers", http.StatusConflict, "Teacher with this email already exists")

		_, err := svc.Add(ctx, validNewTeacher())
		assert.EqualError(t, err, "Teacher with this email already exists")
		assert.Equal(t, 0, api.Count(http.MethodGet, "/teachers"), "no re-fetch on failure")
	})

	t.Run("double submit", func(t *testing.T) {
		svc, api := setup(t)
		started := make(chan struct{})
		release := make(chan struct{})
		api.On(http.MethodPost, "/teachers", func(core.Request) (interface{}, error) {
			close(started)
			<-release
			return Teacher{ID: "t9"}, nil
		})
		api.Reply(http.MethodGet, "/teachers", []Teacher{})

		done := make(chan error)
		go func() {
			_, err := svc.Add(ctx, validNewTeacher())
			done <- err
		}()
		<-started
		assert.True(t, svc.Pending())

		_, err := svc.Add(ctx, validNewTeacher())
		assert.Equal(t, core.ErrBusy, err)

		close(release)
		require.NoError(t, <-done)
		assert.Equal(t, 1, api.Count(http.MethodPost, "/teachers"))
	})
}

func TestService_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	svc, api := setup(t)
	api.Reply(http.MethodGet, "/teachers", all)
	_, err := svc.List(ctx)
	require.NoError(t, err)

	_, err = svc.Update(ctx, "nope", UpdateTeacher{})
	assert.Equal(t, ErrNotFound, err)

	api.On(http.MethodPut, "/teachers/t2", func(req core.Request) (interface{}, error) {
		data := req.Body.(UpdateTeacher)
		upd := john
		upd.Designation = data.Designation
		upd.Salary = data.Salary
		return upd, nil
	})
	updated, err := svc.Update(ctx, "t2", UpdateTeacher{Designation: "Head Teacher"})
	require.NoError(t, err)
	assert.Equal(t, "Head Teacher", updated.Designation)

	// blank fields keep their current value
	body := api.LastBody(t, http.MethodPut, "/teachers/t2")
	assert.Equal(t, "John", body["firstName"])
	assert.Equal(t, "john.k@school.test", body["email"])
	assert.Equal(t, []interface{}{"English"}, body["subjects"])
	assert.Equal(t, float64(40000), body["salary"])
	assert.NotContains(t, body, "password")

	_, err = svc.Update(ctx, "t2", UpdateTeacher{Email: "not-an-email"})
	assert.Contains(t, fieldErrors(t, err), "email")

	api.Reply(http.MethodDelete, "/teachers/t2", map[string]string{"message": "Teacher deleted"})
	require.NoError(t, svc.Delete(ctx, "t2"))
	assert.Equal(t, 1, api.Count(http.MethodDelete, "/teachers/t2"))
	assert.Equal(t, 3, api.Count(http.MethodGet, "/teachers"), "initial fetch + one per mutation")

	api.Fail(http.MethodDelete, "/teachers/t1", http.StatusNotFound, "Teacher not found")
	assert.EqualError(t, svc.Delete(ctx, "t1"), "Teacher not found")
}

func TestOnboarding(t *testing.T) {
	ctx := context.Background()
	svc, api := setup(t)
	api.Reply(http.MethodPost, "/teachers", Teacher{ID: "t9"})
	api.Reply(http.MethodGet, "/teachers", []Teacher{})

	wiz := svc.NewOnboarding()
	assert.Equal(t, StepPersonal, wiz.Step())

	// step 1 only checks its own fields
	err := wiz.Next()
	flds := fieldErrors(t, err)
	assert.Contains(t, flds, "firstName")
	assert.NotContains(t, flds, "salary")
	assert.NotContains(t, flds, "bankName")
	assert.Equal(t, StepPersonal, wiz.Step())

	full := validNewTeacher()
	wiz.Data.FirstName, wiz.Data.LastName = full.FirstName, full.LastName
	wiz.Data.Email, wiz.Data.Phone = full.Email, full.Phone
	wiz.Data.Gender, wiz.Data.Designation, wiz.Data.Subjects = full.Gender, full.Designation, full.Subjects

	_, err = wiz.Submit(ctx)
	assert.Equal(t, errNotLastStep, err)

	require.NoError(t, wiz.Next())
	assert.Equal(t, StepEmployment, wiz.Step())
	assert.True(t, wiz.IsLast())
	assert.Equal(t, errLastStep, wiz.Next())

	// back never validates and keeps the data
	wiz.Back()
	assert.Equal(t, StepPersonal, wiz.Step())
	assert.Equal(t, "Alice", wiz.Data.FirstName)
	require.NoError(t, wiz.Next())

	_, err = wiz.Submit(ctx)
	flds = fieldErrors(t, err)
	assert.Contains(t, flds, "salary")
	assert.NotContains(t, flds, "firstName")
	assert.Empty(t, api.Calls(), "nothing is saved until the last step is valid")

	wiz.Data.Salary = full.Salary
	wiz.Data.Bank = full.Bank
	created, err := wiz.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t9", created.Teacher.ID)
	assert.Equal(t, 1, api.Count(http.MethodPost, "/teachers"))
}

func TestService_Profile(t *testing.T) {
	svc, api := setup(t)
	api.Reply(http.MethodGet, profilePath, jane)

	got, err := svc.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, jane, got)
	assert.Nil(t, svc.State().Data, "the profile does not touch the list")
}
