package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// Seeded accounts of the fake backend.
const (
	AdminEmail      = "admin@school.test"
	AdminPassword   = "Admin#2024"
	TeacherEmail    = "jane.doe@school.test"
	TeacherPassword = "Teach#2024"
	ParentEmail     = "parent@school.test"
	ParentPassword  = "Parent#2024"
)

var backendSecret = []byte("secret")

type (
	Record map[string]interface{}

	account struct {
		ID       string
		Email    string
		Password string
		Role     string
		Name     string
	}

	claims struct {
		jwt.StandardClaims
		Role  string `json:"role"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	// Backend is an in-memory school-management backend served over HTTP, for tests.
	Backend struct {
		*httptest.Server

		mu        sync.Mutex
		app       *echo.Echo
		accounts  []account
		School    Record
		Teachers  []Record
		Classes   []Record
		Payments  []Record
		Children  []Record
		Results   map[string][]Record
		hits      map[string]int
		FailNext  map[string]int // "METHOD /path" -> status code returned (once) without a message
	}
)

// NewBackend starts a seeded Backend; it is closed when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		app:      echo.New(),
		hits:     make(map[string]int),
		FailNext: make(map[string]int),
	}
	b.seed()
	b.setup()
	b.Server = httptest.NewServer(b.app)
	t.Cleanup(b.Close)
	return b
}

// Token issues a token the backend accepts, the way its login does.
func Token(t *testing.T, role, name, email string) string {
	t.Helper()
	now := time.Now()
	c := claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   uuid.NewString(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Hour).Unix(),
		},
		Role:  role,
		Name:  name,
		Email: email,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(backendSecret)
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}
	return token
}

// Hits returns how many requests reached method + path (route pattern, e.g. "/teachers/:id").
func (b *Backend) Hits(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[method+" "+path]
}

func (b *Backend) seed() {
	b.accounts = []account{
		{ID: "u-admin", Email: AdminEmail, Password: AdminPassword, Role: "admin", Name: "Grace Admin"},
		{ID: "u-teacher", Email: TeacherEmail, Password: TeacherPassword, Role: "teacher", Name: "Jane Doe"},
		{ID: "u-parent", Email: ParentEmail, Password: ParentPassword, Role: "parent", Name: "Paul Parent"},
	}
	b.School = Record{
		"name":    "Green Hills Academy",
		"logo":    "https://cdn.school.test/logo.png",
		"gallery": []interface{}{"https://cdn.school.test/1.jpg"},
		"address": "12 Hill Road",
		"email":   "office@school.test",
		"phone":   "+254700000000",
	}
	b.Teachers = []Record{
		{
			"id": "t1", "firstName": "Jane", "lastName": "Doe", "email": TeacherEmail, "phone": "+254711111111",
			"gender": "female", "designation": "Senior Teacher", "subjects": []interface{}{"Mathematics", "Physics"},
			"salary": 52000, "isPasswordUpdated": true,
			"bankDetails": Record{"bankName": "KCB", "accountNumber": "1234567890", "ifscCode": "KCBL0001234"},
		},
		{
			"id": "t2", "firstName": "John", "lastName": "Kamau", "email": "john.kamau@school.test", "phone": "+254722222222",
			"gender": "male", "designation": "Teacher", "subjects": []interface{}{"English"},
			"salary": 41000, "isPasswordUpdated": false,
			"bankDetails": Record{"bankName": "Equity", "accountNumber": "9876543210", "ifscCode": "EQTY0004321"},
		},
		{
			"id": "t3", "firstName": "Mary", "lastName": "Janeway", "email": "mary@school.test", "phone": "+254733333333",
			"gender": "female", "designation": "Head Teacher", "subjects": []interface{}{"Chemistry", "mathematics"},
			"salary": 61000, "isPasswordUpdated": true,
			"bankDetails": Record{"bankName": "KCB", "accountNumber": "5555555555", "ifscCode": "KCBL0005555"},
		},
	}
	b.Classes = []Record{
		{"id": "c1", "name": "Grade 5", "section": "A", "classTeacher": "Jane Doe", "capacity": 40, "studentCount": 32},
		{"id": "c2", "name": "Grade 6", "section": "B", "classTeacher": "John Kamau", "capacity": 35, "studentCount": 35},
	}
	b.Payments = []Record{
		{
			"id": "p1", "student": Record{"id": "s1", "name": "Amani Otieno", "class": "Grade 5"},
			"amount": 15000, "feeType": "tuition", "status": "paid", "createdAt": "2024-01-10T08:00:00Z",
		},
		{
			"id": "p2", "student": Record{"id": "s2", "name": "Baraka Otieno", "class": "Grade 6"},
			"amount": 4000, "feeType": "transport", "status": "pending", "createdAt": "2024-02-01T08:00:00Z",
			"installments": []interface{}{
				Record{"amount": 2000, "dueDate": "2024-02-15", "status": "paid"},
				Record{"amount": 2000, "dueDate": "2024-03-15", "status": "pending"},
			},
		},
		{
			"id": "p3", "student": Record{"id": "s3", "name": "Chloe Wanjiru", "class": "Grade 5"},
			"amount": 15000, "feeType": "tuition", "status": "failed", "createdAt": "2024-02-03T08:00:00Z",
		},
	}
	b.Children = []Record{
		{
			"id": "s1", "firstName": "Amani", "lastName": "Otieno", "class": "Grade 5", "section": "A", "rollNumber": "12",
			"guardian": Record{"name": "Paul Parent", "relation": "father", "phone": "+254744444444", "email": ParentEmail},
		},
		{
			"id": "s2", "firstName": "Baraka", "lastName": "Otieno", "class": "Grade 6", "section": "B",
			"guardian": Record{"name": "Paul Parent", "relation": "father", "phone": "+254744444444"},
		},
	}
	b.Results = map[string][]Record{
		"s1": {
			{"subject": "Mathematics", "exam": "Mid-term", "marks": 78, "maxMarks": 100, "grade": "B+"},
			{"subject": "English", "exam": "Mid-term", "marks": 88, "maxMarks": 100, "grade": "A"},
		},
	}
}

func (b *Backend) setup() {
	b.app.HideBanner = true
	b.app.Logger.SetLevel(log.OFF)
	b.app.Use(b.countHits)

	b.app.POST("/auth/login", b.login)

	authed := b.app.Group("", b.authMiddleware)
	authed.GET("/school", b.getSchool)
	authed.GET("/classes", b.list(&b.Classes))
	authed.GET("/payments", b.list(&b.Payments))
	authed.GET("/teacher/profile", b.teacherProfile, b.roleMiddleware("teacher"))
	authed.GET("/parent/children", b.list(&b.Children), b.roleMiddleware("parent"))
	authed.GET("/parent/children/:id/results", b.childResults, b.roleMiddleware("parent"))

	admin := authed.Group("", b.roleMiddleware("admin"))
	admin.PUT("/school", b.updateSchool)
	admin.GET("/admin/dashboard", b.dashboard)
	admin.GET("/teachers", b.list(&b.Teachers))
	admin.POST("/teachers", b.createTeacher)
	admin.PUT("/teachers/:id", b.update(&b.Teachers, "Teacher"))
	admin.DELETE("/teachers/:id", b.destroy(&b.Teachers, "Teacher"))
	admin.POST("/classes", b.create(&b.Classes))
	admin.DELETE("/classes/:id", b.destroy(&b.Classes, "Class"))
	admin.PUT("/payments/:id/approve", b.approvePayment)
}

func message(ctx echo.Context, code int, msg string) error {
	return ctx.JSON(code, echo.Map{"message": msg})
}

func (b *Backend) countHits(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		key := ctx.Request().Method + " " + ctx.Path()
		b.mu.Lock()
		b.hits[key]++
		code, fail := b.FailNext[key]
		delete(b.FailNext, key)
		b.mu.Unlock()
		if fail {
			return ctx.String(code, "upstream exploded")
		}
		return next(ctx)
	}
}

func (b *Backend) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		raw := ctx.Request().Header.Get("Authorization")
		if !strings.HasPrefix(raw, "Bearer ") {
			return message(ctx, http.StatusUnauthorized, "Not authorized, no token")
		}
		c := new(claims)
		_, err := jwt.ParseWithClaims(strings.TrimPrefix(raw, "Bearer "), c, func(*jwt.Token) (interface{}, error) {
			return backendSecret, nil
		})
		if err != nil {
			return message(ctx, http.StatusUnauthorized, "Not authorized, token failed")
		}
		ctx.Set("claims", c)
		return next(ctx)
	}
}

func (b *Backend) roleMiddleware(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if c, ok := ctx.Get("claims").(*claims); ok && c.Role == role {
				return next(ctx)
			}
			return message(ctx, http.StatusForbidden, "Access denied")
		}
	}
}

func (b *Backend) login(ctx echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := ctx.Bind(&body); err != nil {
		return message(ctx, http.StatusBadRequest, "Invalid request body")
	}
	for _, acc := range b.accounts {
		if acc.Email == body.Email && acc.Password == body.Password {
			now := time.Now()
			c := claims{
				StandardClaims: jwt.StandardClaims{Subject: acc.ID, IssuedAt: now.Unix(), ExpiresAt: now.Add(time.Hour).Unix()},
				Role:           acc.Role,
				Name:           acc.Name,
				Email:          acc.Email,
			}
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(backendSecret)
			if err != nil {
				return err
			}
			return ctx.JSON(http.StatusOK, echo.Map{"token": token, "role": acc.Role, "name": acc.Name})
		}
	}
	return message(ctx, http.StatusUnauthorized, "Invalid email or password")
}

func (b *Backend) getSchool(ctx echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ctx.JSON(http.StatusOK, b.School)
}

func (b *Backend) updateSchool(ctx echo.Context) error {
	var body Record
	if err := ctx.Bind(&body); err != nil {
		return message(ctx, http.StatusBadRequest, "Invalid request body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for k, v := range body {
		b.School[k] = v
	}
	return ctx.JSON(http.StatusOK, b.School)
}

func (b *Backend) list(table *[]Record) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		return ctx.JSON(http.StatusOK, *table)
	}
}

func (b *Backend) create(table *[]Record) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var body Record
		if err := ctx.Bind(&body); err != nil {
			return message(ctx, http.StatusBadRequest, "Invalid request body")
		}
		body["id"] = uuid.NewString()
		b.mu.Lock()
		defer b.mu.Unlock()
		*table = append(*table, body)
		return ctx.JSON(http.StatusCreated, body)
	}
}

func (b *Backend) createTeacher(ctx echo.Context) error {
	var body Record
	if err := ctx.Bind(&body); err != nil {
		return message(ctx, http.StatusBadRequest, "Invalid request body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.Teachers {
		if t["email"] == body["email"] {
			return message(ctx, http.StatusConflict, "Teacher with this email already exists")
		}
	}
	delete(body, "password")
	body["id"] = uuid.NewString()
	body["isPasswordUpdated"] = false
	b.Teachers = append(b.Teachers, body)
	return ctx.JSON(http.StatusCreated, body)
}

func (b *Backend) update(table *[]Record, kind string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var body Record
		if err := ctx.Bind(&body); err != nil {
			return message(ctx, http.StatusBadRequest, "Invalid request body")
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, r := range *table {
			if r["id"] == ctx.Param("id") {
				for k, v := range body {
					if k == "password" {
						r["isPasswordUpdated"] = true
						continue
					}
					r[k] = v
				}
				return ctx.JSON(http.StatusOK, r)
			}
		}
		return message(ctx, http.StatusNotFound, kind+" not found")
	}
}

func (b *Backend) destroy(table *[]Record, kind string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, r := range *table {
			if r["id"] == ctx.Param("id") {
				*table = append((*table)[:i], (*table)[i+1:]...)
				return message(ctx, http.StatusOK, kind+" deleted")
			}
		}
		return message(ctx, http.StatusNotFound, kind+" not found")
	}
}

func (b *Backend) approvePayment(ctx echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.Payments {
		if p["id"] == ctx.Param("id") {
			if p["status"] != "pending" {
				return message(ctx, http.StatusBadRequest, "Only pending payments can be approved")
			}
			p["status"] = "paid"
			return ctx.JSON(http.StatusOK, p)
		}
	}
	return message(ctx, http.StatusNotFound, "Payment not found")
}

func (b *Backend) dashboard(ctx echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var revenue, pending float64
	for _, p := range b.Payments {
		amount := toFloat(p["amount"])
		switch p["status"] {
		case "paid":
			revenue += amount
		case "pending":
			pending += amount
		}
	}
	var students int
	for _, c := range b.Classes {
		students += int(toFloat(c["studentCount"]))
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"totalStudents":  students,
		"totalTeachers":  len(b.Teachers),
		"totalClasses":   len(b.Classes),
		"totalRevenue":   revenue,
		"pendingFees":    pending,
		"recentPayments": b.Payments,
	})
}

func (b *Backend) teacherProfile(ctx echo.Context) error {
	c := ctx.Get("claims").(*claims)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.Teachers {
		if t["email"] == c.Email {
			return ctx.JSON(http.StatusOK, t)
		}
	}
	return message(ctx, http.StatusNotFound, "Teacher not found")
}

func (b *Backend) childResults(ctx echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.Children {
		if c["id"] == ctx.Param("id") {
			results := b.Results[ctx.Param("id")]
			if results == nil {
				results = []Record{}
			}
			return ctx.JSON(http.StatusOK, results)
		}
	}
	return message(ctx, http.StatusNotFound, "Student not found")
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

// NewRecorder serves a backend answering 204 to any request, handing its headers to fn.
func NewRecorder(t *testing.T, fn func(http.Header)) *httptest.Server {
	t.Helper()
	app := echo.New()
	app.HideBanner = true
	app.Logger.SetLevel(log.OFF)
	app.Any("/*", func(ctx echo.Context) error {
		fn(ctx.Request().Header.Clone())
		return ctx.NoContent(http.StatusNoContent)
	})
	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)
	return srv
}
