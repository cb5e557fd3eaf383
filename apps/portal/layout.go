package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/auth"
)

// Routes
const (
	routeDashboard = "dashboard"
	routeTeachers  = "teachers"
	routeSubjects  = "subjects"
	routeClasses   = "classes"
	routeBilling   = "billing"
	routeReports   = "reports"
	routeSchool    = "school"
	routeChildren  = "children"
	routeResults   = "results"
)

const (
	defaultWidth  = 100
	minSideWidth  = 80 // the sidebar is hidden on narrower terminals
	sidebarWidth  = 20
	activeMarker  = "> "
	defaultMarker = "  "
)

type menuItem struct {
	route string
	title string
}

// menus lists the routes of each role, in sidebar order.
var menus = map[string][]menuItem{
	auth.RoleAdmin: {
		{routeDashboard, "Dashboard"},
		{routeTeachers, "Teachers"},
		{routeSubjects, "Subjects"},
		{routeClasses, "Classes"},
		{routeBilling, "Billing"},
		{routeReports, "Reports"},
		{routeSchool, "School"},
	},
	auth.RoleTeacher: {
		{routeDashboard, "My Profile"},
		{routeClasses, "Classes"},
		{routeSubjects, "My Subjects"},
	},
	auth.RoleParent: {
		{routeChildren, "My Children"},
		{routeResults, "Results"},
		{routeBilling, "Fees"},
	},
}

var errForbidden = errors.New("access denied")

// accessError tells which route a role tried to reach.
type accessError struct {
	route string
	role  string
}

func (err *accessError) Error() string {
	return fmt.Sprintf("%s: %q is not available to the %s portal", errForbidden, err.route, core.OrNA(err.role))
}

func menuFor(role string) ([]menuItem, error) {
	items, ok := menus[role]
	if !ok {
		return nil, errors.Errorf("unknown role %q", role)
	}
	return items, nil
}

func routeTitle(role, route string) (string, bool) {
	for _, item := range menus[role] {
		if item.route == route {
			return item.title, true
		}
	}
	return "", false
}

// checkAccess returns an *accessError when `route` is not part of the role's menu.
func checkAccess(sess auth.Session, route string) error {
	if _, ok := routeTitle(sess.Role, route); !ok {
		return &accessError{route: route, role: sess.Role}
	}
	return nil
}

func terminalWidth() int {
	width, _, err := termSizeFunc(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

// page renders the role's layout around the view written by `render`.
// Nothing is printed when `render` fails.
func (cli *commandLine) page(ctx context.Context, sess auth.Session, route string, render func(w io.Writer) error) error {
	if err := checkAccess(sess, route); err != nil {
		return err
	}
	title, _ := routeTitle(sess.Role, route)

	var content bytes.Buffer
	if err := render(&content); err != nil {
		return err
	}

	width := terminalWidth()
	cli.header(ctx, sess, title, width)
	if width < minSideWidth {
		_, _ = cli.out.Write(content.Bytes())
		return nil
	}

	side := sidebar(sess.Role, route)
	lines := strings.Split(strings.TrimRight(content.String(), "\n"), "\n")
	for len(side) < len(lines) {
		side = append(side, "")
	}
	for i, sideLine := range side {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		cli.println(strings.TrimRight(padRight(sideLine, sidebarWidth)+"| "+line, " "))
	}
	return nil
}

func (cli *commandLine) header(ctx context.Context, sess auth.Session, title string, width int) {
	rule := strings.Repeat("=", width)
	left := " " + cli.schoolName(ctx)
	right := sess.String() + " "
	gap := width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	cli.println(rule)
	cli.println(left + strings.Repeat(" ", gap) + right)
	cli.println(rule)
	cli.printf(" %s / %s\n\n", core.Title(sess.Role), title)
}

// schoolName is taken from the store, fetched once, and falls back to the app name.
func (cli *commandLine) schoolName(ctx context.Context) string {
	if name := cli.schoolSvc.State().Data.Name; name != "" {
		return name
	}
	info, err := cli.schoolSvc.Get(ctx)
	if err != nil || info.Name == "" {
		return cli.conf.AppName
	}
	return info.Name
}

func sidebar(role, active string) []string {
	lines := []string{"MENU"}
	for _, item := range menus[role] {
		marker := defaultMarker
		if item.route == active {
			marker = activeMarker
		}
		lines = append(lines, marker+item.title)
	}
	return append(lines, "", defaultMarker+"Logout")
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// table writes aligned columns; blank cells are shown as N/A.
type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer, headers ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)}
	t.row(headers...)
	return t
}

func (t *table) row(cells ...string) {
	for i := range cells {
		cells[i] = core.OrNA(cells[i])
	}
	_, _ = fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
}

func (t *table) flush() error {
	return errors.Wrap(t.tw.Flush(), "writing table")
}

// details writes "label: value" lines, aligned.
func details(w io.Writer, pairs ...string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	for i := 0; i+1 < len(pairs); i += 2 {
		_, _ = fmt.Fprintf(tw, "%s:\t%s\n", pairs[i], core.OrNA(pairs[i+1]))
	}
	return errors.Wrap(tw.Flush(), "writing details")
}

var printer = message.NewPrinter(language.English)

// amount formats money with thousands separators: 15000 -> "15,000.00".
func amount(v float64) string {
	return printer.Sprintf("%.2f", v)
}

func joinOrNA(items []string) string {
	return core.OrNA(strings.Join(items, ", "))
}

// optAmount leaves zero amounts blank (shown as N/A).
func optAmount(v float64) string {
	if v == 0 {
		return ""
	}
	return amount(v)
}

func count(n int) string {
	return printer.Sprintf("%d", n)
}
