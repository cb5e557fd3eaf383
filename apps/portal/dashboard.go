package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/auth"
	"github.com/trezcool/masomo-portal/core/teacher"
)

// dashboard is the admin summary; teachers get their own profile instead.
func (cli *commandLine) dashboard(ctx context.Context, sess auth.Session, args []string) error {
	if err := parseFlags(cli.newFlagSet(routeDashboard), args); err != nil {
		return err
	}
	if sess.IsTeacher() {
		return cli.page(ctx, sess, routeDashboard, func(w io.Writer) error {
			t, err := cli.teacherSvc.Profile(ctx)
			if err != nil {
				return err
			}
			return writeTeacher(w, t)
		})
	}

	return cli.page(ctx, sess, routeDashboard, func(w io.Writer) error {
		sum, err := cli.dashboardSvc.Fetch(ctx)
		if err != nil {
			return err
		}
		if err := details(w,
			"Students", count(sum.TotalStudents),
			"Teachers", count(sum.TotalTeachers),
			"Classes", count(sum.TotalClasses),
			"Revenue", amount(sum.TotalRevenue),
			"Pending fees", amount(sum.PendingFees),
		); err != nil {
			return err
		}

		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "Recent payments")
		return writePayments(w, sum.Recent())
	})
}

func writeTeacher(w io.Writer, t teacher.Teacher) error {
	pwd := "generated (not updated yet)"
	if t.IsPasswordUpdated {
		pwd = "updated"
	}
	return details(w,
		"ID", t.ID,
		"Name", t.Name(),
		"Email", t.Email,
		"Phone", t.Phone,
		"Gender", core.Title(t.Gender),
		"Designation", t.Designation,
		"Subjects", strings.Join(t.Subjects, ", "),
		"Salary", optAmount(t.Salary),
		"Joined", t.JoiningDate,
		"Bank", t.Bank.BankName,
		"Account", t.Bank.AccountNumber,
		"IFSC", t.Bank.IFSC,
		"Password", pwd,
	)
}
