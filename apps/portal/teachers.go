package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/auth"
	"github.com/trezcool/masomo-portal/core/store"
	"github.com/trezcool/masomo-portal/core/teacher"
)

func (cli *commandLine) teachers(ctx context.Context, sess auth.Session, args []string) error {
	if err := checkAccess(sess, routeTeachers); err != nil {
		return err
	}
	sub, args := subcommand(args)
	switch sub {
	case "":
		return cli.listTeachers(ctx, sess, args)
	case "add":
		return cli.addTeacher(ctx)
	case "update":
		return cli.updateTeacher(ctx, args)
	case "delete":
		return cli.deleteTeacher(ctx, args)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) listTeachers(ctx context.Context, sess auth.Session, args []string) error {
	listCmd := cli.newFlagSet(routeTeachers)
	var filter teacher.Filter
	listCmd.StringVar(&filter.Search, "search", "", "Search by name, email or phone.")
	listCmd.StringVar(&filter.Designation, "designation", "", "Only show this designation.")
	listCmd.StringVar(&filter.Gender, "gender", "", "Only show this gender (male, female, other).")
	listCmd.StringVar(&filter.Subject, "subject", "", "Only show teachers of this subject.")
	if err := parseFlags(listCmd, args); err != nil {
		return err
	}

	return cli.page(ctx, sess, routeTeachers, func(w io.Writer) error {
		teachers, err := cli.teacherSvc.List(ctx)
		if err != nil {
			return err
		}
		found := filter.Apply(teachers)
		if len(found) == 0 {
			_, _ = fmt.Fprintln(w, "No teachers found.")
			return nil
		}

		tbl := newTable(w, "ID", "NAME", "EMAIL", "PHONE", "GENDER", "DESIGNATION", "SUBJECTS")
		for _, t := range found {
			tbl.row(t.ID, t.Name(), t.Email, t.Phone, core.Title(t.Gender), t.Designation, strings.Join(t.Subjects, ", "))
		}
		if err := tbl.flush(); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "\n%d of %d teachers\n", len(found), len(teachers))
		return nil
	})
}

// ensureTeachers fetches the list unless the store already holds it.
func (cli *commandLine) ensureTeachers(ctx context.Context) error {
	if cli.teacherSvc.State().Status() == store.StatusFulfilled {
		return nil
	}
	_, err := cli.teacherSvc.List(ctx)
	return err
}

// addTeacher runs the onboarding wizard. Invalid steps are asked again.
func (cli *commandLine) addTeacher(ctx context.Context) error {
	wiz := cli.teacherSvc.NewOnboarding()
	for {
		cli.printf("\nStep %d/%d: %s\n", wiz.Step(), teacher.StepEmployment, wiz.Step())

		var err error
		if wiz.IsLast() {
			err = cli.promptEmployment(&wiz.Data)
		} else {
			err = cli.promptPersonal(&wiz.Data)
		}
		if err != nil {
			return err
		}

		if !wiz.IsLast() {
			if err := wiz.Next(); err != nil && !cli.printFieldErrors(err) {
				return err
			}
			continue
		}

		answer, err := cli.prompt("Submit? (yes, back, cancel)", "yes")
		if err != nil {
			return err
		}
		switch strings.ToLower(answer) {
		case "yes", "y":
		case "back", "b":
			wiz.Back()
			continue
		default:
			return errCancelled
		}

		created, err := wiz.Submit(ctx)
		if err != nil {
			if cli.printFieldErrors(err) {
				continue
			}
			return err
		}
		cli.printf("Teacher %s added (id: %s).\n", created.Teacher.Name(), core.OrNA(created.Teacher.ID))
		if created.Password != "" {
			cli.printf("Generated password: %s\nShare it with the teacher; it is not shown again.\n", created.Password)
		}
		return nil
	}
}

func (cli *commandLine) promptPersonal(nt *teacher.NewTeacher) error {
	var err error
	if nt.FirstName, err = cli.prompt("First name", nt.FirstName); err != nil {
		return err
	}
	if nt.LastName, err = cli.prompt("Last name", nt.LastName); err != nil {
		return err
	}
	if nt.Email, err = cli.prompt("Email", nt.Email); err != nil {
		return err
	}
	if nt.Phone, err = cli.prompt("Phone", nt.Phone); err != nil {
		return err
	}
	if nt.Gender, err = cli.prompt("Gender ("+strings.Join(teacher.Genders, ", ")+")", nt.Gender); err != nil {
		return err
	}
	if nt.Designation, err = cli.prompt("Designation ("+strings.Join(teacher.Designations, ", ")+")", nt.Designation); err != nil {
		return err
	}
	subjects, err := cli.prompt("Subjects (comma separated)", strings.Join(nt.Subjects, ", "))
	if err != nil {
		return err
	}
	nt.Subjects = splitList(subjects)
	return nil
}

func (cli *commandLine) promptEmployment(nt *teacher.NewTeacher) error {
	var salary string
	if nt.Salary > 0 {
		salary = strconv.FormatFloat(nt.Salary, 'f', -1, 64)
	}
	salary, err := cli.prompt("Salary", salary)
	if err != nil {
		return err
	}
	nt.Salary = parseAmount(salary)

	if nt.JoiningDate, err = cli.prompt("Joining date (YYYY-MM-DD, optional)", nt.JoiningDate); err != nil {
		return err
	}
	if nt.Bank.BankName, err = cli.prompt("Bank name", nt.Bank.BankName); err != nil {
		return err
	}
	if nt.Bank.AccountNumber, err = cli.prompt("Account number", nt.Bank.AccountNumber); err != nil {
		return err
	}
	if nt.Bank.IFSC, err = cli.prompt("IFSC code", nt.Bank.IFSC); err != nil {
		return err
	}
	nt.Password, err = cli.readPassword("Password (leave empty to generate one)")
	return err
}

// parseAmount returns 0 for invalid input; validation then reports the field.
func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

func (cli *commandLine) updateTeacher(ctx context.Context, args []string) error {
	updateCmd := cli.newFlagSet("teachers update")
	id := updateCmd.String("id", "", "The teacher's ID.")
	var data teacher.UpdateTeacher
	var subjects string
	updateCmd.StringVar(&data.FirstName, "first", "", "First name.")
	updateCmd.StringVar(&data.LastName, "last", "", "Last name.")
	updateCmd.StringVar(&data.Email, "email", "", "Email.")
	updateCmd.StringVar(&data.Phone, "phone", "", "Phone number.")
	updateCmd.StringVar(&data.Gender, "gender", "", "Gender (male, female, other).")
	updateCmd.StringVar(&data.Designation, "designation", "", "Designation.")
	updateCmd.StringVar(&subjects, "subjects", "", "Subjects, comma separated. Replaces the current ones.")
	updateCmd.Float64Var(&data.Salary, "salary", 0, "Salary.")
	updateCmd.StringVar(&data.JoiningDate, "joined", "", "Joining date (YYYY-MM-DD).")
	updateCmd.StringVar(&data.Bank.BankName, "bank", "", "Bank name.")
	updateCmd.StringVar(&data.Bank.AccountNumber, "account", "", "Bank account number.")
	updateCmd.StringVar(&data.Bank.IFSC, "ifsc", "", "IFSC code.")
	setPwd := updateCmd.Bool("password", false, "Prompt for a new password.")
	if err := parseFlags(updateCmd, args); err != nil {
		return err
	}
	if *id == "" {
		updateCmd.Usage()
		return errHelp
	}
	data.Subjects = splitList(subjects)

	if *setPwd {
		pwd, err := cli.readPassword("New password")
		if err != nil {
			return err
		}
		if pwd == "" {
			updateCmd.Usage()
			return errHelp
		}
		data.Password = pwd
	}

	if err := cli.ensureTeachers(ctx); err != nil {
		return err
	}
	t, err := cli.teacherSvc.Update(ctx, *id, data)
	if err != nil {
		return err
	}
	cli.printf("Teacher %s updated.\n", t.Name())
	return nil
}

func (cli *commandLine) deleteTeacher(ctx context.Context, args []string) error {
	deleteCmd := cli.newFlagSet("teachers delete")
	id := deleteCmd.String("id", "", "The teacher's ID.")
	force := deleteCmd.Bool("force", false, "Do not ask for confirmation.")
	if err := parseFlags(deleteCmd, args); err != nil {
		return err
	}
	if *id == "" {
		deleteCmd.Usage()
		return errHelp
	}

	if !*force {
		if err := cli.ensureTeachers(ctx); err != nil {
			return err
		}
		t, err := cli.teacherSvc.Find(*id)
		if err != nil {
			return err
		}
		if ok, err := cli.confirm(fmt.Sprintf("Delete teacher %s?", t.Name())); err != nil || !ok {
			if err == nil {
				err = errCancelled
			}
			return err
		}
	}
	if err := cli.teacherSvc.Delete(ctx, *id); err != nil {
		return err
	}
	cli.println("Teacher deleted.")
	return nil
}

func (cli *commandLine) confirm(question string) (bool, error) {
	answer, err := cli.prompt(question+" (y/N)", "")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// subjects lists the subjects taught: by the whole staff for admins, by themselves for teachers.
func (cli *commandLine) subjects(ctx context.Context, sess auth.Session, args []string) error {
	if err := parseFlags(cli.newFlagSet(routeSubjects), args); err != nil {
		return err
	}
	return cli.page(ctx, sess, routeSubjects, func(w io.Writer) error {
		var teachers []teacher.Teacher
		if sess.IsTeacher() {
			t, err := cli.teacherSvc.Profile(ctx)
			if err != nil {
				return err
			}
			teachers = []teacher.Teacher{t}
		} else {
			var err error
			if teachers, err = cli.teacherSvc.List(ctx); err != nil {
				return err
			}
		}

		subjects := teacher.Subjects(teachers)
		if len(subjects) == 0 {
			_, _ = fmt.Fprintln(w, "No subjects found.")
			return nil
		}
		tbl := newTable(w, "SUBJECT", "TEACHERS", "NAMES")
		for _, s := range subjects {
			tbl.row(s.Name, strconv.Itoa(len(s.Teachers)), strings.Join(s.Teachers, ", "))
		}
		return tbl.flush()
	})
}
