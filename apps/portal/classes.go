package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/trezcool/masomo-portal/core/auth"
	"github.com/trezcool/masomo-portal/core/class"
)

func (cli *commandLine) classes(ctx context.Context, sess auth.Session, args []string) error {
	if err := checkAccess(sess, routeClasses); err != nil {
		return err
	}
	sub, args := subcommand(args)
	if sub != "" && !sess.IsAdmin() {
		return &accessError{route: routeClasses + " " + sub, role: sess.Role}
	}
	switch sub {
	case "":
		return cli.listClasses(ctx, sess, args)
	case "add":
		return cli.addClass(ctx, args)
	case "delete":
		return cli.deleteClass(ctx, args)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) listClasses(ctx context.Context, sess auth.Session, args []string) error {
	listCmd := cli.newFlagSet(routeClasses)
	var filter class.Filter
	listCmd.StringVar(&filter.Search, "search", "", "Search by name or class teacher.")
	listCmd.StringVar(&filter.Section, "section", "", "Only show this section.")
	if err := parseFlags(listCmd, args); err != nil {
		return err
	}

	return cli.page(ctx, sess, routeClasses, func(w io.Writer) error {
		classes, err := cli.classSvc.List(ctx)
		if err != nil {
			return err
		}
		found := filter.Apply(classes)
		if len(found) == 0 {
			_, _ = fmt.Fprintln(w, "No classes found.")
			return nil
		}

		tbl := newTable(w, "ID", "CLASS", "SECTION", "CLASS TEACHER", "STUDENTS")
		for _, c := range found {
			students := strconv.Itoa(c.StudentCount)
			if c.Capacity > 0 {
				students += "/" + strconv.Itoa(c.Capacity)
			}
			tbl.row(c.ID, c.Name, c.Section, c.ClassTeacher, students)
		}
		return tbl.flush()
	})
}

// addClass is the add-class modal.
func (cli *commandLine) addClass(ctx context.Context, args []string) error {
	addCmd := cli.newFlagSet("classes add")
	var nc class.NewClass
	addCmd.StringVar(&nc.Name, "name", "", "The class name, e.g. \"Grade 5\".")
	addCmd.StringVar(&nc.Section, "section", "", "The section, e.g. A.")
	addCmd.StringVar(&nc.ClassTeacher, "teacher", "", "The class teacher (optional).")
	addCmd.IntVar(&nc.Capacity, "capacity", 0, "The maximum number of students (optional).")
	if err := parseFlags(addCmd, args); err != nil {
		return err
	}

	c, err := cli.classSvc.Create(ctx, nc)
	if err != nil {
		return err
	}
	cli.printf("Class %s created (id: %s).\n", c.Label(), c.ID)
	return nil
}

func (cli *commandLine) deleteClass(ctx context.Context, args []string) error {
	deleteCmd := cli.newFlagSet("classes delete")
	id := deleteCmd.String("id", "", "The class ID.")
	if err := parseFlags(deleteCmd, args); err != nil {
		return err
	}
	if *id == "" {
		deleteCmd.Usage()
		return errHelp
	}

	if err := cli.classSvc.Delete(ctx, *id); err != nil {
		return err
	}
	cli.println("Class deleted.")
	return nil
}
