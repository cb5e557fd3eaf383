package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/auth"
	"github.com/trezcool/masomo-portal/core/child"
	"github.com/trezcool/masomo-portal/core/store"
)

func (cli *commandLine) children(ctx context.Context, sess auth.Session, args []string) error {
	listCmd := cli.newFlagSet(routeChildren)
	var filter child.Filter
	listCmd.StringVar(&filter.Search, "search", "", "Search by name or roll number.")
	listCmd.StringVar(&filter.Class, "class", "", "Only show this class.")
	if err := parseFlags(listCmd, args); err != nil {
		return err
	}

	return cli.page(ctx, sess, routeChildren, func(w io.Writer) error {
		children, err := cli.childSvc.List(ctx)
		if err != nil {
			return err
		}
		found := filter.Apply(children)
		if len(found) == 0 {
			_, _ = fmt.Fprintln(w, "No children found.")
			return nil
		}

		tbl := newTable(w, "ID", "NAME", "CLASS", "ROLL NO", "GUARDIAN", "RELATION", "PHONE", "EMAIL")
		for _, c := range found {
			g := c.Guardian
			tbl.row(c.ID, c.Name(), c.ClassLabel(), c.RollNumber, g.Name, core.Title(g.Relation), g.Phone, g.Email)
		}
		return tbl.flush()
	})
}

func (cli *commandLine) results(ctx context.Context, sess auth.Session, args []string) error {
	resultsCmd := cli.newFlagSet(routeResults)
	childID := resultsCmd.String("child", "", "The child's ID (see `children`).")
	if err := parseFlags(resultsCmd, args); err != nil {
		return err
	}
	if *childID == "" {
		resultsCmd.Usage()
		return errHelp
	}

	return cli.page(ctx, sess, routeResults, func(w io.Writer) error {
		results, err := cli.childSvc.Results(ctx, *childID)
		if err != nil {
			return err
		}
		if cli.childSvc.State().Status() == store.StatusIdle {
			_, _ = cli.childSvc.List(ctx) // for the name only
		}

		name := *childID
		if c, err := cli.childSvc.Find(*childID); err == nil {
			name = c.Name()
		}
		_, _ = fmt.Fprintf(w, "Results of %s\n\n", name)
		if len(results) == 0 {
			_, _ = fmt.Fprintln(w, "No results published yet.")
			return nil
		}

		tbl := newTable(w, "SUBJECT", "EXAM", "MARKS", "GRADE")
		for _, r := range results {
			marks := strconv.FormatFloat(r.Marks, 'f', -1, 64)
			if r.MaxMarks > 0 {
				marks += "/" + strconv.FormatFloat(r.MaxMarks, 'f', -1, 64)
			}
			tbl.row(r.Subject, r.Exam, marks, r.Grade)
		}
		if err := tbl.flush(); err != nil {
			return err
		}
		avg := core.NotAvailable
		if v, ok := child.Average(results); ok {
			avg = fmt.Sprintf("%.1f%%", v)
		}
		_, _ = fmt.Fprintf(w, "\nAverage: %s\n", avg)
		return nil
	})
}
