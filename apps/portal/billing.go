package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/auth"
	"github.com/trezcool/masomo-portal/core/payment"
	"github.com/trezcool/masomo-portal/core/store"
)

const dateLayout = "2006-01-02"

func (cli *commandLine) billing(ctx context.Context, sess auth.Session, args []string) error {
	if err := checkAccess(sess, routeBilling); err != nil {
		return err
	}
	sub, args := subcommand(args)
	switch sub {
	case "":
		return cli.listPayments(ctx, sess, args)
	case "approve":
		if !sess.IsAdmin() {
			return &accessError{route: routeBilling + " approve", role: sess.Role}
		}
		return cli.approvePayment(ctx, args)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) listPayments(ctx context.Context, sess auth.Session, args []string) error {
	listCmd := cli.newFlagSet(routeBilling)
	var filter payment.Filter
	listCmd.StringVar(&filter.Search, "search", "", "Search by student, class or payment ID.")
	listCmd.StringVar(&filter.Status, "status", "", "Only show this status (paid, pending, failed).")
	listCmd.StringVar(&filter.FeeType, "feetype", "", "Only show this fee type.")
	if err := parseFlags(listCmd, args); err != nil {
		return err
	}

	return cli.page(ctx, sess, routeBilling, func(w io.Writer) error {
		payments, err := cli.visiblePayments(ctx, sess)
		if err != nil {
			return err
		}
		found := filter.Apply(payments)
		if len(found) == 0 {
			_, _ = fmt.Fprintln(w, "No payments found.")
			return nil
		}
		if err := writePayments(w, found); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "\nFee types: %s\n", joinOrNA(payment.FeeTypes(payments)))
		return nil
	})
}

// visiblePayments returns every payment for admins and the payments of their own children for parents.
func (cli *commandLine) visiblePayments(ctx context.Context, sess auth.Session) ([]payment.Payment, error) {
	payments, err := cli.paymentSvc.List(ctx)
	if err != nil || !sess.IsParent() {
		return payments, err
	}

	children, err := cli.childSvc.List(ctx)
	if err != nil {
		return nil, err
	}
	own := make(map[string]bool, len(children))
	for _, c := range children {
		own[c.ID] = true
	}
	mine := make([]payment.Payment, 0, len(payments))
	for _, p := range payments {
		if own[p.Student.ID] {
			mine = append(mine, p)
		}
	}
	return mine, nil
}

func writePayments(w io.Writer, payments []payment.Payment) error {
	if len(payments) == 0 {
		_, _ = fmt.Fprintln(w, "No payments yet.")
		return nil
	}
	tbl := newTable(w, "ID", "STUDENT", "CLASS", "FEE TYPE", "AMOUNT", "STATUS", "DATE", "INSTALLMENTS")
	for _, p := range payments {
		var date string
		if !p.CreatedAt.IsZero() {
			date = p.CreatedAt.Format(dateLayout)
		}
		tbl.row(p.ID, p.Student.Name, p.Student.Class, core.Title(p.FeeType), amount(p.Amount), core.Title(p.Status), date, installments(p))
	}
	return tbl.flush()
}

// installments summarizes the installment plan, e.g. "1/2 paid".
func installments(p payment.Payment) string {
	if len(p.Installments) == 0 {
		return ""
	}
	var paid int
	for _, i := range p.Installments {
		if core.EqualFoldOrEmpty(payment.StatusPaid, i.Status) {
			paid++
		}
	}
	return strconv.Itoa(paid) + "/" + strconv.Itoa(len(p.Installments)) + " paid"
}

func (cli *commandLine) approvePayment(ctx context.Context, args []string) error {
	approveCmd := cli.newFlagSet("billing approve")
	id := approveCmd.String("id", "", "The ID of the pending payment.")
	if err := parseFlags(approveCmd, args); err != nil {
		return err
	}
	if *id == "" {
		approveCmd.Usage()
		return errHelp
	}

	if cli.paymentSvc.State().Status() != store.StatusFulfilled {
		if _, err := cli.paymentSvc.List(ctx); err != nil {
			return err
		}
	}
	p, err := cli.paymentSvc.Approve(ctx, *id)
	if err != nil {
		return err
	}
	cli.printf("Payment %s approved (%s, %s).\n", p.ID, amount(p.Amount), core.OrNA(p.Student.Name))
	return nil
}

// reports is the billing report of the admin.
func (cli *commandLine) reports(ctx context.Context, sess auth.Session, args []string) error {
	if err := parseFlags(cli.newFlagSet(routeReports), args); err != nil {
		return err
	}
	return cli.page(ctx, sess, routeReports, func(w io.Writer) error {
		payments, err := cli.paymentSvc.List(ctx)
		if err != nil {
			return err
		}
		sum := payment.Summarize(payments)

		if err := details(w,
			"Payments", count(sum.Total.Count),
			"Billed", amount(sum.Total.Amount),
			"Collected", amount(sum.ByStatus[payment.StatusPaid].Amount),
			"Collection rate", fmt.Sprintf("%.1f%%", sum.CollectionRate()*100),
		); err != nil {
			return err
		}

		_, _ = fmt.Fprintln(w, "\nBy status")
		if err := writeTotals(w, "STATUS", sum.ByStatus); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w, "\nBy fee type")
		return writeTotals(w, "FEE TYPE", sum.ByFeeType)
	})
}

func writeTotals(w io.Writer, label string, totals map[string]payment.Total) error {
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tbl := newTable(w, label, "COUNT", "AMOUNT")
	for _, k := range keys {
		tbl.row(core.Title(k), count(totals[k].Count), amount(totals[k].Amount))
	}
	return tbl.flush()
}
