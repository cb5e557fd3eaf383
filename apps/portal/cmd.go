package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/auth"
	"github.com/trezcool/masomo-portal/core/child"
	"github.com/trezcool/masomo-portal/core/class"
	"github.com/trezcool/masomo-portal/core/dashboard"
	"github.com/trezcool/masomo-portal/core/payment"
	"github.com/trezcool/masomo-portal/core/school"
	"github.com/trezcool/masomo-portal/core/teacher"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	termSizeFunc     = term.GetSize      // mockable

	errHelp        = errors.New("help provided")
	errInputClosed = errors.New("input closed")
	errCancelled   = errors.New("cancelled")
)

type commandLine struct {
	conf   *core.Config
	logger core.Logger
	out    io.Writer
	in     *bufio.Reader

	authSvc      *auth.Service
	schoolSvc    *school.Service
	teacherSvc   *teacher.Service
	classSvc     *class.Service
	paymentSvc   *payment.Service
	dashboardSvc *dashboard.Service
	childSvc     *child.Service
}

func (cli *commandLine) printUsage() {
	cli.println("Usage:")
	cli.println("  login -email EMAIL                       - log in (the password is prompted next)")
	cli.println("  logout                                   - log out")
	cli.println("  dashboard                                - admin dashboard / teacher profile")
	cli.println("  teachers [-search -designation -gender -subject]")
	cli.println("  teachers add                             - add a teacher (interactive)")
	cli.println("  teachers update -id ID [fields...]       - update a teacher (-password prompts for a new one)")
	cli.println("  teachers delete -id ID                   - delete a teacher")
	cli.println("  subjects                                 - subjects taught")
	cli.println("  classes [-search -section]")
	cli.println("  classes add -name NAME -section SECTION [-teacher -capacity]")
	cli.println("  classes delete -id ID")
	cli.println("  billing [-search -status -feetype]")
	cli.println("  billing approve -id ID                   - approve a pending payment")
	cli.println("  reports                                  - billing report")
	cli.println("  school                                   - school profile")
	cli.println("  school update [-name -logo -gallery -address -email -phone -website]")
	cli.println("  children [-search -class]")
	cli.println("  results -child ID                        - exam results of a child")
	cli.println("  shell                                    - interactive session")
}

func (cli *commandLine) println(a ...interface{}) {
	_, _ = fmt.Fprintln(cli.out, a...)
}

func (cli *commandLine) printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, a...)
}

// newFlagSet returns a FlagSet that reports errors instead of exiting, so that the shell survives them.
func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parseFlags returns errHelp on failure; the FlagSet has already printed the problem and its usage.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errHelp
	}
	return nil
}

// run executes one command. args[0] is the program name.
func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[1] {
	case "login":
		return cli.login(ctx, args[2:])
	case "logout":
		return cli.logout()
	case "shell":
		return cli.shell()
	case "help", "-h", "-help", "--help":
		cli.printUsage()
		return nil
	}

	cmd, ok := commands[args[1]]
	if !ok {
		cli.printUsage()
		return errHelp
	}
	sess, err := cli.authSvc.Current()
	if err != nil {
		return err
	}
	return cmd(cli, ctx, sess, args[2:])
}

type command func(cli *commandLine, ctx context.Context, sess auth.Session, args []string) error

var commands map[string]command

func init() {
	commands = map[string]command{
		routeDashboard: (*commandLine).dashboard,
		routeTeachers:  (*commandLine).teachers,
		routeSubjects:  (*commandLine).subjects,
		routeClasses:   (*commandLine).classes,
		routeBilling:   (*commandLine).billing,
		routeReports:   (*commandLine).reports,
		routeSchool:    (*commandLine).school,
		routeChildren:  (*commandLine).children,
		routeResults:   (*commandLine).results,
	}
}

// subcommand splits "add -name x" into ("add", ["-name", "x"]); flags only yield ("", args).
func subcommand(args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0], args[1:]
	}
	return "", args
}

// prompt reads one line of input. An empty answer returns `def`.
func (cli *commandLine) prompt(label, def string) (string, error) {
	if def != "" {
		cli.printf("%s [%s]: ", label, def)
	} else {
		cli.printf("%s: ", label)
	}
	line, err := cli.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", errInputClosed
		}
		return "", errors.Wrap(err, "reading input")
	}
	if line = strings.TrimSpace(line); line == "" {
		return def, nil
	}
	return line, nil
}

func (cli *commandLine) readPassword(label string) (string, error) {
	cli.printf("%s: ", label)
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	cli.println()
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
