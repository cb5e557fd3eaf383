package main

import (
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/auth"
	"github.com/trezcool/masomo-portal/core/child"
	"github.com/trezcool/masomo-portal/core/payment"
	"github.com/trezcool/masomo-portal/core/teacher"
)

// userErrors are shown as is.
var userErrors = []error{
	core.ErrBusy,
	errInputClosed,
	errUnterminatedQuote,
	teacher.ErrNotFound,
	payment.ErrNotFound,
	payment.ErrNotPending,
	child.ErrNotFound,
}

func isUserError(err error) bool {
	for _, uErr := range userErrors {
		if err == uErr {
			return true
		}
	}
	return false
}

// printError tells the user what went wrong with the last action.
// Only unexpected errors are logged.
func (cli *commandLine) printError(err error) {
	switch origErr := errors.Cause(err).(type) {
	case nil:
		return
	case *core.ValidationError:
		if len(origErr.Fields) == 0 {
			cli.println("error:", origErr.Error())
			return
		}
		cli.println("Please fix the following:")
		for _, fErr := range origErr.Fields {
			cli.printf("  %s: %s\n", fErr.Field, fErr.Error)
		}
	case *core.RequestError:
		if core.IsUnauthorized(origErr) {
			cli.println("error:", origErr.Message)
			cli.printLoginHint()
			return
		}
		cli.println("error:", origErr.Message)
	case *accessError:
		cli.println("error:", origErr.Error())
	default:
		switch {
		case origErr == errHelp, origErr == errCancelled:
		case origErr == core.ErrNoToken:
			cli.println("You are not logged in.")
			cli.printLoginHint()
		case origErr == auth.ErrInvalidToken:
			cli.println("Your session is invalid.")
			cli.printLoginHint()
		case isUserError(origErr):
			cli.println("error:", origErr.Error())
		default:
			fallback := cli.conf.FallbackErrorMessage
			if fallback == "" {
				fallback = core.DefaultFallbackErrorMessage
			}
			cli.println("error:", fallback)
			cli.logger.Error(err.Error(), err, cli.authSvc.State().Data)
		}
	}
}

func (cli *commandLine) printLoginHint() {
	cli.println("Log in with: login -email EMAIL")
}

// printFieldErrors prints validation errors and reports whether err was one.
func (cli *commandLine) printFieldErrors(err error) bool {
	if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		return false
	}
	cli.printError(err)
	return true
}
