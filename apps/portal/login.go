package main

import (
	"context"
	"strings"

	"github.com/trezcool/masomo-portal/core/auth"
	"github.com/trezcool/masomo-portal/core/store"
)

func (cli *commandLine) login(ctx context.Context, args []string) error {
	loginCmd := cli.newFlagSet("login")
	email := loginCmd.String("email", "", "The user's email. The password will be prompted next.")
	if err := parseFlags(loginCmd, args); err != nil {
		return err
	}
	if *email == "" {
		loginCmd.Usage()
		return errHelp
	}

	pwd, err := cli.readPassword("Enter password")
	if err != nil {
		return err
	}
	if pwd == "" {
		loginCmd.Usage()
		return errHelp
	}

	sess, err := cli.authSvc.Login(ctx, auth.Credentials{Email: *email, Password: pwd})
	if err != nil {
		return err
	}
	cli.logger.Debug("logged in", sess)

	items, err := menuFor(sess.Role)
	if err != nil {
		return err
	}
	routes := make([]string, 0, len(items))
	for _, item := range items {
		routes = append(routes, item.route)
	}
	cli.printf("Welcome, %s!\n", sess)
	cli.printf("Available commands: %s, logout\n", strings.Join(routes, ", "))
	return nil
}

// watchSession drops every fetched list when the logged in user changes (logout, another login),
// so that a shell never shows the data of the previous user.
func (cli *commandLine) watchSession() {
	var token string
	cli.authSvc.Slice().Subscribe(func(st store.State[auth.Session]) {
		if st.Loading || st.Data.Token == token {
			return
		}
		token = st.Data.Token
		cli.resetStore()
	})
}

func (cli *commandLine) resetStore() {
	cli.schoolSvc.Reset()
	cli.teacherSvc.Reset()
	cli.classSvc.Reset()
	cli.paymentSvc.Reset()
	cli.dashboardSvc.Reset()
	cli.childSvc.Reset()
}

func (cli *commandLine) logout() error {
	if err := cli.authSvc.Logout(); err != nil {
		return err
	}
	cli.println("Logged out.")
	return nil
}
