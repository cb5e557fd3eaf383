package main

import (
	"bufio"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/auth"
	"github.com/trezcool/masomo-portal/core/child"
	"github.com/trezcool/masomo-portal/core/class"
	"github.com/trezcool/masomo-portal/core/dashboard"
	"github.com/trezcool/masomo-portal/core/payment"
	"github.com/trezcool/masomo-portal/core/school"
	"github.com/trezcool/masomo-portal/core/store"
	"github.com/trezcool/masomo-portal/core/teacher"
	apisvc "github.com/trezcool/masomo-portal/services/api"
	logsvc "github.com/trezcool/masomo-portal/services/logger"
	inmemdb "github.com/trezcool/masomo-portal/storage/inmem"
	"github.com/trezcool/masomo-portal/storage/tokenfile"
)

// services groups everything the command line needs.
type services struct {
	dig.In

	Conf   *core.Config
	Logger core.Logger

	Auth      *auth.Service
	School    *school.Service
	Teacher   *teacher.Service
	Class     *class.Service
	Payment   *payment.Service
	Dashboard *dashboard.Service
	Child     *child.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stderr, "PORTAL : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

// newTokenStore keeps the token in memory in test mode, on disk otherwise.
func newTokenStore(conf *core.Config) core.TokenStore {
	if conf.TestMode || conf.TokenFile == "" {
		return inmemdb.NewTokenStore()
	}
	return tokenfile.New(conf.TokenFile)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	teacher.InitValidators(validate, translator)
	return validate
}

// serviceDeps are shared by the constructors of the core services.
type serviceDeps struct {
	dig.In

	Conf       *core.Config
	API        core.APIClient
	Tokens     core.TokenStore
	Validate   *validator.Validate
	Translator ut.Translator
}

// sliceOptions makes every store slice report the configured fallback message.
func sliceOptions(conf *core.Config) []store.Option {
	if conf.FallbackErrorMessage == "" {
		return nil
	}
	return []store.Option{store.WithFallbackMessage(conf.FallbackErrorMessage)}
}

func newAuthService(d serviceDeps) *auth.Service {
	return auth.NewService(d.API, d.Tokens, d.Validate, d.Translator, sliceOptions(d.Conf)...)
}

func newSchoolService(d serviceDeps) *school.Service {
	return school.NewService(d.API, d.Validate, d.Translator, sliceOptions(d.Conf)...)
}

func newTeacherService(d serviceDeps) *teacher.Service {
	return teacher.NewService(d.API, d.Validate, d.Translator, sliceOptions(d.Conf)...)
}

func newClassService(d serviceDeps) *class.Service {
	return class.NewService(d.API, d.Validate, d.Translator, sliceOptions(d.Conf)...)
}

func newPaymentService(d serviceDeps) *payment.Service {
	return payment.NewService(d.API, sliceOptions(d.Conf)...)
}

func newDashboardService(d serviceDeps) *dashboard.Service {
	return dashboard.NewService(d.API, sliceOptions(d.Conf)...)
}

func newChildService(d serviceDeps) *child.Service {
	return child.NewService(d.API, sliceOptions(d.Conf)...)
}

func newCommandLine(svc services) *commandLine {
	cli := &commandLine{
		conf:         svc.Conf,
		logger:       svc.Logger,
		out:          os.Stdout,
		in:           bufio.NewReader(os.Stdin),
		authSvc:      svc.Auth,
		schoolSvc:    svc.School,
		teacherSvc:   svc.Teacher,
		classSvc:     svc.Class,
		paymentSvc:   svc.Payment,
		dashboardSvc: svc.Dashboard,
		childSvc:     svc.Child,
	}
	cli.watchSession()
	return cli
}

// newContainer returns the dependency injection dig.Container of the portal.
func newContainer() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newTokenStore))
	must(c.Provide(apisvc.NewClientFromConfig, dig.As(new(core.APIClient))))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newAuthService))
	must(c.Provide(newSchoolService))
	must(c.Provide(newTeacherService))
	must(c.Provide(newClassService))
	must(c.Provide(newPaymentService))
	must(c.Provide(newDashboardService))
	must(c.Provide(newChildService))
	must(c.Provide(newCommandLine))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
