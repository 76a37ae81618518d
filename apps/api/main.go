package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	dig_container "github.com/trezcool/diario/apps/api/di/dig"
	echoapi "github.com/trezcool/diario/apps/api/echo"
	"github.com/trezcool/diario/assets"
	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/calendar"
	"github.com/trezcool/diario/core/class"
	"github.com/trezcool/diario/core/enrollment"
	"github.com/trezcool/diario/core/user"
	"github.com/trezcool/diario/storage"
)

func main() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		logger core.Logger,
		ds storage.DataSource,
		validate *validator.Validate,
		translator ut.Translator,
		server *echoapi.Server,
	) {
		// =========================================================================
		// Initialize App

		logger.Info(fmt.Sprintf("Application initializing : version %q, data source %q", conf.Build, ds.Kind()))

		core.InitValidators(validate, translator)
		user.InitValidators(validate, translator)
		class.InitValidators(validate, translator)
		enrollment.InitValidators(validate, translator)
		calendar.InitValidators(validate, translator)

		core.ParseEmailTemplates(assets.FS, assets.EmailTemplatesDir, conf, logger)

		user.LoadCommonPasswords(assets.FS, assets.CommonPasswordsFile, logger)

		defer func() {
			if err := ds.Close(); err != nil {
				logger.Error("failed to close the data source", err)
			}
		}()
		defer logger.Info("Application stopped")

		// =========================================================================
		// Start Debug Service
		//
		// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
		// /debug/vars - Added to the default mux by importing the expvar package.

		// Expose important info under /debug/vars.
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)
		expvar.NewString("data_source").Set(ds.Kind())

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
				logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()

		// =========================================================================
		// Start API Service

		go server.Start()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			logger.Error(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
