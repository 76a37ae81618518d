package main

import (
	"context"
	"os"

	"github.com/trezcool/diario/core"
	logsvc "github.com/trezcool/diario/services/logger"
	"github.com/trezcool/diario/storage"
	"github.com/trezcool/diario/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(conf)
	logger.Enable(!conf.Debug)
	ctx := context.Background()

	// set up DB
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		logger.Fatal("creating database", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	if err = database.Ping(ctx, db); err != nil {
		_ = db.Close()
		logger.Fatal("pinging database", err)
	}

	// start CLI
	cli := commandLine{
		db: db.DB,
		ds: storage.NewLiveStore(db),
	}
	err = cli.run(ctx, os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
