package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sarvodaya/feedesk/apps"
	"github.com/sarvodaya/feedesk/core"
	"github.com/sarvodaya/feedesk/services/logger"
	"github.com/sarvodaya/feedesk/services/notify"
	"github.com/sarvodaya/feedesk/storage/blobstore"
)

func main() {
	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(std, conf)

	// set up storage
	blobs, err := blobstore.Open(conf.Store)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening %s store: %v", conf.Store.Driver, err), err)
	}

	app, err := apps.New(conf, blobs, notifysvc.New(conf, std, logger), logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading data: %v", err), err)
	}

	// start CLI
	cli := commandLine{app: app, out: os.Stdout}
	err = cli.run(os.Args)
	if cErr := app.Close(); cErr != nil {
		logger.Error(fmt.Sprintf("closing store: %v", cErr), cErr)
	}
	if err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
