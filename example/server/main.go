package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	sheettable "github.com/ideamans/go-sheettable"
	"github.com/ideamans/go-sheettable/adapters/excel"
	"github.com/ideamans/go-sheettable/adapters/googlesheets"
	"github.com/ideamans/go-sheettable/server"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose logging")
	listenAddress := flag.String("listen", ":8080", "HTTP listen address")
	sheetName := flag.String("sheet", "Sheet1", "Sheet holding the table")
	file := flag.String("file", "", "Serve an Excel workbook instead of GOOGLE_SPREADSHEET_ID")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	table, err := openTable(*file, *sheetName)
	if err != nil {
		log.WithError(err).Fatal("failed to open table")
	}

	srv := &http.Server{
		Addr:              *listenAddress,
		Handler:           server.NewRouter(table),
		ReadHeaderTimeout: 2 * time.Second,
	}
	go func() {
		log.Infof("listening for HTTP on: %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan
	log.Info("Signalled, shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("shutdown failed")
	}
}

func openTable(file, sheetName string) (*sheettable.Table, error) {
	if file != "" {
		return excel.Open(&excel.Config{FilePath: file, SheetName: sheetName})
	}

	config := googlesheets.Config{
		SpreadsheetID: os.Getenv("GOOGLE_SPREADSHEET_ID"),
		SheetName:     sheetName,
	}
	if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		return googlesheets.Open(context.Background(), config, path)
	}
	return googlesheets.Open(context.Background(), config, nil)
}
