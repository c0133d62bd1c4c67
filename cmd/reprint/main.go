package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/mcpl-automation/coilprint-backend/internal/auditlog"
	"github.com/mcpl-automation/coilprint-backend/internal/printer"
	"github.com/mcpl-automation/coilprint-backend/internal/reprint"
	"github.com/mcpl-automation/coilprint-backend/pkg/config"
	"github.com/mcpl-automation/coilprint-backend/pkg/db"
	"github.com/mcpl-automation/coilprint-backend/pkg/logger"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "reprint"})

	_ = godotenv.Load()

	serial := flag.String("serial", "", "serial number of the label to reprint")
	machineID := flag.Int("machine", 0, "reprint the latest label printed by this machine")
	flag.Parse()

	if *serial == "" && *machineID == 0 {
		fmt.Fprintln(os.Stderr, "provide -serial or -machine")
		os.Exit(1)
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "reprint",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	transport, err := printer.NewTransport(cfg.Printer)
	requireResource(ctx, logg, "printer transport", err)

	service, err := reprint.NewService(auditlog.NewRepository(dbClient.DB()), transport)
	requireResource(ctx, logg, "reprint service", err)

	var result *reprint.Result
	if *serial != "" {
		result, err = service.BySerial(ctx, *serial)
	} else {
		result, err = service.LatestForMachine(ctx, *machineID)
	}
	if err != nil {
		logg.Error(ctx, "reprint failed", err)
		os.Exit(1)
	}

	if result.Sent {
		fmt.Printf("reprinted %s (machine %d, work order %s)\n", result.SerialNumber, result.MachineID, result.WorkOrderNo)
		return
	}
	fmt.Fprintf(os.Stderr, "reprint of %s not delivered: %s\n", result.SerialNumber, result.ErrorDetail)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
