package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	density "github.com/alice-fmd/density_go/pkg"
	sqlx "github.com/jmoiron/sqlx"
)

var logger *slog.Logger

func init() {
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	migrateOnly := flag.Bool("migrate", false, "Only migrate the schema")
	importFile := flag.String("import", "", "Calibration file to store in the database")
	exportFile := flag.String("export", "", "Write the calibration of -run to this file")
	runNumber := flag.Int("run", 0, "Run number for -export")
	flag.Parse()

	configuration, err := LoadConfiguration(*configFilename)
	if err != nil {
		logger.Error(fmt.Sprintf("Error reading configuration file: %v", err))
		os.Exit(1)
	}
	density.SetLogger(libLogger{l: logger})
	density.SetVerbosity(configuration.Verbosity)
	if configuration.Verbosity > 0 {
		printConfiguration(configuration)
	}

	dbConn, err := density.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
	if err != nil {
		logger.Error(fmt.Sprintf("Error connection to database: %v", err))
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := run(dbConn, *migrateOnly, *importFile, *exportFile, *runNumber); err != nil {
		logger.Error(err.Error())
		dbConn.Close()
		os.Exit(1)
	}
}

func run(dbConn *sqlx.DB, migrateOnly bool, importFile, exportFile string, runNumber int) error {
	if err := density.MigrateUp(dbConn); err != nil {
		return err
	}
	version, dirty, err := density.MigrateVersion(dbConn)
	if err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("Schema version %d (dirty: %t)", version, dirty), "module", "migrate")
	if migrateOnly {
		return nil
	}

	if importFile != "" {
		calib, err := density.LoadCalibrationFile(importFile)
		if err != nil {
			return err
		}
		if err := density.StoreCalibration(dbConn, calib); err != nil {
			return err
		}
		logger.Info(fmt.Sprintf("Stored %d fits for runs %d-%d", calib.ELoss.NFits(), calib.MinRun, calib.MaxRun), "module", "import")
	}

	if exportFile != "" {
		calib, err := density.LoadCalibration(dbConn, runNumber)
		if err != nil {
			return err
		}
		f, err := os.Create(exportFile)
		if err != nil {
			return &density.ErrOpenFile{Filename: exportFile, Err: err}
		}
		if err := density.WriteCalibration(f, calib); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logger.Info(fmt.Sprintf("Wrote calibration of run %d to %s", runNumber, exportFile), "module", "export")
	}
	return nil
}
