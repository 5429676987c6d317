package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	density "github.com/alice-fmd/density_go/pkg"
	"github.com/alice-fmd/density_go/writer"
)

var configuration density.Configuration

var (
	logger         Logger
	VerbosityLevel int
	DiscardErrors  bool
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	calibFilename := flag.String("calibration", "", "Calibration file, overrides the database")
	flag.Parse()

	var err error
	configuration, err = LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	if *calibFilename != "" {
		configuration.NoDB = true
		configuration.CalibrationFile = *calibFilename
	}
	density.SetLogger(logger)
	density.SetVerbosity(configuration.Verbosity)

	VerbosityLevel = configuration.Verbosity
	DiscardErrors = configuration.Discard
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	if err := run(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func loadCalibration(runNumber int) (*density.Calibration, error) {
	if configuration.NoDB {
		return density.LoadCalibrationFile(configuration.CalibrationFile)
	}
	dbConn, err := density.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
	if err != nil {
		return nil, fmt.Errorf("Error connection to database: %w", err)
	}
	defer dbConn.Close()
	return density.LoadCalibration(dbConn, runNumber)
}

func run() error {
	file, err := os.Open(configuration.FileIn)
	if err != nil {
		return &density.ErrOpenFile{Filename: configuration.FileIn, Err: err}
	}
	defer file.Close()

	evtCount, runNumber, err := countEvents(file)
	if err != nil {
		return err
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Number of events: %d", evtCount)
		logger.Info(message, "main")
	}
	if configuration.RunNumber > 0 {
		runNumber = configuration.RunNumber
	}

	calib, err := loadCalibration(runNumber)
	if err != nil {
		return fmt.Errorf("error loading calibration for run %d: %w", runNumber, err)
	}

	calc, err := density.NewDensityCalculator(configuration, calib.Providers())
	if err != nil {
		return err
	}
	calc.Init(configuration.DefaultEtaAxis)
	if VerbosityLevel > 0 {
		calc.Print(VerbosityLevel > 1)
	}

	var out *writer.Writer
	if configuration.FileOut != "" {
		out, err = writer.NewWriter(configuration.FileOut, configuration.CompressionLevel, configuration.DensityAxis, configuration.WriteData)
		if err != nil {
			return err
		}
		defer func() {
			if err := out.Close(); err != nil {
				logger.Error(err.Error())
			}
		}()
		if err := out.WriteConfiguration(configuration); err != nil {
			return err
		}
	}

	start := time.Now()
	nEvents, err := processEvents(NewFileReader(file), calc, out)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	logger.Info(fmt.Sprintf("Processed %d events in %d ms", nEvents, duration.Milliseconds()), "main")

	sums := calc.ScaleHistograms(nEvents)
	if out != nil {
		if err := out.WriteDensity(calc); err != nil {
			return err
		}
		if err := out.WriteCalibrationTables(calc.WeightCache()); err != nil {
			return err
		}
	}
	if configuration.YodaOut != "" {
		if err := writeYODA(calc, configuration.YodaOut); err != nil {
			return err
		}
	}
	if configuration.PlotDir != "" && nEvents > 0 {
		if err := os.MkdirAll(configuration.PlotDir, 0o755); err != nil {
			return err
		}
		if err := calc.SavePlots(configuration.PlotDir, sums); err != nil {
			return err
		}
	}
	return nil
}

// processEvents runs the density calculation over the decoded events and
// returns the number of events used.
func processEvents(fileReader *FileReader, calc *density.DensityCalculator, out *writer.Writer) (int, error) {
	histos := density.NewHistos(configuration.DensityAxis)
	nEvents := 0
	// stops the reader and the workers when returning before the end of the
	// file
	done := make(chan struct{})
	defer close(done)
	for event := range startWorkers(fileReader, configuration.NumWorkers, done) {
		// events that failed to decode carry no strip data
		if event.Error && (DiscardErrors || event.Rings[0].Signal == nil) {
			message := fmt.Sprintf("discarding event %d", event.EventID)
			logger.Error(message)
			continue
		}
		histos.Clear()
		if err := calc.Calculate(event, histos, event.LowFlux, event.VertexZ); err != nil {
			return nEvents, fmt.Errorf("error processing event %d: %w", event.EventID, err)
		}
		nEvents++
		if out == nil {
			continue
		}
		if err := out.WriteEvent(event, histos); err != nil {
			return nEvents, err
		}
	}
	return nEvents, nil
}

func writeYODA(calc *density.DensityCalculator, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return &density.ErrOpenFile{Filename: filename, Err: err}
	}
	if err := calc.WriteYODA(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
