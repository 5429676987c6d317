package main

import (
	"encoding/json"
	"fmt"
	"os"

	density "github.com/alice-fmd/density_go/pkg"
)

func LoadConfiguration(filename string) (density.Configuration, error) {
	config := density.DefaultConfiguration()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func printConfiguration(config density.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("YODA out: %s", config.YodaOut), "config")
	logger.Info(fmt.Sprintf("Plot dir: %s", config.PlotDir), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Calibration file: %s", config.CalibrationFile), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Discard: %t", config.Discard), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Parallel: %t", config.Parallel), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Max particles: %d", config.MaxParticles), "config")
	logger.Info(fmt.Sprintf("Method: %v", config.Method), "config")
	logger.Info(fmt.Sprintf("Phi acceptance: %v", config.PhiAcceptance), "config")
	logger.Info(fmt.Sprintf("Eta lumping: %d", config.EtaLumping), "config")
	logger.Info(fmt.Sprintf("Phi lumping: %d", config.PhiLumping), "config")
	logger.Info(fmt.Sprintf("Recalculate eta: %t", config.RecalculateEta), "config")
	logger.Info(fmt.Sprintf("Signal sanity bound: %g", config.SanityBound), "config")
	logger.Info(fmt.Sprintf("Hit threshold: %g", config.HitThreshold), "config")
	logger.Info(fmt.Sprintf("Density axis: %v", config.DensityAxis), "config")
	logger.Info(fmt.Sprintf("Default eta axis: %v", config.DefaultEtaAxis), "config")
	logger.Info(fmt.Sprintf("Cut mode: %v", config.MultCuts.Mode), "config")
	logger.Info(fmt.Sprintf("Max relative error: %g", config.MaxRelError), "config")
	logger.Info(fmt.Sprintf("Least weight: %g", config.LeastWeight), "config")
}
