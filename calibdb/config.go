package main

import (
	"encoding/json"
	"fmt"
	"os"

	density "github.com/alice-fmd/density_go/pkg"
)

// LoadConfiguration reads the database settings. Without a file the
// defaults are used.
func LoadConfiguration(filename string) (density.Configuration, error) {
	config := density.DefaultConfiguration()
	if filename == "" {
		return config, nil
	}

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

func printConfiguration(config density.Configuration) {
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "module", "config")
	logger.Info(fmt.Sprintf("User: %s", config.User), "module", "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "module", "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "module", "config")
}
