package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	density "github.com/alice-fmd/density_go/pkg"
)

type FileReader struct {
	File     *os.File
	EvtCount int
}

func NewFileReader(file *os.File) *FileReader {
	return &FileReader{File: file, EvtCount: -1}
}

func (f *FileReader) getNextEvent() (density.EventHeader, []byte, error) {
	for {
		header, eventData, err := density.ReadEventFromFile(f.File)
		if err != nil {
			return header, nil, err
		}
		f.EvtCount++
		if f.EvtCount >= configuration.Skip+configuration.MaxEvents {
			if VerbosityLevel > 0 {
				logger.Info("Max events reached", "fileReader")
			}
			return header, nil, io.EOF
		}
		if f.EvtCount < configuration.Skip {
			if VerbosityLevel > 0 {
				message := fmt.Sprintf("Skipping event %d with ID %d", f.EvtCount, header.EventID)
				logger.Info(message, "fileReader")
			}
			continue
		}
		if VerbosityLevel > 1 {
			message := fmt.Sprintf("Reading event %d with ID %d", f.EvtCount, header.EventID)
			logger.Info(message, "fileReader")
		}
		return header, eventData, nil
	}
}

// countEvents reads the headers of the file and returns the number of
// events and the run number of the first one. The file is rewound.
func countEvents(file *os.File) (int, int, error) {
	evtCount := 0
	runNumber := 0
	for {
		var header density.EventHeader
		err := binary.Read(file, binary.LittleEndian, &header)
		if errors.Is(err, io.EOF) {
			if VerbosityLevel > 1 {
				logger.Info("End of file", "evtCounter")
			}
			break
		}
		if err != nil {
			return 0, 0, fmt.Errorf("error reading header counting events: %w", err)
		}
		if !density.ValidEvent(header) {
			return 0, 0, &density.ErrBadEvent{EventID: header.EventID, Reason: "bad magic while counting events"}
		}
		if evtCount == 0 {
			runNumber = int(header.RunNumber)
		}
		if VerbosityLevel > 2 {
			message := fmt.Sprintf("Evt id: %d. Run %d", header.EventID, header.RunNumber)
			logger.Info(message, "evtCounter")
		}
		payloadSize := int64(header.Size) - int64(binary.Size(header))
		if _, err := file.Seek(payloadSize, io.SeekCurrent); err != nil {
			return 0, 0, fmt.Errorf("error skipping payload: %w", err)
		}
		evtCount++
	}
	// Go back to the beginning of the file
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return 0, 0, err
	}
	return evtCount, runNumber, nil
}
