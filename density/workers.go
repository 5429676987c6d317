package main

import (
	"errors"
	"fmt"
	"io"
	"sync"

	density "github.com/alice-fmd/density_go/pkg"
)

type WorkerData struct {
	Data   []byte
	Header density.EventHeader
}

// worker decodes event payloads. Malformed events are sent on as events
// with the error flag set.
func worker(id int, jobs <-chan WorkerData, results chan<- *density.Event, done <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	for job := range jobs {
		select {
		case results <- decodeEvent(id, job):
		case <-done:
			return
		}
	}
}

func decodeEvent(id int, job WorkerData) (event *density.Event) {
	defer func() {
		if r := recover(); r != nil {
			errMessage := fmt.Errorf("worker %d recovered from panic on event %d: %v", id, job.Header.EventID, r)
			logger.Error(errMessage.Error())
			event = &density.Event{EventID: job.Header.EventID, RunNumber: job.Header.RunNumber, Error: true}
		}
	}()
	if VerbosityLevel > 2 {
		logger.Info(fmt.Sprintf("Worker %d decoding event %d", id, job.Header.EventID), "worker")
	}
	event, err := density.DecodeEvent(job.Header, job.Data)
	if err != nil {
		logger.Error(err.Error())
		return &density.Event{EventID: job.Header.EventID, RunNumber: job.Header.RunNumber, Error: true}
	}
	return event
}

func sendEventsToWorkers(fileReader *FileReader, jobs chan<- WorkerData, done <-chan struct{}) {
	defer close(jobs)
	for {
		header, eventData, err := fileReader.getNextEvent()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				message := fmt.Errorf("error reading event: %w", err)
				logger.Error(message.Error())
			}
			return
		}
		select {
		case jobs <- WorkerData{Data: eventData, Header: header}:
		case <-done:
			return
		}
	}
}

// startWorkers decodes the events of the file with nWorkers goroutines.
// The returned channel is closed once every event was decoded, or after done
// is closed and the workers stopped.
func startWorkers(fileReader *FileReader, nWorkers int, done <-chan struct{}) <-chan *density.Event {
	jobs := make(chan WorkerData, 100)
	results := make(chan *density.Event, 100)

	var wg sync.WaitGroup
	for w := 1; w <= max(1, nWorkers); w++ {
		wg.Add(1)
		go worker(w, jobs, results, done, &wg)
	}
	go sendEventsToWorkers(fileReader, jobs, done)
	go func() {
		wg.Wait()
		close(results)
	}()
	return results
}
