package main

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	density "github.com/alice-fmd/density_go/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, nEvents int) *os.File {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "events.bin")
	out, err := os.Create(filename)
	require.NoError(t, err)
	for i := 1; i <= nEvents; i++ {
		ev := density.NewEvent()
		ev.RunNumber = 295585
		ev.EventID = uint32(i)
		ev.SetSignal(density.Rings[0], 0, i, 1)
		require.NoError(t, density.WriteEvent(out, ev))
	}
	require.NoError(t, out.Close())

	file, err := os.Open(filename)
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })
	return file
}

func TestCountEvents(t *testing.T) {
	file := writeTestFile(t, 4)
	n, run, err := countEvents(file)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 295585, run)

	// the file is rewound
	header, _, err := density.ReadEventFromFile(file)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), header.EventID)
}

func TestWorkersSkipAndMax(t *testing.T) {
	configuration = density.DefaultConfiguration()
	configuration.Skip = 1
	configuration.MaxEvents = 3
	t.Cleanup(func() { configuration = density.DefaultConfiguration() })

	file := writeTestFile(t, 6)
	var ids []int
	for ev := range startWorkers(NewFileReader(file), 3, nil) {
		require.False(t, ev.Error)
		ids = append(ids, int(ev.EventID))
	}
	sort.Ints(ids)
	assert.Equal(t, []int{2, 3, 4}, ids)
}

func TestDecodeBadEvent(t *testing.T) {
	header := density.EventHeader{Magic: density.EventMagic, EventID: 9, RunNumber: 1}
	ev := decodeEvent(1, WorkerData{Header: header, Data: []byte{1, 2, 3}})
	assert.True(t, ev.Error)
	assert.Equal(t, uint32(9), ev.EventID)
	assert.Nil(t, ev.Rings[0].Signal)
}

func TestWorkersStopWhenDone(t *testing.T) {
	configuration = density.DefaultConfiguration()
	t.Cleanup(func() { configuration = density.DefaultConfiguration() })

	const nEvents = 500
	file := writeTestFile(t, nEvents)
	done := make(chan struct{})
	results := startWorkers(NewFileReader(file), 2, done)
	<-results
	close(done)

	received := 1
	timeout := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-results:
			if !ok {
				assert.Less(t, received, nEvents)
				return
			}
			received++
		case <-timeout:
			t.Fatal("workers did not stop")
		}
	}
}
