package trace

import (
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	fileVersion   = 1
	fileExtension = ".trace"
)

// ErrChecksumMismatch is returned when a loaded trace does not match the
// checksum stored with it.
var ErrChecksumMismatch = errors.New("trace checksum mismatch")

type fileHeader struct {
	GameID     string
	Seed       int64
	Version    int
	RecordedAt time.Time
	EntryCount int
	Checksum   string
}

// FileName returns the file name a trace is saved under.
func FileName(gameID string) string {
	return gameID + fileExtension
}

// SaveToFile writes the trace as a gzipped gob stream into directory and
// returns the file path.
func (t *Trace) SaveToFile(directory string) (path string, err error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return "", fmt.Errorf("create trace directory: %w", err)
	}
	path = filepath.Join(directory, FileName(t.GameID))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create trace file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close trace file: %w", cerr)
		}
	}()

	zw := gzip.NewWriter(file)
	encoder := gob.NewEncoder(zw)
	header := fileHeader{
		GameID:     t.GameID,
		Seed:       t.Seed,
		Version:    fileVersion,
		RecordedAt: time.Now().UTC(),
		EntryCount: len(t.Entries),
		Checksum:   t.Checksum(),
	}
	if err := encoder.Encode(&header); err != nil {
		return "", fmt.Errorf("encode trace header: %w", err)
	}
	for i := range t.Entries {
		if err := encoder.Encode(&t.Entries[i]); err != nil {
			return "", fmt.Errorf("encode trace entry %d: %w", i, err)
		}
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("flush trace file: %w", err)
	}
	return path, nil
}

// LoadFromFile reads a trace written by SaveToFile and verifies its
// checksum.
func LoadFromFile(path string) (*Trace, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("read trace file: %w", err)
	}
	defer zr.Close()

	decoder := gob.NewDecoder(zr)
	var header fileHeader
	if err := decoder.Decode(&header); err != nil {
		return nil, fmt.Errorf("decode trace header: %w", err)
	}
	if header.Version != fileVersion {
		return nil, fmt.Errorf("unsupported trace version: %d", header.Version)
	}

	t := &Trace{
		GameID:  header.GameID,
		Seed:    header.Seed,
		Entries: make([]Entry, header.EntryCount),
	}
	for i := range t.Entries {
		if err := decoder.Decode(&t.Entries[i]); err != nil {
			return nil, fmt.Errorf("decode trace entry %d: %w", i, err)
		}
	}
	if got := t.Checksum(); got != header.Checksum {
		return nil, fmt.Errorf("%w: stored %s, computed %s", ErrChecksumMismatch, header.Checksum, got)
	}
	return t, nil
}
