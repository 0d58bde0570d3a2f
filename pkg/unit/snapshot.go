package unit

import (
	"fmt"
	"io"
	"os"

	"github.com/l3aro/tscfg/pkg/cfg"
	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotVersion is bumped whenever the encoded layout changes.
const SnapshotVersion = 1

// FileSummary holds the function summaries of one source file.
type FileSummary struct {
	Path      string     `msgpack:"path"`
	Functions []cfg.Info `msgpack:"functions"`
}

// Snapshot is the persisted form of a stats run.
type Snapshot struct {
	Version int           `msgpack:"version"`
	Files   []FileSummary `msgpack:"files"`
}

// NewSnapshot collects the summaries of every successfully loaded result.
func NewSnapshot(results []Result) *Snapshot {
	s := &Snapshot{Version: SnapshotVersion}
	for _, r := range results {
		if r.Err != nil || r.Unit == nil {
			continue
		}
		s.Files = append(s.Files, FileSummary{Path: r.Path, Functions: r.Unit.Infos()})
	}
	return s
}

// Encode writes s to w using msgpack.
func (s *Snapshot) Encode(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(s)
}

// DecodeSnapshot reads a snapshot written by Encode.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	return &s, nil
}

// WriteSnapshot saves s to path.
func WriteSnapshot(path string, s *Snapshot) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := s.Encode(file); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot loads a snapshot from path.
func ReadSnapshot(path string) (*Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return DecodeSnapshot(file)
}
