// Package replay records a match tick by tick into a Parquet file and reads
// it back.
package replay

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/vovakirdan/snake-arena/internal/controller"
	"github.com/vovakirdan/snake-arena/internal/protocol"
	"github.com/vovakirdan/snake-arena/internal/world"
)

// SchemaVersion is stored in the file's key/value metadata.
const SchemaVersion = "arena_tick_v1"

// ErrClosed is returned by Record after Close.
var ErrClosed = errors.New("replay: recorder is closed")

// TickRow is one recorded tick.
//
// Map holds the exact MAP update text the controllers received for the tick.
// DecisionPlayers and DecisionActions are parallel lists of the commands
// applied after it, in player order.
type TickRow struct {
	RunID           string   `parquet:"run_id,dict"`
	Tick            int64    `parquet:"tick"`
	Map             string   `parquet:"map,zstd"`
	DecisionPlayers []int32  `parquet:"decision_players"`
	DecisionActions []string `parquet:"decision_actions"`
	Snakes          int32    `parquet:"snakes"`
	Segments        int32    `parquet:"segments"`
	Foods           int32    `parquet:"foods"`
}

// Recorder writes TickRows to <path>.tmp and moves the file into place on
// Close.
type Recorder struct {
	mu sync.Mutex

	runID   string
	tmpPath string
	outPath string

	file   *os.File
	writer *parquet.GenericWriter[TickRow]
	rows   int
}

// NewRecorder opens a recording for runID at path.
func NewRecorder(path, runID string) (*Recorder, error) {
	if path == "" {
		return nil, fmt.Errorf("replay: output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("replay: create output dir: %w", err)
	}

	tmpPath := path + ".tmp"
	_ = os.Remove(tmpPath)

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("replay: open tmp parquet: %w", err)
	}

	w := parquet.NewGenericWriter[TickRow](
		f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
	)
	w.SetKeyValueMetadata("schema", SchemaVersion)
	w.SetKeyValueMetadata("run_id", runID)

	return &Recorder{
		runID:   runID,
		tmpPath: tmpPath,
		outPath: path,
		file:    f,
		writer:  w,
	}, nil
}

func (r *Recorder) Path() string { return r.outPath }

// Rows returns how many ticks were recorded so far.
func (r *Recorder) Rows() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows
}

// Record appends one tick.
func (r *Recorder) Record(snap *world.WorldSnapshot, decisions []controller.Decision) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.writer == nil {
		return ErrClosed
	}

	row := TickRow{
		RunID:           r.runID,
		Tick:            int64(snap.Tick),
		Map:             protocol.MarshalMap(snap),
		DecisionPlayers: make([]int32, len(decisions)),
		DecisionActions: make([]string, len(decisions)),
		Snakes:          int32(len(snap.Snakes)),
		Segments:        int32(snap.SegmentCount()),
		Foods:           int32(len(snap.Foods)),
	}
	for i, d := range decisions {
		row.DecisionPlayers[i] = int32(d.Player)
		row.DecisionActions[i] = protocol.ActionToken(d.Command)
	}

	if _, err := r.writer.Write([]TickRow{row}); err != nil {
		return fmt.Errorf("replay: write row: %w", err)
	}
	r.rows++
	return nil
}

// Close flushes the file and renames it into place. A recording with no
// rows is removed instead.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.writer == nil && r.file == nil {
		return nil
	}

	closeErr := r.writer.Close()
	r.writer = nil
	_ = r.file.Sync()
	fileErr := r.file.Close()
	r.file = nil

	if closeErr != nil {
		return fmt.Errorf("replay: close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		return fmt.Errorf("replay: close parquet file: %w", fileErr)
	}

	if r.rows == 0 {
		_ = os.Remove(r.tmpPath)
		return nil
	}
	if err := os.Rename(r.tmpPath, r.outPath); err != nil {
		return fmt.Errorf("replay: rename parquet: %w", err)
	}
	return nil
}
