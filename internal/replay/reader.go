package replay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/parquet-go/parquet-go"

	"github.com/vovakirdan/snake-arena/internal/controller"
	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/protocol"
	"github.com/vovakirdan/snake-arena/internal/world"
)

// Replay is a recording loaded into memory.
type Replay struct {
	RunID  string
	Schema string
	Rows   []TickRow
}

// Open reads every row of the recording at path.
func Open(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("replay: open parquet: %w", err)
	}

	rep := &Replay{}
	rep.Schema, _ = pf.Lookup("schema")
	rep.RunID, _ = pf.Lookup("run_id")

	reader := parquet.NewGenericReader[TickRow](pf)
	defer reader.Close()

	rows := make([]TickRow, reader.NumRows())
	read := 0
	for read < len(rows) {
		n, err := reader.Read(rows[read:])
		read += n
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("replay: read rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	rep.Rows = rows[:read]

	sort.SliceStable(rep.Rows, func(i, j int) bool {
		return rep.Rows[i].Tick < rep.Rows[j].Tick
	})
	return rep, nil
}

// Len returns the number of recorded ticks.
func (r *Replay) Len() int { return len(r.Rows) }

// Find returns the row for tick.
func (r *Replay) Find(tick uint64) (TickRow, bool) {
	i := sort.Search(len(r.Rows), func(i int) bool {
		return r.Rows[i].Tick >= int64(tick)
	})
	if i < len(r.Rows) && r.Rows[i].Tick == int64(tick) {
		return r.Rows[i], true
	}
	return TickRow{}, false
}

// Snapshot decodes the row's MAP text back into a snapshot.
func (row TickRow) Snapshot() (*world.WorldSnapshot, error) {
	snap, err := protocol.DecodeMap(row.Map)
	if err != nil {
		return nil, err
	}
	snap.Tick = uint64(row.Tick)
	return snap, nil
}

// Decisions returns the recorded commands.
func (row TickRow) Decisions() ([]controller.Decision, error) {
	if len(row.DecisionPlayers) != len(row.DecisionActions) {
		return nil, fmt.Errorf("replay: tick %d: %d players but %d actions",
			row.Tick, len(row.DecisionPlayers), len(row.DecisionActions))
	}
	out := make([]controller.Decision, len(row.DecisionPlayers))
	for i, id := range row.DecisionPlayers {
		cmd, err := protocol.ParseAction(row.DecisionActions[i])
		if err != nil {
			return nil, fmt.Errorf("replay: tick %d: %w", row.Tick, err)
		}
		out[i] = controller.Decision{Player: core.PlayerID(id), Command: cmd}
	}
	return out, nil
}

// Summary aggregates a recording.
type Summary struct {
	Ticks       int
	FirstTick   int64
	LastTick    int64
	MaxSnakes   int
	MaxSegments int
	MaxFoods    int
	Actions     map[string]int
}

// Summarize computes totals over all rows.
func (r *Replay) Summarize() Summary {
	s := Summary{Ticks: len(r.Rows), Actions: make(map[string]int)}
	for i, row := range r.Rows {
		if i == 0 {
			s.FirstTick = row.Tick
		}
		s.LastTick = row.Tick
		s.MaxSnakes = max(s.MaxSnakes, int(row.Snakes))
		s.MaxSegments = max(s.MaxSegments, int(row.Segments))
		s.MaxFoods = max(s.MaxFoods, int(row.Foods))
		for _, a := range row.DecisionActions {
			s.Actions[a]++
		}
	}
	return s
}
