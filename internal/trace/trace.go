// Package trace records the event stream of a game so it can be checked for
// determinism, saved and replayed later.
package trace

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/magefree/mage-sim/internal/game/rules"
)

// Entry is one recorded event, flattened to plain values.
type Entry struct {
	Index       int
	Type        string
	Turn        int
	Phase       string
	Step        string
	PlayerID    string
	SourceID    string
	TargetID    string
	Amount      int
	Description string
}

// EntryFromEvent flattens an event.
func EntryFromEvent(index int, e rules.Event) Entry {
	return Entry{
		Index:       index,
		Type:        string(e.Type),
		Turn:        e.Turn,
		Phase:       e.Phase.String(),
		Step:        e.Step.String(),
		PlayerID:    e.PlayerID,
		SourceID:    e.SourceID,
		TargetID:    e.TargetID,
		Amount:      e.Amount,
		Description: e.Description,
	}
}

func (e Entry) String() string {
	return fmt.Sprintf("%d|%s|%d|%s|%s|%s|%s|%s|%d|%s",
		e.Index, e.Type, e.Turn, e.Phase, e.Step,
		e.PlayerID, e.SourceID, e.TargetID, e.Amount, e.Description)
}

// Trace is the recorded history of one game.
type Trace struct {
	GameID  string
	Seed    int64
	Entries []Entry
}

// Checksum returns the hex blake2b-256 digest of the seed and entries. The
// game ID is left out, so two games played from the same seed have the same
// checksum.
func (t *Trace) Checksum() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "SEED:%d\n", t.Seed)
	for _, e := range t.Entries {
		buf.WriteString(e.String())
		buf.WriteByte('\n')
	}
	sum := blake2b.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// Recorder collects the events published on a bus.
type Recorder struct {
	gameID string
	seed   int64

	mu      sync.RWMutex
	entries []Entry
	bus     *rules.EventBus
	handle  int
}

// NewRecorder creates a recorder for one game.
func NewRecorder(gameID string, seed int64) *Recorder {
	return &Recorder{gameID: gameID, seed: seed, handle: -1}
}

// Attach subscribes the recorder to every event of bus.
func (r *Recorder) Attach(bus *rules.EventBus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bus = bus
	r.handle = bus.Subscribe(r.Record)
}

// Detach stops recording.
func (r *Recorder) Detach() {
	r.mu.Lock()
	bus, handle := r.bus, r.handle
	r.bus, r.handle = nil, -1
	r.mu.Unlock()
	if bus != nil {
		bus.Unsubscribe(handle)
	}
}

// Record appends an event.
func (r *Recorder) Record(e rules.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, EntryFromEvent(len(r.entries), e))
}

// Size returns the number of recorded entries.
func (r *Recorder) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Trace returns a copy of what has been recorded so far.
func (r *Recorder) Trace() *Trace {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Trace{
		GameID:  r.gameID,
		Seed:    r.seed,
		Entries: append([]Entry(nil), r.entries...),
	}
}
