package placement

import (
	"context"
	"errors"
	"fmt"

	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/itinerary"
)

// ErrCreatePending is returned when moving an activity whose creation has
// not been confirmed yet.
var ErrCreatePending = errors.New("activity is still being created")

// State is the lifecycle of a write.
type State int

const (
	StatePending State = iota
	StateCommitted
	StateRolledBack
	StateSuperseded
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled-back"
	case StateSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

type writeKind int

const (
	writeMove writeKind = iota
	writeCreate
)

// Write is one optimistic change waiting for persistence.
type Write struct {
	ActivityID string
	Seq        uint64
	Decision   Decision

	o      *Orchestrator
	kind   writeKind
	target *itinerary.Activity
	tempID bool

	// guarded by o.mu
	state   State
	err     error
	stored  *itinerary.Activity
	started bool
	cancel  context.CancelFunc
}

// State returns the current lifecycle state.
func (w *Write) State() State {
	w.o.mu.Lock()
	defer w.o.mu.Unlock()
	return w.state
}

// Err returns the persistence error of a rolled-back write.
func (w *Write) Err() error {
	w.o.mu.Lock()
	defer w.o.mu.Unlock()
	return w.err
}

// Stored returns the activity as persisted, once committed.
func (w *Write) Stored() *itinerary.Activity {
	w.o.mu.Lock()
	defer w.o.mu.Unlock()
	return w.stored.Clone()
}

func (w *Write) cancelLocked() {
	if w.state == StatePending {
		w.state = StateSuperseded
	}
	if w.cancel != nil {
		w.cancel()
	}
}

// beginLocked applies the optimistic update and registers the write,
// superseding whatever was in flight for the activity.
func (o *Orchestrator) beginLocked(kind writeKind, updated *itinerary.Activity, d Decision) *Write {
	id := updated.ID
	if prev, ok := o.inflight[id]; ok {
		prev.cancelLocked()
		o.logger.Debug().Str("activity", id).Uint64("seq", prev.Seq).Msg("write superseded")
	}

	o.seq[id]++
	w := &Write{
		ActivityID: id,
		Seq:        o.seq[id],
		Decision:   d,
		o:          o,
		kind:       kind,
		target:     updated.Clone(),
		state:      StatePending,
	}
	o.local[id] = updated.Clone()
	o.inflight[id] = w

	o.logger.Debug().
		Str("activity", id).
		Uint64("seq", w.Seq).
		Str("date", d.Placement.Date.Format(dateutil.Layout)).
		Str("start", d.Placement.Start).
		Str("end", d.Placement.End).
		Bool("adjusted", d.Adjusted).
		Msg("optimistic placement")
	return w
}

// Persist sends the write to the persister and settles it. It returns nil
// when committed, ErrSuperseded when a newer move replaced it (the local
// state then belongs to the newer write), or the persistence error after
// rolling the activity back to its last confirmed placement.
func (o *Orchestrator) Persist(ctx context.Context, w *Write) error {
	if w == nil {
		return ErrNothingToPersist
	}

	o.mu.Lock()
	switch {
	case w.state == StateSuperseded:
		o.mu.Unlock()
		return ErrSuperseded
	case w.state != StatePending || w.started:
		o.mu.Unlock()
		return ErrAlreadySettled
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.started = true
	target := w.target.Clone()
	o.mu.Unlock()
	defer cancel()

	var (
		stored *itinerary.Activity
		err    error
	)
	switch w.kind {
	case writeCreate:
		if w.tempID {
			target.ID = ""
		}
		err = o.persister.CreateActivity(ctx, target)
		stored = target
	default:
		stored, err = o.persister.SetActivityDateTime(ctx, target.ID, *target.Date, target.Start, target.End)
		if stored == nil {
			stored = target
		}
	}

	return o.settle(w, stored, err)
}

func (o *Orchestrator) settle(w *Write, stored *itinerary.Activity, err error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := w.ActivityID
	if o.inflight[id] == w {
		delete(o.inflight, id)
	}

	if w.state == StateSuperseded || w.Seq != o.seq[id] {
		w.state = StateSuperseded
		// The store may still have applied it; keep that as the rollback
		// point unless a later write already committed.
		if err == nil && w.kind == writeMove && w.Seq > o.committedSeqLocked(id) {
			o.confirmed[id] = stored.Clone()
		}
		o.logger.Debug().Str("activity", id).Uint64("seq", w.Seq).Err(err).Msg("stale write ignored")
		return ErrSuperseded
	}

	if err != nil {
		w.state = StateRolledBack
		w.err = err
		o.rollbackLocked(id)
		o.logger.Warn().Err(err).Str("activity", id).Uint64("seq", w.Seq).Msg("placement rolled back")
		return fmt.Errorf("saving %q: %w", w.target.Name, err)
	}

	w.state = StateCommitted
	w.stored = stored.Clone()
	if stored.ID != id {
		delete(o.local, id)
		delete(o.confirmed, id)
		delete(o.seq, id)
		id = stored.ID
		o.seq[id] = w.Seq
	}
	o.local[id] = stored.Clone()
	o.confirmed[id] = stored.Clone()
	o.committed[id] = w.Seq

	o.logger.Debug().Str("activity", id).Uint64("seq", w.Seq).Msg("placement committed")
	return nil
}

func (o *Orchestrator) committedSeqLocked(id string) uint64 {
	return o.committed[id]
}

// rollbackLocked restores the last confirmed state; a never-confirmed
// activity disappears.
func (o *Orchestrator) rollbackLocked(id string) {
	if c, ok := o.confirmed[id]; ok {
		o.local[id] = c.Clone()
		return
	}
	delete(o.local, id)
}
