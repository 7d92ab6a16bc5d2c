// Package placement coordinates drag-and-drop style moves of activities:
// live conflict previews while hovering, slot resolution on drop, an
// optimistic local update, and commit or rollback once persistence answers.
package placement

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/javiermolinar/wayfare/internal/conflict"
	"github.com/javiermolinar/wayfare/internal/dateutil"
	"github.com/javiermolinar/wayfare/internal/duration"
	"github.com/javiermolinar/wayfare/internal/itinerary"
	"github.com/javiermolinar/wayfare/internal/resolver"
	"github.com/javiermolinar/wayfare/internal/timegrid"
)

// Orchestrator errors.
var (
	ErrNoValidSlot      = errors.New("no valid slot available")
	ErrUnknownActivity  = errors.New("activity not loaded")
	ErrSuperseded       = errors.New("write superseded by a newer move")
	ErrAlreadySettled   = errors.New("write already settled")
	ErrDuplicateID      = errors.New("activity already loaded")
	ErrNothingToPersist = errors.New("nothing to persist")
	ErrWritePending     = errors.New("activity has a write in flight")
)

// Persister stores placements. Implementations own timeouts and retries.
type Persister interface {
	// SetActivityDateTime moves an existing activity and returns the stored copy.
	SetActivityDateTime(ctx context.Context, id string, date time.Time, start, end string) (*itinerary.Activity, error)

	// CreateActivity inserts a new activity, assigning its ID when empty.
	CreateActivity(ctx context.Context, a *itinerary.Activity) error
}

// Options configures an Orchestrator.
type Options struct {
	Grid                *timegrid.Config
	BusinessHours       *conflict.BusinessHours
	TravelBufferMinutes int
	Logger              *zerolog.Logger
}

// Target is where the user wants an activity to go.
type Target struct {
	ActivityID string
	Date       time.Time
	Start      string
}

// Preview is the live feedback shown while hovering over a slot.
type Preview struct {
	// Placement is the hovered slot. End is empty when the activity would
	// run past midnight.
	Placement itinerary.Placement
	Conflicts []conflict.Conflict
	// Blocking means a drop here will not keep this slot.
	Blocking bool
	// OutOfRange is set when the activity does not fit between the hovered
	// start and the end of the day or grid.
	OutOfRange bool
}

// Decision is the outcome of a drop.
type Decision struct {
	Requested itinerary.Placement
	Placement itinerary.Placement
	// Adjusted is set when the resolver moved the activity away from the
	// requested slot; the UI shows a one-time notice.
	Adjusted bool
	// OutOfRange is set when the requested slot did not fit inside the day
	// or grid. Requested.End is empty when it would run past midnight.
	OutOfRange bool
	// Warnings are non-blocking conflicts at the final placement.
	Warnings []conflict.Conflict
	// Estimated is set when the duration came from the estimator.
	Estimated *duration.Estimate
}

// Orchestrator owns the local, optimistic view of the itinerary.
type Orchestrator struct {
	persister Persister
	opts      Options
	logger    zerolog.Logger

	mu        sync.Mutex
	local     map[string]*itinerary.Activity // what the UI shows
	confirmed map[string]*itinerary.Activity // last state persistence agreed to
	seq       map[string]uint64
	committed map[string]uint64 // seq of the last committed write
	inflight  map[string]*Write
	tempSeq   int
}

// New creates an Orchestrator.
func New(p Persister, opts Options) *Orchestrator {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "placement").Logger()
	}
	return &Orchestrator{
		persister: p,
		opts:      opts,
		logger:    logger,
		local:     make(map[string]*itinerary.Activity),
		confirmed: make(map[string]*itinerary.Activity),
		seq:       make(map[string]uint64),
		committed: make(map[string]uint64),
		inflight:  make(map[string]*Write),
	}
}

// Load replaces the local view with activities read from storage.
// Pending writes are cancelled.
func (o *Orchestrator) Load(activities []*itinerary.Activity) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for id, w := range o.inflight {
		w.cancelLocked()
		delete(o.inflight, id)
		o.seq[id]++
	}
	o.local = make(map[string]*itinerary.Activity, len(activities))
	o.confirmed = make(map[string]*itinerary.Activity, len(activities))
	o.committed = make(map[string]uint64)
	for _, a := range activities {
		o.local[a.ID] = a.Clone()
		o.confirmed[a.ID] = a.Clone()
	}
}

// Track records an activity that was stored outside the orchestrator, such
// as a new wishlist item or one moved back to the wishlist. It fails with
// ErrWritePending while a placement for the same activity is in flight.
func (o *Orchestrator) Track(a *itinerary.Activity) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.inflight[a.ID]; ok {
		return fmt.Errorf("%w: %s", ErrWritePending, a.Name)
	}
	o.local[a.ID] = a.Clone()
	o.confirmed[a.ID] = a.Clone()
	return nil
}

// Forget drops a deleted activity, cancelling any write in flight for it.
func (o *Orchestrator) Forget(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if w, ok := o.inflight[id]; ok {
		w.cancelLocked()
		delete(o.inflight, id)
		o.seq[id]++
	}
	delete(o.local, id)
	delete(o.confirmed, id)
	delete(o.committed, id)
}

// Activity returns a copy of the locally visible activity.
func (o *Orchestrator) Activity(id string) (*itinerary.Activity, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	a, ok := o.local[id]
	return a.Clone(), ok
}

// Activities returns copies of all visible activities, scheduled first in
// date and start order, then the wishlist by name.
func (o *Orchestrator) Activities() []*itinerary.Activity {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]*itinerary.Activity, 0, len(o.local))
	for _, a := range o.local {
		out = append(out, a.Clone())
	}
	slices.SortFunc(out, compareActivities)
	return out
}

// Day returns the visible activities scheduled on date.
func (o *Orchestrator) Day(date time.Time) []*itinerary.Activity {
	var out []*itinerary.Activity
	for _, a := range o.Activities() {
		if a.IsScheduled() && dateutil.SameDay(*a.Date, date) {
			out = append(out, a)
		}
	}
	return out
}

// Wishlist returns the visible unscheduled activities.
func (o *Orchestrator) Wishlist() []*itinerary.Activity {
	var out []*itinerary.Activity
	for _, a := range o.Activities() {
		if a.IsWishlist() {
			out = append(out, a)
		}
	}
	return out
}

// Pending reports whether a write for the activity is in flight.
func (o *Orchestrator) Pending(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.inflight[id]
	return ok
}

// Preview evaluates a hover target without resolving or changing anything.
func (o *Orchestrator) Preview(t Target) (Preview, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	a, ok := o.local[t.ActivityID]
	if !ok {
		return Preview{}, fmt.Errorf("%w: %s", ErrUnknownActivity, t.ActivityID)
	}

	minutes, _ := o.durationLocked(a, t)
	start, err := timegrid.TimeToMinutes(t.Start)
	if err != nil {
		return Preview{}, err
	}
	pv := Preview{
		Placement: itinerary.Placement{
			ID:      a.ID,
			PlaceID: a.PlaceID,
			Date:    dateutil.TruncateToDay(t.Date),
			Start:   timegrid.MinutesToTime(start),
		},
		OutOfRange: !o.fits(start, minutes),
	}
	if end, err := timegrid.EndTime(start + minutes); err == nil {
		pv.Placement.End = end
		conflicts, err := conflict.Detect(pv.Placement, o.placementsLocked(), o.detectOptions(a.ID))
		if err != nil {
			return Preview{}, err
		}
		pv.Conflicts = conflicts
		pv.Blocking = conflict.Blocking(conflicts)
	}
	if pv.OutOfRange {
		pv.Blocking = true
	}
	return pv, nil
}

// fits reports whether [start, start+minutes) lies inside the grid, or the
// whole day when there is no grid.
func (o *Orchestrator) fits(start, minutes int) bool {
	lo, hi := 0, timegrid.MinutesPerDay
	if o.opts.Grid != nil {
		lo, hi = o.opts.Grid.Bounds()
	}
	return start >= lo && start+minutes <= hi
}

// Drop resolves the target to a free slot, applies it locally and returns
// the write that must be handed to Persist. A newer drop for the same
// activity supersedes and cancels any earlier write. When no slot is free
// Drop returns ErrNoValidSlot and leaves the state unchanged.
func (o *Orchestrator) Drop(t Target) (*Write, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	a, ok := o.local[t.ActivityID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownActivity, t.ActivityID)
	}
	if w, ok := o.inflight[a.ID]; ok && w.kind == writeCreate {
		return nil, fmt.Errorf("%w: %s", ErrCreatePending, a.Name)
	}

	decision, err := o.decideLocked(a, t)
	if err != nil {
		return nil, err
	}

	updated := a.Clone()
	if err := updated.Schedule(decision.Placement.Date, decision.Placement.Start, decision.Placement.End); err != nil {
		return nil, err
	}
	return o.beginLocked(writeMove, updated, decision), nil
}

// Add places a brand new activity, resolving its slot like Drop.
// The activity must not be loaded yet; an empty ID is replaced by a
// temporary local key until persistence assigns the real one.
func (o *Orchestrator) Add(a *itinerary.Activity, date time.Time, start string) (*Write, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	a = a.Clone()
	tempID := a.ID == ""
	if tempID {
		o.tempSeq++
		a.ID = fmt.Sprintf("local-%d", o.tempSeq)
	}
	if _, exists := o.local[a.ID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, a.ID)
	}

	decision, err := o.decideLocked(a, Target{ActivityID: a.ID, Date: date, Start: start})
	if err != nil {
		return nil, err
	}
	if err := a.Schedule(decision.Placement.Date, decision.Placement.Start, decision.Placement.End); err != nil {
		return nil, err
	}
	w := o.beginLocked(writeCreate, a, decision)
	w.tempID = tempID
	return w, nil
}

// decideLocked runs the resolver for a target and builds the decision.
func (o *Orchestrator) decideLocked(a *itinerary.Activity, t Target) (Decision, error) {
	minutes, est := o.durationLocked(a, t)
	date := dateutil.TruncateToDay(t.Date)
	existing := o.placementsLocked()

	slot, err := resolver.FindNearestValidSlot(t.Start, minutes, date, existing, resolver.Options{
		ExcludeID: a.ID,
		Grid:      o.opts.Grid,
	})
	if err != nil {
		return Decision{}, err
	}
	if slot == nil {
		o.logger.Debug().
			Str("activity", a.ID).
			Str("date", date.Format(dateutil.Layout)).
			Str("start", t.Start).
			Int("minutes", minutes).
			Msg("no valid slot")
		return Decision{}, fmt.Errorf("%w for %q on %s", ErrNoValidSlot, a.Name, date.Format(dateutil.Layout))
	}

	start, err := timegrid.TimeToMinutes(t.Start)
	if err != nil {
		return Decision{}, err
	}
	d := Decision{
		Requested:  itinerary.Placement{ID: a.ID, PlaceID: a.PlaceID, Date: date, Start: t.Start},
		Placement:  itinerary.Placement{ID: a.ID, PlaceID: a.PlaceID, Date: date, Start: slot.Start, End: slot.End},
		Adjusted:   slot.Adjusted(),
		OutOfRange: !o.fits(start, minutes),
		Estimated:  est,
	}
	if end, err := timegrid.AddMinutes(t.Start, minutes); err == nil {
		d.Requested.End = end
	}

	conflicts, err := conflict.Detect(d.Placement, existing, o.detectOptions(a.ID))
	if err != nil {
		return Decision{}, err
	}
	d.Warnings = conflict.Warnings(conflicts)
	return d, nil
}

// durationLocked picks the length to place: the current scheduled length,
// the remembered length of a wishlist item, or an estimate.
func (o *Orchestrator) durationLocked(a *itinerary.Activity, t Target) (int, *duration.Estimate) {
	if m := a.Duration(); m > 0 {
		return m, nil
	}
	est := duration.EstimateDuration(duration.Place{
		Name:             a.Name,
		Types:            a.Types,
		Rating:           a.Rating,
		UserRatingsTotal: a.UserRatingsTotal,
	}, duration.Context{
		TimeOfDay: t.Start,
		IsWeekend: dateutil.IsWeekend(t.Date),
	})
	return est.Minutes, &est
}

func (o *Orchestrator) placementsLocked() []itinerary.Placement {
	out := make([]itinerary.Placement, 0, len(o.local))
	for _, a := range o.local {
		if p, ok := a.Placement(); ok {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(x, y itinerary.Placement) int {
		if c := x.Date.Compare(y.Date); c != 0 {
			return c
		}
		if c := strings.Compare(x.Start, y.Start); c != 0 {
			return c
		}
		return strings.Compare(x.ID, y.ID)
	})
	return out
}

func (o *Orchestrator) detectOptions(excludeID string) conflict.Options {
	return conflict.Options{
		BusinessHours:       o.opts.BusinessHours,
		TravelBufferMinutes: o.opts.TravelBufferMinutes,
		ExcludeID:           excludeID,
	}
}

func compareActivities(x, y *itinerary.Activity) int {
	switch {
	case x.IsScheduled() && !y.IsScheduled():
		return -1
	case !x.IsScheduled() && y.IsScheduled():
		return 1
	case x.IsScheduled():
		if c := x.Date.Compare(*y.Date); c != 0 {
			return c
		}
		if c := strings.Compare(x.Start, y.Start); c != 0 {
			return c
		}
	default:
		if c := strings.Compare(x.Name, y.Name); c != 0 {
			return c
		}
	}
	return strings.Compare(x.ID, y.ID)
}
