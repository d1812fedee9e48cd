package ledger

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"finpanel/internal/core"
)

// SourceStatus reports the outcome of reading one collection.
type SourceStatus struct {
	Name      string    `json:"name"`
	OK        bool      `json:"ok"`
	Err       string    `json:"error,omitempty"`
	Records   int       `json:"records"`
	FetchedAt time.Time `json:"fetched_at"`
	// Stale is set when the data was served from a stored copy.
	Stale bool `json:"stale,omitempty"`

	err error
}

// Error returns the underlying fetch error, if any.
func (s SourceStatus) Error() error { return s.err }

// Result is the outcome of a Fetch. Collections of failed sources are empty.
type Result struct {
	Snapshot core.Snapshot
	Sources  []SourceStatus
}

// Status returns the status for the named source.
func (r Result) Status(name string) (SourceStatus, bool) {
	for _, s := range r.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return SourceStatus{}, false
}

// Failed lists the names of sources that could not be read.
func (r Result) Failed() []string {
	var out []string
	for _, s := range r.Sources {
		if !s.OK {
			out = append(out, s.Name)
		}
	}
	return out
}

// Fetch reads every collection of src concurrently. A failing read never
// cancels or blocks the others; its error is reported in the matching
// SourceStatus and its collection is left empty.
func Fetch(ctx context.Context, src Source, clock func() time.Time) Result {
	if clock == nil {
		clock = time.Now
	}

	var (
		snap     core.Snapshot
		statuses = make([]SourceStatus, len(SourceNames))
		g        errgroup.Group
	)

	record := func(i int, name string, n int, err error) {
		st := SourceStatus{Name: name, OK: err == nil, Records: n, FetchedAt: clock(), err: err}
		if err != nil {
			st.Records = 0
			st.Err = err.Error()
		}
		statuses[i] = st
	}

	g.Go(func() error {
		recs, err := src.ListBills(ctx)
		if err == nil {
			snap.Bills = recs
		}
		record(0, SourceBills, len(recs), err)
		return nil
	})
	g.Go(func() error {
		recs, err := src.ListFinances(ctx)
		if err == nil {
			snap.Finances = recs
		}
		record(1, SourceFinances, len(recs), err)
		return nil
	})
	g.Go(func() error {
		recs, err := src.ListInvestments(ctx)
		if err == nil {
			snap.Investments = recs
		}
		record(2, SourceInvestments, len(recs), err)
		return nil
	})
	g.Go(func() error {
		recs, err := src.ListGoals(ctx)
		if err == nil {
			snap.Goals = recs
		}
		record(3, SourceGoals, len(recs), err)
		return nil
	})
	_ = g.Wait()

	return Result{Snapshot: snap, Sources: statuses}
}
