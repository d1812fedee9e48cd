package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"finpanel/internal/adapters"
	"finpanel/internal/analytics"
	"finpanel/internal/cache"
	"finpanel/internal/core"
	"finpanel/internal/ledger"
	"finpanel/internal/log"
	"finpanel/internal/storage"
)

// SnapshotStore persists the last good copy of each source.
type SnapshotStore interface {
	adapters.SnapshotReader
	SaveTransactions(ctx context.Context, source string, recs []core.TransactionRecord, at time.Time) error
	SaveInvestments(ctx context.Context, source string, recs []core.InvestmentRecord, at time.Time) error
	SaveGoals(ctx context.Context, source string, goals []core.SavingsGoal, at time.Time) error
	SourceState(ctx context.Context, source string) (storage.SourceState, error)
}

// DashboardServiceConfig holds configuration for the dashboard service
type DashboardServiceConfig struct {
	// Window is the monthly rollup length (default: analytics.DefaultWindow)
	Window int
	// CacheSize bounds the number of memoized dashboards (default: 128)
	CacheSize int
	// CacheTTL expires memoized dashboards; zero keeps them until evicted
	CacheTTL time.Duration
	// Location is the calendar used for "today" (default: time.Local)
	Location *time.Location
	// Clock replaces time.Now for fetch timestamps
	Clock func() time.Time
}

// DashboardView is a computed dashboard plus the state of its sources.
type DashboardView struct {
	analytics.Dashboard
	Sources []ledger.SourceStatus `json:"sources"`
}

// DashboardService fetches the ledger, keeps the latest snapshot and serves
// memoized dashboards computed from it.
type DashboardService struct {
	source ledger.Source
	store  SnapshotStore
	config DashboardServiceConfig
	cache  *cache.LRUCache[analytics.Dashboard]
	logger *log.Logger

	mu          sync.Mutex
	current     ledger.Result
	fingerprint uint64
	loaded      bool
}

// NewDashboardService creates a dashboard service. store may be nil, in which
// case failed sources are reported as unavailable with no fallback.
func NewDashboardService(source ledger.Source, store SnapshotStore, config DashboardServiceConfig, logger *log.Logger) *DashboardService {
	if config.Window <= 0 {
		config.Window = analytics.DefaultWindow
	}
	if config.CacheSize <= 0 {
		config.CacheSize = 128
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if logger == nil {
		logger = log.Discard()
	}

	return &DashboardService{
		source: source,
		store:  store,
		config: config,
		cache:  cache.NewLRUCache[analytics.Dashboard](config.CacheSize, config.CacheTTL, cache.WithClock(config.Clock)),
		logger: logger.WithComponent(log.ComponentDashboard),
	}
}

// Cache exposes the dashboard memo so it can be registered for cleanup.
func (s *DashboardService) Cache() *cache.LRUCache[analytics.Dashboard] { return s.cache }

// Window returns the configured rollup length.
func (s *DashboardService) Window() int { return s.config.Window }

// Location returns the calendar used for "today".
func (s *DashboardService) Location() *time.Location { return s.config.Location }

// Refresh fetches every source. Fresh collections are saved to the store;
// failed ones are replaced by their stored copy and marked stale. It returns
// an error only when no source produced any data.
func (s *DashboardService) Refresh(ctx context.Context) (ledger.Result, error) {
	res, _, err := s.refresh(ctx)
	return res, err
}

func (s *DashboardService) refresh(ctx context.Context) (ledger.Result, uint64, error) {
	res := ledger.Fetch(ctx, s.source, s.config.Clock)
	sl := log.NewStructuredLogger(s.logger)

	for i := range res.Sources {
		st := &res.Sources[i]
		if st.OK {
			if err := s.persist(ctx, res.Snapshot, *st); err != nil {
				s.logger.WarnContext(ctx, "Failed to save snapshot",
					log.FieldSource, st.Name,
					log.FieldOperation, log.OpSave,
					log.FieldError, err)
			}
		} else if err := s.fallback(ctx, &res.Snapshot, st); err != nil {
			s.logger.DebugContext(ctx, "No stored copy for failed source",
				log.FieldSource, st.Name,
				log.FieldOperation, log.OpFallback,
				log.FieldError, err)
		}
		sl.LogSourceFetched(ctx, st.Name, st.Records, st.Stale, st.Error())
	}

	fp, err := Fingerprint(res.Snapshot)
	if err != nil {
		return res, 0, fmt.Errorf("fingerprint snapshot: %w", err)
	}

	s.mu.Lock()
	s.current = res
	s.fingerprint = fp
	s.loaded = true
	s.mu.Unlock()

	if failed := res.Failed(); len(failed) == len(res.Sources) {
		return res, fp, fmt.Errorf("%w: all sources failed", ledger.ErrSourceUnavailable)
	}
	return res, fp, nil
}

func (s *DashboardService) persist(ctx context.Context, snap core.Snapshot, st ledger.SourceStatus) error {
	if s.store == nil {
		return nil
	}
	switch st.Name {
	case ledger.SourceBills:
		return s.store.SaveTransactions(ctx, st.Name, snap.Bills, st.FetchedAt)
	case ledger.SourceFinances:
		return s.store.SaveTransactions(ctx, st.Name, snap.Finances, st.FetchedAt)
	case ledger.SourceInvestments:
		return s.store.SaveInvestments(ctx, st.Name, snap.Investments, st.FetchedAt)
	case ledger.SourceGoals:
		return s.store.SaveGoals(ctx, st.Name, snap.Goals, st.FetchedAt)
	}
	return fmt.Errorf("unknown source %q", st.Name)
}

func (s *DashboardService) fallback(ctx context.Context, snap *core.Snapshot, st *ledger.SourceStatus) error {
	if s.store == nil {
		return errors.New("no snapshot store")
	}

	var (
		n   int
		err error
	)
	switch st.Name {
	case ledger.SourceBills:
		snap.Bills, err = s.store.LoadTransactions(ctx, st.Name)
		n = len(snap.Bills)
	case ledger.SourceFinances:
		snap.Finances, err = s.store.LoadTransactions(ctx, st.Name)
		n = len(snap.Finances)
	case ledger.SourceInvestments:
		snap.Investments, err = s.store.LoadInvestments(ctx, st.Name)
		n = len(snap.Investments)
	case ledger.SourceGoals:
		snap.Goals, err = s.store.LoadGoals(ctx, st.Name)
		n = len(snap.Goals)
	default:
		err = fmt.Errorf("unknown source %q", st.Name)
	}
	if err != nil {
		return err
	}

	state, err := s.store.SourceState(ctx, st.Name)
	if err == nil {
		st.FetchedAt = state.FetchedAt
	}
	st.OK = true
	st.Stale = true
	st.Records = n
	return nil
}

// Snapshot returns the latest fetch result, refreshing first when nothing
// has been loaded yet or the service was invalidated.
func (s *DashboardService) Snapshot(ctx context.Context) (ledger.Result, error) {
	res, _, err := s.latest(ctx)
	return res, err
}

// latest returns the current result together with its fingerprint.
func (s *DashboardService) latest(ctx context.Context) (ledger.Result, uint64, error) {
	s.mu.Lock()
	if s.loaded {
		res, fp := s.current, s.fingerprint
		s.mu.Unlock()
		return res, fp, nil
	}
	s.mu.Unlock()
	return s.refresh(ctx)
}

// Dashboard returns the dashboard for the current snapshot at now. Results
// are memoized per snapshot and minute.
func (s *DashboardService) Dashboard(ctx context.Context, now time.Time) (DashboardView, error) {
	res, fp, err := s.latest(ctx)
	if err != nil && !errors.Is(err, ledger.ErrSourceUnavailable) {
		return DashboardView{}, err
	}

	now = now.In(s.config.Location)
	key := fmt.Sprintf("%016x:%d:%s", fp, s.config.Window, now.Truncate(time.Minute).Format(time.RFC3339))

	d, hit, err := s.cache.GetOrCompute(key, func() (analytics.Dashboard, error) {
		return analytics.BuildDashboard(res.Snapshot, now, analytics.Options{
			Window:      s.config.Window,
			Unavailable: res.Failed(),
		}), nil
	})
	if err != nil {
		return DashboardView{}, err
	}

	s.logger.DebugContext(ctx, "Dashboard computed",
		log.FieldOperation, log.OpCompute,
		log.FieldFingerprint, fmt.Sprintf("%016x", fp),
		log.FieldCacheHit, hit,
		log.FieldPeriod, d.Period)

	return DashboardView{Dashboard: d, Sources: res.Sources}, nil
}

// Invalidate drops memoized dashboards and forces the next Snapshot to
// refetch.
func (s *DashboardService) Invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.mu.Unlock()
	s.cache.Purge()
}

// Fingerprint hashes the JSON form of a snapshot.
func Fingerprint(snap core.Snapshot) (uint64, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}
