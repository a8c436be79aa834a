package schedule

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-course-client/catalog"
	"github.com/jrsteele09/go-course-client/internal/metrics"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const defaultLookupConcurrency = 4

// Catalog is the part of the catalog client the detector reads.
type Catalog interface {
	GetOffering(ctx context.Context, id catalog.ID) (*catalog.Offering, error)
	ListMyEnrollments(ctx context.Context) ([]catalog.Enrollment, error)
}

// LookupOutcome says where an offering snapshot came from.
type LookupOutcome int

const (
	LookupHit LookupOutcome = iota
	LookupFetched
	// LookupUnavailable means the offering could not be loaded. It contributes
	// no meeting blocks and is not cached.
	LookupUnavailable
)

func (o LookupOutcome) String() string {
	switch o {
	case LookupHit:
		return metrics.LookupHit
	case LookupFetched:
		return metrics.LookupFetched
	default:
		return metrics.LookupUnavailable
	}
}

// Result is the outcome of one conflict check.
type Result struct {
	Conflict bool
	// Candidate is nil when the candidate offering was unavailable.
	Candidate *catalog.Offering
	// With is the enrolled offering that conflicts, and the two blocks are
	// the first overlapping pair found.
	With           *catalog.Offering
	CandidateBlock catalog.MeetingBlock
	EnrolledBlock  catalog.MeetingBlock
	// AlreadyEnrolled is set when the student already holds the candidate.
	AlreadyEnrolled bool
}

// Detector checks candidate offerings against the student's enrollments. Its
// offering cache lives as long as the detector; call Reset to drop it.
type Detector struct {
	catalog     Catalog
	log         zerolog.Logger
	metrics     *metrics.Metrics
	concurrency int

	group singleflight.Group
	mu    sync.RWMutex
	cache map[catalog.ID]*catalog.Offering
}

type DetectorOption func(*Detector)

func WithDetectorLogger(logger zerolog.Logger) DetectorOption {
	return func(d *Detector) {
		d.log = logger.With().Str("component", "conflict_detector").Logger()
	}
}

func WithDetectorMetrics(m *metrics.Metrics) DetectorOption {
	return func(d *Detector) {
		d.metrics = m
	}
}

// WithLookupConcurrency bounds the parallel offering fetches of one check.
func WithLookupConcurrency(n int) DetectorOption {
	return func(d *Detector) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

func NewDetector(c Catalog, options ...DetectorOption) *Detector {
	d := &Detector{
		catalog:     c,
		log:         zerolog.Nop(),
		concurrency: defaultLookupConcurrency,
		cache:       make(map[catalog.ID]*catalog.Offering),
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// Reset drops every cached offering.
func (d *Detector) Reset() {
	d.mu.Lock()
	d.cache = make(map[catalog.ID]*catalog.Offering)
	d.mu.Unlock()
}

// Remember stores an offering snapshot the caller already holds.
func (d *Detector) Remember(o *catalog.Offering) {
	if o == nil || o.ID.Empty() {
		return
	}
	d.mu.Lock()
	d.cache[o.ID] = o
	d.mu.Unlock()
}

// Lookup returns the offering from the cache or fetches it. Concurrent lookups
// of the same id share one fetch. A failed fetch is LookupUnavailable.
func (d *Detector) Lookup(ctx context.Context, id catalog.ID) (*catalog.Offering, LookupOutcome) {
	if id.Empty() {
		return nil, LookupUnavailable
	}

	d.mu.RLock()
	cached, ok := d.cache[id]
	d.mu.RUnlock()
	if ok {
		d.metrics.ObserveLookup(metrics.LookupHit)
		return cached, LookupHit
	}

	v, err, _ := d.group.Do(id.String(), func() (any, error) {
		o, err := d.catalog.GetOffering(ctx, id)
		if err != nil {
			return nil, err
		}
		d.Remember(o)
		return o, nil
	})
	if err != nil {
		d.log.Debug().Err(err).Str("offering_id", id.String()).Msg("offering unavailable for conflict check")
		d.metrics.ObserveLookup(metrics.LookupUnavailable)
		return nil, LookupUnavailable
	}
	d.metrics.ObserveLookup(metrics.LookupFetched)
	return v.(*catalog.Offering), LookupFetched
}

// Check decides whether enrolling in candidateID would overlap a current
// enrollment in the same term. An unavailable candidate is no conflict; a
// failure to list the enrollments is returned.
func (d *Detector) Check(ctx context.Context, candidateID catalog.ID) (Result, error) {
	candidate, outcome := d.Lookup(ctx, candidateID)
	if outcome == LookupUnavailable {
		return Result{}, nil
	}
	result := Result{Candidate: candidate}

	enrollments, err := d.catalog.ListMyEnrollments(ctx)
	if err != nil {
		return Result{}, errors.Wrap(err, "Detector.Check ListMyEnrollments")
	}

	ids := make([]catalog.ID, 0, len(enrollments))
	seen := make(map[catalog.ID]bool, len(enrollments))
	for _, e := range enrollments {
		id := e.OfferingID
		if id.Empty() || seen[id] {
			continue
		}
		seen[id] = true
		if id == candidate.ID {
			result.AlreadyEnrolled = true
			continue
		}
		ids = append(ids, id)
	}

	enrolled := d.lookupAll(ctx, ids)
	for _, o := range enrolled {
		if o == nil || !SameTerm(o.Term, candidate.Term) {
			continue
		}
		if eb, cb, ok := firstOverlap(o.Schedules, candidate.Schedules); ok {
			result.Conflict = true
			result.With = o
			result.EnrolledBlock = eb
			result.CandidateBlock = cb
			break
		}
	}

	d.metrics.ObserveConflictCheck(result.Conflict)
	if result.Conflict {
		d.log.Debug().
			Str("candidate_id", candidate.ID.String()).
			Str("conflicts_with", result.With.ID.String()).
			Msg("schedule conflict")
	}
	return result, nil
}

// HasConflict is Check reduced to its verdict.
func (d *Detector) HasConflict(ctx context.Context, candidateID catalog.ID) (bool, error) {
	result, err := d.Check(ctx, candidateID)
	if err != nil {
		return false, err
	}
	return result.Conflict, nil
}

// lookupAll resolves the ids in parallel, keeping their order. Unavailable
// offerings are nil.
func (d *Detector) lookupAll(ctx context.Context, ids []catalog.ID) []*catalog.Offering {
	out := make([]*catalog.Offering, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			out[i], _ = d.Lookup(gctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func firstOverlap(enrolled, candidate []catalog.MeetingBlock) (catalog.MeetingBlock, catalog.MeetingBlock, bool) {
	for _, eb := range enrolled {
		for _, cb := range candidate {
			if Overlaps(eb, cb) {
				return eb, cb, true
			}
		}
	}
	return catalog.MeetingBlock{}, catalog.MeetingBlock{}, false
}
