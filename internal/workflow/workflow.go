package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"shelfscan/internal/catalog"
	"shelfscan/internal/identify"
	"shelfscan/internal/logging"
)

// Phase is the state of the scan pipeline.
type Phase string

const (
	PhaseScanning        Phase = "scanning"
	PhaseResolvingLocal  Phase = "resolving-local"
	PhaseResolvingRemote Phase = "resolving-remote"
	PhaseFound           Phase = "found"
	PhaseNotFound        Phase = "not-found"
	PhaseConfirmed       Phase = "confirmed"
)

// ErrStale reports that a resolution finished after the scan it belonged to
// was superseded. Callers treat it as a silent no-op.
var ErrStale = errors.New("scan superseded")

// Store is the catalog surface the workflow needs.
type Store interface {
	GetByCode(ctx context.Context, code string) (*catalog.Record, error)
	UpsertByCode(ctx context.Context, record *catalog.Record) (string, error)
}

// Snapshot is a point-in-time view of the pipeline for display.
type Snapshot struct {
	Phase     Phase
	Candidate *catalog.Record
	// AlreadyKnown marks a candidate that came from the local catalog
	// rather than remote resolution.
	AlreadyKnown bool
	// Reason explains a not-found outcome in user-facing terms.
	Reason string
}

// Workflow drives a scan through local lookup, remote resolution, and
// confirmation. Safe for concurrent use.
type Workflow struct {
	store    Store
	resolver identify.Resolver
	logger   *slog.Logger

	mu           sync.Mutex
	phase        Phase
	generation   uint64
	candidate    *catalog.Record
	alreadyKnown bool
	reason       string
}

// New builds a workflow over a catalog store and a resolver.
func New(store Store, resolver identify.Resolver, logger *slog.Logger) *Workflow {
	return &Workflow{
		store:    store,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		phase:    PhaseScanning,
	}
}

// Snapshot returns the current pipeline state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	snapshot := Snapshot{
		Phase:        w.phase,
		AlreadyKnown: w.alreadyKnown,
		Reason:       w.reason,
	}
	if w.candidate != nil {
		snapshot.Candidate = w.candidate.Clone()
	}
	return snapshot
}

// HandleDecoded runs the pipeline for one decoded code. A local hit lands in
// PhaseConfirmed immediately; a remote hit in PhaseFound awaiting Confirm; a
// failed resolution in PhaseNotFound with a manual-entry skeleton. A newer
// scan or Reset arriving while remote resolution is in flight discards the
// result with ErrStale.
func (w *Workflow) HandleDecoded(ctx context.Context, code string) error {
	w.mu.Lock()
	w.generation++
	generation := w.generation
	w.phase = PhaseResolvingLocal
	w.candidate = nil
	w.alreadyKnown = false
	w.reason = ""
	w.mu.Unlock()

	w.logger.Info("scan decoded", logging.String(logging.FieldScanCode, code))

	existing, err := w.store.GetByCode(ctx, code)
	if err != nil {
		w.finish(generation, PhaseNotFound, manualSkeleton(code), false, "Catalog lookup failed. Enter the details manually.")
		return fmt.Errorf("local lookup for code %s: %w", code, err)
	}
	if existing != nil {
		if stale := w.finish(generation, PhaseConfirmed, existing, true, ""); stale != nil {
			return stale
		}
		w.logger.Info("code already catalogued",
			logging.String(logging.FieldScanCode, code),
			logging.String(logging.FieldRecordID, existing.ID),
		)
		return nil
	}

	w.mu.Lock()
	if w.generation != generation {
		w.mu.Unlock()
		return ErrStale
	}
	w.phase = PhaseResolvingRemote
	w.mu.Unlock()

	candidate, err := w.resolver.ResolveByCode(ctx, code)
	if err != nil {
		reason := identify.Reason(err)
		if stale := w.finish(generation, PhaseNotFound, manualSkeleton(code), false, reason); stale != nil {
			return stale
		}
		w.logger.Warn("resolution failed",
			logging.Error(err),
			logging.String(logging.FieldScanCode, code),
		)
		return nil
	}

	if stale := w.finish(generation, PhaseFound, candidate, false, ""); stale != nil {
		return stale
	}
	w.logger.Info("candidate resolved",
		logging.String(logging.FieldScanCode, code),
		logging.String("title", candidate.Title),
	)
	return nil
}

// finish installs a terminal phase for one generation, refusing results from
// superseded scans.
func (w *Workflow) finish(generation uint64, phase Phase, candidate *catalog.Record, alreadyKnown bool, reason string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != generation {
		return ErrStale
	}
	w.phase = phase
	w.candidate = candidate
	w.alreadyKnown = alreadyKnown
	w.reason = reason
	return nil
}

// Confirm validates the record and persists it by code. The workflow must be
// in PhaseFound or PhaseNotFound; the record may carry user edits over the
// candidate. Returns the stored record's ID.
func (w *Workflow) Confirm(ctx context.Context, record *catalog.Record) (string, error) {
	w.mu.Lock()
	phase := w.phase
	generation := w.generation
	w.mu.Unlock()

	if phase != PhaseFound && phase != PhaseNotFound {
		return "", fmt.Errorf("nothing to confirm in phase %s", phase)
	}
	if err := Validate(record); err != nil {
		return "", err
	}

	id, err := w.store.UpsertByCode(ctx, record)
	if err != nil {
		return "", fmt.Errorf("persist record: %w", err)
	}

	w.mu.Lock()
	if w.generation == generation {
		w.phase = PhaseConfirmed
		w.candidate = record.Clone()
		w.candidate.ID = id
	}
	w.mu.Unlock()

	w.logger.Info("record confirmed",
		logging.String(logging.FieldRecordID, id),
		logging.String(logging.FieldScanCode, record.ScanCode),
		logging.String("title", record.Title),
	)
	return id, nil
}

// Reset returns the workflow to scanning and invalidates any resolution
// still in flight.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.generation++
	w.phase = PhaseScanning
	w.candidate = nil
	w.alreadyKnown = false
	w.reason = ""
}

// manualSkeleton is the record offered for manual entry when resolution
// fails: the scanned code survives, everything else starts blank.
func manualSkeleton(code string) *catalog.Record {
	return &catalog.Record{
		ScanCode: code,
		Cast:     []string{""},
	}
}
