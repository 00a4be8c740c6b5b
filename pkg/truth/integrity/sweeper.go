// Package integrity provides a scheduled background sweep that verifies
// the store still satisfies the cross-row invariants the version manager
// maintains: at most one ACTIVE MVT version per sub-vertical with a
// consistent pointer, at most one approved policy-text version per
// sub-vertical, at most one ACTIVE policy per persona, and policy hashes
// that still match their recorded source.
//
// The sweep only reports. It never repairs: silently "fixing" drifted
// state would hide exactly the tampering and corruption it exists to
// surface.
package integrity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"truthcore-hq/atlas/pkg/truth"
	"truthcore-hq/atlas/pkg/truth/store"
	"truthcore-hq/atlas/pkg/truth/version"
)

// Finding is one detected invariant violation.
type Finding struct {
	Kind    string `json:"kind"`
	Target  string `json:"target"`
	Message string `json:"message"`
}

const (
	KindMultipleActiveMVT      = "multiple_active_mvt"
	KindPointerMismatch        = "pointer_mismatch"
	KindDanglingPointer        = "dangling_pointer"
	KindMultipleApprovedText   = "multiple_approved_text"
	KindMultipleActivePolicies = "multiple_active_policies"
	KindHashDrift              = "hash_drift"
)

// Sweeper runs integrity sweeps, either on demand or on a cron schedule.
type Sweeper struct {
	store  store.Store
	logger *slog.Logger
	cron   *cron.Cron

	// onFindings, when set, receives the findings of each scheduled sweep.
	onFindings func([]Finding)
}

// NewSweeper creates a sweeper.
func NewSweeper(st store.Store, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		store:  st,
		logger: logger.With("component", "integrity"),
	}
}

// OnFindings registers a callback invoked with the findings of every
// scheduled sweep, including empty runs.
func (s *Sweeper) OnFindings(fn func([]Finding)) {
	s.onFindings = fn
}

// Start schedules sweeps with the given cron expression and begins
// running them. Call Stop to shut the schedule down.
func (s *Sweeper) Start(schedule string) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(schedule, func() {
		findings, err := s.Sweep(context.Background())
		if err != nil {
			s.logger.Error("integrity sweep failed", "error", err)
			return
		}
		if len(findings) > 0 {
			s.logger.Warn("integrity sweep found violations", "count", len(findings))
		} else {
			s.logger.Debug("integrity sweep clean")
		}
		if s.onFindings != nil {
			s.onFindings(findings)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule integrity sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("integrity sweep scheduled", "schedule", schedule)
	return nil
}

// Stop halts the schedule; a sweep in flight runs to completion.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Sweep runs one full integrity check inside a single read transaction
// and returns every violation found.
func (s *Sweeper) Sweep(ctx context.Context) ([]Finding, error) {
	var findings []Finding

	err := s.store.ReadTx(ctx, func(tx store.Tx) error {
		subVerticals, err := tx.SubVerticals()
		if err != nil {
			return err
		}

		for _, sv := range subVerticals {
			versions, err := tx.MVTVersions(sv.ID)
			if err != nil {
				return err
			}

			var activeIDs []string
			for _, v := range versions {
				if v.Status == truth.MVTStatusActive {
					activeIDs = append(activeIDs, v.ID)
				}
			}
			if len(activeIDs) > 1 {
				findings = append(findings, Finding{
					Kind:    KindMultipleActiveMVT,
					Target:  sv.ID,
					Message: fmt.Sprintf("sub-vertical %q has %d ACTIVE MVT versions", sv.Key, len(activeIDs)),
				})
			}
			switch {
			case sv.ActiveMVTVersionID == "" && len(activeIDs) > 0:
				findings = append(findings, Finding{
					Kind:    KindPointerMismatch,
					Target:  sv.ID,
					Message: fmt.Sprintf("sub-vertical %q has an ACTIVE version but a null pointer", sv.Key),
				})
			case sv.ActiveMVTVersionID != "" && !containsID(activeIDs, sv.ActiveMVTVersionID):
				kind := KindPointerMismatch
				if !versionExists(versions, sv.ActiveMVTVersionID) {
					kind = KindDanglingPointer
				}
				findings = append(findings, Finding{
					Kind:    kind,
					Target:  sv.ID,
					Message: fmt.Sprintf("sub-vertical %q pointer %s does not reference its ACTIVE version", sv.Key, sv.ActiveMVTVersionID),
				})
			}

			texts, err := tx.PolicyTextVersions(sv.ID)
			if err != nil {
				return err
			}
			approved := 0
			for _, tv := range texts {
				if tv.Status == truth.TextStatusApproved {
					approved++
				}
				if tv.Status == truth.TextStatusApproved || tv.Status == truth.TextStatusPendingApproval {
					if version.PolicyHash(tv.SourceText) != tv.PolicyHash {
						findings = append(findings, Finding{
							Kind:    KindHashDrift,
							Target:  tv.ID,
							Message: fmt.Sprintf("policy text version %d of sub-vertical %q no longer matches its recorded hash", tv.Version, sv.Key),
						})
					}
				}
			}
			if approved > 1 {
				findings = append(findings, Finding{
					Kind:    KindMultipleApprovedText,
					Target:  sv.ID,
					Message: fmt.Sprintf("sub-vertical %q has %d approved policy text versions", sv.Key, approved),
				})
			}

			personas, err := tx.Personas(sv.ID)
			if err != nil {
				return err
			}
			for _, p := range personas {
				policies, err := tx.PersonaPolicies(p.ID)
				if err != nil {
					return err
				}
				active := 0
				for _, pol := range policies {
					if pol.Status == truth.PolicyStatusActive {
						active++
					}
				}
				if active > 1 {
					findings = append(findings, Finding{
						Kind:    KindMultipleActivePolicies,
						Target:  p.ID,
						Message: fmt.Sprintf("persona %q has %d ACTIVE policies", p.Key, active),
					})
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return findings, nil
}

func containsID(ids []string, id string) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}

func versionExists(versions []*truth.MVTVersion, id string) bool {
	for _, v := range versions {
		if v.ID == id {
			return true
		}
	}
	return false
}
