package version

import (
	"context"

	"truthcore-hq/atlas/pkg/truth"
	"truthcore-hq/atlas/pkg/truth/store"
	"truthcore-hq/atlas/pkg/truth/validator"
)

// CreateVersion validates a candidate and, if valid, creates the next MVT
// version for the sub-vertical and makes it active, all in one atomic
// sequence: insert the new ACTIVE row, flip the previously ACTIVE row to
// DEPRECATED, repoint the sub-vertical. An invalid candidate creates no
// row.
func (m *Manager) CreateVersion(ctx context.Context, actor, subVerticalID string, candidate *truth.MVTCandidate) (*truth.MVTVersion, error) {
	var created *truth.MVTVersion

	err := m.store.WriteTx(ctx, func(tx store.Tx) error {
		sv, err := tx.SubVertical(subVerticalID)
		if err != nil {
			return mapStoreErr(err, "sub-vertical")
		}

		result := validator.ValidateMVT(candidate, sv.PrimaryEntityType)
		if !result.Valid {
			return result.ToFailure()
		}

		existing, err := tx.MVTVersions(subVerticalID)
		if err != nil {
			return err
		}

		now := m.now()
		created = &truth.MVTVersion{
			ID:            m.newID(),
			SubVerticalID: subVerticalID,
			Version:       nextMVTVersion(existing),
			BuyerRole:     candidate.BuyerRole,
			DecisionOwner: candidate.DecisionOwner,
			Signals:       candidate.Signals,
			KillRules:     candidate.KillRules,
			Scenarios:     candidate.Scenarios,
			Valid:         true,
			ValidatedAt:   now,
			Status:        truth.MVTStatusActive,
			CreatedAt:     now,
		}

		for _, v := range existing {
			if v.Status == truth.MVTStatusActive {
				if err := tx.SetMVTStatus(v.ID, truth.MVTStatusDeprecated); err != nil {
					return err
				}
			}
		}
		if err := tx.InsertMVTVersion(created); err != nil {
			return mapStoreErr(err, "mvt version")
		}
		return tx.SetActiveMVTPointer(subVerticalID, created.ID)
	})

	m.audit(actor, "mvt.create_version", subVerticalID, candidate, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateVersion applies a partial edit to the sub-vertical's active MVT
// version: the partial candidate is merged over the current content, the
// merged result is fully re-validated, and a new active version is minted
// in the same atomic sequence as CreateVersion. Unset fields keep the
// current version's values, so a partial edit cannot silently drop
// required data. An invalid merge result creates no row.
func (m *Manager) UpdateVersion(ctx context.Context, actor, subVerticalID string, partial *truth.MVTCandidate) (*truth.MVTVersion, error) {
	var created *truth.MVTVersion

	err := m.store.WriteTx(ctx, func(tx store.Tx) error {
		sv, err := tx.SubVertical(subVerticalID)
		if err != nil {
			return mapStoreErr(err, "sub-vertical")
		}
		if sv.ActiveMVTVersionID == "" {
			return truth.NewFailure(truth.CodeNotFound,
				"sub-vertical has no active MVT version to update").
				With("sub_vertical_id", subVerticalID)
		}
		current, err := tx.MVTVersion(sv.ActiveMVTVersionID)
		if err != nil {
			return mapStoreErr(err, "mvt version")
		}

		merged := validator.MergeCandidate(current, partial)
		result := validator.ValidateMVT(merged, sv.PrimaryEntityType)
		if !result.Valid {
			return result.ToFailure()
		}

		existing, err := tx.MVTVersions(subVerticalID)
		if err != nil {
			return err
		}

		now := m.now()
		created = &truth.MVTVersion{
			ID:            m.newID(),
			SubVerticalID: subVerticalID,
			Version:       nextMVTVersion(existing),
			BuyerRole:     merged.BuyerRole,
			DecisionOwner: merged.DecisionOwner,
			Signals:       merged.Signals,
			KillRules:     merged.KillRules,
			Scenarios:     merged.Scenarios,
			Valid:         true,
			ValidatedAt:   now,
			Status:        truth.MVTStatusActive,
			CreatedAt:     now,
		}

		if err := tx.SetMVTStatus(current.ID, truth.MVTStatusDeprecated); err != nil {
			return err
		}
		if err := tx.InsertMVTVersion(created); err != nil {
			return mapStoreErr(err, "mvt version")
		}
		return tx.SetActiveMVTPointer(subVerticalID, created.ID)
	})

	m.audit(actor, "mvt.update_version", subVerticalID, partial, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Activate makes an existing version the active one for its sub-vertical.
// An invalid version can never become active, even manually. If another
// version is currently active it is deprecated in the same atomic
// sequence. Activating the already-active version is a no-op.
func (m *Manager) Activate(ctx context.Context, actor, versionID string) (*truth.MVTVersion, error) {
	var activated *truth.MVTVersion

	err := m.store.WriteTx(ctx, func(tx store.Tx) error {
		target, err := tx.MVTVersion(versionID)
		if err != nil {
			return mapStoreErr(err, "mvt version")
		}
		if !target.Valid {
			return truth.NewFailure(truth.CodeValidationFailed,
				"version %d is invalid and can never be activated", target.Version).
				With("version_id", target.ID)
		}
		if target.Status == truth.MVTStatusActive {
			activated = target
			return nil
		}

		siblings, err := tx.MVTVersions(target.SubVerticalID)
		if err != nil {
			return err
		}
		for _, v := range siblings {
			if v.Status == truth.MVTStatusActive && v.ID != target.ID {
				if err := tx.SetMVTStatus(v.ID, truth.MVTStatusDeprecated); err != nil {
					return err
				}
			}
		}
		if err := tx.SetMVTStatus(target.ID, truth.MVTStatusActive); err != nil {
			return err
		}
		if err := tx.SetActiveMVTPointer(target.SubVerticalID, target.ID); err != nil {
			return err
		}
		target.Status = truth.MVTStatusActive
		activated = target
		return nil
	})

	m.audit(actor, "mvt.activate", versionID, nil, err)
	if err != nil {
		return nil, err
	}
	return activated, nil
}

// Deprecate retires a version. If it was the active one, the sub-vertical's
// pointer is cleared and the sub-vertical stops being runtime-eligible
// until a new version is activated — that gap is deliberate.
func (m *Manager) Deprecate(ctx context.Context, actor, versionID string) error {
	err := m.store.WriteTx(ctx, func(tx store.Tx) error {
		target, err := tx.MVTVersion(versionID)
		if err != nil {
			return mapStoreErr(err, "mvt version")
		}
		wasActive := target.Status == truth.MVTStatusActive

		if err := tx.SetMVTStatus(target.ID, truth.MVTStatusDeprecated); err != nil {
			return err
		}
		if wasActive {
			sv, err := tx.SubVertical(target.SubVerticalID)
			if err != nil {
				return mapStoreErr(err, "sub-vertical")
			}
			if sv.ActiveMVTVersionID == target.ID {
				return tx.SetActiveMVTPointer(sv.ID, "")
			}
		}
		return nil
	})

	m.audit(actor, "mvt.deprecate", versionID, nil, err)
	return err
}

// ICPUpdate is the explicitly weaker partial update for the ICP truth
// triad. It touches the sub-vertical row only and runs no full MVT
// validation; the sub-vertical stays non-runtime-eligible until a complete
// MVT version exists.
type ICPUpdate struct {
	BuyerRole     string `json:"buyer_role,omitempty"`
	DecisionOwner string `json:"decision_owner,omitempty"`

	// PrimaryEntityType is accepted in the payload only so the immutable-
	// field violation can be reported by name; any attempt to change it is
	// rejected.
	PrimaryEntityType truth.EntityType `json:"primary_entity_type,omitempty"`
}

// UpdateICP applies an ICP-only update to the sub-vertical row.
func (m *Manager) UpdateICP(ctx context.Context, actor, subVerticalID string, update ICPUpdate) error {
	err := m.store.WriteTx(ctx, func(tx store.Tx) error {
		sv, err := tx.SubVertical(subVerticalID)
		if err != nil {
			return mapStoreErr(err, "sub-vertical")
		}
		if update.PrimaryEntityType != "" && update.PrimaryEntityType != sv.PrimaryEntityType {
			return truth.NewFailure(truth.CodeImmutableField,
				"primary_entity_type is immutable once set").
				With("field", "primary_entity_type").
				With("current", sv.PrimaryEntityType)
		}

		buyerRole := sv.BuyerRole
		decisionOwner := sv.DecisionOwner
		if update.BuyerRole != "" {
			buyerRole = update.BuyerRole
		}
		if update.DecisionOwner != "" {
			decisionOwner = update.DecisionOwner
		}
		return tx.SetSubVerticalICP(subVerticalID, buyerRole, decisionOwner)
	})

	m.audit(actor, "sub_vertical.update_icp", subVerticalID, update, err)
	return err
}

// nextMVTVersion returns max(existing)+1. Versions are never reused or
// reordered, including after deprecation.
func nextMVTVersion(existing []*truth.MVTVersion) int {
	next := 1
	for _, v := range existing {
		if v.Version >= next {
			next = v.Version + 1
		}
	}
	return next
}
