package resolver

import (
	"context"
	"log/slog"
	"strings"

	"truthcore-hq/atlas/pkg/truth"
	"truthcore-hq/atlas/pkg/truth/store"
)

// Resolver is the stateless read path. Concurrent Resolve calls share
// nothing but the store.
type Resolver struct {
	store  store.Store
	logger *slog.Logger
}

// New creates a resolver.
func New(st store.Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:  st,
		logger: logger.With("component", "resolver"),
	}
}

// Resolve walks the cascade for (verticalKey, subVerticalKey, region) and
// returns either a complete Resolution or a typed failure naming the first
// unmet layer. No step proceeds past a failure, and the whole walk runs in
// one read transaction.
func (r *Resolver) Resolve(ctx context.Context, verticalKey, subVerticalKey, region string) (*Resolution, error) {
	if strings.TrimSpace(verticalKey) == "" || strings.TrimSpace(subVerticalKey) == "" || strings.TrimSpace(region) == "" {
		return nil, truth.NewFailure(truth.CodeInvalidInput,
			"vertical, subVertical, and region are all required")
	}

	var resolution *Resolution
	err := r.store.ReadTx(ctx, func(tx store.Tx) error {
		var err error
		resolution, err = r.resolve(tx, verticalKey, subVerticalKey, region)
		return err
	})
	if err != nil {
		if f, ok := truth.AsFailure(err); ok {
			r.logger.Info("resolution blocked",
				"vertical", verticalKey,
				"sub_vertical", subVerticalKey,
				"region", region,
				"error", string(f.Code),
			)
		}
		return nil, err
	}
	return resolution, nil
}

func (r *Resolver) resolve(tx store.Tx, verticalKey, subVerticalKey, region string) (*Resolution, error) {
	// 1. Vertical.
	vertical, err := tx.VerticalByKey(verticalKey)
	if err == store.ErrNotFound {
		return nil, truth.NewFailure(truth.CodeVerticalNotConfigured,
			"vertical %q is not configured", verticalKey)
	}
	if err != nil {
		return nil, err
	}
	if !vertical.Active {
		return nil, truth.NewFailure(truth.CodeVerticalNotConfigured,
			"vertical %q is inactive", verticalKey)
	}

	// 2. Region scope.
	if !vertical.InScope(region) {
		return nil, truth.NewFailure(truth.CodeRegionNotInScope,
			"region %q is not in the scope of vertical %q", region, verticalKey).
			With("allowed_regions", vertical.RegionScope)
	}

	// 3. Sub-vertical.
	subVertical, err := tx.SubVerticalByKey(vertical.ID, subVerticalKey)
	if err == store.ErrNotFound {
		return nil, truth.NewFailure(truth.CodeSubVerticalNotConfigured,
			"sub-vertical %q is not configured under vertical %q", subVerticalKey, verticalKey)
	}
	if err != nil {
		return nil, err
	}
	if !subVertical.Active {
		return nil, truth.NewFailure(truth.CodeSubVerticalNotConfigured,
			"sub-vertical %q is inactive", subVerticalKey)
	}

	// 4. Active MVT version, hard-gated.
	if subVertical.ActiveMVTVersionID == "" {
		return nil, truth.NewFailure(truth.CodeMVTIncomplete,
			"sub-vertical %q has no active MVT version", subVerticalKey).
			With("blocker", truth.BlockerNoMVTVersion)
	}
	mvt, err := tx.MVTVersion(subVertical.ActiveMVTVersionID)
	if err == store.ErrNotFound {
		// A dangling pointer is corrupt state, not a configuration gap.
		return nil, truth.NewFailure(truth.CodeInternal,
			"sub-vertical %q points at a missing MVT version", subVerticalKey)
	}
	if err != nil {
		return nil, err
	}
	if mvt.Status != truth.MVTStatusActive {
		return nil, truth.NewFailure(truth.CodeMVTIncomplete,
			"MVT version %d for sub-vertical %q is %s, not ACTIVE", mvt.Version, subVerticalKey, mvt.Status).
			With("blocker", truth.BlockerMVTNotActive).
			With("field_report", truth.FieldReport(mvt))
	}
	if !mvt.Valid {
		return nil, truth.NewFailure(truth.CodeMVTIncomplete,
			"MVT version %d for sub-vertical %q is marked invalid", mvt.Version, subVerticalKey).
			With("blocker", truth.BlockerMVTInvalid).
			With("field_report", truth.FieldReport(mvt))
	}

	// 5. Persona by precedence.
	personas, err := tx.Personas(subVertical.ID)
	if err != nil {
		return nil, err
	}
	persona, tier := selectPersona(personas, region)
	if persona == nil {
		return nil, truth.NewFailure(truth.CodePersonaNotConfigured,
			"no active persona is configured for sub-vertical %q", subVerticalKey)
	}

	// 6. Active persona policy.
	policies, err := tx.PersonaPolicies(persona.ID)
	if err != nil {
		return nil, err
	}
	var active *truth.PersonaPolicy
	for _, p := range policies {
		if p.Status == truth.PolicyStatusActive {
			active = p
			break
		}
	}
	if active == nil {
		return nil, truth.NewFailure(truth.CodePolicyNotActive,
			"persona %q has no ACTIVE policy", persona.Key).
			With("persona_id", persona.ID)
	}

	// 7. Assemble, everything sourced from the MVT version.
	return &Resolution{
		Vertical: VerticalRef{
			ID:   vertical.ID,
			Key:  vertical.Key,
			Name: vertical.Name,
		},
		SubVertical: SubVerticalRef{
			ID:                 subVertical.ID,
			Key:                subVertical.Key,
			Name:               subVertical.Name,
			PrimaryEntityType:  subVertical.PrimaryEntityType,
			RelatedEntityTypes: subVertical.RelatedEntityTypes,
		},
		Region: region,
		ICP: ICPTriad{
			BuyerRole:         mvt.BuyerRole,
			DecisionOwner:     mvt.DecisionOwner,
			PrimaryEntityType: subVertical.PrimaryEntityType,
		},
		Signals:   mvt.Signals,
		KillRules: mvt.KillRules,
		Scenarios: mvt.Scenarios,
		MVTStatus: MVTStatusRef{
			VersionID:   mvt.ID,
			Version:     mvt.Version,
			Status:      mvt.Status,
			Valid:       mvt.Valid,
			ValidatedAt: mvt.ValidatedAt,
		},
		Persona: PersonaRef{
			ID:           persona.ID,
			Key:          persona.Key,
			Name:         persona.Name,
			Mission:      persona.Mission,
			DecisionLens: persona.DecisionLens,
			Scope:        persona.Scope,
			RegionCode:   persona.RegionCode,
			MatchedTier:  tier,
		},
		Policy: active,
	}, nil
}
