package version

import (
	"context"
	"strings"

	"truthcore-hq/atlas/pkg/truth"
	"truthcore-hq/atlas/pkg/truth/store"
)

// CreateVertical registers a new vertical.
func (m *Manager) CreateVertical(ctx context.Context, actor, key, name string, regionScope []string) (*truth.Vertical, error) {
	var created *truth.Vertical

	err := m.store.WriteTx(ctx, func(tx store.Tx) error {
		if strings.TrimSpace(key) == "" {
			return truth.NewFailure(truth.CodeInvalidInput, "vertical key is required")
		}
		if len(regionScope) == 0 {
			return truth.NewFailure(truth.CodeInvalidInput, "region_scope must not be empty")
		}
		created = &truth.Vertical{
			ID:          m.newID(),
			Key:         key,
			Name:        name,
			RegionScope: regionScope,
			Active:      true,
			CreatedAt:   m.now(),
		}
		return mapStoreErr(tx.InsertVertical(created), "vertical")
	})

	m.audit(actor, "vertical.create", key, map[string]any{"region_scope": regionScope}, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateSubVertical registers a new sub-vertical under a vertical. The
// primary entity type is fixed here forever; later attempts to change it
// fail with IMMUTABLE_FIELD.
func (m *Manager) CreateSubVertical(ctx context.Context, actor, verticalID, key, name string, primary truth.EntityType, related []truth.EntityType) (*truth.SubVertical, error) {
	var created *truth.SubVertical

	err := m.store.WriteTx(ctx, func(tx store.Tx) error {
		if strings.TrimSpace(key) == "" {
			return truth.NewFailure(truth.CodeInvalidInput, "sub-vertical key is required")
		}
		if !truth.IsKnownEntityType(primary) {
			return truth.NewFailure(truth.CodeInvalidInput,
				"unknown primary_entity_type %q", primary)
		}
		for _, r := range related {
			if !truth.IsKnownEntityType(r) {
				return truth.NewFailure(truth.CodeInvalidInput,
					"unknown related entity type %q", r)
			}
		}
		if _, err := tx.Vertical(verticalID); err != nil {
			return mapStoreErr(err, "vertical")
		}
		created = &truth.SubVertical{
			ID:                 m.newID(),
			VerticalID:         verticalID,
			Key:                key,
			Name:               name,
			PrimaryEntityType:  primary,
			RelatedEntityTypes: related,
			Active:             true,
			CreatedAt:          m.now(),
		}
		return mapStoreErr(tx.InsertSubVertical(created), "sub-vertical")
	})

	m.audit(actor, "sub_vertical.create", key, map[string]any{"primary_entity_type": primary}, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreatePersona registers a persona. LOCAL personas require a region code;
// a GLOBAL persona's region code is discarded.
func (m *Manager) CreatePersona(ctx context.Context, actor string, p *truth.Persona) (*truth.Persona, error) {
	var created *truth.Persona

	err := m.store.WriteTx(ctx, func(tx store.Tx) error {
		if strings.TrimSpace(p.Key) == "" {
			return truth.NewFailure(truth.CodeInvalidInput, "persona key is required")
		}
		switch p.Scope {
		case truth.ScopeLocal:
			if strings.TrimSpace(p.RegionCode) == "" {
				return truth.NewFailure(truth.CodeInvalidInput,
					"LOCAL personas require a region_code")
			}
		case truth.ScopeGlobal:
			p.RegionCode = ""
		default:
			return truth.NewFailure(truth.CodeInvalidInput,
				"unknown persona scope %q (known: LOCAL, GLOBAL)", p.Scope)
		}
		if _, err := tx.SubVertical(p.SubVerticalID); err != nil {
			return mapStoreErr(err, "sub-vertical")
		}

		created = &truth.Persona{
			ID:            m.newID(),
			SubVerticalID: p.SubVerticalID,
			Key:           p.Key,
			Name:          p.Name,
			Mission:       p.Mission,
			DecisionLens:  p.DecisionLens,
			Scope:         p.Scope,
			RegionCode:    p.RegionCode,
			Active:        true,
			CreatedAt:     m.now(),
		}
		return mapStoreErr(tx.InsertPersona(created), "persona")
	})

	m.audit(actor, "persona.create", p.Key, map[string]any{"scope": p.Scope, "region": p.RegionCode}, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreatePersonaPolicy stores a new DRAFT policy version for a persona.
func (m *Manager) CreatePersonaPolicy(ctx context.Context, actor string, policy *truth.PersonaPolicy) (*truth.PersonaPolicy, error) {
	var created *truth.PersonaPolicy

	err := m.store.WriteTx(ctx, func(tx store.Tx) error {
		existing, err := tx.PersonaPolicies(policy.PersonaID)
		if err != nil {
			return err
		}
		next := 1
		for _, p := range existing {
			if p.PolicyVersion >= next {
				next = p.PolicyVersion + 1
			}
		}

		created = policy
		created.ID = m.newID()
		created.PolicyVersion = next
		created.Status = truth.PolicyStatusDraft
		created.ActivatedAt = nil
		created.CreatedAt = m.now()
		return mapStoreErr(tx.InsertPersonaPolicy(created), "persona policy")
	})

	m.audit(actor, "persona_policy.create", policy.PersonaID, nil, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ActivatePersonaPolicy makes a policy version the persona's single ACTIVE
// one, deprecating any currently active policy in the same transaction.
func (m *Manager) ActivatePersonaPolicy(ctx context.Context, actor, policyID string) error {
	err := m.store.WriteTx(ctx, func(tx store.Tx) error {
		target, err := tx.PersonaPolicy(policyID)
		if err != nil {
			return mapStoreErr(err, "persona policy")
		}
		if target.Status == truth.PolicyStatusActive {
			return nil
		}

		siblings, err := tx.PersonaPolicies(target.PersonaID)
		if err != nil {
			return err
		}
		for _, p := range siblings {
			if p.Status == truth.PolicyStatusActive && p.ID != target.ID {
				if err := tx.SetPersonaPolicyStatus(p.ID, truth.PolicyStatusDeprecated, nil); err != nil {
					return err
				}
			}
		}
		now := m.now()
		return tx.SetPersonaPolicyStatus(target.ID, truth.PolicyStatusActive, &now)
	})

	m.audit(actor, "persona_policy.activate", policyID, nil, err)
	return err
}
