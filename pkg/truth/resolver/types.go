package resolver

import (
	"time"

	"truthcore-hq/atlas/pkg/truth"
)

// Resolution is the fully-qualified configuration an agent is authorized
// to run on. Every truth field is sourced from the resolved MVT version,
// never from the sub-vertical row directly. A Resolution is only ever
// returned whole; a failed resolve carries no partial data.
type Resolution struct {
	Vertical    VerticalRef    `json:"vertical"`
	SubVertical SubVerticalRef `json:"sub_vertical"`
	Region      string         `json:"region"`

	ICP       ICPTriad              `json:"icp"`
	Signals   []truth.AllowedSignal `json:"allowed_signals"`
	KillRules []truth.KillRule      `json:"kill_rules"`
	Scenarios truth.SeedScenarios   `json:"seed_scenarios"`
	MVTStatus MVTStatusRef          `json:"mvt_status"`

	Persona PersonaRef           `json:"persona"`
	Policy  *truth.PersonaPolicy `json:"policy"`
}

// VerticalRef identifies the resolved vertical.
type VerticalRef struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// SubVerticalRef identifies the resolved sub-vertical and its entity-type
// contract.
type SubVerticalRef struct {
	ID                 string             `json:"id"`
	Key                string             `json:"key"`
	Name               string             `json:"name"`
	PrimaryEntityType  truth.EntityType   `json:"primary_entity_type"`
	RelatedEntityTypes []truth.EntityType `json:"related_entity_types"`
}

// ICPTriad is the buyer-role / decision-owner / primary-entity-type truth
// triad, sourced from the MVT version.
type ICPTriad struct {
	BuyerRole         string           `json:"buyer_role"`
	DecisionOwner     string           `json:"decision_owner"`
	PrimaryEntityType truth.EntityType `json:"primary_entity_type"`
}

// MVTStatusRef reports which MVT version backed the resolution.
type MVTStatusRef struct {
	VersionID   string          `json:"version_id"`
	Version     int             `json:"version"`
	Status      truth.MVTStatus `json:"status"`
	Valid       bool            `json:"valid"`
	ValidatedAt time.Time       `json:"validated_at"`
}

// PersonaRef identifies the resolved persona and how it matched.
type PersonaRef struct {
	ID           string             `json:"id"`
	Key          string             `json:"key"`
	Name         string             `json:"name"`
	Mission      string             `json:"mission"`
	DecisionLens string             `json:"decision_lens"`
	Scope        truth.PersonaScope `json:"scope"`
	RegionCode   string             `json:"region_code,omitempty"`
	MatchedTier  string             `json:"matched_tier"`
}
