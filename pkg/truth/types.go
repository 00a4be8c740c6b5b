package truth

import (
	"time"
)

// RegionGlobal is the wildcard region code. A vertical whose region scope
// contains RegionGlobal accepts requests for any region, and a resolve
// request may pass RegionGlobal explicitly.
const RegionGlobal = "GLOBAL"

// EntityType is the closed set of entity types a sub-vertical can target.
type EntityType string

const (
	EntityTypeCompany EntityType = "company"
	EntityTypePerson  EntityType = "person"
	EntityTypeJob     EntityType = "job_posting"
	EntityTypeFunding EntityType = "funding_event"
)

// KnownEntityTypes lists every valid entity type.
var KnownEntityTypes = []EntityType{
	EntityTypeCompany,
	EntityTypePerson,
	EntityTypeJob,
	EntityTypeFunding,
}

// IsKnownEntityType reports whether t is a member of the closed set.
func IsKnownEntityType(t EntityType) bool {
	for _, k := range KnownEntityTypes {
		if t == k {
			return true
		}
	}
	return false
}

// MVTStatus is the lifecycle status of an MVT version.
type MVTStatus string

const (
	MVTStatusDraft      MVTStatus = "DRAFT"
	MVTStatusActive     MVTStatus = "ACTIVE"
	MVTStatusDeprecated MVTStatus = "DEPRECATED"
)

// PersonaScope controls how a persona is matched against a request region.
type PersonaScope string

const (
	// ScopeLocal personas match a single region exactly and require a
	// region code.
	ScopeLocal PersonaScope = "LOCAL"
	// ScopeGlobal personas match any region; their region code is ignored.
	ScopeGlobal PersonaScope = "GLOBAL"
)

// PolicyStatus is the lifecycle status of a persona policy.
type PolicyStatus string

const (
	PolicyStatusDraft      PolicyStatus = "DRAFT"
	PolicyStatusStaged     PolicyStatus = "STAGED"
	PolicyStatusActive     PolicyStatus = "ACTIVE"
	PolicyStatusDeprecated PolicyStatus = "DEPRECATED"
)

// TextStatus is the lifecycle status of a policy-text version.
type TextStatus string

const (
	TextStatusDraft           TextStatus = "draft"
	TextStatusPendingApproval TextStatus = "pending_approval"
	TextStatusApproved        TextStatus = "approved"
	TextStatusDeprecated      TextStatus = "deprecated"
)

// SourceFormat identifies how a policy-text version was authored.
type SourceFormat string

const (
	// SourceFormatText is free-form prose, interpreted best-effort.
	SourceFormatText SourceFormat = "text"
	// SourceFormatDSL is structured PDL, compiled deterministically.
	SourceFormatDSL SourceFormat = "dsl"
)

// RuntimeBinding controls what the runtime is allowed to execute for an
// approved policy-text version.
type RuntimeBinding string

const (
	// BindingCompiledOnly restricts the runtime to the frozen IPR. Forced
	// for every DSL-sourced approval.
	BindingCompiledOnly RuntimeBinding = "compiled_ipr_only"
	// BindingInterpreterAllowed permits re-interpretation of the raw
	// source. Only free-text approvals carry it, and it is deprecated.
	BindingInterpreterAllowed RuntimeBinding = "interpreter_allowed"
)

// Vertical is a top-level industry vertical. Verticals are created by
// operators, rarely mutated, and never deleted; deactivation is the only
// form of removal.
type Vertical struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	RegionScope []string  `json:"region_scope"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// InScope reports whether region is covered by the vertical's region
// scope. The GLOBAL wildcard, on either side, always matches.
func (v *Vertical) InScope(region string) bool {
	if region == RegionGlobal {
		return true
	}
	for _, r := range v.RegionScope {
		if r == region || r == RegionGlobal {
			return true
		}
	}
	return false
}

// SubVertical is a sub-segment of a vertical. Its primary entity type is
// immutable once set; its ActiveMVTVersionID pointer, when non-empty, must
// reference an ACTIVE MVT version belonging to this sub-vertical.
type SubVertical struct {
	ID                 string       `json:"id"`
	VerticalID         string       `json:"vertical_id"`
	Key                string       `json:"key"`
	Name               string       `json:"name"`
	PrimaryEntityType  EntityType   `json:"primary_entity_type"`
	RelatedEntityTypes []EntityType `json:"related_entity_types"`
	ActiveMVTVersionID string       `json:"active_mvt_version_id,omitempty"`
	BuyerRole          string       `json:"buyer_role,omitempty"`
	DecisionOwner      string       `json:"decision_owner,omitempty"`

	// PolicySourceText and PolicySourceFormat stage the authored policy
	// source until Interpret snapshots it into an immutable
	// PolicyTextVersion.
	PolicySourceText   string       `json:"policy_source_text,omitempty"`
	PolicySourceFormat SourceFormat `json:"policy_source_format,omitempty"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// AllowedSignal is one entry in an MVT version's ordered signal list.
type AllowedSignal struct {
	SignalKey     string     `json:"signal_key"`
	EntityType    EntityType `json:"entity_type"`
	Justification string     `json:"justification"`
}

// KillRule is one entry in an MVT version's ordered kill-rule list.
type KillRule struct {
	Rule   string `json:"rule"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// SeedScenarios holds the golden and kill scenario seeds for an MVT
// version. Both lists require at least two entries to validate.
type SeedScenarios struct {
	Golden []string `json:"golden"`
	Kill   []string `json:"kill"`
}

// MVTVersion is one immutable version of a sub-vertical's minimum viable
// truth. Content fields never change after creation; corrections require a
// new version. Only Status transitions after creation.
type MVTVersion struct {
	ID            string          `json:"id"`
	SubVerticalID string          `json:"sub_vertical_id"`
	Version       int             `json:"version"`
	BuyerRole     string          `json:"buyer_role"`
	DecisionOwner string          `json:"decision_owner"`
	Signals       []AllowedSignal `json:"allowed_signals"`
	KillRules     []KillRule      `json:"kill_rules"`
	Scenarios     SeedScenarios   `json:"seed_scenarios"`
	Valid         bool            `json:"valid"`
	ValidatedAt   time.Time       `json:"validated_at"`
	Status        MVTStatus       `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MVTCandidate is the mutable input to MVT validation and version
// creation. It carries content fields only; lifecycle fields are assigned
// by the version manager.
type MVTCandidate struct {
	BuyerRole     string          `json:"buyer_role"`
	DecisionOwner string          `json:"decision_owner"`
	Signals       []AllowedSignal `json:"allowed_signals"`
	KillRules     []KillRule      `json:"kill_rules"`
	Scenarios     SeedScenarios   `json:"seed_scenarios"`
}

// Persona is a behavioral identity bound to a sub-vertical, optionally
// scoped to a single region. CreatedAt is the deterministic tie-break when
// multiple personas qualify at the same precedence tier.
type Persona struct {
	ID            string       `json:"id"`
	SubVerticalID string       `json:"sub_vertical_id"`
	Key           string       `json:"key"`
	Name          string       `json:"name"`
	Mission       string       `json:"mission"`
	DecisionLens  string       `json:"decision_lens"`
	Scope         PersonaScope `json:"scope"`
	RegionCode    string       `json:"region_code,omitempty"`
	Active        bool         `json:"active"`
	CreatedAt     time.Time    `json:"created_at"`
}

// PersonaPolicy is one version of a persona's behavioral policy. At most
// one policy per persona is ACTIVE at any time.
type PersonaPolicy struct {
	ID              string       `json:"id"`
	PersonaID       string       `json:"persona_id"`
	PolicyVersion   int          `json:"policy_version"`
	Status          PolicyStatus `json:"status"`
	AllowedIntents  []string     `json:"allowed_intents"`
	ForbiddenOutput []string     `json:"forbidden_outputs"`
	AllowedTools    []string     `json:"allowed_tools"`
	EvidenceScope   []string     `json:"evidence_scope"`
	MemoryScope     string       `json:"memory_scope"`
	CostBudget      float64      `json:"cost_budget"`
	LatencyBudget   float64      `json:"latency_budget"`
	EscalationRules []string     `json:"escalation_rules"`
	DisclaimerRules []string     `json:"disclaimer_rules"`
	ActivatedAt     *time.Time   `json:"activated_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// PolicyTextVersion is one version of a sub-vertical's enrichment policy
// source together with its compiled IPR. PolicyHash is the hex sha256
// digest of SourceText, recorded at interpretation time; the approval
// contract recomputes it to detect tampering.
type PolicyTextVersion struct {
	ID            string       `json:"id"`
	SubVerticalID string       `json:"sub_vertical_id"`
	Version       int          `json:"version"`
	SourceFormat  SourceFormat `json:"source_format"`
	SourceText    string       `json:"source_text"`
	PolicyHash    string       `json:"policy_hash"`

	IPR        *IPR     `json:"ipr,omitempty"`
	Confidence float64  `json:"interpretation_confidence"`
	Warnings   []string `json:"interpretation_warnings,omitempty"`

	CompilerVersion   string         `json:"compiler_version"`
	Status            TextStatus     `json:"status"`
	RuntimeBinding    RuntimeBinding `json:"runtime_binding,omitempty"`
	ContractValidated bool           `json:"approval_contract_validated"`
	ApprovedBy        string         `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time     `json:"approved_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}
