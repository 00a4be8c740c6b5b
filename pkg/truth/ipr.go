package truth

// Comparison is a threshold comparison direction.
type Comparison string

const (
	CompareGTE Comparison = "gte"
	CompareLT  Comparison = "lt"
)

// SizeContext is the company-size band a target-role rule applies to.
type SizeContext string

const (
	SizeLarge   SizeContext = "large"
	SizeMid     SizeContext = "mid"
	SizeSmall   SizeContext = "small"
	SizeUnknown SizeContext = "unknown"
)

// KnownThresholdFields lists the fields a threshold may compare against.
var KnownThresholdFields = []string{"headcount", "revenue"}

// Threshold is one explicit numeric threshold extracted or declared in a
// policy source, deduplicated by (value, comparison).
type Threshold struct {
	Field      string     `json:"field" yaml:"field"`
	Comparison Comparison `json:"comparison" yaml:"comparison"`
	Value      float64    `json:"value" yaml:"value"`
}

// TargetRoleRule maps one observed size context to the titles to pursue
// within it. Bounds are headcounts; a nil bound is open on that side.
type TargetRoleRule struct {
	Size         SizeContext `json:"size" yaml:"size"`
	MinHeadcount *int        `json:"min_headcount,omitempty" yaml:"min_headcount,omitempty"`
	MaxHeadcount *int        `json:"max_headcount,omitempty" yaml:"max_headcount,omitempty"`
	Titles       []string    `json:"titles" yaml:"titles"`
}

// IPR is the intermediate policy representation: the structured,
// machine-checkable form of an enrichment policy, independent of whether
// the source was free text or PDL. Uncertainty directives are carried
// verbatim from the source; the compiler never invents behavior the source
// did not state.
type IPR struct {
	Thresholds  []Threshold      `json:"thresholds" yaml:"thresholds"`
	TargetRoles []TargetRoleRule `json:"target_roles" yaml:"target_roles"`
	SkipRules   []string         `json:"skip_rules,omitempty" yaml:"skip_rules,omitempty"`
	Uncertainty []string         `json:"uncertainty,omitempty" yaml:"uncertainty,omitempty"`
	Notes       []string         `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Roles returns the distinct titles referenced across all target-role
// rules, in first-seen order.
func (i *IPR) Roles() []string {
	seen := make(map[string]bool)
	var roles []string
	for _, rule := range i.TargetRoles {
		for _, t := range rule.Titles {
			if !seen[t] {
				seen[t] = true
				roles = append(roles, t)
			}
		}
	}
	return roles
}
