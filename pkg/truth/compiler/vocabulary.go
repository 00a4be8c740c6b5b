package compiler

import (
	"truthcore-hq/atlas/pkg/truth"
)

// SizeBand is the headcount range a size context maps to.
type SizeBand struct {
	Min *int
	Max *int
}

// Vocabulary is the recognition vocabulary for the free-text extractor:
// the role titles it recognizes, the cue words that mark a company-size
// context, and the headcount band each context maps to. It is data, not
// code, so deployments can grow it without touching the pipeline.
type Vocabulary struct {
	// Roles are the canonical titles, matched case-insensitively. Longer
	// titles are matched before shorter ones so "VP Finance" wins over a
	// bare "VP".
	Roles []string

	// SizeCues maps lowercase cue words to the size context they signal.
	SizeCues map[string]truth.SizeContext

	// SizeBands maps each size context to its headcount range.
	SizeBands map[truth.SizeContext]SizeBand

	// ExclusionCues are lowercase phrases that mark a sentence as
	// excluding rather than targeting the roles it mentions.
	ExclusionCues []string

	// UncertaintyCues are lowercase words that mark a sentence as
	// discussing ambiguous or missing data. Matching sentences are copied
	// verbatim into the IPR's uncertainty directives.
	UncertaintyCues []string
}

// DefaultVocabulary returns the built-in extraction vocabulary.
func DefaultVocabulary() *Vocabulary {
	large := 1000
	midLow, midHigh := 200, 999
	smallMax := 199

	return &Vocabulary{
		Roles: []string{
			"Chief Financial Officer",
			"Chief Technology Officer",
			"Chief Information Officer",
			"Chief Executive Officer",
			"VP of Engineering",
			"VP Finance",
			"Head of Procurement",
			"Head of HR",
			"Head of Payroll",
			"Finance Director",
			"HR Director",
			"IT Director",
			"Procurement Manager",
			"Office Manager",
			"Founder",
			"Owner",
			"CFO",
			"CTO",
			"CIO",
			"CEO",
			"COO",
		},
		SizeCues: map[string]truth.SizeContext{
			"enterprise": truth.SizeLarge,
			"large":      truth.SizeLarge,
			"mid-market": truth.SizeMid,
			"midmarket":  truth.SizeMid,
			"mid-sized":  truth.SizeMid,
			"midsize":    truth.SizeMid,
			"medium":     truth.SizeMid,
			"smb":        truth.SizeSmall,
			"small":      truth.SizeSmall,
			"startup":    truth.SizeSmall,
			"startups":   truth.SizeSmall,
		},
		SizeBands: map[truth.SizeContext]SizeBand{
			truth.SizeLarge: {Min: &large},
			truth.SizeMid:   {Min: &midLow, Max: &midHigh},
			truth.SizeSmall: {Max: &smallMax},
			truth.SizeUnknown: {},
		},
		ExclusionCues: []string{
			"do not target",
			"don't target",
			"avoid",
			"never contact",
			"skip",
			"exclude",
		},
		UncertaintyCues: []string{
			"ambiguous",
			"uncertain",
			"unclear",
			"missing",
			"unknown",
			"cannot determine",
			"can't determine",
			"not stated",
		},
	}
}
