package compiler

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"truthcore-hq/atlas/pkg/truth"
)

// Output is what a compilation produces: the IPR plus the confidence and
// warnings a human reviewer uses to resolve ambiguity. The compiler never
// resolves ambiguity itself.
type Output struct {
	IPR        *truth.IPR `json:"ipr"`
	Confidence float64    `json:"confidence"`
	Warnings   []string   `json:"warnings,omitempty"`
}

// Extractor converts free-text policy source into an IPR with confidence
// and warnings. Implementations must be pure and deterministic for a fixed
// vocabulary: same source in, same output out.
type Extractor interface {
	Extract(source string) (*Output, error)
}

// numberPattern matches a numeric figure, optionally with thousands
// separators.
var numberPattern = regexp.MustCompile(`\d[\d,]*`)

// Confidence penalties. Extraction starts at full confidence and each
// observed gap subtracts from it; the floor is zero.
const (
	penaltyNoRules      = 0.5  // severe: nothing to target
	penaltyFewRules     = 0.15 // moderate: only one size tier observed
	penaltyNoThresholds = 0.05 // minor: no numeric anchors
	penaltyRoleLoss     = 0.1  // a mentioned role fell out of every rule
)

// TextExtractor is the default free-text extractor. It applies the
// "extract, never assume" discipline: it only emits what the source states
// and surfaces everything else as warnings and reduced confidence.
type TextExtractor struct {
	vocab *Vocabulary
}

// NewTextExtractor creates an extractor with the given vocabulary, or the
// default vocabulary when nil.
func NewTextExtractor(vocab *Vocabulary) *TextExtractor {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &TextExtractor{vocab: vocab}
}

// Extract implements Extractor.
func (e *TextExtractor) Extract(source string) (*Output, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("empty policy source")
	}

	sentences := splitSentences(source)
	ipr := &truth.IPR{}

	// Roles actually attached to a rule, and every role mentioned anywhere,
	// both in first-seen order for deterministic output.
	var contextOrder []truth.SizeContext
	rolesByContext := make(map[truth.SizeContext][]string)
	var mentioned []string
	mentionedSet := make(map[string]bool)

	seenThresholds := make(map[string]bool)

	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)

		for _, th := range e.extractThresholds(lower) {
			key := fmt.Sprintf("%v|%s", th.Value, th.Comparison)
			if !seenThresholds[key] {
				seenThresholds[key] = true
				ipr.Thresholds = append(ipr.Thresholds, th)
			}
		}

		roleSpans := e.matchRoleSpans(sentence)
		for _, rs := range roleSpans {
			if !mentionedSet[rs.role] {
				mentionedSet[rs.role] = true
				mentioned = append(mentioned, rs.role)
			}
		}

		if e.hasCue(lower, e.vocab.ExclusionCues) {
			// Exclusion sentences contribute a skip rule, not targets.
			ipr.SkipRules = append(ipr.SkipRules, strings.TrimSpace(sentence))
			continue
		}

		if e.hasCue(lower, e.vocab.UncertaintyCues) {
			// Copy the stated behavior verbatim; never paraphrase it.
			ipr.Uncertainty = append(ipr.Uncertainty, strings.TrimSpace(sentence))
		}

		if len(roleSpans) == 0 {
			continue
		}
		cues := e.sizeCueSpans(lower)
		for _, rs := range roleSpans {
			ctx := nearestContext(cues, rs.start)
			if _, seen := rolesByContext[ctx]; !seen {
				contextOrder = append(contextOrder, ctx)
			}
			if !containsString(rolesByContext[ctx], rs.role) {
				rolesByContext[ctx] = append(rolesByContext[ctx], rs.role)
			}
		}
	}

	// One rule per size context actually observed. Tiers the text never
	// mentioned get no rule, and there is no default role list.
	for _, ctx := range contextOrder {
		band := e.vocab.SizeBands[ctx]
		ipr.TargetRoles = append(ipr.TargetRoles, truth.TargetRoleRule{
			Size:         ctx,
			MinHeadcount: band.Min,
			MaxHeadcount: band.Max,
			Titles:       rolesByContext[ctx],
		})
	}

	return e.score(ipr, mentioned), nil
}

// score computes confidence and warnings for a finished extraction.
func (e *TextExtractor) score(ipr *truth.IPR, mentioned []string) *Output {
	out := &Output{IPR: ipr, Confidence: 1.0}

	if len(ipr.TargetRoles) == 0 {
		out.Confidence -= penaltyNoRules
		out.Warnings = append(out.Warnings, "no target-role rules could be extracted from the source text")
	} else if len(ipr.TargetRoles) < 2 {
		out.Confidence -= penaltyFewRules
		out.Warnings = append(out.Warnings, "only one target-role rule extracted; review whether the policy covers all size tiers")
	}

	if len(ipr.Thresholds) == 0 {
		out.Confidence -= penaltyNoThresholds
		out.Warnings = append(out.Warnings, "no numeric thresholds extracted from the source text")
	}

	attached := make(map[string]bool)
	for _, r := range ipr.Roles() {
		attached[r] = true
	}
	var lost []string
	for _, r := range mentioned {
		if !attached[r] {
			lost = append(lost, r)
		}
	}
	if len(lost) > 0 {
		out.Confidence -= penaltyRoleLoss
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("role(s) mentioned in source but not attached to any rule: %s", strings.Join(lost, ", ")))
	}

	if out.Confidence < 0 {
		out.Confidence = 0
	}
	return out
}

// extractThresholds finds explicit numeric thresholds with a stated
// comparison direction in a lowercased sentence. Figures without a
// direction cue are not thresholds and are left alone.
func (e *TextExtractor) extractThresholds(lower string) []truth.Threshold {
	var out []truth.Threshold
	for _, loc := range numberPattern.FindAllStringIndex(lower, -1) {
		raw := strings.ReplaceAll(lower[loc[0]:loc[1]], ",", "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}

		before := lower[:loc[0]]
		after := lower[loc[1]:]

		var cmp truth.Comparison
		switch {
		case hasSuffixCue(before, "under", "below", "fewer than", "less than"):
			cmp = truth.CompareLT
		case strings.HasPrefix(after, "+"),
			hasPrefixCue(after, "or more", "and up", "and above", "or larger"),
			hasSuffixCue(before, "at least", "over", "more than", "minimum of"):
			cmp = truth.CompareGTE
		default:
			continue
		}

		out = append(out, truth.Threshold{
			Field:      e.thresholdField(lower),
			Comparison: cmp,
			Value:      value,
		})
	}
	return out
}

// thresholdField guesses which field a sentence's figure refers to.
// Headcount is the default: the extraction domain is company sizing.
func (e *TextExtractor) thresholdField(lower string) string {
	if strings.Contains(lower, "revenue") || strings.Contains(lower, "arr") {
		return "revenue"
	}
	return "headcount"
}

// roleSpan is one matched vocabulary role and where its first occurrence
// starts in the sentence.
type roleSpan struct {
	role  string
	start int
}

// matchRoles finds vocabulary roles in a sentence, longest title first so
// compound titles win over their substrings. Matched spans are consumed.
func (e *TextExtractor) matchRoles(sentence string) []string {
	spans := e.matchRoleSpans(sentence)
	var found []string
	for _, s := range spans {
		found = append(found, s.role)
	}
	return found
}

// matchRoleSpans is matchRoles with the position of each role's first
// occurrence, for nearest-cue context attribution.
func (e *TextExtractor) matchRoleSpans(sentence string) []roleSpan {
	lower := strings.ToLower(sentence)
	consumed := make([]bool, len(lower))
	var found []roleSpan
	seen := make(map[string]bool)

	for _, role := range e.rolesByLength() {
		roleLower := strings.ToLower(role)
		idx := 0
		for {
			pos := strings.Index(lower[idx:], roleLower)
			if pos < 0 {
				break
			}
			start := idx + pos
			end := start + len(roleLower)
			idx = end
			if !wordBounded(lower, start, end) || spanConsumed(consumed, start, end) {
				continue
			}
			for i := start; i < end; i++ {
				consumed[i] = true
			}
			if !seen[role] {
				seen[role] = true
				found = append(found, roleSpan{role: role, start: start})
			}
		}
	}
	return found
}

// rolesByLength returns vocabulary roles sorted longest first, stable for
// equal lengths.
func (e *TextExtractor) rolesByLength() []string {
	roles := make([]string, len(e.vocab.Roles))
	copy(roles, e.vocab.Roles)
	for i := 1; i < len(roles); i++ {
		for j := i; j > 0 && len(roles[j]) > len(roles[j-1]); j-- {
			roles[j], roles[j-1] = roles[j-1], roles[j]
		}
	}
	return roles
}

// cueSpan is one size-cue occurrence in a sentence.
type cueSpan struct {
	start int
	ctx   truth.SizeContext
}

// sizeCueSpans finds every size-cue occurrence in a lowercased sentence,
// ordered by position so attribution is independent of map iteration.
func (e *TextExtractor) sizeCueSpans(lower string) []cueSpan {
	var spans []cueSpan
	for cue, ctx := range e.vocab.SizeCues {
		idx := 0
		for {
			pos := strings.Index(lower[idx:], cue)
			if pos < 0 {
				break
			}
			start := idx + pos
			end := start + len(cue)
			idx = end
			if wordBounded(lower, start, end) {
				spans = append(spans, cueSpan{start: start, ctx: ctx})
			}
		}
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].ctx < spans[j].ctx
	})
	return spans
}

// nearestContext returns the size context of the cue nearest to pos. Ties
// go to the earlier cue; a sentence with no cues is unknown.
func nearestContext(cues []cueSpan, pos int) truth.SizeContext {
	best := truth.SizeUnknown
	bestDist := -1
	for _, c := range cues {
		dist := c.start - pos
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = c.ctx
		}
	}
	return best
}

func (e *TextExtractor) hasCue(lower string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

// splitSentences splits source text on sentence terminators and newlines.
func splitSentences(source string) []string {
	parts := strings.FieldsFunc(source, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n' || r == ';'
	})
	var out []string
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// hasSuffixCue reports whether any cue appears at the end of the text
// preceding a number, allowing trailing whitespace.
func hasSuffixCue(before string, cues ...string) bool {
	trimmed := strings.TrimRight(before, " \t")
	for _, cue := range cues {
		if strings.HasSuffix(trimmed, cue) {
			return true
		}
	}
	return false
}

// hasPrefixCue reports whether any cue appears at the start of the text
// following a number, allowing leading whitespace.
func hasPrefixCue(after string, cues ...string) bool {
	trimmed := strings.TrimLeft(after, " \t")
	for _, cue := range cues {
		if strings.HasPrefix(trimmed, cue) {
			return true
		}
	}
	return false
}

// wordBounded reports whether [start,end) sits on word boundaries.
func wordBounded(s string, start, end int) bool {
	if start > 0 && isWordChar(s[start-1]) {
		return false
	}
	if end < len(s) && isWordChar(s[end]) {
		return false
	}
	return true
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}

func spanConsumed(consumed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if consumed[i] {
			return true
		}
	}
	return false
}

// containsWord reports whether cue occurs in s as a whole word.
func containsWord(s, cue string) bool {
	idx := 0
	for {
		pos := strings.Index(s[idx:], cue)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(cue)
		if wordBounded(s, start, end) {
			return true
		}
		idx = end
	}
}

func containsString(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}
