package compiler

import (
	"fmt"
	"log/slog"

	"truthcore-hq/atlas/pkg/pdl/parser"
	"truthcore-hq/atlas/pkg/truth"
)

// Version identifies the compiler build recorded on every policy-text
// version it produces. Bump it whenever the lowering or extraction
// behavior changes.
const Version = "pdc-1.2.0"

// Compiler dispatches policy source to the right pipeline: deterministic
// PDL compilation for DSL source, vocabulary extraction for free text.
type Compiler struct {
	extractor Extractor
	logger    *slog.Logger
}

// New creates a compiler. A nil extractor gets the default text extractor.
func New(extractor Extractor, logger *slog.Logger) *Compiler {
	if extractor == nil {
		extractor = NewTextExtractor(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{
		extractor: extractor,
		logger:    logger.With("component", "compiler"),
	}
}

// Compile converts policy source into an Output. DSL source either
// compiles cleanly at full confidence or fails with the joined lint
// errors; free-text source always produces an Output whose confidence and
// warnings reflect how much the text actually stated.
func (c *Compiler) Compile(format truth.SourceFormat, source string) (*Output, error) {
	switch format {
	case truth.SourceFormatDSL:
		ipr, lintErrs := parser.Compile([]byte(source), "")
		if lintErrs.HasErrors() {
			c.logger.Warn("DSL compilation failed",
				"lint_errors", lintErrs.Count(),
			)
			return nil, lintErrs
		}
		return &Output{IPR: ipr, Confidence: 1.0}, nil

	case truth.SourceFormatText:
		out, err := c.extractor.Extract(source)
		if err != nil {
			return nil, fmt.Errorf("free-text extraction: %w", err)
		}
		c.logger.Info("free-text policy extracted",
			"confidence", out.Confidence,
			"warnings", len(out.Warnings),
			"rules", len(out.IPR.TargetRoles),
			"thresholds", len(out.IPR.Thresholds),
		)
		return out, nil

	default:
		return nil, fmt.Errorf("unknown source format %q", format)
	}
}
