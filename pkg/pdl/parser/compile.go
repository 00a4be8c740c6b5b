package parser

import (
	"truthcore-hq/atlas/pkg/pdl/ast"
	pdlErrors "truthcore-hq/atlas/pkg/pdl/errors"
	"truthcore-hq/atlas/pkg/truth"
)

// Lint parses and validates PDL source without compiling it. It returns
// the accumulated error list, which is empty for a clean document. The
// same lint runs at interpretation time and again at approval time as part
// of the approval contract.
func Lint(source []byte, sourcePath string) *pdlErrors.ErrorList {
	_, err := NewParser().ParseBytes(source, sourcePath)
	if err == nil {
		return pdlErrors.NewErrorList()
	}
	return asErrorList(err, sourcePath)
}

// LintFile lints a PDL file on disk, including file-access errors in the
// result.
func LintFile(path string) *pdlErrors.ErrorList {
	_, err := NewParser().Parse(path)
	if err == nil {
		return pdlErrors.NewErrorList()
	}
	return asErrorList(err, path)
}

// Compile parses, lints, and deterministically lowers PDL source into an
// IPR. It returns either a compiled IPR with zero errors, or the lint
// error list and no IPR — never both.
func Compile(source []byte, sourcePath string) (*truth.IPR, *pdlErrors.ErrorList) {
	doc, err := NewParser().ParseBytes(source, sourcePath)
	if err != nil {
		return nil, asErrorList(err, sourcePath)
	}
	return lower(doc), pdlErrors.NewErrorList()
}

// lower converts a validated AST into the IPR. The mapping is positional
// and total: every declared node appears in the output, nothing is added.
func lower(doc *ast.Document) *truth.IPR {
	ipr := &truth.IPR{
		SkipRules:   doc.Skip,
		Uncertainty: doc.Uncertainty,
		Notes:       doc.Notes,
	}
	for _, th := range doc.Thresholds {
		ipr.Thresholds = append(ipr.Thresholds, truth.Threshold{
			Field:      th.Field,
			Comparison: truth.Comparison(th.Comparison),
			Value:      th.Value,
		})
	}
	for _, tr := range doc.TargetRoles {
		ipr.TargetRoles = append(ipr.TargetRoles, truth.TargetRoleRule{
			Size:         truth.SizeContext(tr.Size),
			MinHeadcount: tr.MinHeadcount,
			MaxHeadcount: tr.MaxHeadcount,
			Titles:       tr.Titles,
		})
	}
	return ipr
}

func asErrorList(err error, sourcePath string) *pdlErrors.ErrorList {
	if list, ok := err.(*pdlErrors.ErrorList); ok {
		return list
	}
	list := pdlErrors.NewErrorList()
	if single, ok := err.(*pdlErrors.Error); ok {
		list.Add(single)
	} else {
		list.AddError(pdlErrors.ErrorTypeIO, err.Error(), ast.Location{File: sourcePath})
	}
	return list
}
