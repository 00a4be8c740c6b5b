package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"truthcore-hq/atlas/pkg/pdl/ast"
	pdlErrors "truthcore-hq/atlas/pkg/pdl/errors"
)

// knownComparisons and knownSizes are the vocabulary the builder enforces.
var (
	knownComparisons = []string{"gte", "lt"}
	knownFields      = []string{"headcount", "revenue"}
	knownSizes       = []string{"large", "mid", "small", "unknown"}
)

// builder constructs AST nodes from the intermediate YAML document,
// accumulating structural errors instead of stopping at the first.
type builder struct {
	sourcePath string
	errors     *pdlErrors.ErrorList
}

func newBuilder(sourcePath string) *builder {
	return &builder{
		sourcePath: sourcePath,
		errors:     pdlErrors.NewErrorList(),
	}
}

// buildDocument transforms a yamlDocument into an ast.Document.
func (b *builder) buildDocument(yd *yamlDocument) (*ast.Document, error) {
	doc := &ast.Document{
		PDLVersion:  yd.PDLVersion,
		Name:        yd.Name,
		Description: yd.Description,
		Skip:        yd.Skip,
		Uncertainty: yd.Uncertainty,
		Notes:       yd.Notes,
		SourceFile:  b.sourcePath,
		Location:    ast.Location{File: b.sourcePath, Line: 1, Column: 1},
	}

	if strings.TrimSpace(yd.PDLVersion) == "" {
		b.errors.AddErrorWithSuggestion(pdlErrors.ErrorTypeStructural,
			"missing required field 'pdl_version'", doc.Location,
			`add pdl_version: "1.0" at the top of the document`)
	}
	if strings.TrimSpace(yd.Name) == "" {
		b.errors.AddError(pdlErrors.ErrorTypeStructural,
			"missing required field 'name'", doc.Location)
	}
	if len(yd.TargetRoles) == 0 {
		b.errors.AddError(pdlErrors.ErrorTypeStructural,
			"at least one target_roles entry is required", doc.Location)
	}

	for i, node := range yd.Thresholds {
		if th := b.buildThreshold(&node, i); th != nil {
			doc.Thresholds = append(doc.Thresholds, th)
		}
	}
	for i, node := range yd.TargetRoles {
		if tr := b.buildTargetRole(&node, i); tr != nil {
			doc.TargetRoles = append(doc.TargetRoles, tr)
		}
	}

	if b.errors.HasErrors() {
		return nil, b.errors
	}
	return doc, nil
}

// buildThreshold decodes and checks one thresholds entry.
func (b *builder) buildThreshold(node *yaml.Node, index int) *ast.ThresholdNode {
	loc := b.location(node)
	var yt yamlThreshold
	if err := node.Decode(&yt); err != nil {
		b.errors.AddError(pdlErrors.ErrorTypeStructural,
			fmt.Sprintf("invalid thresholds entry at index %d: %v", index, err), loc)
		return nil
	}

	th := &ast.ThresholdNode{
		Field:      yt.Field,
		Comparison: yt.Comparison,
		Value:      yt.Value,
		Location:   loc,
	}

	if !contains(knownFields, yt.Field) {
		b.errors.AddErrorWithSuggestion(pdlErrors.ErrorTypeSemantic,
			fmt.Sprintf("thresholds[%d]: unknown field %q", index, yt.Field), loc,
			fmt.Sprintf("known fields: %s", strings.Join(knownFields, ", ")))
	}
	if !contains(knownComparisons, yt.Comparison) {
		b.errors.AddErrorWithSuggestion(pdlErrors.ErrorTypeSemantic,
			fmt.Sprintf("thresholds[%d]: unknown comparison %q", index, yt.Comparison), loc,
			"use 'gte' or 'lt'")
	}
	if yt.Value < 0 {
		b.errors.AddError(pdlErrors.ErrorTypeStructural,
			fmt.Sprintf("thresholds[%d]: value must be non-negative, got %v", index, yt.Value), loc)
	}

	return th
}

// buildTargetRole decodes and checks one target_roles entry.
func (b *builder) buildTargetRole(node *yaml.Node, index int) *ast.TargetRoleNode {
	loc := b.location(node)
	var yr yamlTargetRole
	if err := node.Decode(&yr); err != nil {
		b.errors.AddError(pdlErrors.ErrorTypeStructural,
			fmt.Sprintf("invalid target_roles entry at index %d: %v", index, err), loc)
		return nil
	}

	tr := &ast.TargetRoleNode{
		Size:         yr.Size,
		MinHeadcount: yr.MinHeadcount,
		MaxHeadcount: yr.MaxHeadcount,
		Titles:       yr.Titles,
		Location:     loc,
	}

	if !contains(knownSizes, yr.Size) {
		b.errors.AddErrorWithSuggestion(pdlErrors.ErrorTypeSemantic,
			fmt.Sprintf("target_roles[%d]: unknown size context %q", index, yr.Size), loc,
			fmt.Sprintf("known sizes: %s", strings.Join(knownSizes, ", ")))
	}
	if len(yr.Titles) == 0 {
		b.errors.AddError(pdlErrors.ErrorTypeStructural,
			fmt.Sprintf("target_roles[%d]: titles must be non-empty", index), loc)
	}
	for j, title := range yr.Titles {
		if strings.TrimSpace(title) == "" {
			b.errors.AddError(pdlErrors.ErrorTypeStructural,
				fmt.Sprintf("target_roles[%d].titles[%d]: title must be non-empty", index, j), loc)
		}
	}
	if yr.MinHeadcount != nil && yr.MaxHeadcount != nil && *yr.MinHeadcount > *yr.MaxHeadcount {
		b.errors.AddError(pdlErrors.ErrorTypeStructural,
			fmt.Sprintf("target_roles[%d]: min_headcount %d exceeds max_headcount %d",
				index, *yr.MinHeadcount, *yr.MaxHeadcount), loc)
	}

	return tr
}

// location extracts the source position of a YAML node.
func (b *builder) location(node *yaml.Node) ast.Location {
	return ast.Location{
		File:   b.sourcePath,
		Line:   node.Line,
		Column: node.Column,
	}
}

func contains(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}
