// Package ast defines the abstract syntax tree for PDL, the policy
// definition language used to author enrichment policies in structured
// form. Every node records its source location so lint errors can point at
// the offending line.
package ast

import "fmt"

// Location identifies a position in a PDL source document.
type Location struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether the location carries a usable position.
func (l Location) IsValid() bool {
	return l.Line > 0
}

// String formats the location as file:line:column.
func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("line %d, column %d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Document is a parsed PDL policy document.
type Document struct {
	PDLVersion  string
	Name        string
	Description string

	Thresholds  []*ThresholdNode
	TargetRoles []*TargetRoleNode
	Skip        []string
	Uncertainty []string
	Notes       []string

	SourceFile string
	Location   Location
}

// ThresholdNode is one declared numeric threshold.
type ThresholdNode struct {
	Field      string
	Comparison string
	Value      float64
	Location   Location
}

// TargetRoleNode is one declared target-role tier.
type TargetRoleNode struct {
	Size         string
	MinHeadcount *int
	MaxHeadcount *int
	Titles       []string
	Location     Location
}
