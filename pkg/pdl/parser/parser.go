// Package parser parses and lints PDL policy documents and compiles them
// deterministically into the intermediate policy representation.
package parser

import (
	"fmt"
	"os"

	"truthcore-hq/atlas/pkg/pdl/ast"
	pdlErrors "truthcore-hq/atlas/pkg/pdl/errors"
)

// Parser parses PDL source into abstract syntax trees.
type Parser struct {
	maxSourceSize int64
}

// NewParser creates a parser with default limits.
func NewParser() *Parser {
	return &Parser{
		maxSourceSize: 1 * 1024 * 1024, // 1MB
	}
}

// WithMaxSourceSize sets the maximum accepted source size in bytes.
func (p *Parser) WithMaxSourceSize(size int64) *Parser {
	p.maxSourceSize = size
	return p
}

// Parse parses a PDL file at the given path.
func (p *Parser) Parse(path string) (*ast.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &pdlErrors.Error{
			Type:     pdlErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("failed to access file: %v", err),
			Location: ast.Location{File: path},
		}
	}
	if info.Size() > p.maxSourceSize {
		return nil, &pdlErrors.Error{
			Type:     pdlErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("file size %d exceeds maximum %d bytes", info.Size(), p.maxSourceSize),
			Location: ast.Location{File: path},
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &pdlErrors.Error{
			Type:     pdlErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("failed to read file: %v", err),
			Location: ast.Location{File: path},
		}
	}
	return p.ParseBytes(data, path)
}

// ParseBytes parses PDL source from memory. sourcePath is used only for
// error locations and may be empty.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*ast.Document, error) {
	if int64(len(data)) > p.maxSourceSize {
		return nil, &pdlErrors.Error{
			Type:     pdlErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("source size %d exceeds maximum %d bytes", len(data), p.maxSourceSize),
			Location: ast.Location{File: sourcePath},
		}
	}

	yd, err := parseYAMLBytes(data)
	if err != nil {
		return nil, &pdlErrors.Error{
			Type:       pdlErrors.ErrorTypeSyntax,
			Message:    fmt.Sprintf("YAML parsing failed: %v", err),
			Location:   ast.Location{File: sourcePath, Line: 1},
			Suggestion: "check YAML syntax (indentation, colons, quotes)",
		}
	}

	return newBuilder(sourcePath).buildDocument(yd)
}
