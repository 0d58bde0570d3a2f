// Package tsparse parses TypeScript with tree-sitter and lowers the concrete
// syntax tree into package ast, resolving the targets of break and continue
// statements on the way.
package tsparse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/l3aro/tscfg/pkg/ast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ErrSyntax is returned when the source does not parse cleanly.
var ErrSyntax = errors.New("syntax error")

// Dialect selects the tree-sitter grammar.
type Dialect int

const (
	TypeScript Dialect = iota
	TSX
)

// DialectFor returns the dialect for a file name: TSX for .tsx and .jsx,
// TypeScript otherwise.
func DialectFor(path string) Dialect {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx", ".jsx":
		return TSX
	}
	return TypeScript
}

// Parser wraps a tree-sitter parser. It is not safe for concurrent use.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a parser for the given dialect.
func NewParser(d Dialect) *Parser {
	p := sitter.NewParser()
	if d == TSX {
		p.SetLanguage(tsx.GetLanguage())
	} else {
		p.SetLanguage(typescript.GetLanguage())
	}
	return &Parser{parser: p}
}

// Close releases the underlying tree-sitter parser.
func (p *Parser) Close() {
	p.parser.Close()
}

// Parse parses src and lowers it into a Program.
func (p *Parser) Parse(ctx context.Context, src []byte) (*ast.Program, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing source: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		if bad := firstError(root); bad != nil {
			pt := bad.StartPoint()
			return nil, fmt.Errorf("%w at line %d, column %d", ErrSyntax, pt.Row+1, pt.Column+1)
		}
		return nil, ErrSyntax
	}

	l := &lowerer{src: src}
	return l.program(root), nil
}

// ParseFile reads and parses the file at path, picking the dialect from its
// extension.
func ParseFile(ctx context.Context, path string) (*ast.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	p := NewParser(DialectFor(path))
	defer p.Close()

	prog, err := p.Parse(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// firstError returns the first ERROR or MISSING node under n in source order.
func firstError(n *sitter.Node) *sitter.Node {
	if n.IsMissing() || n.Type() == "ERROR" {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || !(c.HasError() || c.IsMissing()) {
			continue
		}
		if bad := firstError(c); bad != nil {
			return bad
		}
	}
	return nil
}
