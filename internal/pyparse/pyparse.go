// Package pyparse wraps tree-sitter parsing of Python source.
//
// Every shrink or scan invocation parses its file once; the grammar is a
// process-wide read-only singleton, parsers are per-call (a tree-sitter
// parser is not safe for concurrent use).
package pyparse

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	akerr "akaidoo/internal/errors"
)

// Node type names of the Python grammar this package cares about.
const (
	NodeClassDefinition     = "class_definition"
	NodeFunctionDefinition  = "function_definition"
	NodeDecoratedDefinition = "decorated_definition"
	NodeExpressionStatement = "expression_statement"
	NodeAssignment          = "assignment"
	NodeImportStatement     = "import_statement"
	NodeImportFromStatement = "import_from_statement"
	NodeIdentifier          = "identifier"
	NodeAttribute           = "attribute"
	NodeCall                = "call"
	NodeString              = "string"
	NodeList                = "list"
	NodeKeywordArgument     = "keyword_argument"
	NodeDictionary          = "dictionary"
	NodePair                = "pair"
	NodeTrue                = "true"
	NodeFalse               = "false"
)

var pythonLanguage = python.GetLanguage()

// Parser parses Python source into a concrete syntax tree.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a parser bound to the Python grammar.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(pythonLanguage)
	return &Parser{parser: p}
}

// Parse parses source and returns the root node of the tree.
func (p *Parser) Parse(ctx context.Context, source []byte) (*sitter.Node, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, akerr.New(akerr.ParseFailed, "source does not parse", err)
	}
	return tree.RootNode(), nil
}

// Text returns the source text covered by node.
func Text(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// StringValue returns the unquoted value of a string literal node.
func StringValue(node *sitter.Node, source []byte) string {
	return strings.Trim(Text(node, source), "'\"")
}

// StartLine returns the 1-indexed first line of node.
func StartLine(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// EndLine returns the 1-indexed last line of node.
func EndLine(node *sitter.Node) int {
	return int(node.EndPoint().Row) + 1
}

// AssignmentOf unwraps an expression_statement into its assignment child,
// or nil when the statement is anything else (docstring, call, ...).
func AssignmentOf(node *sitter.Node) *sitter.Node {
	if node == nil || node.Type() != NodeExpressionStatement {
		return nil
	}
	child := node.Child(0)
	if child == nil || child.Type() != NodeAssignment {
		return nil
	}
	return child
}
