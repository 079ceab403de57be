// Package shrink reduces Odoo model source to a structural skeleton.
//
// The transformer walks a tree-sitter parse of one file and re-emits it
// with method bodies elided according to an aggressiveness level, while
// classes whose model name is in the caller's expand set are kept in full.
// Each call is a pure function of (source, Request); identical inputs
// produce byte-identical output.
//
// Shrinking is meant to run once per original source file. Feeding
// already-shrunk output back in is not idempotent in general (placeholder
// bodies survive a second soft pass but blank-line normalization differs)
// and is not supported.
package shrink

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"akaidoo/internal/pyparse"
	"akaidoo/internal/scanner"
)

const indentUnit = "    "

// Request controls one shrink invocation. The zero value shrinks at level
// none with every optional feature off; empty sets affect nothing.
type Request struct {
	Level Level

	// ExpandModels are model names emitted in full regardless of Level.
	ExpandModels map[string]bool

	// RelevantModels keeps a relational field's declaration line at level
	// extreme when its comodel is in the set; other fields are summarized.
	RelevantModels map[string]bool

	// PruneMethods holds "model.method" pairs whose bodies are cut even
	// inside an expanded class.
	PruneMethods map[string]bool

	// SkipImports drops import lines instead of passing them through.
	SkipImports bool

	// StripMetadata removes help= kwargs and trailing comments from
	// emitted declaration lines.
	StripMetadata bool

	// HeaderPath is the logical file path used for synthetic in-file
	// boundary markers when several expanded models share one file.
	HeaderPath string
}

// Result is the output of one shrink invocation.
type Result struct {
	// Text is the shrunken source, terminated by exactly one newline.
	Text string

	// ExpandedModels is the subset of the request's expand set that was
	// actually declared (and expanded) in this file.
	ExpandedModels map[string]bool

	// HeaderSuffix is a " (lines a-b)" annotation for the first expanded
	// class, set only when the file declares more than one model. Callers
	// attach it to the boundary header they prepend to the file.
	HeaderSuffix string
}

// Set builds a string set from its arguments, for Request fields.
func Set(items ...string) map[string]bool {
	s := make(map[string]bool, len(items))
	for _, it := range items {
		if it != "" {
			s[it] = true
		}
	}
	return s
}

// SetFromCSV builds a string set from a comma-separated list.
func SetFromCSV(csv string) map[string]bool {
	if csv == "" {
		return nil
	}
	return Set(strings.Split(csv, ",")...)
}

// ShrinkFile reads path and shrinks its content.
func ShrinkFile(ctx context.Context, path string, req Request) (Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Shrink(ctx, source, req)
}

// Shrink transforms source according to req.
func Shrink(ctx context.Context, source []byte, req Request) (Result, error) {
	scan, err := scanner.ScanSource(ctx, source)
	if err != nil {
		return Result{}, err
	}

	s := &shrinker{
		source:   source,
		req:      req,
		expanded: map[string]bool{},
	}
	for _, c := range scan.Classes {
		if c.DeclaresModel() {
			s.modelsCount++
		}
	}
	s.run(scan.Root)

	for len(s.parts) > 0 && s.parts[len(s.parts)-1] == "" {
		s.parts = s.parts[:len(s.parts)-1]
	}
	return Result{
		Text:           strings.Join(s.parts, "\n") + "\n",
		ExpandedModels: s.expanded,
		HeaderSuffix:   s.headerSuffix,
	}, nil
}

type shrinker struct {
	source []byte
	req    Request

	parts        []string
	expanded     map[string]bool
	modelsCount  int
	modelIndex   int
	headerSuffix string
}

func (s *shrinker) emit(part string) {
	s.parts = append(s.parts, part)
}

func (s *shrinker) text(node *sitter.Node) string {
	return pyparse.Text(node, s.source)
}

func (s *shrinker) run(root *sitter.Node) {
	for i := 0; i < int(root.ChildCount()); i++ {
		node := root.Child(i)
		if node == nil {
			continue
		}
		switch node.Type() {
		case pyparse.NodeImportStatement, pyparse.NodeImportFromStatement:
			if !s.req.SkipImports {
				s.emit(strings.TrimSpace(s.text(node)))
			}

		case pyparse.NodeClassDefinition:
			s.emitClass(node)

		case pyparse.NodeFunctionDefinition, pyparse.NodeDecoratedDefinition:
			s.emitFunction(node, "", nil, s.req.Level)
			if s.req.Level == LevelSoft {
				s.emit("")
			}

		case pyparse.NodeExpressionStatement:
			if pyparse.AssignmentOf(node) != nil {
				s.emit(s.cleanLine(strings.TrimSpace(s.text(node))))
			}

			// Anything else at top level (bare calls, conditionals, ...)
			// carries no declarative structure and is dropped.
		}
	}
}

func (s *shrinker) emitClass(node *sitter.Node) {
	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}

	names := scanner.ModelNamesFromBody(body, s.source)
	if len(names) > 0 {
		s.modelIndex++
	}

	shouldExpand := false
	for _, n := range names {
		if s.req.ExpandModels[n] {
			shouldExpand = true
			break
		}
	}

	hasPrunedMethods := false
	for _, n := range names {
		prefix := n + "."
		for pm := range s.req.PruneMethods {
			if strings.HasPrefix(pm, prefix) {
				hasPrunedMethods = true
				break
			}
		}
		if hasPrunedMethods {
			break
		}
	}

	if shouldExpand && !hasPrunedMethods {
		s.recordExpansion(names, node)
		s.emit(s.text(node))
		s.emit("")
		return
	}

	effective := s.req.Level
	if shouldExpand {
		// Expanded but with per-method prunes: show the class at level
		// none so only the pruned methods get cut.
		effective = LevelNone
		s.recordExpansion(names, node)
	}

	header := strings.TrimSpace(string(s.source[node.StartByte():body.StartByte()]))
	s.emit(header)

	var plainFields, computedFields []string

	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case pyparse.NodeExpressionStatement:
			if pyparse.AssignmentOf(child) == nil {
				continue
			}
			line := strings.TrimSpace(s.text(child))
			if effective == LevelNone {
				// Full fidelity for an otherwise fully shown model.
				s.emit(indentUnit + line)
				continue
			}
			fi := scanner.FieldInfoFrom(child, s.source)
			if fi.IsField && effective == LevelExtreme {
				if fi.Compute != "" {
					computedFields = append(computedFields, fmt.Sprintf("%s (%s)", fi.Name, fi.Compute))
				} else {
					plainFields = append(plainFields, fi.Name)
				}
				if fi.Comodel != "" && s.req.RelevantModels[fi.Comodel] {
					s.emit(indentUnit + stripFieldMetadata(line))
				}
				continue
			}
			s.emit(indentUnit + s.cleanLine(line))

		case pyparse.NodeFunctionDefinition, pyparse.NodeDecoratedDefinition:
			s.emitFunction(child, indentUnit, names, effective)
		}
	}

	if effective == LevelExtreme {
		if len(plainFields) > 0 {
			s.emit(indentUnit + "# Shrunk non computed fields: " + strings.Join(plainFields, ", "))
		}
		if len(computedFields) > 0 {
			s.emit(indentUnit + "# Shrunk computed_fields: " + strings.Join(computedFields, ", "))
		}
	}

	s.emit("")
}

// recordExpansion notes which requested models matched and, for files
// holding several models, tracks the line range of each expanded class so
// boundary headers stay attributable.
func (s *shrinker) recordExpansion(names []string, node *sitter.Node) {
	for _, n := range names {
		if s.req.ExpandModels[n] {
			s.expanded[n] = true
		}
	}

	if s.modelsCount <= 1 {
		return
	}
	lineRange := fmt.Sprintf(" (lines %d-%d)", pyparse.StartLine(node), pyparse.EndLine(node))
	if s.modelIndex == 1 {
		s.headerSuffix = lineRange
	} else if s.req.HeaderPath != "" {
		s.emit("")
		s.emit("# FILEPATH: " + s.req.HeaderPath + lineRange)
	}
}

// emitFunction handles one function or decorated function. A force-pruned
// method keeps its header over any level; hard and extreme drop the
// function outright; soft keeps the header over a placeholder body.
func (s *shrinker) emitFunction(node *sitter.Node, indent string, contextModels []string, level Level) {
	funcDef := node
	if node.Type() == pyparse.NodeDecoratedDefinition {
		def := node.ChildByFieldName("definition")
		if def == nil || def.Type() != pyparse.NodeFunctionDefinition {
			return
		}
		funcDef = def
	}

	pruned := false
	if len(contextModels) > 0 {
		if nameNode := funcDef.ChildByFieldName("name"); nameNode != nil {
			funcName := s.text(nameNode)
			for _, m := range contextModels {
				if s.req.PruneMethods[m+"."+funcName] {
					pruned = true
					break
				}
			}
		}
	}

	if (level == LevelHard || level == LevelExtreme) && !pruned {
		return
	}

	body := funcDef.ChildByFieldName("body")
	if body == nil {
		return
	}
	header := strings.TrimSpace(string(s.source[node.StartByte():body.StartByte()]))

	switch {
	case pruned:
		s.emitHeaderLines(header, indent)
		s.emit(indent + indentUnit + "pass  # pruned by request")
	case level == LevelSoft:
		s.emitHeaderLines(header, indent)
		s.emit(indent + indentUnit + "pass  # shrunk")
	default: // LevelNone
		s.emit(s.text(node))
	}
}

func (s *shrinker) emitHeaderLines(header, indent string) {
	for _, line := range strings.Split(header, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			s.emit(indent + trimmed)
		}
	}
}
