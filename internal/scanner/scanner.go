// Package scanner extracts the declarative structure of Odoo model files:
// which models a class declares, how its body members classify (field,
// method, other), and per-model size statistics used for relevance scoring.
package scanner

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"akaidoo/internal/pyparse"
)

// Markers a class uses to declare model identity.
const (
	nameMarker    = "_name"
	inheritMarker = "_inherit"
)

// relationalFactories are the field factories that reference another model.
var relationalFactories = map[string]bool{
	"Many2one":  true,
	"One2many":  true,
	"Many2many": true,
}

// fieldNamespaces are the two call targets recognized as field factories.
var fieldNamespaces = map[string]bool{
	"fields": true,
	"models": true,
}

// FieldInfo describes one classified class-body assignment.
type FieldInfo struct {
	Name    string
	Type    string // factory name, e.g. "Char", "Many2one"
	Comodel string // target model of a relational field, if literal
	Compute string // compute method name, if given as a string literal
	Store   *bool  // store= flag, only when a true/false literal
	IsField bool
}

// ModelStats aggregates structural size per model name within one file.
type ModelStats struct {
	FieldCount  int
	MethodCount int
	LineCount   int
}

// Score is the relevance heuristic over a model's structure. It is
// monotonic non-decreasing in fields, methods and lines; the threshold it
// is compared against belongs to the caller.
func (s ModelStats) Score() int {
	return s.FieldCount + 3*s.MethodCount + 2*(s.LineCount/10)
}

// ClassInfo describes one top-level class declaration.
type ClassInfo struct {
	Node      *sitter.Node
	Names     []string // all declared model names, canonical first
	Canonical string   // empty when the class declares no model
	StartLine int
	EndLine   int
}

// DeclaresModel reports whether the class carries a _name or _inherit marker.
func (c ClassInfo) DeclaresModel() bool {
	return len(c.Names) > 0
}

// FileScan is the result of scanning one file.
type FileScan struct {
	Root    *sitter.Node
	Source  []byte
	Classes []ClassInfo
	Stats   map[string]*ModelStats // keyed by canonical model name
}

// ModelNames returns every model name declared anywhere in the file.
func (f *FileScan) ModelNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, c := range f.Classes {
		for _, n := range c.Names {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}

// ScanSource parses source and scans its top-level classes.
func ScanSource(ctx context.Context, source []byte) (*FileScan, error) {
	root, err := pyparse.NewParser().Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	return ScanTree(root, source), nil
}

// ScanTree scans an already-parsed tree. Only direct children of the root
// are considered; nested classes are not model declarations in this domain.
func ScanTree(root *sitter.Node, source []byte) *FileScan {
	scan := &FileScan{
		Root:   root,
		Source: source,
		Stats:  map[string]*ModelStats{},
	}

	for i := 0; i < int(root.ChildCount()); i++ {
		node := root.Child(i)
		if node == nil || node.Type() != pyparse.NodeClassDefinition {
			continue
		}
		body := node.ChildByFieldName("body")
		if body == nil {
			continue
		}

		info := ClassInfo{
			Node:      node,
			Names:     ModelNamesFromBody(body, source),
			StartLine: pyparse.StartLine(node),
			EndLine:   pyparse.EndLine(node),
		}
		if len(info.Names) > 0 {
			info.Canonical = info.Names[0]
		}
		scan.Classes = append(scan.Classes, info)

		if info.Canonical == "" {
			continue
		}
		stats := scan.Stats[info.Canonical]
		if stats == nil {
			stats = &ModelStats{}
			scan.Stats[info.Canonical] = stats
		}
		fields, methods := countBodyMembers(body, source)
		stats.FieldCount += fields
		stats.MethodCount += methods
		stats.LineCount += pyparse.EndLine(body) - info.StartLine + 1
	}

	return scan
}

// ModelNamesFromBody extracts the model names a class body declares via its
// direct-child _name / _inherit assignments. The _name value comes first
// (it is the canonical name); _inherit may be a single string or a list.
func ModelNamesFromBody(body *sitter.Node, source []byte) []string {
	var primary string
	var inherited []string

	for i := 0; i < int(body.ChildCount()); i++ {
		assign := pyparse.AssignmentOf(body.Child(i))
		if assign == nil {
			continue
		}
		left := assign.ChildByFieldName("left")
		if left == nil || left.Type() != pyparse.NodeIdentifier {
			continue
		}
		right := assign.ChildByFieldName("right")
		if right == nil {
			continue
		}

		switch pyparse.Text(left, source) {
		case nameMarker:
			if primary == "" && right.Type() == pyparse.NodeString {
				primary = pyparse.StringValue(right, source)
			}
		case inheritMarker:
			if inherited != nil {
				continue
			}
			switch right.Type() {
			case pyparse.NodeString:
				inherited = []string{pyparse.StringValue(right, source)}
			case pyparse.NodeList:
				for j := 0; j < int(right.ChildCount()); j++ {
					el := right.Child(j)
					if el != nil && el.Type() == pyparse.NodeString {
						inherited = append(inherited, pyparse.StringValue(el, source))
					}
				}
			}
		}
	}

	var names []string
	seen := map[string]bool{}
	if primary != "" {
		names = append(names, primary)
		seen[primary] = true
	}
	for _, n := range inherited {
		if n != "" && !seen[n] {
			names = append(names, n)
			seen[n] = true
		}
	}
	return names
}

// FieldInfoFrom classifies one class-body statement. Anything that does not
// match the field shape exactly comes back with IsField false and is
// preserved verbatim by the shrinker; misclassification would silently
// destroy declarative code.
func FieldInfoFrom(node *sitter.Node, source []byte) FieldInfo {
	var info FieldInfo

	assign := pyparse.AssignmentOf(node)
	if assign == nil {
		return info
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Type() != pyparse.NodeIdentifier {
		return info
	}
	info.Name = pyparse.Text(left, source)
	if len(info.Name) > 0 && info.Name[0] == '_' {
		// Framework markers (_name, _inherit, _sql_constraints, ...) are
		// never fields.
		return info
	}

	right := assign.ChildByFieldName("right")
	if right == nil || right.Type() != pyparse.NodeCall {
		return info
	}
	fn := right.ChildByFieldName("function")
	if fn == nil || fn.Type() != pyparse.NodeAttribute {
		return info
	}
	obj := fn.ChildByFieldName("object")
	attr := fn.ChildByFieldName("attribute")
	if obj == nil || obj.Type() != pyparse.NodeIdentifier ||
		attr == nil || attr.Type() != pyparse.NodeIdentifier {
		return info
	}
	if !fieldNamespaces[pyparse.Text(obj, source)] {
		return info
	}

	info.IsField = true
	info.Type = pyparse.Text(attr, source)

	args := right.ChildByFieldName("arguments")
	if args == nil {
		return info
	}

	if relationalFactories[info.Type] {
		info.Comodel = positionalComodel(args, source)
	}

	for i := 0; i < int(args.ChildCount()); i++ {
		arg := args.Child(i)
		if arg == nil || arg.Type() != pyparse.NodeKeywordArgument {
			continue
		}
		key := arg.ChildByFieldName("name")
		val := arg.ChildByFieldName("value")
		if key == nil || val == nil {
			continue
		}
		switch pyparse.Text(key, source) {
		case "compute":
			if val.Type() == pyparse.NodeString {
				info.Compute = pyparse.StringValue(val, source)
			}
		case "store":
			switch val.Type() {
			case pyparse.NodeTrue:
				v := true
				info.Store = &v
			case pyparse.NodeFalse:
				v := false
				info.Store = &v
			}
		case "comodel_name":
			if val.Type() == pyparse.NodeString {
				info.Comodel = pyparse.StringValue(val, source)
			}
		}
	}

	return info
}

// positionalComodel finds the comodel in the first positional argument.
// A non-string first argument (variable, attribute, call, number) means the
// comodel is computed and no target name is recorded.
func positionalComodel(args *sitter.Node, source []byte) string {
	for i := 0; i < int(args.ChildCount()); i++ {
		arg := args.Child(i)
		if arg == nil {
			continue
		}
		switch arg.Type() {
		case pyparse.NodeString:
			return pyparse.StringValue(arg, source)
		case pyparse.NodeIdentifier, pyparse.NodeAttribute, pyparse.NodeCall,
			"integer", "float":
			return ""
		}
	}
	return ""
}

// countBodyMembers counts field and method declarations among the direct
// children of a class body. Decorated methods count once.
func countBodyMembers(body *sitter.Node, source []byte) (fields, methods int) {
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case pyparse.NodeFunctionDefinition, pyparse.NodeDecoratedDefinition:
			methods++
		case pyparse.NodeExpressionStatement:
			if FieldInfoFrom(child, source).IsField {
				fields++
			}
		}
	}
	return fields, methods
}
