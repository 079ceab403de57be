package shrink

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"akaidoo/internal/pyparse"
)

// manifestKeepKeys are the __manifest__.py entries that matter for
// understanding an addon: identity, dependency edges and lifecycle hooks.
var manifestKeepKeys = map[string]bool{
	"name":                  true,
	"summary":               true,
	"depends":               true,
	"external_dependencies": true,
	"pre_init_hook":         true,
	"post_init_hook":        true,
	"uninstall_hook":        true,
}

// ShrinkManifest reduces a __manifest__.py to its essential keys. The data
// file list survives at levels none and soft only. Anything that does not
// parse to a dict literal is returned unchanged.
func ShrinkManifest(ctx context.Context, source []byte, level Level) string {
	root, err := pyparse.NewParser().Parse(ctx, source)
	if err != nil {
		return string(source)
	}
	dict := manifestDict(root)
	if dict == nil {
		return string(source)
	}

	keepData := level == LevelNone || level == LevelSoft

	var pairs []string
	for i := 0; i < int(dict.ChildCount()); i++ {
		pair := dict.Child(i)
		if pair == nil || pair.Type() != pyparse.NodePair {
			continue
		}
		key := pair.ChildByFieldName("key")
		if key == nil || key.Type() != pyparse.NodeString {
			continue
		}
		keyName := pyparse.StringValue(key, source)
		if !manifestKeepKeys[keyName] && !(keepData && keyName == "data") {
			continue
		}
		pairs = append(pairs, pyparse.Text(pair, source))
	}
	if pairs == nil {
		return string(source)
	}

	var b strings.Builder
	b.WriteString("{\n")
	for _, p := range pairs {
		b.WriteString(indentUnit)
		b.WriteString(p)
		b.WriteString(",\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// manifestDict locates the top-level dict literal of a manifest file.
func manifestDict(root *sitter.Node) *sitter.Node {
	for i := 0; i < int(root.ChildCount()); i++ {
		node := root.Child(i)
		if node == nil || node.Type() != pyparse.NodeExpressionStatement {
			continue
		}
		child := node.Child(0)
		if child != nil && child.Type() == pyparse.NodeDictionary {
			return child
		}
	}
	return nil
}
