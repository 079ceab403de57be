package addons

import (
	"context"
	"os"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"

	akerr "akaidoo/internal/errors"
	"akaidoo/internal/pyparse"
)

// ManifestFile is the declaration file every addon directory carries.
const ManifestFile = "__manifest__.py"

// Manifest is the subset of __manifest__.py akaidoo needs.
type Manifest struct {
	Name        string
	Summary     string
	Depends     []string
	Data        []string
	Installable bool
}

// ParseManifest extracts the relevant keys from manifest source. The file
// is a Python dict literal, so it goes through the same grammar as model
// files instead of a hand-written evaluator.
func ParseManifest(ctx context.Context, source []byte) (Manifest, error) {
	m := Manifest{Installable: true}

	root, err := pyparse.NewParser().Parse(ctx, source)
	if err != nil {
		return m, akerr.New(akerr.ManifestInvalid, "manifest does not parse", err)
	}
	dict := topLevelDict(root)
	if dict == nil {
		return m, akerr.Newf(akerr.ManifestInvalid, "manifest is not a dict literal")
	}

	for i := 0; i < int(dict.ChildCount()); i++ {
		pair := dict.Child(i)
		if pair == nil || pair.Type() != pyparse.NodePair {
			continue
		}
		key := pair.ChildByFieldName("key")
		val := pair.ChildByFieldName("value")
		if key == nil || val == nil || key.Type() != pyparse.NodeString {
			continue
		}
		switch pyparse.StringValue(key, source) {
		case "name":
			if val.Type() == pyparse.NodeString {
				m.Name = pyparse.StringValue(val, source)
			}
		case "summary":
			if val.Type() == pyparse.NodeString {
				m.Summary = pyparse.StringValue(val, source)
			}
		case "depends":
			m.Depends = stringList(val, source)
		case "data":
			m.Data = stringList(val, source)
		case "installable":
			if val.Type() == pyparse.NodeFalse {
				m.Installable = false
			}
		}
	}
	return m, nil
}

// ParseManifestFile reads and parses dir/__manifest__.py.
func ParseManifestFile(ctx context.Context, dir string) (Manifest, error) {
	source, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return Manifest{}, akerr.New(akerr.ManifestInvalid, "manifest not readable", err)
	}
	return ParseManifest(ctx, source)
}

func topLevelDict(root *sitter.Node) *sitter.Node {
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

func stringList(node *sitter.Node, source []byte) []string {
	if node.Type() != pyparse.NodeList {
		return nil
	}
	var items []string
	for i := 0; i < int(node.ChildCount()); i++ {
		el := node.Child(i)
		if el != nil && el.Type() == pyparse.NodeString {
			items = append(items, pyparse.StringValue(el, source))
		}
	}
	return items
}
