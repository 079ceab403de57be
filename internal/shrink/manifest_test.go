package shrink

import (
	"context"
	"strings"
	"testing"
)

const manifestSource = `{
    'name': 'Sale',
    'summary': 'Sells things',
    'author': 'Nobody In Particular',
    'website': 'https://example.com',
    'depends': ['base', 'mail'],
    'data': ['views/sale_views.xml', 'security/ir.model.access.csv'],
    'demo': ['demo/sale_demo.xml'],
    'post_init_hook': 'post_init',
    'installable': True,
}
`

func TestShrinkManifestKeepsEssentialKeys(t *testing.T) {
	out := ShrinkManifest(context.Background(), []byte(manifestSource), LevelHard)

	for _, want := range []string{
		"'name': 'Sale'",
		"'summary': 'Sells things'",
		"'depends': ['base', 'mail']",
		"'post_init_hook': 'post_init'",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("shrunken manifest missing %q:\n%s", want, out)
		}
	}
	for _, dropped := range []string{"author", "website", "demo", "installable"} {
		if strings.Contains(out, dropped) {
			t.Errorf("shrunken manifest kept dropped key %q:\n%s", dropped, out)
		}
	}
}

func TestShrinkManifestDataSurvivesSoftOnly(t *testing.T) {
	soft := ShrinkManifest(context.Background(), []byte(manifestSource), LevelSoft)
	if !strings.Contains(soft, "'data':") {
		t.Error("data key dropped at soft")
	}
	hard := ShrinkManifest(context.Background(), []byte(manifestSource), LevelHard)
	if strings.Contains(hard, "'data':") {
		t.Error("data key kept at hard")
	}
	extreme := ShrinkManifest(context.Background(), []byte(manifestSource), LevelExtreme)
	if strings.Contains(extreme, "'data':") {
		t.Error("data key kept at extreme")
	}
}

func TestShrinkManifestNonDictPassesThrough(t *testing.T) {
	source := "version = '1.0'\n"
	out := ShrinkManifest(context.Background(), []byte(source), LevelHard)
	if out != source {
		t.Errorf("non-dict input modified: %q", out)
	}
}

func TestShrinkManifestIsValidDictLiteral(t *testing.T) {
	out := ShrinkManifest(context.Background(), []byte(manifestSource), LevelHard)
	if !strings.HasPrefix(out, "{\n") || !strings.HasSuffix(out, "}\n") {
		t.Errorf("output is not a braced dict block:\n%s", out)
	}
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		if line == "{" || line == "}" {
			continue
		}
		if !strings.HasSuffix(line, ",") {
			t.Errorf("pair line missing trailing comma: %q", line)
		}
	}
}
