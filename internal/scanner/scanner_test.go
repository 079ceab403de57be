package scanner

import (
	"context"
	"testing"
)

func mustScan(t *testing.T, source string) *FileScan {
	t.Helper()
	scan, err := ScanSource(context.Background(), []byte(source))
	if err != nil {
		t.Fatalf("ScanSource failed: %v", err)
	}
	return scan
}

func TestModelNameFromNameMarker(t *testing.T) {
	scan := mustScan(t, `class SaleOrder(models.Model):
    _name = 'sale.order'

    name = fields.Char()
`)
	if len(scan.Classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(scan.Classes))
	}
	c := scan.Classes[0]
	if c.Canonical != "sale.order" {
		t.Errorf("canonical = %q, want sale.order", c.Canonical)
	}
	if len(c.Names) != 1 {
		t.Errorf("names = %v, want one entry", c.Names)
	}
}

func TestModelNameFromInheritString(t *testing.T) {
	scan := mustScan(t, `class SaleOrder(models.Model):
    _inherit = 'sale.order'
`)
	if got := scan.Classes[0].Canonical; got != "sale.order" {
		t.Errorf("canonical = %q, want sale.order", got)
	}
}

func TestModelNamesFromInheritList(t *testing.T) {
	scan := mustScan(t, `class Mixin(models.Model):
    _inherit = ['mail.thread', 'mail.activity.mixin']
`)
	c := scan.Classes[0]
	if len(c.Names) != 2 {
		t.Fatalf("names = %v, want 2 entries", c.Names)
	}
	if c.Names[0] != "mail.thread" || c.Names[1] != "mail.activity.mixin" {
		t.Errorf("names = %v", c.Names)
	}
}

func TestNameMarkerWinsOverInherit(t *testing.T) {
	scan := mustScan(t, `class SaleOrder(models.Model):
    _name = 'sale.order'
    _inherit = ['mail.thread']
`)
	c := scan.Classes[0]
	if c.Canonical != "sale.order" {
		t.Errorf("canonical = %q, want sale.order", c.Canonical)
	}
	// The inherits-from names still count for membership.
	if len(c.Names) != 2 || c.Names[1] != "mail.thread" {
		t.Errorf("names = %v, want [sale.order mail.thread]", c.Names)
	}
	if _, ok := scan.Stats["mail.thread"]; ok {
		t.Error("stats must accumulate under the canonical name only")
	}
}

func TestClassWithoutMarkersDeclaresNothing(t *testing.T) {
	scan := mustScan(t, `class Helper:
    def run(self):
        return 1
`)
	if scan.Classes[0].DeclaresModel() {
		t.Error("class without markers must declare no model")
	}
	if len(scan.Stats) != 0 {
		t.Errorf("stats = %v, want empty", scan.Stats)
	}
}

func firstBodyStatement(t *testing.T, source string) (*FileScan, FieldInfo) {
	t.Helper()
	scan := mustScan(t, source)
	body := scan.Classes[0].Node.ChildByFieldName("body")
	if body == nil {
		t.Fatal("no class body")
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		if child != nil && child.Type() == "expression_statement" {
			return scan, FieldInfoFrom(child, scan.Source)
		}
	}
	t.Fatal("no expression statement in class body")
	return nil, FieldInfo{}
}

func TestFieldClassificationPlain(t *testing.T) {
	_, fi := firstBodyStatement(t, `class M(models.Model):
    name = fields.Char(string="Name")
`)
	if !fi.IsField {
		t.Fatal("expected a field")
	}
	if fi.Type != "Char" {
		t.Errorf("type = %q, want Char", fi.Type)
	}
	if fi.Comodel != "" {
		t.Errorf("comodel = %q, want empty", fi.Comodel)
	}
}

func TestFieldClassificationRelational(t *testing.T) {
	_, fi := firstBodyStatement(t, `class M(models.Model):
    partner_id = fields.Many2one('res.partner', help="Link")
`)
	if !fi.IsField || fi.Comodel != "res.partner" {
		t.Errorf("comodel = %q, want res.partner", fi.Comodel)
	}
}

func TestFieldComodelFromKeyword(t *testing.T) {
	_, fi := firstBodyStatement(t, `class M(models.Model):
    partner_id = fields.Many2one(comodel_name='res.partner')
`)
	if fi.Comodel != "res.partner" {
		t.Errorf("comodel = %q, want res.partner", fi.Comodel)
	}
}

func TestFieldComputedComodelNotRecorded(t *testing.T) {
	_, fi := firstBodyStatement(t, `class M(models.Model):
    thing_id = fields.Many2one(COMODEL)
`)
	if !fi.IsField {
		t.Fatal("expected a field")
	}
	if fi.Comodel != "" {
		t.Errorf("comodel = %q, want empty for a variable comodel", fi.Comodel)
	}
}

func TestFieldComputeAndStore(t *testing.T) {
	_, fi := firstBodyStatement(t, `class M(models.Model):
    total = fields.Float(compute='_compute_total', store=True)
`)
	if fi.Compute != "_compute_total" {
		t.Errorf("compute = %q, want _compute_total", fi.Compute)
	}
	if fi.Store == nil || !*fi.Store {
		t.Errorf("store = %v, want true", fi.Store)
	}
}

func TestFieldStoreNonLiteralLeftUnset(t *testing.T) {
	_, fi := firstBodyStatement(t, `class M(models.Model):
    total = fields.Float(store=SHOULD_STORE)
`)
	if fi.Store != nil {
		t.Errorf("store = %v, want unset for a non-literal value", *fi.Store)
	}
}

func TestUnderscoreAssignmentIsNeverAField(t *testing.T) {
	_, fi := firstBodyStatement(t, `class M(models.Model):
    _name = fields.Char()
`)
	if fi.IsField {
		t.Error("underscore-prefixed assignment classified as field")
	}
}

func TestUnrecognizedNamespaceIsNotAField(t *testing.T) {
	_, fi := firstBodyStatement(t, `class M(models.Model):
    name = custom.Char()
`)
	if fi.IsField {
		t.Error("unrecognized namespace classified as field")
	}
}

func TestStatsCountsAndAccumulation(t *testing.T) {
	scan := mustScan(t, `class A(models.Model):
    _name = 'x.y'

    name = fields.Char()
    code = fields.Char()

    def one(self):
        return 1

    @api.depends('name')
    def two(self):
        return 2


class B(models.Model):
    _inherit = 'x.y'

    extra = fields.Char()
`)
	stats := scan.Stats["x.y"]
	if stats == nil {
		t.Fatal("no stats for x.y")
	}
	if stats.FieldCount != 3 {
		t.Errorf("fields = %d, want 3", stats.FieldCount)
	}
	if stats.MethodCount != 2 {
		t.Errorf("methods = %d, want 2 (decorated counts once)", stats.MethodCount)
	}
	if stats.LineCount == 0 {
		t.Error("line count must accumulate")
	}
}

func TestScoreMonotonic(t *testing.T) {
	base := ModelStats{FieldCount: 2, MethodCount: 1, LineCount: 15}
	score := base.Score()

	withField := base
	withField.FieldCount++
	if withField.Score() < score {
		t.Error("adding a field decreased the score")
	}

	withMethod := base
	withMethod.MethodCount++
	if withMethod.Score() < score {
		t.Error("adding a method decreased the score")
	}

	withLines := base
	withLines.LineCount += 10
	if withLines.Score() < score {
		t.Error("adding lines decreased the score")
	}
}

func TestScoreFormula(t *testing.T) {
	s := ModelStats{FieldCount: 4, MethodCount: 3, LineCount: 57}
	// 4 + 3*3 + 2*(57/10) = 4 + 9 + 10
	if got := s.Score(); got != 23 {
		t.Errorf("score = %d, want 23", got)
	}
}
