package harvest

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"akaidoo/internal/logging"
	"akaidoo/internal/scanner"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const orderFile = `class SaleOrder(models.Model):
    _name = 'sale.order'

    name = fields.Char()
    partner_id = fields.Many2one('res.partner')

    def action_confirm(self):
        return True
`

const orderExtensionFile = `class SaleOrder(models.Model):
    _inherit = 'sale.order'

    note = fields.Text()
`

func TestRunAggregatesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeSource(t, dir, "sale_order.py", orderFile),
		writeSource(t, dir, "sale_order_ext.py", orderExtensionFile),
	}

	h := New(logging.Discard(), nil, 2)
	result, err := h.Run(context.Background(), files)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.FilesScanned != 2 {
		t.Errorf("filesScanned = %d, want 2", result.FilesScanned)
	}
	if result.RunID == "" {
		t.Error("run id is empty")
	}
	stats := result.Stats["sale.order"]
	if stats == nil {
		t.Fatal("no stats for sale.order")
	}
	if stats.FieldCount != 3 {
		t.Errorf("fields = %d, want 3 across both files", stats.FieldCount)
	}
	if stats.MethodCount != 1 {
		t.Errorf("methods = %d, want 1", stats.MethodCount)
	}
}

func TestRunRecordsFailuresWithoutAborting(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "ok.py", orderFile)
	missing := filepath.Join(dir, "does_not_exist.py")

	h := New(logging.Discard(), nil, 1)
	result, err := h.Run(context.Background(), []string{good, missing})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.FilesScanned != 1 {
		t.Errorf("filesScanned = %d, want 1", result.FilesScanned)
	}
	if !reflect.DeepEqual(result.Failed, []string{missing}) {
		t.Errorf("failed = %v", result.Failed)
	}
	if _, ok := result.Stats["sale.order"]; !ok {
		t.Error("good file's stats missing")
	}
}

func TestAutoExpandThreshold(t *testing.T) {
	result := &Result{Stats: Stats{}}
	result.Stats.add(map[string]scanner.ModelStats{
		"big.model":   {FieldCount: 20, MethodCount: 10},
		"small.model": {FieldCount: 1},
		"mid.model":   {FieldCount: 10, MethodCount: 7},
	})

	got := result.AutoExpand(30)
	if !reflect.DeepEqual(got, []string{"big.model", "mid.model"}) {
		t.Errorf("autoExpand = %v", got)
	}
}

func TestCacheHitOnSecondRun(t *testing.T) {
	dir := t.TempDir()
	file := writeSource(t, dir, "sale_order.py", orderFile)

	cache, err := OpenCache(filepath.Join(dir, ".akaidoo", "stats.db"), logging.Discard())
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	defer cache.Close()

	h := New(logging.Discard(), cache, 1)
	first, err := h.Run(context.Background(), []string{file})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHits != 0 {
		t.Errorf("first run cacheHits = %d, want 0", first.CacheHits)
	}

	second, err := h.Run(context.Background(), []string{file})
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheHits != 1 {
		t.Errorf("second run cacheHits = %d, want 1", second.CacheHits)
	}
	if !reflect.DeepEqual(first.Stats, second.Stats) {
		t.Error("cached stats differ from the scanned stats")
	}
}

func TestCacheMissAfterFileChange(t *testing.T) {
	dir := t.TempDir()
	file := writeSource(t, dir, "sale_order.py", orderFile)

	cache, err := OpenCache(filepath.Join(dir, ".akaidoo", "stats.db"), logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	h := New(logging.Discard(), cache, 1)
	if _, err := h.Run(context.Background(), []string{file}); err != nil {
		t.Fatal(err)
	}

	// Grow the file so size no longer matches the cached entry.
	writeSource(t, dir, "sale_order.py", orderFile+"\n    extra = fields.Char()\n")

	result, err := h.Run(context.Background(), []string{file})
	if err != nil {
		t.Fatal(err)
	}
	if result.CacheHits != 0 {
		t.Errorf("cacheHits = %d after file change, want 0", result.CacheHits)
	}
	if result.Stats["sale.order"].FieldCount != 3 {
		t.Errorf("fields = %d, want the rescanned value 3", result.Stats["sale.order"].FieldCount)
	}
}
