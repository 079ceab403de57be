package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	akerr "akaidoo/internal/errors"
	"akaidoo/internal/shrink"
)

func writeProfileFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndGet(t *testing.T) {
	path := writeProfileFile(t, `
[profiles.review]
level = "hard"
expand = ["sale.order", "res.partner"]
prune = ["sale.order.action_cancel"]
relevant = ["sale.order"]
skip_imports = true
strip_metadata = true

[profiles.quick]
level = "soft"
`)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	p, err := f.Get("review")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	req, err := p.Request()
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if req.Level != shrink.LevelHard {
		t.Errorf("level = %v, want hard", req.Level)
	}
	if !req.ExpandModels["sale.order"] || !req.ExpandModels["res.partner"] {
		t.Errorf("expand = %v", req.ExpandModels)
	}
	if !req.PruneMethods["sale.order.action_cancel"] {
		t.Errorf("prune = %v", req.PruneMethods)
	}
	if !req.RelevantModels["sale.order"] {
		t.Errorf("relevant = %v", req.RelevantModels)
	}
	if !req.SkipImports || !req.StripMetadata {
		t.Error("bool options not carried over")
	}
}

func TestGetUnknownProfile(t *testing.T) {
	path := writeProfileFile(t, `
[profiles.quick]
level = "soft"
`)
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = f.Get("missing")
	var e *akerr.Error
	if !errors.As(err, &e) || e.Code != akerr.ProfileInvalid {
		t.Errorf("err = %v, want ProfileInvalid", err)
	}
}

func TestLoadRejectsBadToml(t *testing.T) {
	path := writeProfileFile(t, "profiles = [broken\n")
	_, err := Load(path)
	var e *akerr.Error
	if !errors.As(err, &e) || e.Code != akerr.ProfileInvalid {
		t.Errorf("err = %v, want ProfileInvalid", err)
	}
}

func TestRequestRejectsBadLevel(t *testing.T) {
	p := Profile{Level: "aggressive"}
	_, err := p.Request()
	var e *akerr.Error
	if !errors.As(err, &e) || e.Code != akerr.ProfileInvalid {
		t.Errorf("err = %v, want ProfileInvalid", err)
	}
}

func TestEmptyLevelDefaultsToNone(t *testing.T) {
	req, err := Profile{}.Request()
	if err != nil {
		t.Fatal(err)
	}
	if req.Level != shrink.LevelNone {
		t.Errorf("level = %v, want none for an unset profile level", req.Level)
	}
}
