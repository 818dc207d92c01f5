package install

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestValidateRejectsNonEmptyStore(t *testing.T) {
	store := t.TempDir()
	writeFile(t, filepath.Join(store, "leftover.txt"), "x")
	err := validate(Graph{}, store, Options{})
	if _, ok := err.(*errLocationNotEmpty); !ok {
		t.Fatalf("expected errLocationNotEmpty, got %v", err)
	}
}

func TestValidateRejectsRelativeStore(t *testing.T) {
	err := validate(Graph{}, "relative/path", Options{})
	if _, ok := err.(*errLocationNotAbsolute); !ok {
		t.Fatalf("expected errLocationNotAbsolute, got %v", err)
	}
}

func TestValidateDetectsDuplicateKey(t *testing.T) {
	store := t.TempDir()
	loc := t.TempDir()
	g := Graph{Nodes: []Node{
		{Key: "a", Name: "a", Location: loc},
		{Key: "a", Name: "a", Location: loc},
	}}
	err := validate(g, store, Options{})
	if _, ok := err.(*errDuplicateKey); !ok {
		t.Fatalf("expected errDuplicateKey, got %v", err)
	}
}

func TestValidateDetectsBinConflict(t *testing.T) {
	store := t.TempDir()
	loc := t.TempDir()
	g := Graph{
		Nodes: []Node{
			{Key: "src", Name: "src", Location: loc},
			{Key: "d1", Name: "d1", Location: loc, Bins: map[string]string{"tool": "bin/tool"}},
			{Key: "d2", Name: "d2", Location: loc, Bins: map[string]string{"tool": "bin/tool"}},
		},
		Links: []Link{
			{Source: "src", Target: "d1"},
			{Source: "src", Target: "d2"},
		},
	}
	err := validate(g, store, Options{})
	if _, ok := err.(*errBinConflict); !ok {
		t.Fatalf("expected errBinConflict, got %v", err)
	}
}

func TestValidateAllowsBinConflictWhenIgnored(t *testing.T) {
	store := t.TempDir()
	loc := t.TempDir()
	g := Graph{
		Nodes: []Node{
			{Key: "src", Name: "src", Location: loc},
			{Key: "d1", Name: "d1", Location: loc, Bins: map[string]string{"tool": "bin/tool"}},
			{Key: "d2", Name: "d2", Location: loc, Bins: map[string]string{"tool": "bin/tool"}},
		},
		Links: []Link{
			{Source: "src", Target: "d1"},
			{Source: "src", Target: "d2"},
		},
	}
	if err := validate(g, store, Options{IgnoreBinConflicts: true}); err != nil {
		t.Fatalf("expected no error with IgnoreBinConflicts, got %v", err)
	}
}

func TestValidateDetectsInvalidBinName(t *testing.T) {
	store := t.TempDir()
	loc := t.TempDir()
	g := Graph{
		Nodes: []Node{
			{Key: "a", Name: "a", Location: loc, Bins: map[string]string{"../escape": "bin/x"}},
		},
	}
	err := validate(g, store, Options{})
	if _, ok := err.(*errInvalidBinName); !ok {
		t.Fatalf("expected errInvalidBinName, got %v", err)
	}
}

func TestInstallCopiesLinksAndRunsScripts(t *testing.T) {
	store := t.TempDir()
	sources := t.TempDir()

	leftpadSrc := filepath.Join(sources, "left-pad")
	writeFile(t, filepath.Join(leftpadSrc, "index.js"), "module.exports = {}")
	writeFile(t, filepath.Join(leftpadSrc, "bin", "leftpad-cli"), "#!/bin/sh\necho hi\n")

	appSrc := filepath.Join(sources, "app")
	marker := filepath.Join(appSrc, "installed.marker")
	pkgJSON, err := json.Marshal(map[string]interface{}{
		"name": "app",
		"scripts": map[string]string{
			"install": "touch installed.marker",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(appSrc, "package.json"), string(pkgJSON))

	g := Graph{
		Nodes: []Node{
			{Key: "app@local", Name: "app", Location: appSrc, KeepInPlace: true},
			{Key: "left-pad@1.0.0", Name: "left-pad", Location: leftpadSrc,
				Bins: map[string]string{"leftpad-cli": "bin/leftpad-cli"}},
		},
		Links: []Link{
			{Source: "app@local", Target: "left-pad@1.0.0"},
		},
	}

	if err := Install(context.Background(), g, store, Options{}); err != nil {
		t.Fatalf("Install: %v", err)
	}

	linkPath := filepath.Join(appSrc, "node_modules", "left-pad")
	target, err := os.Readlink(linkPath)
	if err != nil {
		t.Fatalf("expected symlink at %s: %v", linkPath, err)
	}
	wantTarget := filepath.Join(store, flattenKey("left-pad@1.0.0"))
	if target != wantTarget {
		t.Fatalf("symlink target = %q, want %q", target, wantTarget)
	}

	shimPath := filepath.Join(appSrc, "node_modules", ".bin", "leftpad-cli")
	if _, err := os.Stat(shimPath); err != nil {
		t.Fatalf("expected bin shim at %s: %v", shimPath, err)
	}

	copied := filepath.Join(wantTarget, "index.js")
	if _, err := os.Stat(copied); err != nil {
		t.Fatalf("expected copied file at %s: %v", copied, err)
	}

	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("expected install script to have run and created %s: %v", marker, err)
	}

	appSelfLink := filepath.Join(appSrc, "node_modules", "app")
	if target, err := os.Readlink(appSelfLink); err != nil || target != appSrc {
		t.Fatalf("expected self-link %s -> %s, got target %q err %v", appSelfLink, appSrc, target, err)
	}

	leftpadSelfLink := filepath.Join(wantTarget, "node_modules", "left-pad")
	if target, err := os.Readlink(leftpadSelfLink); err != nil || target != wantTarget {
		t.Fatalf("expected self-link %s -> %s, got target %q err %v", leftpadSelfLink, wantTarget, target, err)
	}
}

func TestInstallSkipsSelfLinkWhenExplicitLinkProvidesOwnName(t *testing.T) {
	store := t.TempDir()
	sources := t.TempDir()

	loc := filepath.Join(sources, "left-pad")
	writeFile(t, filepath.Join(loc, "index.js"), "module.exports = {}")

	vendoredLoc := filepath.Join(sources, "left-pad-vendored")
	writeFile(t, filepath.Join(vendoredLoc, "index.js"), "module.exports = {}")

	g := Graph{
		Nodes: []Node{
			{Key: "left-pad@1.0.0", Name: "left-pad", Location: loc},
			{Key: "left-pad@2.0.0", Name: "left-pad", Location: vendoredLoc},
		},
		Links: []Link{
			{Source: "left-pad@1.0.0", Target: "left-pad@2.0.0"},
		},
	}

	if err := Install(context.Background(), g, store, Options{}); err != nil {
		t.Fatalf("Install: %v", err)
	}

	dest := filepath.Join(store, flattenKey("left-pad@1.0.0"))
	selfLink := filepath.Join(dest, "node_modules", "left-pad")
	target, err := os.Readlink(selfLink)
	if err != nil {
		t.Fatalf("expected symlink at %s: %v", selfLink, err)
	}
	wantTarget := filepath.Join(store, flattenKey("left-pad@2.0.0"))
	if target != wantTarget {
		t.Fatalf("node_modules/left-pad should resolve to the explicit link's target, got %q want %q", target, wantTarget)
	}
}

func TestInstallExcludesOnlyTopLevelFiles(t *testing.T) {
	store := t.TempDir()
	sources := t.TempDir()

	loc := filepath.Join(sources, "pkg")
	writeFile(t, filepath.Join(loc, "README.md"), "docs")
	writeFile(t, filepath.Join(loc, "index.js"), "module.exports = {}")
	writeFile(t, filepath.Join(loc, "test", "README.md"), "nested, not excluded")

	g := Graph{
		Nodes: []Node{
			{Key: "pkg@1.0.0", Name: "pkg", Location: loc},
		},
	}

	if err := Install(context.Background(), g, store, Options{
		FilesToExclude: map[string]struct{}{"README.md": {}, "test": {}},
	}); err != nil {
		t.Fatalf("Install: %v", err)
	}

	dest := filepath.Join(store, flattenKey("pkg@1.0.0"))
	if _, err := os.Stat(filepath.Join(dest, "README.md")); !os.IsNotExist(err) {
		t.Fatalf("expected top-level README.md to be excluded, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "index.js")); err != nil {
		t.Fatalf("expected index.js to be copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "test")); err != nil {
		t.Fatalf("expected top-level directory named like an excluded file to still be copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "test", "README.md")); err != nil {
		t.Fatalf("expected nested README.md (not top-level) to be copied: %v", err)
	}
}

func TestFlattenKeyAvoidsNesting(t *testing.T) {
	if got := flattenKey("@scope/name@1.0.0"); got != "@scope+name@1.0.0" {
		t.Fatalf("flattenKey = %q", got)
	}
}
