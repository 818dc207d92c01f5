package resolver

import "testing"

func TestResolveBasic(t *testing.T) {
	manifests := []PackageManifest{
		{Name: "A", Version: "1.0.0", IsLocal: true, Dependencies: map[string]string{"B": "^1", "C": "^1"}},
		{Name: "B", Version: "1.1.0"},
		{Name: "C", Version: "1.0.1"},
	}
	resolutions := ResolutionMap{
		"B": {"^1": "1.1.0"},
		"C": {"^1": "1.0.1"},
	}

	pg, err := Resolve(manifests, resolutions, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pg.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %+v", pg.Nodes)
	}
	names := map[string]int{}
	for _, n := range pg.Nodes {
		names[n.Name] = n.ID
	}
	if len(pg.Links) != 2 {
		t.Fatalf("expected 2 links, got %+v", pg.Links)
	}
	wantLinks := map[[2]int]bool{
		{names["A"], names["B"]}: true,
		{names["A"], names["C"]}: true,
	}
	for _, l := range pg.Links {
		if !wantLinks[[2]int{l.SourceID, l.TargetID}] {
			t.Fatalf("unexpected link %+v", l)
		}
	}
}

func TestResolveMissingResolutionIsFatal(t *testing.T) {
	manifests := []PackageManifest{
		{Name: "A", Version: "1.0.0", IsLocal: true, Dependencies: map[string]string{"B": "^1"}},
		{Name: "B", Version: "1.1.0"},
	}
	_, err := Resolve(manifests, ResolutionMap{}, DefaultOptions())
	if err == nil {
		t.Fatalf("expected an error for an unresolved dependency")
	}
}

func TestResolvePeerDedup(t *testing.T) {
	// A depends on B and D; C depends on B and D; B peer-depends on D.
	// A single virtualized B should be shared by both parents.
	manifests := []PackageManifest{
		{Name: "A", Version: "1.0.0", IsLocal: true, Dependencies: map[string]string{"B": "^1", "D": "^1", "C": "^1"}},
		{Name: "C", Version: "1.0.0", Dependencies: map[string]string{"B": "^1", "D": "^1"}},
		{Name: "B", Version: "1.0.0", PeerDependencies: map[string]string{"D": "^1"}, PeerDependenciesMeta: map[string]PeerMeta{"D": {}}},
		{Name: "D", Version: "1.0.0"},
	}
	resolutions := ResolutionMap{
		"B": {"^1": "1.0.0"},
		"D": {"^1": "1.0.0"},
		"C": {"^1": "1.0.0"},
	}

	pg, err := Resolve(manifests, resolutions, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bCount := 0
	for _, n := range pg.Nodes {
		if n.Name == "B" {
			bCount++
		}
	}
	if bCount != 1 {
		t.Fatalf("expected exactly one B node once virtualization dedups, got %d among %+v", bCount, pg.Nodes)
	}
}

func TestResolveVirtualCreationSplitsOnDifferentPeer(t *testing.T) {
	// A deps B,C,D@2; B peer-deps D; C deps B,D@1 - two distinct B nodes
	// should result, one pinned to D@1 and one to D@2.
	manifests := []PackageManifest{
		{Name: "A", Version: "1.0.0", IsLocal: true, Dependencies: map[string]string{"B": "^1", "C": "^1", "D": "^2"}},
		{Name: "C", Version: "1.0.0", Dependencies: map[string]string{"B": "^1", "D": "^1"}},
		{Name: "B", Version: "1.0.0", PeerDependencies: map[string]string{"D": "*"}, PeerDependenciesMeta: map[string]PeerMeta{"D": {}}},
		{Name: "D", Version: "1.0.0"},
	}
	resolutions := ResolutionMap{
		"B": {"^1": "1.0.0"},
		"C": {"^1": "1.0.0"},
		"D": {"^2": "2.0.0", "^1": "1.0.0"},
	}
	// D@2 must also exist as a manifest for add_node to create its base node.
	manifests = append(manifests, PackageManifest{Name: "D", Version: "2.0.0"})

	pg, err := Resolve(manifests, resolutions, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bCount := 0
	for _, n := range pg.Nodes {
		if n.Name == "B" {
			bCount++
		}
	}
	if bCount != 2 {
		t.Fatalf("expected two distinct virtualized B nodes, got %d among %+v", bCount, pg.Nodes)
	}
}

func TestResolveOptionalDependencySkipsMissingTarget(t *testing.T) {
	manifests := []PackageManifest{
		{Name: "A", Version: "1.0.0", IsLocal: true, OptionalDependencies: map[string]string{"fsevents": "^2"}},
	}
	resolutions := ResolutionMap{"fsevents": {"^2": "2.3.2"}}

	pg, err := Resolve(manifests, resolutions, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pg.Nodes) != 1 || len(pg.Links) != 0 {
		t.Fatalf("expected the missing optional target to be silently skipped, got %+v / %+v", pg.Nodes, pg.Links)
	}
}
