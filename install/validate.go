package install

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var packageNameRE = regexp.MustCompile(`^(@[a-z0-9-~][a-z0-9-._~]*\/)?[a-zA-Z0-9-~][a-zA-Z0-9-._~]*$`)

// validate performs every check from the design, in order, before any
// mutation of the filesystem happens. The first failing check wins.
func validate(g Graph, store string, opts Options) error {
	if err := validateStore(store); err != nil {
		return err
	}

	byKey := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := byKey[n.Key]; dup {
			return &errDuplicateKey{key: n.Key}
		}
		byKey[n.Key] = n
	}

	for _, n := range g.Nodes {
		if err := validateNodeLocation(n); err != nil {
			return err
		}
	}

	for _, n := range g.Nodes {
		if !packageNameRE.MatchString(n.Name) {
			return &errInvalidPackageName{name: n.Name}
		}
	}

	for _, l := range g.Links {
		if _, ok := byKey[l.Source]; !ok {
			return &errInvalidLinkSource{key: l.Source}
		}
		if _, ok := byKey[l.Target]; !ok {
			return &errInvalidLinkTarget{key: l.Target}
		}
	}

	depNames := make(map[string]map[string]string, len(g.Nodes)) // source -> name -> target key
	for _, l := range g.Links {
		src, tgt := byKey[l.Source], byKey[l.Target]
		if depNames[src.Key] == nil {
			depNames[src.Key] = map[string]string{}
		}
		if existing, has := depNames[src.Key][tgt.Name]; has && existing != tgt.Key {
			return &errDuplicateDepName{source: src.Key, name: tgt.Name}
		}
		depNames[src.Key][tgt.Name] = tgt.Key
	}

	for _, n := range g.Nodes {
		for bin := range n.Bins {
			if strings.ContainsAny(bin, "/\\\n") {
				return &errInvalidBinName{key: n.Key, bin: bin}
			}
		}
	}

	if !opts.IgnoreBinConflicts {
		if err := validateBinConflicts(g, byKey); err != nil {
			return err
		}
	}

	return nil
}

func validateStore(store string) error {
	if !filepath.IsAbs(store) {
		return &errLocationNotAbsolute{path: store}
	}
	fi, err := os.Stat(store)
	if os.IsNotExist(err) {
		return &errLocationNotExist{path: store}
	}
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return &errLocationNotDir{path: store}
	}
	entries, err := os.ReadDir(store)
	if err != nil {
		return err
	}
	if len(entries) != 0 {
		return &errLocationNotEmpty{path: store}
	}
	return nil
}

func validateNodeLocation(n Node) error {
	if !filepath.IsAbs(n.Location) {
		return &errNodeLocationNotAbsolute{path: n.Location}
	}
	fi, err := os.Stat(n.Location)
	if os.IsNotExist(err) {
		// Nonexistent node locations are permitted and treated as empty.
		return nil
	}
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return &errNodeLocationNotDir{path: n.Location}
	}
	return nil
}

// validateBinConflicts checks, for every source node, that the bin maps of
// its distinct link targets don't expose overlapping bin names.
func validateBinConflicts(g Graph, byKey map[string]Node) error {
	bySource := make(map[string][]string) // source key -> ordered target keys
	for _, l := range g.Links {
		bySource[l.Source] = append(bySource[l.Source], l.Target)
	}

	for source, targets := range bySource {
		seen := make(map[string]string) // bin name -> owning target key
		for _, targetKey := range targets {
			target := byKey[targetKey]
			for bin := range target.Bins {
				if owner, has := seen[bin]; has && owner != targetKey {
					return &errBinConflict{bin: bin, source: source}
				}
				seen[bin] = targetKey
			}
		}
	}
	return nil
}
