package graph

import "github.com/armon/go-radix"

// Typed wrapper around a radix tree, in the same spirit as the teacher's own
// deducerTrie: it lets the rest of the package avoid interface{} type
// assertions when indexing nodes by name.
//
// Oh generics, where art thou... (Go generics don't play nicely with the
// untyped radix.Tree storage, so the cast-hiding wrapper pattern still
// earns its keep.)

// nameTrie indexes node ids by package name. A single name can have many
// ids (one base node plus any number of virtualized duplicates), so the
// stored value is a slice.
type nameTrie struct {
	t *radix.Tree
}

func newNameTrie() nameTrie {
	return nameTrie{t: radix.New()}
}

// Add appends id to the list of nodes known under name.
func (t nameTrie) Add(name string, id int) {
	if v, has := t.t.Get(name); has {
		t.t.Insert(name, append(v.([]int), id))
		return
	}
	t.t.Insert(name, []int{id})
}

// Get returns every node id registered under name.
func (t nameTrie) Get(name string) []int {
	if v, has := t.t.Get(name); has {
		return v.([]int)
	}
	return nil
}

// baseTrie indexes the unique base node (empty PeerDeps) for a (name,
// version) pair by a composite key.
type baseTrie struct {
	t *radix.Tree
}

func newBaseTrie() baseTrie {
	return baseTrie{t: radix.New()}
}

func baseKey(name, version string) string {
	return name + "@" + version
}

func (t baseTrie) Get(name, version string) (int, bool) {
	if v, has := t.t.Get(baseKey(name, version)); has {
		return v.(int), true
	}
	return 0, false
}

func (t baseTrie) Insert(name, version string, id int) {
	t.t.Insert(baseKey(name, version), id)
}
