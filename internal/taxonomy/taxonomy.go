// Package taxonomy loads the scheme-kind taxonomy tree and computes
// Wu–Palmer similarity between two taxonomy values (§4.2).
package taxonomy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const noParent = -1

// node is one entry in the flat arena. Storing `parent` as an index rather
// than a pointer avoids cyclic parent pointers entirely.
type node struct {
	value    string
	depth    int
	parent   int
	children []int
}

// Taxonomy is an immutable, read-only tree shared across all workers once
// loaded at process start (§5 "Taxonomy: loaded once at process start,
// immutable thereafter, shared read-only").
type Taxonomy struct {
	nodes   []node
	byValue map[string]int
	root    int
}

type wireNode struct {
	Val      string     `yaml:"val"`
	Children []wireNode `yaml:"children"`
}

// Load reads a taxonomy tree from a YAML file of `{val, children}` nodes
// (§6 "Taxonomy file").
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file: %w", err)
	}

	var root wireNode
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse taxonomy yaml: %w", err)
	}

	return FromTree(root), nil
}

// FromTree builds a Taxonomy directly from a parsed tree, useful for tests
// that don't want to round-trip through a file.
func FromTree(root wireNode) *Taxonomy {
	t := &Taxonomy{byValue: make(map[string]int)}
	t.root = t.addSubtree(root, noParent, 0)
	return t
}

func (t *Taxonomy) addSubtree(w wireNode, parent, depth int) int {
	value := strings.ToLower(strings.TrimSpace(w.Val))
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node{value: value, depth: depth, parent: parent})
	t.byValue[value] = idx

	if parent != noParent {
		t.nodes[parent].children = append(t.nodes[parent].children, idx)
	}

	for _, child := range w.Children {
		t.addSubtree(child, idx, depth+1)
	}
	return idx
}

// resolve looks up an identifier by case-normalised value, falling back to
// the root for unknown identifiers (§4.2 step 1).
func (t *Taxonomy) resolve(value string) int {
	if idx, ok := t.byValue[strings.ToLower(strings.TrimSpace(value))]; ok {
		return idx
	}
	return t.root
}

// Similarity computes the Wu–Palmer similarity of two taxonomy values.
// Both a and b are assumed present (non-empty); callers handling the
// "none" case should use SchemeSimilarity instead.
func (t *Taxonomy) Similarity(a, b string) float64 {
	na := t.resolve(a)
	nb := t.resolve(b)

	depthA := t.nodes[na].depth
	depthB := t.nodes[nb].depth

	// Lift the deeper node until both are at equal depth.
	for t.nodes[na].depth > t.nodes[nb].depth {
		na = t.nodes[na].parent
	}
	for t.nodes[nb].depth > t.nodes[na].depth {
		nb = t.nodes[nb].parent
	}

	// Lift both together until they meet.
	for na != nb {
		if t.nodes[na].parent == noParent || t.nodes[nb].parent == noParent {
			return 0
		}
		na = t.nodes[na].parent
		nb = t.nodes[nb].parent
	}

	meetDepth := t.nodes[na].depth
	if depthA+depthB == 0 {
		return 1
	}
	return float64(2*meetDepth) / float64(depthA+depthB)
}

// SchemeSimilarity implements the full §4.2 contract including the "two
// absent schemes are compatible" shortcut (step 5): a nil pointer stands
// for an absent taxonomy value.
func (t *Taxonomy) SchemeSimilarity(a, b *string) float64 {
	if a == nil || b == nil {
		return 1.0
	}
	return t.Similarity(*a, *b)
}
