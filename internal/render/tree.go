package render

import (
	"maps"
	"slices"

	"github.com/goliatone/go-navigation/internal/sections"
	"github.com/google/uuid"
)

// Node is one entry in a navigation tree. Title and URL carry the
// resolved section values verbatim; Active and InActiveTrail are the
// only fields the builder computes.
type Node struct {
	ID            uuid.UUID      `json:"id"`
	Ref           string         `json:"ref,omitempty"`
	Title         string         `json:"title"`
	URL           string         `json:"url"`
	Kind          string         `json:"kind,omitempty"`
	Icon          string         `json:"icon,omitempty"`
	Summary       string         `json:"summary,omitempty"`
	Position      int            `json:"position"`
	Classes       []string       `json:"classes,omitempty"`
	Target        map[string]any `json:"target,omitempty"`
	Active        bool           `json:"active"`
	InActiveTrail bool           `json:"in_active_trail,omitempty"`
	Children      []Node         `json:"children,omitempty"`
}

// Tree is an ordered navigation tree built fresh per render call.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Len returns the total number of nodes in the tree.
func (t Tree) Len() int {
	return countNodes(t.Nodes)
}

// Flatten returns the tree's nodes in pre-order, matching the order the
// backing sections resolved in.
func (t Tree) Flatten() []Node {
	out := make([]Node, 0, t.Len())
	return flattenNodes(t.Nodes, out)
}

// Walk visits every node in pre-order until visit returns false.
func (t Tree) Walk(visit func(Node) bool) {
	walkNodes(t.Nodes, visit)
}

// BuildMenuTree builds a tree from a resolved menu snapshot. A nil menu
// produces an empty tree.
func BuildMenuTree(menu *sections.ResolvedMenu, activeRef string) Tree {
	if menu == nil {
		return Tree{}
	}
	return BuildTree(menu.Sections, activeRef)
}

// BuildTree converts resolved sections into navigation nodes, in input
// order, one node per section. Nodes whose ref equals activeRef are
// flagged active; refs are compared by exact string equality, so
// duplicate refs all match. Ancestors of active nodes are flagged
// InActiveTrail. Section data is copied, never aliased, so a cached
// snapshot stays untouched by tree consumers.
func BuildTree(items []sections.ResolvedSection, activeRef string) Tree {
	nodes, _ := buildNodes(items, activeRef)
	return Tree{Nodes: nodes}
}

func buildNodes(items []sections.ResolvedSection, activeRef string) ([]Node, bool) {
	if len(items) == 0 {
		return nil, false
	}

	nodes := make([]Node, 0, len(items))
	activeInSubtree := false
	for _, item := range items {
		node, active := buildNode(item, activeRef)
		if active {
			activeInSubtree = true
		}
		nodes = append(nodes, node)
	}
	return nodes, activeInSubtree
}

func buildNode(item sections.ResolvedSection, activeRef string) (Node, bool) {
	node := Node{
		ID:       item.ID,
		Ref:      item.Ref,
		Title:    item.Title,
		URL:      item.URL,
		Kind:     item.Kind,
		Icon:     item.Icon,
		Summary:  item.Summary,
		Position: item.Position,
		Classes:  slices.Clone(item.Classes),
		Target:   maps.Clone(item.Target),
	}

	if activeRef != "" && item.Ref == activeRef {
		node.Active = true
	}

	children, activeBelow := buildNodes(item.Children, activeRef)
	node.Children = children
	if activeBelow {
		node.InActiveTrail = true
	}

	return node, node.Active || activeBelow
}

func countNodes(nodes []Node) int {
	total := len(nodes)
	for _, node := range nodes {
		total += countNodes(node.Children)
	}
	return total
}

func flattenNodes(nodes []Node, out []Node) []Node {
	for _, node := range nodes {
		out = append(out, node)
		out = flattenNodes(node.Children, out)
	}
	return out
}

func walkNodes(nodes []Node, visit func(Node) bool) bool {
	for _, node := range nodes {
		if !visit(node) {
			return false
		}
		if !walkNodes(node.Children, visit) {
			return false
		}
	}
	return true
}
