// Package outline models the navigation tree shown beside a document: table
// of contents entries, directory listings and search results all share it.
package outline

// Node is one entry in a navigation outline. A node without a Target is a
// pure grouping node.
type Node struct {
	Title    string  `json:"title"`
	Target   string  `json:"target,omitempty"`   // Absolute file path to navigate to
	Snippet  string  `json:"snippet,omitempty"`  // Match context, search results only
	Children []*Node `json:"children,omitempty"` // Ordered sub-entries
}

// IsLeaf reports whether the node can be navigated to.
func (n *Node) IsLeaf() bool {
	return n.Target != ""
}

// Add appends a child and returns it.
func (n *Node) Add(child *Node) *Node {
	n.Children = append(n.Children, child)
	return child
}

// DisplayText is the text a navigation list shows for the node.
func (n *Node) DisplayText() string {
	if n.Snippet == "" {
		return n.Title
	}
	return n.Title + " - " + n.Snippet
}

// Walk visits nodes depth-first in document order. Returning false from fn
// stops descent into that node's children.
func Walk(nodes []*Node, fn func(n *Node, depth int) bool) {
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			if fn(n, depth) {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(nodes, 0)
}

// Count returns the total number of nodes in the forest.
func Count(nodes []*Node) int {
	total := 0
	Walk(nodes, func(*Node, int) bool {
		total++
		return true
	})
	return total
}
