package atlas

import (
	"fmt"
	"path"
)

// FileReference is the flattened traversal result for one TreeNode.
type FileReference struct {
	// RelativePath is the traversal prefix joined with the node's file. The
	// dataset's file values are already full names, so the prefix is the same
	// for every node rather than accumulating down the tree.
	RelativePath string

	File         string
	NumSpecimens *int

	// Depth counts ancestors: the root is at depth 0.
	Depth int

	// Lineage holds the file values from the root down to this node, inclusive.
	Lineage []string
}

type visit struct {
	node    *TreeNode
	parent  int
	lineage []string
}

// walk visits every node in pre-order, children in their given order, using
// an explicit stack. fn receives the pre-order index of the node and the
// index of its parent (-1 for the root). A node reached twice means the
// structure is not a tree and yields a *MalformedTreeError.
func walk(root *TreeNode, fn func(index int, v visit) error) error {
	if root == nil {
		return &MalformedTreeError{Reason: "missing root"}
	}

	seen := make(map[*TreeNode]struct{})
	stack := []visit{{node: root, parent: -1}}

	for index := 0; len(stack) > 0; index++ {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, exists := seen[v.node]; exists {
			return &MalformedTreeError{Reason: fmt.Sprintf("node %q is reachable more than once", v.node.File)}
		}
		seen[v.node] = struct{}{}

		lineage := make([]string, len(v.lineage)+1)
		copy(lineage, v.lineage)
		lineage[len(v.lineage)] = v.node.File
		v.lineage = lineage

		if err := fn(index, v); err != nil {
			return err
		}

		// Push in reverse so that the first child is popped first
		for i := len(v.node.Children) - 1; i >= 0; i-- {
			child := v.node.Children[i]
			if child == nil {
				return &MalformedTreeError{Reason: fmt.Sprintf("node %q has a nil child at position %d", v.node.File, i)}
			}
			stack = append(stack, visit{node: child, parent: index, lineage: lineage})
		}
	}

	return nil
}

// Extract flattens the tree into one FileReference per node, in pre-order.
func Extract(root *TreeNode, prefix string) ([]FileReference, error) {
	var refs []FileReference

	err := walk(root, func(_ int, v visit) error {
		refs = append(refs, FileReference{
			RelativePath: path.Join(prefix, v.node.File),
			File:         v.node.File,
			NumSpecimens: v.node.NumSpecimens,
			Depth:        len(v.lineage) - 1,
			Lineage:      v.lineage,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return refs, nil
}
