package atlas

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteDOT writes the tree as a Graphviz digraph. Every node is labelled
// "file (numSpecimens)", so every node must carry a specimen count.
func WriteDOT(w io.Writer, root *TreeNode) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "digraph tree {")
	err := walk(root, func(index int, v visit) error {
		if v.node.NumSpecimens == nil {
			return &MalformedTreeError{Reason: fmt.Sprintf("node %q has no numSpecimens", v.node.File)}
		}

		label := fmt.Sprintf("%s (%d)", v.node.File, *v.node.NumSpecimens)
		fmt.Fprintf(bw, "\tn%d [label=%s];\n", index, strconv.Quote(label))
		if v.parent >= 0 {
			fmt.Fprintf(bw, "\tn%d -> n%d;\n", v.parent, index)
		}
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(bw, "}")

	return bw.Flush()
}
