package atlas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/carbocation/sciutil"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// TreeNode is one entry of the hierarchical dataset description. Each node
// names exactly one binary coordinate file.
type TreeNode struct {
	File string

	// NumSpecimens is nil when the document omits it. Code that needs it must
	// check rather than assume zero.
	NumSpecimens *int

	Children []*TreeNode
}

const treeSchemaJSON = `{
	"type": "object",
	"required": ["root"],
	"properties": {
		"root": {"$ref": "#/$defs/node"}
	},
	"$defs": {
		"node": {
			"type": "object",
			"required": ["file"],
			"properties": {
				"file": {"type": "string"},
				"numSpecimens": {"type": "integer"},
				"children": {
					"type": "array",
					"items": {"$ref": "#/$defs/node"}
				}
			}
		}
	}
}`

var treeSchema = jsonschema.MustCompileString("tree.schema.json", treeSchemaJSON)

// LoadTreeFile reads a dataset description from a local path or a gs:// path.
// Compressed documents are decompressed transparently.
func LoadTreeFile(path string, client *storage.Client) (*TreeNode, error) {
	f, _, err := sciutil.OpenInput(path, client)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	root, err := LoadTree(f)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return root, nil
}

// LoadTree parses a document of the form {"root": TreeNode}. Any structural
// problem is reported as a *MalformedTreeError.
func LoadTree(r io.Reader) (*TreeNode, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		if e, ok := err.(*json.SyntaxError); ok {
			log.Printf("syntax error at byte offset %d", e.Offset)
			return nil, &MalformedTreeError{Location: "byte " + strconv.FormatInt(e.Offset, 10), Err: err}
		}
		return nil, &MalformedTreeError{Reason: "cannot decode document", Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &MalformedTreeError{Location: "byte " + strconv.FormatInt(dec.InputOffset(), 10), Reason: "unexpected data after the document"}
	}

	if err := treeSchema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			leaf := deepestCause(ve)
			return nil, &MalformedTreeError{Location: "#" + leaf.InstanceLocation, Reason: leaf.Message}
		}
		return nil, &MalformedTreeError{Err: err}
	}

	return buildTree(doc.(map[string]interface{})["root"])
}

func deepestCause(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// buildTree converts the decoded document into TreeNodes without recursing,
// so that very deep hierarchies cannot exhaust the stack.
func buildTree(raw interface{}) (*TreeNode, error) {
	type pending struct {
		raw      interface{}
		node     *TreeNode
		location string
	}

	root := &TreeNode{}
	stack := []pending{{raw: raw, node: root, location: "/root"}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		obj, ok := p.raw.(map[string]interface{})
		if !ok {
			return nil, &MalformedTreeError{Location: "#" + p.location, Reason: "node is not an object"}
		}

		file, ok := obj["file"].(string)
		if !ok {
			return nil, &MalformedTreeError{Location: "#" + p.location, Reason: "missing file"}
		}
		p.node.File = file

		if v, exists := obj["numSpecimens"]; exists {
			num, ok := v.(json.Number)
			if !ok {
				return nil, &MalformedTreeError{Location: "#" + p.location + "/numSpecimens", Reason: "not an integer"}
			}
			n, err := specimenCount(num)
			if err != nil {
				return nil, &MalformedTreeError{Location: "#" + p.location + "/numSpecimens", Err: err}
			}
			p.node.NumSpecimens = &n
		}

		rawChildren, _ := obj["children"].([]interface{})
		if len(rawChildren) == 0 {
			continue
		}

		p.node.Children = make([]*TreeNode, len(rawChildren))
		for i, rc := range rawChildren {
			p.node.Children[i] = &TreeNode{}
			stack = append(stack, pending{
				raw:      rc,
				node:     p.node.Children[i],
				location: p.location + "/children/" + strconv.Itoa(i),
			})
		}
	}

	return root, nil
}

// maxExactInt is the largest magnitude at which every integer has an exact
// float64 form.
const maxExactInt = 1 << 53

// specimenCount accepts any JSON spelling of an integer, such as 5, 5.0 or 1e2.
func specimenCount(num json.Number) (int, error) {
	if n, err := strconv.Atoi(num.String()); err == nil {
		return n, nil
	}

	f, err := num.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%s is not an integer", num)
	}
	if math.Abs(f) > maxExactInt {
		return 0, fmt.Errorf("%s is out of range", num)
	}

	return int(f), nil
}

// Count returns the number of nodes in the tree rooted at n.
func (n *TreeNode) Count() int {
	count := 0
	_ = walk(n, func(int, visit) error {
		count++
		return nil
	})
	return count
}
