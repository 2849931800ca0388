package tracer

import orderedmap "github.com/wk8/go-ordered-map/v2"

// Walk visits the subtree rooted at root in pre-order. Children of a record are
// skipped when fn returns false for it.
func Walk(root *Record, fn func(r *Record, depth int) bool) {
	type item struct {
		rec   *Record
		depth int
	}
	work := []item{{rec: root}}
	for len(work) > 0 {
		it := work[len(work)-1]
		work = work[:len(work)-1]
		if !fn(it.rec, it.depth) {
			continue
		}
		// Push in reverse so the first callee is visited next.
		for i := len(it.rec.callees) - 1; i >= 0; i-- {
			work = append(work, item{rec: it.rec.callees[i], depth: it.depth + 1})
		}
	}
}

// MaxDepth returns the depth of the deepest record below root; 0 for a leaf.
func MaxDepth(root *Record) int {
	deepest := 0
	Walk(root, func(_ *Record, depth int) bool {
		if depth > deepest {
			deepest = depth
		}
		return true
	})
	return deepest
}

// Node is a flattened, JSON-ready view of a Record.
type Node struct {
	ID       uint64                                 `json:"id"`
	ParentID uint64                                 `json:"parent_id,omitempty"`
	Depth    int                                    `json:"depth"`
	Args     []string                               `json:"args"`
	Kwargs   *orderedmap.OrderedMap[string, string] `json:"kwargs,omitempty"`
	Result   string                                 `json:"result,omitempty"`
	Error    string                                 `json:"error,omitempty"`
	Pending  bool                                   `json:"pending,omitempty"`
}

// Flatten lists every record of the given trees in pre-order. Parents are
// referenced by ID so deep trees never nest in the encoded form.
func Flatten(roots ...*Record) []Node {
	var nodes []Node
	for _, root := range roots {
		Walk(root, func(r *Record, depth int) bool {
			n := Node{
				ID:      r.ID,
				Depth:   depth,
				Args:    make([]string, len(r.Args)),
				Pending: r.result.Pending(),
			}
			if r.caller != nil && depth > 0 {
				n.ParentID = r.caller.ID
			}
			for i, a := range r.Args {
				n.Args[i] = repr(a)
			}
			if pairs := r.Kwargs.Pairs(); len(pairs) > 0 {
				n.Kwargs = orderedmap.New[string, string]()
				for _, p := range pairs {
					n.Kwargs.Set(p.Key, repr(p.Value))
				}
			}
			if !n.Pending {
				if err := r.result.Err(); err != nil {
					n.Error = err.Error()
				} else {
					n.Result = repr(r.result.value)
				}
			}
			nodes = append(nodes, n)
			return true
		})
	}
	return nodes
}
