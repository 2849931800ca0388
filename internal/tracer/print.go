package tracer

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// DefaultIndent is the indent width used by PrettyPrint callers that have no
// preference.
const DefaultIndent = 4

// MaxIndent is the widest indent accepted from user input. The rendering of a
// record at depth d is indented by up to indent*(2d+1) spaces per line.
const MaxIndent = 16

// CheckIndent reports whether indent lies in [0, MaxIndent].
func CheckIndent(indent int) error {
	if indent < 0 || indent > MaxIndent {
		return errors.Newf("indent must be between 0 and %d, got %d", MaxIndent, indent)
	}
	return nil
}

const header = "RecursiveCall"

// PrettyPrint writes the subtree rooted at root to standard output.
func PrettyPrint(root *Record, indent int) {
	_ = Fprint(os.Stdout, root, indent)
}

// Sprint returns the rendering PrettyPrint would write.
func Sprint(root *Record, indent int) string {
	var b strings.Builder
	_ = Fprint(&b, root, indent)
	return b.String()
}

// printFrame tracks how many children of rec have been rendered.
type printFrame struct {
	rec   *Record
	next  int
	depth int
}

// Fprint renders the subtree rooted at root to w, pre-order, one node per
// RecursiveCall block. The walk keeps an explicit frame stack so arbitrarily
// deep trees print without recursion.
func Fprint(w io.Writer, root *Record, indent int) error {
	if indent < 0 {
		indent = 0
	}
	bw := bufio.NewWriter(w)
	p := printer{w: bw, indent: indent}

	p.node(root, 0)
	stack := []printFrame{{rec: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.rec.callees) {
			child := top.rec.callees[top.next]
			depth := top.depth + 1
			top.next++
			p.node(child, depth)
			stack = append(stack, printFrame{rec: child, depth: depth})
			continue
		}
		if len(top.rec.callees) > 0 {
			p.line(top.depth, false, "]")
		}
		stack = stack[:len(stack)-1]
	}
	return bw.Flush()
}

type printer struct {
	w      *bufio.Writer
	indent int
}

func (p printer) node(r *Record, depth int) {
	p.line(depth, false, header)
	p.line(depth, true, "result="+r.result.String())
	p.line(depth, true, "args="+r.Args.String())
	p.line(depth, true, "kwargs="+FormatKwargs(r.Kwargs))
	if len(r.callees) == 0 {
		p.line(depth, true, "callees=[]")
	} else {
		p.line(depth, true, "callees=[")
	}
}

// line writes s indented for depth. Each level of nesting accounts for the node
// and the callees list around it, hence the factor of two.
func (p printer) line(depth int, hanging bool, s string) {
	width := p.indent * depth * 2
	if hanging {
		width += p.indent
	}
	for i := 0; i < width; i++ {
		_ = p.w.WriteByte(' ')
	}
	_, _ = p.w.WriteString(s)
	_ = p.w.WriteByte('\n')
}
