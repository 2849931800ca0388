package server

import (
	"context"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"go-call-tracker/internal/algos"
	"go-call-tracker/internal/runner"
	"go-call-tracker/internal/source"
	"go-call-tracker/internal/tracer"
)

// Handlers serves the MCP tools. Recent traces are kept in a bounded Store.
type Handlers struct {
	store   *Store
	metrics *tracer.Metrics
	indent  int
}

// NewHandlers creates handlers. metrics may be nil.
func NewHandlers(store *Store, metrics *tracer.Metrics, indent int) *Handlers {
	return &Handlers{store: store, metrics: metrics, indent: indent}
}

// algorithmInfo is the structured form returned by list_algorithms.
type algorithmInfo struct {
	Name    string   `json:"name"`
	Summary string   `json:"summary"`
	Params  []string `json:"params"`
}

// listAlgorithmsHandler handles requests for the 'list_algorithms' tool.
func (h *Handlers) listAlgorithmsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var infos []algorithmInfo
	for _, a := range algos.All() {
		infos = append(infos, algorithmInfo{Name: a.Name, Summary: a.Summary, Params: a.Params})
	}
	return mcp.NewToolResultStructured(infos, "list_algorithms"), nil
}

// traceCallHandler handles requests for the 'trace_call' tool.
func (h *Handlers) traceCallHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	algorithm, err := request.RequireString("algorithm")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawArgs, err := request.RequireString("args")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args, err := runner.ParseArgs(rawArgs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	goroutines := request.GetInt("goroutines", 1)

	var opts []tracer.Option
	if h.metrics != nil {
		opts = append(opts, tracer.WithMetrics(h.metrics))
	}
	trace, err := runner.Run(ctx, algorithm, args, goroutines, opts...)
	if err != nil {
		return mcp.NewToolResultError("Failed to trace call: " + err.Error()), nil
	}
	h.store.Put(trace)
	log.Printf("Traced %s%v as %s (%d calls)", trace.Algorithm, trace.Args, trace.ID, trace.Tracker.Count())

	return h.render(trace, request)
}

// callTreeHandler handles requests for the 'call_tree' tool.
func (h *Handlers) callTreeHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	trace, err := h.store.Get(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	root := request.GetInt("root", -1)
	if root < 0 {
		return h.render(trace, request)
	}
	roots := trace.Tracker.Roots()
	if root >= len(roots) {
		return mcp.NewToolResultError("root index out of range"), nil
	}
	if request.GetString("format", "text") == "json" {
		return mcp.NewToolResultStructured(tracer.Flatten(roots[root]), "call_tree"), nil
	}
	indent, err := h.indentOf(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(tracer.Sprint(roots[root], indent)), nil
}

// funcCodeHandler handles requests for the 'func_code' tool.
func (h *Handlers) funcCodeHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("algorithm")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := algos.Lookup(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	loc, code, err := source.Of(a.Impl)
	if err != nil {
		return mcp.NewToolResultError("Failed to get function code: " + err.Error()), nil
	}
	return mcp.NewToolResultText("// " + loc.Name + "\n" + code), nil
}

// render returns the trace as text or, when format=json, as structured content.
func (h *Handlers) render(trace *runner.Trace, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if request.GetString("format", "text") == "json" {
		return mcp.NewToolResultStructured(trace.Export(), "trace "+trace.ID.String()), nil
	}
	indent, err := h.indentOf(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(trace.Text(indent)), nil
}

// indentOf returns the requested indent width. A negative width selects the
// server default; one above tracer.MaxIndent is an error.
func (h *Handlers) indentOf(request mcp.CallToolRequest) (int, error) {
	indent := request.GetInt("indent", h.indent)
	if indent < 0 {
		return h.indent, nil
	}
	if err := tracer.CheckIndent(indent); err != nil {
		return 0, err
	}
	return indent, nil
}

// RegisterTools defines all tools on the server and registers their handlers.
func (h *Handlers) RegisterTools(s *server.MCPServer) {
	// Tool 1: list the algorithms that can be traced.
	listTool := mcp.NewTool("list_algorithms",
		mcp.WithDescription("List the recursive algorithms available for tracing, with their parameters."),
	)
	s.AddTool(listTool, h.listAlgorithmsHandler)

	// Tool 2: run an algorithm under a call tracker.
	traceTool := mcp.NewTool("trace_call",
		mcp.WithDescription("Run a recursive algorithm with call tracking and return its call tree. Every call becomes a node holding its arguments and result; nested calls become children. Running from several goroutines produces one root per goroutine. The returned session id can be passed to 'call_tree' later."),
		mcp.WithString("algorithm", mcp.Required(), mcp.Description("Algorithm name as listed by 'list_algorithms' (e.g., 'fib')")),
		mcp.WithString("args", mcp.Required(), mcp.Description("Integer arguments separated by commas or spaces (e.g., '5' or '2,3')")),
		mcp.WithNumber("goroutines", mcp.Description("Number of goroutines calling the algorithm concurrently"), mcp.DefaultNumber(1)),
		mcp.WithNumber("indent", mcp.Description("Indent width of the text rendering")),
		mcp.WithString("format", mcp.Description("Output format"), mcp.Enum("text", "json"), mcp.DefaultString("text")),
	)
	s.AddTool(traceTool, h.traceCallHandler)

	// Tool 3: re-render a stored trace.
	treeTool := mcp.NewTool("call_tree",
		mcp.WithDescription("Render a call tree recorded by an earlier 'trace_call', either the whole forest or a single root."),
		mcp.WithString("session", mcp.Required(), mcp.Description("Session id returned by 'trace_call'")),
		mcp.WithNumber("root", mcp.Description("Index of a single root to render; omit for all roots")),
		mcp.WithNumber("indent", mcp.Description("Indent width of the text rendering")),
		mcp.WithString("format", mcp.Description("Output format"), mcp.Enum("text", "json"), mcp.DefaultString("text")),
	)
	s.AddTool(treeTool, h.callTreeHandler)

	// Tool 4: show the source of an algorithm.
	funcCodeTool := mcp.NewTool("func_code",
		mcp.WithDescription("Get the formatted Go source of an algorithm's implementation. Requires the module source to be present on disk."),
		mcp.WithString("algorithm", mcp.Required(), mcp.Description("Algorithm name as listed by 'list_algorithms'")),
	)
	s.AddTool(funcCodeTool, h.funcCodeHandler)
}
