// Package dispatch runs the tool-call batches the model returns. Calls that
// are safe to run concurrently go through a bounded worker pool; everything
// else runs strictly in input order. Results always come back in the order
// the calls arrived, whatever order they finished in.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alexschlessinger/dispatch/tools"
)

// Call is a single tool call requested by the model
type Call struct {
	ID        string // Provider-specific call ID (if any)
	Name      string // Tool name
	Arguments string // Raw JSON arguments
}

// Result pairs a call with its outcome. Exactly one of Output/Err is
// meaningful; Err set means the call failed.
type Result struct {
	Call   Call
	Output string
	Err    error
}

// Func executes a single tool call. It may block on I/O and is responsible
// for its own timeouts; the dispatcher adds none.
type Func func(ctx context.Context, call Call) (string, error)

// Config controls batch execution
type Config struct {
	// Enabled turns concurrent execution on. When false every call runs
	// one at a time in input order.
	Enabled bool
	// MaxConcurrency bounds how many parallel-safe calls may be in flight
	// at once. 1 is equivalent to Enabled=false.
	MaxConcurrency int
}

// DefaultConfig returns the standard execution config
func DefaultConfig() Config {
	return Config{Enabled: true, MaxConcurrency: 5}
}

// SafetyTable maps tool names to their concurrency classification. Unknown
// names are sequential: a tool we can't classify might mutate state, so it
// never runs concurrently with anything. The MCP prefix alone confers
// nothing; an unclassified MCP tool is just as sequential as any other
// unknown name.
type SafetyTable struct {
	parallel map[string]bool
}

// NewSafetyTable returns a table preloaded with the standard read-only
// tools marked parallel-safe.
func NewSafetyTable() *SafetyTable {
	t := &SafetyTable{parallel: make(map[string]bool)}
	t.MarkParallel(
		"read_file",
		"list_directory",
		"glob",
		"grep",
		"web_search",
		"web_fetch",
	)
	t.MarkSequential(
		"write_file",
		"edit_file",
		"bash",
		"shell",
	)
	return t
}

// MarkParallel classifies tool names as safe to run concurrently
func (t *SafetyTable) MarkParallel(names ...string) {
	for _, name := range names {
		t.parallel[name] = true
	}
}

// MarkSequential classifies tool names as unsafe to run concurrently
func (t *SafetyTable) MarkSequential(names ...string) {
	for _, name := range names {
		t.parallel[name] = false
	}
}

// ParallelSafe reports whether a tool may run concurrently with others
func (t *SafetyTable) ParallelSafe(name string) bool {
	return t.parallel[name]
}

// Partition splits a batch into its parallel-safe and sequential groups,
// preserving each group's original relative order. Partitioning only says
// which calls MAY be scheduled concurrently with each other; Execute
// chooses to run the sequential group in a dedicated ordered pass.
func (t *SafetyTable) Partition(calls []Call) (parallel, sequential []Call) {
	for _, call := range calls {
		if t.ParallelSafe(call.Name) {
			parallel = append(parallel, call)
		} else {
			sequential = append(sequential, call)
		}
	}
	return parallel, sequential
}

// Executor runs tool-call batches with the configured concurrency
type Executor struct {
	safety *SafetyTable
	config Config
}

// NewExecutor creates an executor. A nil safety table uses the defaults.
func NewExecutor(safety *SafetyTable, config Config) *Executor {
	if safety == nil {
		safety = NewSafetyTable()
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	return &Executor{safety: safety, config: config}
}

// Safety exposes the executor's safety table
func (e *Executor) Safety() *SafetyTable {
	return e.safety
}

// Execute runs a batch of tool calls and returns one result per call, in
// the same order the calls arrived. Each call's failure is recorded in its
// own result slot and never aborts its siblings. The only errors Execute
// itself returns are contract violations (nil fn) and context
// cancellation, in which case the partial results are still returned.
func (e *Executor) Execute(ctx context.Context, calls []Call, fn Func) ([]Result, error) {
	if fn == nil {
		return nil, errors.New("dispatch: nil executor function")
	}

	// Results are written by index into a pre-sized slice, never appended
	// in completion order. results[i] belongs to calls[i] no matter which
	// call finishes first.
	results := make([]Result, len(calls))
	for i, call := range calls {
		results[i].Call = call
	}

	if len(calls) == 0 {
		return results, nil
	}

	if !e.config.Enabled || e.config.MaxConcurrency == 1 {
		for i := range calls {
			e.runOne(ctx, fn, results, i)
		}
		return results, nil
	}

	var parallelIdx, sequentialIdx []int
	for i, call := range calls {
		if e.safety.ParallelSafe(call.Name) {
			parallelIdx = append(parallelIdx, i)
		} else {
			sequentialIdx = append(sequentialIdx, i)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	// Semaphore for concurrency limiting
	sem := make(chan struct{}, e.effectiveParallelism(len(parallelIdx)))

	for _, i := range parallelIdx {
		i := i
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			e.runOne(gctx, fn, results, i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err // Return partial results + error
	}

	// Sequential calls run strictly in input order, each awaited to
	// completion (including its error) before the next starts.
	for _, i := range sequentialIdx {
		e.runOne(ctx, fn, results, i)
	}

	return results, nil
}

// runOne executes a single call into its result slot. Panics from the
// executor function are normalized into that slot's error; a panicking
// call must not take its siblings down with it.
func (e *Executor) runOne(ctx context.Context, fn Func, results []Result, i int) {
	defer func() {
		if r := recover(); r != nil {
			results[i].Err = fmt.Errorf("tool call panicked: %v", r)
		}
	}()

	start := time.Now()
	output, err := fn(ctx, results[i].Call)
	results[i].Output = output
	results[i].Err = err

	zap.S().Debugw("tool_call_completed",
		"tool", results[i].Call.Name,
		"duration", time.Since(start),
		"error", err)
}

// effectiveParallelism returns the pool size for n queued calls
func (e *Executor) effectiveParallelism(n int) int {
	if n == 0 {
		return 1
	}
	if e.config.MaxConcurrency > n {
		return n
	}
	return e.config.MaxConcurrency
}

// CallsFromRegistry builds a Func that resolves each call against a tool
// registry, parses its JSON arguments, and executes the tool. Unknown
// tools and malformed arguments become per-call errors.
func CallsFromRegistry(registry *tools.ToolRegistry) Func {
	return func(ctx context.Context, call Call) (string, error) {
		tool, ok := registry.Get(call.Name)
		if !ok {
			return "", fmt.Errorf("tool not found: %s", call.Name)
		}

		args, err := parseArguments(call.Arguments)
		if err != nil {
			return "", fmt.Errorf("error parsing arguments: %v", err)
		}

		return tool.Execute(ctx, args)
	}
}
