package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/alexschlessinger/dispatch/tools"
)

func parallelCalls(n int) []Call {
	calls := make([]Call, n)
	for i := range calls {
		calls[i] = Call{ID: fmt.Sprintf("c%d", i), Name: "read_file", Arguments: "{}"}
	}
	return calls
}

func TestExecuteOrderPreservedUnderConcurrency(t *testing.T) {
	e := NewExecutor(nil, Config{Enabled: true, MaxConcurrency: 8})

	calls := parallelCalls(8)
	fn := func(ctx context.Context, call Call) (string, error) {
		// Earlier calls take longer, so completion order is roughly the
		// reverse of input order.
		var i int
		fmt.Sscanf(call.ID, "c%d", &i)
		time.Sleep(time.Duration(8-i) * 5 * time.Millisecond)
		return call.ID, nil
	}

	results, err := e.Execute(context.Background(), calls, fn)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(results) != len(calls) {
		t.Fatalf("results = %d, want %d", len(results), len(calls))
	}
	for i, result := range results {
		if result.Call.ID != calls[i].ID {
			t.Errorf("results[%d].Call.ID = %s, want %s", i, result.Call.ID, calls[i].ID)
		}
		if result.Output != calls[i].ID {
			t.Errorf("results[%d].Output = %s, want %s", i, result.Output, calls[i].ID)
		}
	}
}

func TestExecuteFailureIsolation(t *testing.T) {
	e := NewExecutor(nil, Config{Enabled: true, MaxConcurrency: 4})

	calls := parallelCalls(5)
	failed := errors.New("boom")
	fn := func(ctx context.Context, call Call) (string, error) {
		if call.ID == "c2" {
			return "", failed
		}
		return "ok", nil
	}

	results, err := e.Execute(context.Background(), calls, fn)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for i, result := range results {
		if i == 2 {
			if !errors.Is(result.Err, failed) {
				t.Errorf("results[2].Err = %v, want boom", result.Err)
			}
			continue
		}
		if result.Err != nil {
			t.Errorf("results[%d].Err = %v, want nil", i, result.Err)
		}
		if result.Output != "ok" {
			t.Errorf("results[%d].Output = %s, want ok", i, result.Output)
		}
	}
}

func TestExecutePanicNormalized(t *testing.T) {
	e := NewExecutor(nil, Config{Enabled: true, MaxConcurrency: 4})

	calls := parallelCalls(3)
	fn := func(ctx context.Context, call Call) (string, error) {
		if call.ID == "c1" {
			panic("tool exploded")
		}
		return "ok", nil
	}

	results, err := e.Execute(context.Background(), calls, fn)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if results[1].Err == nil || !strings.Contains(results[1].Err.Error(), "tool exploded") {
		t.Errorf("results[1].Err = %v, want normalized panic", results[1].Err)
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Error("a panicking call must not fail its siblings")
	}
}

func TestExecuteDisabledRunsInOrder(t *testing.T) {
	for _, config := range []Config{
		{Enabled: false, MaxConcurrency: 8},
		{Enabled: true, MaxConcurrency: 1},
	} {
		e := NewExecutor(nil, config)

		calls := parallelCalls(6)
		var trace []string
		fn := func(ctx context.Context, call Call) (string, error) {
			trace = append(trace, call.ID)
			return "", nil
		}

		if _, err := e.Execute(context.Background(), calls, fn); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		for i, id := range trace {
			if want := fmt.Sprintf("c%d", i); id != want {
				t.Errorf("config %+v: trace[%d] = %s, want %s", config, i, id, want)
			}
		}
	}
}

func TestExecuteSequentialGroupOrdered(t *testing.T) {
	e := NewExecutor(nil, Config{Enabled: true, MaxConcurrency: 4})

	calls := []Call{
		{ID: "w1", Name: "write_file"},
		{ID: "r1", Name: "read_file"},
		{ID: "w2", Name: "write_file"},
		{ID: "r2", Name: "grep"},
		{ID: "w3", Name: "bash"},
	}

	var mu sync.Mutex
	var trace []string
	fn := func(ctx context.Context, call Call) (string, error) {
		mu.Lock()
		trace = append(trace, call.ID)
		mu.Unlock()
		return "", nil
	}

	if _, err := e.Execute(context.Background(), calls, fn); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(trace) != 5 {
		t.Fatalf("trace = %d entries, want 5", len(trace))
	}

	// The sequential group is the tail of the trace, in input order.
	if got := trace[2:]; got[0] != "w1" || got[1] != "w2" || got[2] != "w3" {
		t.Errorf("sequential tail = %v, want [w1 w2 w3]", got)
	}
}

func TestExecuteRespectsConcurrencyBound(t *testing.T) {
	const bound = 3
	e := NewExecutor(nil, Config{Enabled: true, MaxConcurrency: bound})

	calls := parallelCalls(12)
	var inFlight, peak int64
	fn := func(ctx context.Context, call Call) (string, error) {
		n := atomic.AddInt64(&inFlight, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return "", nil
	}

	if _, err := e.Execute(context.Background(), calls, fn); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if p := atomic.LoadInt64(&peak); p > bound {
		t.Errorf("peak concurrency = %d, want <= %d", p, bound)
	}
}

func TestExecuteNilFunc(t *testing.T) {
	e := NewExecutor(nil, DefaultConfig())
	if _, err := e.Execute(context.Background(), parallelCalls(1), nil); err == nil {
		t.Error("expected error for nil executor function")
	}
}

func TestExecuteEmptyBatch(t *testing.T) {
	e := NewExecutor(nil, DefaultConfig())
	results, err := e.Execute(context.Background(), nil, func(ctx context.Context, call Call) (string, error) {
		return "", nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
}

func TestSafetyTableDefaults(t *testing.T) {
	table := NewSafetyTable()

	for _, name := range []string{"read_file", "list_directory", "grep", "web_search"} {
		if !table.ParallelSafe(name) {
			t.Errorf("%s should default to parallel-safe", name)
		}
	}
	for _, name := range []string{"write_file", "bash", "never_heard_of_it", "mcp__somebody__mystery"} {
		if table.ParallelSafe(name) {
			t.Errorf("%s should default to sequential", name)
		}
	}
}

func TestSafetyTablePartition(t *testing.T) {
	table := NewSafetyTable()

	calls := []Call{
		{ID: "a", Name: "write_file"},
		{ID: "b", Name: "read_file"},
		{ID: "c", Name: "grep"},
		{ID: "d", Name: "bash"},
	}

	parallel, sequential := table.Partition(calls)
	if len(parallel) != 2 || parallel[0].ID != "b" || parallel[1].ID != "c" {
		t.Errorf("parallel = %v, want [b c]", parallel)
	}
	if len(sequential) != 2 || sequential[0].ID != "a" || sequential[1].ID != "d" {
		t.Errorf("sequential = %v, want [a d]", sequential)
	}
}

func TestSafetyTableReclassification(t *testing.T) {
	table := NewSafetyTable()
	table.MarkSequential("read_file")
	table.MarkParallel("my_custom_lookup")

	if table.ParallelSafe("read_file") {
		t.Error("reclassified read_file should be sequential")
	}
	if !table.ParallelSafe("my_custom_lookup") {
		t.Error("my_custom_lookup should be parallel after marking")
	}
}

type echoTool struct{}

func (echoTool) GetSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:       "echo",
		Description: "Echoes its message back",
		Type:        "object",
		Properties: map[string]*jsonschema.Schema{
			"message": {Type: "string"},
		},
		Required: []string{"message"},
	}
}

func (echoTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	message, _ := args["message"].(string)
	return message, nil
}

func TestCallsFromRegistry(t *testing.T) {
	registry := tools.NewToolRegistry([]tools.Tool{echoTool{}})
	fn := CallsFromRegistry(registry)

	output, err := fn(context.Background(), Call{Name: "echo", Arguments: `{"message":"hi"}`})
	if err != nil {
		t.Fatalf("execute echo: %v", err)
	}
	if output != "hi" {
		t.Errorf("output = %q, want hi", output)
	}

	if _, err := fn(context.Background(), Call{Name: "missing"}); err == nil {
		t.Error("expected error for unknown tool")
	}

	if _, err := fn(context.Background(), Call{Name: "echo", Arguments: "{broken"}); err == nil {
		t.Error("expected error for malformed arguments")
	}
}
