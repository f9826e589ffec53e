package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/convene/internal/ir"
)

// OrderingSnapshot captures the observable outcome of a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type OrderingSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	HostType     string       `json:"host_type"`
	Order        []string     `json:"order"`
	Trace        []TraceEvent `json:"trace"`
	ErrorCode    string       `json:"error_code,omitempty"`
	Cycle        []string     `json:"cycle,omitempty"`
}

// NewSnapshot builds the snapshot of a result.
func NewSnapshot(scenarioName string, host ir.HostType, result *Result) OrderingSnapshot {
	return OrderingSnapshot{
		ScenarioName: scenarioName,
		HostType:     host.String(),
		Order:        result.Order,
		Trace:        result.Trace,
		ErrorCode:    result.ErrorCode,
		Cycle:        result.Cycle,
	}
}

// toCanonicalMap converts a snapshot to a map[string]any for canonical JSON
// serialization, which only handles primitives, slices and maps.
func (s *OrderingSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		trace[i] = map[string]any{
			"position": event.Position,
			"name":     event.Name,
			"kind":     event.Kind,
		}
	}

	order := s.Order
	if order == nil {
		order = []string{}
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"host_type":     s.HostType,
		"order":         order,
		"trace":         trace,
	}
	if s.ErrorCode != "" {
		result["error_code"] = s.ErrorCode
	}
	if len(s.Cycle) > 0 {
		result["cycle"] = s.Cycle
	}
	return result
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s *OrderingSnapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := assertSnapshot(t, NewSnapshot(scenario.Name, scenario.HostType(), result)); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, host ir.HostType, result *Result) error {
	t.Helper()
	return assertSnapshot(t, NewSnapshot(scenarioName, host, result))
}

func assertSnapshot(t *testing.T, snapshot OrderingSnapshot) error {
	t.Helper()

	data, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, snapshot.ScenarioName, data)

	return nil
}
