package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/danielpatrickdp/trait-interview/internal/interview"
)

// #region fixture-types

// Fixture is a scripted oracle conversation stored as JSON.
type Fixture struct {
	Description string             `json:"description"`
	Steps       []interview.Step   `json:"steps"`
	Analysis    interview.Analysis `json:"analysis"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("fixture %s has no steps", path)
	}
	return &f, nil
}

// #endregion fixture-loader

// #region fixture-oracle

// ErrFixtureExhausted is returned by a non-cycling fixture oracle past its last step.
var ErrFixtureExhausted = errors.New("fixture steps exhausted")

// FixtureOracle replays a Fixture in order. It implements both
// interview.Oracle and interview.Analyzer.
type FixtureOracle struct {
	mu       sync.Mutex
	fixture  *Fixture
	next     int
	cycle    bool
	requests []interview.StepRequest
}

// NewFixtureOracle replays f. With cycle set, steps repeat from the start
// once exhausted.
func NewFixtureOracle(f *Fixture, cycle bool) *FixtureOracle {
	return &FixtureOracle{fixture: f, cycle: cycle}
}

// NextStep returns the next scripted step.
func (o *FixtureOracle) NextStep(ctx context.Context, req interview.StepRequest) (interview.Step, error) {
	if err := ctx.Err(); err != nil {
		return interview.Step{}, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	o.requests = append(o.requests, req)
	steps := o.fixture.Steps
	if o.next >= len(steps) {
		if !o.cycle || len(steps) == 0 {
			return interview.Step{}, ErrFixtureExhausted
		}
		o.next = 0
	}
	step := steps[o.next]
	o.next++
	return step, nil
}

// Analyze returns the scripted analysis.
func (o *FixtureOracle) Analyze(ctx context.Context, req interview.AnalysisRequest) (interview.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return interview.Analysis{}, err
	}
	return o.fixture.Analysis, nil
}

// Requests returns the step requests seen so far.
func (o *FixtureOracle) Requests() []interview.StepRequest {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]interview.StepRequest, len(o.requests))
	copy(out, o.requests)
	return out
}

// #endregion fixture-oracle
