package jobqueue

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PipelinePolicy holds per-pipeline defaults.
// Zero values inherit from the policy defaults, then from the queue Config.
type PipelinePolicy struct {
	MaxAttempts int           `yaml:"max_attempts"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
}

// Policy is the set of known pipelines and their enqueue defaults.
//
//	defaults:
//	  max_attempts: 3
//	pipelines:
//	  workout_sync:
//	    max_attempts: 5
//	    retry_delay: 30s
//	  fatigue_recompute: {}
type Policy struct {
	Defaults  PipelinePolicy              `yaml:"defaults"`
	Pipelines map[Pipeline]PipelinePolicy `yaml:"pipelines"`
}

// DefaultPolicy knows the built-in pipelines and sets nothing else.
func DefaultPolicy() *Policy {
	return &Policy{
		Pipelines: map[Pipeline]PipelinePolicy{
			PipelineWorkoutSync:      {},
			PipelineFatigueRecompute: {},
		},
	}
}

// ParsePolicy decodes and validates a YAML policy document. Unknown fields are rejected.
func ParsePolicy(data []byte) (*Policy, error) {
	var p Policy
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, errors.Join(ErrInvalidPolicy, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadPolicyFile reads and parses the policy at path.
func LoadPolicyFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline policy %q: %w", path, err)
	}
	return ParsePolicy(data)
}

// Validate reports the first problem in the policy.
func (p *Policy) Validate() error {
	if len(p.Pipelines) == 0 {
		return fmt.Errorf("%w: no pipelines declared", ErrInvalidPolicy)
	}
	if err := p.Defaults.validate("defaults"); err != nil {
		return err
	}
	for name, pp := range p.Pipelines {
		if name == "" {
			return fmt.Errorf("%w: empty pipeline name", ErrInvalidPolicy)
		}
		if err := pp.validate(string(name)); err != nil {
			return err
		}
	}
	return nil
}

func (pp PipelinePolicy) validate(scope string) error {
	if pp.MaxAttempts < 0 {
		return fmt.Errorf("%w: %s: max_attempts must be zero or greater", ErrInvalidPolicy, scope)
	}
	if pp.RetryDelay < 0 {
		return fmt.Errorf("%w: %s: retry_delay must be zero or greater", ErrInvalidPolicy, scope)
	}
	return nil
}

// Knows reports whether the pipeline is declared. A nil policy knows every pipeline.
func (p *Policy) Knows(pipeline Pipeline) bool {
	if p == nil {
		return true
	}
	_, ok := p.Pipelines[pipeline]
	return ok
}

// resolve fills in attempts and delay for a pipeline, falling back to cfg.
func (p *Policy) resolve(pipeline Pipeline, cfg Config) (int, time.Duration) {
	attempts, delay := cfg.DefaultMaxAttempts, cfg.DefaultRetryDelay
	if p == nil {
		return attempts, delay
	}
	for _, pp := range []PipelinePolicy{p.Defaults, p.Pipelines[pipeline]} {
		if pp.MaxAttempts > 0 {
			attempts = pp.MaxAttempts
		}
		if pp.RetryDelay > 0 {
			delay = pp.RetryDelay
		}
	}
	return attempts, delay
}
