package policy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/cel-go/cel"
	"gopkg.in/yaml.v3"

	"github.com/DrSkyle/platform-cli/pkg/engine/errs"
)

// Rule actions.
const (
	RuleBlock = "block"
	RuleWarn  = "warn"
)

// DynamicRule represents a user-defined guard rule loaded from YAML.
type DynamicRule struct {
	ID        string `yaml:"id" json:"id"`
	Condition string `yaml:"condition" json:"condition"` // CEL expression: "kind == 'bucket' && props.access == 'public'"
	Action    string `yaml:"action" json:"action"`       // "block" or "warn"
	Message   string `yaml:"message,omitempty" json:"message,omitempty"`
}

// Request describes a mutating call about to be made.
type Request struct {
	Kind      string // instance, bucket, object, zone, record
	Operation string // create, start, stop, upload, CREATE, UPSERT, DELETE
	Name      string
	Tags      map[string]string
	Props     map[string]any
}

// Decision is the outcome of evaluating the rule set.
type Decision struct {
	Blocked  *DynamicRule
	Warnings []DynamicRule
}

type compiledRule struct {
	rule DynamicRule
	prg  cel.Program
}

// CELEngine compiles guard rules and evaluates them against requests.
type CELEngine struct {
	env   *cel.Env
	rules []compiledRule
}

// NewCELEngine initializes the CEL environment with the request variables.
func NewCELEngine() (*CELEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("kind", cel.StringType),
		cel.Variable("operation", cel.StringType),
		cel.Variable("name", cel.StringType),
		cel.Variable("tags", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("props", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	return &CELEngine{env: env}, nil
}

// Compile compiles rules into executable programs. Rules keep their file order.
func (e *CELEngine) Compile(rules []DynamicRule) error {
	for _, r := range rules {
		if r.ID == "" {
			return fmt.Errorf("rule with condition %q has no id", r.Condition)
		}
		r.Action = strings.ToLower(strings.TrimSpace(r.Action))
		if r.Action == "" {
			r.Action = RuleBlock
		}
		if r.Action != RuleBlock && r.Action != RuleWarn {
			return fmt.Errorf("rule %s: unknown action %q", r.ID, r.Action)
		}

		ast, issues := e.env.Compile(r.Condition)
		if issues != nil && issues.Err() != nil {
			return fmt.Errorf("rule %s compilation error: %w", r.ID, issues.Err())
		}
		if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
			return fmt.Errorf("rule %s must evaluate to bool, got %s", r.ID, ast.OutputType())
		}

		prg, err := e.env.Program(ast)
		if err != nil {
			return fmt.Errorf("rule %s program creation error: %w", r.ID, err)
		}
		e.rules = append(e.rules, compiledRule{rule: r, prg: prg})
	}
	return nil
}

// Len returns the number of compiled rules.
func (e *CELEngine) Len() int { return len(e.rules) }

// Evaluate runs every rule against req. The first matching block rule wins.
// Rules that fail to evaluate (e.g. a missing map key) are logged and treated as no match.
func (e *CELEngine) Evaluate(ctx context.Context, req Request) Decision {
	vars := map[string]any{
		"kind":      req.Kind,
		"operation": req.Operation,
		"name":      req.Name,
		"tags":      nonNilTags(req.Tags),
		"props":     nonNilProps(req.Props),
	}

	var d Decision
	for _, cr := range e.rules {
		out, _, err := cr.prg.ContextEval(ctx, vars)
		if err != nil {
			slog.Debug("Rule evaluation failed", "rule_id", cr.rule.ID, "error", err)
			continue
		}
		match, ok := out.Value().(bool)
		if !ok || !match {
			continue
		}
		if cr.rule.Action == RuleBlock {
			r := cr.rule
			d.Blocked = &r
			return d
		}
		d.Warnings = append(d.Warnings, cr.rule)
	}
	return d
}

// Guard is the rule gate every manager calls before a mutating request.
// A nil Guard admits everything.
type Guard struct {
	engine *CELEngine
	log    *slog.Logger
}

// NewGuard compiles rules into a Guard.
func NewGuard(rules []DynamicRule, logger *slog.Logger) (*Guard, error) {
	if logger == nil {
		logger = slog.Default()
	}
	engine, err := NewCELEngine()
	if err != nil {
		return nil, err
	}
	if err := engine.Compile(rules); err != nil {
		return nil, err
	}
	return &Guard{engine: engine, log: logger}, nil
}

// Check evaluates req. Warn rules are logged; a block rule yields an errs.ErrPolicy error.
func (g *Guard) Check(ctx context.Context, req Request) error {
	if g == nil || g.engine.Len() == 0 {
		return nil
	}
	d := g.engine.Evaluate(ctx, req)
	for _, w := range d.Warnings {
		g.log.Warn("Guard rule matched", "rule_id", w.ID, "kind", req.Kind, "name", req.Name, "message", w.Message)
	}
	if d.Blocked != nil {
		msg := d.Blocked.Message
		if msg == "" {
			msg = d.Blocked.Condition
		}
		return errs.New(errs.ErrPolicy, "Blocked by rule %s: %s", d.Blocked.ID, msg)
	}
	return nil
}

// LoadRules reads a rules file of the form:
//
//	rules:
//	  - id: no-public-buckets
//	    condition: "kind == 'bucket' && props.access == 'public'"
//	    action: block
func LoadRules(path string) ([]DynamicRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	var doc struct {
		Rules []DynamicRule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules yaml: %w", err)
	}
	return doc.Rules, nil
}

func nonNilTags(t map[string]string) map[string]string {
	if t == nil {
		return map[string]string{}
	}
	return t
}

func nonNilProps(p map[string]any) map[string]any {
	if p == nil {
		return map[string]any{}
	}
	return p
}
