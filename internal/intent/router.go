// Package intent holds the deterministic pre-pass and last-resort heuristics
// that bracket the model: a narrow rule-driven router that short-circuits
// unambiguous phrasings before any model call, and keyword fallbacks applied
// only when the model produced neither text nor a tool call. Both layers are
// fragile by construction and deliberately stay that way; anything ambiguous
// belongs to the model.
package intent

import (
	"fmt"
	"os"
	"regexp"

	"github.com/stratos/todochat/internal/types"
	"gopkg.in/yaml.v3"
)

// Plan is a resolved deterministic action: a call to dispatch and the fixed
// confirmation reply to return for it.
type Plan struct {
	Call  *types.ToolCall
	Reply string
}

// Rule maps high-confidence phrasings onto one gateway operation.
type Rule struct {
	Name     string         `yaml:"name"`
	Patterns []string       `yaml:"patterns"`
	Method   string         `yaml:"method"`
	Params   map[string]any `yaml:"params"`
	Reply    string         `yaml:"reply"`
}

// DefaultRules covers the single highest-frequency, lowest-ambiguity intent:
// an explicit request to list everything.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "list-all",
			Patterns: []string{
				`(?i)\blist\s*(all)?\s*(todos|tasks)\b`,
				`(?i)\bshow\s+(all\s+)?(todos|tasks)\b`,
			},
			Method: "todos.list",
			Params: map[string]any{},
			Reply:  "Here are your latest todos.",
		},
	}
}

// LoadRules reads router rules from a YAML file.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse intent rules: %w", err)
	}
	return config.Rules, nil
}

type compiledRule struct {
	rule     Rule
	patterns []*regexp.Regexp
}

// Router matches the most recent user message against its rules.
type Router struct {
	rules []compiledRule
}

// NewRouter compiles the given rules. Rules with no valid pattern are
// rejected rather than silently skipped.
func NewRouter(rules []Rule) (*Router, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if r.Method == "" || len(r.Patterns) == 0 {
			return nil, fmt.Errorf("intent rule %q: method and patterns are required", r.Name)
		}
		cr := compiledRule{rule: r}
		for _, p := range r.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("intent rule %q: %w", r.Name, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		compiled = append(compiled, cr)
	}
	return &Router{rules: compiled}, nil
}

// Match returns the plan for the first rule whose pattern matches the
// message, or false when nothing matches and the model must decide.
func (r *Router) Match(message string) (*Plan, bool) {
	if message == "" {
		return nil, false
	}
	for _, cr := range r.rules {
		for _, re := range cr.patterns {
			if re.MatchString(message) {
				params := cr.rule.Params
				if params == nil {
					params = map[string]any{}
				}
				return &Plan{
					Call:  &types.ToolCall{Method: cr.rule.Method, Params: params},
					Reply: cr.rule.Reply,
				}, true
			}
		}
	}
	return nil, false
}
