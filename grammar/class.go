// Package grammar orchestrates spec §4.6: the one-time self-analysis
// pipeline (resolve -> validate -> FOLLOW -> lookahead) run once per grammar
// class and cached process-wide. It is grounded on the teacher's own
// per-language-definition analysis performed once in langdef.Parse and then
// reused by every parser instance built from it (llx.go's NewParser), here
// generalized from a single global parse to a registry keyed by grammar
// class name so unrelated grammar classes never share a cache entry.
package grammar

import (
	"fmt"
	"sync"

	"github.com/ava12/gllk/errdef"
	"github.com/ava12/gllk/followset"
	"github.com/ava12/gllk/gast"
	"github.com/ava12/gllk/internal/tokenset"
	"github.com/ava12/gllk/lookahead"
	"github.com/ava12/gllk/resolve"
	"github.com/ava12/gllk/validate"
)

// Config configures one grammar class's self-analysis.
type Config struct {
	// TopRule names the rule invoked as the parse entry point; its FOLLOW
	// set seeds with token.EOF (spec §4.4).
	TopRule string

	// MaxLookahead bounds the k in LL(k); values <= 0 default to 1.
	MaxLookahead int

	// Ignored silences specific DUPLICATE_PRODUCTIONS/AMBIGUOUS_ALTS
	// findings, keyed by rule name (spec §4.3's ignoredIssues table).
	Ignored validate.IgnoredIssues

	// Overrides names rules this class redefines from Parent (spec §4.3.1).
	Overrides map[string]bool

	// Parent is the grammar class this one inherits rules from, or nil.
	Parent *Class

	// Defer, when set, turns definition errors from a fatal Analyze failure
	// (spec §4.6 step 5's default) into a non-fatal one: Analyze still
	// returns the aggregate error for the caller to check, but also returns
	// a non-nil *Class carrying the rule set and the same errors on
	// Class.Errors, so tooling can inspect what's wrong with a grammar
	// instead of only learning that something is (spec §7, "may be deferred
	// to a flag for tooling"). Follow and Lookahead are left unset on a
	// deferred-error Class: both are built from the assumption the grammar
	// already passed validation, and computing them over a rule set known to
	// have unresolved refs or left recursion would either panic or produce
	// meaningless tables.
	Defer bool
}

// Class is the immutable result of one grammar's self-analysis: a resolved
// rule set plus its FOLLOW and lookahead tables. Once returned by Analyze it
// is shared read-only by every parser instance of that class (spec §3,
// "Rule nodes are owned by the per-class cache").
type Class struct {
	Name         string
	TopRule      string
	MaxLookahead int
	Rules        map[string]*gast.Node
	Follow       followset.Table
	Lookahead    *lookahead.Table
	Parent       *Class

	// Errors holds the definition errors found during self-analysis, but
	// only on a Class returned alongside a non-nil error under
	// Config.Defer. A successfully analyzed Class always has Errors == nil.
	Errors []*errdef.Error
}

// Rule looks up a rule by name.
func (c *Class) Rule(name string) *gast.Node {
	return c.Rules[name]
}

// FollowSet returns the FOLLOW set recorded under key (a SUBRULE call site,
// a repetition occurrence, or followset.EOFKey), or nil if none was recorded.
func (c *Class) FollowSet(key string) *tokenset.Set {
	return c.Follow[key]
}

type entry struct {
	once  sync.Once
	class *Class
	err   error
}

var registry sync.Map // map[string]*entry

// Analyze returns the cached Class for name, building it on first use via
// buildGASTs. buildGASTs is only ever invoked once per class name for the
// lifetime of the process, and only on a genuine cache miss — it is lazy
// specifically so that repeated parser construction for an already-analyzed
// class never repeats the (relatively expensive) GAST recording pass.
func Analyze(name string, buildGASTs func() map[string]*gast.Node, cfg Config) (*Class, error) {
	if name == "" {
		return nil, fmt.Errorf("grammar: class name must not be empty")
	}

	v, _ := registry.LoadOrStore(name, &entry{})
	e := v.(*entry)

	e.once.Do(func() {
		e.class, e.err = build(name, buildGASTs, cfg)
	})

	return e.class, e.err
}

func build(name string, buildGASTs func() map[string]*gast.Node, cfg Config) (*Class, error) {
	rules := buildGASTs()

	errs := resolve.Resolve(rules)
	if len(errs) == 0 {
		var parentRules map[string]*gast.Node
		if cfg.Parent != nil {
			parentRules = cfg.Parent.Rules
		}
		errs = validate.Check(rules, validate.Config{
			MaxLookahead: cfg.MaxLookahead,
			Ignored:      cfg.Ignored,
			Overrides:    cfg.Overrides,
			Parent:       parentRules,
		})
	}

	maxK := cfg.MaxLookahead
	if maxK <= 0 {
		maxK = 1
	}

	if len(errs) > 0 {
		aggErr := &errdef.Aggregate{Errors: errs}
		if !cfg.Defer {
			return nil, aggErr
		}
		return &Class{
			Name:         name,
			TopRule:      cfg.TopRule,
			MaxLookahead: maxK,
			Rules:        rules,
			Parent:       cfg.Parent,
			Errors:       errs,
		}, aggErr
	}

	follow := followset.Compute(rules, cfg.TopRule)
	la := lookahead.Build(rules, cfg.MaxLookahead)

	return &Class{
		Name:         name,
		TopRule:      cfg.TopRule,
		MaxLookahead: maxK,
		Rules:        rules,
		Follow:       follow,
		Lookahead:    la,
		Parent:       cfg.Parent,
	}, nil
}
