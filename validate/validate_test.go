package validate

import (
	"testing"

	"github.com/ava12/gllk/errdef"
	"github.com/ava12/gllk/gast"
	"github.com/ava12/gllk/resolve"
	"github.com/ava12/gllk/token"
)

func hasKind(errs []*errdef.Error, kind errdef.Kind) bool {
	for _, e := range errs {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func TestCheckRuleNames(t *testing.T) {
	rules := map[string]*gast.Node{
		"9bad": gast.NewRule("9bad", ""),
		"ok":   gast.NewRule("ok", ""),
	}
	errs := Check(rules, Config{})
	if !hasKind(errs, errdef.InvalidRuleName) {
		t.Fatalf("expected INVALID_RULE_NAME, got %v", errs)
	}
}

func TestCheckOverridesRequiresParent(t *testing.T) {
	rules := map[string]*gast.Node{"a": gast.NewRule("a", "")}
	errs := Check(rules, Config{Overrides: map[string]bool{"a": true}})
	if !hasKind(errs, errdef.InvalidRuleOverride) {
		t.Fatalf("expected INVALID_RULE_OVERRIDE, got %v", errs)
	}

	parent := map[string]*gast.Node{"a": gast.NewRule("a", "")}
	errs = Check(rules, Config{Overrides: map[string]bool{"a": true}, Parent: parent})
	if hasKind(errs, errdef.InvalidRuleOverride) {
		t.Fatalf("did not expect INVALID_RULE_OVERRIDE, got %v", errs)
	}
}

func TestCheckDuplicateProductions(t *testing.T) {
	rule := gast.NewRule("a", "")
	rule.Definition = []*gast.Node{
		gast.NewTerminal(1, token.Type(1)),
		gast.NewTerminal(1, token.Type(2)),
	}
	rules := map[string]*gast.Node{"a": rule}
	errs := Check(rules, Config{})
	if !hasKind(errs, errdef.DuplicateProductions) {
		t.Fatalf("expected DUPLICATE_PRODUCTIONS, got %v", errs)
	}
}

func TestCheckDuplicateProductionsIgnored(t *testing.T) {
	rule := gast.NewRule("a", "")
	rule.Definition = []*gast.Node{
		gast.NewTerminal(1, token.Type(1)),
		gast.NewTerminal(1, token.Type(2)),
	}
	rules := map[string]*gast.Node{"a": rule}
	ignored := IgnoredIssues{"a": {"CONSUME1": true}}
	errs := Check(rules, Config{Ignored: ignored})
	if hasKind(errs, errdef.DuplicateProductions) {
		t.Fatalf("did not expect DUPLICATE_PRODUCTIONS, got %v", errs)
	}
}

func TestCheckLeftRecursion(t *testing.T) {
	// a := b ; b := a "x" ;  -- mutually left-recursive
	a := gast.NewRule("a", "")
	a.Definition = []*gast.Node{gast.NewNonTerminal(1, "b")}
	b := gast.NewRule("b", "")
	b.Definition = []*gast.Node{gast.NewNonTerminal(1, "a"), gast.NewTerminal(2, token.Type(1))}

	rules := map[string]*gast.Node{"a": a, "b": b}
	resolve.Resolve(rules)

	errs := Check(rules, Config{})
	if !hasKind(errs, errdef.LeftRecursion) {
		t.Fatalf("expected LEFT_RECURSION, got %v", errs)
	}
}

func TestCheckLeftRecursionOKWhenTerminalFirst(t *testing.T) {
	a := gast.NewRule("a", "")
	a.Definition = []*gast.Node{gast.NewTerminal(1, token.Type(1)), gast.NewNonTerminal(2, "a")}
	rules := map[string]*gast.Node{"a": a}
	resolve.Resolve(rules)

	errs := Check(rules, Config{})
	if hasKind(errs, errdef.LeftRecursion) {
		t.Fatalf("did not expect LEFT_RECURSION, got %v", errs)
	}
}

func TestCheckEmptyAlternativeOrder(t *testing.T) {
	rule := gast.NewRule("a", "")
	or := gast.NewAlternation(1)
	empty := gast.NewFlat()
	nonEmpty := gast.NewFlat()
	nonEmpty.Definition = []*gast.Node{gast.NewTerminal(1, token.Type(1))}
	or.Definition = []*gast.Node{empty, nonEmpty}
	rule.Definition = []*gast.Node{or}
	rules := map[string]*gast.Node{"a": rule}

	errs := Check(rules, Config{})
	if !hasKind(errs, errdef.NoneLastEmptyAlt) {
		t.Fatalf("expected NONE_LAST_EMPTY_ALT, got %v", errs)
	}
}

func TestCheckAmbiguousAlternatives(t *testing.T) {
	rule := gast.NewRule("a", "")
	or := gast.NewAlternation(1)
	alt1 := gast.NewFlat()
	alt1.Definition = []*gast.Node{gast.NewTerminal(1, token.Type(1))}
	alt2 := gast.NewFlat()
	alt2.Definition = []*gast.Node{gast.NewTerminal(2, token.Type(1))}
	or.Definition = []*gast.Node{alt1, alt2}
	rule.Definition = []*gast.Node{or}
	rules := map[string]*gast.Node{"a": rule}
	resolve.Resolve(rules)

	errs := Check(rules, Config{MaxLookahead: 1})
	if !hasKind(errs, errdef.AmbiguousAlts) {
		t.Fatalf("expected AMBIGUOUS_ALTS, got %v", errs)
	}
}

func TestCheckAmbiguousAlternativesIgnored(t *testing.T) {
	rule := gast.NewRule("a", "")
	or := gast.NewAlternation(1)
	alt1 := gast.NewFlat()
	alt1.Definition = []*gast.Node{gast.NewTerminal(1, token.Type(1))}
	alt2 := gast.NewFlat()
	alt2.Definition = []*gast.Node{gast.NewTerminal(2, token.Type(1))}
	or.Definition = []*gast.Node{alt1, alt2}
	rule.Definition = []*gast.Node{or}
	rules := map[string]*gast.Node{"a": rule}
	resolve.Resolve(rules)

	ignored := IgnoredIssues{"a": {"OR1": true}}
	errs := Check(rules, Config{MaxLookahead: 1, Ignored: ignored})
	if hasKind(errs, errdef.AmbiguousAlts) {
		t.Fatalf("did not expect AMBIGUOUS_ALTS, got %v", errs)
	}
}
