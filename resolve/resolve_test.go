package resolve_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ava12/gllk/errdef"
	"github.com/ava12/gllk/gast"
	"github.com/ava12/gllk/resolve"
)

func TestResolveBindsEveryNonTerminal(t *testing.T) {
	a := gast.NewRule("a", "")
	a.Definition = []*gast.Node{gast.NewNonTerminal(1, "b")}
	b := gast.NewRule("b", "")
	b.Definition = []*gast.Node{gast.NewTerminal(1, 1)}

	rules := map[string]*gast.Node{"a": a, "b": b}
	errs := resolve.Resolve(rules)

	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if a.Definition[0].ResolvedRule != b {
		t.Fatalf("expected a's SUBRULE to resolve to b, got %v", a.Definition[0].ResolvedRule)
	}
}

func TestResolveReportsUnresolvedReference(t *testing.T) {
	a := gast.NewRule("a", "")
	a.Definition = []*gast.Node{gast.NewNonTerminal(1, "missing")}

	rules := map[string]*gast.Node{"a": a}
	errs := resolve.Resolve(rules)

	want := []*errdef.Error{
		{Kind: errdef.UnresolvedSubruleRef, RuleName: "a", Message: `rule "a" references undefined rule "missing"`},
	}
	if diff := cmp.Diff(want, errs, cmpopts.IgnoreFields(errdef.Error{}, "Occurrence", "AltIndexes")); diff != "" {
		t.Fatalf("unexpected errors (-want +got):\n%s", diff)
	}
	if a.Definition[0].ResolvedRule != nil {
		t.Fatalf("expected unresolved reference to stay nil, got %v", a.Definition[0].ResolvedRule)
	}
}

func TestResolveIsIndependentOfMapIterationOrder(t *testing.T) {
	rules := map[string]*gast.Node{
		"z": gast.NewRule("z", ""),
		"y": gast.NewRule("y", ""),
	}
	rules["z"].Definition = []*gast.Node{gast.NewNonTerminal(1, "y")}
	rules["y"].Definition = []*gast.Node{gast.NewNonTerminal(1, "z")}

	errs := resolve.Resolve(rules)
	if len(errs) != 0 {
		t.Fatalf("expected mutually recursive rules to resolve cleanly, got %v", errs)
	}
	if rules["z"].Definition[0].ResolvedRule != rules["y"] {
		t.Fatal("z's reference to y did not resolve")
	}
	if rules["y"].Definition[0].ResolvedRule != rules["z"] {
		t.Fatal("y's reference to z did not resolve")
	}
}
