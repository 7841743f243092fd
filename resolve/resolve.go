// Package resolve implements spec §4.2: binding every NonTerminal
// occurrence in a grammar to the Rule node it names. Grounded on the
// teacher's own dependency-resolution worklist (langdef/parser.go,
// resolveDependencies), generalized from FIRST-token propagation over
// dependency indices to direct name binding over a rule map.
package resolve

import (
	"sort"

	"github.com/ava12/gllk/errdef"
	"github.com/ava12/gllk/gast"
)

// Resolve walks every rule in rules and binds each NonTerminal's
// ResolvedRule to rules[name]. Unresolved names are left nil and reported;
// when any error is reported, grammar.Analyze skips validation, FOLLOW and
// lookahead computation for the whole grammar.
func Resolve(rules map[string]*gast.Node) []*errdef.Error {
	var errs []*errdef.Error

	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rule := rules[name]
		gast.Walk(rule, func(n *gast.Node) bool {
			if n.Kind != gast.KindNonTerminal {
				return true
			}
			target, found := rules[n.Name]
			if !found {
				errs = append(errs, unresolvedSubruleRefError(rule.Name, n.Name))
				n.ResolvedRule = nil
				return true
			}
			n.ResolvedRule = target
			return true
		})
	}

	return errs
}

func unresolvedSubruleRefError(ruleName, targetName string) *errdef.Error {
	return errdef.New(errdef.UnresolvedSubruleRef, ruleName,
		"rule %q references undefined rule %q", ruleName, targetName)
}
