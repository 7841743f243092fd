package parser

import (
	"sort"

	"github.com/ava12/gllk/errdef"
	"github.com/ava12/gllk/gast"
)

// checkDuplicateNames implements spec §6's DUPLICATE_RULE_NAME at the point
// it can actually be observed: rule registration, before any name-to-Rule
// map (which cannot itself hold a duplicate key) gets built.
func checkDuplicateNames(defs []RuleDef) []*errdef.Error {
	var errs []*errdef.Error
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if seen[d.Name] {
			errs = append(errs, errdef.New(errdef.DuplicateRuleName, d.Name,
				"rule %q registered more than once", d.Name))
			continue
		}
		seen[d.Name] = true
	}
	return errs
}

// recordAll builds every registered rule's GAST once, in recording mode.
// Each rule's trampoline is invoked directly here rather than reached via
// SubRule, so no rule body ever runs recursively during recording — SubRule
// itself never invokes its target rule's body while p.recording is set (see
// dsl.go), which is what keeps this pass terminating even over grammars
// with (mutual) left recursion or unbounded self-reference.
func (p *BaseParser) recordAll(defs []RuleDef) map[string]*gast.Node {
	p.recording = true
	defer func() { p.recording = false }()

	p.recorded = make(map[string]*gast.Node, len(defs))

	sorted := make([]RuleDef, len(defs))
	copy(sorted, defs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for _, d := range sorted {
		rule := gast.NewRule(d.Name, "")
		p.recorded[d.Name] = rule
		p.buildStack = []*gast.Node{rule}
		d.Trampoline()
		p.buildStack = nil
	}

	return p.recorded
}

// appendNode adds n as the next child of whatever container DSL primitives
// are currently building into.
func (p *BaseParser) appendNode(n *gast.Node) {
	top := p.buildStack[len(p.buildStack)-1]
	top.Definition = append(top.Definition, n)
}

func (p *BaseParser) pushContainer(n *gast.Node) {
	p.buildStack = append(p.buildStack, n)
}

func (p *BaseParser) popContainer() {
	p.buildStack = p.buildStack[:len(p.buildStack)-1]
}
