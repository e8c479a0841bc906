// Package policy provides the thin permission contract the tool executor
// consults before dispatch. The full policy engine (rule storage, glob
// compilation caches, UI for editing rules) is an external collaborator;
// this package only defines the contract and a composable in-memory
// evaluator good enough to drive it.
package policy

import (
	"path/filepath"
	"strings"

	"github.com/relaykit/agentcore/internal/convo"
)

// Checker evaluates a permission request and returns a decision.
// Implementations are consulted by the tool executor (internal/tools)
// before a tool call is dispatched.
type Checker interface {
	Check(req convo.PermissionRequest) convo.PermissionDecision
}

// AllowAll is the default Checker used when the caller wires nothing in.
// It never denies or confirms; every request decides Allow.
type AllowAll struct{}

func (AllowAll) Check(convo.PermissionRequest) convo.PermissionDecision {
	return convo.PermissionAllow
}

// RuleSet evaluates a request against an ordered list of rules, returning
// the first matching rule's decision, or PermissionNone if none match.
type RuleSet struct {
	Rules []convo.PermissionRule
}

func (rs RuleSet) Check(req convo.PermissionRequest) convo.PermissionDecision {
	for _, r := range rs.Rules {
		if ruleMatches(r, req) {
			return r.Decision
		}
	}
	return convo.PermissionNone
}

func ruleMatches(r convo.PermissionRule, req convo.PermissionRequest) bool {
	return globMatch(r.PathPattern, req.Path) &&
		globMatch(r.CommandPattern, req.Command) &&
		globMatch(r.URLPattern, req.URL) &&
		globMatch(r.WorkingDirPattern, req.WorkingDir)
}

// globMatch reports whether value matches pattern. An empty pattern is a
// wildcard that matches anything, including an empty value.
func globMatch(pattern, value string) bool {
	if pattern == "" {
		return true
	}
	ok, err := filepath.Match(pattern, value)
	if err != nil {
		return false
	}
	if ok {
		return true
	}
	// filepath.Match doesn't treat "**" specially; fall back to a simple
	// prefix match for directory-recursive patterns like "/etc/**".
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		return strings.HasPrefix(value, prefix)
	}
	return false
}

// All combines checkers: the decision is Deny if any delegate says Deny,
// else Confirm if any says Confirm, else Allow if any says Allow, else
// None.
type All struct{ Checkers []Checker }

func (a All) Check(req convo.PermissionRequest) convo.PermissionDecision {
	return combine(a.Checkers, req, true)
}

// Any combines checkers: the first non-None decision wins, in order.
type Any struct{ Checkers []Checker }

func (a Any) Check(req convo.PermissionRequest) convo.PermissionDecision {
	for _, c := range a.Checkers {
		if d := c.Check(req); d != convo.PermissionNone {
			return d
		}
	}
	return convo.PermissionNone
}

// Not inverts Allow<->Deny; Confirm and None pass through unchanged.
type Not struct{ Checker Checker }

func (n Not) Check(req convo.PermissionRequest) convo.PermissionDecision {
	switch d := n.Checker.Check(req); d {
	case convo.PermissionAllow:
		return convo.PermissionDeny
	case convo.PermissionDeny:
		return convo.PermissionAllow
	default:
		return d
	}
}

func combine(checkers []Checker, req convo.PermissionRequest, denyWins bool) convo.PermissionDecision {
	sawAllow, sawConfirm, sawDeny := false, false, false
	for _, c := range checkers {
		switch c.Check(req) {
		case convo.PermissionDeny:
			sawDeny = true
		case convo.PermissionConfirm:
			sawConfirm = true
		case convo.PermissionAllow:
			sawAllow = true
		}
	}
	switch {
	case sawDeny && denyWins:
		return convo.PermissionDeny
	case sawConfirm:
		return convo.PermissionConfirm
	case sawAllow:
		return convo.PermissionAllow
	default:
		return convo.PermissionNone
	}
}
