// Package condition parses and evaluates dependency conditions: boolean
// expressions over the run-state of other containers.
//
// A condition is one of
//
//	db              single identifier, holds iff db is running
//	db | db-replica any-of, holds iff at least one is running
//	db & cache      all-of, holds iff every one is running
//
// Operators are not nested. When a string contains both '|' and '&', the '|'
// split wins and each part keeps its '&' as part of the identifier.
package condition

import (
	"context"
	"fmt"
	"strings"
)

// Kind tags the variant of a Condition.
type Kind string

const (
	KindSingle Kind = "single"
	KindAnyOf  Kind = "any_of"
	KindAllOf  Kind = "all_of"
)

// RunStateQuery answers whether a container is currently running. An error
// (unknown container, unreachable runtime) counts as not running.
type RunStateQuery interface {
	IsRunning(ctx context.Context, id string) (bool, error)
}

// Condition is a parsed dependency condition.
type Condition struct {
	Kind Kind
	IDs  []string
	raw  string
}

// Single returns a condition on one container.
func Single(id string) Condition {
	return Condition{Kind: KindSingle, IDs: []string{id}, raw: id}
}

// AnyOf returns a condition that holds if any of ids is running.
func AnyOf(ids ...string) Condition {
	return Condition{Kind: KindAnyOf, IDs: ids, raw: strings.Join(ids, " | ")}
}

// AllOf returns a condition that holds if all of ids are running.
func AllOf(ids ...string) Condition {
	return Condition{Kind: KindAllOf, IDs: ids, raw: strings.Join(ids, " & ")}
}

// Parse converts a condition string into a Condition. Empty identifiers
// ("db |", "&cache", "") are rejected.
func Parse(s string) (Condition, error) {
	var c Condition
	switch {
	case strings.Contains(s, "|"):
		c = Condition{Kind: KindAnyOf, IDs: splitTrim(s, "|")}
	case strings.Contains(s, "&"):
		c = Condition{Kind: KindAllOf, IDs: splitTrim(s, "&")}
	default:
		c = Condition{Kind: KindSingle, IDs: []string{strings.TrimSpace(s)}}
	}
	for _, id := range c.IDs {
		if id == "" {
			return Condition{}, fmt.Errorf("condition %q: empty container name", s)
		}
	}
	c.raw = strings.TrimSpace(s)
	return c, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// static tables.
func MustParse(s string) Condition {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// String returns the condition as written in configuration.
func (c Condition) String() string {
	return c.raw
}

// Evaluate reports whether the condition holds against the live run-state.
// Every identifier is queried; nothing is cached between calls.
func (c Condition) Evaluate(ctx context.Context, q RunStateQuery) bool {
	switch c.Kind {
	case KindAnyOf:
		holds := false
		for _, id := range c.IDs {
			if running(ctx, q, id) {
				holds = true
			}
		}
		return holds
	case KindAllOf:
		holds := true
		for _, id := range c.IDs {
			if !running(ctx, q, id) {
				holds = false
			}
		}
		return holds
	case KindSingle:
		return len(c.IDs) == 1 && running(ctx, q, c.IDs[0])
	}
	return false
}

// AnyHolds reports whether at least one of conds holds. An empty list never holds.
func AnyHolds(ctx context.Context, conds []Condition, q RunStateQuery) bool {
	for _, c := range conds {
		if c.Evaluate(ctx, q) {
			return true
		}
	}
	return false
}

func running(ctx context.Context, q RunStateQuery, id string) bool {
	ok, err := q.IsRunning(ctx, id)
	return err == nil && ok
}
