// internal/app/system/filters/tree.go
package filters

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
)

// Op is the kind of test a Cond applies to its field.
type Op int

const (
	// Eq matches the field exactly.
	Eq Op = iota
	// Contains is a case-insensitive substring match.
	Contains
	// Range matches Min <= field <= Max; either bound may be nil.
	Range
	// In matches when the field (or any element of an array field) is one of Values.
	In
)

// Cond is one leaf of a predicate tree.
type Cond struct {
	Field  string // dot-qualified path, e.g. "demographics.gender"
	Op     Op
	Value  any    // Eq
	Text   string // Contains; matched literally
	Min    any    // Range
	Max    any    // Range
	Values []string
}

// Tree is a conjunction of conditions plus optional AND/OR groups of
// child trees. The zero Tree matches every record.
type Tree struct {
	Conds []Cond
	And   []Tree
	Or    []Tree
}

// Add appends a condition.
func (t *Tree) Add(c Cond) { t.Conds = append(t.Conds, c) }

// Empty reports whether the tree has no predicates at all.
func (t Tree) Empty() bool {
	return len(t.Conds) == 0 && len(t.And) == 0 && len(t.Or) == 0
}

// Field returns the first condition on field, if any.
func (t Tree) Field(field string) (Cond, bool) {
	for _, c := range t.Conds {
		if c.Field == field {
			return c, true
		}
	}
	return Cond{}, false
}

// BSON renders the tree as a Mongo filter document.
//
// Each field appears once; a second condition on the same field is moved
// into an $and clause so neither is lost.
func (t Tree) BSON() bson.M {
	out := bson.M{}
	var and []bson.M

	for _, c := range t.Conds {
		v := c.bsonValue()
		if _, dup := out[c.Field]; dup {
			and = append(and, bson.M{c.Field: v})
			continue
		}
		out[c.Field] = v
	}
	for _, child := range t.And {
		if !child.Empty() {
			and = append(and, child.BSON())
		}
	}
	if len(and) > 0 {
		out["$and"] = and
	}

	var or []bson.M
	for _, child := range t.Or {
		if !child.Empty() {
			or = append(or, child.BSON())
		}
	}
	if len(or) > 0 {
		out["$or"] = or
	}
	return out
}

func (c Cond) bsonValue() any {
	switch c.Op {
	case Contains:
		return bson.M{"$regex": regexp.QuoteMeta(c.Text), "$options": "i"}
	case Range:
		r := bson.M{}
		if c.Min != nil {
			r["$gte"] = c.Min
		}
		if c.Max != nil {
			r["$lte"] = c.Max
		}
		return r
	case In:
		return bson.M{"$in": c.Values}
	default:
		return c.Value
	}
}
