// Package predicate turns a sparse SearchCondition into WHERE fragments for a
// members query and applies them to a Bun select query.
package predicate
