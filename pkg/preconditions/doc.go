// Package preconditions provides the built-in boolean gates used to
// decide whether a rule or law runs against its candidate path. All
// gates are total: anything that cannot be inspected evaluates false.
package preconditions
