// Package loader reads pillar definitions from YAML and materializes
// them into laws, rules and preconditions. Rule and precondition kinds
// are looked up in a registry; the built-in kinds register themselves
// via init, and callers may register their own.
package loader
