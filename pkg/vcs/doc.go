// Package vcs publishes enforcement changes: it stages and commits the
// recorded working-tree changes with go-git, pushes the enforcement
// branch and opens (or finds) the matching GitHub pull request.
package vcs
