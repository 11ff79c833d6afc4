// Package engine implements the rule execution engine: preconditions,
// rules, laws and the pillar orchestrator.
//
// A Rule is the atomic unit of change. Rules are grouped into Laws, and
// Laws are registered on a Pillar which executes them strictly in
// registration order. Rules may chain sequentially through a pipe rule
// (the output of one rule becomes the input of the next) or fan out to
// children rules (each child receives the same output).
//
// The engine never talks to git, GitHub or report files directly. Those
// collaborators are injected through the narrow ChangePublisher, Reporter
// and Notifier interfaces so the execution protocol stays independent of
// transport and format concerns.
package engine
