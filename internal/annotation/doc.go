// Package annotation defines the annotation data model shared by the
// reconciliation packages: labels and their behaviour bitmask, tasks and
// their domains, and annotations pairing a shape with an ordered label list.
//
// It also holds the label predicate library. Every predicate is a pure
// function of a label's behaviour bits and flags; none of them inspect the
// task chain. Chain-aware rules (conflicts, inputs and outputs) live in
// package taskchain.
//
// # Identity
//
// Labels and annotations are identified by their ID. Annotations hold copies
// of label values, but two labels are the same label iff their IDs match.
package annotation
