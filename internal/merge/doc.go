// Package merge folds freshly fetched annotations, typically predictions,
// into the annotations already present on an image.
//
// Global annotations are reconciled first so that an image never ends up
// with two competing whole-image verdicts. Annotations present on both sides
// keep the new shape and the union of both label lists, where new labels
// evict the old labels they conflict with.
package merge
