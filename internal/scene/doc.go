// Package scene holds the mutable annotation scene of one annotator session.
//
// Base is a plain in-memory scene with snapshot undo/redo. TaskChain wraps
// any Scene and layers the task-chain rules on top of its primitives:
// empty labels giving way to newly drawn shapes, detection labels only on
// rectangles, a single global verdict per anomaly image, exclusive labels
// clearing the regions they cover, and single-select inputs.
//
// # History
//
// Every mutation takes an explicit skipHistory flag instead of relying on
// ambient recording state. A TaskChain operation that issues several
// primitive calls forwards the caller's flag to the first call that changes
// the scene and skips history for the rest, so one undo reverts the whole
// operation.
//
// # Failure Model
//
// Nothing in this package returns an error. Unknown annotation ids are
// ignored and invalid label/shape combinations degrade to the label not
// being applied; the session must stay usable when a stale id arrives after
// a concurrent edit.
package scene
