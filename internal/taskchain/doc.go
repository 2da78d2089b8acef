// Package taskchain derives the task-chain view of an image's annotations.
//
// A project is an ordered chain of tasks, for example Detection followed by
// Classification. For a selected task, the annotations produced by the task
// before it are the inputs, and the annotations carrying the selected task's
// labels inside a selected input are the outputs. Nothing about this is
// stored: every function in this package recomputes the view from the
// annotation list, the chain and the selected task it is given.
//
// # Selected Task
//
// A nil selected task means "all tasks": there are no inputs and every
// annotation is an output.
//
// # Classification
//
// Classification labels are attached to whole regions rather than drawn, so a
// classification task's inputs and outputs are the same annotations.
//
// # Global Annotations
//
// A global annotation is a Rect covering the region of interest (ROI). It
// carries whole-image verdicts such as "Empty", "Normal" or "Anomalous".
// GlobalAnnotations returns at most one of them.
//
// # Caching
//
// Chain methods are pure. ViewCache memoizes View by a structural hash of
// its inputs so UI-driven callers can ask for the view on every event.
package taskchain
