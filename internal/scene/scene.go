package scene

import (
	"github.com/open-edge-platform/geti-sub021/internal/annotation"
	"github.com/open-edge-platform/geti-sub021/internal/geometry"
)

// Scene is the set of primitive operations a task-chain aware scene is
// built on.
type Scene interface {
	// Annotations returns a copy of the current annotations in z order.
	Annotations() []annotation.Annotation

	// AddShapes creates one annotation per shape carrying labels, folded
	// through conflicts, and returns the created annotations.
	AddShapes(shapes []geometry.Shape, labels []annotation.Label, selected bool, conflicts annotation.ConflictPredicate, skipHistory bool) []annotation.Annotation

	// AddAnnotations appends annotations, replacing existing ones with the
	// same id.
	AddAnnotations(annotations []annotation.Annotation, skipHistory bool)

	// AddLabel adds label to the annotations with the given ids, evicting
	// the labels it conflicts with.
	AddLabel(label annotation.Label, ids []string, conflicts annotation.ConflictPredicate, skipHistory bool)

	RemoveLabels(labels []annotation.Label, ids []string, skipHistory bool)
	RemoveAnnotations(ids []string, skipHistory bool)

	// SelectAnnotation makes the annotation with id the only selected one.
	SelectAnnotation(id string)

	// SetSelectedAnnotations sets IsSelected on every annotation to the
	// result of selected.
	SetSelectedAnnotations(selected func(annotation.Annotation) bool)
}
