package annotation

import (
	"slices"

	"github.com/google/uuid"

	"github.com/open-edge-platform/geti-sub021/internal/geometry"
)

// Annotation pairs a shape with the labels assigned to it.
//
// Whether an annotation is an input or an output of a task is never stored;
// package taskchain derives it from the labels and the shape.
type Annotation struct {
	ID         string            `json:"id"`
	Shape      geometry.Shape    `json:"shape"`
	Labels     []AnnotationLabel `json:"labels"`
	IsSelected bool              `json:"isSelected"`
	IsHidden   bool              `json:"isHidden"`
	IsLocked   bool              `json:"isLocked"`
	ZIndex     int               `json:"zIndex"`
}

// New creates an annotation with a fresh UUID.
func New(shape geometry.Shape, labels []AnnotationLabel, zIndex int) Annotation {
	return Annotation{
		ID:     NewID(),
		Shape:  shape,
		Labels: slices.Clone(labels),
		ZIndex: zIndex,
	}
}

// NewID returns a fresh annotation id.
func NewID() string {
	return uuid.NewString()
}

// Clone returns a copy of a whose label slice can be modified independently.
// Shapes are values and are shared.
func (a Annotation) Clone() Annotation {
	a.Labels = slices.Clone(a.Labels)
	return a
}

// HasLabel reports whether a carries the label with label's id.
func (a Annotation) HasLabel(label Label) bool {
	return slices.ContainsFunc(a.Labels, func(l AnnotationLabel) bool { return l.ID == label.ID })
}

// HasLabelMatching reports whether any label of a satisfies match.
func (a Annotation) HasLabelMatching(match func(Label) bool) bool {
	return slices.ContainsFunc(a.Labels, func(l AnnotationLabel) bool { return match(l.Label) })
}

// HasLabelFromTask reports whether a carries at least one label of task.
func (a Annotation) HasLabelFromTask(task Task) bool {
	return a.HasLabelMatching(task.HasLabel)
}

// LabelIDs returns the ids of a's labels in order.
func (a Annotation) LabelIDs() []string {
	ids := make([]string, len(a.Labels))
	for i, l := range a.Labels {
		ids[i] = l.ID
	}
	return ids
}

// FindByID returns the annotation with the given id.
func FindByID(annotations []Annotation, id string) (Annotation, bool) {
	for _, a := range annotations {
		if a.ID == id {
			return a, true
		}
	}
	return Annotation{}, false
}

// IDSet collects the ids of annotations.
func IDSet(annotations []Annotation) map[string]struct{} {
	set := make(map[string]struct{}, len(annotations))
	for _, a := range annotations {
		set[a.ID] = struct{}{}
	}
	return set
}

// Filter returns the annotations satisfying keep, in order.
func Filter(annotations []Annotation, keep func(Annotation) bool) []Annotation {
	out := make([]Annotation, 0, len(annotations))
	for _, a := range annotations {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}
