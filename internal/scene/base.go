package scene

import (
	"slices"

	"github.com/open-edge-platform/geti-sub021/internal/annotation"
	"github.com/open-edge-platform/geti-sub021/internal/geometry"
)

// DefaultHistoryLimit is the number of undo steps Base keeps by default.
const DefaultHistoryLimit = 100

// Base is an in-memory Scene with snapshot based undo and redo.
//
// Selection changes are not recorded in the history. Base is not safe for
// concurrent use; a session owns exactly one.
type Base struct {
	annotations []annotation.Annotation
	undo        [][]annotation.Annotation
	redo        [][]annotation.Annotation
	limit       int
}

// BaseOption configures a Base.
type BaseOption func(*Base)

// WithHistoryLimit caps the number of undo steps. Non-positive values are
// ignored.
func WithHistoryLimit(limit int) BaseOption {
	return func(s *Base) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// NewBase creates a scene holding a copy of initial.
func NewBase(initial []annotation.Annotation, opts ...BaseOption) *Base {
	s := &Base{
		annotations: cloneAll(initial),
		limit:       DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Base) Annotations() []annotation.Annotation {
	return cloneAll(s.annotations)
}

func (s *Base) AddShapes(
	shapes []geometry.Shape,
	labels []annotation.Label,
	selected bool,
	conflicts annotation.ConflictPredicate,
	skipHistory bool,
) []annotation.Annotation {
	if len(shapes) == 0 {
		return nil
	}

	var folded []annotation.AnnotationLabel
	for _, l := range labels {
		folded = annotation.AddLabel(folded, annotation.NewAnnotationLabel(l), conflicts)
	}

	s.record(skipHistory)

	zIndex := s.nextZIndex()
	added := make([]annotation.Annotation, 0, len(shapes))
	for i, shape := range shapes {
		a := annotation.New(shape, folded, zIndex+i)
		a.IsSelected = selected
		added = append(added, a)
	}
	s.annotations = append(s.annotations, cloneAll(added)...)

	return added
}

func (s *Base) AddAnnotations(annotations []annotation.Annotation, skipHistory bool) {
	if len(annotations) == 0 {
		return
	}
	s.record(skipHistory)

	for _, a := range annotations {
		a = a.Clone()
		if i := s.indexOf(a.ID); i >= 0 {
			s.annotations[i] = a
			continue
		}
		s.annotations = append(s.annotations, a)
	}
}

func (s *Base) AddLabel(label annotation.Label, ids []string, conflicts annotation.ConflictPredicate, skipHistory bool) {
	targets := s.indexesOf(ids)
	if len(targets) == 0 {
		return
	}
	s.record(skipHistory)

	for _, i := range targets {
		s.annotations[i].Labels = annotation.AddLabel(s.annotations[i].Labels, annotation.NewAnnotationLabel(label), conflicts)
	}
}

func (s *Base) RemoveLabels(labels []annotation.Label, ids []string, skipHistory bool) {
	targets := s.indexesOf(ids)
	if len(targets) == 0 || len(labels) == 0 {
		return
	}
	s.record(skipHistory)

	for _, i := range targets {
		s.annotations[i].Labels = annotation.RemoveLabels(s.annotations[i].Labels, labels)
	}
}

func (s *Base) RemoveAnnotations(ids []string, skipHistory bool) {
	if len(s.indexesOf(ids)) == 0 {
		return
	}
	s.record(skipHistory)

	remove := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		remove[id] = struct{}{}
	}
	s.annotations = slices.DeleteFunc(s.annotations, func(a annotation.Annotation) bool {
		_, ok := remove[a.ID]
		return ok
	})
}

func (s *Base) SelectAnnotation(id string) {
	if s.indexOf(id) < 0 {
		return
	}
	for i := range s.annotations {
		s.annotations[i].IsSelected = s.annotations[i].ID == id
	}
}

func (s *Base) SetSelectedAnnotations(selected func(annotation.Annotation) bool) {
	for i := range s.annotations {
		s.annotations[i].IsSelected = selected(s.annotations[i])
	}
}

// Replace swaps the whole annotation list, e.g. after a merge.
func (s *Base) Replace(annotations []annotation.Annotation, skipHistory bool) {
	s.record(skipHistory)
	s.annotations = cloneAll(annotations)
}

// Undo restores the state before the last recorded mutation. It reports
// false when there is nothing to undo.
func (s *Base) Undo() bool {
	if len(s.undo) == 0 {
		return false
	}
	last := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, s.annotations)
	s.annotations = last
	return true
}

// Redo reapplies the last undone mutation. It reports false when there is
// nothing to redo.
func (s *Base) Redo() bool {
	if len(s.redo) == 0 {
		return false
	}
	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, s.annotations)
	s.annotations = next
	return true
}

func (s *Base) CanUndo() bool { return len(s.undo) > 0 }
func (s *Base) CanRedo() bool { return len(s.redo) > 0 }

func (s *Base) record(skip bool) {
	if skip {
		return
	}
	s.undo = append(s.undo, cloneAll(s.annotations))
	if len(s.undo) > s.limit {
		s.undo = s.undo[len(s.undo)-s.limit:]
	}
	s.redo = nil
}

func (s *Base) nextZIndex() int {
	next := 0
	for _, a := range s.annotations {
		if a.ZIndex >= next {
			next = a.ZIndex + 1
		}
	}
	return next
}

func (s *Base) indexOf(id string) int {
	return slices.IndexFunc(s.annotations, func(a annotation.Annotation) bool { return a.ID == id })
}

func (s *Base) indexesOf(ids []string) []int {
	var out []int
	for _, id := range ids {
		if i := s.indexOf(id); i >= 0 && !slices.Contains(out, i) {
			out = append(out, i)
		}
	}
	return out
}

func cloneAll(annotations []annotation.Annotation) []annotation.Annotation {
	out := make([]annotation.Annotation, len(annotations))
	for i, a := range annotations {
		out[i] = a.Clone()
	}
	return out
}
