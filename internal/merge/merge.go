package merge

import (
	"github.com/open-edge-platform/geti-sub021/internal/annotation"
	"github.com/open-edge-platform/geti-sub021/internal/geometry"
	"github.com/open-edge-platform/geti-sub021/internal/taskchain"
)

// Merger merges annotation sets for one image under the rules of Chain.
type Merger struct {
	Chain        taskchain.Chain
	ROI          geometry.Rect
	SelectedTask *annotation.Task
}

// Merge returns the union of incoming and existing.
//
// Existing global annotations are dropped when incoming brings its own,
// unless they share an id, and are always dropped when either side's global
// annotation carries an exclusive label. Annotations with the same id keep
// the incoming shape and merge labels. The result lists existing ids first,
// in their order, followed by ids only present in incoming. When incoming
// repeats an id, its last copy is merged at the position of the first.
func (m Merger) Merge(incoming, existing []annotation.Annotation) []annotation.Annotation {
	newGlobals := m.Chain.GlobalAnnotations(incoming, m.ROI, m.SelectedTask)
	oldGlobals := m.Chain.GlobalAnnotations(existing, m.ROI, m.SelectedTask)

	drop := make(map[string]struct{})
	if len(newGlobals) > 0 {
		keep := annotation.IDSet(newGlobals)
		for _, a := range oldGlobals {
			if _, ok := keep[a.ID]; !ok {
				drop[a.ID] = struct{}{}
			}
		}
	}
	if hasExclusive(newGlobals) || hasExclusive(oldGlobals) {
		for _, a := range oldGlobals {
			drop[a.ID] = struct{}{}
		}
	}

	byID := make(map[string]annotation.Annotation, len(incoming))
	for _, a := range incoming {
		byID[a.ID] = a
	}

	conflicts := m.Chain.LabelConflictPredicate()
	merged := make([]annotation.Annotation, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing))

	for _, old := range existing {
		if _, dropped := drop[old.ID]; dropped {
			continue
		}
		if _, dup := seen[old.ID]; dup {
			continue
		}
		seen[old.ID] = struct{}{}

		fresh, ok := byID[old.ID]
		if !ok {
			merged = append(merged, old.Clone())
			continue
		}
		merged = append(merged, mergePair(fresh, old, conflicts))
	}

	for _, a := range incoming {
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		merged = append(merged, byID[a.ID].Clone())
	}

	return merged
}

// mergePair keeps fresh's shape and state and adds each of its labels to the
// labels of old.
func mergePair(fresh, old annotation.Annotation, conflicts annotation.ConflictPredicate) annotation.Annotation {
	labels := append([]annotation.AnnotationLabel(nil), old.Labels...)
	for _, l := range fresh.Labels {
		labels = annotation.AddLabel(labels, l, conflicts)
	}

	out := fresh.Clone()
	out.Labels = labels
	return out
}

func hasExclusive(globals []annotation.Annotation) bool {
	for _, a := range globals {
		if a.HasLabelMatching(annotation.IsExclusive) {
			return true
		}
	}
	return false
}
