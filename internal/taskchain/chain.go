package taskchain

import (
	"github.com/open-edge-platform/geti-sub021/internal/annotation"
	"github.com/open-edge-platform/geti-sub021/internal/geometry"
)

// UngroupedKey groups outputs that no input contains.
const UngroupedKey = "-"

// Chain is an immutable task chain together with the tolerance used for
// every geometry comparison made on its behalf.
type Chain struct {
	Tasks   []annotation.Task
	Epsilon float64
}

// New returns a Chain over tasks. A non-positive epsilon selects
// geometry.DefaultEpsilon.
func New(tasks []annotation.Task, epsilon float64) Chain {
	if epsilon <= 0 {
		epsilon = geometry.DefaultEpsilon
	}
	return Chain{Tasks: tasks, Epsilon: epsilon}
}

// InputAnnotation is an input of the selected task together with the outputs
// grouped under it.
type InputAnnotation struct {
	annotation.Annotation
	Outputs []annotation.Annotation
}

// View is the derived task-chain view for one selected task.
//
// Views may be shared through ViewCache and must be treated as read-only.
type View struct {
	Inputs  []InputAnnotation
	Outputs []annotation.Annotation

	// OutputsByInput groups Outputs by the id of the input containing them,
	// or by UngroupedKey.
	OutputsByInput map[string][]annotation.Annotation

	// Global holds the global annotation for the selected task, if any.
	// Only filled in by ViewCache.View.
	Global []annotation.Annotation
}

// TaskIndex returns the position of the task with the given id, or -1.
func (c Chain) TaskIndex(id string) int {
	for i, t := range c.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// PreviousTask returns the task immediately before selected, or nil when
// selected is nil, first, or not part of the chain.
func (c Chain) PreviousTask(selected *annotation.Task) *annotation.Task {
	if selected == nil {
		return nil
	}
	i := c.TaskIndex(selected.ID)
	if i <= 0 {
		return nil
	}
	prev := c.Tasks[i-1]
	return &prev
}

// TaskOfLabel returns the task owning label.
func (c Chain) TaskOfLabel(label annotation.Label) (*annotation.Task, bool) {
	for _, t := range c.Tasks {
		if t.HasLabel(label) {
			task := t
			return &task, true
		}
	}
	return nil, false
}

// IsFirstTask reports whether task is the first of the chain.
func (c Chain) IsFirstTask(task annotation.Task) bool {
	return len(c.Tasks) > 0 && c.Tasks[0].ID == task.ID
}

// FindLabel looks a label up across every task of the chain.
func (c Chain) FindLabel(id string) (annotation.Label, bool) {
	for _, t := range c.Tasks {
		if l, ok := t.FindLabel(id); ok {
			return l, true
		}
	}
	return annotation.Label{}, false
}

// IsDetectionLabel reports whether label belongs to an axis-aligned
// detection task.
func (c Chain) IsDetectionLabel(label annotation.Label) bool {
	task, ok := c.TaskOfLabel(label)
	return ok && task.Domain.IsDetection()
}

// InputForTask returns the inputs of selected.
//
// Without a previous task there are no inputs, except for classification
// whose inputs are its outputs. Otherwise the inputs are the previous task's
// outputs, minus annotations the previous task marked empty and minus
// annotations whose labels are all unknown or deleted.
func (c Chain) InputForTask(annotations []annotation.Annotation, selected *annotation.Task) []annotation.Annotation {
	prev := c.PreviousTask(selected)
	if prev == nil {
		if selected != nil && selected.Domain.IsClassification() {
			return c.OutputFromTask(annotations, selected)
		}
		return []annotation.Annotation{}
	}

	if selected.Domain.IsClassification() {
		return c.classificationAnnotations(annotations, *prev, *selected)
	}

	return annotation.Filter(annotations, func(a annotation.Annotation) bool {
		return a.HasLabelFromTask(*prev) &&
			isShapeCompatible(prev.Domain, a.Shape) &&
			!hasEmptyLabelFrom(a, *prev) &&
			c.hasValidLabel(a)
	})
}

// OutputFromTask returns the outputs of selected.
//
// With a single task or no selected task every annotation is an output.
// Classification outputs are its inputs. Detection and segmentation outputs
// following another task are restricted to annotations whose center lies in
// a currently selected input. Other domains following another task have no
// outputs.
func (c Chain) OutputFromTask(annotations []annotation.Annotation, selected *annotation.Task) []annotation.Annotation {
	if len(c.Tasks) <= 1 || selected == nil {
		return annotations
	}

	prev := c.PreviousTask(selected)

	if selected.Domain.IsClassification() {
		if prev == nil {
			return annotation.Filter(annotations, func(a annotation.Annotation) bool {
				return a.HasLabelFromTask(*selected)
			})
		}
		return c.InputForTask(annotations, selected)
	}

	if prev == nil {
		return annotation.Filter(annotations, func(a annotation.Annotation) bool {
			return belongsToTask(a, *selected)
		})
	}

	if !isDrawingDomain(selected.Domain) {
		return []annotation.Annotation{}
	}

	selectedInputs := annotation.Filter(c.InputForTask(annotations, selected), isSelected)

	return annotation.Filter(annotations, func(a annotation.Annotation) bool {
		if !belongsToTask(a, *selected) {
			return false
		}
		_, ok := containingInput(selectedInputs, a)
		return ok
	})
}

// GlobalAnnotations returns the global annotation for selected, if any.
//
// Candidates are Rect annotations matching roi. Tasks other than
// classification and anomaly also require a global label, and the "all
// tasks" view excludes annotations carrying a local label. When several
// annotations qualify only the first one, in list order, is returned.
func (c Chain) GlobalAnnotations(annotations []annotation.Annotation, roi geometry.Rect, selected *annotation.Task) []annotation.Annotation {
	candidates := annotation.Filter(annotations, func(a annotation.Annotation) bool {
		if !geometry.IsGlobalShape(a.Shape, roi, c.Epsilon) {
			return false
		}
		if selected == nil {
			return !a.HasLabelMatching(annotation.IsLocal)
		}
		if selected.Domain.IsClassification() || selected.Domain.IsAnomaly() {
			return true
		}
		return a.HasLabelMatching(annotation.IsGlobal)
	})

	if len(candidates) > 1 {
		candidates = candidates[:1]
	}
	return candidates
}

// LabelConflictPredicate returns the rule deciding which labels cannot
// coexist on one annotation: labels of the same group, two local-only
// labels, or an exclusive label and any other label of the same task.
func (c Chain) LabelConflictPredicate() annotation.ConflictPredicate {
	return func(label, other annotation.Label) bool {
		if label.Group == other.Group {
			return true
		}
		if isLocalOnly(label) && isLocalOnly(other) {
			return true
		}
		if annotation.IsExclusive(label) || annotation.IsExclusive(other) {
			return c.inSameTask(label, other)
		}
		return false
	}
}

// InputsOutputs computes the inputs and outputs of selected and groups every
// output under the input containing it. For classification, where inputs and
// outputs are the same annotations, an input groups itself once it carries a
// label of the selected task.
func (c Chain) InputsOutputs(annotations []annotation.Annotation, selected *annotation.Task) View {
	inputs := c.InputForTask(annotations, selected)
	outputs := c.OutputFromTask(annotations, selected)

	grouped := make(map[string][]annotation.Annotation)
	classification := selected != nil && selected.Domain.IsClassification()

	for _, output := range outputs {
		key := UngroupedKey
		if classification {
			if _, ok := annotation.FindByID(inputs, output.ID); ok && output.HasLabelFromTask(*selected) {
				key = output.ID
			}
		} else if input, ok := containingInput(inputs, output); ok {
			key = input.ID
		}
		grouped[key] = append(grouped[key], output)
	}

	view := View{
		Inputs:         make([]InputAnnotation, len(inputs)),
		Outputs:        outputs,
		OutputsByInput: grouped,
	}
	for i, input := range inputs {
		view.Inputs[i] = InputAnnotation{Annotation: input, Outputs: grouped[input.ID]}
	}
	return view
}

// PossiblyAddGlobalAnomalousShape prepends a Rect covering roi to shapes when
// labels contain an anomalous label, none of shapes is already global, and no
// existing annotation carries an anomalous label on the global shape. Anomaly
// projects need a whole-image verdict whenever a local anomaly is marked.
func (c Chain) PossiblyAddGlobalAnomalousShape(
	shapes []geometry.Shape,
	labels []annotation.Label,
	existing []annotation.Annotation,
	roi geometry.Rect,
) []geometry.Shape {
	hasAnomalous := false
	for _, l := range labels {
		if annotation.IsAnomalous(l) {
			hasAnomalous = true
			break
		}
	}
	if !hasAnomalous {
		return shapes
	}

	for _, s := range shapes {
		if geometry.IsGlobalShape(s, roi, c.Epsilon) {
			return shapes
		}
	}

	for _, a := range existing {
		if geometry.IsGlobalShape(a.Shape, roi, c.Epsilon) && a.HasLabelMatching(annotation.IsAnomalous) {
			return shapes
		}
	}

	out := make([]geometry.Shape, 0, len(shapes)+1)
	out = append(out, roi)
	return append(out, shapes...)
}

// classificationAnnotations returns the inputs (and outputs) of a
// classification task following prev: annotations already carrying one of
// its labels plus the previous task's regions not yet represented by such an
// annotation. Regions marked empty by prev are excluded.
func (c Chain) classificationAnnotations(
	annotations []annotation.Annotation,
	prev, selected annotation.Task,
) []annotation.Annotation {
	candidates := annotation.Filter(annotations, func(a annotation.Annotation) bool {
		if hasEmptyLabelFrom(a, prev) {
			return false
		}
		if a.HasLabelFromTask(selected) {
			return true
		}
		return a.HasLabelFromTask(prev) && isShapeCompatible(prev.Domain, a.Shape)
	})

	return annotation.Filter(candidates, func(a annotation.Annotation) bool {
		if a.HasLabelFromTask(selected) {
			return true
		}
		for _, other := range candidates {
			if other.ID != a.ID && other.HasLabelFromTask(selected) && geometry.ContainsCenter(a.Shape, other.Shape) {
				return false
			}
		}
		return true
	})
}

// hasValidLabel reports whether a carries a label of the chain that has not
// been deleted.
func (c Chain) hasValidLabel(a annotation.Annotation) bool {
	return a.HasLabelMatching(func(l annotation.Label) bool {
		known, ok := c.FindLabel(l.ID)
		return ok && !known.IsDeleted && !l.IsDeleted
	})
}

func (c Chain) inSameTask(label, other annotation.Label) bool {
	for _, t := range c.Tasks {
		if t.HasLabel(label) && t.HasLabel(other) {
			return true
		}
	}
	return false
}

// containingInput returns the first input, other than output itself, whose
// bounding box contains the center of output.
func containingInput(inputs []annotation.Annotation, output annotation.Annotation) (annotation.Annotation, bool) {
	for _, input := range inputs {
		if input.ID != output.ID && geometry.ContainsCenter(input.Shape, output.Shape) {
			return input, true
		}
	}
	return annotation.Annotation{}, false
}

// belongsToTask reports whether a is drawn for task: it carries one of the
// task's labels, or it is still unlabelled and its shape suits the domain.
func belongsToTask(a annotation.Annotation, task annotation.Task) bool {
	if !isShapeCompatible(task.Domain, a.Shape) {
		return false
	}
	return a.HasLabelFromTask(task) || len(a.Labels) == 0
}

func hasEmptyLabelFrom(a annotation.Annotation, task annotation.Task) bool {
	return a.HasLabelMatching(func(l annotation.Label) bool {
		return annotation.IsExclusive(l) && task.HasLabel(l)
	})
}

func isShapeCompatible(domain annotation.Domain, shape geometry.Shape) bool {
	if shape == nil {
		return false
	}
	switch domain {
	case annotation.DomainDetection:
		return shape.Type() == geometry.TypeRect
	case annotation.DomainRotatedDetection:
		return shape.Type() == geometry.TypeRotatedRect || shape.Type() == geometry.TypeRect
	case annotation.DomainKeypoint:
		return shape.Type() == geometry.TypePose
	default:
		return shape.Type() != geometry.TypePose
	}
}

func isDrawingDomain(domain annotation.Domain) bool {
	return domain.IsDetection() || domain.IsSegmentation() || domain == annotation.DomainRotatedDetection
}

func isLocalOnly(label annotation.Label) bool {
	return annotation.IsLocal(label) && !annotation.IsGlobal(label)
}

func isSelected(a annotation.Annotation) bool { return a.IsSelected }
