package scene

import (
	"go.uber.org/zap"

	"github.com/open-edge-platform/geti-sub021/internal/annotation"
	"github.com/open-edge-platform/geti-sub021/internal/geometry"
	"github.com/open-edge-platform/geti-sub021/internal/taskchain"
)

// TaskChain decorates a Scene with task-chain aware mutations.
type TaskChain struct {
	scene    Scene
	chain    taskchain.Chain
	selected *annotation.Task
	roi      geometry.Rect
	logger   *zap.Logger
}

// Option configures a TaskChain.
type Option func(*TaskChain)

// WithLogger sets the logger used to report degraded operations.
func WithLogger(logger *zap.Logger) Option {
	return func(s *TaskChain) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSelectedTask sets the initially selected task. Nil means all tasks.
func WithSelectedTask(task *annotation.Task) Option {
	return func(s *TaskChain) {
		s.SelectTask(task)
	}
}

// NewTaskChain wraps scene with the rules of chain for an image whose region
// of interest is roi.
func NewTaskChain(scene Scene, chain taskchain.Chain, roi geometry.Rect, opts ...Option) *TaskChain {
	s := &TaskChain{
		scene:  scene,
		chain:  chain,
		roi:    roi,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectTask switches the selected task. Tasks outside the chain select all
// tasks.
func (s *TaskChain) SelectTask(task *annotation.Task) {
	if task == nil || s.chain.TaskIndex(task.ID) < 0 {
		s.selected = nil
		return
	}
	selected := s.chain.Tasks[s.chain.TaskIndex(task.ID)]
	s.selected = &selected
}

func (s *TaskChain) SelectedTask() *annotation.Task { return s.selected }
func (s *TaskChain) ROI() geometry.Rect             { return s.roi }
func (s *TaskChain) SetROI(roi geometry.Rect)       { s.roi = roi }

// Annotations returns the annotations of the wrapped scene.
func (s *TaskChain) Annotations() []annotation.Annotation {
	return s.scene.Annotations()
}

// View returns the current inputs and outputs of the selected task.
func (s *TaskChain) View() taskchain.View {
	return s.chain.InputsOutputs(s.scene.Annotations(), s.selected)
}

// GlobalAnnotations returns the current global annotation of the selected
// task, if any.
func (s *TaskChain) GlobalAnnotations() []annotation.Annotation {
	return s.chain.GlobalAnnotations(s.scene.Annotations(), s.roi, s.selected)
}

// AddShapes draws shapes carrying labels.
//
// Empty labels whose region contains one of the new shapes give way first.
// Detection labels are dropped when any shape is not a rectangle. Anomalous
// labels get a global anomalous shape when the image has none. Afterwards
// only the previously selected inputs and, if selected is set, the new
// annotations are selected.
func (s *TaskChain) AddShapes(shapes []geometry.Shape, labels []annotation.Label, selected, skipHistory bool) []annotation.Annotation {
	if len(shapes) == 0 {
		return nil
	}
	h := &history{skip: skipHistory}

	if s.hasDetectionLabel(labels) && !allRects(shapes) {
		s.logger.Debug("dropping detection labels for non-rectangular shapes",
			zap.Int("shapes", len(shapes)), zap.Int("labels", len(labels)))
		labels = nil
	}

	before := s.scene.Annotations()
	selectedInputs := annotation.IDSet(annotation.Filter(s.chain.InputForTask(before, s.selected), isSelected))

	s.evictEmptyLabels(shapeCenters(shapes), labels, h)

	shapes = s.chain.PossiblyAddGlobalAnomalousShape(shapes, labels, s.scene.Annotations(), s.roi)

	added := s.scene.AddShapes(shapes, labels, selected, s.chain.LabelConflictPredicate(), h.next())

	addedIDs := annotation.IDSet(added)
	s.scene.SetSelectedAnnotations(func(a annotation.Annotation) bool {
		if _, ok := selectedInputs[a.ID]; ok {
			return true
		}
		_, ok := addedIDs[a.ID]
		return ok && selected
	})

	return added
}

// AddAnnotations adds prebuilt annotations with the same empty-label rules as
// AddShapes. Detection labels are stripped from non-rectangular annotations.
// For anomaly tasks a global anomalous annotation is guaranteed, reusing the
// existing one when possible.
func (s *TaskChain) AddAnnotations(annotations []annotation.Annotation, skipHistory bool) {
	if len(annotations) == 0 {
		return
	}
	h := &history{skip: skipHistory}

	incoming := make([]annotation.Annotation, 0, len(annotations))
	var shapes []geometry.Shape
	var labels []annotation.Label
	for _, a := range annotations {
		a = a.Clone()
		if !geometry.IsRect(a.Shape) {
			a.Labels = s.withoutDetectionLabels(a.Labels)
		}
		incoming = append(incoming, a)
		shapes = append(shapes, a.Shape)
		for _, l := range a.Labels {
			labels = append(labels, l.Label)
		}
	}

	s.evictEmptyLabels(shapeCenters(shapes), labels, h)

	if s.selected != nil && s.selected.Domain.IsAnomaly() {
		withGlobal := s.chain.PossiblyAddGlobalAnomalousShape(shapes, labels, s.scene.Annotations(), s.roi)
		if len(withGlobal) > len(shapes) {
			anomalous, _ := firstMatching(labels, annotation.IsAnomalous)
			global := annotation.New(s.roi, annotation.LabelsOf(anomalous), 0)
			incoming = append([]annotation.Annotation{global}, incoming...)
		}
	}

	s.scene.AddAnnotations(incoming, h.next())
}

// AddLabel applies label to the annotations with the given ids.
//
// Non-exclusive labels go straight to their targets; without targets they
// apply to the global annotation of a classification or anomaly task.
// Exclusive labels cover whole regions: in the all-tasks view a label of a
// later task applies to the targets after clearing everything they contain,
// otherwise it applies to the selected inputs, and for a first task without
// selected inputs it becomes the global annotation, replacing every
// annotation that does not already carry it.
func (s *TaskChain) AddLabel(label annotation.Label, ids []string, skipHistory bool) {
	h := &history{skip: skipHistory}
	current := s.scene.Annotations()
	ids = existingIDs(current, ids)

	if !annotation.IsExclusive(label) {
		if len(ids) > 0 {
			s.scene.AddLabel(label, ids, s.chain.LabelConflictPredicate(), h.next())
			return
		}
		s.addLabelToGlobal(label, current, h)
		return
	}

	if task, ok := s.chain.TaskOfLabel(label); ok && s.selected == nil && !s.chain.IsFirstTask(*task) {
		s.applyExclusiveLabel(label, ids, current, h)
		return
	}

	selectedInputs := annotation.Filter(s.chain.InputForTask(current, s.selected), isSelected)
	if len(selectedInputs) > 0 {
		s.applyExclusiveLabel(label, idsOf(selectedInputs), current, h)
		return
	}

	if s.chain.PreviousTask(s.selected) != nil || !annotation.IsGlobal(label) {
		s.logger.Debug("exclusive label has no target", zap.String("label", label.ID))
		return
	}

	globals := s.chain.GlobalAnnotations(current, s.roi, s.selected)
	if len(globals) > 0 && globals[0].HasLabel(label) {
		return
	}

	var remove []string
	for _, a := range current {
		if !a.HasLabel(label) {
			remove = append(remove, a.ID)
		}
	}
	if len(remove) > 0 {
		s.scene.RemoveAnnotations(remove, h.next())
	}
	s.scene.AddShapes([]geometry.Shape{s.roi}, []annotation.Label{label}, false, s.chain.LabelConflictPredicate(), h.next())
}

// RemoveLabels strips labels from the annotations with the given ids. In a
// chain of several tasks, annotations left without labels are removed.
func (s *TaskChain) RemoveLabels(labels []annotation.Label, ids []string, skipHistory bool) {
	h := &history{skip: skipHistory}
	ids = existingIDs(s.scene.Annotations(), ids)
	if len(ids) == 0 || len(labels) == 0 {
		return
	}

	s.scene.RemoveLabels(labels, ids, h.next())

	if len(s.chain.Tasks) <= 1 {
		return
	}

	var unlabelled []string
	for _, id := range ids {
		if a, ok := annotation.FindByID(s.scene.Annotations(), id); ok && len(a.Labels) == 0 {
			unlabelled = append(unlabelled, id)
		}
	}
	if len(unlabelled) > 0 {
		s.scene.RemoveAnnotations(unlabelled, h.next())
	}
}

// RemoveAnnotations removes the annotations matching match. Classification
// and anomaly tasks never lose their global annotation this way; it can only
// be changed through its labels.
func (s *TaskChain) RemoveAnnotations(match func(annotation.Annotation) bool, skipHistory bool) {
	current := s.scene.Annotations()
	candidates := annotation.Filter(current, match)

	if s.selected != nil && (s.selected.Domain.IsClassification() || s.selected.Domain.IsAnomaly()) {
		globals := annotation.IDSet(s.chain.GlobalAnnotations(current, s.roi, s.selected))
		candidates = annotation.Filter(candidates, func(a annotation.Annotation) bool {
			_, global := globals[a.ID]
			return !global
		})
	}

	if len(candidates) == 0 {
		return
	}
	s.scene.RemoveAnnotations(idsOf(candidates), skipHistory)
}

// SelectAnnotation selects the annotation with id. Inputs are single-select
// among inputs and leave the selection of outputs untouched; anything else
// follows the wrapped scene.
func (s *TaskChain) SelectAnnotation(id string) {
	inputs := s.chain.InputForTask(s.scene.Annotations(), s.selected)
	if _, ok := annotation.FindByID(inputs, id); !ok {
		s.scene.SelectAnnotation(id)
		return
	}

	inputIDs := annotation.IDSet(inputs)
	s.scene.SetSelectedAnnotations(func(a annotation.Annotation) bool {
		if _, isInput := inputIDs[a.ID]; isInput {
			return a.ID == id
		}
		return a.IsSelected
	})
}

// evictEmptyLabels makes room for new shapes centred at centers: annotations
// carrying an exclusive label whose box contains a center lose it. When the
// incoming labels are anomalous the exclusive label is replaced by the
// anomalous one; otherwise an annotation left without labels is removed.
func (s *TaskChain) evictEmptyLabels(centers []geometry.Point, incoming []annotation.Label, h *history) {
	if len(centers) == 0 {
		return
	}
	if _, ok := firstMatching(incoming, annotation.IsExclusive); ok {
		return
	}
	anomalous, promote := firstMatching(incoming, annotation.IsAnomalous)

	var remove, strip []string
	var stripLabels []annotation.Label

	for _, a := range s.scene.Annotations() {
		var empty []annotation.Label
		for _, l := range a.Labels {
			if annotation.IsExclusive(l.Label) {
				empty = append(empty, l.Label)
			}
		}
		if len(empty) == 0 || !containsAny(a.Shape, centers) {
			continue
		}

		if !promote && len(empty) == len(a.Labels) {
			remove = append(remove, a.ID)
			continue
		}
		strip = append(strip, a.ID)
		stripLabels = append(stripLabels, empty...)
	}

	if len(remove) > 0 {
		s.scene.RemoveAnnotations(remove, h.next())
	}
	if len(strip) > 0 {
		s.scene.RemoveLabels(stripLabels, strip, h.next())
		if promote {
			s.scene.AddLabel(anomalous, strip, s.chain.LabelConflictPredicate(), h.next())
		}
	}
}

// applyExclusiveLabel clears every annotation whose center lies inside one of
// the targets, then applies label to the targets.
func (s *TaskChain) applyExclusiveLabel(label annotation.Label, ids []string, current []annotation.Annotation, h *history) {
	if len(ids) == 0 {
		s.logger.Debug("exclusive label has no target", zap.String("label", label.ID))
		return
	}
	targets := annotation.IDSet(annotation.Filter(current, func(a annotation.Annotation) bool {
		return containsID(ids, a.ID)
	}))

	var contained []string
	for _, a := range current {
		if _, ok := targets[a.ID]; ok {
			continue
		}
		for _, t := range current {
			if _, ok := targets[t.ID]; ok && geometry.ContainsCenter(t.Shape, a.Shape) {
				contained = append(contained, a.ID)
				break
			}
		}
	}

	if len(contained) > 0 {
		s.scene.RemoveAnnotations(contained, h.next())
	}
	s.scene.AddLabel(label, ids, s.chain.LabelConflictPredicate(), h.next())
}

// addLabelToGlobal applies a label picked without targets to the global
// annotation of a first classification or anomaly task, creating the global
// annotation when missing.
func (s *TaskChain) addLabelToGlobal(label annotation.Label, current []annotation.Annotation, h *history) {
	if s.selected == nil || s.chain.PreviousTask(s.selected) != nil ||
		!(s.selected.Domain.IsClassification() || s.selected.Domain.IsAnomaly()) {
		s.logger.Debug("label has no target", zap.String("label", label.ID))
		return
	}

	conflicts := s.chain.LabelConflictPredicate()
	if globals := s.chain.GlobalAnnotations(current, s.roi, s.selected); len(globals) > 0 {
		s.scene.AddLabel(label, idsOf(globals), conflicts, h.next())
		return
	}
	s.scene.AddShapes([]geometry.Shape{s.roi}, []annotation.Label{label}, false, conflicts, h.next())
}

func (s *TaskChain) hasDetectionLabel(labels []annotation.Label) bool {
	_, ok := firstMatching(labels, s.chain.IsDetectionLabel)
	return ok
}

func (s *TaskChain) withoutDetectionLabels(labels []annotation.AnnotationLabel) []annotation.AnnotationLabel {
	out := make([]annotation.AnnotationLabel, 0, len(labels))
	for _, l := range labels {
		if !s.chain.IsDetectionLabel(l.Label) {
			out = append(out, l)
		}
	}
	return out
}

// history hands out the skipHistory flag for the primitive calls of one
// composite operation: the caller's flag for the first call, true after.
type history struct {
	skip bool
}

func (h *history) next() bool {
	skip := h.skip
	h.skip = true
	return skip
}

func firstMatching(labels []annotation.Label, match func(annotation.Label) bool) (annotation.Label, bool) {
	for _, l := range labels {
		if match(l) {
			return l, true
		}
	}
	return annotation.Label{}, false
}

func shapeCenters(shapes []geometry.Shape) []geometry.Point {
	centers := make([]geometry.Point, 0, len(shapes))
	for _, shape := range shapes {
		if shape != nil {
			centers = append(centers, shape.Center())
		}
	}
	return centers
}

func containsAny(shape geometry.Shape, points []geometry.Point) bool {
	if shape == nil {
		return false
	}
	box := shape.BoundingBox()
	for _, p := range points {
		if geometry.IsInsideBoundingBox(p, box) {
			return true
		}
	}
	return false
}

func allRects(shapes []geometry.Shape) bool {
	for _, shape := range shapes {
		if !geometry.IsRect(shape) {
			return false
		}
	}
	return true
}

func existingIDs(annotations []annotation.Annotation, ids []string) []string {
	known := annotation.IDSet(annotations)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; ok && !containsID(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func idsOf(annotations []annotation.Annotation) []string {
	ids := make([]string, len(annotations))
	for i, a := range annotations {
		ids[i] = a.ID
	}
	return ids
}

func isSelected(a annotation.Annotation) bool { return a.IsSelected }
