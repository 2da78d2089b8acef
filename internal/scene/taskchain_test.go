package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-edge-platform/geti-sub021/internal/annotation"
	"github.com/open-edge-platform/geti-sub021/internal/geometry"
	"github.com/open-edge-platform/geti-sub021/internal/taskchain"
	tu "github.com/open-edge-platform/geti-sub021/internal/testutil"
)

func newTaskChain(tasks []annotation.Task, selected *annotation.Task, annotations ...annotation.Annotation) (*Base, *TaskChain) {
	base := NewBase(annotations)
	return base, NewTaskChain(base, taskchain.New(tasks, 0), tu.ROI, WithSelectedTask(selected))
}

func square(x, y, size float64) geometry.Polygon {
	return geometry.Polygon{Points: []geometry.Point{{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size}, {X: x, Y: y + size}}}
}

func find(t *testing.T, annotations []annotation.Annotation, id string) annotation.Annotation {
	t.Helper()
	a, ok := annotation.FindByID(annotations, id)
	require.True(t, ok, "annotation %s not found", id)
	return a
}

func TestTaskChain_SelectTask(t *testing.T) {
	detection := tu.DetectionTask()
	_, s := newTaskChain([]annotation.Task{detection}, &detection)
	require.NotNil(t, s.SelectedTask())
	assert.Equal(t, detection.ID, s.SelectedTask().ID)

	s.SelectTask(tu.Ptr(tu.SegmentationTask()))
	assert.Nil(t, s.SelectedTask(), "tasks outside the chain select all tasks")
}

func TestTaskChain_AddShapes_DetectionLabelOnPolygon(t *testing.T) {
	detection := tu.DetectionTask()
	_, s := newTaskChain([]annotation.Task{detection}, &detection)

	var added []annotation.Annotation
	require.NotPanics(t, func() {
		added = s.AddShapes([]geometry.Shape{square(10, 10, 10)}, []annotation.Label{tu.Car}, false, false)
	})

	require.Len(t, added, 1)
	assert.Empty(t, added[0].Labels)
	assert.Empty(t, s.Annotations()[0].Labels)
}

func TestTaskChain_AddShapes_AnomalousInsertsGlobal(t *testing.T) {
	anomaly := tu.AnomalyTask(annotation.DomainAnomalyDetection)
	_, s := newTaskChain([]annotation.Task{anomaly}, &anomaly)
	local := geometry.Rect{X: 10, Y: 10, Width: 5, Height: 5}

	s.AddShapes([]geometry.Shape{local}, []annotation.Label{tu.Anomalous}, false, false)

	got := s.Annotations()
	require.Len(t, got, 2)

	var global, drawn int
	for _, a := range got {
		assert.Equal(t, []string{"anomalous"}, a.LabelIDs())
		switch a.Shape {
		case tu.ROI:
			global++
		case geometry.Shape(local):
			drawn++
		}
	}
	assert.Equal(t, 1, global)
	assert.Equal(t, 1, drawn)
}

func TestTaskChain_AddShapes_PromotesNormalGlobal(t *testing.T) {
	anomaly := tu.AnomalyTask(annotation.DomainAnomalyDetection)
	base, s := newTaskChain([]annotation.Task{anomaly}, &anomaly, tu.Global("g", tu.Normal))

	s.AddShapes([]geometry.Shape{geometry.Rect{X: 10, Y: 10, Width: 5, Height: 5}}, []annotation.Label{tu.Anomalous}, true, false)

	got := s.Annotations()
	require.Len(t, got, 2, "the existing global annotation is reused")
	assert.Equal(t, []string{"anomalous"}, find(t, got, "g").LabelIDs())

	require.True(t, base.Undo())
	got = s.Annotations()
	require.Len(t, got, 1, "one undo reverts the whole operation")
	assert.Equal(t, []string{"normal"}, got[0].LabelIDs())
}

func TestTaskChain_AddShapes_ReplacesEmptyGlobal(t *testing.T) {
	detection := tu.DetectionTask()
	base, s := newTaskChain([]annotation.Task{detection}, &detection, tu.Global("g", tu.DetectionEmpty))

	added := s.AddShapes([]geometry.Shape{geometry.Rect{X: 10, Y: 10, Width: 20, Height: 20}}, []annotation.Label{tu.Car}, true, false)

	got := s.Annotations()
	require.Len(t, got, 1)
	assert.Equal(t, added[0].ID, got[0].ID)
	assert.Equal(t, []string{"car"}, got[0].LabelIDs())

	require.True(t, base.Undo())
	assert.Equal(t, []string{"g"}, tu.IDs(s.Annotations()))
	assert.False(t, base.CanUndo())
}

func TestTaskChain_AddShapes_StripsEmptyLabelFromRegion(t *testing.T) {
	segmentation := tu.SegmentationTask()
	_, s := newTaskChain(
		[]annotation.Task{tu.DetectionTask(), segmentation}, &segmentation,
		tu.Selected(tu.Rect("r1", 0, 0, 50, 50, tu.Car, tu.SegmentationEmpty)),
	)

	s.AddShapes([]geometry.Shape{square(10, 10, 10)}, []annotation.Label{tu.Wheel}, true, false)

	got := s.Annotations()
	require.Len(t, got, 2)
	assert.Equal(t, []string{"car"}, find(t, got, "r1").LabelIDs())
}

func TestTaskChain_AddShapes_Selection(t *testing.T) {
	segmentation := tu.SegmentationTask()
	_, s := newTaskChain(
		[]annotation.Task{tu.DetectionTask(), segmentation}, &segmentation,
		tu.Selected(tu.Rect("r1", 0, 0, 50, 50, tu.Car)),
		tu.Selected(tu.Square("p0", 5, 5, 10, tu.Wheel)),
	)

	added := s.AddShapes([]geometry.Shape{square(20, 20, 10)}, []annotation.Label{tu.Wheel}, true, false)
	require.Len(t, added, 1)

	got := s.Annotations()
	assert.True(t, find(t, got, "r1").IsSelected, "selected input stays selected")
	assert.False(t, find(t, got, "p0").IsSelected, "previous output is deselected")
	assert.True(t, find(t, got, added[0].ID).IsSelected)

	view := s.View()
	assert.Equal(t, []string{"p0", added[0].ID}, tu.IDs(view.Outputs))
}

func TestTaskChain_AddShapes_SkipHistory(t *testing.T) {
	detection := tu.DetectionTask()
	base, s := newTaskChain([]annotation.Task{detection}, &detection, tu.Global("g", tu.DetectionEmpty))

	s.AddShapes([]geometry.Shape{geometry.Rect{X: 10, Y: 10, Width: 20, Height: 20}}, []annotation.Label{tu.Car}, false, true)

	assert.Len(t, s.Annotations(), 1)
	assert.False(t, base.CanUndo())
}

func TestTaskChain_AddAnnotations(t *testing.T) {
	anomaly := tu.AnomalyTask(annotation.DomainAnomalyClassification)
	_, s := newTaskChain([]annotation.Task{anomaly}, &anomaly)

	s.AddAnnotations([]annotation.Annotation{tu.Rect("local", 10, 10, 5, 5, tu.Anomalous)}, false)

	got := s.Annotations()
	require.Len(t, got, 2)
	assert.Equal(t, geometry.Shape(tu.ROI), got[0].Shape, "a global annotation is prepended")
	assert.Equal(t, []string{"anomalous"}, got[0].LabelIDs())
	assert.Equal(t, "local", got[1].ID)

	s.AddAnnotations([]annotation.Annotation{tu.Rect("second", 20, 20, 5, 5, tu.Anomalous)}, false)
	assert.Len(t, s.Annotations(), 3, "the existing global annotation is reused")
}

func TestTaskChain_AddAnnotations_EvictsEmptyAndStripsDetection(t *testing.T) {
	detection := tu.DetectionTask()
	_, s := newTaskChain([]annotation.Task{detection}, &detection, tu.Global("g", tu.DetectionEmpty))

	s.AddAnnotations([]annotation.Annotation{
		tu.Rect("box", 10, 10, 10, 10, tu.Car),
		tu.Square("polygon", 50, 50, 10, tu.Car),
	}, false)

	got := s.Annotations()
	assert.Equal(t, []string{"box", "polygon"}, tu.IDs(got))
	assert.Equal(t, []string{"car"}, got[0].LabelIDs())
	assert.Empty(t, got[1].Labels)
}

func TestTaskChain_AddLabel_NonExclusive(t *testing.T) {
	_, s := newTaskChain(
		[]annotation.Task{tu.DetectionTask(), tu.ClassificationTask()}, nil,
		tu.Rect("r1", 0, 0, 50, 50, tu.Car),
	)

	s.AddLabel(tu.Red, []string{"r1"}, false)
	assert.Equal(t, []string{"car", "red"}, s.Annotations()[0].LabelIDs())

	s.AddLabel(tu.Blue, []string{"r1"}, false)
	assert.Equal(t, []string{"car", "blue"}, s.Annotations()[0].LabelIDs())
}

func TestTaskChain_AddLabel_UnknownIDs(t *testing.T) {
	base, s := newTaskChain(
		[]annotation.Task{tu.DetectionTask(), tu.ClassificationTask()}, nil,
		tu.Rect("r1", 0, 0, 50, 50, tu.Car),
	)

	s.AddLabel(tu.Red, []string{"missing"}, false)
	s.RemoveLabels([]annotation.Label{tu.Car}, []string{"missing"}, false)

	assert.Equal(t, []string{"car"}, s.Annotations()[0].LabelIDs())
	assert.False(t, base.CanUndo())
}

func TestTaskChain_AddLabel_ClassificationGlobal(t *testing.T) {
	classification := tu.ClassificationTask()
	_, s := newTaskChain([]annotation.Task{classification}, &classification)

	s.AddLabel(tu.Red, nil, false)
	got := s.Annotations()
	require.Len(t, got, 1)
	assert.Equal(t, geometry.Shape(tu.ROI), got[0].Shape)
	assert.Equal(t, []string{"red"}, got[0].LabelIDs())

	s.AddLabel(tu.Blue, nil, false)
	got = s.Annotations()
	require.Len(t, got, 1)
	assert.Equal(t, []string{"blue"}, got[0].LabelIDs())
}

func TestTaskChain_AddLabel_ExclusiveAllTasksLaterTask(t *testing.T) {
	base, s := newTaskChain(
		[]annotation.Task{tu.DetectionTask(), tu.SegmentationTask()}, nil,
		tu.Rect("r1", 0, 0, 50, 50, tu.Car),
		tu.Square("p1", 10, 10, 20, tu.Wheel),
		tu.Square("p2", 60, 60, 20, tu.Wheel),
	)

	s.AddLabel(tu.SegmentationEmpty, []string{"r1"}, false)

	got := s.Annotations()
	assert.Equal(t, []string{"r1", "p2"}, tu.IDs(got), "annotations inside the target are cleared")
	assert.Equal(t, []string{"car", "empty-seg"}, got[0].LabelIDs())

	require.True(t, base.Undo())
	assert.Len(t, s.Annotations(), 3)
}

func TestTaskChain_AddLabel_ExclusiveSelectedInput(t *testing.T) {
	segmentation := tu.SegmentationTask()
	_, s := newTaskChain(
		[]annotation.Task{tu.DetectionTask(), segmentation}, &segmentation,
		tu.Selected(tu.Rect("r1", 0, 0, 50, 50, tu.Car)),
		tu.Rect("r2", 50, 50, 50, 50, tu.Car),
		tu.Square("p1", 10, 10, 20, tu.Wheel),
	)

	s.AddLabel(tu.SegmentationEmpty, nil, false)

	got := s.Annotations()
	assert.Equal(t, []string{"r1", "r2"}, tu.IDs(got))
	assert.Equal(t, []string{"car", "empty-seg"}, got[0].LabelIDs())
	assert.Equal(t, []string{"car"}, got[1].LabelIDs())
}

func TestTaskChain_AddLabel_ExclusiveCreatesGlobal(t *testing.T) {
	detection := tu.DetectionTask()
	base, s := newTaskChain(
		[]annotation.Task{detection}, &detection,
		tu.Rect("b1", 0, 0, 10, 10, tu.Car),
		tu.Rect("b2", 20, 20, 10, 10, tu.Person),
	)

	s.AddLabel(tu.DetectionEmpty, nil, false)

	got := s.Annotations()
	require.Len(t, got, 1)
	assert.Equal(t, geometry.Shape(tu.ROI), got[0].Shape)
	assert.Equal(t, []string{"no-object"}, got[0].LabelIDs())

	globalID := got[0].ID
	s.AddLabel(tu.DetectionEmpty, nil, false)
	assert.Equal(t, []string{globalID}, tu.IDs(s.Annotations()), "applying the same empty label again is a no-op")

	require.True(t, base.Undo())
	assert.Equal(t, []string{"b1", "b2"}, tu.IDs(s.Annotations()))
}

func TestTaskChain_AddLabel_NormalClearsAnomalies(t *testing.T) {
	anomaly := tu.AnomalyTask(annotation.DomainAnomalyDetection)
	_, s := newTaskChain(
		[]annotation.Task{anomaly}, &anomaly,
		tu.Global("g", tu.Anomalous),
		tu.Rect("l", 10, 10, 5, 5, tu.Anomalous),
	)

	s.AddLabel(tu.Normal, nil, false)

	got := s.Annotations()
	require.Len(t, got, 1)
	assert.Equal(t, geometry.Shape(tu.ROI), got[0].Shape)
	assert.Equal(t, []string{"normal"}, got[0].LabelIDs())
}

func TestTaskChain_AddLabel_ExclusiveWithoutTarget(t *testing.T) {
	segmentation := tu.SegmentationTask()
	base, s := newTaskChain(
		[]annotation.Task{tu.DetectionTask(), segmentation}, &segmentation,
		tu.Rect("r1", 0, 0, 50, 50, tu.Car),
	)

	s.AddLabel(tu.SegmentationEmpty, nil, false)

	assert.Equal(t, []string{"car"}, s.Annotations()[0].LabelIDs())
	assert.False(t, base.CanUndo())
}

func TestTaskChain_RemoveLabels(t *testing.T) {
	_, chained := newTaskChain(
		[]annotation.Task{tu.DetectionTask(), tu.ClassificationTask()}, nil,
		tu.Rect("r1", 0, 0, 50, 50, tu.Car, tu.Red),
		tu.Rect("r2", 50, 50, 50, 50, tu.Car, tu.Red),
	)

	chained.RemoveLabels([]annotation.Label{tu.Car, tu.Red}, []string{"r1", "missing"}, false)
	chained.RemoveLabels([]annotation.Label{tu.Red}, []string{"r2"}, false)

	got := chained.Annotations()
	assert.Equal(t, []string{"r2"}, tu.IDs(got), "unlabelled annotations are removed in a chain")
	assert.Equal(t, []string{"car"}, got[0].LabelIDs())

	detection := tu.DetectionTask()
	_, single := newTaskChain([]annotation.Task{detection}, &detection, tu.Rect("b", 0, 0, 10, 10, tu.Car))
	single.RemoveLabels([]annotation.Label{tu.Car}, []string{"b"}, false)
	require.Len(t, single.Annotations(), 1)
	assert.Empty(t, single.Annotations()[0].Labels)
}

func TestTaskChain_RemoveAnnotations_KeepsGlobal(t *testing.T) {
	anomaly := tu.AnomalyTask(annotation.DomainAnomalyDetection)
	_, s := newTaskChain(
		[]annotation.Task{anomaly}, &anomaly,
		tu.Global("g", tu.Anomalous),
		tu.Rect("l", 10, 10, 5, 5, tu.Anomalous),
	)

	s.RemoveAnnotations(func(annotation.Annotation) bool { return true }, false)

	assert.Equal(t, []string{"g"}, tu.IDs(s.Annotations()))
}

func TestTaskChain_RemoveAnnotations_Detection(t *testing.T) {
	detection := tu.DetectionTask()
	base, s := newTaskChain(
		[]annotation.Task{detection}, &detection,
		tu.Global("g", tu.DetectionEmpty),
		tu.Rect("b", 10, 10, 5, 5, tu.Car),
	)

	s.RemoveAnnotations(func(a annotation.Annotation) bool { return a.ID == "g" }, false)
	assert.Equal(t, []string{"b"}, tu.IDs(s.Annotations()), "detection globals can be removed")

	s.RemoveAnnotations(func(annotation.Annotation) bool { return false }, false)
	require.True(t, base.Undo())
	assert.False(t, base.CanUndo(), "removing nothing records nothing")
}

func TestTaskChain_SelectAnnotation(t *testing.T) {
	segmentation := tu.SegmentationTask()
	_, s := newTaskChain(
		[]annotation.Task{tu.DetectionTask(), segmentation}, &segmentation,
		tu.Selected(tu.Rect("r1", 0, 0, 50, 50, tu.Car)),
		tu.Rect("r2", 50, 50, 50, 50, tu.Car),
		tu.Selected(tu.Square("p1", 10, 10, 20, tu.Wheel)),
	)

	s.SelectAnnotation("r2")
	got := s.Annotations()
	assert.False(t, find(t, got, "r1").IsSelected)
	assert.True(t, find(t, got, "r2").IsSelected)
	assert.True(t, find(t, got, "p1").IsSelected, "outputs keep their selection")

	s.SelectAnnotation("p1")
	got = s.Annotations()
	assert.False(t, find(t, got, "r2").IsSelected)
	assert.True(t, find(t, got, "p1").IsSelected)

	s.SelectAnnotation("missing")
	assert.True(t, find(t, s.Annotations(), "p1").IsSelected)
}

func TestTaskChain_GlobalAnnotations(t *testing.T) {
	detection := tu.DetectionTask()
	_, s := newTaskChain([]annotation.Task{detection}, &detection, tu.Global("g", tu.DetectionEmpty))

	assert.Equal(t, []string{"g"}, tu.IDs(s.GlobalAnnotations()))

	s.SetROI(geometry.Rect{Width: 200, Height: 200})
	assert.Empty(t, s.GlobalAnnotations())
}
