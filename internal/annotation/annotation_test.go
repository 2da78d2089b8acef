package annotation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-edge-platform/geti-sub021/internal/geometry"
)

func TestNew(t *testing.T) {
	labels := LabelsOf(carLabel)
	a := New(geometry.Rect{X: 1, Y: 2, Width: 3, Height: 4}, labels, 2)

	_, err := uuid.Parse(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, a.ZIndex)
	assert.Equal(t, []string{"car"}, a.LabelIDs())

	labels[0] = NewAnnotationLabel(emptyLabel)
	assert.Equal(t, "car", a.Labels[0].ID, "labels are copied on creation")
}

func TestAnnotation_Labels(t *testing.T) {
	task := Task{ID: "det", Domain: DomainDetection, Labels: []Label{carLabel, emptyLabel}}
	a := New(geometry.Rect{}, LabelsOf(carLabel), 0)

	assert.True(t, a.HasLabel(carLabel))
	assert.False(t, a.HasLabel(anomalousLabel))
	assert.True(t, a.HasLabelFromTask(task))
	assert.True(t, a.HasLabelMatching(IsLocal))
	assert.False(t, a.HasLabelMatching(IsExclusive))

	clone := a.Clone()
	clone.Labels[0] = NewAnnotationLabel(emptyLabel)
	assert.True(t, a.HasLabel(carLabel), "clone owns its labels")
}

func TestFindByIDAndFilter(t *testing.T) {
	a := New(geometry.Rect{}, LabelsOf(carLabel), 0)
	b := New(geometry.Rect{}, nil, 1)

	found, ok := FindByID([]Annotation{a, b}, b.ID)
	require.True(t, ok)
	assert.Equal(t, b.ID, found.ID)

	_, ok = FindByID([]Annotation{a}, "missing")
	assert.False(t, ok)

	labelled := Filter([]Annotation{a, b}, func(x Annotation) bool { return len(x.Labels) > 0 })
	assert.Len(t, labelled, 1)
	assert.Len(t, IDSet([]Annotation{a, b, a}), 2)
}
