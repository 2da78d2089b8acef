package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	emptyLabel     = Label{ID: "empty", Name: "No object", Group: "No object", Behaviour: Global | Exclusive, IsEmpty: true}
	normalLabel    = Label{ID: "normal", Name: "Normal", Group: "default", Behaviour: Global | Exclusive}
	anomalousLabel = Label{ID: "anomalous", Name: "Anomalous", Group: "default", Behaviour: Global | Anomalous}
	carLabel       = Label{ID: "car", Name: "car", Group: "vehicles", Behaviour: Local}
	backgroundLbl  = Label{ID: "bg", Name: "Background", Group: "bg", Behaviour: Local | Background}
)

func TestLabelPredicates(t *testing.T) {
	tests := []struct {
		name          string
		label         Label
		exclusive     bool
		local         bool
		global        bool
		anomalous     bool
		empty         bool
		emptyOrBg     bool
		nonEmptyLabel bool
	}{
		{"empty", emptyLabel, true, false, true, false, true, true, false},
		{"normal", normalLabel, true, false, true, false, false, false, false},
		{"anomalous", anomalousLabel, false, false, true, true, false, false, true},
		{"local", carLabel, false, true, false, false, false, false, true},
		{"background", backgroundLbl, false, true, false, false, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exclusive, IsExclusive(tt.label), "IsExclusive")
			assert.Equal(t, tt.local, IsLocal(tt.label), "IsLocal")
			assert.Equal(t, tt.global, IsGlobal(tt.label), "IsGlobal")
			assert.Equal(t, tt.anomalous, IsAnomalous(tt.label), "IsAnomalous")
			assert.Equal(t, tt.empty, IsEmpty(tt.label), "IsEmpty")
			assert.Equal(t, tt.emptyOrBg, IsEmptyOrBackground(tt.label), "IsEmptyOrBackground")
			assert.Equal(t, tt.nonEmptyLabel, IsNonEmptyLabel(tt.label), "IsNonEmptyLabel")
		})
	}
}

func TestShowLabelScore(t *testing.T) {
	score := 0.87

	predicted := func(l Label) AnnotationLabel {
		return AnnotationLabel{Label: l, Score: &score, Source: LabelSource{ModelID: "model-1"}}
	}

	tests := []struct {
		name   string
		label  AnnotationLabel
		domain Domain
		want   bool
	}{
		{"model label", predicted(carLabel), DomainDetection, true},
		{"user label", AnnotationLabel{Label: carLabel, Source: LabelSource{UserID: "alice"}}, DomainDetection, false},
		{"no score", AnnotationLabel{Label: carLabel, Source: LabelSource{ModelID: "model-1"}}, DomainDetection, false},
		{"scored but user attributed", AnnotationLabel{Label: carLabel, Score: &score, Source: LabelSource{UserID: "alice"}}, DomainDetection, false},
		{"exclusive outside anomaly", predicted(emptyLabel), DomainDetection, false},
		{"exclusive in anomaly classification", predicted(normalLabel), DomainAnomalyClassification, true},
		{"exclusive in anomaly segmentation", predicted(normalLabel), DomainAnomalySegmentation, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShowLabelScore(tt.label, tt.domain))
		})
	}
}

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#FF0000", "#ff0000ff"},
		{"#00ff0080", "#00ff00ff"},
		{"#fff", "#ffffffff"},
		{" #123456 ", "#123456ff"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NormalizeColor("red")
	assert.Error(t, err)
}

func TestDefaultColor(t *testing.T) {
	first := DefaultColor(0)
	assert.Len(t, first, 9)
	assert.Equal(t, first, DefaultColor(0), "colors are deterministic")
	assert.NotEqual(t, first, DefaultColor(1))

	_, err := NormalizeColor(DefaultColor(7))
	assert.NoError(t, err)
}

func TestDomain(t *testing.T) {
	assert.True(t, DomainAnomalyDetection.IsAnomaly())
	assert.False(t, DomainDetection.IsAnomaly())
	assert.True(t, DomainInstanceSegmentation.IsSegmentation())
	assert.True(t, DomainClassification.IsClassification())
	assert.False(t, Domain("OCR").IsValid())
	for _, d := range Domains {
		assert.True(t, d.IsValid(), d)
	}
}

func TestAddLabel(t *testing.T) {
	sameGroup := func(a, b Label) bool { return a.Group == b.Group }
	truck := Label{ID: "truck", Group: "vehicles", Behaviour: Local}

	labels := LabelsOf(carLabel, anomalousLabel)

	got := AddLabel(labels, NewAnnotationLabel(truck), sameGroup)
	assert.Equal(t, []string{"anomalous", "truck"}, idsOf(got))
	assert.Len(t, labels, 2, "input is not modified")

	got = AddLabel(labels, NewAnnotationLabel(carLabel), nil)
	assert.Equal(t, []string{"anomalous", "car"}, idsOf(got), "re-adding moves the label to the end")

	got = AddLabel(nil, NewAnnotationLabel(emptyLabel), sameGroup)
	assert.Equal(t, []string{"empty"}, idsOf(got))
}

func TestRemoveLabels(t *testing.T) {
	labels := LabelsOf(carLabel, anomalousLabel, emptyLabel)

	got := RemoveLabels(labels, []Label{anomalousLabel, backgroundLbl})
	assert.Equal(t, []string{"car", "empty"}, idsOf(got))
	assert.Empty(t, RemoveLabels(labels, []Label{carLabel, anomalousLabel, emptyLabel}))
}

func idsOf(labels []AnnotationLabel) []string {
	ids := make([]string, len(labels))
	for i, l := range labels {
		ids[i] = l.ID
	}
	return ids
}
