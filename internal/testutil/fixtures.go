// Package testutil provides label, task and annotation fixtures shared by the
// reconciliation tests.
package testutil

import (
	"github.com/open-edge-platform/geti-sub021/internal/annotation"
	"github.com/open-edge-platform/geti-sub021/internal/geometry"
)

// ROI is the region of interest of the 100x100 test image.
var ROI = geometry.Rect{X: 0, Y: 0, Width: 100, Height: 100}

// Detection labels.
var (
	Car            = annotation.Label{ID: "car", Name: "car", Color: "#ff0000ff", Group: "Detection labels", Behaviour: annotation.Local}
	Person         = annotation.Label{ID: "person", Name: "person", Color: "#00ff00ff", Group: "Detection labels", Behaviour: annotation.Local}
	DetectionEmpty = annotation.Label{ID: "no-object", Name: "No object", Color: "#000000ff", Group: "No object", Behaviour: annotation.Global | annotation.Exclusive, IsEmpty: true}
)

// Classification labels.
var (
	Red                 = annotation.Label{ID: "red", Name: "red", Color: "#ee0000ff", Group: "Colour", Behaviour: annotation.Global}
	Blue                = annotation.Label{ID: "blue", Name: "blue", Color: "#0000eeff", Group: "Colour", Behaviour: annotation.Global}
	Sedan               = annotation.Label{ID: "sedan", Name: "sedan", Color: "#aaaaaaff", Group: "Body", Behaviour: annotation.Global}
	ClassificationEmpty = annotation.Label{ID: "no-class", Name: "No class", Color: "#111111ff", Group: "No class", Behaviour: annotation.Global | annotation.Exclusive, IsEmpty: true}
)

// Segmentation labels.
var (
	Wheel             = annotation.Label{ID: "wheel", Name: "wheel", Color: "#0f0f0fff", Group: "Segmentation labels", Behaviour: annotation.Local}
	SegmentationEmpty = annotation.Label{ID: "empty-seg", Name: "Empty", Color: "#222222ff", Group: "Empty", Behaviour: annotation.Global | annotation.Exclusive, IsEmpty: true}
)

// Anomaly labels.
var (
	Normal    = annotation.Label{ID: "normal", Name: "Normal", Color: "#00aa00ff", Group: "default - Anomaly", Behaviour: annotation.Global | annotation.Exclusive}
	Anomalous = annotation.Label{ID: "anomalous", Name: "Anomalous", Color: "#aa0000ff", Group: "default - Anomaly", Behaviour: annotation.Global | annotation.Anomalous}
)

func DetectionTask() annotation.Task {
	return annotation.Task{ID: "task-detection", Title: "Detection", Domain: annotation.DomainDetection, Labels: []annotation.Label{Car, Person, DetectionEmpty}}
}

func ClassificationTask() annotation.Task {
	return annotation.Task{ID: "task-classification", Title: "Classification", Domain: annotation.DomainClassification, Labels: []annotation.Label{Red, Blue, Sedan, ClassificationEmpty}}
}

func SegmentationTask() annotation.Task {
	return annotation.Task{ID: "task-segmentation", Title: "Segmentation", Domain: annotation.DomainSegmentation, Labels: []annotation.Label{Wheel, SegmentationEmpty}}
}

func AnomalyTask(domain annotation.Domain) annotation.Task {
	return annotation.Task{ID: "task-anomaly", Title: "Anomaly", Domain: domain, Labels: []annotation.Label{Normal, Anomalous}}
}

// Rect returns an annotation with a Rect shape.
func Rect(id string, x, y, width, height float64, labels ...annotation.Label) annotation.Annotation {
	return annotation.Annotation{
		ID:     id,
		Shape:  geometry.Rect{X: x, Y: y, Width: width, Height: height},
		Labels: annotation.LabelsOf(labels...),
	}
}

// Square returns an annotation with a square Polygon shape.
func Square(id string, x, y, size float64, labels ...annotation.Label) annotation.Annotation {
	return annotation.Annotation{
		ID: id,
		Shape: geometry.Polygon{Points: []geometry.Point{
			{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size}, {X: x, Y: y + size},
		}},
		Labels: annotation.LabelsOf(labels...),
	}
}

// Global returns a Rect annotation covering ROI.
func Global(id string, labels ...annotation.Label) annotation.Annotation {
	return Rect(id, ROI.X, ROI.Y, ROI.Width, ROI.Height, labels...)
}

// Selected returns a with IsSelected set.
func Selected(a annotation.Annotation) annotation.Annotation {
	a.IsSelected = true
	return a
}

// IDs returns the ids of annotations in order.
func IDs(annotations []annotation.Annotation) []string {
	ids := make([]string, len(annotations))
	for i, a := range annotations {
		ids[i] = a.ID
	}
	return ids
}

// Ptr returns a pointer to a copy of task, for use as a selected task.
func Ptr(task annotation.Task) *annotation.Task {
	return &task
}
