package server

import (
	"errors"
	"fmt"

	"github.com/open-edge-platform/geti-sub021/internal/annotation"
	"github.com/open-edge-platform/geti-sub021/internal/geometry"
	"github.com/open-edge-platform/geti-sub021/internal/taskchain"
)

var (
	// ErrUnknownShape is returned for shapes with a missing or unsupported type.
	ErrUnknownShape = errors.New("unknown shape type")

	// ErrUnknownLabel is returned when a label id is not part of the project.
	ErrUnknownLabel = errors.New("unknown label")
)

// shapeJSON carries every field any shape variant uses. Which fields are
// read depends on Type.
type shapeJSON struct {
	Type   geometry.ShapeType  `json:"type"`
	X      float64             `json:"x,omitempty"`
	Y      float64             `json:"y,omitempty"`
	Width  float64             `json:"width,omitempty"`
	Height float64             `json:"height,omitempty"`
	Angle  float64             `json:"angle,omitempty"`
	R      float64             `json:"r,omitempty"`
	Points []geometry.Keypoint `json:"points,omitempty"`
}

func decodeShape(s shapeJSON) (geometry.Shape, error) {
	switch s.Type {
	case geometry.TypeRect:
		return geometry.Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}, nil
	case geometry.TypeRotatedRect:
		return geometry.RotatedRect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height, Angle: s.Angle}, nil
	case geometry.TypeCircle:
		return geometry.Circle{X: s.X, Y: s.Y, Radius: s.R}, nil
	case geometry.TypePolygon:
		points := make([]geometry.Point, len(s.Points))
		for i, p := range s.Points {
			points[i] = p.Point
		}
		return geometry.Polygon{Points: points}, nil
	case geometry.TypePose:
		return geometry.Pose{Points: append([]geometry.Keypoint(nil), s.Points...)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, s.Type)
	}
}

func encodeShape(shape geometry.Shape) shapeJSON {
	switch s := shape.(type) {
	case geometry.Rect:
		return shapeJSON{Type: s.Type(), X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
	case geometry.RotatedRect:
		return shapeJSON{Type: s.Type(), X: s.X, Y: s.Y, Width: s.Width, Height: s.Height, Angle: s.Angle}
	case geometry.Circle:
		return shapeJSON{Type: s.Type(), X: s.X, Y: s.Y, R: s.Radius}
	case geometry.Polygon:
		points := make([]geometry.Keypoint, len(s.Points))
		for i, p := range s.Points {
			points[i] = geometry.Keypoint{Point: p}
		}
		return shapeJSON{Type: s.Type(), Points: points}
	case geometry.Pose:
		return shapeJSON{Type: s.Type(), Points: s.Points}
	default:
		return shapeJSON{}
	}
}

// labelRefJSON references a project label from an incoming annotation.
type labelRefJSON struct {
	ID      string   `json:"id"`
	Score   *float64 `json:"score,omitempty"`
	UserID  string   `json:"user_id,omitempty"`
	ModelID string   `json:"model_id,omitempty"`
}

type annotationJSON struct {
	ID         string         `json:"id"`
	Shape      shapeJSON      `json:"shape"`
	Labels     []labelRefJSON `json:"labels"`
	IsSelected bool           `json:"is_selected,omitempty"`
	IsHidden   bool           `json:"is_hidden,omitempty"`
	IsLocked   bool           `json:"is_locked,omitempty"`
	ZIndex     int            `json:"z_index,omitempty"`
}

// decodeAnnotations resolves incoming annotations against the labels of
// chain. Annotations without an id get a fresh one.
func decodeAnnotations(chain taskchain.Chain, in []annotationJSON) ([]annotation.Annotation, error) {
	out := make([]annotation.Annotation, 0, len(in))
	for i, a := range in {
		shape, err := decodeShape(a.Shape)
		if err != nil {
			return nil, fmt.Errorf("annotation %d: %w", i, err)
		}

		labels := make([]annotation.AnnotationLabel, 0, len(a.Labels))
		for _, ref := range a.Labels {
			label, err := lookupLabel(chain, ref.ID)
			if err != nil {
				return nil, fmt.Errorf("annotation %d: %w", i, err)
			}
			labels = append(labels, annotation.AnnotationLabel{
				Label:  label,
				Score:  ref.Score,
				Source: annotation.LabelSource{UserID: ref.UserID, ModelID: ref.ModelID},
			})
		}

		id := a.ID
		if id == "" {
			id = annotation.NewID()
		}
		out = append(out, annotation.Annotation{
			ID:         id,
			Shape:      shape,
			Labels:     labels,
			IsSelected: a.IsSelected,
			IsHidden:   a.IsHidden,
			IsLocked:   a.IsLocked,
			ZIndex:     a.ZIndex,
		})
	}
	return out, nil
}

func lookupLabel(chain taskchain.Chain, id string) (annotation.Label, error) {
	label, ok := chain.FindLabel(id)
	if !ok {
		return annotation.Label{}, fmt.Errorf("%w: %s", ErrUnknownLabel, id)
	}
	return label, nil
}

func lookupLabels(chain taskchain.Chain, ids []string) ([]annotation.Label, error) {
	labels := make([]annotation.Label, 0, len(ids))
	for _, id := range ids {
		label, err := lookupLabel(chain, id)
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, nil
}

// LabelResult is a label as reported on an annotation.
type LabelResult struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Color     string   `json:"color"`
	Score     *float64 `json:"score,omitempty"`
	ShowScore bool     `json:"show_score"`
	UserID    string   `json:"user_id,omitempty"`
	ModelID   string   `json:"model_id,omitempty"`
}

// AnnotationResult is an annotation as reported by the tools.
type AnnotationResult struct {
	ID         string        `json:"id"`
	Shape      shapeJSON     `json:"shape"`
	Labels     []LabelResult `json:"labels"`
	IsSelected bool          `json:"is_selected"`
	IsHidden   bool          `json:"is_hidden"`
	IsLocked   bool          `json:"is_locked"`
	ZIndex     int           `json:"z_index"`
}

func encodeAnnotations(chain taskchain.Chain, in []annotation.Annotation) []AnnotationResult {
	out := make([]AnnotationResult, len(in))
	for i, a := range in {
		labels := make([]LabelResult, len(a.Labels))
		for j, l := range a.Labels {
			var domain annotation.Domain
			if task, ok := chain.TaskOfLabel(l.Label); ok {
				domain = task.Domain
			}
			labels[j] = LabelResult{
				ID:        l.ID,
				Name:      l.Name,
				Color:     l.Color,
				Score:     l.Score,
				ShowScore: annotation.ShowLabelScore(l, domain),
				UserID:    l.Source.UserID,
				ModelID:   l.Source.ModelID,
			}
		}
		out[i] = AnnotationResult{
			ID:         a.ID,
			Shape:      encodeShape(a.Shape),
			Labels:     labels,
			IsSelected: a.IsSelected,
			IsHidden:   a.IsHidden,
			IsLocked:   a.IsLocked,
			ZIndex:     a.ZIndex,
		}
	}
	return out
}

// InputResult is an input of the selected task with the ids of its outputs.
type InputResult struct {
	AnnotationResult
	OutputIDs []string `json:"output_ids"`
}

// ViewResult is the task-chain view of the session.
type ViewResult struct {
	SelectedTask string             `json:"selected_task,omitempty"`
	Inputs       []InputResult      `json:"inputs"`
	Outputs      []AnnotationResult `json:"outputs"`
	Ungrouped    []string           `json:"ungrouped_output_ids"`
	Global       []AnnotationResult `json:"global"`
}

func encodeView(chain taskchain.Chain, selected *annotation.Task, view taskchain.View) ViewResult {
	result := ViewResult{
		Inputs:    make([]InputResult, len(view.Inputs)),
		Outputs:   encodeAnnotations(chain, view.Outputs),
		Ungrouped: idsOf(view.OutputsByInput[taskchain.UngroupedKey]),
		Global:    encodeAnnotations(chain, view.Global),
	}
	if selected != nil {
		result.SelectedTask = selected.ID
	}
	for i, input := range view.Inputs {
		result.Inputs[i] = InputResult{
			AnnotationResult: encodeAnnotations(chain, []annotation.Annotation{input.Annotation})[0],
			OutputIDs:        idsOf(input.Outputs),
		}
	}
	return result
}

func idsOf(annotations []annotation.Annotation) []string {
	ids := make([]string, len(annotations))
	for i, a := range annotations {
		ids[i] = a.ID
	}
	return ids
}
