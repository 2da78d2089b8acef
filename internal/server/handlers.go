package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/open-edge-platform/geti-sub021/internal/annotation"
	"github.com/open-edge-platform/geti-sub021/internal/config"
	"github.com/open-edge-platform/geti-sub021/internal/geometry"
	"github.com/open-edge-platform/geti-sub021/internal/media"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "project_load", "scene_add_shapes").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// errInvalidArguments marks argument errors, reported as invalid params.
var errInvalidArguments = errors.New("invalid arguments")

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Argument errors return code -32602, other tool errors -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Debug("tool failed", zap.String("tool", params.Name), zap.Error(err))
		if errors.Is(err, errInvalidArguments) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Session setup
	case "project_load":
		return s.handleProjectLoad(args)
	case "media_load":
		return s.handleMediaLoad(args)
	case "session_set_roi":
		return s.handleSetROI(args)
	case "task_select":
		return s.handleTaskSelect(args)

	// Annotation state
	case "annotations_set":
		return s.handleAnnotationsSet(args)
	case "annotations_list":
		return s.handleAnnotationsList(args)
	case "taskchain_view":
		return s.handleTaskChainView(args)
	case "annotations_merge":
		return s.handleAnnotationsMerge(args)

	// Scene edits
	case "scene_add_shapes":
		return s.handleAddShapes(args)
	case "scene_add_annotations":
		return s.handleAddAnnotations(args)
	case "scene_add_label":
		return s.handleAddLabel(args)
	case "scene_remove_labels":
		return s.handleRemoveLabels(args)
	case "scene_remove_annotations":
		return s.handleRemoveAnnotations(args)
	case "scene_select_annotation":
		return s.handleSelectAnnotation(args)
	case "scene_undo":
		return s.handleUndo(args)
	case "scene_redo":
		return s.handleRedo(args)

	// Media
	case "annotation_crop":
		return s.handleAnnotationCrop(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Missing arguments decode as zero
// values.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return nil
}

// SceneResult reports the annotations after a scene edit.
type SceneResult struct {
	Annotations []AnnotationResult `json:"annotations"`
	Added       []string           `json:"added_ids,omitempty"`
	CanUndo     bool               `json:"can_undo"`
	CanRedo     bool               `json:"can_redo"`
}

func (s *Server) sceneResult(added []annotation.Annotation) *SceneResult {
	return &SceneResult{
		Annotations: encodeAnnotations(s.session.chain, s.session.scene.Annotations()),
		Added:       idsOf(added),
		CanUndo:     s.session.base.CanUndo(),
		CanRedo:     s.session.base.CanRedo(),
	}
}

// === Session Setup Handlers ===

type projectLoadArgs struct {
	Path string `json:"path"`
	YAML string `json:"yaml"`
}

// ProjectResult describes a loaded project.
type ProjectResult struct {
	Name  string            `json:"name"`
	Tasks []annotation.Task `json:"tasks"`
}

func (s *Server) handleProjectLoad(args json.RawMessage) (interface{}, error) {
	var a projectLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var (
		project *config.Project
		err     error
	)
	switch {
	case a.Path != "" && a.YAML != "":
		return nil, fmt.Errorf("%w: pass either path or yaml, not both", errInvalidArguments)
	case a.Path != "":
		project, err = config.LoadProject(a.Path)
	case a.YAML != "":
		project, err = config.ParseProject([]byte(a.YAML))
	default:
		return nil, fmt.Errorf("%w: path or yaml is required", errInvalidArguments)
	}
	if err != nil {
		return nil, err
	}

	if err := s.session.loadProject(project); err != nil {
		return nil, err
	}
	s.logger.Info("project loaded", zap.String("project", project.Name), zap.Int("tasks", len(project.Tasks)))

	return &ProjectResult{Name: project.Name, Tasks: s.session.chain.Tasks}, nil
}

type mediaLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleMediaLoad(args json.RawMessage) (interface{}, error) {
	var a mediaLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidArguments)
	}

	if s.session.media != nil && s.session.media.Path != a.Path {
		s.images.Evict(s.session.media.Path)
	}
	info, err := media.LoadInfo(s.images, a.Path)
	if err != nil {
		return nil, err
	}
	s.session.setMedia(info)
	s.logger.Info("media loaded", zap.String("path", a.Path), zap.Int("width", info.Width), zap.Int("height", info.Height))

	return info, nil
}

type setROIArgs struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) handleSetROI(args json.RawMessage) (interface{}, error) {
	var a setROIArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.session.ready(); err != nil {
		return nil, err
	}
	if a.Width <= 0 || a.Height <= 0 {
		return nil, fmt.Errorf("%w: roi must have a positive size", errInvalidArguments)
	}

	roi := geometry.Rect{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height}
	s.session.scene.SetROI(roi)
	return roi, nil
}

type taskSelectArgs struct {
	TaskID string `json:"task_id"`
}

// TaskSelectResult reports the selected task; an empty id means all tasks.
type TaskSelectResult struct {
	TaskID string `json:"task_id"`
	Title  string `json:"title,omitempty"`
}

func (s *Server) handleTaskSelect(args json.RawMessage) (interface{}, error) {
	var a taskSelectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.session.ready(); err != nil {
		return nil, err
	}

	if a.TaskID == "" {
		s.session.scene.SelectTask(nil)
		return &TaskSelectResult{}, nil
	}

	task, ok := s.session.findTask(a.TaskID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown task %s", errInvalidArguments, a.TaskID)
	}
	s.session.scene.SelectTask(task)
	return &TaskSelectResult{TaskID: task.ID, Title: task.Title}, nil
}

// === Annotation State Handlers ===

type annotationsArgs struct {
	Annotations []annotationJSON `json:"annotations"`
	SkipHistory bool             `json:"skip_history"`
}

func (s *Server) decodeAnnotationsArgs(args json.RawMessage) (*annotationsArgs, []annotation.Annotation, error) {
	var a annotationsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, nil, err
	}
	if err := s.session.ready(); err != nil {
		return nil, nil, err
	}
	annotations, err := decodeAnnotations(s.session.chain, a.Annotations)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return &a, annotations, nil
}

func (s *Server) handleAnnotationsSet(args json.RawMessage) (interface{}, error) {
	_, annotations, err := s.decodeAnnotationsArgs(args)
	if err != nil {
		return nil, err
	}
	if len(annotations) > s.cfg.MaxAnnotations {
		return nil, fmt.Errorf("%w: %d exceeds limit of %d", ErrTooManyAnnotations, len(annotations), s.cfg.MaxAnnotations)
	}

	s.session.reset(annotations)
	return s.sceneResult(nil), nil
}

func (s *Server) handleAnnotationsList(args json.RawMessage) (interface{}, error) {
	if err := s.session.ready(); err != nil {
		return nil, err
	}
	return encodeAnnotations(s.session.chain, s.session.scene.Annotations()), nil
}

func (s *Server) handleTaskChainView(args json.RawMessage) (interface{}, error) {
	if err := s.session.ready(); err != nil {
		return nil, err
	}
	return encodeView(s.session.chain, s.session.scene.SelectedTask(), s.session.view()), nil
}

func (s *Server) handleAnnotationsMerge(args json.RawMessage) (interface{}, error) {
	a, incoming, err := s.decodeAnnotationsArgs(args)
	if err != nil {
		return nil, err
	}

	merged := s.session.merger().Merge(incoming, s.session.scene.Annotations())
	if len(merged) > s.cfg.MaxAnnotations {
		return nil, fmt.Errorf("%w: %d exceeds limit of %d", ErrTooManyAnnotations, len(merged), s.cfg.MaxAnnotations)
	}

	s.session.base.Replace(merged, a.SkipHistory)
	return s.sceneResult(nil), nil
}

// === Scene Edit Handlers ===

type addShapesArgs struct {
	Shapes      []shapeJSON `json:"shapes"`
	LabelIDs    []string    `json:"label_ids"`
	Selected    bool        `json:"selected"`
	SkipHistory bool        `json:"skip_history"`
}

func (s *Server) handleAddShapes(args json.RawMessage) (interface{}, error) {
	var a addShapesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.session.ready(); err != nil {
		return nil, err
	}

	shapes := make([]geometry.Shape, 0, len(a.Shapes))
	for i, raw := range a.Shapes {
		shape, err := decodeShape(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: shape %d: %v", errInvalidArguments, i, err)
		}
		shapes = append(shapes, shape)
	}
	labels, err := lookupLabels(s.session.chain, a.LabelIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	if err := s.session.checkLimit(len(shapes) + s.session.anomalySlack(shapes, labels)); err != nil {
		return nil, err
	}

	added := s.session.scene.AddShapes(shapes, labels, a.Selected, a.SkipHistory)
	return s.sceneResult(added), nil
}

func (s *Server) handleAddAnnotations(args json.RawMessage) (interface{}, error) {
	a, annotations, err := s.decodeAnnotationsArgs(args)
	if err != nil {
		return nil, err
	}
	if err := s.session.checkLimit(len(annotations) + s.session.annotationsSlack(annotations)); err != nil {
		return nil, err
	}

	s.session.scene.AddAnnotations(annotations, a.SkipHistory)
	return s.sceneResult(nil), nil
}

type addLabelArgs struct {
	LabelID       string   `json:"label_id"`
	AnnotationIDs []string `json:"annotation_ids"`
	SkipHistory   bool     `json:"skip_history"`
}

func (s *Server) handleAddLabel(args json.RawMessage) (interface{}, error) {
	var a addLabelArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.session.ready(); err != nil {
		return nil, err
	}
	label, err := lookupLabel(s.session.chain, a.LabelID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArguments, err)
	}

	s.session.scene.AddLabel(label, a.AnnotationIDs, a.SkipHistory)
	return s.sceneResult(nil), nil
}

type removeLabelsArgs struct {
	LabelIDs      []string `json:"label_ids"`
	AnnotationIDs []string `json:"annotation_ids"`
	SkipHistory   bool     `json:"skip_history"`
}

func (s *Server) handleRemoveLabels(args json.RawMessage) (interface{}, error) {
	var a removeLabelsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.session.ready(); err != nil {
		return nil, err
	}
	labels, err := lookupLabels(s.session.chain, a.LabelIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArguments, err)
	}

	s.session.scene.RemoveLabels(labels, a.AnnotationIDs, a.SkipHistory)
	return s.sceneResult(nil), nil
}

type removeAnnotationsArgs struct {
	AnnotationIDs []string `json:"annotation_ids"`
	SkipHistory   bool     `json:"skip_history"`
}

func (s *Server) handleRemoveAnnotations(args json.RawMessage) (interface{}, error) {
	var a removeAnnotationsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.session.ready(); err != nil {
		return nil, err
	}

	remove := make(map[string]bool, len(a.AnnotationIDs))
	for _, id := range a.AnnotationIDs {
		remove[id] = true
	}
	s.session.scene.RemoveAnnotations(func(an annotation.Annotation) bool { return remove[an.ID] }, a.SkipHistory)
	return s.sceneResult(nil), nil
}

type selectAnnotationArgs struct {
	AnnotationID string `json:"annotation_id"`
}

func (s *Server) handleSelectAnnotation(args json.RawMessage) (interface{}, error) {
	var a selectAnnotationArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.session.ready(); err != nil {
		return nil, err
	}

	s.session.scene.SelectAnnotation(a.AnnotationID)
	return s.sceneResult(nil), nil
}

// HistoryResult reports the outcome of an undo or redo.
type HistoryResult struct {
	Changed bool `json:"changed"`
	SceneResult
}

func (s *Server) handleUndo(args json.RawMessage) (interface{}, error) {
	if err := s.session.ready(); err != nil {
		return nil, err
	}
	changed := s.session.base.Undo()
	return &HistoryResult{Changed: changed, SceneResult: *s.sceneResult(nil)}, nil
}

func (s *Server) handleRedo(args json.RawMessage) (interface{}, error) {
	if err := s.session.ready(); err != nil {
		return nil, err
	}
	changed := s.session.base.Redo()
	return &HistoryResult{Changed: changed, SceneResult: *s.sceneResult(nil)}, nil
}

// === Media Handlers ===

type annotationCropArgs struct {
	AnnotationID string  `json:"annotation_id"`
	Scale        float64 `json:"scale"`
}

func (s *Server) handleAnnotationCrop(args json.RawMessage) (interface{}, error) {
	var a annotationCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	if err := s.session.ready(); err != nil {
		return nil, err
	}
	if s.session.media == nil {
		return nil, ErrNoMedia
	}

	target, ok := annotation.FindByID(s.session.scene.Annotations(), a.AnnotationID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown annotation %s", errInvalidArguments, a.AnnotationID)
	}
	img, err := s.images.Load(s.session.media.Path)
	if err != nil {
		return nil, err
	}
	return media.CropShape(img, target.Shape, a.Scale)
}
