package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func object(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func property(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

func arrayOf(items map[string]interface{}, description string) map[string]interface{} {
	return map[string]interface{}{"type": "array", "items": items, "description": description}
}

var skipHistoryProperty = property("boolean", "Do not record this change in the undo history. Default false")

var shapeSchema = map[string]interface{}{
	"type":        "object",
	"description": "Shape in image pixels. RECTANGLE uses x,y (top-left),width,height; ROTATED_RECTANGLE uses x,y (center),width,height,angle (degrees); CIRCLE uses x,y,r; POLYGON and POSE use points",
	"properties": map[string]interface{}{
		"type": map[string]interface{}{
			"type": "string",
			"enum": []string{"RECTANGLE", "ROTATED_RECTANGLE", "POLYGON", "CIRCLE", "POSE"},
		},
		"x":      property("number", "X coordinate"),
		"y":      property("number", "Y coordinate"),
		"width":  property("number", "Width"),
		"height": property("number", "Height"),
		"angle":  property("number", "Rotation in degrees, clockwise"),
		"r":      property("number", "Circle radius"),
		"points": arrayOf(object(map[string]interface{}{
			"x":        property("number", "X coordinate"),
			"y":        property("number", "Y coordinate"),
			"label":    property("string", "Keypoint name (POSE only)"),
			"occluded": property("boolean", "Keypoint is occluded (POSE only)"),
		}, "x", "y"), "Vertices or keypoints"),
	},
	"required": []string{"type"},
}

var annotationSchema = object(map[string]interface{}{
	"id":    property("string", "Annotation id. Generated when omitted"),
	"shape": shapeSchema,
	"labels": arrayOf(object(map[string]interface{}{
		"id":       property("string", "Label id from the project"),
		"score":    property("number", "Prediction confidence between 0 and 1"),
		"user_id":  property("string", "User who assigned the label"),
		"model_id": property("string", "Model that predicted the label"),
	}, "id"), "Labels of the annotation"),
	"is_selected": property("boolean", "Selected in the editor"),
	"is_hidden":   property("boolean", "Hidden in the editor"),
	"is_locked":   property("boolean", "Locked against edits"),
	"z_index":     property("integer", "Drawing order"),
}, "shape")

var annotationIDsProperty = arrayOf(map[string]interface{}{"type": "string"}, "Annotation ids")
var labelIDsProperty = arrayOf(map[string]interface{}{"type": "string"}, "Label ids from the project")

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session setup
		{
			Name:        "project_load",
			Description: "Load a project: the ordered task chain and the labels of every task. Pass either a path to a YAML project file or the YAML itself. Starts an empty annotation scene.",
			InputSchema: object(map[string]interface{}{
				"path": property("string", "Absolute path to the project YAML file"),
				"yaml": property("string", "Project YAML document"),
			}),
		},
		{
			Name:        "media_load",
			Description: "Load the image to annotate. Its full extent becomes the region of interest and the annotation scene is cleared.",
			InputSchema: object(map[string]interface{}{
				"path": property("string", "Absolute path to the image file"),
			}, "path"),
		},
		{
			Name:        "session_set_roi",
			Description: "Set the region of interest the global annotations must cover, e.g. the crop a later task works on.",
			InputSchema: object(map[string]interface{}{
				"x":      property("number", "Left edge"),
				"y":      property("number", "Top edge"),
				"width":  property("number", "Width"),
				"height": property("number", "Height"),
			}, "x", "y", "width", "height"),
		},
		{
			Name:        "task_select",
			Description: "Select the task being annotated. Omit task_id to work on all tasks at once.",
			InputSchema: object(map[string]interface{}{
				"task_id": property("string", "Task id from the project"),
			}),
		},

		// Annotation state
		{
			Name:        "annotations_set",
			Description: "Replace every annotation of the image, e.g. with annotations loaded from storage. Not recorded in the undo history.",
			InputSchema: object(map[string]interface{}{
				"annotations": arrayOf(annotationSchema, "Annotations"),
			}, "annotations"),
		},
		{
			Name:        "annotations_list",
			Description: "List every annotation of the image with its labels. Each label reports whether its score should be shown.",
			InputSchema: object(map[string]interface{}{}),
		},
		{
			Name:        "taskchain_view",
			Description: "Get the inputs and outputs of the selected task, the outputs grouped under the input containing them, and the global annotation.",
			InputSchema: object(map[string]interface{}{}),
		},
		{
			Name:        "annotations_merge",
			Description: "Merge incoming annotations, typically predictions, into the current ones. Annotations sharing an id take the incoming shape and the union of labels.",
			InputSchema: object(map[string]interface{}{
				"annotations":  arrayOf(annotationSchema, "Incoming annotations"),
				"skip_history": skipHistoryProperty,
			}, "annotations"),
		},

		// Scene edits
		{
			Name:        "scene_add_shapes",
			Description: "Draw shapes with the given labels, applying the task-chain rules: empty labels under the new shapes are removed, detection labels are dropped from non-rectangles and anomalous labels get a global anomalous annotation.",
			InputSchema: object(map[string]interface{}{
				"shapes":       arrayOf(shapeSchema, "Shapes to draw"),
				"label_ids":    labelIDsProperty,
				"selected":     property("boolean", "Select the new annotations"),
				"skip_history": skipHistoryProperty,
			}, "shapes"),
		},
		{
			Name:        "scene_add_annotations",
			Description: "Add complete annotations with the same task-chain rules as scene_add_shapes. Existing annotations with the same id are replaced.",
			InputSchema: object(map[string]interface{}{
				"annotations":  arrayOf(annotationSchema, "Annotations"),
				"skip_history": skipHistoryProperty,
			}, "annotations"),
		},
		{
			Name:        "scene_add_label",
			Description: "Apply a label. Without annotation ids, exclusive labels apply to the selected inputs or become the global annotation, and classification labels apply to the global annotation.",
			InputSchema: object(map[string]interface{}{
				"label_id":       property("string", "Label id from the project"),
				"annotation_ids": annotationIDsProperty,
				"skip_history":   skipHistoryProperty,
			}, "label_id"),
		},
		{
			Name:        "scene_remove_labels",
			Description: "Remove labels from annotations. In a chain of several tasks, annotations left without labels are removed.",
			InputSchema: object(map[string]interface{}{
				"label_ids":      labelIDsProperty,
				"annotation_ids": annotationIDsProperty,
				"skip_history":   skipHistoryProperty,
			}, "label_ids", "annotation_ids"),
		},
		{
			Name:        "scene_remove_annotations",
			Description: "Remove annotations. The global annotation of classification and anomaly tasks is kept.",
			InputSchema: object(map[string]interface{}{
				"annotation_ids": annotationIDsProperty,
				"skip_history":   skipHistoryProperty,
			}, "annotation_ids"),
		},
		{
			Name:        "scene_select_annotation",
			Description: "Select an annotation. Selecting an input of the selected task deselects the other inputs only.",
			InputSchema: object(map[string]interface{}{
				"annotation_id": property("string", "Annotation id"),
			}, "annotation_id"),
		},
		{
			Name:        "scene_undo",
			Description: "Undo the last recorded scene change.",
			InputSchema: object(map[string]interface{}{}),
		},
		{
			Name:        "scene_redo",
			Description: "Redo the last undone scene change.",
			InputSchema: object(map[string]interface{}{}),
		},

		// Media
		{
			Name:        "annotation_crop",
			Description: "Crop the bounding box of an annotation out of the loaded image and return it as base64-encoded PNG.",
			InputSchema: object(map[string]interface{}{
				"annotation_id": property("string", "Annotation id"),
				"scale": map[string]interface{}{
					"type":        "number",
					"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
					"default":     1.0,
				},
			}, "annotation_id"),
		},
	}
}
