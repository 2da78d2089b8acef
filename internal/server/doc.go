// Package server implements the MCP (Model Context Protocol) server for
// task-chain aware image annotation.
//
// The server keeps one annotation session: a project (the ordered task
// chain and its labels), the image being annotated, and the annotations of
// that image with their undo history. Tool calls edit the annotations
// through the task-chain rules of package scene, so a client drawing a box,
// applying an empty label or merging predictions gets the same
// reconciliation an interactive annotator would.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Session setup:
//   - project_load: Load the task chain from YAML
//   - media_load: Load the image to annotate
//   - session_set_roi: Set the region of interest
//   - task_select: Select a task, or all tasks
//
// Annotation state:
//   - annotations_set: Replace all annotations
//   - annotations_list: List annotations with label scores
//   - taskchain_view: Inputs and outputs of the selected task
//   - annotations_merge: Merge predictions into the annotations
//
// Scene edits:
//   - scene_add_shapes, scene_add_annotations
//   - scene_add_label, scene_remove_labels
//   - scene_remove_annotations, scene_select_annotation
//   - scene_undo, scene_redo
//
// Media:
//   - annotation_crop: Thumbnail of an annotation
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses with code -32602 for
// malformed arguments and -32000 for everything else, the Go error string
// as data. Stale annotation ids are not errors; the edit silently ignores
// them.
//
// # Usage
//
//	srv := server.New(cfg, logger)
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal("server stopped", zap.Error(err))
//	}
package server
