// Package config loads the server settings and the project definitions the
// annotation session works with.
//
// Settings come from defaults, an optional config file and environment
// variables prefixed with ANNOTATOR_MCP_, in increasing priority:
//
//	ANNOTATOR_MCP_LOG_LEVEL=debug
//	ANNOTATOR_MCP_EPSILON=0.001
//	ANNOTATOR_MCP_VIEW_CACHE_SIZE=64
//	ANNOTATOR_MCP_MAX_ANNOTATIONS=5000
//	ANNOTATOR_MCP_HISTORY_LIMIT=100
//
// Projects are YAML documents listing the tasks of a chain in order:
//
//	name: vehicles
//	tasks:
//	  - id: detection
//	    title: Detection
//	    domain: DETECTION
//	    labels:
//	      - id: car
//	        name: Car
//	        color: "#f00"
//	      - id: no-object
//	        name: No object
//	        behaviour: [global, exclusive]
//	        empty: true
//
// Labels without a behaviour are global for classification and anomaly
// tasks and local otherwise. Labels without a colour get one from a
// deterministic palette.
package config
