// Package plugin discovers extensions ("mods") below the extension root and
// turns authorized, complete manifests into menu descriptors.
//
// # Layout
//
// Each immediate subdirectory of the root is one extension candidate:
//
//	data/lib/mods/
//	└── TaskManager/
//	    ├── package.json
//	    └── source/
//	        └── taskmanager.lua
//
// # Manifest
//
//	{
//	  "id": "1-taskmgr",
//	  "build": {
//	    "source": "taskmanager.lua",
//	    "mesh": "task_manager",
//	    "action": "main",
//	    "path": "TaskManager/source",
//	    "method": "mods"
//	  }
//	}
//
// A candidate is registered only when its id is on the allow-list and
// source, mesh, action and path are all non-empty. Unauthorized and
// incomplete candidates are reported through Rejections; unreadable
// manifests through Problems. Neither stops the scan.
//
// The registry is a snapshot taken at construction. It does not watch the
// root; build a new Registry to pick up installed extensions.
package plugin
