// Package compiler turns CUE convention manifests into declared conventions.
//
// A manifest declares conventions by name under the top-level "convention"
// struct:
//
//	convention: Logging: {
//		priority: -1
//		host:     "live"
//		category: "Infrastructure"
//		source:   "prepended"
//		after: ["Configuration"]
//	}
//
// Compilation checks field types. Validate checks the declarations against
// each other (unknown targets, duplicates, self edges). AnalyzeCycles reports
// every dependency cycle statically, where the provider only reports the
// first one it reaches.
package compiler
