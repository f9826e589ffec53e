// Package harness provides conformance testing for convention orderings.
//
// The harness builds a provider from a scenario, resolves the requested host
// view, applies it with a recording composer, and checks the outcome against
// the scenario's expectations and assertions.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	host: live
//	categories: [Infrastructure]
//	specs:
//	  - manifests/app.cue
//	conventions:
//	  - name: Logging
//	    priority: 0
//	    host: live
//	    category: Infrastructure
//	    after: [Configuration]
//	delegates:
//	  - name: boot
//	    priority: 3
//	  - name: bare
//	    bare: true
//	scanned: [bare, Logging]
//	prepended: [Configuration]
//	appended: [boot]
//	expect:
//	  order: [Configuration, delegate#1, Logging, boot]
//	assertions:
//	  - type: order_before
//	    first: Configuration
//	    then: Logging
//	  - type: position
//	    name: boot
//	    index: 3
//
// Without scanned, prepended or appended lists, conventions join the list
// named by their source and delegates are scanned after them.
//
// # Expectations
//
// expect.order compares the full resolved order. expect.error names the
// lower-case engine error code (cyclic_dependency) and expect.cycle the
// reported cycle path.
//
// # Golden Files
//
// RunWithGolden compares the canonical JSON snapshot of a run against
// testdata/golden/<name>.golden. To regenerate:
//
//	go test ./internal/harness -update
package harness
