package rowz

import "github.com/zoobzio/capitan"

// Signal definitions for rowz events.
// Signals follow the pattern: rowz.<component>.<event>.
var (
	// Pass signals.
	SignalPassFailed = capitan.NewSignal(
		"rowz.pass.failed",
		"Pass stopped at a failing operator; remaining operators were not applied",
	)

	// Pipeline signals.
	SignalPipelineCompleted = capitan.NewSignal(
		"rowz.pipeline.completed",
		"Pipeline applied every pass to a row",
	)
	SignalPipelineFailed = capitan.NewSignal(
		"rowz.pipeline.failed",
		"Pipeline stopped at a failing pass",
	)

	// Configuration signals.
	SignalConfigLoaded = capitan.NewSignal(
		"rowz.config.loaded",
		"Pipeline configuration file loaded",
	)
	SignalConfigParseFailed = capitan.NewSignal(
		"rowz.config.parse.failed",
		"Pipeline configuration could not be decoded",
	)
	SignalConfigBuildFailed = capitan.NewSignal(
		"rowz.config.build.failed",
		"Pipeline configuration failed validation or construction",
	)
)

// Field keys using capitan primitive types.
var (
	FieldName      = capitan.NewStringKey("name")       // Pass or pipeline name
	FieldError     = capitan.NewStringKey("error")      // Error message
	FieldPass      = capitan.NewStringKey("pass")       // Failing pass name
	FieldOperator  = capitan.NewStringKey("operator")   // Failing operator name
	FieldKind      = capitan.NewStringKey("kind")       // Error kind
	FieldPath      = capitan.NewStringKey("path")       // Config file path
	FieldFormat    = capitan.NewStringKey("format")     // Config format: json/yaml/msgpack
	FieldSizeBytes = capitan.NewIntKey("size_bytes")    // Config size
	FieldPasses    = capitan.NewIntKey("passes")        // Number of passes
	FieldRowLen    = capitan.NewIntKey("row_len")       // Entries in the row after applying
	FieldDuration  = capitan.NewDurationKey("duration") // Elapsed time
)
