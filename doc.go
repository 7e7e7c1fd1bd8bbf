// Package rowz provides a declarative, in-memory row transformation engine.
//
// # Overview
//
// A row is a small collection of typed fields, each addressed by a caller
// assigned position (its idx). rowz applies an ordered list of structural
// edits to one row at a time: delete a field, move it to another idx, append
// a new field, or split one field into two or more typed fields. It is meant
// for schema normalization, for example turning an "amount currency" text
// column into a numeric amount and a currency code.
//
// # Core Concepts
//
//   - Entry: one field of a row (idx, name, declared kind, optional value)
//   - Container: the capability interface operators work against; Row is the
//     default implementation
//   - Operator: a parameterized edit applied to a Container
//   - Strategy: turns one optional value into two or more string tokens
//   - Pass: transform operators followed by an optional list of reorder operators
//   - Pipeline: passes applied in order
//
// Execution is fail-fast. The first operator error stops the pass (and the
// pipeline) and is returned as a *Error carrying the path to the failing
// operator. Effects of operators that already succeeded are not rolled back;
// take a Snapshot of the row beforehand when full rollback is required.
//
// # Quick Start
//
//	row := rowz.NewRow(rowz.NewEntry(0, "amount+currency", value.Zero(value.String),
//	    value.FromString("10.10 CHF").Ptr()))
//
//	split := rowz.SplitItem{
//	    Idx:          0,
//	    Strategy:     rowz.SeparatorCharPair{Sep: ' ', SplitNone: true},
//	    Left:         rowz.NewTarget(1, "amount", value.Float32),
//	    Right:        rowz.NewTarget(2, "currency", value.String),
//	    DeleteSource: true,
//	}
//
//	pass := rowz.NewPass("normalize", split).WithOrder(
//	    rowz.ReindexItem{From: 1, To: 0},
//	    rowz.ReindexItem{From: 2, To: 1},
//	)
//	pipeline := rowz.NewPipeline("prices", pass)
//
//	if err := pipeline.Apply(ctx, row); err != nil {
//	    var rowErr *rowz.Error
//	    if errors.As(err, &rowErr) {
//	        log.Printf("failed at %s: %s", strings.Join(rowErr.Path, " -> "), rowErr.Message)
//	    }
//	}
//
// # Configuration
//
// Pipelines are usually built from a declarative configuration in JSON, YAML
// or msgpack form (see Config, LoadFile and Build). Building validates the
// whole configuration and compiles regular expressions once, so a built
// Pipeline can be applied to any number of rows, including from several
// goroutines at once as long as each goroutine owns its row.
package rowz
