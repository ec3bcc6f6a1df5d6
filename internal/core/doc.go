// Package core provides the business logic for reconciliation runs.
//
// This package sits between the pure pipeline in internal/reconcile and the
// transports (HTTP server, CLI). It knows where source files live, how to read
// them, where results go, and how many runs may execute at once. It can be
// used by web handlers, CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Source Definitions: Registered via the registry or loaded from a YAML
//     manifest, each source names its file, key column and selected columns.
//   - Service: The main entry point for all operations (run, latest result,
//     country lookup).
//   - Streaming: BOM skipping and UTF-8 sanitization while reading CSV files.
//   - Sinks: Destinations the reconciled table is written to after each run.
//
// # Source Registry
//
// Sources are registered at init time using [Register]:
//
//	core.Register(SourceDefinition{
//	    Info: SourceInfo{
//	        Key:       "whr",
//	        Label:     "World Happiness Report 2024",
//	        File:      "WHR2024.csv",
//	        Order:     1,
//	        KeyColumn: "Country name",
//	        Columns:   []string{"Country name", "Ladder score"},
//	    },
//	})
//
// Registration order does not matter; [All] sorts by Order, which is also the
// join order of a run.
//
// # Runs
//
//  1. Client calls [Service.Run]
//  2. The run acquires a slot from the [RunLimiter]
//  3. Every source is read through [WrapForStreaming] and [ReadTable]
//  4. The reconcile pipeline merges, filters and imputes
//  5. The result is written to every configured [Sink] and kept as the latest
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - SRC001-SRC003: Source errors (unknown source, missing file, manifest)
//   - SCH001-SCH002: Schema errors (missing or colliding columns)
//   - FILE001-FILE002: File errors (format, empty)
//   - RUN001-RUN006: Run errors (busy, no result, cancelled, timeout)
//   - SINK001: Sink errors
//   - DB001-DB002: Database connectivity
package core
