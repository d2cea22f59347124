// Package layout defines the contract between layout orchestration and the
// pluggable layout algorithms.
//
// # Algorithms
//
// An [Algorithm] receives an [Input] snapshot (node sizes, current positions,
// edges) and [Params], and reports a [Result] of top-left positions through
// the [Run] handle. Algorithms never touch the graph, which lets several runs
// compute concurrently while the graph stays owned by one goroutine.
//
// Two lifecycle variants are supported and look the same to callers:
//
//   - synchronous algorithms stop before Run returns ([Sync])
//   - asynchronous algorithms return at once and stop later ([Async])
//
// # Runs
//
// A [Run] emits [EventStart], [EventReady] and [EventStop]. Stop fires exactly
// once; its listeners run before [Run.Done] is closed:
//
//	run := layout.NewRun(algo, layout.InputFrom(g, eles), params, bus)
//	run.One(layout.EventStop, func(_ layout.Event, r *layout.Run) {
//	    res, err := r.Result()
//	    // ...
//	})
//	run.Start(ctx)
//	<-run.Done()
//
// Events also reach the graph-level [Bus] unless the run is suppressed with
// [Run.Suppress], which box layouts use for their internal sub-layouts.
//
// # Registry
//
// Algorithms are configured by name ([Config]) and resolved through a
// [Registry]. The builtin subpackage registers every algorithm shipped with
// this module.
package layout
