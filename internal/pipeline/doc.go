// Package pipeline orchestrates scene discovery, the per-scene
// load -> sample -> filter -> write sequence, and batch reporting.
//
// Scenes are independent: each worker reads one scene directory and writes
// one output directory. The only shared state is the stats accumulator,
// which serializes merges. A scene that fails is recorded and the batch
// continues; an invalid policy aborts before any scene is read.
package pipeline
