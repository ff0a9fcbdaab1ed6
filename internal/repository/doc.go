// Package repository defines the data access interfaces for sampling runs.
//
// Every sampling run can be recorded so that reductions from different seeds
// or object counts can be compared later. The actual implementation is in the
// sqlite subpackage.
//
// # StatsRepository Interface
//
// StatsRepository stores a run's parameters together with the per-scene
// before/after counts and the list of scenes that failed.
//
// # SQLite Implementation
//
// The sqlite implementation keeps runs, scene stats and failures in three
// tables linked by run id. A run and its rows are written in one transaction,
// so a run is either fully recorded or absent.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
