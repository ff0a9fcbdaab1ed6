// Package domain defines the core types for the scene graph sampler.
//
// This package contains the entities read from per-scene scene graph records
// and the policy that drives sampling.
//
// # Core Types
//
// SceneGraph is one scene: an ordered list of objects, directed relationships
// between those objects, and attributes bound to single objects. Every id a
// relationship or attribute refers to must name an object of the same scene.
//
// Object is a scene entity with semantic labels. Agent objects (is_agent, or
// the <AGENT> label) are placeholders for a controllable actor and are always
// retained when a scene is sampled.
//
// Relationship is a directed predicate from one subject to one or more
// recipients. Attribute is a named property of a single object.
//
// Each record keeps its source bytes so retained records can be written back
// without reordering or dropping fields this package does not model.
//
// # Sampling
//
// SamplingPolicy carries the target object count, the seed and the optional
// dataset allow-list.
//
// # Errors
//
// MalformedSceneGraphError, ConfigurationError and WriteFailureError carry the
// offending scene id or field so batch runs can report per-scene failures.
//
// # Design Principles
//
// - Immutable value objects: transformations return new scene graphs
// - No database or external dependencies
// - Pure domain logic without infrastructure concerns
package domain
