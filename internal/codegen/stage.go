// Package codegen contains the back-end-agnostic compilation driver: it
// walks an AST, dispatches each node to a pluggable Backend, and assembles
// per-stage output text (spec.md §4.3).
package codegen

import "fmt"

// Stage is a pipeline stage, plus the two sentinel values Same (no cursor
// change) and All (applies to every real stage). Spec.md §3.
type Stage int

const (
	Vertex Stage = iota
	Fragment
	TessellationControl
	TessellationEvaluation
	Geometry
	Compute
	Mesh
	Task
	RaytracingGeneration
	RaytracingClosest
	RaytracingAny
	RaytracingMiss
	RaytracingIntersection
	RaytracingCallable

	Same
	All
)

// ConcreteStages lists every real pipeline stage, in the order the codegen
// driver initializes output slots for them (spec.md §4.3 step 0).
var ConcreteStages = []Stage{
	Vertex, Fragment, TessellationControl, TessellationEvaluation,
	Geometry, Compute, Mesh, Task,
	RaytracingGeneration, RaytracingClosest, RaytracingAny,
	RaytracingMiss, RaytracingIntersection, RaytracingCallable,
}

func (s Stage) String() string {
	switch s {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	case TessellationControl:
		return "tessellation_control"
	case TessellationEvaluation:
		return "tessellation_evaluation"
	case Geometry:
		return "geometry"
	case Compute:
		return "compute"
	case Mesh:
		return "mesh"
	case Task:
		return "task"
	case RaytracingGeneration:
		return "raytracing_generation"
	case RaytracingClosest:
		return "raytracing_closest"
	case RaytracingAny:
		return "raytracing_any"
	case RaytracingMiss:
		return "raytracing_miss"
	case RaytracingIntersection:
		return "raytracing_intersection"
	case RaytracingCallable:
		return "raytracing_callable"
	case Same:
		return "same"
	case All:
		return "all"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}
