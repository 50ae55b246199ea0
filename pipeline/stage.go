package pipeline

import (
	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/vjkit/shaderdeck/util"
)

// StageKind is the closed set of execution strategies. The execute switch
// over it is exhaustive; adding a kind without extending the switch is a
// compile-time hole, not a silent fallthrough.
type StageKind int

const (
	// KindFullscreen draws the shared fullscreen quad.
	KindFullscreen StageKind = iota
	// KindExplicit draws a fixed vertex count with no bound vertex buffer;
	// shaders synthesize positions from the vertexCount uniform and
	// gl_VertexID.
	KindExplicit
	// KindCompute dispatches a compute workload.
	KindCompute
)

func (k StageKind) String() string {
	switch k {
	case KindFullscreen:
		return "fullscreen"
	case KindExplicit:
		return "explicit"
	case KindCompute:
		return "compute"
	}
	return "unknown"
}

// Names of the global uniforms every stage may declare. Absence of any of
// them in a program is fine; the cached location is just -1.
const (
	uniformResolution  = "R" // (width, height, time)
	uniformTime        = "time"
	uniformBeat        = "beat"
	uniformSliders     = "sliders"
	uniformButtons     = "buttons"
	uniformVertexCount = "vertexCount"
)

// Stage is one node of the graph: a linked program, its kind, the ordered
// dependency names (order fixes texture-unit indices), an optional target
// buffer, an optional fixed resolution, and a rolling execution-time
// average fed once per frame.
type Stage struct {
	Program uint32
	Kind    StageKind
	Inputs  []string
	Target  string // "" renders to the display surface

	// KindExplicit
	VertexCount int32
	Mode        uint32

	// KindCompute; y/z floored at 1 when dispatched
	Dispatch [3]uint32

	// Fixed output resolution; all zero means window sized. A zero depth
	// component is ignored when resolving the render size.
	Resolution [3]int32

	Perf *util.RunningAverage

	locResolution  int32
	locTime        int32
	locBeat        int32
	locSliders     int32
	locButtons     int32
	locVertexCount int32
	locInputs      []int32
}

// newStage wires a linked program into a Stage, caching every uniform
// location up front so the per-frame path never does string lookups.
func newStage(spec StageSpec, kind StageKind, program uint32) *Stage {
	st := &Stage{
		Program: program,
		Kind:    kind,
		Inputs:  spec.Inputs,
		Target:  spec.Target,
		Perf:    util.NewRunningAverage(128),
	}

	for i, v := range spec.Resolution {
		st.Resolution[i] = int32(v)
	}
	if kind == KindExplicit {
		st.VertexCount = int32(spec.Vertices)
		st.Mode, _ = primitiveMode(spec.Mode)
	}
	if kind == KindCompute {
		for i, v := range spec.Dispatch {
			st.Dispatch[i] = uint32(v)
		}
	}

	st.locResolution = uniformLocation(program, uniformResolution)
	st.locTime = uniformLocation(program, uniformTime)
	st.locBeat = uniformLocation(program, uniformBeat)
	st.locSliders = uniformLocation(program, uniformSliders)
	st.locButtons = uniformLocation(program, uniformButtons)
	st.locVertexCount = uniformLocation(program, uniformVertexCount)

	st.locInputs = make([]int32, len(spec.Inputs))
	for i, name := range spec.Inputs {
		st.locInputs[i] = uniformLocation(program, name)
	}
	return st
}

func uniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// targetResolution resolves the effective render size: the fixed override
// when present (depth ignored if zero), the window otherwise.
func (st *Stage) targetResolution(windowWidth, windowHeight int32) (int32, int32) {
	if st.Resolution[0] > 0 && st.Resolution[1] > 0 {
		return st.Resolution[0], st.Resolution[1]
	}
	return windowWidth, windowHeight
}

func (st *Stage) destroy() {
	gl.DeleteProgram(st.Program)
	st.Program = 0
}
