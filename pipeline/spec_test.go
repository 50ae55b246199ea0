package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPipeline = `
buffers:
  - name: scene
  - name: noise
    size: [512, 512]
stages:
  - frag: scene.frag
    target: scene
    inputs: [noise]
  - comp: sim.comp
    dispatch: [64, 64]
    target: noise
    inputs: [scene]
  - frag: present.frag
    inputs: [scene]
`

func TestParseSpecCounts(t *testing.T) {
	spec, err := ParseSpec([]byte(validPipeline))
	require.NoError(t, err)

	require.Len(t, spec.Buffers, 2)
	require.Len(t, spec.Stages, 3)

	// declaration order is preserved and authoritative
	assert.Equal(t, "scene", spec.Buffers[0].Name)
	assert.Equal(t, "noise", spec.Buffers[1].Name)
	assert.Equal(t, "scene.frag", spec.Stages[0].Frag)
	assert.Equal(t, "sim.comp", spec.Stages[1].Comp)
	assert.Equal(t, "present.frag", spec.Stages[2].Frag)
}

func TestBufferSizingPolicy(t *testing.T) {
	spec, err := ParseSpec([]byte(validPipeline))
	require.NoError(t, err)

	assert.True(t, spec.Buffers[0].WindowSized())
	assert.False(t, spec.Buffers[1].WindowSized())
	assert.Equal(t, []int{512, 512}, spec.Buffers[1].Size)
}

func TestParseSpecMalformed(t *testing.T) {
	_, err := ParseSpec([]byte("stages: [\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed pipeline description")
}

func TestParseSpecNoStages(t *testing.T) {
	_, err := ParseSpec([]byte("buffers:\n  - name: a\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stages")
}

func TestParseSpecDuplicateBuffer(t *testing.T) {
	_, err := ParseSpec([]byte(`
buffers:
  - name: a
  - name: a
stages:
  - frag: x.frag
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate buffer name "a"`)
}

func TestParseSpecUnresolvedInput(t *testing.T) {
	_, err := ParseSpec([]byte(`
stages:
  - frag: x.frag
    inputs: [ghost]
`))
	require.Error(t, err)

	var unresolved *UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, 0, unresolved.Stage)
	assert.Equal(t, "ghost", unresolved.Name)
	assert.Equal(t, "input", unresolved.Role)
}

func TestParseSpecUnresolvedTarget(t *testing.T) {
	_, err := ParseSpec([]byte(`
stages:
  - frag: x.frag
  - frag: y.frag
    target: ghost
`))
	var unresolved *UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, 1, unresolved.Stage)
	assert.Equal(t, "target", unresolved.Role)
}

func TestParseSpecMicInput(t *testing.T) {
	src := `
audio: true
stages:
  - frag: x.frag
    inputs: [mic]
`
	spec, err := ParseSpec([]byte(src))
	require.NoError(t, err)
	assert.True(t, spec.Audio)

	// without audio enabled the reserved name is just an unknown buffer
	_, err = ParseSpec([]byte(`
stages:
  - frag: x.frag
    inputs: [mic]
`))
	var unresolved *UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
}

func TestParseSpecMicNeverATarget(t *testing.T) {
	_, err := ParseSpec([]byte(`
audio: true
stages:
  - frag: x.frag
    target: mic
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be a render target")
}

func TestParseSpecMicNotDeclarable(t *testing.T) {
	_, err := ParseSpec([]byte(`
buffers:
  - name: mic
stages:
  - frag: x.frag
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved")
}

func TestParseSpecStageKindConflicts(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"both", "stages:\n  - frag: a.frag\n    comp: a.comp\n    dispatch: [1]\n", "both comp and frag"},
		{"neither", "stages:\n  - target: a\nbuffers:\n  - name: a\n", "neither comp nor frag"},
		{"compute with vert", "stages:\n  - comp: a.comp\n    vert: a.vert\n    dispatch: [1]\n", "cannot have a vertex shader"},
		{"compute with vertices", "stages:\n  - comp: a.comp\n    vertices: 3\n    dispatch: [1]\n", "cannot draw geometry"},
		{"compute without dispatch", "stages:\n  - comp: a.comp\n", "dispatch must be"},
		{"dispatch on raster", "stages:\n  - frag: a.frag\n    dispatch: [1]\n", "only valid on compute"},
		{"bad mode", "stages:\n  - frag: a.frag\n    vertices: 9\n    mode: hexagons\n", "unknown primitive mode"},
		{"bad resolution", "stages:\n  - frag: a.frag\n    resolution: [100]\n", "resolution must be"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSpec([]byte(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestPrimitiveModeDefaults(t *testing.T) {
	mode, err := primitiveMode("")
	require.NoError(t, err)
	def, err := primitiveMode("triangles")
	require.NoError(t, err)
	assert.Equal(t, def, mode)
}
