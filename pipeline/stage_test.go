package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetResolutionOverride(t *testing.T) {
	st := &Stage{Resolution: [3]int32{640, 360, 0}}
	w, h := st.targetResolution(1920, 1080)
	assert.Equal(t, int32(640), w)
	assert.Equal(t, int32(360), h)

	// a depth component does not affect the 2D render size
	st.Resolution = [3]int32{640, 360, 16}
	w, h = st.targetResolution(1920, 1080)
	assert.Equal(t, int32(640), w)
	assert.Equal(t, int32(360), h)
}

func TestTargetResolutionWindowFallback(t *testing.T) {
	st := &Stage{}
	w, h := st.targetResolution(1280, 720)
	assert.Equal(t, int32(1280), w)
	assert.Equal(t, int32(720), h)
}

func TestStageKindString(t *testing.T) {
	assert.Equal(t, "fullscreen", KindFullscreen.String())
	assert.Equal(t, "explicit", KindExplicit.String())
	assert.Equal(t, "compute", KindCompute.String())
}
