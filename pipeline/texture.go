package pipeline

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"
)

// Texture is one registry entry: a GPU texture plus the framebuffer
// rendering into it. The registry entry that created it owns it
// exclusively; external entries (the audio input) are registered but not
// owned, so teardown leaves them alone.
type Texture struct {
	ID     uint32
	FBO    uint32
	Width  int32
	Height int32

	windowSized bool
	external    bool
}

// newTexture allocates a mip-mapped RGBA32F texture with an attached
// framebuffer at color attachment 0. An incomplete framebuffer after
// attachment means the driver cannot support the requested configuration
// at all, which is an environment fault, not a recoverable load error.
func newTexture(width, height int32, windowSized bool) *Texture {
	t := &Texture{Width: width, Height: height, windowSized: windowSized}

	gl.GenTextures(1, &t.ID)
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, width, height, 0, gl.RGBA, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.GenFramebuffers(1, &t.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.ID, 0)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		panic(fmt.Sprintf("framebuffer incomplete (status 0x%x) for %dx%d RGBA32F target", status, width, height))
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t
}

// NewExternalTexture registers a texture owned elsewhere (the audio
// analyzer). It has no framebuffer and can never be a render target.
func NewExternalTexture(id uint32, width, height int32) *Texture {
	return &Texture{ID: id, Width: width, Height: height, external: true}
}

// resize destroys and recreates the GPU objects at the new size, in place,
// so stage bindings by name stay valid on the next frame.
func (t *Texture) resize(width, height int32) {
	if t.external || (width == t.Width && height == t.Height) {
		return
	}
	id, fbo := t.ID, t.FBO
	*t = *newTexture(width, height, t.windowSized)
	gl.DeleteFramebuffers(1, &fbo)
	gl.DeleteTextures(1, &id)
}

func (t *Texture) destroy() {
	if t.external {
		return
	}
	gl.DeleteFramebuffers(1, &t.FBO)
	gl.DeleteTextures(1, &t.ID)
	t.ID, t.FBO = 0, 0
}
