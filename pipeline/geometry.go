package pipeline

import (
	"github.com/go-gl/gl/v4.3-core/gl"
)

// Two CCW triangles covering clip space.
var fullscreenQuad = []float32{
	-1, -1, -1, 1, 1, 1,
	1, 1, 1, -1, -1, -1,
}

// geometry holds the vertex state shared by every raster stage: one quad
// VAO for fullscreen passes and one empty VAO for explicit passes, whose
// shaders synthesize positions from the vertexCount uniform and
// gl_VertexID.
type geometry struct {
	quadVAO  uint32
	quadVBO  uint32
	emptyVAO uint32
}

func newGeometry() *geometry {
	g := &geometry{}

	gl.GenVertexArrays(1, &g.quadVAO)
	gl.GenBuffers(1, &g.quadVBO)
	gl.BindVertexArray(g.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(fullscreenQuad)*4, gl.Ptr(fullscreenQuad), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, nil)

	gl.GenVertexArrays(1, &g.emptyVAO)

	// let point-mode vertex shaders set gl_PointSize
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return g
}

func (g *geometry) drawFullscreen() {
	gl.BindVertexArray(g.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(fullscreenQuad)/2))
}

func (g *geometry) drawExplicit(count int32, mode uint32) {
	gl.BindVertexArray(g.emptyVAO)
	gl.DrawArrays(mode, 0, count)
}

func (g *geometry) destroy() {
	gl.DeleteBuffers(1, &g.quadVBO)
	gl.DeleteVertexArrays(1, &g.quadVAO)
	gl.DeleteVertexArrays(1, &g.emptyVAO)
}
