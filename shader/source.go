package shader

// DefaultVertexSource is the passthrough vertex shader used by stages that
// only declare a fragment source. Fullscreen stages feed it the shared quad;
// explicit-geometry stages that omit a vertex shader get a degenerate point
// at the origin and are expected to bring their own.
const DefaultVertexSource = `#version 430 core
layout (location = 0) in vec2 position;
void main() {
    gl_Position = vec4(position, 0.0, 1.0);
}
`
