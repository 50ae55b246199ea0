package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gl/gl/v4.3-core/gl"
	"go.uber.org/zap"

	"github.com/vjkit/shaderdeck/shader"
)

// Sizes of the controller uniform arrays.
const (
	SliderCount = 8
	ButtonCount = 8
)

// FrameUniforms carries the per-frame globals every stage may consume.
type FrameUniforms struct {
	Width  int32
	Height int32
	// Seconds since start.
	Time float32
	// Seconds since the last tapped beat over the smoothed beat length.
	Beat float32
	// Raw controller values in [0,1].
	Sliders [SliderCount]float32
	// Seconds since each button was last triggered.
	Buttons [ButtonCount]float32
	// Framebuffer standing in for the display surface. Zero for the
	// window; the recorder substitutes its offscreen target.
	ScreenFBO uint32
}

// Pipeline owns the ordered stage sequence and the buffer registry built
// from one description file. It is constructed whole by Load and torn down
// whole by Destroy; no partially built Pipeline is ever observable.
type Pipeline struct {
	stages  []*Stage
	buffers map[string]*Texture
	order   []string // buffer declaration order
	geom    *geometry
	log     *zap.SugaredLogger
}

// Load parses the description at path, compiles and links every stage's
// shaders, allocates every declared buffer and returns the assembled
// Pipeline. On any failure everything built so far is released and the
// error describes the offending stage or file; the caller keeps whatever
// pipeline it had. Shader paths and include directives resolve relative to
// the description file's directory. mic may be nil when no audio input is
// running.
func Load(path string, windowWidth, windowHeight int32, mic *Texture, log *zap.SugaredLogger) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline description: %w", err)
	}
	spec, err := ParseSpec(data)
	if err != nil {
		return nil, err
	}
	if spec.Audio && mic == nil {
		return nil, fmt.Errorf("pipeline requests audio input but none is running (start with --audio)")
	}

	base := filepath.Dir(path)
	resolve := shader.FileResolver(base)

	p := &Pipeline{
		buffers: make(map[string]*Texture, len(spec.Buffers)),
		log:     log,
	}

	ok := false
	defer func() {
		if !ok {
			p.Destroy()
		}
	}()

	for i, st := range spec.Stages {
		stage, err := buildStage(st, base, resolve)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		p.stages = append(p.stages, stage)
	}

	for _, b := range spec.Buffers {
		w, h := windowWidth, windowHeight
		if !b.WindowSized() {
			w, h = int32(b.Size[0]), int32(b.Size[1])
		}
		p.buffers[b.Name] = newTexture(w, h, b.WindowSized())
		p.order = append(p.order, b.Name)
	}
	if spec.Audio {
		p.buffers[MicInput] = mic
	}

	p.geom = newGeometry()
	ok = true

	log.Infow("pipeline loaded",
		"stages", len(p.stages),
		"buffers", len(p.order),
	)
	return p, nil
}

// buildStage preprocesses, compiles and links one stage's sources.
func buildStage(spec StageSpec, base string, resolve shader.Resolver) (*Stage, error) {
	if spec.Comp != "" {
		src, err := loadSource(base, spec.Comp, resolve)
		if err != nil {
			return nil, err
		}
		unit, err := shader.Compile(src, shader.Compute)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.Comp, err)
		}
		program, err := shader.Link(unit)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.Comp, err)
		}
		return newStage(spec, KindCompute, program), nil
	}

	vertSrc := shader.DefaultVertexSource
	if spec.Vert != "" {
		var err error
		vertSrc, err = loadSource(base, spec.Vert, resolve)
		if err != nil {
			return nil, err
		}
	}
	fragSrc, err := loadSource(base, spec.Frag, resolve)
	if err != nil {
		return nil, err
	}

	vert, err := shader.Compile(vertSrc, shader.Vertex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", orDefault(spec.Vert, "builtin vertex shader"), err)
	}
	frag, err := shader.Compile(fragSrc, shader.Fragment)
	if err != nil {
		gl.DeleteShader(vert)
		return nil, fmt.Errorf("%s: %w", spec.Frag, err)
	}
	program, err := shader.Link(vert, frag)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Frag, err)
	}

	kind := KindFullscreen
	if spec.Vertices > 0 {
		kind = KindExplicit
	}
	return newStage(spec, kind, program), nil
}

func loadSource(base, name string, resolve shader.Resolver) (string, error) {
	data, err := os.ReadFile(filepath.Join(base, name))
	if err != nil {
		return "", err
	}
	src, err := shader.Preprocess(string(data), resolve)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return src, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Execute runs every stage once, in declared order, with the given frame
// uniforms. Stage order is authoritative: apart from the memory barrier
// after each compute dispatch there is no hazard detection, so a
// mis-ordered read-after-write yields stale data, not an error.
func (p *Pipeline) Execute(u FrameUniforms) {
	for _, st := range p.stages {
		start := time.Now()
		p.executeStage(st, u)
		st.Perf.Push(float32(time.Since(start).Seconds() * 1000))
	}
}

func (p *Pipeline) executeStage(st *Stage, u FrameUniforms) {
	width, height := st.targetResolution(u.Width, u.Height)

	gl.UseProgram(st.Program)

	if st.locResolution >= 0 {
		gl.Uniform3f(st.locResolution, float32(width), float32(height), u.Time)
	}
	if st.locTime >= 0 {
		gl.Uniform1f(st.locTime, u.Time)
	}
	if st.locBeat >= 0 {
		gl.Uniform1f(st.locBeat, u.Beat)
	}
	if st.locSliders >= 0 {
		gl.Uniform1fv(st.locSliders, SliderCount, &u.Sliders[0])
	}
	if st.locButtons >= 0 {
		gl.Uniform1fv(st.locButtons, ButtonCount, &u.Buttons[0])
	}
	if st.Kind == KindExplicit && st.locVertexCount >= 0 {
		gl.Uniform1f(st.locVertexCount, float32(st.VertexCount))
	}

	// Dependency k lives on texture unit k; it is also visible as image
	// unit 0 for stages that access it with imageLoad instead of sampling.
	for k, name := range st.Inputs {
		tex := p.buffers[name]
		gl.ActiveTexture(gl.TEXTURE0 + uint32(k))
		gl.BindTexture(gl.TEXTURE_2D, tex.ID)
		gl.BindImageTexture(0, tex.ID, 0, false, 0, gl.READ_ONLY, gl.RGBA32F)
		if st.locInputs[k] >= 0 {
			gl.Uniform1i(st.locInputs[k], int32(k))
		}
	}

	switch st.Kind {
	case KindCompute:
		// The target, when present, is the writable image at unit 1; the
		// barrier orders its writes before any later stage reads it.
		if st.Target != "" {
			gl.BindImageTexture(1, p.buffers[st.Target].ID, 0, false, 0, gl.WRITE_ONLY, gl.RGBA32F)
		}
		gl.DispatchCompute(st.Dispatch[0], max(st.Dispatch[1], 1), max(st.Dispatch[2], 1))
		gl.MemoryBarrier(gl.SHADER_IMAGE_ACCESS_BARRIER_BIT)

	case KindFullscreen, KindExplicit:
		fbo := u.ScreenFBO
		var targetTex uint32
		if st.Target != "" {
			t := p.buffers[st.Target]
			fbo, targetTex = t.FBO, t.ID
		}

		gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
		gl.Viewport(0, 0, width, height)

		if st.Kind == KindExplicit {
			gl.ClearColor(0, 0, 0, 0)
			gl.ClearDepth(1)
			gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

			gl.Enable(gl.DEPTH_TEST)
			gl.DepthMask(true)
			gl.DepthFunc(gl.LEQUAL)
			gl.DepthRange(0, 1)

			p.geom.drawExplicit(st.VertexCount, st.Mode)
			gl.Disable(gl.DEPTH_TEST)
		} else {
			p.geom.drawFullscreen()
		}

		// The display surface has no texture to mip.
		if targetTex != 0 {
			gl.BindTexture(gl.TEXTURE_2D, targetTex)
			gl.GenerateMipmap(gl.TEXTURE_2D)
		}
	}
}

// ResizeBuffers regenerates every window-sized buffer at the new display
// resolution, preserving the name mapping so in-flight bindings stay valid
// next frame. Fixed buffers are untouched.
func (p *Pipeline) ResizeBuffers(width, height int32) {
	for _, t := range p.buffers {
		if t.windowSized {
			t.resize(width, height)
		}
	}
}

// Destroy releases every GPU handle the pipeline owns, exactly once.
// Externally owned registry entries are skipped.
func (p *Pipeline) Destroy() {
	for _, st := range p.stages {
		st.destroy()
	}
	p.stages = nil
	for _, t := range p.buffers {
		t.destroy()
	}
	p.buffers = nil
	if p.geom != nil {
		p.geom.destroy()
		p.geom = nil
	}
}

// Stages exposes the stage list for timing display.
func (p *Pipeline) Stages() []*Stage {
	return p.stages
}

// BufferNames returns the declared buffer names in declaration order.
func (p *Pipeline) BufferNames() []string {
	return p.order
}

// Buffer looks up a registry entry by name.
func (p *Pipeline) Buffer(name string) (*Texture, bool) {
	t, ok := p.buffers[name]
	return t, ok
}
