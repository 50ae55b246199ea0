// Package engine owns the frame loop: it renders the active pipeline,
// samples controller and audio input, and services reload requests. All of
// it runs on the one thread that holds the GL context; the watcher thread
// only ever sets the change flag the loop consumes.
package engine

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/vjkit/shaderdeck/audio"
	"github.com/vjkit/shaderdeck/control"
	"github.com/vjkit/shaderdeck/glfwcontext"
	"github.com/vjkit/shaderdeck/options"
	"github.com/vjkit/shaderdeck/pipeline"
	"github.com/vjkit/shaderdeck/recorder"
	"github.com/vjkit/shaderdeck/ui"
	"github.com/vjkit/shaderdeck/util"
	"github.com/vjkit/shaderdeck/watcher"
)

// Repeated change signals within this window after a build collapse into
// the build that already happened.
const reloadDebounce = 100 * time.Millisecond

// HUD repaint cadence in frames.
const hudInterval = 30

type Engine struct {
	opts *options.Options
	log  *zap.SugaredLogger

	ctx      *glfwcontext.Context
	watch    *watcher.Watcher
	controls *control.State
	analyzer *audio.Analyzer
	mic      *pipeline.Texture
	pipe     *pipeline.Pipeline
	hud      *ui.HUD

	framePerf *util.RunningAverage
	start     time.Time
	lastFrame time.Time
	lastBuild time.Time

	// Written by key callbacks, read by the loop; both run on the main
	// thread via PollEvents, so no synchronization is needed.
	forceReload bool

	diagnostic string
	width      int32
	height     int32
}

// New builds the window, input state, optional audio capture and the
// watcher, then attempts the initial pipeline load. A failing initial load
// is not fatal: the engine runs with an empty screen and the diagnostic on
// the HUD until the files are fixed.
func New(opts *options.Options, log *zap.SugaredLogger) (*Engine, error) {
	ctx, err := glfwcontext.New(opts.Width, opts.Height, opts.Title)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		opts:      opts,
		log:       log,
		ctx:       ctx,
		controls:  control.NewState(),
		hud:       ui.New(),
		framePerf: util.NewRunningAverage(128),
	}
	e.width, e.height = ctx.FramebufferSize()

	if opts.Audio {
		e.analyzer, err = newAnalyzer(opts, log)
		if err != nil {
			ctx.Shutdown()
			return nil, err
		}
		e.mic = pipeline.NewExternalTexture(e.analyzer.TextureID(), audio.SpectrumWidth, 1)
	}

	e.watch, err = watcher.New(filepath.Dir(opts.PipelinePath), log)
	if err != nil {
		e.closePartial()
		return nil, fmt.Errorf("failed to watch working tree: %w", err)
	}

	e.bindKeys()
	e.reload()
	e.lastBuild = time.Now()
	return e, nil
}

// newAnalyzer opens the microphone, falling back to silence when the
// device cannot be opened; a missing mic should not stop the show.
func newAnalyzer(opts *options.Options, log *zap.SugaredLogger) (*audio.Analyzer, error) {
	var device audio.Device
	mic, err := audio.NewMicrophone(opts.SampleRate, log)
	if err != nil {
		log.Warnw("microphone unavailable, audio input will be silent", "error", err)
		device = audio.NewNullDevice(opts.SampleRate)
	} else {
		device = mic
	}
	return audio.NewAnalyzer(device, log)
}

func (e *Engine) bindKeys() {
	e.ctx.RegisterKey(glfw.KeySpace, func(glfw.ModifierKey) {
		e.controls.TapBeat()
	})
	e.ctx.RegisterKey(glfw.KeyEnter, func(mods glfw.ModifierKey) {
		if mods&glfw.ModControl != 0 {
			e.forceReload = true
		}
	})
	e.ctx.RegisterKey(glfw.KeyUp, func(glfw.ModifierKey) {
		e.controls.Nudge(0.05)
	})
	e.ctx.RegisterKey(glfw.KeyDown, func(glfw.ModifierKey) {
		e.controls.Nudge(-0.05)
	})
	for i := 0; i < control.NumButtons; i++ {
		i := i
		e.ctx.RegisterKey(glfw.Key1+glfw.Key(i), func(mods glfw.ModifierKey) {
			if mods&glfw.ModShift != 0 {
				e.controls.SelectSlider(i)
			} else {
				e.controls.TriggerButton(i)
			}
		})
	}
}

// Run drives the interactive loop until the window closes.
func (e *Engine) Run() error {
	e.start = time.Now()
	e.lastFrame = e.start

	for frame := 0; !e.ctx.ShouldClose(); frame++ {
		e.handleReload()
		e.handleResize()

		now := time.Now()
		if e.analyzer != nil {
			e.analyzer.Update()
		}
		if e.pipe != nil {
			e.pipe.Execute(e.frameUniforms(now, 0))
		}
		e.ctx.EndFrame()

		e.framePerf.Push(float32(now.Sub(e.lastFrame).Seconds() * 1000))
		e.lastFrame = now

		if !e.opts.NoHUD && frame%hudInterval == 0 {
			e.hud.Print(e.Stats())
		}
	}
	return nil
}

// Record renders Duration seconds at a fixed rate into the offscreen
// target and pipes every frame to the encoder. Requires a loaded pipeline.
func (e *Engine) Record() error {
	if e.pipe == nil {
		return fmt.Errorf("cannot record, pipeline failed to load: %s", e.diagnostic)
	}

	target, err := recorder.NewTarget(int32(e.opts.Width), int32(e.opts.Height))
	if err != nil {
		return err
	}
	defer target.Destroy()

	enc := recorder.StartEncoder(int32(e.opts.Width), int32(e.opts.Height), e.opts.FPS, e.opts.OutputFile)
	total := int(e.opts.Duration * float64(e.opts.FPS))

	e.start = time.Now()
	for i := 0; i < total; i++ {
		if e.analyzer != nil {
			e.analyzer.Update()
		}

		// fixed timestep, detached from wall time
		simulated := e.start.Add(time.Duration(float64(i) / float64(e.opts.FPS) * float64(time.Second)))
		u := e.frameUniforms(simulated, target.FBO())
		u.Width, u.Height = int32(e.opts.Width), int32(e.opts.Height)
		e.pipe.Execute(u)

		if err := enc.WriteFrame(target.ReadFrame()); err != nil {
			enc.Close()
			return fmt.Errorf("encoder rejected frame %d: %w", i, err)
		}
		e.ctx.EndFrame()
	}

	e.log.Infow("recording finished", "frames", total, "output", e.opts.OutputFile)
	return enc.Close()
}

// handleReload services the change flag. The loop is the flag's only
// reader; a consumed edge inside the debounce window is dropped, matching
// the rule that repeated triggers right after a build collapse into it. A
// manual trigger bypasses the debounce entirely.
func (e *Engine) handleReload() {
	want := e.watch.Consume() && time.Since(e.lastBuild) > reloadDebounce
	if e.forceReload {
		e.forceReload = false
		want = true
	}
	if !want {
		return
	}
	e.reload()
	e.lastBuild = time.Now()
}

// reload builds a complete new pipeline and only then swaps it in. On
// failure the previous pipeline keeps rendering and the diagnostic goes to
// the log and HUD.
func (e *Engine) reload() {
	start := time.Now()
	p, err := pipeline.Load(e.opts.PipelinePath, e.width, e.height, e.mic, e.log)
	if err != nil {
		e.diagnostic = err.Error()
		e.log.Errorw("pipeline load failed, keeping previous pipeline", "error", err)
		return
	}

	old := e.pipe
	e.pipe = p
	if old != nil {
		old.Destroy()
	}
	e.diagnostic = ""
	e.log.Infow("pipeline swapped in", "build_time", time.Since(start))
}

func (e *Engine) handleResize() {
	w, h := e.ctx.FramebufferSize()
	if w == e.width && h == e.height {
		return
	}
	e.width, e.height = w, h
	if e.pipe != nil {
		e.pipe.ResizeBuffers(w, h)
	}
}

func (e *Engine) frameUniforms(now time.Time, screenFBO uint32) pipeline.FrameUniforms {
	sliders, buttons := e.controls.Snapshot(now)
	return pipeline.FrameUniforms{
		Width:     e.width,
		Height:    e.height,
		Time:      float32(now.Sub(e.start).Seconds()),
		Beat:      e.controls.BeatPhase(now),
		Sliders:   sliders,
		Buttons:   buttons,
		ScreenFBO: screenFBO,
	}
}

// Stats snapshots the timing data and last diagnostic for the HUD.
func (e *Engine) Stats() ui.Stats {
	s := ui.Stats{
		FrameMillis: e.framePerf.Get(),
		BPM:         e.controls.BPM(),
		Diagnostic:  e.diagnostic,
	}
	if e.pipe == nil {
		return s
	}
	for i, st := range e.pipe.Stages() {
		s.Stages = append(s.Stages, ui.StageStat{
			Index:  i,
			Kind:   st.Kind.String(),
			Target: st.Target,
			Millis: st.Perf.Get(),
		})
	}
	return s
}

// Close releases everything the engine owns, in reverse construction
// order.
func (e *Engine) Close() {
	if e.watch != nil {
		e.watch.Close()
	}
	if e.pipe != nil {
		e.pipe.Destroy()
	}
	e.closePartial()
}

func (e *Engine) closePartial() {
	if e.analyzer != nil {
		if err := e.analyzer.Close(); err != nil {
			e.log.Warnw("audio shutdown failed", "error", err)
		}
	}
	e.ctx.Shutdown()
}
