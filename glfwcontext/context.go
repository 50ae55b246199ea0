// Package glfwcontext wraps the one GLFW window and GL context the engine
// renders into. The design targets exactly this context type; there is no
// cross-API abstraction behind it.
package glfwcontext

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// KeyFunc is invoked on key press with the active modifier bits.
type KeyFunc func(mods glfw.ModifierKey)

type Context struct {
	window       *glfw.Window
	keyCallbacks map[glfw.Key]KeyFunc
}

// Init initializes GLFW. Must be called from the main thread, which it
// locks.
func Init() error {
	runtime.LockOSThread()
	return glfw.Init()
}

// Terminate shuts GLFW down. Main thread only.
func Terminate() {
	glfw.Terminate()
}

// New creates a resizable window with a 4.3 core context (compute stages
// need 4.3), makes it current and loads the GL function pointers.
func New(width, height int, title string) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	win.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		win.Destroy()
		return nil, fmt.Errorf("failed to load GL: %w", err)
	}

	c := &Context{
		window:       win,
		keyCallbacks: make(map[glfw.Key]KeyFunc),
	}
	win.SetKeyCallback(c.onKey)
	return c, nil
}

// RegisterKey binds f to presses (and repeats) of key.
func (c *Context) RegisterKey(key glfw.Key, f KeyFunc) {
	c.keyCallbacks[key] = f
}

func (c *Context) onKey(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}
	if key == glfw.KeyEscape {
		w.SetShouldClose(true)
		return
	}
	if f, ok := c.keyCallbacks[key]; ok {
		f(mods)
	}
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

// EndFrame presents the frame and pumps the event queue.
func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) FramebufferSize() (int32, int32) {
	w, h := c.window.GetFramebufferSize()
	return int32(w), int32(h)
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

func (c *Context) Shutdown() {
	c.window.Destroy()
}
