package pipeline

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"
	"gopkg.in/yaml.v3"
)

// MicInput is the reserved dependency name for the audio analyzer's
// spectrum/waveform texture. It is never a legal buffer name or target.
const MicInput = "mic"

// BufferSpec declares one named render target. An empty size means the
// buffer tracks the window; otherwise it is fixed at [w,h] or [w,h,d].
// The pixel format is always 32-bit float RGBA.
type BufferSpec struct {
	Name string `yaml:"name"`
	Size []int  `yaml:"size,omitempty"`
}

// WindowSized reports whether the buffer follows the display surface.
func (b BufferSpec) WindowSized() bool {
	return len(b.Size) == 0
}

// StageSpec declares one node of the graph as written in the pipeline
// file. Exactly one of Comp or Frag must be set: Comp makes a compute
// stage, Frag a raster stage (explicit geometry when Vertices is set,
// fullscreen otherwise).
type StageSpec struct {
	Vert       string   `yaml:"vert,omitempty"`
	Frag       string   `yaml:"frag,omitempty"`
	Comp       string   `yaml:"comp,omitempty"`
	Target     string   `yaml:"target,omitempty"`
	Inputs     []string `yaml:"inputs,omitempty"`
	Resolution []int    `yaml:"resolution,omitempty"`
	Vertices   int      `yaml:"vertices,omitempty"`
	Mode       string   `yaml:"mode,omitempty"`
	Dispatch   []int    `yaml:"dispatch,omitempty"`
}

// Spec is the parsed pipeline description: buffers in declaration order
// plus stages in declaration (= execution) order. It is immutable once
// parsed; a failed parse or validation discards it wholesale.
type Spec struct {
	Audio   bool         `yaml:"audio,omitempty"`
	Buffers []BufferSpec `yaml:"buffers,omitempty"`
	Stages  []StageSpec  `yaml:"stages"`
}

// UnresolvedReferenceError reports a stage naming a buffer that does not
// exist in the registry. These are load-time failures, never runtime ones.
type UnresolvedReferenceError struct {
	Stage int
	Name  string
	Role  string // "input" or "target"
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("stage %d: %s %q does not name a declared buffer", e.Stage, e.Role, e.Name)
}

// ParseSpec unmarshals and validates a pipeline description.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("malformed pipeline description: %w", err)
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s *Spec) validate() error {
	if len(s.Stages) == 0 {
		return fmt.Errorf("pipeline declares no stages")
	}

	names := make(map[string]bool, len(s.Buffers))
	for _, b := range s.Buffers {
		if b.Name == "" {
			return fmt.Errorf("buffer with empty name")
		}
		if b.Name == MicInput {
			return fmt.Errorf("buffer name %q is reserved for the audio input", MicInput)
		}
		if names[b.Name] {
			return fmt.Errorf("duplicate buffer name %q", b.Name)
		}
		if n := len(b.Size); n != 0 && n != 2 && n != 3 {
			return fmt.Errorf("buffer %q: size must be [w, h] or [w, h, d]", b.Name)
		}
		for _, v := range b.Size {
			if v < 1 {
				return fmt.Errorf("buffer %q: size components must be positive", b.Name)
			}
		}
		names[b.Name] = true
	}

	for i, st := range s.Stages {
		if err := s.validateStage(i, st, names); err != nil {
			return err
		}
	}
	return nil
}

func (s *Spec) validateStage(i int, st StageSpec, names map[string]bool) error {
	switch {
	case st.Comp != "" && st.Frag != "":
		return fmt.Errorf("stage %d: declares both comp and frag sources", i)
	case st.Comp == "" && st.Frag == "":
		return fmt.Errorf("stage %d: declares neither comp nor frag source", i)
	case st.Comp != "":
		if st.Vert != "" {
			return fmt.Errorf("stage %d: compute stage cannot have a vertex shader", i)
		}
		if st.Vertices != 0 || st.Mode != "" {
			return fmt.Errorf("stage %d: compute stage cannot draw geometry", i)
		}
		if len(st.Dispatch) < 1 || len(st.Dispatch) > 3 {
			return fmt.Errorf("stage %d: dispatch must be [x], [x, y] or [x, y, z]", i)
		}
		if st.Dispatch[0] < 1 {
			return fmt.Errorf("stage %d: dispatch x must be positive", i)
		}
	default:
		if len(st.Dispatch) != 0 {
			return fmt.Errorf("stage %d: dispatch is only valid on compute stages", i)
		}
		if st.Vertices < 0 {
			return fmt.Errorf("stage %d: vertices must not be negative", i)
		}
		if st.Mode != "" {
			if _, err := primitiveMode(st.Mode); err != nil {
				return fmt.Errorf("stage %d: %w", i, err)
			}
		}
	}

	if n := len(st.Resolution); n != 0 && n != 2 && n != 3 {
		return fmt.Errorf("stage %d: resolution must be [w, h] or [w, h, d]", i)
	}

	for _, dep := range st.Inputs {
		if dep == MicInput && s.Audio {
			continue
		}
		if !names[dep] {
			return &UnresolvedReferenceError{Stage: i, Name: dep, Role: "input"}
		}
	}
	if st.Target != "" {
		if st.Target == MicInput {
			return fmt.Errorf("stage %d: %q cannot be a render target", i, MicInput)
		}
		if !names[st.Target] {
			return &UnresolvedReferenceError{Stage: i, Name: st.Target, Role: "target"}
		}
	}
	return nil
}

// primitiveMode maps a mode name from the pipeline file to its GL constant.
func primitiveMode(name string) (uint32, error) {
	switch name {
	case "", "triangles":
		return gl.TRIANGLES, nil
	case "points":
		return gl.POINTS, nil
	case "lines":
		return gl.LINES, nil
	case "line_strip":
		return gl.LINE_STRIP, nil
	case "line_loop":
		return gl.LINE_LOOP, nil
	case "triangle_strip":
		return gl.TRIANGLE_STRIP, nil
	case "triangle_fan":
		return gl.TRIANGLE_FAN, nil
	}
	return 0, fmt.Errorf("unknown primitive mode %q", name)
}
