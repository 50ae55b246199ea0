package shader

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.3-core/gl"
)

// Type selects which driver compiler a source unit is handed to.
type Type uint32

const (
	Vertex   Type = gl.VERTEX_SHADER
	Fragment Type = gl.FRAGMENT_SHADER
	Compute  Type = gl.COMPUTE_SHADER
)

func (t Type) String() string {
	switch t {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	case Compute:
		return "compute"
	}
	return fmt.Sprintf("shader(0x%x)", uint32(t))
}

// CompileError carries the driver's info log for a failed compile, verbatim.
type CompileError struct {
	Type Type
	Log  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader:\n%s", e.Type, e.Log)
}

// LinkError carries the driver's info log for a failed link, verbatim.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program:\n%s", e.Log)
}

// Compile hands source to the driver's compiler for the given shader type
// and returns the shader object handle. The source is opaque to this
// function; any diagnostic comes back inside a CompileError.
func Compile(source string, shaderType Type) (uint32, error) {
	sh := gl.CreateShader(uint32(shaderType))
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(sh, 1, csources, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		log := infoLog(sh, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(sh)
		return 0, &CompileError{Type: shaderType, Log: log}
	}
	return sh, nil
}

// Link attaches the compiled units to a new program object and links it.
// The units are deleted afterwards regardless of outcome; they are no
// longer needed once the program exists (or failed to).
func Link(units ...uint32) (uint32, error) {
	program := gl.CreateProgram()
	for _, u := range units {
		gl.AttachShader(program, u)
	}
	gl.LinkProgram(program)
	for _, u := range units {
		gl.DeleteShader(u)
	}

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		log := infoLog(program, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(program)
		return 0, &LinkError{Log: log}
	}
	return program, nil
}

func infoLog(
	object uint32,
	getiv func(uint32, uint32, *int32),
	getLog func(uint32, int32, *int32, *uint8),
) string {
	var length int32
	getiv(object, gl.INFO_LOG_LENGTH, &length)
	if length == 0 {
		return ""
	}
	buf := strings.Repeat("\x00", int(length+1))
	getLog(object, length, nil, gl.Str(buf))
	return strings.TrimRight(buf, "\x00")
}
