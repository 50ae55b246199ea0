package shader

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapResolver(files map[string]string) Resolver {
	return func(name string) (string, error) {
		src, ok := files[name]
		if !ok {
			return "", &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
		return src, nil
	}
}

func TestPreprocessNoIncludes(t *testing.T) {
	src := "void main() {}\n"
	out, err := Preprocess(src, mapResolver(nil))
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestPreprocessFlattensChain(t *testing.T) {
	files := map[string]string{
		"b.glsl": "// b\n#include \"c.glsl\"\n",
		"c.glsl": "// c\n",
	}
	out, err := Preprocess("#include \"b.glsl\"\n// a\n", mapResolver(files))
	require.NoError(t, err)
	assert.Equal(t, "// b\n// c\n\n\n// a\n", out)
}

func TestPreprocessPragmaAndAngleForms(t *testing.T) {
	files := map[string]string{"lib.glsl": "float f;\n"}

	out, err := Preprocess("#pragma include <lib.glsl>\n", mapResolver(files))
	require.NoError(t, err)
	assert.Equal(t, "float f;\n\n", out)

	out, err = Preprocess("# include \"lib.glsl\"\n", mapResolver(files))
	require.NoError(t, err)
	assert.Equal(t, "float f;\n\n", out)
}

func TestPreprocessSiblingsMayRepeat(t *testing.T) {
	files := map[string]string{"common.glsl": "// common\n"}
	src := "#include \"common.glsl\"\n#include \"common.glsl\"\n"
	out, err := Preprocess(src, mapResolver(files))
	require.NoError(t, err)
	assert.Equal(t, "// common\n\n// common\n\n", out)
}

func TestPreprocessCycleDetected(t *testing.T) {
	files := map[string]string{
		"a.glsl": "#include \"b.glsl\"\n",
		"b.glsl": "#include \"a.glsl\"\n",
	}
	_, err := Preprocess(files["a.glsl"], mapResolver(files))
	require.Error(t, err)

	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	// b includes a while a is still on the path, so a is the offender
	assert.Equal(t, "a.glsl", cycle.File)
}

func TestPreprocessSelfInclude(t *testing.T) {
	files := map[string]string{"a.glsl": "#include \"a.glsl\"\n"}
	_, err := Preprocess(files["a.glsl"], mapResolver(files))

	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, "a.glsl", cycle.File)
}

func TestPreprocessMissingFile(t *testing.T) {
	_, err := Preprocess("#include \"nope.glsl\"\n", mapResolver(nil))
	require.Error(t, err)
	// the resolver's error comes through unchanged
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
