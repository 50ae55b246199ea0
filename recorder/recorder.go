// Package recorder captures the final stage's output into a fixed-size
// offscreen target and pipes the raw frames to ffmpeg for encoding. Only
// the record CLI mode touches it; the live path never reads pixels back.
package recorder

import (
	"fmt"
	"io"

	"github.com/go-gl/gl/v4.3-core/gl"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Target is the offscreen framebuffer that stands in for the display
// surface while recording.
type Target struct {
	fbo    uint32
	tex    uint32
	depth  uint32
	width  int32
	height int32
	pixels []byte
}

func NewTarget(width, height int32) (*Target, error) {
	t := &Target{
		width:  width,
		height: height,
		pixels: make([]byte, width*height*4),
	}

	gl.GenTextures(1, &t.tex)
	gl.BindTexture(gl.TEXTURE_2D, t.tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	gl.GenRenderbuffers(1, &t.depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, t.depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, width, height)

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.tex, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.depth)

	if gl.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
		t.Destroy()
		return nil, fmt.Errorf("recording framebuffer is not complete")
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t, nil
}

// FBO is handed to the pipeline as the screen framebuffer.
func (t *Target) FBO() uint32 {
	return t.fbo
}

// ReadFrame reads the current frame back as tightly packed RGBA. The
// returned slice is reused by the next call.
func (t *Target) ReadFrame() []byte {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, t.width, t.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(t.pixels))
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return t.pixels
}

func (t *Target) Destroy() {
	gl.DeleteFramebuffers(1, &t.fbo)
	gl.DeleteRenderbuffers(1, &t.depth)
	gl.DeleteTextures(1, &t.tex)
}

// Encoder feeds raw RGBA frames into an ffmpeg process writing an H.264
// file. GL renders bottom-up, so the output is flipped on the way through.
type Encoder struct {
	pw   *io.PipeWriter
	done chan error
}

func StartEncoder(width, height int32, fps int, outputFile string) *Encoder {
	pr, pw := io.Pipe()
	e := &Encoder{pw: pw, done: make(chan error, 1)}

	go func() {
		err := ffmpeg.
			Input("pipe:0", ffmpeg.KwArgs{
				"format":    "rawvideo",
				"pix_fmt":   "rgba",
				"s":         fmt.Sprintf("%dx%d", width, height),
				"framerate": fps,
			}).
			Output(outputFile, ffmpeg.KwArgs{
				"c:v":     "libx264",
				"pix_fmt": "yuv420p",
				"vf":      "vflip",
				"r":       fps,
			}).
			OverWriteOutput().
			WithInput(pr).
			Run()
		pr.CloseWithError(err)
		e.done <- err
	}()
	return e
}

// WriteFrame queues one frame. Blocks when the encoder falls behind, which
// is fine off the live path.
func (e *Encoder) WriteFrame(pixels []byte) error {
	_, err := e.pw.Write(pixels)
	return err
}

// Close flushes the stream and waits for ffmpeg to finish the file.
func (e *Encoder) Close() error {
	e.pw.Close()
	return <-e.done
}
