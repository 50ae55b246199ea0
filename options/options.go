package options

// Options carries the CLI configuration through the engine.
type Options struct {
	// Path to the pipeline description file. Its directory is the working
	// tree: shaders and includes resolve relative to it and the reload
	// watcher covers it.
	PipelinePath string

	Width  int
	Height int
	Title  string

	// Enable microphone capture and the reserved "mic" input.
	Audio      bool
	SampleRate int

	// Disable the terminal HUD.
	NoHUD bool

	// Record mode: render offscreen at a fixed rate and pipe to ffmpeg.
	Duration   float64
	FPS        int
	OutputFile string
}
