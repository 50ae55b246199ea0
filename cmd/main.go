package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vjkit/shaderdeck/engine"
	"github.com/vjkit/shaderdeck/glfwcontext"
	"github.com/vjkit/shaderdeck/options"
)

func init() {
	// GLFW and GL live on the main thread.
	runtime.LockOSThread()
}

func main() {
	opts := &options.Options{}
	var verbose bool

	root := &cobra.Command{
		Use:   "shaderdeck",
		Short: "Live-coding shader render graph for VJ performance",
		Long: "shaderdeck renders a multi-stage shader pipeline described in a YAML file,\n" +
			"watching the working tree and hot-swapping the whole graph on every edit.\n" +
			"A broken edit never stops the show; the previous pipeline keeps running.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(opts, verbose, func(e *engine.Engine) error {
				return e.Run()
			})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.PipelinePath, "pipeline", "p", "pipeline.yaml", "pipeline description file")
	pf.IntVar(&opts.Width, "width", 1280, "window width")
	pf.IntVar(&opts.Height, "height", 720, "window height")
	pf.BoolVar(&opts.Audio, "audio", false, "capture the microphone for the reserved mic input")
	pf.IntVar(&opts.SampleRate, "sample-rate", 44100, "audio capture sample rate")
	pf.BoolVar(&opts.NoHUD, "no-hud", false, "disable the terminal HUD")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	record := &cobra.Command{
		Use:   "record",
		Short: "Render the pipeline offscreen into a video file",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.NoHUD = true
			return withEngine(opts, verbose, func(e *engine.Engine) error {
				return e.Record()
			})
		},
	}
	record.Flags().Float64Var(&opts.Duration, "duration", 10, "seconds to record")
	record.Flags().IntVar(&opts.FPS, "fps", 60, "frames per second")
	record.Flags().StringVarP(&opts.OutputFile, "output", "o", "output.mp4", "output video file")
	root.AddCommand(record)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func withEngine(opts *options.Options, verbose bool, run func(*engine.Engine) error) error {
	log, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	opts.Title = "shaderdeck"
	if _, err := os.Stat(opts.PipelinePath); err != nil {
		return fmt.Errorf("pipeline description %q: %w", opts.PipelinePath, err)
	}

	if err := glfwcontext.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %w", err)
	}
	defer glfwcontext.Terminate()

	e, err := engine.New(opts, log.Sugar())
	if err != nil {
		return err
	}
	defer e.Close()

	return run(e)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
