package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"driftfield/internal/display"
	"driftfield/internal/field"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := display.Config{Params: field.DefaultParams()}
	var verbose bool

	cmd := &cobra.Command{
		Use:   "driftfield",
		Short: "Interactive particle field steered by mouse or webcam motion",
		Long: `driftfield renders a 2D particle field whose motion is perturbed by a
pointer: either the mouse, or a hand position estimated from webcam frame
differencing (no landmark model, just pixel motion).

Keys: Space pauses, R reinitializes, Tab switches pointer source, Esc quits.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := buildLogger(verbose)
			if err != nil {
				return err
			}
			defer log.Sync()

			if err := cfg.Params.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return display.Run(cfg, log)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&cfg.Params.ParticleCount, "particles", "n", cfg.Params.ParticleCount, "number of particles")
	f.Float64Var(&cfg.Params.InteractionRadius, "radius", cfg.Params.InteractionRadius, "pointer interaction radius in pixels")
	f.Float64Var(&cfg.Params.InteractionStrength, "strength", cfg.Params.InteractionStrength, "pointer force multiplier")
	f.Float64Var(&cfg.Params.Turbulence, "turbulence", 0, "perlin flow-field gain (0 disables)")
	f.BoolVar(&cfg.Camera, "camera", false, "start on the webcam motion estimator instead of the mouse")
	f.StringVar(&cfg.Device, "device", "/dev/video0", "V4L2 capture device")
	f.BoolVar(&cfg.Mute, "mute", false, "disable the interaction hum")
	f.IntVar(&cfg.Width, "width", field.DefaultWidth, "initial window width")
	f.IntVar(&cfg.Height, "height", field.DefaultHeight, "initial window height")
	f.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	return cmd
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	c := zap.NewProductionConfig()
	c.Encoding = "console"
	if verbose {
		c.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return c.Build()
}
