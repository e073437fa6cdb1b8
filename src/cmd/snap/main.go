package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pxsnap/src/config"
	"pxsnap/src/logutil"
	"pxsnap/src/runtimeinit"
	"pxsnap/src/screenshot"
	"pxsnap/src/session"
)

type cliOptions struct {
	region     string
	outName    string
	stamp      bool
	position   string
	quiet      bool
	configPath string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"snap"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "snap",
		Short:         "Capture a screenshot without the GUI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().StringVar(&opts.region, "region", "", "Region to capture as \"x,y,w,h\" (default full screen)")
	cmd.Flags().StringVar(&opts.outName, "out", "", "Output file name (default <prefix>_<timestamp>.<format>)")
	cmd.Flags().BoolVar(&opts.stamp, "stamp", false, "Draw the capture time onto the image")
	cmd.Flags().StringVar(&opts.position, "pos", "", "Stamp corner: top-left, top-right, bottom-left or bottom-right")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress diagnostic logging")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Settings file path (overrides PXSNAP_CONFIG)")

	return cmd
}

func runWithOptions(opts cliOptions) error {
	// Configure logging BEFORE any other operations.
	if opts.quiet {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}

	cfg, store, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:   config.LoadOptions{SettingsPathOverride: opts.configPath},
		SetupLogging:  logutil.Setup,
		SkipClipboard: true,
	})
	if err != nil {
		return err
	}

	capture := session.CaptureFunc(screenshot.Capture)
	if opts.region != "" {
		region, err := parseRegion(opts.region)
		if err != nil {
			return err
		}
		capture = func() (*image.RGBA, error) {
			return screenshot.CaptureRegion(region)
		}
	}

	var stamp session.StampFunc
	if opts.stamp || cfg.StampTimestamp {
		position := opts.position
		if position == "" {
			position = cfg.StampPosition
		}
		anchor := screenshot.ParseAnchor(position)
		stamp = func(img *image.RGBA) *image.RGBA {
			return screenshot.AddTimestamp(img, anchor)
		}
	}

	res, err := session.Execute(context.Background(), session.Options{
		Deadline: time.Duration(cfg.CaptureDeadlineSec) * time.Second,
		Capture:  capture,
		Stamp:    stamp,
		Save: func(img image.Image) (string, error) {
			return screenshot.Save(img, store.Settings(), opts.outName)
		},
	})
	if err != nil {
		return err
	}

	fmt.Println(res.Path)
	return nil
}

// parseRegion parses "x,y,w,h" into a capture region. Bounds checking is left
// to the capture itself.
func parseRegion(s string) (screenshot.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return screenshot.Region{}, fmt.Errorf("region must be \"x,y,w,h\", got %q", s)
	}

	values := make([]int, 4)
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return screenshot.Region{}, fmt.Errorf("region component %q is not a number", part)
		}
		values[i] = n
	}

	return screenshot.Region{X: values[0], Y: values[1], Width: values[2], Height: values[3]}, nil
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		switch {
		case arg == "-region":
			normalized[i] = "--region"
		case strings.HasPrefix(arg, "-region="):
			normalized[i] = "--region=" + arg[len("-region="):]
		case arg == "-out":
			normalized[i] = "--out"
		case strings.HasPrefix(arg, "-out="):
			normalized[i] = "--out=" + arg[len("-out="):]
		case arg == "-stamp":
			normalized[i] = "--stamp"
		case strings.HasPrefix(arg, "-stamp="):
			normalized[i] = "--stamp=" + arg[len("-stamp="):]
		case arg == "-pos":
			normalized[i] = "--pos"
		case strings.HasPrefix(arg, "-pos="):
			normalized[i] = "--pos=" + arg[len("-pos="):]
		case arg == "-quiet":
			normalized[i] = "--quiet"
		case strings.HasPrefix(arg, "-quiet="):
			normalized[i] = "--quiet=" + arg[len("-quiet="):]
		case arg == "-config":
			normalized[i] = "--config"
		case strings.HasPrefix(arg, "-config="):
			normalized[i] = "--config=" + arg[len("-config="):]
		}
	}

	return normalized
}
