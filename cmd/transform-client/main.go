// Package main provides the transform-client binary: a command-line caller for the transform
// endpoint and a terminal preview of the visual parameters it returns.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ipcctiled/transform-api/internal/client"
	"github.com/ipcctiled/transform-api/internal/compare"
	"github.com/ipcctiled/transform-api/internal/models"
	"github.com/ipcctiled/transform-api/internal/render"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	appName     = "transform-client"
	urlEnvVar   = "TRANSFORM_API_URL"
	callTimeout = 90 * time.Second
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

func main() {
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Call the IPCC sentence transform API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(transformCmd(), previewCmd(), versionCmd())
	return cmd
}

func transformCmd() *cobra.Command {
	var (
		req     models.TransformRequest
		feature string
		pattern string
		prof    string
		url     string
		asJSON  bool
		color   bool
	)

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Transform one sentence and show what changed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Feature = models.Feature(feature)
			req.PatternStatus = models.PatternStatus(pattern)
			if url == "" {
				url = os.Getenv(urlEnvVar)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
			defer cancel()

			resp, err := client.New(url).ForProfile(prof).Transform(ctx, req)
			if err != nil {
				var se *client.StatusError
				if errors.As(err, &se) && se.Message() != "" {
					return fmt.Errorf("%w: %s", err, se.Message())
				}
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, resp)
			}
			return printTransform(out, req.Text, resp, color)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Text, "text", "", "Source sentence")
	f.StringVar(&feature, "feature", "", "Feature to change (vocab, modality, transitivity)")
	f.StringVar(&pattern, "pattern", "", "Pattern status (maintained, changed, omitted)")
	f.StringVar(&req.BaselineMelody, "abc", "", "Baseline melody in ABC notation")
	f.StringVar(&prof, "profile", "", "Response profile path (base, melody, visual); empty uses the server default")
	f.StringVar(&url, "url", "", "Transform endpoint (default $"+urlEnvVar+" or "+client.DefaultURL+")")
	f.BoolVar(&asJSON, "json", false, "Print the raw JSON response")
	f.BoolVar(&color, "color", false, "Color the word diff")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("feature")

	return cmd
}

func printTransform(w io.Writer, source string, resp map[string]any, color bool) error {
	transformed := client.Sentence(resp)
	diff := compare.Words(source, transformed)

	rendered := diff.Inline()
	if color {
		rendered = diff.Colored()
	}

	fmt.Fprintf(w, "Source:      %s\n", source)
	fmt.Fprintf(w, "Transformed: %s\n", transformed)
	fmt.Fprintf(w, "Diff:        %s\n", rendered)
	fmt.Fprintf(w, "Words:       +%d -%d\n", diff.Added, diff.Removed)
	fmt.Fprintf(w, "Calibrated:  %s -> %s\n", termList(compare.CalibratedTerms(source)), termList(compare.CalibratedTerms(transformed)))

	for _, key := range []string{"actor", "actorGuess"} {
		if v, ok := resp[key]; ok {
			fmt.Fprintf(w, "Actor:       %v\n", v)
		}
	}

	extra := map[string]any{}
	for k, v := range resp {
		switch k {
		case "success", "sentence", "text", "actor", "actorGuess":
			continue
		}
		extra[k] = v
	}
	if len(extra) == 0 {
		return nil
	}
	fmt.Fprintln(w, "Parameters:")
	return writeJSON(w, extra)
}

func termList(terms []string) string {
	if len(terms) == 0 {
		return "(none)"
	}
	return strings.Join(terms, ", ")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func previewCmd() *cobra.Command {
	var (
		params       = models.DefaultVisualParams
		opts         = render.DefaultOptions()
		fromResponse bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the noise field for a set of visual parameters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fromResponse {
				var resp models.VisualResponse
				if err := json.NewDecoder(cmd.InOrStdin()).Decode(&resp); err != nil {
					return fmt.Errorf("failed to read visual response: %w", err)
				}
				params = resp.Params()
			}
			_, err := io.WriteString(cmd.OutOrStdout(), render.Preview(params, opts))
			return err
		},
	}

	f := cmd.Flags()
	f.Float64Var(&params.Segments, "segments", params.Segments, "Tiled segments")
	f.Float64Var(&params.Hue, "hue", params.Hue, "Hue in degrees")
	f.Float64Var(&params.Speed, "speed", params.Speed, "Field speed per frame")
	f.Float64Var(&params.NoiseScale, "noise-scale", params.NoiseScale, "Noise scale")
	f.IntVar(&opts.Frame, "frame", opts.Frame, "Frame to render")
	f.IntVar(&opts.Width, "width", opts.Width, "Columns")
	f.IntVar(&opts.Height, "height", opts.Height, "Rows")
	f.Int64Var(&opts.Seed, "seed", opts.Seed, "Noise seed")
	f.BoolVar(&opts.Color, "color", false, "Use 24-bit color from the hue")
	f.BoolVar(&fromResponse, "from-response", false, "Read a visual response JSON from stdin")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, releaseVersion)
		},
	}
}
