// Command pngpeek opens a PNG file, hands it to the core decoder, and
// reports or dumps the resulting pixel buffer. It performs no
// windowing or display.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	png "pngdecode"
	"pngdecode/internal/logging"
)

var outputPath string
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "pngpeek [file]",
	Short: "Decode a PNG file and report its dimensions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := "test.png"
		if len(args) == 1 {
			filename = args[0]
		}
		if verbose {
			logging.SetLevel(zerolog.DebugLevel)
		}

		f, err := os.Open(filename)
		if err != nil {
			logging.Error().Err(err).Str("file", filename).Msg("could not open file")
			return err
		}
		defer f.Close()

		img, err := png.Decode(f)
		if err != nil {
			logging.Error().Err(err).Str("file", filename).Msg("decode failed")
			return err
		}

		fmt.Printf("%s: %dx%d, %d bytes RGBA\n", filename, img.Width, img.Height, len(img.Pixels))

		if outputPath != "" {
			if err := os.WriteFile(outputPath, img.Pixels, 0o644); err != nil {
				logging.Error().Err(err).Str("file", outputPath).Msg("could not write output")
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the raw RGBA buffer to this path")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
