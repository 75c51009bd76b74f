package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"thirdcoast.systems/darkroom/pkg/filters"
	"thirdcoast.systems/darkroom/pkg/imageio"
	"thirdcoast.systems/darkroom/pkg/render"
	"thirdcoast.systems/darkroom/pkg/transform"
	"thirdcoast.systems/darkroom/pkg/utils/crops"
	"thirdcoast.systems/darkroom/pkg/utils/filename"
)

var exportCmd = &cobra.Command{
	Use:   "export <image>",
	Short: "Render filters and transforms into a JPEG",
	Long: `Render an image the way the editor exports it: colour filters, then the
rotation and flips around the centre, then noise, pixelate and vignette.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := args[0]
		flags := cmd.Flags()

		limit, err := maxSize(cmd)
		if err != nil {
			return err
		}
		up, err := loadImage(in, limit)
		if err != nil {
			return err
		}

		fs := filters.Defaults()
		for _, def := range filters.Defs() {
			if !flags.Changed(string(def.Name)) {
				continue
			}
			v, _ := flags.GetFloat64(string(def.Name))
			if err := fs.Set(def.Name, def.Clamp(v)); err != nil {
				return err
			}
		}

		ts := transform.Defaults()
		ts.Rotate, _ = flags.GetInt("rotate")
		if flipX, _ := flags.GetBool("flip-x"); flipX {
			ts.ToggleFlipX()
		}
		if flipY, _ := flags.GetBool("flip-y"); flipY {
			ts.ToggleFlipY()
		}

		quality, _ := flags.GetInt("quality")
		snap := up.Snapshot
		if ratio, _ := flags.GetString("crop"); ratio != "" {
			if _, _, err := crops.ParseAspectRatio(ratio); err != nil {
				return err
			}
			snap, err = render.CropSnapshot(snap, crops.CalculateCropForAspectRatio(snap.Width(), snap.Height(), ratio), quality)
			if err != nil {
				return err
			}
		}
		if enhance, _ := flags.GetBool("enhance"); enhance {
			if snap, err = render.EnhanceSnapshot(snap, quality); err != nil {
				return err
			}
		}

		opts := render.Options{Quality: quality}
		if flags.Changed("seed") {
			seed, _ := flags.GetUint64("seed")
			opts.Rand = rand.New(rand.NewPCG(seed, seed))
		}

		start := time.Now()
		data, err := render.ExportSnapshot(cmd.Context(), snap, fs, ts, opts)
		if err != nil {
			return err
		}

		out, _ := flags.GetString("output")
		if out == "" {
			out = filename.Derive(in, "edited", ".jpg")
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}

		preview := render.Preview(fs, ts)
		fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render(out))
		fmt.Fprintln(cmd.OutOrStdout(), field("source", imageio.Describe(up.Snapshot)))
		fmt.Fprintln(cmd.OutOrStdout(), field("filter", preview.Filter))
		fmt.Fprintln(cmd.OutOrStdout(), field("transform", preview.Transform))
		for _, p := range render.Passes(fs) {
			fmt.Fprintln(cmd.OutOrStdout(), field(string(p.Name), filters.FmtNum(p.Intensity)+"%"))
		}
		fmt.Fprintln(cmd.OutOrStdout(), field("size", humanize.Bytes(uint64(len(data)))))
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("  done in "+time.Since(start).Round(time.Millisecond).String()))
		return nil
	},
}

func init() {
	flags := exportCmd.Flags()
	for _, def := range filters.Defs() {
		usage := fmt.Sprintf("%s, %s..%s%s", def.Label, filters.FmtNum(def.Min), filters.FmtNum(def.Max), def.Unit)
		flags.Float64(string(def.Name), def.DefaultVal, usage)
	}
	flags.Int("rotate", 0, "rotation in degrees, clockwise")
	flags.Bool("flip-x", false, "mirror horizontally")
	flags.Bool("flip-y", false, "mirror vertically")
	flags.String("crop", "", "crop to an aspect ratio around the centre, e.g. 16:9")
	flags.Bool("enhance", false, "apply the local enhancer before rendering")
	flags.Int("quality", render.DefaultQuality, "JPEG quality, 1-100")
	flags.Uint64("seed", 0, "seed for the noise pass")
	flags.StringP("output", "o", "", "output file (default <image>-edited.jpg)")
	addMaxSizeFlag(exportCmd)
	rootCmd.AddCommand(exportCmd)
}
