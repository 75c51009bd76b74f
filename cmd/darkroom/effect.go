package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"thirdcoast.systems/darkroom/internal/effects"
	"thirdcoast.systems/darkroom/pkg/imageio"
	"thirdcoast.systems/darkroom/pkg/utils/filename"
)

var effectCmd = &cobra.Command{
	Use:   "effect <name> <image>",
	Short: "Send an image to the effect server",
	Long: `Apply one effect to an image. Remote effects are sent to the effect server
(--url or EFFECTS_BASE_URL); the enhancer runs locally.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := effects.ParseName(args[0])
		if err != nil {
			return err
		}
		in := args[1]
		flags := cmd.Flags()

		limit, err := maxSize(cmd)
		if err != nil {
			return err
		}
		up, err := loadImage(in, limit)
		if err != nil {
			return err
		}

		req := effects.Request{Effect: name, Image: up.Snapshot}
		if flags.Changed("variation") {
			id, _ := flags.GetString("variation")
			v, ok := effects.LookupVariation(id)
			if !ok {
				return fmt.Errorf("unknown sketch variation %q", id)
			}
			req.Effect = effects.PencilSketch
			req.Params = effects.Params{BlurSigma: &v.BlurSigma, Sharpen: &v.Sharpen}
		}
		if flags.Changed("blur-sigma") {
			v, _ := flags.GetFloat64("blur-sigma")
			req.Params.BlurSigma = &v
		}
		if flags.Changed("sharpen") {
			v, _ := flags.GetFloat64("sharpen")
			req.Params.Sharpen = &v
		}

		client := effects.NewClient(viper.GetString("effects_base_url"), viper.GetDuration("effects_timeout"))

		start := time.Now()
		result, err := client.Dispatch(cmd.Context(), req)
		if err != nil {
			return err
		}

		out, _ := flags.GetString("output")
		if out == "" {
			ext := ".img"
			if mt := mimetype.Lookup(result.MediaType()); mt != nil {
				ext = mt.Extension()
			}
			out = filename.Derive(in, string(req.Effect), ext)
		}
		if err := os.WriteFile(out, result.Bytes(), 0o644); err != nil {
			return err
		}

		spec, _ := effects.Lookup(req.Effect)
		fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render(out))
		fmt.Fprintln(cmd.OutOrStdout(), field("effect", spec.Label))
		if !spec.Local {
			fmt.Fprintln(cmd.OutOrStdout(), field("server", client.BaseURL()))
		}
		fmt.Fprintln(cmd.OutOrStdout(), field("source", imageio.Describe(up.Snapshot)))
		fmt.Fprintln(cmd.OutOrStdout(), field("result", imageio.Describe(result)))
		fmt.Fprintln(cmd.OutOrStdout(), field("took", time.Since(start).Round(time.Millisecond).String()))
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("  "+spec.Success))
		return nil
	},
}

func init() {
	flags := effectCmd.Flags()
	flags.String("url", "", "effect server base URL (default $EFFECTS_BASE_URL)")
	flags.Duration("timeout", 60*time.Second, "effect server timeout")
	flags.String("variation", "", "pencil sketch preset: soft, classic, sharp or bold")
	flags.Float64("blur-sigma", 0, "pencil sketch blur sigma")
	flags.Float64("sharpen", 0, "pencil sketch sharpen strength")
	flags.StringP("output", "o", "", "output file (default <image>-<effect>.<ext>)")
	addMaxSizeFlag(effectCmd)

	_ = viper.BindEnv("effects_base_url", "EFFECTS_BASE_URL")
	_ = viper.BindPFlag("effects_base_url", flags.Lookup("url"))
	_ = viper.BindEnv("effects_timeout", "EFFECTS_TIMEOUT")
	_ = viper.BindPFlag("effects_timeout", flags.Lookup("timeout"))

	rootCmd.AddCommand(effectCmd)
}
