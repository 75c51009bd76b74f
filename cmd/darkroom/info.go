package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"thirdcoast.systems/darkroom/pkg/imageio"
)

var infoCmd = &cobra.Command{
	Use:   "info <image>",
	Short: "Show what an upload of the image would report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := maxSize(cmd)
		if err != nil {
			return err
		}
		up, err := loadImage(args[0], limit)
		if err != nil {
			return err
		}

		exif := up.Exif
		fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render(args[0]))
		fmt.Fprintln(cmd.OutOrStdout(), field("image", imageio.Describe(up.Snapshot)))
		fmt.Fprintln(cmd.OutOrStdout(), field("digest", up.Snapshot.Digest()))
		if exif.TagCount == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), field("exif", "none"))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), field("exif tags", strconv.Itoa(exif.TagCount)))
		if exif.Camera != "" {
			fmt.Fprintln(cmd.OutOrStdout(), field("camera", exif.Camera))
		}
		if exif.Taken != "" {
			fmt.Fprintln(cmd.OutOrStdout(), field("taken", exif.Taken))
		}
		fmt.Fprintln(cmd.OutOrStdout(), field("gps", strconv.FormatBool(exif.HasGPS)))
		return nil
	},
}

func init() {
	addMaxSizeFlag(infoCmd)
	rootCmd.AddCommand(infoCmd)
}
