package main

import (
	"fmt"

	"github.com/kunalpal97/ar-indoor-nav/internal/notify"
	"github.com/kunalpal97/ar-indoor-nav/internal/waypoint"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <image>",
	Short: "Upload an image to the recognition service and print the waypoints",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		res := rt.sess.Upload(cmd.Context(), args[0])

		out := cmd.OutOrStdout()
		for _, e := range rt.sess.Notifications().Events() {
			if e.Kind == notify.UploadSucceeded || e.Kind == notify.UploadFailed {
				fmt.Fprintln(out, e.Text())
			}
		}
		if res.Stored {
			fmt.Fprint(out, waypoint.Format(rt.sess.Waypoints().Get()))
		}

		closeErr := rt.Close()
		if res.Err != nil {
			return res.Err
		}
		if res.Response != nil && !res.Response.Success() {
			return fmt.Errorf("upload rejected with status %d", res.Response.StatusCode)
		}
		return closeErr
	},
}
