package cmd

import (
	"fmt"

	"github.com/iksnae/thread-harvest/internal"
	"github.com/spf13/cobra"
)

var deleteSnapshot bool

var deleteCmd = &cobra.Command{
	Use:   "delete <thread-id>",
	Short: "Remove a thread from the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := openStore()
		if err != nil {
			return err
		}
		defer archive.Close()

		if err := archive.DeleteThread(args[0]); err != nil {
			return err
		}
		if deleteSnapshot {
			cache := internal.NewSnapshotCache(cfg.Store.SnapshotDir)
			if err := cache.DeleteSnapshot(args[0]); err != nil {
				internal.LogWarn("Failed to delete snapshot: %v", err)
			}
		}
		internal.PrintSuccess(fmt.Sprintf("Deleted thread %s", args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVar(&deleteSnapshot, "snapshot", false, "Also delete the cached page snapshot")
}
