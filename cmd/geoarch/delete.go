package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/geoarch/pkg/notify"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a shape from the map",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]
		svc := openService()
		defer svc.Close()

		if !svc.Delete(context.Background(), id) {
			fmt.Fprintf(os.Stderr, "No shape with id %s, nothing to delete\n", id)
			return
		}
		fmt.Println(notify.Deleted().Message)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
