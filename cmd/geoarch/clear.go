package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/geoarch/pkg/notify"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every shape from the map",
	Long:  `Clear empties the collection. It is irreversible unless the map is versioned, so it asks for --yes.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if !clearYes {
			fmt.Fprintln(os.Stderr, "Refusing to clear the map without --yes")
			os.Exit(1)
		}

		svc := openService()
		defer svc.Close()
		n := svc.Clear(context.Background())
		fmt.Printf("%s (%d shape(s) removed)\n", notify.Cleared().Message, n)
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Confirm clearing the map")
}
