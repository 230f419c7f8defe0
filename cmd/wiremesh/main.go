// Command wiremesh runs scenario files against an in-memory grid world
// and inspects persisted meshes.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "wiremesh",
		Short: "Anchored signal networks over a discrete 3D grid",
		Long: `wiremesh maintains networks of long-range linked anchors that share
a single signal sourced from the surrounding world.

The run command executes a declarative HCL scenario (anchors, sources,
links, scripted acts) and reports every anchor's settled signal; the
show command prints a mesh persisted in a SQLite database.`,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "wiremesh.yaml", "Configuration file")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newShowCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(os.Stdout).Encode(map[string]string{"version": version})
			} else {
				fmt.Printf("wiremesh version %s\n", version)
			}
		},
	}
}
