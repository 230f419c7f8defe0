package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avren/wiremesh/mesh"
	"github.com/avren/wiremesh/persist"
)

// showEntry is one anchor row of the show output.
type showEntry struct {
	Pos   mesh.Position   `json:"pos"`
	Links []mesh.Position `json:"links"`
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <mesh.db>",
		Short: "Print a persisted mesh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			store, err := persist.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			m, err := store.Load(context.Background())
			if err != nil {
				return err
			}

			entries := make([]showEntry, 0, m.Len())
			for _, p := range m.Anchors() {
				links, err := m.Links(p)
				if err != nil {
					return err
				}
				entries = append(entries, showEntry{Pos: p, Links: links})
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(entries)
			}
			fmt.Printf("anchors: %d\n", len(entries))
			for _, e := range entries {
				fmt.Printf("  %-16s", e.Pos)
				for _, l := range e.Links {
					fmt.Printf(" -> %s", l)
				}
				fmt.Println()
			}
			return nil
		},
	}
}
