package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avren/wiremesh/config"
	"github.com/avren/wiremesh/persist"
	"github.com/avren/wiremesh/scenario"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.hcl>",
		Short: "Execute a scenario and report anchor signals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			cfgPath, _ := cmd.Flags().GetString("config")
			extraTicks, _ := cmd.Flags().GetInt("ticks")
			savePath, _ := cmd.Flags().GetString("save")

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			logger := cfg.NewLogger(os.Stderr)

			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			if extraTicks > 0 {
				sc.Acts = append(sc.Acts, scenario.Act{Op: "step", Ticks: &extraTicks})
			}

			rep, world, err := scenario.RunWorld(sc, cfg.MeshOptions(), cfg.EngineOptions(logger))
			if err != nil {
				return err
			}

			if savePath != "" {
				store, err := persist.Open(savePath)
				if err != nil {
					return err
				}
				defer store.Close()
				if err = store.Save(context.Background(), world.Mesh()); err != nil {
					return err
				}
				logger.Info("mesh saved", "path", savePath, "anchors", world.Mesh().Len())
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(rep)
			}
			printReport(rep)
			return nil
		},
	}
	cmd.Flags().Int("ticks", 0, "Extra ticks to run after the script")
	cmd.Flags().String("save", "", "Save the resulting mesh to a SQLite database")
	return cmd
}

func printReport(rep *scenario.Report) {
	if rep.Name != "" {
		fmt.Printf("scenario: %s\n", rep.Name)
	}
	fmt.Printf("ticks: %d\n", rep.Ticks)
	for _, a := range rep.Anchors {
		fmt.Printf("  %-16s signal=%-2d links=%d\n", a.Pos, a.Signal, a.Links)
	}
	for _, r := range rep.Rejections {
		fmt.Printf("  rejected: %s\n", r)
	}
}
