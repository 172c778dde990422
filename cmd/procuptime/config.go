package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if asYAML {
				data, err := yaml.Marshal(opts.cfg)
				if err != nil {
					return fmt.Errorf("failed to encode configuration: %w", err)
				}
				_, err = out.Write(data)
				return err
			}

			fmt.Fprintln(out, opts.cfg.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print as config.yml")
	return cmd
}
