package main

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	pkgconfig "github.com/onticket/chainindexer/pkg/config"
	"github.com/onticket/chainindexer/pkg/indexer"
	"github.com/spf13/cobra"
)

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config-schema",
		Short: "Print the JSON schema of the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := &jsonschema.Reflector{
				ExpandedStruct:             true,
				RequiredFromJSONSchemaTags: true,
			}
			schema := r.Reflect(&pkgconfig.Config{})
			schema.Title = "chain indexer configuration"

			data, err := json.MarshalIndent(schema, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode schema: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newListProjectorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-projectors",
		Short: "List available projector names",
		Long:  `List all registered projectors that can be named in the projectors option.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Available projectors:")
			names := indexer.ListRegistered()
			if len(names) == 0 {
				fmt.Fprintln(out, "  (no projectors registered)")
				return
			}
			for _, n := range names {
				fmt.Fprintf(out, "  - %s\n", n)
			}
		},
	}
}
