package cli

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driven"
	"github.com/sdmx-tools/sdmx-cli/internal/core/services"
)

var validateAgency string

var validateCmd = &cobra.Command{
	Use:   "validate <flow> <key>",
	Short: "Validate a series key against a dataflow",
	Long: `Validate a positional series key against the dataflow's data
structure definition, its codelists and any content constraints, and
print the canonical form of the key.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := services.BuildStructureQuery(services.ResourceDataflow, validateAgency, args[0], "",
			services.QueryParams{References: "all"})
		if err != nil {
			return err
		}
		raw, err := retrieve(cmd.Context(), req)
		if err != nil {
			return err
		}
		msg, err := parseMessage(cmd.Context(), raw, driven.ReadOptions{})
		if err != nil {
			return err
		}
		dsds := msg.Structures.DataStructures()
		if len(dsds) == 0 {
			return errors.Newf("dataflow %s: no data structure definition in the response", args[0])
		}
		validator := services.NewKeyValidator(dsds[0], msg.CodelistByRef, msg.Structures.Constraints()...).
			WithConceptLookup(msg.ConceptByRef)
		canonical, err := validator.ValidateKeyString(args[1])
		if err != nil {
			return err
		}
		cmd.Println(canonical)
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateAgency, "agency", "a", "", "dataflow maintainer agency id")
	rootCmd.AddCommand(validateCmd)
}
