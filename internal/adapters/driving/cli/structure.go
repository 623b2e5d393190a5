package cli

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driven"
	"github.com/sdmx-tools/sdmx-cli/internal/core/services"
	"github.com/sdmx-tools/sdmx-cli/internal/writers/table"
)

var (
	structureAgency     string
	structureVersion    string
	structureReferences string
	structureDetail     string
)

var structureCmd = &cobra.Command{
	Use:   "structure <resource> [id]",
	Short: "Retrieve structural metadata",
	Long: `Retrieve a structural-metadata artefact and list its contents.
Resources: datastructure, dataflow, codelist, conceptscheme,
categoryscheme, categorisation, contentconstraint, agencyscheme.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := services.ResourceKind(args[0])
		id := ""
		if len(args) > 1 {
			id = args[1]
		}
		req, err := services.BuildStructureQuery(kind, structureAgency, id, structureVersion, services.QueryParams{
			References: structureReferences,
			Detail:     structureDetail,
		})
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
		if msg.Structures.IsEmpty() {
			return errors.New("the message carries no structural metadata")
		}
		for _, l := range structureListings(&msg.Structures) {
			cmd.Println(renderListing(l))
		}
		return nil
	},
}

func init() {
	structureCmd.Flags().StringVarP(&structureAgency, "agency", "a", "", "maintainer agency id")
	structureCmd.Flags().StringVar(&structureVersion, "structure-version", "", "artefact version (default latest)")
	structureCmd.Flags().StringVar(&structureReferences, "references", "", "related artefacts to include (none, parents, children, all, descendants)")
	structureCmd.Flags().StringVar(&structureDetail, "detail", "", "artefact completeness (full, allstubs, referencestubs)")
	rootCmd.AddCommand(structureCmd)
}

// structureListings projects every artefact of the set onto listings,
// one per artefact, in a stable order.
func structureListings(set *domain.StructureSet) []*table.Listing {
	var out []*table.Listing
	for _, cl := range set.Codelists() {
		out = append(out, table.WriteCodelist(cl))
	}
	for _, cs := range set.ConceptSchemes() {
		out = append(out, table.WriteConceptScheme(cs))
	}
	for _, cs := range set.CategorySchemes() {
		out = append(out, table.WriteCategoryScheme(cs))
	}
	for _, dsd := range set.DataStructures() {
		out = append(out, table.WriteDimensions(dsd))
	}
	if flows := set.Dataflows(); len(flows) > 0 {
		out = append(out, table.WriteDataflows(flows))
	}
	return out
}
