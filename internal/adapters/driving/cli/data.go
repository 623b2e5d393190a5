package cli

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driven"
	"github.com/sdmx-tools/sdmx-cli/internal/core/services"
	"github.com/sdmx-tools/sdmx-cli/internal/writers/table"
)

var (
	dataAgency     string
	dataStart      string
	dataEnd        string
	dataFirstN     int
	dataLastN      int
	dataAttributes string
	dataTimeAxis   bool
	dataFromFreq   bool
	dataReversed   bool
	dataFrequency  string
	dataDimAtObs   string
)

var dataCmd = &cobra.Command{
	Use:   "data <flow> [key]",
	Short: "Retrieve data and tabulate it",
	Long: `Retrieve observations for a dataflow and print them as a table:
one row per period, one column per series. The key selects series
positionally, e.g. M.USD.EUR.SP00.A, with empty positions as
wildcards and + separating alternatives.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		flow := domain.Reference{Kind: domain.KindDataflow, AgencyID: dataAgency, ID: args[0]}
		key := ""
		if len(args) > 1 {
			key = args[1]
		}
		req, err := services.BuildDataQuery(flow, key, "", services.QueryParams{
			StartPeriod:        dataStart,
			EndPeriod:          dataEnd,
			FirstNObservations: dataFirstN,
			LastNObservations:  dataLastN,
		})
		if err != nil {
			return err
		}
		raw, err := retrieve(cmd.Context(), req)
		if err != nil {
			return err
		}
		opts := driven.ReadOptions{DimensionAtObservation: dataDimAtObs}
		msg, err := parseMessage(cmd.Context(), raw, opts)
		if errors.Is(err, domain.ErrStructureRequired) {
			opts.Structure, err = fetchStructure(cmd.Context(), flow)
			if err != nil {
				return err
			}
			msg, err = parseMessage(cmd.Context(), raw, opts)
		}
		if err != nil {
			return err
		}
		if len(msg.DataSets) == 0 {
			cmd.Println("no data returned")
			return nil
		}
		projection := table.Options{
			Attributes: table.AttributeMode(dataAttributes),
			TimeAxis:   dataTimeAxis,
			FromFreq:   dataFromFreq,
			Reversed:   dataReversed,
			Frequency:  table.Frequency(dataFrequency),
		}
		for _, ds := range msg.DataSets {
			t, err := table.WriteDataSet(ds, projection)
			if err != nil {
				return err
			}
			cmd.Println(renderTable(t))
		}
		return nil
	},
}

func init() {
	dataCmd.Flags().StringVarP(&dataAgency, "agency", "a", "", "dataflow maintainer agency id")
	dataCmd.Flags().StringVar(&dataStart, "start", "", "first period to include, e.g. 2010 or 2010-Q1")
	dataCmd.Flags().StringVar(&dataEnd, "end", "", "last period to include")
	dataCmd.Flags().IntVar(&dataFirstN, "first-n", 0, "keep only the first n observations per series")
	dataCmd.Flags().IntVar(&dataLastN, "last-n", 0, "keep only the last n observations per series")
	dataCmd.Flags().StringVar(&dataAttributes, "attributes", string(table.AttributesOmit), "attribute handling (omit, separate, fold)")
	dataCmd.Flags().BoolVar(&dataTimeAxis, "time-axis", false, "parse periods into a chronological time axis")
	dataCmd.Flags().BoolVar(&dataFromFreq, "fromfreq", false, "extrapolate the time axis from the first period and the frequency")
	dataCmd.Flags().BoolVar(&dataReversed, "reversed", false, "input periods run newest first (with --fromfreq)")
	dataCmd.Flags().StringVar(&dataFrequency, "freq", "", "override frequency inference (A, S, Q, M, W, B, D, H)")
	dataCmd.Flags().StringVar(&dataDimAtObs, "dim-at-obs", "", "override the dimension at observation")
	rootCmd.AddCommand(dataCmd)
}

// fetchStructure retrieves the data structure definition behind a
// dataflow, for datasets that cannot be decoded without one.
func fetchStructure(ctx context.Context, flow domain.Reference) (*domain.DataStructureDefinition, error) {
	req, err := services.BuildStructureQuery(services.ResourceDataflow, flow.AgencyID, flow.ID, flow.Version,
		services.QueryParams{References: "all"})
	if err != nil {
		return nil, err
	}
	raw, err := retrieve(ctx, req)
	if err != nil {
		return nil, err
	}
	msg, err := parseMessage(ctx, raw, driven.ReadOptions{})
	if err != nil {
		return nil, err
	}
	dsds := msg.Structures.DataStructures()
	if len(dsds) == 0 {
		return nil, errors.Newf("dataflow %s: no data structure definition in the response", flow.ID)
	}
	return dsds[0], nil
}
