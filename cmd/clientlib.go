package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rajramo61/aem-core-wcm-components/internal/clix"
)

var (
	clientlibLimit  int
	clientlibOffset int

	aggregateCategories string
	aggregateKind       string
	aggregateTypes      string
	aggregatePath       string
	aggregateFallback   string
)

// clientlibCmd groups the client library subcommands.
var clientlibCmd = &cobra.Command{
	Use:   "clientlib",
	Short: "Inspect and aggregate client libraries",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var clientlibListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered client libraries",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		pagination, err := clix.ParsePagination(cmd.Flags())
		if err != nil {
			return err
		}

		libs, err := appInstance.Libraries.ListLibraries(cmd.Context(), pagination.Limit, pagination.Offset)
		if err != nil {
			return fmt.Errorf("failed to list client libraries: %w", err)
		}
		if len(libs) == 0 {
			fmt.Println("No client libraries registered.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Path", "Kinds", "Categories", "Dependencies", "Embeds"})
		table.SetBorder(true)
		table.SetRowLine(true)

		for _, lib := range libs {
			table.Append([]string{
				lib.Path,
				strings.Join(lib.Kinds, ", "),
				strings.Join(lib.Categories, ", "),
				strings.Join(lib.Dependencies, ", "),
				strings.Join(lib.Embeds, ", "),
			})
		}
		table.Render()

		fmt.Printf("%s %d libraries.\n", color.GreenString("Listed"), len(libs))
		return nil
	},
}

var clientlibAggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Print aggregated client library output",
	Long: `Aggregates the CSS or JS output of the given categories to stdout,
optionally resolving additional categories from resource type paths.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if aggregateCategories == "" && aggregateTypes == "" {
			return fmt.Errorf("at least one of --categories or --types is required")
		}

		var output string
		if aggregateTypes != "" {
			types, err := clix.ParseCommaList(cmd.Flags(), "types")
			if err != nil {
				return err
			}
			output = appInstance.Aggregator.GetClientLibOutputForTypes(cmd.Context(),
				aggregateCategories, aggregateKind, types, aggregatePath, aggregateFallback)
		} else {
			output = appInstance.Aggregator.GetClientLibOutput(cmd.Context(), aggregateCategories, aggregateKind)
		}

		if output == "" {
			fmt.Fprintln(os.Stderr, color.YellowString("No output produced."))
			return nil
		}
		fmt.Println(output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clientlibCmd)
	clientlibCmd.AddCommand(clientlibListCmd)
	clientlibCmd.AddCommand(clientlibAggregateCmd)

	clientlibListCmd.Flags().IntVarP(&clientlibLimit, "limit", "l", 20, "Number of libraries to display")
	clientlibListCmd.Flags().IntVarP(&clientlibOffset, "offset", "o", 0, "Number of libraries to skip")

	clientlibAggregateCmd.Flags().StringVarP(&aggregateCategories, "categories", "c", "", "Comma-separated category names")
	clientlibAggregateCmd.Flags().StringVarP(&aggregateKind, "kind", "k", "css", "Library kind (css or js)")
	clientlibAggregateCmd.Flags().StringVar(&aggregateTypes, "types", "", "Comma-separated resource types to resolve categories from")
	clientlibAggregateCmd.Flags().StringVar(&aggregatePath, "path", "", "Primary relative path under each resource type")
	clientlibAggregateCmd.Flags().StringVar(&aggregateFallback, "fallback", "", "Fallback relative path under each resource type")
}
