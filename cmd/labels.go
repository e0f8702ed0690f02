package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-mfcc/dataset"
)

var labelsCmd = &cobra.Command{
	Use:   "labels CLASSMAP [INDEX]",
	Short: "Map predicted class indices to names",
	Long: `Read a class-map.json file ([[name, index], ...]) and print the class
name for INDEX, or every entry when INDEX is omitted. Indices missing from
the map print as "Unknown".`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runLabels,
}

func init() {
	rootCmd.AddCommand(labelsCmd)
}

func runLabels(cmd *cobra.Command, args []string) error {
	classes, err := dataset.LoadClassMap(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if len(args) == 2 {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("class index must be an integer: %w", err)
		}
		label := classes.Label(index)

		handled, err := writeStructured(out, appConfig.OutputFormat, dataset.ClassEntry{Name: label, Index: index})
		if handled {
			return err
		}
		fmt.Fprintln(out, label)
		return nil
	}

	handled, err := writeStructured(out, appConfig.OutputFormat, classes)
	if handled {
		return err
	}

	tw := newTabWriter(out)
	fmt.Fprintln(tw, "INDEX\tCLASS")
	for _, name := range classes.Names() {
		idx, _ := classes.Index(name)
		fmt.Fprintf(tw, "%d\t%s\n", idx, name)
	}
	return tw.Flush()
}
