package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/strand-dev/strand/pkg/routes"
)

func routesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes [dir]",
		Short: "Print the compiled route manifest for a pages directory",
		Long: `Scan a pages directory, compile every route file, and print the
resulting manifest sorted by pathname. The default directory is "pages".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "pages"
			if len(args) == 1 {
				dir = args[0]
			}

			compiled, err := routes.Build(os.DirFS(dir))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATHNAME\tKIND\tSCORE\tDEPTH\tSOURCE")
			for _, r := range compiled {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					r.Pathname, r.Kind,
					formatScore(r.Score), formatScore(r.Depth),
					r.HandlerLocation)
			}
			return w.Flush()
		},
	}
	return cmd
}

func formatScore(n int) string {
	if n == math.MaxInt {
		return "∞"
	}
	return fmt.Sprintf("%d", n)
}
