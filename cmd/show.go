package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/featmodel/internal/codec"
	"github.com/zjrosen/featmodel/internal/featuremodel"
	"github.com/zjrosen/featmodel/internal/render"
)

var (
	formatFlag        string
	plainFlag         bool
	noConstraintsFlag bool
	descWidthFlag     int
)

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print a model as a tree",
	Long: `Print the feature tree of a model together with its unbound features and
constraints.

Annotations after each feature name show its range, group kind, and the
abstract and hidden flags.

Examples:
  featmodel show car.yaml
  featmodel show --format dimacs car.cnf
  featmodel show --plain --no-constraints car.xml
  featmodel show --descriptions 60 car.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := readModel(args[0])
		if err != nil {
			return err
		}
		defer m.Close()

		_, err = fmt.Fprint(cmd.OutOrStdout(), renderer(!noConstraintsFlag).Model(m))
		return err
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check that model files decode and satisfy every model invariant",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateFiles(cmd, args)
	},
}

func init() {
	for _, c := range []*cobra.Command{showCmd, validateCmd} {
		c.Flags().StringVarP(&formatFlag, "format", "f", "", "model format (default: by file extension)")
	}
	showCmd.Flags().BoolVar(&plainFlag, "plain", false, "disable colors")
	showCmd.Flags().BoolVar(&noConstraintsFlag, "no-constraints", false, "omit the constraint list")
	showCmd.Flags().IntVar(&descWidthFlag, "descriptions", 0, "show feature descriptions wrapped at this width")
	rootCmd.AddCommand(showCmd, validateCmd)
}

// readModel decodes path with the configured model options.
func readModel(path string) (*featuremodel.Model, error) {
	return codec.ReadFile(path, formatFlag, cfg.ModelOptions()...)
}

func renderer(constraints bool) *render.Renderer {
	styles := render.DefaultStyles()
	if plainFlag {
		styles = render.PlainStyles()
	}
	return render.New(
		render.WithStyles(styles),
		render.WithConstraints(constraints),
		render.WithDescriptions(descWidthFlag),
	)
}

// errInvalid marks a run in which at least one file was invalid. The
// details have already been printed.
var errInvalid = errors.New("invalid model")

// validateFiles prints one line per file and fails if any file is invalid.
func validateFiles(cmd *cobra.Command, paths []string) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range paths {
		m, err := readModel(path)
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s\n  %v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s (%d features, %d constraints)\n",
			path, m.NumberOfFeatures(), m.NumberOfConstraints())
		m.Close()
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", errInvalid, failed, len(paths))
	}
	return nil
}
