package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zjrosen/featmodel/internal/cachemanager"
	"github.com/zjrosen/featmodel/internal/codec"
	"github.com/zjrosen/featmodel/internal/infrastructure/sqlite"
	"github.com/zjrosen/featmodel/internal/store"
)

var (
	storeFormatFlag string
	outputFlag      string
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Save, load and search models in the model store",
	Long: `The model store is a SQLite database (store.path) holding named model
snapshots and an index of their feature names.`,
}

var storeSaveCmd = &cobra.Command{
	Use:   "save <name> <file>",
	Short: "Store a model file under name, replacing any previous version",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := readModel(args[1])
		if err != nil {
			return err
		}
		defer m.Close()

		svc, err := openStore(cmd)
		if err != nil {
			return err
		}
		if err := svc.Save(cmd.Context(), args[0], m); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d features)\n", args[0], m.NumberOfFeatures())
		return nil
	},
}

var storeLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Print a stored model, or write it with --output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openStore(cmd)
		if err != nil {
			return err
		}
		m, err := svc.Load(cmd.Context(), args[0], cfg.ModelOptions()...)
		if err != nil {
			return err
		}
		defer m.Close()

		if outputFlag != "" {
			if err := codec.WriteFile(outputFlag, formatFlag, m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outputFlag)
			return nil
		}
		f := codec.Format(codec.YAML{})
		if formatFlag != "" {
			if f, err = codec.Lookup(formatFlag); err != nil {
				return err
			}
		}
		return f.Encode(cmd.OutOrStdout(), m)
	},
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := openStore(cmd)
		if err != nil {
			return err
		}
		summaries, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no models stored")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tFORMAT\tFEATURES\tUPDATED")
		for _, s := range summaries {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Name, s.Format, s.FeatureCount, s.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		return tw.Flush()
	},
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a stored model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openStore(cmd)
		if err != nil {
			return err
		}
		if err := svc.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

var storeFindCmd = &cobra.Command{
	Use:   "find <feature>",
	Short: "List stored models that contain a feature with the given name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openStore(cmd)
		if err != nil {
			return err
		}
		names, err := svc.FindByFeatureName(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	storeSaveCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "input format (default: by file extension)")
	storeSaveCmd.Flags().StringVar(&storeFormatFlag, "store-format", "yaml", "format the snapshot is stored in")
	storeLoadCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "output format (default: yaml, or by --output extension)")
	storeLoadCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "write to this file instead of stdout")

	storeCmd.AddCommand(storeSaveCmd, storeLoadCmd, storeListCmd, storeDeleteCmd, storeFindCmd)
	rootCmd.AddCommand(storeCmd)
}

// openStore opens the configured database behind the read-through cache.
// The database is closed when the command finishes.
func openStore(cmd *cobra.Command) (*store.Service, error) {
	db, err := sqlite.NewDB(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening model store: %w", err)
	}
	cleanups = append(cleanups, func() { _ = db.Close() })

	cache := cachemanager.NewInMemoryCacheManager[string, *store.Snapshot]("models", cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	repo := store.NewCachedRepository(db.ModelRepository(), cache, cfg.Cache.TTL, cfg.Cache.Disabled)

	var opts []store.ServiceOption
	if cmd.Flags().Lookup("store-format") != nil {
		f, err := codec.Lookup(storeFormatFlag)
		if err != nil {
			return nil, err
		}
		opts = append(opts, store.WithFormat(f))
	}
	return store.NewService(repo, opts...), nil
}
