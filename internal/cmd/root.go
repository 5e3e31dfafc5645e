package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// options holds the root command flags.
type options struct {
	configFile  string
	dryRun      bool
	query       string
	interactive bool
	list        bool
	local       bool
	kodi        string
	watch       bool
	verbose     bool
	noColor     bool
}

func newRootCmd(env *environment) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "tvshelf [flags] SOURCE DEST",
		Short: "Organize downloaded TV episodes into a library",
		Long: `tvshelf moves downloaded episodes into a "Show/Season N/Show - 1x02 - Title.ext"
library. Show names guessed from file names are mapped to catalog ids through a
local shows table, and episode titles are fetched from TheTVDB or TMDB.

Modes:
  tvshelf SOURCE DEST      move every recognized episode from SOURCE into DEST
  tvshelf -q NAME          search the catalog for a show (add it with -i)
  tvshelf -l [DEST]        report the last aired and next episode of every known show`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case opts.query != "":
				return runQuery(cmd.Context(), env, opts)
			case opts.list:
				dest := ""
				if len(args) > 0 {
					dest = args[0]
				}
				return runList(cmd.Context(), env, opts, dest)
			default:
				return runMove(cmd.Context(), env, opts, args)
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default ~/.tvshelf/config.yaml)")
	flags.BoolVar(&opts.verbose, "verbose", false, "log debug details")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.Flags().BoolVarP(&opts.dryRun, "dryrun", "n", false, "log every decision without touching the filesystem")
	rootCmd.Flags().StringVarP(&opts.query, "query", "q", "", "search the catalog for a show name")
	rootCmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "offer to add unknown shows")
	rootCmd.Flags().BoolVarP(&opts.list, "list", "l", false, "report aired and upcoming episodes, checked against DEST when given")
	rootCmd.Flags().BoolVar(&opts.local, "local", false, "with --list, also show the newest episode already in DEST")
	rootCmd.Flags().StringVar(&opts.kodi, "kodi", "", "refresh Kodi after moving, as login:pass@host:port")
	rootCmd.Flags().BoolVar(&opts.watch, "watch", false, "keep running and move new files as they arrive")

	rootCmd.AddCommand(newAddCmd(env, opts))
	rootCmd.AddCommand(newUndoCmd(env, opts))
	rootCmd.AddCommand(newConfigCmd(env, opts))

	rootCmd.SetIn(env.stdin)
	rootCmd.SetOut(env.stdout)
	rootCmd.SetErr(env.stderr)
	return rootCmd
}

// Execute runs the command line and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := execute(ctx, defaultEnvironment(), os.Args[1:])
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func execute(ctx context.Context, env *environment, args []string) error {
	rootCmd := newRootCmd(env)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(env.stderr, err)
	}
	return err
}

func printError(w io.Writer, err error) {
	var usage usageError
	if errors.As(err, &usage) {
		io.WriteString(w, usage.Error()+"\n")
		return
	}
	io.WriteString(w, "Error: "+err.Error()+"\n")
}

// usageError is a user mistake reported without the "Error:" prefix.
type usageError string

func (e usageError) Error() string { return string(e) }
