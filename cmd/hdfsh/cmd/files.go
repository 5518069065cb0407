package cmd

import (
	"github.com/spf13/cobra"
)

var cdCmd = &cobra.Command{
	Use:               "cd [path]",
	Short:             "Change the working directory",
	Long:              `Change the working directory. Without a path, stays in the current one after checking it still exists.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completePath(true, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return appFrom(cmd).executor.Cd(commandContext(cmd), optionalArg(args))
	},
}

var lsCmd = &cobra.Command{
	Use:               "ls [path]",
	Short:             "List a directory",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completePath(false, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return appFrom(cmd).executor.Ls(commandContext(cmd), cmd.OutOrStdout(), optionalArg(args))
	},
}

var duCmd = &cobra.Command{
	Use:   "du [path]",
	Short: "Show the size of each entry in a directory",
	Long: `Show the total size of each entry in a directory. Entries that cannot be
read are shown with a size of "-".`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completePath(false, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return appFrom(cmd).executor.Du(commandContext(cmd), cmd.OutOrStdout(), optionalArg(args))
	},
}

var mkdirCmd = &cobra.Command{
	Use:               "mkdir <path>",
	Short:             "Create a directory",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completePath(true, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parents, _ := cmd.Flags().GetBool("parents")
		return appFrom(cmd).executor.Mkdir(commandContext(cmd), cmd.OutOrStdout(), args[0], parents)
	},
}

var rmCmd = &cobra.Command{
	Use:               "rm <path>",
	Short:             "Remove a file or directory",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completePath(false, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")
		return appFrom(cmd).executor.Rm(commandContext(cmd), cmd.OutOrStdout(), args[0], recursive)
	},
}

var mvCmd = &cobra.Command{
	Use:               "mv <src> <dst>",
	Short:             "Move or rename a file or directory",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completePath(false, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return appFrom(cmd).executor.Mv(commandContext(cmd), args[0], args[1], force)
	},
}

var pwdCmd = &cobra.Command{
	Use:   "pwd",
	Short: "Print the working directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return appFrom(cmd).executor.Pwd(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(cdCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(duCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(pwdCmd)

	mkdirCmd.Flags().BoolP("parents", "p", false, "Create missing parent directories")
	rmCmd.Flags().BoolP("recursive", "r", false, "Remove directories and their contents")
	mvCmd.Flags().BoolP("force", "f", false, "Overwrite an existing destination file")
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// completePath completes remote paths for commands taking up to maxArgs
// path arguments.
func completePath(dirsOnly bool, maxArgs int) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) >= maxArgs {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		// Completion requests skip PersistentPreRunE, so set up here.
		a := appFrom(cmd)
		if a == nil {
			var err error
			if a, err = newApplication(); err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			defer a.close()
		}
		candidates, err := a.executor.Complete(commandContext(cmd), toComplete, dirsOnly)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return candidates, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}
