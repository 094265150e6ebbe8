/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/josephgoksu/corpusgraph/internal/config"
	"github.com/josephgoksu/corpusgraph/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is the application version.
// Set via ldflags at build time: -ldflags "-X github.com/josephgoksu/corpusgraph/cmd.version=1.0.0"
// Defaults to "dev" for local development builds.
var version = "dev"

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "corpusgraph",
	Short: "corpusgraph - a semantic corpus graph engine",
	Long: `corpusgraph maintains a hierarchy and relatedness graph over a corpus of
notes: embed, cluster, name, and query without hand-maintained folders.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	initCrashHandler()
	defer logger.HandlePanic()

	rootCmd.SuggestionsMinimumDistance = 2

	err := rootCmd.Execute()
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "unknown command") {
			parts := strings.Split(errStr, "\"")
			if len(parts) >= 2 {
				if hint := getCommandHint(parts[1]); hint != "" {
					fmt.Fprintf(os.Stderr, "\n%s\n", hint)
				}
			}
		}
		os.Exit(1)
	}
}

// initCrashHandler sets up the crash logging context ahead of any command
// running, so a panic anywhere below has a base path and command name to
// report.
func initCrashHandler() {
	logger.SetVersion(version)

	if dir, err := config.DefaultDataDir(); err == nil {
		logger.SetBasePath(dir)
	}
	if len(os.Args) > 1 {
		logger.SetCommand(strings.Join(os.Args[1:], " "))
	}
}

// getCommandHint returns a hint for common command-name mistakes.
func getCommandHint(cmd string) string {
	hints := map[string]string{
		"query":   "Hint: To query the graph, use: corpusgraph query-edges",
		"find":    "Hint: To full-text search, use: corpusgraph search \"<query>\"",
		"nodes":   "Hint: To list children of a node, use: corpusgraph get-children <parent-id>",
		"rebuild": "Hint: To recompute the hierarchy, use: corpusgraph rebuild-hierarchy",
		"embed":   "Hint: To (re)compute embeddings, use: corpusgraph regenerate-embeddings",
		"health":  "Hint: To check corpus health, use: corpusgraph analyze",
		"context": "Hint: To expand context for a task, use: corpusgraph context-for-task <node-id>",
	}
	return hints[cmd]
}

func init() {
	cobra.OnInitialize(func() {})

	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ~/.corpusgraph/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "Override the resolved data directory")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.SetHelpTemplate(`{{if .Long}}
{{.Long}}
{{else}}
  {{.Short}}
{{end}}
  Usage: {{.UseLine}}
{{if .HasAvailableSubCommands}}
  Commands:
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}    {{rpad .Name .NamePadding }} {{.Short}}
{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}
  Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

  Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}
`)
}

// GetVersion returns the application version.
func GetVersion() string {
	return version
}
