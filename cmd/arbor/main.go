package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/arbornav/arbor/internal/app"
	"github.com/arbornav/arbor/internal/diag"
	"github.com/arbornav/arbor/internal/git"
	"github.com/arbornav/arbor/internal/state"
	"github.com/arbornav/arbor/internal/tree"
)

var version = "dev"

var (
	flagHidden      bool
	flagIgnored     bool
	flagNoGroup     bool
	flagFlat        bool
	flagDiagnostics string
	flagGitCLI      bool
	flagNoPersist   bool
)

var rootCmd = &cobra.Command{
	Use:   "arbor [directory]",
	Short: "A directory tree panel for the terminal",
	Long: `Arbor shows a lazily populated directory tree with git status and
diagnostics overlays, kept in sync with the filesystem while it runs.`,
	Args:    cobra.MaximumNArgs(1),
	Version: version,
	RunE:    run,
}

func init() {
	rootCmd.Flags().BoolVar(&flagHidden, "hidden", false, "show dotfiles")
	rootCmd.Flags().BoolVar(&flagIgnored, "ignored", false, "show gitignored entries")
	rootCmd.Flags().BoolVar(&flagNoGroup, "no-group", false, "do not collapse single-child directory chains")
	rootCmd.Flags().BoolVar(&flagFlat, "flat", false, "sort by name only instead of directories first")
	rootCmd.Flags().StringVar(&flagDiagnostics, "diagnostics", "", "JSON file mapping paths to severities")
	rootCmd.Flags().BoolVar(&flagGitCLI, "git-cli", false, "shell out to git instead of reading the repository directly")
	rootCmd.Flags().BoolVar(&flagNoPersist, "no-persist", false, "do not save toggles and root on exit")
}

func run(cmd *cobra.Command, args []string) error {
	saved := state.Load()

	root := saved.LastRoot
	if len(args) > 0 {
		root = args[0]
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		root = wd
	}

	cfg := tree.Config{
		ShowHidden:  saved.ShowHidden || flagHidden,
		ShowIgnored: saved.ShowIgnored || flagIgnored,
		DirsFirst:   saved.DirsFirst && !flagFlat,
		GroupDirs:   saved.GroupDirs && !flagNoGroup,
	}

	provider := func(r string) git.Provider { return git.NewLibraryProvider(r) }
	if flagGitCLI {
		provider = func(r string) git.Provider { return git.NewShellProvider(r) }
	}

	var diags diag.Source
	if flagDiagnostics != "" {
		src, err := diag.LoadFile(flagDiagnostics, root)
		if err != nil {
			return fmt.Errorf("loading diagnostics: %w", err)
		}
		diags = src
	}

	app.Version = version
	m, err := app.New(app.Options{
		Root:        root,
		Config:      cfg,
		Provider:    provider,
		Diagnostics: diags,
		Persist:     !flagNoPersist,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
