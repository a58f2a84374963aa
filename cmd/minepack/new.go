package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codewithboateng/minepack/internal/scaffold"
)

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a new add-on project",
	Long: `Create <name>/ with a behavior package (BP) holding a script entry point,
a resource package (RP), fresh manifest UUIDs, a README, a .gitignore and a
minepack.json project file recording the namespace.`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

var newFlags scaffold.Options

func init() {
	f := newCmd.Flags()
	f.StringVar(&newFlags.Dir, "dir", ".", "parent directory for the project")
	f.StringVar(&newFlags.Description, "description", "", "package description")
	f.StringVar(&newFlags.Author, "author", "", "author name")
	f.StringVar(&newFlags.Namespace, "namespace", "", "identifier namespace (default derived from the name)")
	f.StringVar(&newFlags.MinEngine, "min-engine", scaffold.DefaultMinEngine, "min_engine_version")
	f.BoolVar(&newFlags.BPOnly, "bp-only", false, "create only the behavior package")
	f.BoolVar(&newFlags.RPOnly, "rp-only", false, "create only the resource package")
	f.BoolVar(&newFlags.NoReadme, "no-readme", false, "skip README.md")
	f.BoolVar(&newFlags.NoGitignore, "no-gitignore", false, "skip .gitignore")
}

func runNew(cmd *cobra.Command, args []string) error {
	if _, _, err := loadConfig(); err != nil {
		return err
	}
	opts := newFlags
	opts.Name = args[0]
	res, err := scaffold.Create(opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color.New(color.FgGreen, color.Bold).Fprintf(out, "✔ Project created at %s\n", res.Root)
	for _, f := range res.Files {
		fmt.Fprintf(out, "  + %s\n", f)
	}
	fmt.Fprintln(out, "\nNext steps:")
	if res.BehaviorRoot != "" {
		fmt.Fprintln(out, "  - Add scripts to BP/scripts/")
	}
	if res.ResourceRoot != "" {
		fmt.Fprintln(out, "  - Add textures, models or sounds to RP/")
	}
	fmt.Fprintf(out, "  - Run: minepack validate -b %s -r %s\n",
		firstNonEmpty(res.BehaviorRoot, "-"), firstNonEmpty(res.ResourceRoot, "-"))
	return nil
}
