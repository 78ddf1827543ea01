package main

import (
	"github.com/spf13/cobra"

	"github.com/ZipperCode/my-claude-code-plugin/pkg/maestro/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the host and the installation",
	Long: `Doctor checks that the claude CLI, git and the tools maestro's workflows call
are installed, which MCP servers Claude Code has configured, and whether
spec-kit and OpenSpec commands are registered in the project.

With --verify it also checks the installation itself: the manifest
schema, missing managed files, hook scripts without the executable bit,
untracked files in maestro's directories, .gitignore coverage of runtime
state and leftover hook entries from older versions.

Findings are reported but never change the exit code.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

var doctorVerify bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorVerify, "verify", false, "also verify the installation")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}
	prober, closeCache := newProber()
	defer closeCache()

	d, err := doctor.Run(commandContext(cmd), doctor.Options{
		ProjectDir: dir,
		Prober:     prober,
		Verify:     doctorVerify,
	})
	if err != nil {
		return err
	}
	return render(doctorReport(dir, d))
}
