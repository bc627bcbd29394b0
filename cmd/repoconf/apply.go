package main

import (
	"github.com/spf13/cobra"

	"github.com/lixenwraith/repoconf/internal/converge"
	"github.com/lixenwraith/repoconf/internal/manifest"
)

func newApplyCommand(flags *globalFlags) *cobra.Command {
	var noop bool

	cmd := &cobra.Command{
		Use:   "apply <manifest>",
		Short: "Converge repositories to a manifest",
		Long: `Apply reads the declared repositories from a manifest and creates, updates
or removes repository sections until the files match. All changes are written
in one pass at the end.

Example:
  repoconf apply /etc/repoconf/repos.toml
  repoconf apply --noop repos.hcl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, flags)
			if err != nil {
				return err
			}

			m, err := manifest.Load(rt.ctx, args[0])
			if err != nil {
				return err
			}

			report, err := converge.Apply(rt.ctx, rt.shared, rt.props, m.Declarations, converge.Options{Noop: noop})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range report.Changes {
				switch c.Action {
				case converge.ActionChange:
					printf(out, "%s: %s changed '%s' to '%s'\n", c.Record, c.Property, c.From, c.To)
				default:
					printf(out, "%s: %s\n", c.Record, c.Action)
				}
			}
			for _, name := range report.Ignored {
				rt.logger.Warn("Unrecognized property ignored.", "property", name)
			}
			if noop {
				printf(out, "%d change(s) would be applied\n", len(report.Changes))
			} else {
				printf(out, "%d change(s) applied, %d file(s) written, %d removed\n",
					len(report.Changes), len(report.Stats.Written), len(report.Stats.Removed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noop, "noop", false, "Report changes without writing any file.")
	return cmd
}
