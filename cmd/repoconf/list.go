package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/repoconf"
)

func newListCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List managed repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, flags)
			if err != nil {
				return err
			}

			records, err := repoconf.Instances(rt.shared, rt.props)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tENABLED\tFILE")
			for _, rec := range records {
				sec, err := rec.Section()
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", rec.Name(), enabledLabel(rec), sec.Path())
			}
			return tw.Flush()
		},
	}
}

// enabledLabel reports the enabled flag, which yum defaults to on.
func enabledLabel(rec *repoconf.Record) string {
	v, err := rec.Get("enabled")
	if err != nil {
		return "?"
	}
	if v == repoconf.Absent {
		return "yes"
	}
	on, err := rec.Bool("enabled")
	switch {
	case err != nil:
		return "?"
	case on:
		return "yes"
	default:
		return "no"
	}
}

func newShowCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show the properties of one repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, flags)
			if err != nil {
				return err
			}

			reg, err := rt.shared.Registry()
			if err != nil {
				return err
			}
			if _, ok := reg.Lookup(args[0]); !ok {
				return fmt.Errorf("repository %q not found", args[0])
			}

			rec := repoconf.NewRecord(args[0], rt.shared, rt.props)
			out := cmd.OutOrStdout()
			for _, prop := range rt.props.Names() {
				v, err := rec.Get(prop)
				if err != nil {
					return err
				}
				if v != repoconf.Absent {
					printf(out, "%s = %s\n", prop, v)
				}
			}
			return nil
		},
	}
}

func newFilesCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "Show the resolved directories and files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, flags)
			if err != nil {
				return err
			}

			reg, err := rt.shared.Registry()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, dir := range reg.Dirs() {
				printf(out, "dir  %s\n", dir)
			}
			for _, file := range reg.Files() {
				printf(out, "file %s\n", file)
			}
			return nil
		},
	}
}
