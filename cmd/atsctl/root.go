package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"ats-portal/internal/app"
	"ats-portal/internal/config"
	"ats-portal/internal/rbac"
	"ats-portal/pkg/password"

	"github.com/spf13/cobra"
)

type tableFlags struct {
	source string
	region string
}

func (f *tableFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", os.Getenv("RBAC_TABLE_SOURCE"), "permission table path or s3://bucket/key (empty for the built-in table)")
	cmd.Flags().StringVar(&f.region, "region", os.Getenv("AWS_REGION"), "AWS region for s3:// sources")
}

func (f *tableFlags) load(cmd *cobra.Command) (*rbac.Table, error) {
	return app.LoadTable(cmd.Context(), f.source, config.AWSConfig{
		Region:          f.region,
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	})
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "atsctl",
		Short:        "Operator tools for the ATS portal",
		SilenceUsage: true,
	}
	root.AddCommand(
		hashPasswordCmd(),
		exportTableCmd(),
		checkTableCmd(),
		canCmd(),
	)
	return root
}

func hashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Read a password from stdin and print its bcrypt hash for the user directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && err != io.EOF {
				return fmt.Errorf("read password: %w", err)
			}
			hash, err := password.HashWithCost(strings.TrimRight(line, "\r\n"), cost)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", password.DefaultCost, "bcrypt cost")
	return cmd
}

func exportTableCmd() *cobra.Command {
	var flags tableFlags
	cmd := &cobra.Command{
		Use:   "export-table",
		Short: "Print the permission table in its YAML file format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := flags.load(cmd)
			if err != nil {
				return err
			}
			return rbac.EncodeConfig(cmd.OutOrStdout(), table)
		},
	}
	flags.register(cmd)
	return cmd
}

func checkTableCmd() *cobra.Command {
	var flags tableFlags
	cmd := &cobra.Command{
		Use:   "check-table",
		Short: "Validate a permission table and summarize its grants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := flags.load(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range table.Entries() {
				_, _ = fmt.Fprintf(out, "%-16s %d permissions\n", e.Role, len(e.Permissions))
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func canCmd() *cobra.Command {
	var flags tableFlags
	cmd := &cobra.Command{
		Use:   "can ROLE ACTION:SUBJECT",
		Short: "Report whether a role holds a permission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := rbac.ParseRole(args[0])
			if err != nil {
				return err
			}
			perm, err := rbac.ParsePermission(args[1])
			if err != nil {
				return err
			}
			table, err := flags.load(cmd)
			if err != nil {
				return err
			}

			checker := rbac.New(table)
			if err := checker.Authorize(rbac.RolePrincipal(role), perm.Action, perm.Subject); err != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "denied: %s\n", err)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "allowed: %s may %s\n", role, perm)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
