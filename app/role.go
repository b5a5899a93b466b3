package app

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/daemon"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/hierarchy"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/roles"
)

func init() { //nolint: gochecknoinits
	roleCmd.AddCommand(roleGrantsCmd, roleGrantCmd, roleRevokeCmd, roleSetCmd)
	rootCmd.AddCommand(roleCmd)
}

var (
	roleCmd = &cobra.Command{
		Use:   "role",
		Short: "Inspect and change role grants",
	}

	roleGrantsCmd = &cobra.Command{
		Use:   "grants <role>",
		Short: "List the roles a role inherits and the roles inheriting it",
		Args:  cobra.ExactArgs(1),
		RunE: withEngine(func(ctx context.Context, e *hierarchy.Engine, out io.Writer, args []string) error {
			return printGrants(ctx, e, out, parseCLIRef(args[0]))
		}),
	}

	roleGrantCmd = &cobra.Command{
		Use:   "grant <role> <inherited role>",
		Short: "Make a role inherit another role",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: withEngine(func(ctx context.Context, e *hierarchy.Engine, out io.Writer, args []string) error {
			if err := e.Grant(ctx, parseCLIRef(args[0]), parseCLIRef(args[1])); err != nil {
				return err
			}

			_, err := fmt.Fprintf(out, "The role %s was granted role %s.\n", args[0], args[1])

			return err
		}),
	}

	roleRevokeCmd = &cobra.Command{
		Use:   "revoke <role> <inherited role>",
		Short: "Remove a direct grant",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: withEngine(func(ctx context.Context, e *hierarchy.Engine, out io.Writer, args []string) error {
			if err := e.Revoke(ctx, parseCLIRef(args[0]), parseCLIRef(args[1])); err != nil {
				return err
			}

			_, err := fmt.Fprintf(out, "The role %s was revoked role %s.\n", args[0], args[1])

			return err
		}),
	}

	roleSetCmd = &cobra.Command{
		Use:   "set <role> [inherited role uuid...]",
		Short: "Replace the direct grants of a role, no uuid revokes all",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEngine(func(ctx context.Context, e *hierarchy.Engine, out io.Writer, args []string) error {
			if err := e.Reconcile(ctx, parseCLIRef(args[0]), args[1:]); err != nil {
				return err
			}

			return printGrants(ctx, e, out, parseCLIRef(args[0]))
		}),
	}
)

type engineFunc func(ctx context.Context, e *hierarchy.Engine, out io.Writer, args []string) error

// withEngine opens the configured database for the duration of one command.
func withEngine(fn engineFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		b, err := daemon.Open(&cfg)
		if err != nil {
			return err
		}

		defer func() { _ = b.Close() }()

		return fn(cmd.Context(), b.Engine, cmd.OutOrStdout(), args)
	}
}

// parseCLIRef accepts an id or uuid like the API does, and falls back to a role name.
func parseCLIRef(s string) roles.Ref {
	if ref, err := roles.ParseRef(s); err == nil {
		return ref
	}

	return roles.ByName(s)
}

func printGrants(ctx context.Context, e *hierarchy.Engine, out io.Writer, ref roles.Ref) error {
	rec, err := e.Role(ctx, ref)
	if err != nil {
		return err
	}

	inherits, err := e.TransitiveGrants(ctx, roles.ByID(rec.ID))
	if err != nil {
		return err
	}

	inheritedBy, err := e.TransitiveGrantees(ctx, roles.ByID(rec.ID))
	if err != nil {
		return err
	}

	if _, err = fmt.Fprintf(out, "%s (id %d, uuid %s)\n", rec.Name, rec.ID, rec.UUID); err != nil {
		return err
	}

	for _, line := range []struct {
		label string
		ids   []uint
	}{{"inherits", inherits}, {"inherited by", inheritedBy}} {
		if _, err = fmt.Fprintf(out, "  %s:", line.label); err != nil {
			return err
		}

		for _, id := range line.ids {
			r, roleErr := e.Role(ctx, roles.ByID(id))
			if roleErr != nil {
				return roleErr
			}

			if _, err = fmt.Fprintf(out, " %s", r.Name); err != nil {
				return err
			}
		}

		if _, err = fmt.Fprintln(out); err != nil {
			return err
		}
	}

	return nil
}
