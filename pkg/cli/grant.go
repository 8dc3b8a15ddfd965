package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/platinummonkey/gitbridge/pkg/resolve"
	"github.com/platinummonkey/gitbridge/pkg/roles"
)

func newGrantRoleCommand() *Command {
	cmd := &Command{
		Name:        "grant-role",
		Description: "Grant or reconcile a user's role on a project or group",
		Flags:       flag.NewFlagSet("grant-role", flag.ExitOnError),
	}

	cmd.Flags.String("username", "", "GitLab username (exact match)")
	cmd.Flags.String("target", "", "Full path of the project or group, e.g. group/subgroup/app")
	cmd.Flags.String("role", "developer", "Role name (guest, reporter, developer, maintainer, owner) or numeric level")
	registerUpstreamFlags(cmd.Flags)

	cmd.Run = func(args []string) error { return runGrantRole(cmd, args) }
	return cmd
}

func runGrantRole(cmd *Command, args []string) error {
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	username := cmd.Flags.Lookup("username").Value.String()
	target := cmd.Flags.Lookup("target").Value.String()
	roleStr := cmd.Flags.Lookup("role").Value.String()

	if username == "" || target == "" {
		return fmt.Errorf("username and target are required")
	}

	level, err := roles.ParseLevel(roleStr)
	if err != nil {
		return err
	}

	client, err := upstreamClient(cmd.Flags)
	if err != nil {
		return err
	}

	ctx := context.Background()

	ref, err := resolve.NewResolver(client).Resolve(ctx, target)
	if err != nil {
		return err
	}

	result, err := roles.NewReconciler(client).Grant(ctx, ref, username, level)
	if err != nil {
		return err
	}

	switch result.Action {
	case roles.ActionNoop:
		fmt.Printf("%s already has %s on %s, nothing to do\n", username, result.NewLevel, ref)
	case roles.ActionChanged:
		fmt.Printf("Changed %s from %s to %s on %s\n", username, result.PreviousLevel, result.NewLevel, ref)
	default:
		fmt.Printf("Granted %s to %s on %s\n", result.NewLevel, username, ref)
	}
	return nil
}
