package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/platinummonkey/gitbridge/pkg/created"
	"github.com/platinummonkey/gitbridge/pkg/resolve"
)

func newListCommand() *Command {
	cmd := &Command{
		Name:        "list",
		Description: "List all issues or merge requests created within a year",
		Flags:       flag.NewFlagSet("list", flag.ExitOnError),
	}

	cmd.Flags.String("kind", "issues", "What to list: issues or mr")
	cmd.Flags.Int("year", 0, "Calendar year, e.g. 2025")
	cmd.Flags.String("target", "", "Restrict to one project or group path (default: whole instance)")
	cmd.Flags.Int("page-size", 0, "Upstream page size (default 100)")
	cmd.Flags.String("output", "", "Write the JSON array to a file instead of stdout")
	registerUpstreamFlags(cmd.Flags)

	cmd.Run = func(args []string) error { return runList(cmd, args) }
	return cmd
}

func runList(cmd *Command, args []string) error {
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	kind, err := created.ParseKind(cmd.Flags.Lookup("kind").Value.String())
	if err != nil {
		return err
	}

	year, err := strconv.Atoi(cmd.Flags.Lookup("year").Value.String())
	if err != nil || year == 0 {
		return fmt.Errorf("year is required")
	}

	pageSize, _ := strconv.Atoi(cmd.Flags.Lookup("page-size").Value.String())
	target := cmd.Flags.Lookup("target").Value.String()
	output := cmd.Flags.Lookup("output").Value.String()

	client, err := upstreamClient(cmd.Flags)
	if err != nil {
		return err
	}

	ctx := context.Background()

	scope := created.InstanceScope
	if target != "" {
		ref, err := resolve.NewResolver(client).Resolve(ctx, target)
		if err != nil {
			return err
		}
		scope = created.Scope{Ref: ref}
	}

	items, err := created.NewAggregator(client, pageSize).Collect(ctx, kind, year, scope)
	if err != nil {
		return err
	}

	records := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		records = append(records, item.Raw)
	}
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if output != "" {
		if err := os.WriteFile(output, payload, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		fmt.Printf("Wrote %d %s to %s\n", len(items), kind, output)
		return nil
	}

	fmt.Println(string(payload))
	return nil
}
