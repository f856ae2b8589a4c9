package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/prilive-com/tgbots/registry"
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Connect every configured bot and print the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settingsFromViper()
			if err != nil {
				return err
			}
			hub, _, err := startHub(cmd.Context(), cmd, *s)
			if err != nil {
				return err
			}
			defer hub.Close()
			return writeSummaryTable(cmd.OutOrStdout(), string(hub.Mode()), hub.Registry().Summary())
		},
	}
}

func newListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the configured bots after connecting them",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settingsFromViper()
			if err != nil {
				return err
			}
			hub, _, err := startHub(cmd.Context(), cmd, *s)
			if err != nil {
				return err
			}
			defer hub.Close()

			rows := hub.Registry().Summary()
			if asJSON {
				return writeSummaryJSON(cmd.OutOrStdout(), string(hub.Mode()), rows)
			}
			return writeSummaryTable(cmd.OutOrStdout(), string(hub.Mode()), rows)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the list as JSON.")
	return cmd
}

func writeSummaryJSON(w io.Writer, mode string, rows []registry.Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Mode string         `json:"mode"`
		Bots []registry.Row `json:"bots"`
	}{Mode: mode, Bots: rows})
}

func writeSummaryTable(w io.Writer, mode string, rows []registry.Row) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "mode: %s\n", mode)
	fmt.Fprintln(tw, "BOT\tID\tUSERNAME\tDEFAULT\tPOLLING\tQUEUED\tWEBHOOK\tALLOWED\tPENDING")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\t%t\t%s\t%s\t%d\n",
			r.Bot, dash(r.ID), dash(r.Username), r.Default, r.Polling, r.Queued,
			dash(r.WebhookURL), dash(strings.Join(r.Allowed, ",")), r.Pending)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
