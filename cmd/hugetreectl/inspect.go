// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antgroup/hugetree/modules/codec"
	"github.com/antgroup/hugetree/modules/detachedindex"
	"github.com/antgroup/hugetree/modules/forest"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <summary.toml>",
		Short: "Print a persisted summary's trunk, local branch, and root content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0])
		},
	}
}

func runInspect(cmd *cobra.Command, path string) error {
	summary, err := codec.Decode(path)
	if err != nil {
		return fmt.Errorf("decode summary: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "trunk:    %d commit(s)\n", len(summary.EditManager.Trunk))
	fmt.Fprintf(out, "local:    %d commit(s)\n", len(summary.EditManager.Local))
	fmt.Fprintf(out, "lastSeq:  %d (seen=%v)\n", summary.EditManager.LastSeq, summary.EditManager.LastSeen)
	for i, c := range summary.EditManager.Trunk {
		fmt.Fprintf(out, "  trunk[%d]: %s\n", i, c.Revision)
	}
	for i, c := range summary.EditManager.Local {
		fmt.Fprintf(out, "  local[%d]: %s\n", i, c.Revision)
	}

	idx := detachedindex.Restore(summary.DetachedFieldIndex)
	f := forest.Restore(idx, summary.Forest)
	fmt.Fprintf(out, "detached: %d entr(ies), next id %d\n", len(summary.DetachedFieldIndex.Entries), summary.DetachedFieldIndex.Next)
	if root := f.Root(); root != nil {
		fmt.Fprintf(out, "root:     type=%s value=%v\n", root.Type, root.Value)
	} else {
		fmt.Fprintln(out, "root:     <empty>")
	}

	if summary.Schema != nil {
		fmt.Fprintf(out, "schema:   version=%d, %d type(s)\n", summary.Schema.Version, len(summary.Schema.Types))
	} else {
		fmt.Fprintln(out, "schema:   <none>")
	}
	return nil
}
