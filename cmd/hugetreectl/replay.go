// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antgroup/hugetree/modules/changeset"
	"github.com/antgroup/hugetree/modules/codec"
	"github.com/antgroup/hugetree/modules/detachedindex"
	"github.com/antgroup/hugetree/modules/editmanager"
	"github.com/antgroup/hugetree/modules/forest"
	"github.com/antgroup/hugetree/modules/idcompress"
)

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <summary.toml>",
		Short: "Re-derive the root content from a trunk, printing it after every commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, args[0])
		},
	}
}

func runReplay(cmd *cobra.Command, path string) error {
	summary, err := codec.Decode(path)
	if err != nil {
		return fmt.Errorf("decode summary: %w", err)
	}

	out := cmd.OutOrStdout()
	comparator := idcompress.New(8)
	engine := changeset.NewEngine(changeset.NewDefaultRegistry(), comparator.Less)
	idx := detachedindex.New()
	f := forest.New(idx)
	em := editmanager.New(engine, nil, f, idx)

	for i, c := range summary.EditManager.Trunk {
		seq := c.Revision.Seq
		if err := em.AddSequencedChange(c.Revision, seq, c.Changeset); err != nil {
			return fmt.Errorf("replay trunk[%d] (%s): %w", i, c.Revision, err)
		}
		root := f.Root()
		if root == nil {
			fmt.Fprintf(out, "after %s: <empty>\n", c.Revision)
			continue
		}
		fmt.Fprintf(out, "after %s: type=%s value=%v\n", c.Revision, root.Type, root.Value)
	}
	return nil
}
