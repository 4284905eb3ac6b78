// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Command hugetreectl is a reference CLI over this repository's
// collaborators: inspect a persisted summary, replay its trunk, issue
// bearer tokens, and run the wireserver sequencer for demos.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:           "hugetreectl",
		Short:         "Inspect and drive a hugetree collaboration session",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.AddCommand(
		newInspectCmd(),
		newReplayCmd(),
		newTokenCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return cmd
}
