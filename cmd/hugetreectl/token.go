// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/antgroup/hugetree/modules/changeset"
	"github.com/antgroup/hugetree/modules/schemapolicy"
	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/wireserver"
)

func newTokenCmd() *cobra.Command {
	var secret string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <session-id>",
		Short: "Issue a bearer token for a collaborating session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret is required")
			}
			s := wireserver.NewServer(wireserver.Config{
				Registry:   changeset.NewDefaultRegistry(),
				Comparator: tagging.Less,
				Policy:     &schemapolicy.Policy{},
				Secret:     []byte(secret),
			})
			token, err := s.IssueToken(args[0], ttl)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "HMAC secret to sign the token with (must match the server's)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
