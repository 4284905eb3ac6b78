// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/antgroup/hugetree/modules/changeset"
	"github.com/antgroup/hugetree/modules/idcompress"
	"github.com/antgroup/hugetree/modules/schemapolicy"
	"github.com/antgroup/hugetree/modules/wireserver"
)

func newServeCmd() *cobra.Command {
	var addr, secret string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference sequencer over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret is required")
			}
			comparator := idcompress.New(64)
			s := wireserver.NewServer(wireserver.Config{
				Registry:   changeset.NewDefaultRegistry(),
				Comparator: comparator.Less,
				Policy:     schemapolicy.DefaultPolicy(),
				Secret:     []byte(secret),
			})
			logrus.Infof("hugetreectl serve: listening on %s", addr)
			return http.ListenAndServe(addr, s)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8642", "address to listen on")
	cmd.Flags().StringVar(&secret, "secret", "", "HMAC secret bearer tokens are signed with")
	return cmd
}
