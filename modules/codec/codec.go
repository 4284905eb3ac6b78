// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package codec implements the on-disk summary format (spec §6, §9): a
// TOML document with four fixed root keys (editManager, forest, schema,
// detachedFieldIndex), each an opaque gob-encoded, zstd-compressed blob.
// TOML only structures which blob is which and carries the edit-manager's
// version marker; every collaborator's actual state lives in its own
// blob, oblivious to the wrapper around it.
package codec

import (
	"encoding/gob"

	"github.com/antgroup/hugetree/modules/fieldkinds/optionalfield"
	"github.com/antgroup/hugetree/modules/fieldkinds/sequencefield"
	"github.com/antgroup/hugetree/modules/schemapolicy"
)

func init() {
	// Field-kind changesets ride through nodechange.FieldChange.Change
	// and delta.Mark.ValueChange as `any`; gob needs the concrete types
	// named up front to encode/decode them. treedata.Value's own leaf
	// domain (spec §3: null, boolean, number, string, opaque handle) is
	// registered for the member kinds this repository's own test/demo
	// data exercises — a host application threading its own opaque
	// handle type through Value must register that type itself.
	gob.Register(&optionalfield.Changeset{})
	gob.Register(sequencefield.MarkList{})
	gob.Register(&schemapolicy.Changeset{})
	gob.Register("")
	gob.Register(float64(0))
	gob.Register(false)
}
