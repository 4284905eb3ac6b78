// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"github.com/antgroup/hugetree/modules/changeerrors"
	"github.com/antgroup/hugetree/modules/detachedindex"
	"github.com/antgroup/hugetree/modules/editmanager"
	"github.com/antgroup/hugetree/modules/forest"
	"github.com/antgroup/hugetree/modules/schemapolicy"
)

// currentEditManagerVersion is the only version this build writes or
// accepts in the metadata sub-blob. A summary with a higher version is
// from a build newer than this one; a summary with no metadata at all
// predates versioning and is read as the legacy trunk-only shape (spec
// §9: never invent a default version number for an absent metadata
// table — its absence IS the legacy signal).
const currentEditManagerVersion = 1

// fileDocument is the literal TOML shape on disk: the four summary root
// keys. editManager is a table (its blob plus an optional metadata sub-
// table); the other three are opaque blob strings, each interpreted only
// by the collaborator that owns it.
type fileDocument struct {
	EditManager        editManagerSection `toml:"editManager"`
	Forest             string             `toml:"forest"`
	Schema             string             `toml:"schema"`
	DetachedFieldIndex string             `toml:"detachedFieldIndex"`
}

type editManagerSection struct {
	Blob     string               `toml:"blob"`
	Metadata *editManagerMetadata `toml:"metadata,omitempty"`
}

type editManagerMetadata struct {
	Version int `toml:"version"`
}

// legacyEditManagerPayload is the pre-versioning editManager blob shape:
// trunk only, no local branch (spec §9's legacy/version-0 load path).
type legacyEditManagerPayload struct {
	Trunk []editmanager.Commit
}

// editManagerPayload is the current (version 1) editManager blob shape.
type editManagerPayload struct {
	Trunk    []editmanager.Commit
	Local    []editmanager.Commit
	LastSeq  uint64
	LastSeen bool
}

// schemaPayload wraps the schema root key's policy in a named struct
// rather than gob-encoding the *schemapolicy.Policy pointer bare, so
// encode and decode agree on exactly one type regardless of whether the
// policy itself is nil.
type schemaPayload struct {
	Policy *schemapolicy.Policy
}

func marshalDocument(s *Summary) (*fileDocument, error) {
	emBlob, err := encodeBlob(editManagerPayload{
		Trunk:    s.EditManager.Trunk,
		Local:    s.EditManager.Local,
		LastSeq:  s.EditManager.LastSeq,
		LastSeen: s.EditManager.LastSeen,
	})
	if err != nil {
		return nil, err
	}
	forestBlob, err := encodeBlob(s.Forest)
	if err != nil {
		return nil, err
	}
	schemaBlob, err := encodeBlob(schemaPayload{Policy: s.Schema})
	if err != nil {
		return nil, err
	}
	indexBlob, err := encodeBlob(s.DetachedFieldIndex)
	if err != nil {
		return nil, err
	}
	return &fileDocument{
		EditManager:        editManagerSection{Blob: emBlob, Metadata: &editManagerMetadata{Version: currentEditManagerVersion}},
		Forest:             forestBlob,
		Schema:             schemaBlob,
		DetachedFieldIndex: indexBlob,
	}, nil
}

func unmarshalDocument(doc *fileDocument) (*Summary, error) {
	em, err := unmarshalEditManager(doc.EditManager)
	if err != nil {
		return nil, err
	}

	var forestSnap forest.Snapshot
	if err := decodeBlob(doc.Forest, &forestSnap); err != nil {
		return nil, err
	}

	var policy schemaPayload
	if err := decodeBlob(doc.Schema, &policy); err != nil {
		return nil, err
	}

	var indexSnap detachedindex.Snapshot
	if err := decodeBlob(doc.DetachedFieldIndex, &indexSnap); err != nil {
		return nil, err
	}

	return &Summary{
		EditManager:        em,
		Forest:             forestSnap,
		Schema:             policy.Policy,
		DetachedFieldIndex: indexSnap,
	}, nil
}

func unmarshalEditManager(sec editManagerSection) (editmanager.Snapshot, error) {
	if sec.Metadata == nil {
		var legacy legacyEditManagerPayload
		if err := decodeBlob(sec.Blob, &legacy); err != nil {
			return editmanager.Snapshot{}, err
		}
		snap := editmanager.Snapshot{Trunk: legacy.Trunk}
		if n := len(legacy.Trunk); n > 0 {
			snap.LastSeq, snap.LastSeen = legacy.Trunk[n-1].Revision.Seq, true
		}
		return snap, nil
	}
	if sec.Metadata.Version != currentEditManagerVersion {
		return editmanager.Snapshot{}, changeerrors.ErrIncompatibleSchemaVersion
	}
	var payload editManagerPayload
	if err := decodeBlob(sec.Blob, &payload); err != nil {
		return editmanager.Snapshot{}, err
	}
	return editmanager.Snapshot{
		Trunk:    payload.Trunk,
		Local:    payload.Local,
		LastSeq:  payload.LastSeq,
		LastSeen: payload.LastSeen,
	}, nil
}
