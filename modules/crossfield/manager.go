// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package crossfield implements the per-operation coordinator that lets
// one field's algebra hand a child-change or rename to another field's
// algebra within the same outer compose/invert/rebase (spec §4.E). A
// single compose or rebase of a modular changeset is a two-pass
// algorithm: pass one runs every field algebra, writing messages here
// keyed by CAI; pass two lets each field consume the messages addressed
// to it.
//
// The message box itself is complete; no field-kind algebra calls
// Send/Consume/Peek yet, since that requires turning
// changeset.Engine's current one-pass per-field dispatch into the
// two-pass algorithm above. A Manager is still threaded through every
// algebra's Compose/Invert/Rebase so that wiring doesn't need a
// separate signature change later.
package crossfield

import "github.com/antgroup/hugetree/modules/tagging"

// MessageKind distinguishes the seven message shapes spec §4.E lists.
type MessageKind int

const (
	NewChangesForBaseAttach MessageKind = iota
	RebaseOverDetach
	ComposeAttachDetach
	ComposeDetachAttach
	SendNewChangesToBaseSourceLocation
	InvertDetach
	InvertAttach
)

// Message is one cross-field note, addressed by the CAI of the location
// (attach slot or detached id) it concerns. Payload is opaque to the
// manager — it's whatever the sending field-kind algebra and the
// receiving one have agreed to exchange (typically a *nodechange.NodeChangeset
// or a rename target).
type Message struct {
	Kind    MessageKind
	CAI     tagging.CAI
	Payload any
}

// Manager is the map keyed by CAI that collects first-pass messages for
// second-pass consumption. It is scoped to a single compose/invert/rebase
// call; callers construct a fresh Manager per outer operation.
type Manager struct {
	byCAI map[tagging.CAI][]Message
	read  map[tagging.CAI]map[int]bool // tracks which indices have been Consumed, for idempotent re-reads
}

func New() *Manager {
	return &Manager{
		byCAI: make(map[tagging.CAI][]Message),
		read:  make(map[tagging.CAI]map[int]bool),
	}
}

// Send records a message for later pickup by whichever field owns CAI.
func (m *Manager) Send(msg Message) {
	m.byCAI[msg.CAI] = append(m.byCAI[msg.CAI], msg)
}

// Peek returns every message addressed to cai without marking them read.
func (m *Manager) Peek(cai tagging.CAI) []Message {
	return m.byCAI[cai]
}

// Consume returns every unread message addressed to cai of the given kind
// and marks them read so a second call returns nothing new. Messages of
// other kinds addressed to the same CAI are left for their own consumers.
func (m *Manager) Consume(cai tagging.CAI, kind MessageKind) []Message {
	all := m.byCAI[cai]
	if len(all) == 0 {
		return nil
	}
	readSet := m.read[cai]
	if readSet == nil {
		readSet = make(map[int]bool)
		m.read[cai] = readSet
	}
	var out []Message
	for i, msg := range all {
		if msg.Kind != kind || readSet[i] {
			continue
		}
		readSet[i] = true
		out = append(out, msg)
	}
	return out
}
