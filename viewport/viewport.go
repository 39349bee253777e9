// SPDX-License-Identifier: Unlicense OR MIT

// Package viewport defines the identity and desired state of logical
// windows. A viewport is one independently addressable UI window,
// optionally parented to another viewport. The shell reconciles the
// set of declared viewports against live OS windows every frame.
package viewport

import "hash/fnv"

// ID identifies one logical window. IDs are derived from stable
// labels so the same label names the same viewport across frames.
type ID uint64

// NewID derives an ID from a label.
func NewID(label string) ID {
	h := fnv.New64a()
	h.Write([]byte(label))
	return ID(h.Sum64())
}

// MainID is the reserved ID of the main viewport. The main viewport
// exists for the entire running lifetime of the application; closing
// it shuts the application down.
var MainID = NewID("main")

// IDPair links a viewport to its parent. Parent links form a forest
// rooted at the main viewport; the main viewport is its own parent.
type IDPair struct {
	This   ID
	Parent ID
}

// MainPair is the pair of the main viewport.
var MainPair = IDPair{This: MainID, Parent: MainID}

// NewPair returns a pair for a child viewport.
func NewPair(this, parent ID) IDPair {
	return IDPair{This: this, Parent: parent}
}

// IsMain reports whether the pair names the main viewport.
func (p IDPair) IsMain() bool {
	return p.This == MainID
}
