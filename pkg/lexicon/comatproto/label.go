// Package comatproto implements the com.atproto.* lexicons used by skylex:
// account and email management, handle resolution, blob upload and repo export.
package comatproto

// LabelDefs_Label is a com.atproto.label.defs#label attached to views.
type LabelDefs_Label struct {
	Src string `json:"src"`
	URI string `json:"uri"`
	Cid string `json:"cid,omitempty"`
	Val string `json:"val"`
	Neg bool   `json:"neg,omitempty"`
	Cts string `json:"cts"`
	Exp string `json:"exp,omitempty"`
}
