package domain

import "errors"

// BranchVerdict is the classification of a single tag.
type BranchVerdict int

const (
	// Neutral tags carry no branch signal (topics, unrecognised spellings).
	Neutral BranchVerdict = iota
	// TargetBranch tags name the curated branch (CSE/IT, data science, AI).
	TargetBranch
	// ForeignBranch tags name any other branch and are always stripped.
	ForeignBranch
)

func (v BranchVerdict) String() string {
	switch v {
	case TargetBranch:
		return "target"
	case ForeignBranch:
		return "foreign"
	default:
		return "neutral"
	}
}

// AdmissionVerdict is the keep/discard decision for a whole record.
type AdmissionVerdict int

const (
	Keep AdmissionVerdict = iota
	Discard
)

func (v AdmissionVerdict) String() string {
	if v == Discard {
		return "discard"
	}
	return "keep"
}

// RejectReason explains why the pipeline dropped a record.
type RejectReason string

const (
	ReasonDuplicate      RejectReason = "duplicate_identity"
	ReasonSchemaRejected RejectReason = "schema_rejected"
	ReasonForeignBranch  RejectReason = "foreign_branch"
)

// Sentinel errors matching the reject reasons.
var (
	ErrDuplicateIdentity = errors.New("identity already admitted")
	ErrSchemaRejected    = errors.New("record rejected by schema")
	ErrForeignBranch     = errors.New("record only carries foreign-branch tags")
)

// Err returns the sentinel error for the reason.
func (r RejectReason) Err() error {
	switch r {
	case ReasonDuplicate:
		return ErrDuplicateIdentity
	case ReasonSchemaRejected:
		return ErrSchemaRejected
	case ReasonForeignBranch:
		return ErrForeignBranch
	default:
		return nil
	}
}
