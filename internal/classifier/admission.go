package classifier

import "github.com/superawat/Gate-QA/internal/domain"

// Admit discards records that only carry foreign-branch tags. Records with a
// target-branch tag, or with no branch tag at all, are kept.
func Admit(hasTargetBranchTag, hasForeignBranchTag bool) domain.AdmissionVerdict {
	if hasForeignBranchTag && !hasTargetBranchTag {
		return domain.Discard
	}
	return domain.Keep
}
