package schedule

import (
	"strings"

	"github.com/jrsteele09/go-course-client/catalog"
)

var (
	closedTermStatuses   = []string{"COMPLETED", "ARCHIVED"}
	openOfferingStatuses = []string{"OPEN", "ENROLLING", "IN_PROGRESS"}
)

// TermIndex finds terms by id or by upper-cased code.
type TermIndex struct {
	byID   map[catalog.ID]catalog.Term
	byCode map[string]catalog.Term
}

func NewTermIndex(terms []catalog.Term) TermIndex {
	idx := TermIndex{
		byID:   make(map[catalog.ID]catalog.Term, len(terms)),
		byCode: make(map[string]catalog.Term, len(terms)),
	}
	for _, t := range terms {
		if !t.ID.Empty() {
			idx.byID[t.ID] = t
		}
		if t.Code != "" {
			idx.byCode[strings.ToUpper(t.Code)] = t
		}
	}
	return idx
}

func (idx TermIndex) Lookup(ref catalog.TermRef) (catalog.Term, bool) {
	if !ref.ID.Empty() {
		if t, ok := idx.byID[ref.ID]; ok {
			return t, true
		}
	}
	if ref.Code != "" {
		if t, ok := idx.byCode[strings.ToUpper(ref.Code)]; ok {
			return t, true
		}
	}
	return catalog.Term{}, false
}

// ResolveTermStatus prefers the status carried on the offering and falls back
// to the indexed term. An unknown status is "".
func ResolveTermStatus(o catalog.Offering, idx TermIndex) string {
	if o.Term.Status != "" {
		return o.Term.Status
	}
	if t, ok := idx.Lookup(o.Term); ok {
		return t.Status
	}
	return ""
}

// TermActive is false only for completed and archived terms; an unknown
// status counts as active.
func TermActive(status string) bool {
	return !containsFold(closedTermStatuses, status)
}

func OfferingOpen(status string) bool {
	return containsFold(openOfferingStatuses, status)
}

// Enrollable is the eligibility gate evaluated before any conflict check.
func Enrollable(o catalog.Offering, idx TermIndex) bool {
	return TermActive(ResolveTermStatus(o, idx)) && OfferingOpen(o.Status)
}

func containsFold(values []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
