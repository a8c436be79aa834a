package schedule_test

import (
	"testing"

	"github.com/jrsteele09/go-course-client/catalog"
	"github.com/jrsteele09/go-course-client/schedule"
	"github.com/stretchr/testify/require"
)

func TestEnrollable(t *testing.T) {
	idx := schedule.NewTermIndex([]catalog.Term{
		{ID: "1", Code: "FALL24", Status: "OPEN"},
		{ID: "2", Code: "SPRING24", Status: "COMPLETED"},
		{ID: "3", Code: "FALL23", Status: "archived"},
	})

	tests := []struct {
		name     string
		offering catalog.Offering
		want     bool
	}{
		{"open in active term by id", catalog.Offering{Status: "OPEN", Term: catalog.TermRef{ID: "1"}}, true},
		{"enrolling by code", catalog.Offering{Status: "enrolling", Term: catalog.TermRef{Code: "fall24"}}, true},
		{"in progress, unknown term", catalog.Offering{Status: "IN_PROGRESS", Term: catalog.TermRef{ID: "99"}}, true},
		{"completed term", catalog.Offering{Status: "OPEN", Term: catalog.TermRef{ID: "2"}}, false},
		{"archived term by code", catalog.Offering{Status: "OPEN", Term: catalog.TermRef{Code: "FALL23"}}, false},
		{"status on offering wins", catalog.Offering{Status: "OPEN", Term: catalog.TermRef{ID: "2", Status: "OPEN"}}, true},
		{"closed offering", catalog.Offering{Status: "CLOSED", Term: catalog.TermRef{ID: "1"}}, false},
		{"no offering status", catalog.Offering{Term: catalog.TermRef{ID: "1"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, schedule.Enrollable(tt.offering, idx))
		})
	}
}

func TestResolveTermStatus(t *testing.T) {
	idx := schedule.NewTermIndex([]catalog.Term{{ID: "1", Code: "FALL24", Status: "OPEN"}})

	require.Equal(t, "OPEN", schedule.ResolveTermStatus(catalog.Offering{Term: catalog.TermRef{ID: "1"}}, idx))
	require.Equal(t, "OPEN", schedule.ResolveTermStatus(catalog.Offering{Term: catalog.TermRef{ID: "7", Code: "Fall24"}}, idx))
	require.Equal(t, "", schedule.ResolveTermStatus(catalog.Offering{}, idx))
	require.True(t, schedule.TermActive(""))
	require.False(t, schedule.OfferingOpen(""))
}
