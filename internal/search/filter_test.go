package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"path2prevention/internal/model"
)

func TestSelectBranchPriority(t *testing.T) {
	cases := []struct {
		name   string
		filter Filter
		want   Branch
	}{
		{"nothing", Filter{}, BranchAll},
		{"zip only", Filter{ZipCode: "30309"}, BranchZip},
		{"city only", Filter{City: "Atlanta"}, BranchCity},
		{"city beats zip", Filter{City: "Atlanta", ZipCode: "30309"}, BranchCity},
		{"state only", Filter{State: "GA"}, BranchState},
		{"state beats zip", Filter{State: "GA", ZipCode: "30309"}, BranchState},
		{"state and city", Filter{State: "GA", City: "Atlanta"}, BranchStateCity},
		{"all three", Filter{State: "GA", City: "Atlanta", ZipCode: "30309"}, BranchStateCityZip},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SelectBranch(tc.filter))
			assert.Equal(t, tc.want, SelectBranch(tc.filter), "same input must select the same branch")
		})
	}
}

func TestMatchesLocationCityIsCaseInsensitiveSubstring(t *testing.T) {
	row := model.ProgramRow{City: "Atlanta", State: "GA", ZipCode: "30309"}

	assert.True(t, MatchesLocation(row, Filter{City: "atlanta"}))
	assert.True(t, MatchesLocation(row, Filter{City: "LANT"}))
	assert.False(t, MatchesLocation(row, Filter{City: "Savannah"}))
}

func TestMatchesLocationStateAndZipAreExact(t *testing.T) {
	row := model.ProgramRow{City: "Atlanta", State: "GA", ZipCode: "30309"}

	assert.True(t, MatchesLocation(row, Filter{State: "ga"}), "state is upper-cased before comparing")
	assert.False(t, MatchesLocation(row, Filter{State: "G"}))
	assert.True(t, MatchesLocation(row, Filter{ZipCode: "30309"}))
	assert.False(t, MatchesLocation(row, Filter{ZipCode: "3030"}))
	assert.False(t, MatchesLocation(row, Filter{State: "GA", City: "Atlanta", ZipCode: "31401"}))
}

func TestNormalizeDeliveryMode(t *testing.T) {
	virtual := []string{model.DeliveryVirtualLive, model.DeliveryVirtualSelfPaced}

	assert.Equal(t, virtual, NormalizeDeliveryMode("virtual"))
	assert.Equal(t, virtual, NormalizeDeliveryMode("Remote"))
	assert.Equal(t, virtual, NormalizeDeliveryMode(" online "))
	assert.Equal(t, []string{model.DeliveryInPerson}, NormalizeDeliveryMode("in person"))
	assert.Equal(t, []string{model.DeliveryInPerson}, NormalizeDeliveryMode("In-Person"))
	assert.Equal(t, []string{model.DeliveryHybrid}, NormalizeDeliveryMode("hybrid"))
	assert.Equal(t, []string{model.DeliveryVirtualSelfPaced}, NormalizeDeliveryMode("virtual-self-paced"))
	assert.Equal(t, []string{"carrier pigeon"}, NormalizeDeliveryMode("Carrier Pigeon"))
	assert.Nil(t, NormalizeDeliveryMode("  "))
}

func TestFilterFallbackByState(t *testing.T) {
	rows := FilterFallback(Filter{State: "GA"})

	require.Len(t, rows, 3)
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		assert.Equal(t, "GA", r.State)
		names = append(names, r.OrganizationName)
	}
	assert.Equal(t, []string{
		"Atlanta Diabetes Prevention Center",
		"Community Wellness Network",
		"Virtual Health Solutions",
	}, names)
}

func TestFilterFallbackByDeliveryMode(t *testing.T) {
	rows := FilterFallback(Filter{DeliveryMode: "online"})

	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Contains(t, []string{model.DeliveryVirtualLive, model.DeliveryVirtualSelfPaced}, r.DeliveryMode)
	}
	assert.Empty(t, FilterFallback(Filter{DeliveryMode: "carrier pigeon"}))
}

func TestFallbackCopiesAreIndependent(t *testing.T) {
	rows := FallbackPrograms()
	rows[0].OrganizationName = "mutated"

	assert.NotEqual(t, "mutated", FallbackPrograms()[0].OrganizationName)
}

func TestFallbackLookups(t *testing.T) {
	row, ok := FallbackByID(3)
	require.True(t, ok)
	assert.Equal(t, "Community Wellness Network", row.OrganizationName)

	_, ok = FallbackByID(99)
	assert.False(t, ok)

	byName := FallbackByName("health")
	require.Len(t, byName, 2)
	assert.Equal(t, "Flexible Learning Health", byName[0].OrganizationName)
}
