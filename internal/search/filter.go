package search

import (
	"strings"

	"path2prevention/internal/model"
)

// Filter is the user-facing location / delivery-mode query. Radius is echoed
// back to clients but never applied.
type Filter struct {
	ZipCode      string
	State        string
	City         string
	Radius       int
	DeliveryMode string
}

// Branch names which location predicate a filter resolves to.
type Branch int

const (
	BranchAll Branch = iota
	BranchZip
	BranchCity
	BranchState
	BranchStateCity
	BranchStateCityZip
)

func (b Branch) String() string {
	switch b {
	case BranchZip:
		return "zip"
	case BranchCity:
		return "city"
	case BranchState:
		return "state"
	case BranchStateCity:
		return "state+city"
	case BranchStateCityZip:
		return "state+city+zip"
	default:
		return "all"
	}
}

// Normalize trims every field and upper-cases the state code.
func (f Filter) Normalize() Filter {
	return Filter{
		ZipCode:      strings.TrimSpace(f.ZipCode),
		State:        strings.ToUpper(strings.TrimSpace(f.State)),
		City:         strings.TrimSpace(f.City),
		Radius:       f.Radius,
		DeliveryMode: strings.TrimSpace(f.DeliveryMode),
	}
}

func (f Filter) HasLocation() bool {
	return f.ZipCode != "" || f.State != "" || f.City != ""
}

// SelectBranch picks exactly one predicate by priority:
// zip+state+city > state+city > state > city > zip > all.
func SelectBranch(f Filter) Branch {
	hasZip, hasState, hasCity := f.ZipCode != "", f.State != "", f.City != ""
	switch {
	case hasZip && hasState && hasCity:
		return BranchStateCityZip
	case hasState && hasCity:
		return BranchStateCity
	case hasState:
		return BranchState
	case hasCity:
		return BranchCity
	case hasZip:
		return BranchZip
	default:
		return BranchAll
	}
}

// MatchesLocation evaluates the selected branch in memory with the same
// semantics as the SQL: exact state, case-insensitive city substring, exact zip.
func MatchesLocation(row model.ProgramRow, f Filter) bool {
	f = f.Normalize()
	stateOK := strings.ToUpper(row.State) == f.State
	cityOK := strings.Contains(strings.ToLower(row.City), strings.ToLower(f.City))
	zipOK := row.ZipCode == f.ZipCode

	switch SelectBranch(f) {
	case BranchStateCityZip:
		return stateOK && cityOK && zipOK
	case BranchStateCity:
		return stateOK && cityOK
	case BranchState:
		return stateOK
	case BranchCity:
		return cityOK
	case BranchZip:
		return zipOK
	default:
		return true
	}
}
