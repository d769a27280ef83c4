package user

import (
	"slices"
	"strconv"
	"strings"
)

// SortField names a sortable column of User.
type SortField string

const (
	SortByNone      SortField = ""
	SortByID        SortField = "id"
	SortByName      SortField = "name"
	SortByEmail     SortField = "email"
	SortByRole      SortField = "role"
	SortByStatus    SortField = "status"
	SortByCreatedAt SortField = "createdAt"
)

// ParseSortField maps a column name to a SortField. Unknown names yield SortByNone.
func ParseSortField(name string) (SortField, bool) {
	switch f := SortField(name); f {
	case SortByID, SortByName, SortByEmail, SortByRole, SortByStatus, SortByCreatedAt:
		return f, true
	}
	return SortByNone, false
}

// compare orders a and b by the field. Every field compares by its lowercased
// string form, so ids order as text ("10" < "9") and an empty value is the
// smallest one.
func (f SortField) compare(a, b User) int {
	switch f {
	case SortByID:
		return strings.Compare(strconv.FormatInt(a.ID, 10), strconv.FormatInt(b.ID, 10))
	case SortByName:
		return compareFold(a.Name, b.Name)
	case SortByEmail:
		return compareFold(a.Email, b.Email)
	case SortByRole:
		return compareFold(string(a.Role), string(b.Role))
	case SortByStatus:
		return compareFold(string(a.Status), string(b.Status))
	case SortByCreatedAt:
		return compareFold(a.CreatedAt, b.CreatedAt)
	}
	return 0
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder returns SortDesc for "desc" in any case and SortAsc otherwise.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(s, string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// QueryParams describes one read over the record collection.
type QueryParams struct {
	Search    string
	SortBy    SortField
	SortOrder SortOrder
	PageIndex int
	PageSize  int
}

// QueryResult is one page of matching users plus the number of matches.
type QueryResult struct {
	Page  []User
	Total int
}

// Query filters, sorts and paginates all. It never reorders or mutates all and
// accepts any QueryParams: negative page indexes and non-positive page sizes
// fall back to their defaults.
func Query(all []User, p QueryParams) QueryResult {
	if p.PageIndex < 0 {
		p.PageIndex = 0
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}

	matched := filter(all, p.Search)

	if p.SortBy != SortByNone {
		desc := p.SortOrder == SortDesc
		slices.SortStableFunc(matched, func(a, b User) int {
			c := p.SortBy.compare(a, b)
			if desc {
				return -c
			}
			return c
		})
	}

	return QueryResult{
		Page:  Paginate(matched, p.PageIndex, p.PageSize),
		Total: len(matched),
	}
}

// filter returns a fresh slice of the users whose name or email contains search,
// ignoring case. An empty search keeps everyone.
func filter(all []User, search string) []User {
	if search == "" {
		return slices.Clone(all)
	}

	needle := strings.ToLower(search)
	matched := make([]User, 0, len(all))
	for _, u := range all {
		if strings.Contains(strings.ToLower(u.Name), needle) ||
			strings.Contains(strings.ToLower(u.Email), needle) {
			matched = append(matched, u)
		}
	}
	return matched
}
