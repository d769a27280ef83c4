package user

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(users []User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Name
	}
	return out
}

func ids(users []User) []int64 {
	out := make([]int64, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}

func seedUsers(n int) []User {
	users := make([]User, n)
	for i := range users {
		users[i] = User{
			ID:    int64(i + 1),
			Name:  fmt.Sprintf("User %02d", i+1),
			Email: fmt.Sprintf("user%02d@example.com", i+1),
			Role:  RoleViewer,
		}
	}
	return users
}

func TestQuery_SearchMatchesNameOrEmail(t *testing.T) {
	all := []User{
		{ID: 1, Name: "Alice", Email: "a@x.com"},
		{ID: 2, Name: "bob", Email: "b@x.com"},
	}

	res := Query(all, QueryParams{Search: "a"})

	assert.Equal(t, 2, res.Total)
	assert.Equal(t, []string{"Alice", "bob"}, names(res.Page))
}

func TestQuery_SearchIsCaseInsensitive(t *testing.T) {
	all := []User{
		{ID: 1, Name: "Alice Smith", Email: "alice@example.com"},
		{ID: 2, Name: "Bob", Email: "BOB@EXAMPLE.COM"},
		{ID: 3, Name: "Carol", Email: "carol@test.org"},
	}

	tests := []struct {
		name   string
		search string
		want   []int64
	}{
		{name: "upper search lower name", search: "ALICE", want: []int64{1}},
		{name: "lower search upper email", search: "bob@example", want: []int64{2}},
		{name: "email only match", search: "test.org", want: []int64{3}},
		{name: "substring across word boundary", search: "e sm", want: []int64{1}},
		{name: "no match", search: "zed", want: []int64{}},
		{name: "empty matches all", search: "", want: []int64{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Query(all, QueryParams{Search: tt.search})
			assert.Equal(t, tt.want, ids(res.Page))
			assert.Equal(t, len(tt.want), res.Total)
		})
	}
}

func TestQuery_SecondPageOfFifteen(t *testing.T) {
	all := seedUsers(15)

	res := Query(all, QueryParams{PageIndex: 1, PageSize: 10})

	assert.Equal(t, 15, res.Total)
	assert.Equal(t, []int64{11, 12, 13, 14, 15}, ids(res.Page))
}

func TestQuery_OutOfRangePageIsEmpty(t *testing.T) {
	all := seedUsers(15)

	for _, pageIndex := range []int{2, 3, 1 << 40} {
		res := Query(all, QueryParams{PageIndex: pageIndex, PageSize: 10})
		assert.NotNil(t, res.Page)
		assert.Empty(t, res.Page)
		assert.Equal(t, 15, res.Total)
	}
}

func TestQuery_TotalIndependentOfPagination(t *testing.T) {
	all := seedUsers(23)

	for _, size := range []int{1, 3, 10, 50} {
		for index := 0; index < 5; index++ {
			res := Query(all, QueryParams{Search: "user 1", PageIndex: index, PageSize: size})
			assert.Equal(t, 10, res.Total, "size=%d index=%d", size, index)
			assert.LessOrEqual(t, len(res.Page), size)
			if index*size >= res.Total {
				assert.Empty(t, res.Page)
			}
		}
	}
}

func TestQuery_DefaultsInvalidPaging(t *testing.T) {
	all := seedUsers(12)

	res := Query(all, QueryParams{PageIndex: -3, PageSize: 0})

	assert.Equal(t, 12, res.Total)
	assert.Len(t, res.Page, DefaultPageSize)
	assert.Equal(t, int64(1), res.Page[0].ID)
}

func TestQuery_SortNameDescendingIgnoresCase(t *testing.T) {
	all := []User{
		{ID: 1, Name: "Bob"},
		{ID: 2, Name: "alice"},
		{ID: 3, Name: "Carol"},
	}

	res := Query(all, QueryParams{SortBy: SortByName, SortOrder: SortDesc})

	assert.Equal(t, []string{"Carol", "Bob", "alice"}, names(res.Page))
}

func TestQuery_SortAscendingByEachField(t *testing.T) {
	all := []User{
		{ID: 10, Name: "b", Email: "C@x", Role: RoleViewer, Status: StatusInactive, CreatedAt: "2024-03-01T00:00:00.000Z"},
		{ID: 9, Name: "C", Email: "a@x", Role: RoleAdmin, Status: StatusActive, CreatedAt: "2024-01-01T00:00:00.000Z"},
		{ID: 11, Name: "a", Email: "b@x", Role: RoleEditor, Status: StatusActive, CreatedAt: "2024-02-01T00:00:00.000Z"},
	}

	tests := []struct {
		field SortField
		want  []int64
	}{
		{SortByID, []int64{10, 11, 9}},
		{SortByName, []int64{11, 10, 9}},
		{SortByEmail, []int64{9, 11, 10}},
		{SortByRole, []int64{9, 11, 10}},
		{SortByStatus, []int64{9, 11, 10}},
		{SortByCreatedAt, []int64{9, 11, 10}},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			res := Query(all, QueryParams{SortBy: tt.field, SortOrder: SortAsc})
			assert.Equal(t, tt.want, ids(res.Page))
		})
	}
}

func TestQuery_IDSortsAsText(t *testing.T) {
	all := []User{{ID: 9}, {ID: 10}, {ID: 100}}

	asc := Query(all, QueryParams{SortBy: SortByID, SortOrder: SortAsc})
	desc := Query(all, QueryParams{SortBy: SortByID, SortOrder: SortDesc})

	assert.Equal(t, []int64{10, 100, 9}, ids(asc.Page))
	assert.Equal(t, []int64{9, 100, 10}, ids(desc.Page))
}

func TestQuery_EmptyValueSortsFirstAscendingLastDescending(t *testing.T) {
	all := []User{
		{ID: 1, Name: "bob", Email: "b@x"},
		{ID: 2, Name: "ann", Email: ""},
		{ID: 3, Name: "cid", Email: "a@x"},
	}

	asc := Query(all, QueryParams{SortBy: SortByEmail, SortOrder: SortAsc})
	desc := Query(all, QueryParams{SortBy: SortByEmail, SortOrder: SortDesc})

	assert.Equal(t, []int64{2, 3, 1}, ids(asc.Page))
	assert.Equal(t, []int64{1, 3, 2}, ids(desc.Page))
}

func TestQuery_SortIsStableForTiesInBothDirections(t *testing.T) {
	all := []User{
		{ID: 1, Name: "x", Role: RoleViewer},
		{ID: 2, Name: "y", Role: RoleAdmin},
		{ID: 3, Name: "z", Role: RoleViewer},
		{ID: 4, Name: "w", Role: RoleAdmin},
	}

	asc := Query(all, QueryParams{SortBy: SortByRole, SortOrder: SortAsc})
	desc := Query(all, QueryParams{SortBy: SortByRole, SortOrder: SortDesc})

	assert.Equal(t, []int64{2, 4, 1, 3}, ids(asc.Page))
	assert.Equal(t, []int64{1, 3, 2, 4}, ids(desc.Page))
}

func TestQuery_SortIsIdempotent(t *testing.T) {
	all := []User{
		{ID: 1, Name: "delta"}, {ID: 2, Name: "Alpha"}, {ID: 3, Name: "charlie"}, {ID: 4, Name: "alpha"},
	}
	params := QueryParams{SortBy: SortByName, SortOrder: SortDesc, PageSize: 10}

	once := Query(all, params)
	twice := Query(once.Page, params)

	assert.Equal(t, once.Page, twice.Page)
}

func TestQuery_SortsOnlyFilteredSet(t *testing.T) {
	all := []User{
		{ID: 1, Name: "zed", Email: "z@keep.io"},
		{ID: 2, Name: "amy", Email: "a@drop.io"},
		{ID: 3, Name: "bea", Email: "b@keep.io"},
	}

	res := Query(all, QueryParams{Search: "keep", SortBy: SortByName})

	assert.Equal(t, 2, res.Total)
	assert.Equal(t, []int64{3, 1}, ids(res.Page))
}

func TestQuery_NoSortPreservesInputOrder(t *testing.T) {
	all := []User{{ID: 3, Name: "c"}, {ID: 1, Name: "a"}, {ID: 2, Name: "b"}}

	res := Query(all, QueryParams{})

	assert.Equal(t, []int64{3, 1, 2}, ids(res.Page))
}

func TestQuery_DoesNotMutateInput(t *testing.T) {
	all := []User{{ID: 3, Name: "c"}, {ID: 1, Name: "a"}, {ID: 2, Name: "b"}}

	res := Query(all, QueryParams{SortBy: SortByName})
	require.Len(t, res.Page, 3)
	res.Page[0].Name = "changed"

	assert.Equal(t, []int64{3, 1, 2}, ids(all))
	assert.Equal(t, "a", all[1].Name)
}

func TestParseSortField(t *testing.T) {
	for _, name := range []string{"id", "name", "email", "role", "status", "createdAt"} {
		f, ok := ParseSortField(name)
		assert.True(t, ok, name)
		assert.Equal(t, SortField(name), f)
	}

	for _, name := range []string{"", "Name", "password", "created_at"} {
		f, ok := ParseSortField(name)
		assert.False(t, ok, name)
		assert.Equal(t, SortByNone, f)
	}
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, SortDesc, ParseSortOrder("desc"))
	assert.Equal(t, SortDesc, ParseSortOrder("DESC"))
	// "ASC" is ascending too: only a case-insensitive "desc" flips the order.
	assert.Equal(t, SortAsc, ParseSortOrder("asc"))
	assert.Equal(t, SortAsc, ParseSortOrder("ASC"))
	assert.Equal(t, SortAsc, ParseSortOrder(""))
	assert.Equal(t, SortAsc, ParseSortOrder("sideways"))
}
