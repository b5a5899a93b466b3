package rolequery_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/config"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db"
	rolestore "github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db/controller/role"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db/models"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/hierarchy"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/rolequery"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/roles"
)

type fixture struct {
	svc   *rolequery.Service
	roles map[string]*models.RoleRecord
}

// newFixture builds sysadmin -> Administrator -> Editor -> Viewer, a lone Guest,
// a role with LIKE wildcards in its name and a user role.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()

	gdb, err := db.Open(&config.Config{DB: config.DB{GormEngine: config.EngineSQLite, Path: ":memory:"}})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	store := rolestore.New(gdb)
	engine := hierarchy.New(store)

	f := &fixture{
		svc:   rolequery.New(gdb, engine, rolequery.WithCaseInsensitive(true)),
		roles: map[string]*models.RoleRecord{},
	}

	for _, name := range []string{"Viewer", "Editor", "Administrator", "sysadmin", "Guest", "50%_off"} {
		rec, err := engine.CreateRole(ctx, roles.NewAttributes(name, name+" description"), nil)
		require.NoError(t, err)

		f.roles[name] = rec
	}

	user, err := store.CreateRole(ctx, &models.Role{Name: "admin_user", IsUserRole: true})
	require.NoError(t, err)

	f.roles["admin_user"] = user

	for _, edge := range [][2]string{
		{"Editor", "Viewer"},
		{"Administrator", "Editor"},
		{"sysadmin", "Administrator"},
		{"admin_user", "Editor"},
	} {
		require.NoError(t, engine.Grant(ctx, roles.ByName(edge[0]), roles.ByName(edge[1])))
	}

	return f
}

func itemNames(p *rolequery.Page) []string {
	out := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, it.Name)
	}

	return out
}

func TestSearchFilters(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		filter rolequery.Filter
		want   []string
	}{
		{
			name: "no filter lists system roles only",
			want: []string{"50%_off", "Administrator", "Editor", "Guest", "Viewer", "sysadmin"},
		},
		{
			name:   "name substring",
			filter: rolequery.Filter{Name: ptr("adm")},
			want:   []string{"Administrator", "sysadmin"},
		},
		{
			name:   "name substring ignores case",
			filter: rolequery.Filter{Name: ptr("ADM")},
			want:   []string{"Administrator", "sysadmin"},
		},
		{
			name:   "percent is matched literally",
			filter: rolequery.Filter{Name: ptr("%")},
			want:   []string{"50%_off"},
		},
		{
			name:   "underscore is matched literally",
			filter: rolequery.Filter{Name: ptr("_")},
			want:   []string{"50%_off"},
		},
		{
			name:   "description substring",
			filter: rolequery.Filter{Description: ptr("guest desc")},
			want:   []string{"Guest"},
		},
		{
			name:   "exact id",
			filter: rolequery.Filter{RoleID: ptr(f.roles["Editor"].ID)},
			want:   []string{"Editor"},
		},
		{
			name:   "user role id is not listed",
			filter: rolequery.Filter{RoleID: ptr(f.roles["admin_user"].ID)},
			want:   []string{},
		},
		{
			name:   "uuid substring",
			filter: rolequery.Filter{UUID: ptr(f.roles["Guest"].UUID[:13])},
			want:   []string{"Guest"},
		},
		{
			name:   "inherits by name includes the named role",
			filter: rolequery.Filter{Inherits: []roles.Ref{roles.ByName("Editor")}},
			want:   []string{"Administrator", "Editor", "sysadmin"},
		},
		{
			name:   "inherits by uuid",
			filter: rolequery.Filter{Inherits: []roles.Ref{roles.ByUUID(f.roles["Viewer"].UUID)}},
			want:   []string{"Administrator", "Editor", "Viewer", "sysadmin"},
		},
		{
			name: "inherits combined with a substring",
			filter: rolequery.Filter{
				Inherits: []roles.Ref{roles.ByName("Viewer")},
				Name:     ptr("adm"),
			},
			want: []string{"Administrator", "sysadmin"},
		},
		{
			name:   "granted is a direct grant only",
			filter: rolequery.Filter{Granted: []roles.Ref{roles.ByName("Editor")}},
			want:   []string{"Administrator"},
		},
		{
			name:   "nothing matches",
			filter: rolequery.Filter{Name: ptr("nobody")},
			want:   []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page, err := f.svc.Search(context.Background(), rolequery.Params{Filter: tc.filter})
			require.NoError(t, err)

			assert.Equal(t, tc.want, itemNames(page))
			assert.Equal(t, int64(len(tc.want)), page.TotalItems)
		})
	}
}

func TestSearchUnknownNamedRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Search(context.Background(), rolequery.Params{
		Filter: rolequery.Filter{Inherits: []roles.Ref{roles.ByName("Nobody")}},
	})
	require.ErrorIs(t, err, roles.ErrNotFound)

	_, err = f.svc.Search(context.Background(), rolequery.Params{
		Filter: rolequery.Filter{Granted: []roles.Ref{roles.ByName("Nobody")}},
	})
	require.ErrorIs(t, err, roles.ErrNotFound)
}

func TestSearchSortAndPaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.svc.Search(ctx, rolequery.Params{SortBy: "role_name", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"sysadmin", "Viewer", "Guest", "Editor", "Administrator", "50%_off"}, itemNames(page))

	page, err = f.svc.Search(ctx, rolequery.Params{SortBy: "role_id", Offset: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Editor", "Administrator"}, itemNames(page))
	assert.Equal(t, int64(6), page.TotalItems, "the total ignores paging")

	page, err = f.svc.Search(ctx, rolequery.Params{SortBy: "role_id", Offset: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"Guest", "50%_off"}, itemNames(page))

	page, err = f.svc.Search(ctx, rolequery.Params{
		Filter: rolequery.Filter{Inherits: []roles.Ref{roles.ByName("Editor")}},
		Limit:  1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Administrator"}, itemNames(page))
	assert.Equal(t, int64(3), page.TotalItems, "the total counts after the transitive filter")

	page, err = f.svc.Search(ctx, rolequery.Params{SortBy: "created_at"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 6)

	_, err = f.svc.Search(ctx, rolequery.Params{SortBy: "role_color"})
	require.ErrorIs(t, err, roles.ErrInvalidFilter)

	_, err = f.svc.Search(ctx, rolequery.Params{Limit: -1})
	require.ErrorIs(t, err, roles.ErrInvalidFilter)
}

func TestSearchDirectGrants(t *testing.T) {
	f := newFixture(t)

	page, err := f.svc.Search(context.Background(), rolequery.Params{
		Filter: rolequery.Filter{Inherits: []roles.Ref{roles.ByName("Viewer")}},
	})
	require.NoError(t, err)

	byName := map[string]rolequery.Item{}
	for _, it := range page.Items {
		byName[it.Name] = it
	}

	admin := byName["Administrator"]
	assert.Equal(t, []uint{f.roles["Editor"].ID}, admin.GrantedRoleIDs)
	assert.Equal(t, []string{"Editor"}, admin.GrantedRoleNames)
	assert.Equal(t, []string{f.roles["Editor"].UUID}, admin.GrantedRoleUUIDs)

	viewer := byName["Viewer"]
	assert.Empty(t, viewer.GrantedRoleIDs)
	assert.NotNil(t, viewer.GrantedRoleNames, "empty grants serialise as []")
	assert.Equal(t, "Viewer description", viewer.Description)
}

func TestSortFields(t *testing.T) {
	assert.Contains(t, rolequery.SortFields(), rolequery.DefaultSort)
	assert.Contains(t, rolequery.SortFields(), "meta_object_uuid")
}
