package role_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/config"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db"
	rolestore "github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db/controller/role"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db/models"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/hierarchy"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/rolequery"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/roles"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/web/handler"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/web/handler/admin/role"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/web/navigation"
)

type fixture struct {
	app    *fiber.App
	engine *hierarchy.Engine
	nav    *navigation.Registry
}

type response struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func setup(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{
		DB:    config.DB{GormEngine: config.EngineSQLite, Path: ":memory:"},
		Roles: config.Roles{CaseInsensitiveSearch: true, DefaultPageSize: 25, MaxPageSize: 3},
	}

	gdb, err := db.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	engine := hierarchy.New(rolestore.New(gdb))
	nav := navigation.NewRegistry()

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	app.Use(handler.Actor(""))

	svc := &role.Service{}
	require.NoError(t, svc.Init(app, cfg, handler.Deps{
		Engine:     engine,
		Query:      rolequery.New(gdb, engine),
		Navigation: nav,
	}))

	return &fixture{app: app, engine: engine, nav: nav}
}

func (f *fixture) newRole(t *testing.T, name string) *models.RoleRecord {
	t.Helper()

	rec, err := f.engine.CreateRole(context.Background(), roles.NewAttributes(name, name+" role"), nil)
	require.NoError(t, err)

	return rec
}

func (f *fixture) do(t *testing.T, method, path, body string) (int, response) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(handler.DefaultActorHeader, "1")

	resp, err := f.app.Test(req)
	require.NoError(t, err)

	var out response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return resp.StatusCode, out
}

func rolePath(id uint) string {
	return fmt.Sprintf("%s/%d", role.Path, id)
}

func TestInitRegistersNavigation(t *testing.T) {
	f := setup(t)

	entries := f.nav.Entries(navigation.SectionAdmin)
	require.Len(t, entries, 1)
	assert.Equal(t, "Roles", entries[0].Title)
	assert.Equal(t, "/admin/roles", entries[0].Path)
}

func TestCreate(t *testing.T) {
	f := setup(t)
	viewer := f.newRole(t, "Viewer")

	status, out := f.do(t, fiber.MethodPost, role.Path,
		fmt.Sprintf(`{"role_name":"Editor","role_description":"edits","granted_roles_uuids":[%q]}`, viewer.UUID))
	require.Equal(t, fiber.StatusCreated, status, out.Message)

	var rec models.RoleRecord
	require.NoError(t, json.Unmarshal(out.Data, &rec))
	assert.Equal(t, "Editor", rec.Name)
	assert.Equal(t, uint(1), rec.CreatedBy)
	assert.Equal(t, fmt.Sprintf("The role Editor was created with UUID %s.", rec.UUID), out.Message)

	inherits, err := f.engine.TransitiveGrants(context.Background(), roles.ByID(rec.ID))
	require.NoError(t, err)
	assert.Equal(t, []uint{viewer.ID}, inherits)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"name missing", `{"role_description":"x"}`, fiber.StatusBadRequest, "validation"},
		{"empty name", `{"role_name":" "}`, fiber.StatusBadRequest, "validation"},
		{"unknown field", `{"role_name":"Guest","role_is_user":true}`, fiber.StatusBadRequest, "validation"},
		{"broken json", `{"role_name":`, fiber.StatusBadRequest, "validation"},
		{"duplicate name", `{"role_name":"Viewer"}`, fiber.StatusBadRequest, "validation"},
		{"malformed grant", `{"role_name":"Guest","granted_roles_uuids":["abc"]}`, fiber.StatusBadRequest, "validation"},
		{
			"unknown grant",
			`{"role_name":"Guest","granted_roles_uuids":["00000000-0000-4000-8000-000000000000"]}`,
			fiber.StatusNotFound, "not_found",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, out := f.do(t, fiber.MethodPost, role.Path, tc.body)
			assert.Equal(t, tc.wantStatus, status, out.Message)
			assert.Equal(t, tc.wantError, out.Error)
		})
	}

	// failed creates leave nothing behind
	_, err = f.engine.Role(context.Background(), roles.ByName("Guest"))
	assert.ErrorIs(t, err, roles.ErrNotFound)
}

func TestView(t *testing.T) {
	f := setup(t)
	viewer := f.newRole(t, "Viewer")
	editor := f.newRole(t, "Editor")
	require.NoError(t, f.engine.Grant(context.Background(), roles.ByID(editor.ID), roles.ByID(viewer.ID)))

	for _, path := range []string{rolePath(editor.ID), role.Path + "/" + editor.UUID} {
		status, out := f.do(t, fiber.MethodGet, path, "")
		require.Equal(t, fiber.StatusOK, status, path)

		var view struct {
			Name           string   `json:"role_name"`
			UUID           string   `json:"meta_object_uuid"`
			GrantedUUIDs   []string `json:"granted_roles_uuids"`
			Editable       []string `json:"editable_record_properties"`
			InheritedRoles []struct {
				Name string `json:"role_name"`
				UUID string `json:"meta_object_uuid"`
			} `json:"inherited_roles"`
		}
		require.NoError(t, json.Unmarshal(out.Data, &view))

		assert.Equal(t, "Editor", view.Name)
		assert.Equal(t, editor.UUID, view.UUID)
		assert.Equal(t, []string{viewer.UUID}, view.GrantedUUIDs)
		assert.Equal(t, role.EditableRecordProperties, view.Editable)
		require.Len(t, view.InheritedRoles, 1)
		assert.Equal(t, "Viewer", view.InheritedRoles[0].Name)
	}

	status, out := f.do(t, fiber.MethodGet, role.Path+"/abc", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "validation", out.Error)

	status, out = f.do(t, fiber.MethodGet, rolePath(999), "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "not_found", out.Error)
}

func TestUpdate(t *testing.T) {
	f := setup(t)
	viewer := f.newRole(t, "Viewer")
	guest := f.newRole(t, "Guest")
	editor := f.newRole(t, "Editor")
	ctx := context.Background()

	status, out := f.do(t, fiber.MethodPut, rolePath(editor.ID),
		fmt.Sprintf(`{"role_name":"Author","granted_roles_uuids":[%q,%q]}`, viewer.UUID, guest.UUID))
	require.Equal(t, fiber.StatusOK, status, out.Message)
	assert.Equal(t, fmt.Sprintf("The role Author with UUID %s was updated.", editor.UUID), out.Message)

	rec, err := f.engine.Role(ctx, roles.ByID(editor.ID))
	require.NoError(t, err)
	assert.Equal(t, "Author", rec.Name)
	assert.Equal(t, "Editor role", rec.Description)

	inherits, err := f.engine.TransitiveGrants(ctx, roles.ByID(editor.ID))
	require.NoError(t, err)
	assert.Equal(t, []uint{viewer.ID, guest.ID}, inherits)

	// grants untouched when absent
	status, _ = f.do(t, fiber.MethodPut, rolePath(editor.ID), `{"role_description":"writes"}`)
	require.Equal(t, fiber.StatusOK, status)

	inherits, err = f.engine.TransitiveGrants(ctx, roles.ByID(editor.ID))
	require.NoError(t, err)
	assert.Len(t, inherits, 2)

	// an empty list revokes all
	status, _ = f.do(t, fiber.MethodPut, rolePath(editor.ID), `{"granted_roles_uuids":[]}`)
	require.Equal(t, fiber.StatusOK, status)

	inherits, err = f.engine.TransitiveGrants(ctx, roles.ByID(editor.ID))
	require.NoError(t, err)
	assert.Empty(t, inherits)

	// cycle rolls back the rename too
	require.NoError(t, f.engine.Grant(ctx, roles.ByID(viewer.ID), roles.ByID(editor.ID)))

	status, out = f.do(t, fiber.MethodPut, rolePath(editor.ID),
		fmt.Sprintf(`{"role_name":"Writer","granted_roles_uuids":[%q]}`, viewer.UUID))
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "cycle", out.Error)

	rec, err = f.engine.Role(ctx, roles.ByID(editor.ID))
	require.NoError(t, err)
	assert.Equal(t, "Author", rec.Name)
}

func TestRemove(t *testing.T) {
	f := setup(t)
	viewer := f.newRole(t, "Viewer")

	status, out := f.do(t, fiber.MethodDelete, rolePath(viewer.ID), "")
	assert.Equal(t, fiber.StatusNotImplemented, status)
	assert.Equal(t, "not_implemented", out.Error)

	_, err := f.engine.Role(context.Background(), roles.ByID(viewer.ID))
	assert.NoError(t, err)
}

func TestGrantRevoke(t *testing.T) {
	f := setup(t)
	viewer := f.newRole(t, "Viewer")
	editor := f.newRole(t, "Editor")
	admin := f.newRole(t, "Administrator")
	ctx := context.Background()

	grantPath := func(id, target uint) string {
		return fmt.Sprintf("%s/role/%d", rolePath(id), target)
	}

	status, out := f.do(t, fiber.MethodPost, grantPath(editor.ID, viewer.ID), "")
	require.Equal(t, fiber.StatusOK, status, out.Message)
	assert.Equal(t, "The role Editor was granted role Viewer.", out.Message)

	// by uuid, and again to show it is idempotent
	for range 2 {
		status, out = f.do(t, fiber.MethodPost, role.Path+"/"+admin.UUID+"/role/"+editor.UUID, "")
		require.Equal(t, fiber.StatusOK, status, out.Message)
	}

	inherits, err := f.engine.TransitiveGrants(ctx, roles.ByID(admin.ID))
	require.NoError(t, err)
	assert.Equal(t, []uint{viewer.ID, editor.ID}, inherits)

	status, out = f.do(t, fiber.MethodPost, grantPath(viewer.ID, admin.ID), "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "cycle", out.Error)

	status, out = f.do(t, fiber.MethodPost, grantPath(viewer.ID, viewer.ID), "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "cycle", out.Error)

	status, out = f.do(t, fiber.MethodPost, grantPath(viewer.ID, 999), "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "not_found", out.Error)

	status, out = f.do(t, fiber.MethodDelete, grantPath(editor.ID, viewer.ID), "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "The role Editor was revoked role Viewer.", out.Message)

	// revoking an absent grant is fine
	status, _ = f.do(t, fiber.MethodDelete, grantPath(editor.ID, viewer.ID), "")
	assert.Equal(t, fiber.StatusOK, status)

	inherits, err = f.engine.TransitiveGrants(ctx, roles.ByID(admin.ID))
	require.NoError(t, err)
	assert.Equal(t, []uint{editor.ID}, inherits)
}

func TestGrants(t *testing.T) {
	f := setup(t)
	viewer := f.newRole(t, "Viewer")
	editor := f.newRole(t, "Editor")
	admin := f.newRole(t, "Administrator")
	ctx := context.Background()

	require.NoError(t, f.engine.Grant(ctx, roles.ByID(editor.ID), roles.ByID(viewer.ID)))
	require.NoError(t, f.engine.Grant(ctx, roles.ByID(admin.ID), roles.ByID(editor.ID)))

	status, out := f.do(t, fiber.MethodGet, rolePath(editor.ID)+"/grants", "")
	require.Equal(t, fiber.StatusOK, status)

	var view struct {
		RoleID      uint   `json:"role_id"`
		Inherits    []uint `json:"inherits_role_ids"`
		InheritedBy []uint `json:"inherited_by_role_ids"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &view))
	assert.Equal(t, editor.ID, view.RoleID)
	assert.Equal(t, []uint{viewer.ID}, view.Inherits)
	assert.Equal(t, []uint{admin.ID}, view.InheritedBy)

	status, out = f.do(t, fiber.MethodGet, rolePath(viewer.ID)+"/grants", "")
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(out.Data, &view))
	assert.Empty(t, view.Inherits)
	assert.NotNil(t, view.Inherits)
	assert.Equal(t, []uint{editor.ID, admin.ID}, view.InheritedBy)
}
