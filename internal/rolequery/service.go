// Package rolequery implements the filtered, sorted and paginated listing of system roles.
package rolequery

import (
	"context"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	rolestore "github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db/controller/role"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db/models"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/roles"
)

// DefaultSort is used when Params.SortBy is empty.
const DefaultSort = "role_name"

const likeEscape = "!"

var (
	sortColumns = map[string]string{ //nolint:gochecknoglobals
		"role_id":                      "roles.role_id",
		"role_name":                    "roles.role_name",
		"role_description":             "roles.role_description",
		"role_uuid":                    "meta.meta_object_uuid",
		"meta_object_uuid":             "meta.meta_object_uuid",
		"created_at":                   "meta.meta_object_create_time",
		"meta_object_create_time":      "meta.meta_object_create_time",
		"updated_at":                   "meta.meta_object_last_update_time",
		"meta_object_last_update_time": "meta.meta_object_last_update_time",
	}

	likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_") //nolint:gochecknoglobals
)

// Hierarchy resolves roles and their grantees. *hierarchy.Engine implements it.
type Hierarchy interface {
	Role(ctx context.Context, ref roles.Ref) (*models.RoleRecord, error)
	TransitiveGrantees(ctx context.Context, ref roles.Ref) ([]uint, error)
}

// Params describes one page of a search.
type Params struct {
	Filter Filter
	Offset int
	// Limit is the page size, 0 means no limit.
	Limit int
	// SortBy is one of the sortable fields, DefaultSort when empty.
	SortBy string
	Desc   bool
}

// Item is a listed role with its direct grants.
type Item struct {
	models.RoleRecord
	GrantedRoleIDs   []uint   `json:"granted_roles_ids"`
	GrantedRoleNames []string `json:"granted_roles_names"`
	GrantedRoleUUIDs []string `json:"granted_roles_uuids"`
}

// Page is the result of a search.
type Page struct {
	Items []Item `json:"items"`
	// TotalItems counts every role matching the filter, ignoring offset and limit.
	TotalItems int64 `json:"totalItems"`
}

// Service runs role searches.
type Service struct {
	db              *gorm.DB
	hierarchy       Hierarchy
	caseInsensitive bool
}

// Option configures a Service.
type Option func(*Service)

// WithCaseInsensitive compares substring filters on lower cased values.
func WithCaseInsensitive(enabled bool) Option {
	return func(s *Service) {
		s.caseInsensitive = enabled
	}
}

// New creates a query service.
func New(db *gorm.DB, h Hierarchy, opts ...Option) *Service {
	if db == nil {
		panic(rolestore.ErrDBNil)
	}

	s := &Service{db: db, hierarchy: h, caseInsensitive: true}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SortFields returns the accepted values of Params.SortBy.
func SortFields() []string {
	out := make([]string, 0, len(sortColumns))
	for k := range sortColumns {
		out = append(out, k)
	}

	return out
}

// Search returns one page of system roles matching p.Filter.
func (s *Service) Search(ctx context.Context, p Params) (*Page, error) {
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = DefaultSort
	}

	column, ok := sortColumns[sortBy]
	if !ok {
		return nil, errors.Wrapf(roles.ErrInvalidFilter, "unknown sort field %q", sortBy)
	}

	if p.Offset < 0 || p.Limit < 0 {
		return nil, errors.Wrap(roles.ErrInvalidFilter, "offset and limit can not be negative")
	}

	scope, err := s.scope(ctx, p.Filter)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var total int64
	if err = rolestore.Joined(db).Scopes(scope).Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count roles")
	}

	page := &Page{Items: []Item{}, TotalItems: total}
	if total == 0 {
		return page, nil
	}

	dir := " ASC"
	if p.Desc {
		dir = " DESC"
	}

	q := rolestore.Records(db).Scopes(scope).Order(column + dir)
	if column != sortColumns["role_id"] {
		q = q.Order("roles.role_id ASC")
	}

	switch {
	case p.Limit > 0:
		q = q.Limit(p.Limit)
	case p.Offset > 0:
		// an OFFSET needs a LIMIT on sqlite and mysql
		q = q.Limit(math.MaxInt32)
	}

	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}

	var records []models.RoleRecord
	if err = q.Scan(&records).Error; err != nil {
		return nil, errors.Wrap(err, "list roles")
	}

	if page.Items, err = s.withGrants(ctx, records); err != nil {
		return nil, err
	}

	return page, nil
}

// scope turns f into query conditions. Role references are resolved up front, so an
// unknown role fails before anything is counted.
func (s *Service) scope(ctx context.Context, f Filter) (func(*gorm.DB) *gorm.DB, error) {
	type cond struct {
		query string
		args  []any
	}

	conds := []cond{{query: "roles.role_is_user = ?", args: []any{false}}}

	if f.RoleID != nil {
		conds = append(conds, cond{"roles.role_id = ?", []any{*f.RoleID}})
	}

	substrings := []struct {
		column string
		value  *string
	}{
		{"meta.meta_object_uuid", f.UUID},
		{"roles.role_name", f.Name},
		{"roles.role_description", f.Description},
	}

	for _, sub := range substrings {
		if sub.value == nil || *sub.value == "" {
			continue
		}

		q, arg := s.like(sub.column, *sub.value)
		conds = append(conds, cond{q, []any{arg}})
	}

	for _, ref := range f.Inherits {
		named, err := s.hierarchy.Role(ctx, ref)
		if err != nil {
			return nil, err
		}

		grantees, err := s.hierarchy.TransitiveGrantees(ctx, roles.ByID(named.ID))
		if err != nil {
			return nil, err
		}

		conds = append(conds, cond{"roles.role_id IN ?", []any{append(grantees, named.ID)}})
	}

	for _, ref := range f.Granted {
		named, err := s.hierarchy.Role(ctx, ref)
		if err != nil {
			return nil, err
		}

		direct := s.db.Model(&models.RoleHierarchy{}).Select("role_id").Where("inherited_role_id = ?", named.ID)
		conds = append(conds, cond{"roles.role_id IN (?)", []any{direct}})
	}

	return func(db *gorm.DB) *gorm.DB {
		for _, c := range conds {
			db = db.Where(c.query, c.args...)
		}

		return db
	}, nil
}

// like builds a substring condition with LIKE wildcards in value escaped.
func (s *Service) like(column, value string) (string, string) {
	pattern := "%" + likeEscaper.Replace(value) + "%"

	if s.caseInsensitive {
		return "LOWER(" + column + ") LIKE ? ESCAPE '" + likeEscape + "'", strings.ToLower(pattern)
	}

	return column + " LIKE ? ESCAPE '" + likeEscape + "'", pattern
}

// withGrants attaches the direct grants of every record with two queries.
func (s *Service) withGrants(ctx context.Context, records []models.RoleRecord) ([]Item, error) {
	items := make([]Item, len(records))
	ids := make([]uint, len(records))

	for i := range records {
		items[i] = Item{
			RoleRecord:       records[i],
			GrantedRoleIDs:   []uint{},
			GrantedRoleNames: []string{},
			GrantedRoleUUIDs: []string{},
		}
		ids[i] = records[i].ID
	}

	db := s.db.WithContext(ctx)

	var edges []models.RoleHierarchy
	if err := db.Model(&models.RoleHierarchy{}).
		Select("role_id", "inherited_role_id").
		Where("role_id IN ?", ids).
		Order("role_id, inherited_role_id").
		Find(&edges).Error; err != nil {
		return nil, errors.Wrap(err, "list direct grants")
	}

	if len(edges) == 0 {
		return items, nil
	}

	granted := make([]uint, 0, len(edges))
	for _, e := range edges {
		granted = append(granted, e.InheritedRoleID)
	}

	var targets []models.RoleRecord
	if err := rolestore.Records(db).Where("roles.role_id IN ?", granted).Scan(&targets).Error; err != nil {
		return nil, errors.Wrap(err, "load granted roles")
	}

	byID := make(map[uint]*models.RoleRecord, len(targets))
	for i := range targets {
		byID[targets[i].ID] = &targets[i]
	}

	pos := make(map[uint]int, len(items))
	for i := range items {
		pos[items[i].ID] = i
	}

	for _, e := range edges {
		target, ok := byID[e.InheritedRoleID]
		if !ok {
			continue
		}

		it := &items[pos[e.RoleID]]
		it.GrantedRoleIDs = append(it.GrantedRoleIDs, target.ID)
		it.GrantedRoleNames = append(it.GrantedRoleNames, target.Name)
		it.GrantedRoleUUIDs = append(it.GrantedRoleUUIDs, target.UUID)
	}

	return items, nil
}
