// Package role provides the gorm backed store of roles and role grant edges.
package role

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db/models"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/hierarchy"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/roles"
)

const (
	dialectSQLite   = "sqlite"
	dialectPostgres = "postgres"
	dialectMySQL    = "mysql"

	// RecordColumns selects a models.RoleRecord from roles joined with meta.
	RecordColumns = "roles.role_id, roles.role_name, roles.role_description, roles.role_is_user, " +
		"meta.meta_object_uuid, meta.meta_object_create_time, meta.meta_object_last_update_time, " +
		"meta.meta_object_create_role_id, meta.meta_object_last_update_role_id"

	metaJoin = "JOIN object_meta AS meta ON meta.meta_object_id = roles.role_id AND meta.meta_class_name = ?"

	roleIDIn     = "role_id IN ?"
	roleIDEquals = "role_id = ?"
	edgeEquals   = "role_id = ? AND inherited_role_id = ?"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Store implements hierarchy.Store on gorm.
type Store struct {
	db          *gorm.DB
	txOpts      *sql.TxOptions
	lockTimeout time.Duration
	inTx        bool
}

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout bounds how long a PostgreSQL transaction waits for a row lock.
// A timeout surfaces as roles.ErrTransientStore.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.lockTimeout = d
	}
}

// New creates a store. Transactions run with serializable isolation on PostgreSQL and
// MySQL. SQLite serialises writers on its own and is used with the driver default.
func New(db *gorm.DB, opts ...Option) *Store {
	if db == nil {
		panic(ErrDBNil)
	}

	s := &Store{db: db}

	switch db.Dialector.Name() {
	case dialectPostgres, dialectMySQL:
		s.txOpts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Joined returns roles joined with their meta row under the aliases roles and meta.
func Joined(db *gorm.DB) *gorm.DB {
	return db.Table("roles").Joins(metaJoin, models.RoleClass)
}

// Records returns a query selecting models.RoleRecord rows. Callers add conditions on
// the roles and meta aliases.
func Records(db *gorm.DB) *gorm.DB {
	return Joined(db).Select(RecordColumns)
}

// Transaction implements hierarchy.Store. Nested calls run inside the outer transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx hierarchy.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	run := func(gtx *gorm.DB) error {
		if s.lockTimeout > 0 && gtx.Dialector.Name() == dialectPostgres {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
			if err := gtx.Exec(stmt).Error; err != nil {
				return err
			}
		}

		return fn(&Store{db: gtx, txOpts: s.txOpts, lockTimeout: s.lockTimeout, inTx: true})
	}

	db := s.db.WithContext(ctx)

	if s.txOpts != nil {
		return translate(db.Transaction(run, s.txOpts))
	}

	return translate(db.Transaction(run))
}

// FindRole implements hierarchy.RoleStore.
func (s *Store) FindRole(ctx context.Context, ref roles.Ref) (*models.RoleRecord, error) {
	q := Records(s.db.WithContext(ctx))

	switch {
	case ref.ID != 0:
		q = q.Where("roles.role_id = ?", ref.ID)
	case ref.UUID != "":
		q = q.Where("meta.meta_object_uuid = ?", ref.UUID)
	case ref.Name != "":
		q = q.Where("roles.role_name = ?", ref.Name)
	default:
		return nil, errors.Wrap(roles.ErrValidation, "empty role reference")
	}

	var rec models.RoleRecord

	res := q.Limit(1).Scan(&rec)
	if res.Error != nil {
		return nil, translate(res.Error)
	}

	if res.RowsAffected == 0 {
		return nil, errors.Wrap(roles.ErrNotFound, ref.String())
	}

	return &rec, nil
}

// FindRoles implements hierarchy.RoleStore.
func (s *Store) FindRoles(ctx context.Context, ids []uint) ([]models.RoleRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var recs []models.RoleRecord
	if err := Records(s.db.WithContext(ctx)).
		Where("roles.role_id IN ?", ids).
		Order("roles.role_id").
		Scan(&recs).Error; err != nil {
		return nil, translate(err)
	}

	return recs, nil
}

// FindRolesByUUID implements hierarchy.RoleStore.
func (s *Store) FindRolesByUUID(ctx context.Context, uuids []string) ([]models.RoleRecord, error) {
	if len(uuids) == 0 {
		return nil, nil
	}

	var recs []models.RoleRecord
	if err := Records(s.db.WithContext(ctx)).
		Where("meta.meta_object_uuid IN ?", uuids).
		Order("roles.role_id").
		Scan(&recs).Error; err != nil {
		return nil, translate(err)
	}

	return recs, nil
}

// CreateRole implements hierarchy.RoleStore. The user-role flag is stored as given;
// role management always passes system roles.
func (s *Store) CreateRole(ctx context.Context, role *models.Role) (*models.RoleRecord, error) {
	if !s.inTx {
		var rec *models.RoleRecord

		err := s.Transaction(ctx, func(tx hierarchy.Store) error {
			var errCreate error
			rec, errCreate = tx.CreateRole(ctx, role)

			return errCreate
		})

		return rec, err
	}

	if err := s.checkNameFree(ctx, role.Name, 0); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	if err := db.Omit(clause.Associations).Create(role).Error; err != nil {
		return nil, translate(err)
	}

	var (
		now   = time.Now().UTC()
		actor = roles.ActorFrom(ctx)
	)

	meta := models.Meta{
		ObjectUUID: uuid.NewString(),
		ClassName:  models.RoleClass,
		ObjectID:   role.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
		CreatedBy:  actor,
		UpdatedBy:  actor,
	}

	if err := db.Create(&meta).Error; err != nil {
		return nil, translate(err)
	}

	return s.FindRole(ctx, roles.ByID(role.ID))
}

// UpdateRole implements hierarchy.RoleStore.
func (s *Store) UpdateRole(ctx context.Context, role *models.Role) error {
	if role.ID == 0 {
		return errors.Wrap(roles.ErrValidation, "role id is required")
	}

	if err := s.checkNameFree(ctx, role.Name, role.ID); err != nil {
		return err
	}

	db := s.db.WithContext(ctx)

	var exists int64
	if err := db.Model(&models.Role{}).Where(roleIDEquals, role.ID).Count(&exists).Error; err != nil {
		return translate(err)
	}

	if exists == 0 {
		return errors.Wrap(roles.ErrNotFound, roles.ByID(role.ID).String())
	}

	if err := db.Model(&models.Role{}).Where(roleIDEquals, role.ID).Updates(map[string]any{
		"role_name":        role.Name,
		"role_description": role.Description,
	}).Error; err != nil {
		return translate(err)
	}

	err := db.Model(&models.Meta{}).
		Where("meta_class_name = ? AND meta_object_id = ?", models.RoleClass, role.ID).
		Updates(map[string]any{
			"meta_object_last_update_time":    time.Now().UTC(),
			"meta_object_last_update_role_id": roles.ActorFrom(ctx),
		}).Error

	return translate(err)
}

// LockRoles implements hierarchy.RoleStore. Rows are locked in ascending id order so two
// transactions locking overlapping sets can not deadlock on each other.
func (s *Store) LockRoles(ctx context.Context, ids ...uint) error {
	if !s.inTx || len(ids) == 0 || s.db.Dialector.Name() == dialectSQLite {
		return nil
	}

	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	var locked []uint

	err := s.db.WithContext(ctx).
		Model(&models.Role{}).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where(roleIDIn, ids).
		Order("role_id").
		Pluck("role_id", &locked).Error

	return translate(err)
}

// AddEdge implements hierarchy.EdgeStore.
func (s *Store) AddEdge(ctx context.Context, from, to uint) error {
	if from == to {
		return errors.Wrapf(roles.ErrCycle, "role %d can not inherit itself", from)
	}

	db := s.db.WithContext(ctx)

	var found int64
	if err := db.Model(&models.Role{}).Where(roleIDIn, []uint{from, to}).Count(&found).Error; err != nil {
		return translate(err)
	}

	if found != 2 { //nolint:mnd
		return errors.Wrapf(roles.ErrNotFound, "grant edge %d -> %d references a missing role", from, to)
	}

	var dup int64
	if err := db.Model(&models.RoleHierarchy{}).Where(edgeEquals, from, to).Count(&dup).Error; err != nil {
		return translate(err)
	}

	if dup > 0 {
		return errors.Wrapf(roles.ErrDuplicateEdge, "grant edge %d -> %d", from, to)
	}

	err := db.Omit(clause.Associations).Create(&models.RoleHierarchy{RoleID: from, InheritedRoleID: to}).Error
	if err != nil {
		err = translate(err)
		if errors.Is(err, roles.ErrValidation) {
			return errors.Wrapf(roles.ErrDuplicateEdge, "grant edge %d -> %d", from, to)
		}

		return err
	}

	return nil
}

// RemoveEdge implements hierarchy.EdgeStore.
func (s *Store) RemoveEdge(ctx context.Context, from, to uint) error {
	err := s.db.WithContext(ctx).Where(edgeEquals, from, to).Delete(&models.RoleHierarchy{}).Error

	return translate(err)
}

// DirectGrantsOf implements hierarchy.EdgeStore.
func (s *Store) DirectGrantsOf(ctx context.Context, ids ...uint) ([]uint, error) {
	return s.adjacent(ctx, "role_id", "inherited_role_id", ids)
}

// DirectGranteesOf implements hierarchy.EdgeStore.
func (s *Store) DirectGranteesOf(ctx context.Context, ids ...uint) ([]uint, error) {
	return s.adjacent(ctx, "inherited_role_id", "role_id", ids)
}

func (s *Store) adjacent(ctx context.Context, match, pick string, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var out []uint

	err := s.db.WithContext(ctx).
		Model(&models.RoleHierarchy{}).
		Distinct().
		Where(match+" IN ?", ids).
		Order(pick).
		Pluck(pick, &out).Error
	if err != nil {
		return nil, translate(err)
	}

	return out, nil
}

// checkNameFree fails with roles.ErrValidation if another role already uses name.
func (s *Store) checkNameFree(ctx context.Context, name string, exceptID uint) error {
	var taken int64

	err := s.db.WithContext(ctx).
		Model(&models.Role{}).
		Where("role_name = ? AND role_id <> ?", name, exceptID).
		Count(&taken).Error
	if err != nil {
		return translate(err)
	}

	if taken > 0 {
		return errors.Wrapf(roles.ErrValidation, "role name %q is already taken", name)
	}

	return nil
}
