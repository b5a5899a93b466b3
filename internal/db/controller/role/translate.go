package role

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/roles"
)

// PostgreSQL SQLSTATE codes.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
)

// MySQL server error numbers.
const (
	myLockWaitTimeout   = 1205
	myDeadlock          = 1213
	myDuplicateEntry    = 1062
	myNoReferencedRow   = 1452
	myNoReferencedRow2  = 1216
	myLockDeadlockRetry = 1614
)

// translate maps driver errors onto the roles error kinds.
// Errors that already carry a kind are returned unchanged.
func translate(err error) error {
	if err == nil || roles.KindOf(err) != roles.KindInternal {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure:
			return pkgerrors.Wrap(roles.ErrConflict, pgErr.Message)
		case pgDeadlockDetected, pgLockNotAvailable:
			return pkgerrors.Wrap(roles.ErrTransientStore, pgErr.Message)
		case pgUniqueViolation:
			return pkgerrors.Wrap(roles.ErrValidation, pgErr.Message)
		case pgForeignKeyViolation:
			return pkgerrors.Wrap(roles.ErrNotFound, pgErr.Message)
		}
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case myLockWaitTimeout, myDeadlock, myLockDeadlockRetry:
			return pkgerrors.Wrap(roles.ErrTransientStore, myErr.Message)
		case myDuplicateEntry:
			return pkgerrors.Wrap(roles.ErrValidation, myErr.Message)
		case myNoReferencedRow, myNoReferencedRow2:
			return pkgerrors.Wrap(roles.ErrNotFound, myErr.Message)
		}
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return pkgerrors.Wrap(roles.ErrValidation, err.Error())
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return pkgerrors.Wrap(roles.ErrNotFound, err.Error())
	case isSQLiteBusy(err):
		return pkgerrors.Wrap(roles.ErrTransientStore, err.Error())
	}

	return err
}

// isSQLiteBusy detects SQLITE_BUSY and SQLITE_LOCKED. The pure Go driver only exposes
// them through the message.
func isSQLiteBusy(err error) bool {
	msg := err.Error()

	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "SQLITE_LOCKED") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
