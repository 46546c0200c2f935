package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/db"
)

// requested record is missing.
type Missing struct {
	Table    string
	Identity string
}

var _ error = Missing{}

func (m Missing) Error() string {
	return fmt.Sprintf("%s is not found in %s", m.Identity, m.Table)
}

func (m Missing) Unwrap() error {
	return db.ErrMissing
}

// a record with the same identity exists already.
type Conflict struct {
	Table    string
	Identity string
}

var _ error = Conflict{}

func (c Conflict) Error() string {
	return fmt.Sprintf("%s exists in %s already", c.Identity, c.Table)
}

func (c Conflict) Unwrap() error {
	return db.ErrAlreadyExists
}

// AsConflict translates a postgres unique violation into Conflict.
// Other errors pass through unchanged.
func AsConflict(err error, table string, identity string) error {
	pgErr := new(pgconn.PgError)
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return Conflict{Table: table, Identity: identity}
	}
	return err
}
