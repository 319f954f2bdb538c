package gravity

import "errors"

// ErrTableNotFound is returned by a flush when the target table is missing
// from the schema catalog.
var ErrTableNotFound = errors.New("table does not exist")

// ErrInvalidDomainType is returned when a domain list restore is requested
// with the sentinel (or any other unknown) list type.
var ErrInvalidDomainType = errors.New("invalid domain type")

// ErrUnknownTable is returned by RestoreTable for a table name that has no
// record restorer.
var ErrUnknownTable = errors.New("unknown table")
