package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump is the log-only view of an error chain. It never reaches a response body.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Retryable  bool     `json:"retryable"`
	Chain      []string `json:"chain,omitempty"`

	// Driver is "postgres" or "sqlite" when a driver error was found in the chain.
	Driver     string `json:"driver,omitempty"`
	SQLState   string `json:"sql_state,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Retryable = te.Retryable()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		d.Driver = "postgres"
		d.SQLState = pgxErr.Code
		d.Constraint = pgxErr.ConstraintName
		d.Table = pgxErr.TableName
		d.Detail = firstNonEmpty(pgxErr.Detail, pgxErr.Message)
	case errors.As(err, &pqErr):
		d.Driver = "postgres"
		d.SQLState = string(pqErr.Code)
		d.Constraint = pqErr.Constraint
		d.Table = pqErr.Table
		d.Detail = firstNonEmpty(pqErr.Detail, pqErr.Message)
	default:
		// innermost match carries the driver's own message
		for e := err; e != nil; e = errors.Unwrap(e) {
			if msg := e.Error(); strings.Contains(msg, "constraint failed") {
				d.Driver = "sqlite"
				d.Detail = msg
			}
		}
	}
	return d
}

// Fields renders the dump as structured log fields, omitting empty driver details.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_code":  d.Code,
		"error_chain": d.Chain,
		"retryable":   d.Retryable,
	}
	for k, v := range map[string]string{
		"db_driver":     d.Driver,
		"db_sql_state":  d.SQLState,
		"db_constraint": d.Constraint,
		"db_table":      d.Table,
		"db_detail":     d.Detail,
	} {
		if v != "" {
			fields[k] = v
		}
	}
	return fields
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
