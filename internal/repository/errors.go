package repository

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes surfaced to clients as 400s.
const (
	PgUniqueViolation     = "23505"
	PgForeignKeyViolation = "23503"
	PgCheckViolation      = "23514"
	PgInvalidTextRep      = "22P02"
)

var pgKeyDetail = regexp.MustCompile(`Key \(([^)]+)\)=`)

// IsConstraintViolation reports whether err is a data integrity error raised
// by the database rather than an operational failure.
func IsConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case PgUniqueViolation, PgForeignKeyViolation, PgCheckViolation, PgInvalidTextRep:
			return true
		}
		return false
	}
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}

// IsUniqueViolation reports whether err is a unique key collision.
func IsUniqueViolation(err error) bool {
	_, ok := UniqueViolationField(err)
	return ok
}

// UniqueViolationField extracts the column behind a unique key collision.
func UniqueViolationField(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != PgUniqueViolation {
			return "", false
		}
		if m := pgKeyDetail.FindStringSubmatch(pgErr.Detail); m != nil {
			return m[1], true
		}
		if pgErr.ColumnName != "" {
			return pgErr.ColumnName, true
		}
		return constraintColumn(pgErr.ConstraintName), true
	}

	// SQLite: "UNIQUE constraint failed: users.username"
	msg := err.Error()
	_, cols, ok := strings.Cut(msg, "UNIQUE constraint failed: ")
	if !ok {
		return "", false
	}
	first, _, _ := strings.Cut(cols, ",")
	if _, col, dotted := strings.Cut(strings.TrimSpace(first), "."); dotted {
		return col, true
	}
	return strings.TrimSpace(first), true
}

// constraintColumn turns "idx_users_username" into "username".
func constraintColumn(name string) string {
	name = strings.TrimSuffix(name, "_key")
	if i := strings.LastIndex(name, "_"); i >= 0 {
		return name[i+1:]
	}
	return name
}
