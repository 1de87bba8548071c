package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Reference entity resolvers.
//
// Every resolver is a single INSERT ... ON CONFLICT statement rather than a
// lookup followed by an insert, so two requests racing on the same natural
// key both land on the same row. The no-op DO UPDATE makes RETURNING yield
// the id whether the row was inserted or already existed. Rows are visible
// to the enclosing transaction before it commits, so dependents can link
// against the returned ids immediately.

// resolveFamily returns the id of the family with the given name, creating
// it on first reference.
func resolveFamily(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO families (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolving family %q: %w", name, err)
	}
	return id, nil
}

// resolvePaymentMethod returns the id of the payment method scoped to the
// named family, creating family and payment method as needed. The natural
// key is (name, family).
func resolvePaymentMethod(ctx context.Context, tx pgx.Tx, name, familyName string) (int64, error) {
	familyID, err := resolveFamily(ctx, tx, familyName)
	if err != nil {
		return 0, err
	}

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO payment_methods (name, family_id) VALUES ($1, $2)
		ON CONFLICT (name, family_id) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name, familyID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolving payment method %q: %w", name, err)
	}
	return id, nil
}

// resolveCategory returns the id of the named category, creating it on first
// reference.
func resolveCategory(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO categories (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolving category %q: %w", name, err)
	}
	return id, nil
}

// resolveTransactionTarget returns the id of the named target, creating it
// on first reference.
func resolveTransactionTarget(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO transaction_targets (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolving transaction target %q: %w", name, err)
	}
	return id, nil
}

// lookupUnit returns the id of the named unit. Units are never created here:
// an unknown name is ErrUnitNotFound.
func lookupUnit(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM units WHERE name = $1`, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %q", ErrUnitNotFound, name)
	}
	if err != nil {
		return 0, fmt.Errorf("looking up unit %q: %w", name, err)
	}
	return id, nil
}
