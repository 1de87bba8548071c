package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// beginTestTx opens a transaction on the test pool
func beginTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	tx, err := testDB.Begin(context.Background())
	require.NoError(t, err)
	return tx
}

func commitTestTx(t *testing.T, tx pgx.Tx) {
	t.Helper()
	require.NoError(t, tx.Commit(context.Background()))
}

func TestResolveCategory(t *testing.T) {
	require.NoError(t, cleanupTestData())
	ctx := context.Background()

	t.Run("resolving the same name twice yields one row and one id", func(t *testing.T) {
		tx := beginTestTx(t)
		first, err := resolveCategory(ctx, tx, "food")
		require.NoError(t, err)
		second, err := resolveCategory(ctx, tx, "food")
		require.NoError(t, err)
		commitTestTx(t, tx)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, countRows(t, "categories"))
	})

	t.Run("match is case-sensitive", func(t *testing.T) {
		tx := beginTestTx(t)
		lower, err := resolveCategory(ctx, tx, "food")
		require.NoError(t, err)
		upper, err := resolveCategory(ctx, tx, "Food")
		require.NoError(t, err)
		commitTestTx(t, tx)

		assert.NotEqual(t, lower, upper)
		assert.Equal(t, 2, countRows(t, "categories"))
	})

	t.Run("id is usable before the enclosing transaction commits", func(t *testing.T) {
		tx := beginTestTx(t)
		id, err := resolveCategory(ctx, tx, "household")
		require.NoError(t, err)

		// visible inside the transaction
		var name string
		require.NoError(t, tx.QueryRow(ctx, "SELECT name FROM categories WHERE id = $1", id).Scan(&name))
		assert.Equal(t, "household", name)

		require.NoError(t, tx.Rollback(ctx))

		// rolled back, never committed
		err = testDB.QueryRow(ctx, "SELECT name FROM categories WHERE id = $1", id).Scan(&name)
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})
}

func TestResolveCategoryConcurrent(t *testing.T) {
	require.NoError(t, cleanupTestData())
	ctx := context.Background()

	// two transactions race on the same new name; the loser blocks on the
	// in-flight insert until the winner commits, then lands on its row
	var wg sync.WaitGroup
	ids := make([]int64, 2)
	errs := make([]error, 2)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tx, err := testDB.Begin(ctx)
			if err != nil {
				errs[i] = err
				return
			}
			id, err := resolveCategory(ctx, tx, "produce")
			if err != nil {
				tx.Rollback(ctx)
				errs[i] = err
				return
			}
			ids[i] = id
			errs[i] = tx.Commit(ctx)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, ids[0], ids[1])
	assert.Equal(t, 1, countRows(t, "categories"))
}

func TestResolvePaymentMethod(t *testing.T) {
	require.NoError(t, cleanupTestData())
	ctx := context.Background()

	t.Run("creates family and payment method together", func(t *testing.T) {
		tx := beginTestTx(t)
		id, err := resolvePaymentMethod(ctx, tx, "card", "alice")
		require.NoError(t, err)
		commitTestTx(t, tx)

		assert.NotZero(t, id)
		assert.Equal(t, 1, countRows(t, "families"))
		assert.Equal(t, 1, countRows(t, "payment_methods"))
	})

	t.Run("same name in another family is a distinct payment method", func(t *testing.T) {
		tx := beginTestTx(t)
		aliceCard, err := resolvePaymentMethod(ctx, tx, "card", "alice")
		require.NoError(t, err)
		bobCard, err := resolvePaymentMethod(ctx, tx, "card", "bob")
		require.NoError(t, err)
		commitTestTx(t, tx)

		assert.NotEqual(t, aliceCard, bobCard)
		assert.Equal(t, 2, countRows(t, "families"))
		assert.Equal(t, 2, countRows(t, "payment_methods"))
	})

	t.Run("same (name, family) pair resolves to the existing row", func(t *testing.T) {
		tx := beginTestTx(t)
		first, err := resolvePaymentMethod(ctx, tx, "card", "alice")
		require.NoError(t, err)
		second, err := resolvePaymentMethod(ctx, tx, "card", "alice")
		require.NoError(t, err)
		commitTestTx(t, tx)

		assert.Equal(t, first, second)
		assert.Equal(t, 2, countRows(t, "payment_methods"))
	})
}

func TestLookupUnit(t *testing.T) {
	require.NoError(t, cleanupTestData())
	ctx := context.Background()

	t.Run("seeded unit resolves", func(t *testing.T) {
		tx := beginTestTx(t)
		defer tx.Rollback(ctx)

		id, err := lookupUnit(ctx, tx, "liter")

		require.NoError(t, err)
		assert.NotZero(t, id)
	})

	t.Run("unknown unit is never created", func(t *testing.T) {
		before := countRows(t, "units")

		tx := beginTestTx(t)
		defer tx.Rollback(ctx)

		_, err := lookupUnit(ctx, tx, "gallon")

		assert.ErrorIs(t, err, ErrUnitNotFound)
		assert.Equal(t, before, countRows(t, "units"))
	})
}

func TestResolveItem(t *testing.T) {
	require.NoError(t, cleanupTestData())
	ctx := context.Background()

	tx := beginTestTx(t)
	foodID, err := resolveCategory(ctx, tx, "food")
	require.NoError(t, err)
	drinkID, err := resolveCategory(ctx, tx, "drink")
	require.NoError(t, err)
	literID, err := lookupUnit(ctx, tx, "liter")
	require.NoError(t, err)
	pieceID, err := lookupUnit(ctx, tx, "piece")
	require.NoError(t, err)
	commitTestTx(t, tx)

	t.Run("same composite key resolves to the existing item", func(t *testing.T) {
		tx := beginTestTx(t)
		first, err := resolveItem(ctx, tx, "milk", foodID, literID)
		require.NoError(t, err)
		second, err := resolveItem(ctx, tx, "milk", foodID, literID)
		require.NoError(t, err)
		commitTestTx(t, tx)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, countRows(t, "items"))
	})

	t.Run("same name under another category or unit is a distinct item", func(t *testing.T) {
		tx := beginTestTx(t)
		base, err := resolveItem(ctx, tx, "milk", foodID, literID)
		require.NoError(t, err)
		otherCategory, err := resolveItem(ctx, tx, "milk", drinkID, literID)
		require.NoError(t, err)
		otherUnit, err := resolveItem(ctx, tx, "milk", foodID, pieceID)
		require.NoError(t, err)
		commitTestTx(t, tx)

		assert.NotEqual(t, base, otherCategory)
		assert.NotEqual(t, base, otherUnit)
		assert.Equal(t, 3, countRows(t, "items"))
	})
}

func TestResolvePrice(t *testing.T) {
	require.NoError(t, cleanupTestData())
	ctx := context.Background()

	tx := beginTestTx(t)
	foodID, err := resolveCategory(ctx, tx, "food")
	require.NoError(t, err)
	literID, err := lookupUnit(ctx, tx, "liter")
	require.NoError(t, err)
	milkID, err := resolveItem(ctx, tx, "milk", foodID, literID)
	require.NoError(t, err)
	juiceID, err := resolveItem(ctx, tx, "juice", foodID, literID)
	require.NoError(t, err)
	commitTestTx(t, tx)

	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	value := decimal.NewFromFloat(3.5)

	t.Run("identical observation collapses onto one row", func(t *testing.T) {
		tx := beginTestTx(t)
		first, err := resolvePrice(ctx, tx, milkID, value, day)
		require.NoError(t, err)
		second, err := resolvePrice(ctx, tx, milkID, value, day)
		require.NoError(t, err)
		commitTestTx(t, tx)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, countRows(t, "prices"))
	})

	t.Run("price uniqueness is scoped per item", func(t *testing.T) {
		tx := beginTestTx(t)
		milkPrice, err := resolvePrice(ctx, tx, milkID, value, day)
		require.NoError(t, err)
		juicePrice, err := resolvePrice(ctx, tx, juiceID, value, day)
		require.NoError(t, err)
		commitTestTx(t, tx)

		assert.NotEqual(t, milkPrice, juicePrice)
		assert.Equal(t, 2, countRows(t, "prices"))
	})

	t.Run("new value or date creates a new observation", func(t *testing.T) {
		tx := beginTestTx(t)
		_, err := resolvePrice(ctx, tx, milkID, decimal.NewFromFloat(3.75), day)
		require.NoError(t, err)
		_, err = resolvePrice(ctx, tx, milkID, value, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		commitTestTx(t, tx)

		assert.Equal(t, 4, countRows(t, "prices"))
	})
}

func TestLinkEdges(t *testing.T) {
	require.NoError(t, cleanupTestData())
	ctx := context.Background()

	tx := beginTestTx(t)
	pmID, err := resolvePaymentMethod(ctx, tx, "card", "alice")
	require.NoError(t, err)
	foodID, err := resolveCategory(ctx, tx, "food")
	require.NoError(t, err)
	literID, err := lookupUnit(ctx, tx, "liter")
	require.NoError(t, err)
	milkID, err := resolveItem(ctx, tx, "milk", foodID, literID)
	require.NoError(t, err)
	targetID, err := resolveTransactionTarget(ctx, tx, "grocery")
	require.NoError(t, err)

	var txnID int64
	require.NoError(t, tx.QueryRow(ctx,
		"INSERT INTO transactions (payment_method_id, date) VALUES ($1, $2) RETURNING id",
		pmID, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)).Scan(&txnID))
	commitTestTx(t, tx)

	t.Run("re-linking an item to a transaction is a no-op", func(t *testing.T) {
		tx := beginTestTx(t)
		require.NoError(t, linkTransactionItem(ctx, tx, txnID, milkID, 1))
		require.NoError(t, linkTransactionItem(ctx, tx, txnID, milkID, 2))
		commitTestTx(t, tx)

		assert.Equal(t, 1, countRows(t, "transaction_items"))

		// first quantity wins; re-linking never mutates the edge
		var quantity float64
		require.NoError(t, testDB.QueryRow(ctx,
			"SELECT quantity FROM transaction_items WHERE transaction_id = $1 AND item_id = $2",
			txnID, milkID).Scan(&quantity))
		assert.Equal(t, 1.0, quantity)
	})

	t.Run("re-linking an item to a target is a no-op", func(t *testing.T) {
		tx := beginTestTx(t)
		require.NoError(t, linkTargetItem(ctx, tx, targetID, milkID))
		require.NoError(t, linkTargetItem(ctx, tx, targetID, milkID))
		commitTestTx(t, tx)

		assert.Equal(t, 1, countRows(t, "transaction_target_items"))
	})
}
