package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spendview/catalog-backend/internal/adapter/postgres"
	"github.com/spendview/catalog-backend/internal/adapter/postgres/testhelper"
)

// badgeExists checks whether a badge row with the given ID exists in the database.
func badgeExists(t *testing.T, pool *pgxpool.Pool, badgeID uuid.UUID) bool {
	t.Helper()
	var exists bool
	err := pool.QueryRow(
		context.Background(),
		`SELECT EXISTS(SELECT 1 FROM badges WHERE id = $1)`,
		badgeID,
	).Scan(&exists)
	if err != nil {
		t.Fatalf("badgeExists query: %v", err)
	}
	return exists
}

func insertBadge(ctx context.Context, q postgres.Querier, badgeID uuid.UUID, name string) error {
	_, err := q.Exec(ctx,
		`INSERT INTO badges (id, name, label, created_at, updated_at)
		 VALUES ($1, $2, $3, now(), now())`,
		badgeID, name, "Tx Test",
	)
	return err
}

func TestRunInTx_Commit(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	badgeID := uuid.New()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		return insertBadge(ctx, q, badgeID, "commit-"+badgeID.String()[:8])
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	if !badgeExists(t, pool, badgeID) {
		t.Fatal("expected badge to exist after committed transaction")
	}
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	badgeID := uuid.New()
	sentinel := errors.New("business logic error")

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		if execErr := insertBadge(ctx, q, badgeID, "rollback-"+badgeID.String()[:8]); execErr != nil {
			t.Fatalf("insert inside tx failed: %v", execErr)
		}
		return sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got: %v", err)
	}

	if badgeExists(t, pool, badgeID) {
		t.Fatal("expected badge NOT to exist after rolled-back transaction")
	}
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	badgeID := uuid.New()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic to be re-raised")
		}
		if r != "test panic" {
			t.Fatalf("expected panic value %q, got %v", "test panic", r)
		}

		// Verify data was rolled back.
		if badgeExists(t, pool, badgeID) {
			t.Fatal("expected badge NOT to exist after panic-rolled-back transaction")
		}
	}()

	_ = tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		if err := insertBadge(ctx, q, badgeID, "panic-"+badgeID.String()[:8]); err != nil {
			t.Fatalf("insert inside tx failed: %v", err)
		}
		panic("test panic")
	})
}

func TestRunInTx_QuerierFromCtx_UsesTx(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	badgeID := uuid.New()

	// Insert inside a transaction, then verify it's visible within the same tx
	// but NOT outside until commit.
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		if err := insertBadge(ctx, q, badgeID, "ctx-"+badgeID.String()[:8]); err != nil {
			return err
		}

		// Should be visible within the transaction.
		var exists bool
		err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM badges WHERE id = $1)`, badgeID).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			t.Fatal("expected badge to be visible within the transaction")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	// After commit, also visible outside.
	if !badgeExists(t, pool, badgeID) {
		t.Fatal("expected badge to exist after committed transaction")
	}
}
