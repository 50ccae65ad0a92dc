//go:build integration

// Package testdb provides helpers for tests that run against a real
// Postgres database.
//
// Each test runs in its own transaction, which is rolled back when the test
// completes, so tests can share one database and run in parallel:
//
//	func TestUserStore(t *testing.T) {
//	    db := testdb.Open(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
//	        users := postgres.NewPostgresUserStore(tx, nil)
//	        // ...
//	    })
//	}
//
// Tests are skipped unless TASKS_TEST_DATABASE_URL or DATABASE_URL is set.
// The schema is migrated once per process using the embedded migrations.
package testdb
