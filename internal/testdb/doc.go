// Package testdb provides helpers for PostgreSQL integration tests.
//
// Each test runs in its own transaction, which is rolled back when the test
// completes, so tests can run in parallel against one database:
//
//	func TestMyFeature(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        resumes := postgres.NewPostgresResumeStore(tx, nil)
//	        // ...
//	    })
//	}
//
// Tests are skipped when COACH_TEST_DB_URL is not set.
package testdb
