package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"
)

type txCounts struct {
	begins    int
	commits   int
	rollbacks int
	beginErr  error
	commitErr error
}

type countingConnector struct{ counts *txCounts }

func (c countingConnector) Connect(context.Context) (driver.Conn, error) {
	return countingConn(c), nil
}

func (c countingConnector) Driver() driver.Driver { return countingDriver{} }

type countingDriver struct{}

func (countingDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open through the connector")
}

type countingConn struct{ counts *txCounts }

func (c countingConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("statements not supported")
}

func (c countingConn) Close() error { return nil }

func (c countingConn) Begin() (driver.Tx, error) {
	if c.counts.beginErr != nil {
		return nil, c.counts.beginErr
	}
	c.counts.begins++
	return countingTx(c), nil
}

type countingTx struct{ counts *txCounts }

func (t countingTx) Commit() error {
	t.counts.commits++
	return t.counts.commitErr
}

func (t countingTx) Rollback() error {
	t.counts.rollbacks++
	return nil
}

func newTestClient(t *testing.T, counts *txCounts) *Client {
	t.Helper()
	db := sql.OpenDB(countingConnector{counts: counts})
	t.Cleanup(func() { _ = db.Close() })
	return &Client{DB: db}
}

func TestInTxCommits(t *testing.T) {
	counts := &txCounts{}
	c := newTestClient(t, counts)
	called := false
	err := c.InTx(context.Background(), func(tx *sql.Tx) error {
		called = tx != nil
		return nil
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	if !called {
		t.Error("fn was not given a transaction")
	}
	if counts.begins != 1 || counts.commits != 1 || counts.rollbacks != 0 {
		t.Errorf("begins=%d commits=%d rollbacks=%d, want 1/1/0", counts.begins, counts.commits, counts.rollbacks)
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	counts := &txCounts{}
	c := newTestClient(t, counts)
	errSave := errors.New("inserting run: duplicate key")
	err := c.InTx(context.Background(), func(*sql.Tx) error { return errSave })
	if !errors.Is(err, errSave) {
		t.Fatalf("err = %v, want %v", err, errSave)
	}
	if counts.commits != 0 || counts.rollbacks != 1 {
		t.Errorf("commits=%d rollbacks=%d, want 0/1", counts.commits, counts.rollbacks)
	}
}

func TestInTxBeginAndCommitFailures(t *testing.T) {
	counts := &txCounts{beginErr: errors.New("connection refused")}
	c := newTestClient(t, counts)
	err := c.InTx(context.Background(), func(*sql.Tx) error {
		t.Error("fn must not run when begin fails")
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "beginning transaction") {
		t.Errorf("begin err = %v", err)
	}

	counts = &txCounts{commitErr: errors.New("serialization failure")}
	c = newTestClient(t, counts)
	err = c.InTx(context.Background(), func(*sql.Tx) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "committing transaction") {
		t.Errorf("commit err = %v", err)
	}
}
