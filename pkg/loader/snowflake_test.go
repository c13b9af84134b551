package loader

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/sales-clean/pkg/model"
)

// singlePageQuerier runs the query once and feeds every row to the processor
type singlePageQuerier struct {
	db *sql.DB
}

func (q singlePageQuerier) BatchQuery(ctx context.Context, query string, _ int, processor func(*sql.Rows) error) error {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := processor(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func TestSnowflakeLoad(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2003, 2, 24, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT * FROM SALES.PUBLIC.SALES_DATA ORDER BY ORDERNUMBER, ORDERLINENUMBER").
		WillReturnRows(sqlmock.NewRows([]string{"ordernumber", "SALES", "ORDERDATE", "CITY"}).
			AddRow("10107", "2871.00", ts, []byte("NYC")).
			AddRow(int64(10121), nil, "5/7/2003 0:00", ""))

	src := NewSnowflakeSource(singlePageQuerier{db: db}, "SALES.PUBLIC.SALES_DATA", 100, zaptest.NewLogger(t))
	table, err := src.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{model.ColOrderNumber, model.ColSales, model.ColOrderDate, "CITY"}, table.ColumnNames())
	assert.Equal(t, []any{int64(10107), 2871.0, ts, "NYC"}, table.Row(0))
	assert.Equal(t, []any{int64(10121), nil, "5/7/2003 0:00", nil}, table.Row(1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnowflakeLoadErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("warehouse suspended"))
	_, err = NewSnowflakeSource(singlePageQuerier{db: db}, "T", 10, nil).Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrLoad))

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"A"}))
	_, err = NewSnowflakeSource(singlePageQuerier{db: db}, "T", 10, nil).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rows")
}
