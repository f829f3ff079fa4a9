package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/FinSummary/internal/core"
)

// DefaultTable is the table read by the postgres source.
const DefaultTable = "overhead_summary"

// postgresProvider reads rows from a table shaped as
//
//	overhead text, position integer, january numeric, ..., december numeric
//
// ordered by position.
type postgresProvider struct {
	url      string
	table    string
	maxConns int32
}

// NewPostgres returns a provider reading table from the database at url.
func NewPostgres(url, table string, maxConns int32) (Provider, error) {
	if url == "" {
		return nil, fmt.Errorf("postgres source: database url is required")
	}
	if table == "" {
		table = DefaultTable
	}
	return &postgresProvider{url: url, table: table, maxConns: maxConns}, nil
}

func (p *postgresProvider) Load(ctx context.Context) (core.Dataset, error) {
	poolConfig, err := pgxpool.ParseConfig(p.url)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("parse database url: %w", err)
	}
	if p.maxConns > 0 {
		poolConfig.MaxConns = p.maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	rows, err := pool.Query(ctx, selectQuery(p.table, core.Months))
	if err != nil {
		return core.Dataset{}, fmt.Errorf("query %s: %w", p.table, err)
	}

	ds := core.Dataset{Periods: append([]string(nil), core.Months...)}
	ds.Rows, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Row, error) {
		r := core.Row{Values: make([]float64, len(ds.Periods))}
		dest := make([]any, 0, len(ds.Periods)+1)
		dest = append(dest, &r.Identity)
		for i := range r.Values {
			dest = append(dest, &r.Values[i])
		}
		if err := row.Scan(dest...); err != nil {
			return core.Row{}, err
		}
		return r, nil
	})
	if err != nil {
		return core.Dataset{}, fmt.Errorf("scan %s: %w", p.table, err)
	}

	if err := Validate(ds); err != nil {
		return core.Dataset{}, err
	}
	return ds, nil
}

// selectQuery builds the dataset query. Month columns are lowercased period
// names cast to float8; nulls read as zero.
func selectQuery(table string, periods []string) string {
	cols := make([]string, 0, len(periods)+1)
	cols = append(cols, pgx.Identifier{"overhead"}.Sanitize())
	for _, period := range periods {
		col := pgx.Identifier{strings.ToLower(period)}.Sanitize()
		cols = append(cols, fmt.Sprintf("COALESCE(%s, 0)::float8", col))
	}

	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s, %s",
		strings.Join(cols, ", "),
		pgx.Identifier(strings.Split(table, ".")).Sanitize(),
		pgx.Identifier{"position"}.Sanitize(),
		pgx.Identifier{"overhead"}.Sanitize(),
	)
}
