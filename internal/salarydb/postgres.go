package salarydb

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spigell/linkedintel/internal/salary"
)

// DefaultTable is the Postgres table holding salary entries.
const DefaultTable = "salary_entries"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// LoadPostgres reads all entries of table. The version marker is derived from the
// loaded entries so any change in the table invalidates cached lookups.
func LoadPostgres(ctx context.Context, dsn, table string) (*Dataset, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	rows, err := pool.Query(ctx, fmt.Sprintf(
		`SELECT title, title_normalized, COALESCE(company, ''), COALESCE(city, ''), COALESCE(state, ''),
		        country, COALESCE(experience_level, ''), salary_min, salary_max, salary_median,
		        currency, COALESCE(source, '')
		 FROM %s ORDER BY id`, table))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (salary.Entry, error) {
		var e salary.Entry
		err := row.Scan(&e.Title, &e.TitleNormalized, &e.Company, &e.City, &e.State,
			&e.Country, &e.ExperienceLevel, &e.SalaryMin, &e.SalaryMax, &e.SalaryMedian,
			&e.Currency, &e.Source)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", table, err)
	}

	version, err := VersionOf(entries)
	if err != nil {
		return nil, err
	}

	return &Dataset{Version: version, Entries: entries}, nil
}
