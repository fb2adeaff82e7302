package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads the open-items baseline from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const openItemsQuery = `
SELECT account_type, company, counterparty_code, counterparty_name,
       doc_type, series, number, description,
       issue_date, due_date, exchange_rate, currency,
       amount_local, amount_functional, amount_alternate,
       amount_original, pending_ratio,
       responsible_code, responsible_name, service, doc_path
FROM vw_portfolio_open_items
ORDER BY due_date, issue_date, counterparty_code`

// FetchRecords reads the full baseline. Nullable columns are coerced to the
// zero value so downstream grouping treats them as empty.
func (r *Repository) FetchRecords(ctx context.Context) ([]Record, error) {
	rows, err := r.pool.Query(ctx, openItemsQuery)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return nil, fmt.Errorf("portfolio: query open items (%s): %w", pgErr.Code, err)
		}
		return nil, fmt.Errorf("portfolio: query open items: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec                                          Record
			accountType                                  *string
			company, cpCode, cpName                      *string
			docType, series, number, description         *string
			issueDate, dueDate                           *time.Time
			exchangeRate, local, functional, alternate   *float64
			original, pendingRatio                       *float64
			responsibleCode, responsibleName, service    *string
			docPath                                      *string
		)
		if err := rows.Scan(
			&accountType, &company, &cpCode, &cpName,
			&docType, &series, &number, &description,
			&issueDate, &dueDate, &exchangeRate, &rec.Currency,
			&local, &functional, &alternate,
			&original, &pendingRatio,
			&responsibleCode, &responsibleName, &service, &docPath,
		); err != nil {
			return nil, fmt.Errorf("portfolio: scan open item: %w", err)
		}
		rec.AccountType = AccountType(deref(accountType))
		rec.Company = deref(company)
		rec.CounterpartyCode = deref(cpCode)
		rec.CounterpartyName = deref(cpName)
		rec.DocType = deref(docType)
		rec.Series = deref(series)
		rec.Number = deref(number)
		rec.Description = deref(description)
		if issueDate != nil {
			rec.IssueDate = *issueDate
		}
		if dueDate != nil {
			rec.DueDate = *dueDate
		}
		rec.ExchangeRate = derefF(exchangeRate)
		rec.AmountLocal = derefF(local)
		rec.AmountFunctional = derefF(functional)
		rec.AmountAlternate = derefF(alternate)
		rec.AmountOriginal = derefF(original)
		rec.PendingRatio = derefF(pendingRatio)
		rec.ResponsibleCode = deref(responsibleCode)
		rec.ResponsibleName = deref(responsibleName)
		rec.Service = deref(service)
		rec.DocPath = deref(docPath)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("portfolio: read open items: %w", err)
	}
	return records, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefF(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
