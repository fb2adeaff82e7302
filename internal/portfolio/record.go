// Package portfolio implements the cross-filtered AR/AP portfolio report:
// global filtering, per-facet drill selections, grouping/aggregation and the
// KPI totals consumed by the dashboard and export layers.
package portfolio

import (
	"strconv"
	"strings"
	"time"
)

// AccountType discriminates receivable from payable documents.
type AccountType string

const (
	AccountReceivable AccountType = "receivable"
	AccountPayable    AccountType = "payable"
)

// Field identifies a filterable or groupable record attribute.
type Field string

const (
	FieldCompany          Field = "company"
	FieldAccountType      Field = "account_type"
	FieldCounterpartyCode Field = "counterparty_code"
	FieldCounterparty     Field = "counterparty"
	FieldDocType          Field = "doc_type"
	FieldSeries           Field = "series"
	FieldNumber           Field = "number"
	FieldDescription      Field = "description"
	FieldIssueDate        Field = "issue_date"
	FieldDueDate          Field = "due_date"
	FieldExchangeRate     Field = "exchange_rate"
	FieldCurrency         Field = "currency"
	FieldResponsibleCode  Field = "responsible_code"
	FieldResponsible      Field = "responsible"
	FieldService          Field = "service"
)

// Record is one open AR/AP document. Records are immutable once loaded; a
// refresh replaces the whole baseline set.
type Record struct {
	AccountType      AccountType `json:"account_type"`
	Company          string      `json:"company"`
	CounterpartyCode string      `json:"counterparty_code"`
	CounterpartyName string      `json:"counterparty_name"`
	DocType          string      `json:"doc_type"`
	Series           string      `json:"series"`
	Number           string      `json:"number"`
	Description      string      `json:"description"`
	IssueDate        time.Time   `json:"issue_date"`
	DueDate          time.Time   `json:"due_date"`
	ExchangeRate     float64     `json:"exchange_rate"`
	Currency         string      `json:"currency"`
	AmountLocal      float64     `json:"amount_local"`
	AmountFunctional float64     `json:"amount_functional"`
	AmountAlternate  float64     `json:"amount_alternate"`
	AmountOriginal   float64     `json:"amount_original"`
	PendingRatio     float64     `json:"pending_ratio"`
	ResponsibleCode  string      `json:"responsible_code"`
	ResponsibleName  string      `json:"responsible_name"`
	Service          string      `json:"service"`
	DocPath          string      `json:"doc_path,omitempty"`
}

// PendingAmount is the outstanding part of the original amount.
func (r Record) PendingAmount() float64 {
	return r.AmountOriginal * r.PendingRatio
}

// FieldValue returns the record attribute coerced to a trimmed string. Zero
// dates render as empty strings so absent values group together.
func (r Record) FieldValue(f Field) string {
	switch f {
	case FieldCompany:
		return strings.TrimSpace(r.Company)
	case FieldAccountType:
		return strings.TrimSpace(string(r.AccountType))
	case FieldCounterpartyCode:
		return strings.TrimSpace(r.CounterpartyCode)
	case FieldCounterparty:
		return strings.TrimSpace(r.CounterpartyName)
	case FieldDocType:
		return strings.TrimSpace(r.DocType)
	case FieldSeries:
		return strings.TrimSpace(r.Series)
	case FieldNumber:
		return strings.TrimSpace(r.Number)
	case FieldDescription:
		return strings.TrimSpace(r.Description)
	case FieldIssueDate:
		return formatDate(r.IssueDate)
	case FieldDueDate:
		return formatDate(r.DueDate)
	case FieldExchangeRate:
		return strconv.FormatFloat(r.ExchangeRate, 'f', -1, 64)
	case FieldCurrency:
		return strings.TrimSpace(r.Currency)
	case FieldResponsibleCode:
		return strings.TrimSpace(r.ResponsibleCode)
	case FieldResponsible:
		return strings.TrimSpace(r.ResponsibleName)
	case FieldService:
		return strings.TrimSpace(r.Service)
	}
	return ""
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
