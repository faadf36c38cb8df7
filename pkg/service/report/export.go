package report

import (
	"context"
	"fmt"

	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/amirasaad/branchledger/pkg/repository"
	transactionrepo "github.com/amirasaad/branchledger/pkg/repository/transaction"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet      = "Summary"
	transactionsSheet = "Transactions"
	dateLayout        = "2006-01-02"
)

// Export writes the report summary and the filtered transactions of p as an
// XLSX workbook.
func (s *Service) Export(ctx context.Context, p user.Principal, f Filter) ([]byte, error) {
	r, err := s.Report(ctx, p, f)
	if err != nil {
		return nil, err
	}
	var rows []*dto.TransactionRead
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txs, err := repository.Get[transactionrepo.Repository](uow)
		if err != nil {
			return err
		}
		rows, err = txs.List(ctx, dto.TransactionFilter{
			BranchID:           r.BranchID,
			StartDate:          &r.StartDate,
			EndDate:            &r.EndDate,
			ActiveBranchesOnly: true,
			Limit:              dto.MaxExportRows,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	buf, err := workbook(r, rows)
	if err != nil {
		s.logger.Error("Failed to write export", "error", err)
		return nil, err
	}
	s.logger.Info("Report exported", "rows", len(rows), "user_id", p.UserID)
	return buf, nil
}

func workbook(r *Report, rows []*dto.TransactionRead) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(transactionsSheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	money := func(d decimal.Decimal) string {
		return d.StringFixed(ledger.MaxFractionDigits)
	}
	summary := [][]any{
		{"Period", r.StartDate.Format(dateLayout) + " - " + r.EndDate.Format(dateLayout)},
		{"Total income", money(r.Totals.Income)},
		{"Total expenditure", money(r.Totals.Expenditure)},
		{"Net", money(r.Net)},
		{"Income transactions", r.Totals.IncomeCount},
		{"Expenditure transactions", r.Totals.ExpenditureCount},
		{"Average transaction", money(r.Average)},
		{"Current month income", money(r.CurrentMonthIncome)},
		{"Previous month income", money(r.PreviousMonthIncome)},
		{"Income growth (%)", r.Growth.StringFixed(2)},
	}
	for i, row := range summary {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColStyle(summarySheet, "A", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 28); err != nil {
		return nil, err
	}

	header := []any{"Date", "Branch", "Type", "Category", "Amount", "Description"}
	if err := setRow(f, transactionsSheet, 1, header); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(transactionsSheet, 1, 1, bold); err != nil {
		return nil, err
	}
	for i, t := range rows {
		line := []any{
			t.Date.Format(dateLayout),
			t.BranchName,
			string(t.Type),
			t.CategoryName,
			money(t.Amount),
			t.Description,
		}
		if err := setRow(f, transactionsSheet, i+2, line); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(transactionsSheet, "A", "F", 20); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
