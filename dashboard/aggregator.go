package dashboard

import (
	"time"

	"github.com/balanoilmart/ledger_backend/models"
	"github.com/balanoilmart/ledger_backend/sales"
	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/shopspring/decimal"
)

// FamilyTotals sums one account family. Balance is summed from each account's derived balance.
type FamilyTotals struct {
	Accounts    int             `json:"accounts"`
	CreditGiven decimal.Decimal `json:"creditGiven"`
	PaidAmount  decimal.Decimal `json:"paidAmount"`
	Balance     decimal.Decimal `json:"balance"`
}

type Summary struct {
	Payables    FamilyTotals `json:"payables"`
	Receivables FamilyTotals `json:"receivables"`

	OutstandingReceivables decimal.Decimal `json:"outstandingReceivables"`
	OutstandingPayables    decimal.Decimal `json:"outstandingPayables"`
	MonthToDateSales       decimal.Decimal `json:"monthToDateSales"`
	CreditsGiven           decimal.Decimal `json:"creditsGiven"`
	CreditsReceived        decimal.Decimal `json:"creditsReceived"`

	TotalSales                  decimal.Decimal      `json:"totalSales"`
	MonthToDateCustomerPayments decimal.Decimal      `json:"monthToDateCustomerPayments"`
	SalesByProduct              []sales.ProductShare `json:"salesByProduct"`
	AsOf                        time.Time            `json:"asOf"`
}

func SumFamily(accounts []*models.LedgerAccount) FamilyTotals {
	totals := FamilyTotals{CreditGiven: decimal.Zero, PaidAmount: decimal.Zero, Balance: decimal.Zero}
	for _, a := range accounts {
		if a == nil {
			continue
		}
		totals.Accounts++
		totals.CreditGiven = totals.CreditGiven.Add(a.CreditGiven)
		totals.PaidAmount = totals.PaidAmount.Add(a.PaidAmount)
		totals.Balance = totals.Balance.Add(a.Balance())
	}
	return totals
}

// PaymentsSince sums payment history entries dated on or after since.
func PaymentsSince(accounts []*models.LedgerAccount, since time.Time) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range accounts {
		if a == nil {
			continue
		}
		for _, p := range a.PaymentHistory {
			if !p.Date.Before(since) {
				sum = sum.Add(p.Amount)
			}
		}
	}
	return sum
}

// Summarize produces the dashboard headline figures. Calendar boundaries follow reference's location.
func Summarize(manufacturers []*models.LedgerAccount, customers []*models.LedgerAccount, saleEntries []*models.Sale, reference time.Time) Summary {
	payables := SumFamily(manufacturers)
	receivables := SumFamily(customers)
	return Summary{
		Payables:                    payables,
		Receivables:                 receivables,
		OutstandingReceivables:      receivables.Balance,
		OutstandingPayables:         payables.Balance,
		MonthToDateSales:            sales.MonthToDateTotal(saleEntries, reference),
		CreditsGiven:                receivables.CreditGiven,
		CreditsReceived:             payables.CreditGiven,
		TotalSales:                  sales.Total(saleEntries),
		MonthToDateCustomerPayments: PaymentsSince(customers, utils.StartOfMonth(reference)),
		SalesByProduct:              sales.Distribution(saleEntries),
		AsOf:                        reference,
	}
}
