// internal/services/sales_service.go
package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/store"
)

type SalesService struct {
	store *store.Store
}

type RepSales struct {
	Salesperson      models.UserSummary `json:"salesperson"`
	SaleCount        int                `json:"saleCount"`
	TotalAmount      float64            `json:"totalAmount"`
	CommissionAmount float64            `json:"commissionAmount"`
}

// SalesReport is the sales ledger as one account may see it.
type SalesReport struct {
	Sales            []models.SaleRecord `json:"sales"`
	TotalAmount      float64             `json:"totalAmount"`
	CommissionAmount float64             `json:"commissionAmount"`
	ByRep            []RepSales          `json:"byRep,omitempty"`
}

func NewSalesService(s *store.Store) *SalesService {
	return &SalesService{store: s}
}

// Report returns the sales of the current user's brand for a brand owner,
// or the sales a rep made. Customers have no sales data.
func (s *SalesService) Report() (*SalesReport, error) {
	var report *SalesReport
	var err error
	s.store.View(func(st *store.AppState) {
		me, uerr := currentUser(st)
		if uerr != nil {
			err = uerr
			return
		}
		if !me.Capabilities().CanViewSalesData {
			err = ErrForbidden
			return
		}

		report = &SalesReport{Sales: []models.SaleRecord{}}
		total, commission := decimal.Zero, decimal.Zero
		reps := make(map[string]*RepSales)
		repTotals := make(map[string][2]decimal.Decimal)
		var repOrder []string

		for _, sale := range st.Sales {
			switch me.Role {
			case models.RoleBrandOwner:
				if sale.BrandOwnerID != me.ID {
					continue
				}
			default:
				if sale.SalespersonID != me.ID {
					continue
				}
			}
			report.Sales = append(report.Sales, sale)
			total = total.Add(decimal.NewFromFloat(sale.TotalAmount))
			commission = commission.Add(decimal.NewFromFloat(sale.CommissionAmount))

			if me.Role != models.RoleBrandOwner || sale.SalespersonID == "" || sale.SalespersonID == me.ID {
				continue
			}
			rep, ok := reps[sale.SalespersonID]
			if !ok {
				rep = &RepSales{Salesperson: summaryOf(st, sale.SalespersonID)}
				reps[sale.SalespersonID] = rep
				repOrder = append(repOrder, sale.SalespersonID)
			}
			rep.SaleCount++
			t := repTotals[sale.SalespersonID]
			t[0] = t[0].Add(decimal.NewFromFloat(sale.TotalAmount))
			t[1] = t[1].Add(decimal.NewFromFloat(sale.CommissionAmount))
			repTotals[sale.SalespersonID] = t
		}

		report.TotalAmount = total.Round(2).InexactFloat64()
		report.CommissionAmount = commission.Round(2).InexactFloat64()
		for _, id := range repOrder {
			rep := reps[id]
			rep.TotalAmount = repTotals[id][0].Round(2).InexactFloat64()
			rep.CommissionAmount = repTotals[id][1].Round(2).InexactFloat64()
			report.ByRep = append(report.ByRep, *rep)
		}
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(report.Sales, func(i, j int) bool {
		return report.Sales[i].Timestamp.After(report.Sales[j].Timestamp)
	})
	return report, nil
}
