package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"finpanel/internal/core"
)

var hundred = decimal.NewFromInt(100)

// Holding is the valuation of one investment record.
type Holding struct {
	Record        core.InvestmentRecord `json:"record"`
	Current       core.Money            `json:"current"`
	ProfitLoss    core.Money            `json:"profit_loss"`
	ProfitLossPct float64               `json:"profit_loss_pct"`
	Open          bool                  `json:"open"`
}

// PctLabel renders the percentage rounded to two decimals, e.g. "20.00".
func (h Holding) PctLabel() string {
	return decimal.NewFromFloat(h.ProfitLossPct).StringFixed(2)
}

// TypeSummary aggregates the holdings of one investment type.
type TypeSummary struct {
	Type      core.InvestmentType `json:"type"`
	Label     string              `json:"label"`
	Invested  core.Money          `json:"invested"`
	Current   core.Money          `json:"current"`
	Count     int                 `json:"count"`
	Profit    core.Money          `json:"profit"`
	ProfitPct float64             `json:"profit_pct"`
	Rank      int                 `json:"rank"`
}

// Portfolio is the rollup of every investment record.
type Portfolio struct {
	Invested      core.Money    `json:"invested"`
	Current       core.Money    `json:"current"`
	ProfitLoss    core.Money    `json:"profit_loss"`
	ProfitLossPct float64       `json:"profit_loss_pct"`
	Count         int           `json:"count"`
	OpenCount     int           `json:"open_count"`
	ByType        []TypeSummary `json:"by_type"`
	Holdings      []Holding     `json:"holdings"`
}

// Valuate computes the effective value and profit of one record. A missing
// current value is treated as no change.
func Valuate(r core.InvestmentRecord) Holding {
	current := r.EffectiveCurrentValue()
	pl := current.Sub(r.AmountInvested)
	return Holding{
		Record:        r,
		Current:       current,
		ProfitLoss:    pl,
		ProfitLossPct: Percent(pl, r.AmountInvested),
		Open:          r.Open(),
	}
}

// Percent returns part/whole*100, or 0 when whole is not positive.
func Percent(part, whole core.Money) float64 {
	if whole.Cents <= 0 {
		return 0
	}
	return part.Decimal().Mul(hundred).Div(whole.Decimal()).InexactFloat64()
}

// Round2 rounds a percentage to two decimals.
func Round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

// PortfolioRollup groups investments by type, sorted by current value
// descending, and totals the whole collection. Nil input yields zero totals.
func PortfolioRollup(investments []core.InvestmentRecord) Portfolio {
	p := Portfolio{Holdings: make([]Holding, 0, len(investments))}
	index := make(map[core.InvestmentType]int)

	for _, r := range investments {
		h := Valuate(r)
		p.Holdings = append(p.Holdings, h)
		p.Invested = p.Invested.Add(r.AmountInvested)
		p.Current = p.Current.Add(h.Current)
		p.Count++
		if h.Open {
			p.OpenCount++
		}

		t := r.Type
		if t == "" {
			t = core.Other
		}
		i, ok := index[t]
		if !ok {
			i = len(p.ByType)
			index[t] = i
			p.ByType = append(p.ByType, TypeSummary{Type: t, Label: t.Label()})
		}
		s := &p.ByType[i]
		s.Invested = s.Invested.Add(r.AmountInvested)
		s.Current = s.Current.Add(h.Current)
		s.Count++
	}

	for i := range p.ByType {
		s := &p.ByType[i]
		s.Profit = s.Current.Sub(s.Invested)
		s.ProfitPct = Percent(s.Profit, s.Invested)
	}
	sort.SliceStable(p.ByType, func(i, j int) bool {
		return p.ByType[i].Current.Cents > p.ByType[j].Current.Cents
	})
	for i := range p.ByType {
		p.ByType[i].Rank = i
	}

	p.ProfitLoss = p.Current.Sub(p.Invested)
	p.ProfitLossPct = Percent(p.ProfitLoss, p.Invested)
	return p
}
