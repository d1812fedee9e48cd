package analytics

import (
	"sort"

	"finpanel/internal/core"
)

// InstallmentGroup is a detected series of bills sharing an issuer.
type InstallmentGroup struct {
	Issuer                string                   `json:"issuer"`
	TotalAmount           core.Money               `json:"total_amount"`
	TotalInstallments     int                      `json:"total_installments"`
	PaidInstallments      int                      `json:"paid_installments"`
	RemainingInstallments int                      `json:"remaining_installments"`
	NextDueDate           core.Date                `json:"next_due_date"`
	Members               []core.TransactionRecord `json:"members"`
}

// DetectInstallmentGroups groups bills by issuer and treats every issuer with
// more than one bill as an installment series. Bills with no issuer share the
// "unknown" group, which is eligible like any other.
//
// Groups appear in the order their issuer is first seen. Members are sorted by
// due date ascending with undated members last, keeping input order on ties.
// Grouping is by exact issuer name only, so coincidental repeats of a
// merchant are reported as a series.
func DetectInstallmentGroups(bills []core.TransactionRecord) []InstallmentGroup {
	var order []string
	byIssuer := make(map[string][]core.TransactionRecord)
	for _, b := range bills {
		k := keyOr(b.Issuer, UnknownIssuer)
		if _, ok := byIssuer[k]; !ok {
			order = append(order, k)
		}
		byIssuer[k] = append(byIssuer[k], b)
	}

	var groups []InstallmentGroup
	for _, issuer := range order {
		members := byIssuer[issuer]
		if len(members) < 2 {
			continue
		}
		groups = append(groups, buildInstallmentGroup(issuer, members))
	}
	return groups
}

func buildInstallmentGroup(issuer string, members []core.TransactionRecord) InstallmentGroup {
	g := InstallmentGroup{
		Issuer:            issuer,
		TotalInstallments: len(members),
		Members:           make([]core.TransactionRecord, len(members)),
	}
	copy(g.Members, members)

	for _, m := range members {
		g.TotalAmount = g.TotalAmount.Add(m.Amount)
		if m.Status == core.StatusPaid {
			g.PaidInstallments++
			continue
		}
		g.RemainingInstallments++
		if m.DueDate.IsZero() {
			continue
		}
		if g.NextDueDate.IsZero() || m.DueDate.Before(g.NextDueDate) {
			g.NextDueDate = m.DueDate
		}
	}

	sort.SliceStable(g.Members, func(i, j int) bool {
		a, b := g.Members[i].DueDate, g.Members[j].DueDate
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		}
		return a.Before(b)
	})
	return g
}
