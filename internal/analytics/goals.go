package analytics

import (
	"sort"
	"time"

	"finpanel/internal/core"
)

// GoalView is a savings goal with its progress at a point in time.
type GoalView struct {
	Goal          core.SavingsGoal `json:"goal"`
	ProgressPct   float64          `json:"progress_pct"`
	Remaining     core.Money       `json:"remaining"`
	DaysRemaining int              `json:"days_remaining"`
	Status        core.GoalStatus  `json:"status"`
}

// GoalsSummary lists every goal by deadline with aggregate savings.
type GoalsSummary struct {
	Goals       []GoalView `json:"goals"`
	Active      int        `json:"active"`
	Completed   int        `json:"completed"`
	Expired     int        `json:"expired"`
	TotalTarget core.Money `json:"total_target"`
	TotalSaved  core.Money `json:"total_saved"`
}

// GoalProgress evaluates g at now. Progress is 0 for a zero target. A goal
// whose savings reached the target is completed; an unfinished goal past its
// deadline is expired. Cancelled goals keep their status.
func GoalProgress(g core.SavingsGoal, now time.Time) GoalView {
	v := GoalView{Goal: g, Status: g.Status}
	if v.Status == "" {
		v.Status = core.GoalActive
	}
	v.ProgressPct = Round2(Percent(g.CurrentAmount, g.TargetAmount))
	if g.TargetAmount.GreaterThan(g.CurrentAmount) {
		v.Remaining = g.TargetAmount.Sub(g.CurrentAmount)
	}
	if !g.Deadline.IsZero() {
		v.DaysRemaining = g.Deadline.DaysUntil(now)
	}

	if v.Status == core.GoalCancelled {
		return v
	}
	switch {
	case g.TargetAmount.Cents > 0 && !g.TargetAmount.GreaterThan(g.CurrentAmount):
		v.Status = core.GoalCompleted
	case !g.Deadline.IsZero() && v.DaysRemaining < 0:
		v.Status = core.GoalExpired
	}
	return v
}

// GoalsOverview evaluates every goal and sorts them by deadline, undated
// goals last.
func GoalsOverview(goals []core.SavingsGoal, now time.Time) GoalsSummary {
	s := GoalsSummary{Goals: make([]GoalView, 0, len(goals))}
	for _, g := range goals {
		v := GoalProgress(g, now)
		s.Goals = append(s.Goals, v)
		switch v.Status {
		case core.GoalActive:
			s.Active++
		case core.GoalCompleted:
			s.Completed++
		case core.GoalExpired:
			s.Expired++
		}
		if v.Status != core.GoalCancelled {
			s.TotalTarget = s.TotalTarget.Add(g.TargetAmount)
			s.TotalSaved = s.TotalSaved.Add(g.CurrentAmount)
		}
	}
	sort.SliceStable(s.Goals, func(i, j int) bool {
		a, b := s.Goals[i].Goal.Deadline, s.Goals[j].Goal.Deadline
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		}
		return a.Before(b)
	})
	return s
}
