package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	Expense TxType = "expense"
	Income  TxType = "income"
)

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusScheduled Status = "scheduled"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

const (
	Stock       InvestmentType = "stock"
	FixedIncome InvestmentType = "fixed_income"
	Fund        InvestmentType = "fund"
	Crypto      InvestmentType = "crypto"
	RealEstate  InvestmentType = "real_estate"
	Other       InvestmentType = "other"
)

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalExpired   GoalStatus = "expired"
	GoalCancelled GoalStatus = "cancelled"
)

type (
	TxType         string
	Status         string
	InvestmentType string
	GoalStatus     string

	// TransactionRecord is one bill, expense or income entry as supplied by
	// the ledger. Amount is never negative.
	TransactionRecord struct {
		ID         string   `json:"id"`
		Type       TxType   `json:"type"`
		IsBill     bool     `json:"is_bill"`
		Issuer     string   `json:"issuer,omitempty"`
		Amount     Money    `json:"amount"`
		DueDate    Date     `json:"due_date"`
		Category   string   `json:"category,omitempty"`
		Status     Status   `json:"status"`
		Confidence *float64 `json:"confidence,omitempty"` // OCR-ingested bills only
	}

	// InvestmentRecord is one holding. A nil CurrentValue means the ledger
	// has no valuation and the invested amount is assumed.
	InvestmentRecord struct {
		ID             string         `json:"id"`
		Name           string         `json:"name"`
		Type           InvestmentType `json:"type"`
		AmountInvested Money          `json:"amount_invested"`
		CurrentValue   *Money         `json:"current_value"`
		PurchaseDate   Date           `json:"purchase_date"`
		SellDate       Date           `json:"sell_date"`
	}

	SavingsGoal struct {
		ID            string     `json:"id"`
		Name          string     `json:"name"`
		Description   string     `json:"description,omitempty"`
		TargetAmount  Money      `json:"target_amount"`
		CurrentAmount Money      `json:"current_amount"`
		Deadline      Date       `json:"deadline"`
		Status        GoalStatus `json:"status"`
	}
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusScheduled, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// Realized reports whether the status counts as money that actually moved.
func (s Status) Realized() bool {
	return s == StatusPaid || s == StatusConfirmed
}

// ParseTxType maps free-form input to a TxType, defaulting to Expense.
func ParseTxType(s string) TxType {
	if strings.EqualFold(strings.TrimSpace(s), string(Income)) {
		return Income
	}
	return Expense
}

// ParseStatus maps free-form input to a Status, defaulting to pending.
func ParseStatus(s string) Status {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == "canceled" {
		return StatusCancelled
	}
	if !st.Valid() {
		return StatusPending
	}
	return st
}

// ParseInvestmentType accepts the snake_case wire form as well as camelCase
// ("fixedIncome"); unknown values map to Other.
func ParseInvestmentType(s string) InvestmentType {
	norm := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.TrimSpace(s)))
	switch norm {
	case "stock", "stocks":
		return Stock
	case "fixedincome":
		return FixedIncome
	case "fund", "funds":
		return Fund
	case "crypto":
		return Crypto
	case "realestate":
		return RealEstate
	}
	return Other
}

// Label is the human-readable type name.
func (t InvestmentType) Label() string {
	switch t {
	case Stock:
		return "Stocks"
	case FixedIncome:
		return "Fixed income"
	case Fund:
		return "Funds"
	case Crypto:
		return "Crypto"
	case RealEstate:
		return "Real estate"
	}
	return "Other"
}

// ParseGoalStatus maps free-form input to a GoalStatus, defaulting to active.
func ParseGoalStatus(s string) GoalStatus {
	switch gs := GoalStatus(strings.ToLower(strings.TrimSpace(s))); gs {
	case GoalActive, GoalCompleted, GoalExpired, GoalCancelled:
		return gs
	}
	return GoalActive
}

// EffectiveCurrentValue is CurrentValue when present, else AmountInvested.
func (r InvestmentRecord) EffectiveCurrentValue() Money {
	if r.CurrentValue != nil {
		return *r.CurrentValue
	}
	return r.AmountInvested
}

// Open reports whether the holding has not been sold.
func (r InvestmentRecord) Open() bool {
	return r.SellDate.IsZero()
}

// wireText decodes a JSON string as is; any other JSON value becomes "".
type wireText string

func (t *wireText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = ""
		return nil
	}
	*t = wireText(s)
	return nil
}

func (t wireText) trimmed() string { return strings.TrimSpace(string(t)) }

type transactionWire struct {
	ID         json.RawMessage `json:"id"`
	Type       wireText        `json:"type"`
	IsBill     any             `json:"is_bill"`
	Issuer     wireText        `json:"issuer"`
	Amount     Money           `json:"amount"`
	DueDate    Date            `json:"due_date"`
	Category   wireText        `json:"category"`
	Status     wireText        `json:"status"`
	Confidence any             `json:"confidence"`
}

// UnmarshalJSON decodes a ledger record leniently: malformed fields degrade
// to their defaults instead of failing the whole collection.
func (r *TransactionRecord) UnmarshalJSON(data []byte) error {
	var w transactionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = TransactionRecord{
		ID:       idString(w.ID),
		Type:     ParseTxType(string(w.Type)),
		IsBill:   truthy(w.IsBill),
		Issuer:   w.Issuer.trimmed(),
		Amount:   w.Amount,
		DueDate:  w.DueDate,
		Category: w.Category.trimmed(),
		Status:   ParseStatus(string(w.Status)),
	}
	if c, ok := confidence(w.Confidence); ok {
		r.Confidence = &c
	}
	return nil
}

type investmentWire struct {
	ID             json.RawMessage `json:"id"`
	Name           wireText        `json:"name"`
	Type           wireText        `json:"type"`
	AmountInvested Money           `json:"amount_invested"`
	CurrentValue   json.RawMessage `json:"current_value"`
	PurchaseDate   Date            `json:"purchase_date"`
	SellDate       Date            `json:"sell_date"`
}

func (r *InvestmentRecord) UnmarshalJSON(data []byte) error {
	var w investmentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = InvestmentRecord{
		ID:             idString(w.ID),
		Name:           string(w.Name),
		Type:           ParseInvestmentType(string(w.Type)),
		AmountInvested: w.AmountInvested,
		PurchaseDate:   w.PurchaseDate,
		SellDate:       w.SellDate,
	}
	if present(w.CurrentValue) {
		var cv Money
		_ = cv.UnmarshalJSON(w.CurrentValue)
		r.CurrentValue = &cv
	}
	return nil
}

type goalWire struct {
	ID            json.RawMessage `json:"id"`
	Name          wireText        `json:"name"`
	Description   wireText        `json:"description"`
	TargetAmount  Money           `json:"target_amount"`
	CurrentAmount Money           `json:"current_amount"`
	Deadline      Date            `json:"deadline"`
	Status        wireText        `json:"status"`
}

func (g *SavingsGoal) UnmarshalJSON(data []byte) error {
	var w goalWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*g = SavingsGoal{
		ID:            idString(w.ID),
		Name:          string(w.Name),
		Description:   string(w.Description),
		TargetAmount:  w.TargetAmount,
		CurrentAmount: w.CurrentAmount,
		Deadline:      w.Deadline,
		Status:        ParseGoalStatus(string(w.Status)),
	}
	return nil
}

func present(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null"
}

// idString accepts numeric or string identifiers.
func idString(raw json.RawMessage) string {
	if !present(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		ok, _ := strconv.ParseBool(strings.TrimSpace(b))
		return ok
	case float64:
		return b != 0
	}
	return false
}

func confidence(v any) (float64, bool) {
	var f float64
	switch c := v.(type) {
	case float64:
		f = c
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || f < 0 || f > 1 {
		return 0, false
	}
	return f, true
}
