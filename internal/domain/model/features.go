package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Features is the aggregated per-customer attribute row supplied by the
// ingestion pipeline. Every field is nullable; empty strings mean absent.
type Features struct {
	TotalAmount     decimal.NullDecimal
	TotalBalance    decimal.NullDecimal
	TechnicalEquity decimal.NullDecimal

	Operations         *int
	ActiveOperations   *int
	AvgTermMonths      *float64
	AvgRate            *float64
	MaxTenureDays      *int
	DaysToLastMaturity *int
	DaysOverdue        *int

	Office        string
	CreditType    string
	GuaranteeType string
	Sex           string
}

// Model input column names.
const (
	ColOperations         = "n_operations"
	ColActiveOperations   = "n_active"
	ColTotalAmount        = "total_amount"
	ColTotalBalance       = "total_balance"
	ColAvgTerm            = "avg_term"
	ColAvgRate            = "avg_rate"
	ColTechnicalEquity    = "technical_equity"
	ColMaxTenureDays      = "max_tenure_days"
	ColDaysToLastMaturity = "days_to_last_maturity"
	ColOfficeMode         = "office_mode"
	ColCreditTypeMode     = "credit_type_mode"
	ColGuaranteeMode      = "guarantee_mode"
	ColSexMode            = "sex_mode"
)

// FeatureRow is one model input row keyed by column name. Numeric values are
// float64, categorical values are string, and nil marks a missing value.
type FeatureRow map[string]any

// ScoringInput is what the scoring orchestrator needs from a customer: the
// model row plus the two classification inputs that never reach the model.
type ScoringInput struct {
	Row         FeatureRow
	DaysOverdue *int
	CreditType  string
}

// Row builds the model input row. Days overdue and the contrast rating are
// never part of it.
func (f Features) Row() FeatureRow {
	return FeatureRow{
		ColOperations:         intValue(f.Operations),
		ColActiveOperations:   intValue(f.ActiveOperations),
		ColTotalAmount:        decimalValue(f.TotalAmount),
		ColTotalBalance:       decimalValue(f.TotalBalance),
		ColAvgTerm:            floatValue(f.AvgTermMonths),
		ColAvgRate:            floatValue(f.AvgRate),
		ColTechnicalEquity:    decimalValue(f.TechnicalEquity),
		ColMaxTenureDays:      intValue(f.MaxTenureDays),
		ColDaysToLastMaturity: intValue(f.DaysToLastMaturity),
		ColOfficeMode:         stringValue(f.Office),
		ColCreditTypeMode:     stringValue(f.CreditType),
		ColGuaranteeMode:      stringValue(f.GuaranteeType),
		ColSexMode:            stringValue(f.Sex),
	}
}

// FeaturePatch is a partial update of Features. Nil fields are left as they are.
type FeaturePatch struct {
	TotalAmount        *decimal.Decimal
	TotalBalance       *decimal.Decimal
	TechnicalEquity    *decimal.Decimal
	Operations         *int
	ActiveOperations   *int
	AvgTermMonths      *float64
	AvgRate            *float64
	MaxTenureDays      *int
	DaysToLastMaturity *int
	DaysOverdue        *int
	Office             *string
	CreditType         *string
	GuaranteeType      *string
	Sex                *string
}

// Apply returns f with the patch applied.
func (p FeaturePatch) Apply(f Features) Features {
	if p.TotalAmount != nil {
		f.TotalAmount = decimal.NewNullDecimal(*p.TotalAmount)
	}
	if p.TotalBalance != nil {
		f.TotalBalance = decimal.NewNullDecimal(*p.TotalBalance)
	}
	if p.TechnicalEquity != nil {
		f.TechnicalEquity = decimal.NewNullDecimal(*p.TechnicalEquity)
	}
	setPtr(&f.Operations, p.Operations)
	setPtr(&f.ActiveOperations, p.ActiveOperations)
	setPtr(&f.AvgTermMonths, p.AvgTermMonths)
	setPtr(&f.AvgRate, p.AvgRate)
	setPtr(&f.MaxTenureDays, p.MaxTenureDays)
	setPtr(&f.DaysToLastMaturity, p.DaysToLastMaturity)
	setPtr(&f.DaysOverdue, p.DaysOverdue)
	if p.Office != nil {
		f.Office = strings.TrimSpace(*p.Office)
	}
	if p.CreditType != nil {
		f.CreditType = strings.TrimSpace(*p.CreditType)
	}
	if p.GuaranteeType != nil {
		f.GuaranteeType = strings.TrimSpace(*p.GuaranteeType)
	}
	if p.Sex != nil {
		f.Sex = strings.TrimSpace(*p.Sex)
	}
	return f
}

// IsEmpty reports whether the patch changes nothing.
func (p FeaturePatch) IsEmpty() bool {
	return p == FeaturePatch{}
}

func setPtr[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func intValue(v *int) any {
	if v == nil {
		return nil
	}
	return float64(*v)
}

func floatValue(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func decimalValue(v decimal.NullDecimal) any {
	if !v.Valid {
		return nil
	}
	return v.Decimal.InexactFloat64()
}

func stringValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

// PatchFromFeatures builds a patch that sets every non-null field of f.
func PatchFromFeatures(f Features) FeaturePatch {
	var p FeaturePatch
	if f.TotalAmount.Valid {
		p.TotalAmount = &f.TotalAmount.Decimal
	}
	if f.TotalBalance.Valid {
		p.TotalBalance = &f.TotalBalance.Decimal
	}
	if f.TechnicalEquity.Valid {
		p.TechnicalEquity = &f.TechnicalEquity.Decimal
	}
	p.Operations = f.Operations
	p.ActiveOperations = f.ActiveOperations
	p.AvgTermMonths = f.AvgTermMonths
	p.AvgRate = f.AvgRate
	p.MaxTenureDays = f.MaxTenureDays
	p.DaysToLastMaturity = f.DaysToLastMaturity
	p.DaysOverdue = f.DaysOverdue
	if f.Office != "" {
		p.Office = &f.Office
	}
	if f.CreditType != "" {
		p.CreditType = &f.CreditType
	}
	if f.GuaranteeType != "" {
		p.GuaranteeType = &f.GuaranteeType
	}
	if f.Sex != "" {
		p.Sex = &f.Sex
	}
	return p
}
