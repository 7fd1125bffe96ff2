package tool

import (
	"context"
	"fmt"
	"math"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
)

type bankOffer struct {
	BankName      string   `json:"bank_name"`
	InterestRate  float64  `json:"interest_rate"`
	ProcessingFee string   `json:"processing_fee"`
	MaxTenure     string   `json:"max_tenure"`
	LoanToValue   string   `json:"loan_to_value"`
	Eligibility   string   `json:"eligibility"`
	MonthlyEMI    float64  `json:"monthly_emi"`
	Features      []string `json:"features"`
}

// FetchOffers quotes the partner bank offers for the requested principal and
// tenure. When the caller states a preferred rate, a matching custom quote is
// appended.
func FetchOffers(_ context.Context, data map[string]any) (contractx.ToolResult, error) {
	principal, ok := numberArg(data, "loan_amount")
	if !ok || principal <= 0 {
		return contractx.ToolResult{
			Success: false,
			Error:   "Loan amount is required to fetch offers",
		}, nil
	}
	tenure, ok := numberArg(data, "tenure_months")
	if !ok || tenure <= 0 {
		return contractx.ToolResult{
			Success: false,
			Error:   "Tenure is required to fetch offers",
		}, nil
	}
	months := int(tenure)

	userID := stringArg(data, "user_id")
	if userID == "" {
		return contractx.ToolResult{
			Success: false,
			Error:   "A saved application is required to fetch offers",
		}, nil
	}

	offers := []bankOffer{
		{
			BankName:      "SBI Auto Loan",
			InterestRate:  8.50,
			ProcessingFee: "₹5,000",
			MaxTenure:     "7 years",
			LoanToValue:   "90%",
			Eligibility:   "Approved",
			MonthlyEMI:    calculateEMI(principal, 8.50, months),
			Features:      []string{"Quick approval", "Minimal documentation", "Pre-approved offers"},
		},
		{
			BankName:      "HDFC Auto Loan",
			InterestRate:  8.75,
			ProcessingFee: "₹3,500",
			MaxTenure:     "7 years",
			LoanToValue:   "85%",
			Eligibility:   "Approved",
			MonthlyEMI:    calculateEMI(principal, 8.75, months),
			Features:      []string{"Zero pre-closure charges", "Flexible repayment", "Digital processing"},
		},
		{
			BankName:      "ICICI Auto Loan",
			InterestRate:  9.00,
			ProcessingFee: "₹4,000",
			MaxTenure:     "6 years",
			LoanToValue:   "80%",
			Eligibility:   "Under Review",
			MonthlyEMI:    calculateEMI(principal, 9.00, months),
			Features:      []string{"Instant approval", "Competitive rates", "Easy documentation"},
		},
	}

	if rate, ok := numberArg(data, "interest_rate"); ok && rate > 0 {
		offers = append(offers, bankOffer{
			BankName:      "Custom Quote",
			InterestRate:  rate,
			ProcessingFee: "₹2,500",
			MaxTenure:     fmt.Sprintf("%d months", months),
			LoanToValue:   "80%",
			Eligibility:   "Subject to review",
			MonthlyEMI:    calculateEMI(principal, rate, months),
			Features:      []string{"Rate as requested"},
		})
	}

	creditScore := 650
	if cs, ok := numberArg(data, "credit_score"); ok && cs > 0 {
		creditScore = int(cs)
	}

	return contractx.ToolResult{
		Success: true,
		Message: fmt.Sprintf("Found %d loan offers for your requirement", len(offers)),
		Data: map[string]any{
			"user_id":          userID,
			"offers":           offers,
			"total_offers":     len(offers),
			"recommended_rate": interestRate(creditScore, "salaried"),
		},
	}, nil
}

// calculateEMI computes the standard reducing-balance monthly installment,
// rounded to whole currency units.
func calculateEMI(principal, annualRate float64, tenureMonths int) float64 {
	if tenureMonths <= 0 {
		return 0
	}
	monthlyRate := annualRate / 100 / 12
	if monthlyRate == 0 {
		return math.Round(principal / float64(tenureMonths))
	}
	factor := math.Pow(1+monthlyRate, float64(tenureMonths))
	emi := principal * monthlyRate * factor / (factor - 1)
	return math.Round(emi)
}

// interestRate grades the annual rate by credit score; self-employed
// applicants pay a one point premium.
func interestRate(creditScore int, employmentType string) float64 {
	var rate float64
	switch {
	case creditScore >= 750:
		rate = 7.5
	case creditScore >= 650:
		rate = 9.5
	default:
		rate = 12.5
	}
	if employmentType == "self-employed" || employmentType == "business" {
		rate += 1.0
	}
	return rate
}
