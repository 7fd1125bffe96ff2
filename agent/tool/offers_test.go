package tool

import (
	"context"
	"math"
	"testing"
)

func TestCalculateEMI(t *testing.T) {
	t.Parallel()

	// 500000 at 8.5% over 84 months, reducing balance.
	got := calculateEMI(500000, 8.5, 84)
	want := 7918.0
	if math.Abs(got-want) > 2 {
		t.Fatalf("emi = %v, want about %v", got, want)
	}

	if got := calculateEMI(120000, 0, 12); got != 10000 {
		t.Fatalf("zero-rate emi = %v, want 10000", got)
	}
	if got := calculateEMI(120000, 10, 0); got != 0 {
		t.Fatalf("zero-tenure emi = %v, want 0", got)
	}
}

func TestInterestRateGrading(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score      int
		employment string
		want       float64
	}{
		{780, "salaried", 7.5},
		{700, "salaried", 9.5},
		{600, "salaried", 12.5},
		{780, "self-employed", 8.5},
		{600, "business", 13.5},
	}
	for _, tc := range cases {
		if got := interestRate(tc.score, tc.employment); got != tc.want {
			t.Fatalf("interestRate(%d, %s) = %v, want %v", tc.score, tc.employment, got, tc.want)
		}
	}
}

func TestFetchOffers(t *testing.T) {
	t.Parallel()

	out, err := FetchOffers(context.Background(), map[string]any{
		"loan_amount":   85000.0,
		"tenure_months": 24.0,
		"user_id":       "APP-000001",
	})
	if err != nil || !out.Success {
		t.Fatalf("err=%v result=%+v", err, out)
	}
	data := out.Data.(map[string]any)
	offers := data["offers"].([]bankOffer)
	if len(offers) != 3 {
		t.Fatalf("want 3 bank offers, got %d", len(offers))
	}
	for _, o := range offers {
		if o.MonthlyEMI <= 0 {
			t.Fatalf("offer %s has no EMI", o.BankName)
		}
	}
	if data["user_id"] != "APP-000001" {
		t.Fatalf("quote not tied to application, data = %+v", data)
	}
}

func TestFetchOffersCreditScoreSteersRecommendedRate(t *testing.T) {
	t.Parallel()

	out, err := FetchOffers(context.Background(), map[string]any{
		"loan_amount":   85000.0,
		"tenure_months": 24.0,
		"credit_score":  780.0,
		"user_id":       "APP-000001",
	})
	if err != nil || !out.Success {
		t.Fatalf("err=%v result=%+v", err, out)
	}
	if rate := out.Data.(map[string]any)["recommended_rate"]; rate != 7.5 {
		t.Fatalf("recommended_rate = %v, want 7.5", rate)
	}
}

func TestFetchOffersRequiresApplication(t *testing.T) {
	t.Parallel()

	out, err := FetchOffers(context.Background(), map[string]any{
		"loan_amount":   85000.0,
		"tenure_months": 24.0,
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Success {
		t.Fatal("missing user_id must fail")
	}
}

func TestFetchOffersCustomRate(t *testing.T) {
	t.Parallel()

	out, err := FetchOffers(context.Background(), map[string]any{
		"loan_amount":   85000.0,
		"tenure_months": 24.0,
		"interest_rate": 7.25,
		"user_id":       "APP-000001",
	})
	if err != nil || !out.Success {
		t.Fatalf("err=%v result=%+v", err, out)
	}
	offers := out.Data.(map[string]any)["offers"].([]bankOffer)
	if len(offers) != 4 {
		t.Fatalf("want custom quote appended, got %d offers", len(offers))
	}
	if offers[3].InterestRate != 7.25 {
		t.Fatalf("custom quote rate = %v", offers[3].InterestRate)
	}
}

func TestFetchOffersRequiresAmount(t *testing.T) {
	t.Parallel()

	out, err := FetchOffers(context.Background(), map[string]any{
		"tenure_months": 24.0,
		"user_id":       "APP-000001",
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Success {
		t.Fatal("missing loan_amount must fail")
	}
}
