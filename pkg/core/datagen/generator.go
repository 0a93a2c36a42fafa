// Package datagen produces plausible synthetic customer financial histories
// for seeding the store and for test fixtures. The exact distribution is not
// a contract; only the record shape and the valid ranges are.
package datagen

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"creditagent/pkg/models"
)

const (
	creditScoreMin = 300
	creditScoreMax = 850

	incomeFloor   = 2000000
	expensesFloor = 1000000
)

// profile holds the base ranges a risk profile starts from.
type profile struct {
	creditScoreMin, creditScoreMax   int
	incomeMin, incomeMax             int
	expenseRatioMin, expenseRatioMax float64
	savingsRatioMin, savingsRatioMax float64
	debtRatioMin, debtRatioMax       float64
	overdueProb                      float64
}

var profiles = map[models.ProfileType]profile{
	models.ProfileAverage: {
		creditScoreMin: 650, creditScoreMax: 750,
		incomeMin: 3000000, incomeMax: 6000000,
		expenseRatioMin: 0.4, expenseRatioMax: 0.7,
		savingsRatioMin: 0.1, savingsRatioMax: 0.3,
		debtRatioMin: 1, debtRatioMax: 2.5,
		overdueProb: 0.15,
	},
	models.ProfileHighRisk: {
		creditScoreMin: 500, creditScoreMax: 650,
		incomeMin: 2000000, incomeMax: 4000000,
		expenseRatioMin: 0.6, expenseRatioMax: 0.9,
		savingsRatioMin: 0.05, savingsRatioMax: 0.15,
		debtRatioMin: 2, debtRatioMax: 4,
		overdueProb: 0.3,
	},
	models.ProfilePremium: {
		creditScoreMin: 750, creditScoreMax: 850,
		incomeMin: 7000000, incomeMax: 15000000,
		expenseRatioMin: 0.3, expenseRatioMax: 0.6,
		savingsRatioMin: 0.2, savingsRatioMax: 0.4,
		debtRatioMin: 0.5, debtRatioMax: 1.5,
		overdueProb: 0.05,
	},
}

var (
	familyNames = []string{"김", "이", "박", "최", "정", "강", "조", "윤", "장", "임"}
	givenNames  = []string{
		"민준", "서준", "예준", "도윤", "시우", "주원", "지호", "지훈", "준서", "준우",
		"서연", "서윤", "지우", "서현", "민서", "하은", "하윤", "윤서", "지민", "채원",
	}
)

func randBetween(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func randIntBetween(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromInt(int64(math.Round(math.Max(v, 0))))
}

// GenerateSeries builds one customer's monthly history by random walk from
// the profile's base ranges. Credit score stays in [300, 850]; monetary
// values never go negative. Deterministic for a seeded rng.
func GenerateSeries(rng *rand.Rand, customerID, name string, months int, profileType models.ProfileType) *models.CustomerTimeSeries {
	p, ok := profiles[profileType]
	if !ok {
		profileType = models.ProfileAverage
		p = profiles[profileType]
	}

	creditScore := randIntBetween(rng, p.creditScoreMin, p.creditScoreMax)
	income := float64(randIntBetween(rng, p.incomeMin, p.incomeMax))
	expenses := income * randBetween(rng, p.expenseRatioMin, p.expenseRatioMax)
	savings := income * randBetween(rng, p.savingsRatioMin, p.savingsRatioMax)
	debt := income * randBetween(rng, p.debtRatioMin, p.debtRatioMax)

	start := models.MonthOf(time.Now()).AddDate(0, -months, 0)
	monthly := make([]models.MonthlyRecord, 0, months)

	for i := 0; i < months; i++ {
		current := start.AddDate(0, i, 0)

		creditScore = clampInt(creditScore+randIntBetween(rng, -10, 15), creditScoreMin, creditScoreMax)
		income = math.Max(incomeFloor, income*(1+randBetween(rng, -0.03, 0.05)))
		expenses = math.Max(expensesFloor, expenses*(1+randBetween(rng, -0.05, 0.08)))
		savings = math.Max(0, savings*(1+randBetween(rng, -0.1, 0.15)))
		debt = math.Max(0, debt*(1+randBetween(rng, -0.03, 0.04)))
		loanPayments := debt * randBetween(rng, 0.02, 0.05)

		overdue := 0
		if rng.Float64() < p.overdueProb {
			overdue = randIntBetween(rng, 1, 2)
			// An overdue event knocks the score down further.
			creditScore = clampInt(creditScore-randIntBetween(rng, 5, 15), creditScoreMin, creditScoreMax)
		}

		monthly = append(monthly, models.MonthlyRecord{
			Month:           models.MonthOf(current),
			CreditScore:     creditScore,
			Income:          money(income),
			Expenses:        money(expenses),
			Savings:         money(savings),
			Debt:            money(debt),
			LoanPayments:    money(loanPayments),
			OverduePayments: overdue,
		})
	}

	return &models.CustomerTimeSeries{
		CustomerID:  customerID,
		Name:        name,
		ProfileType: profileType,
		MonthlyData: monthly,
	}
}

// DefaultDistribution is the profile mix used when the caller does not
// specify one.
func DefaultDistribution() map[models.ProfileType]float64 {
	return map[models.ProfileType]float64{
		models.ProfileAverage:  0.6,
		models.ProfileHighRisk: 0.2,
		models.ProfilePremium:  0.2,
	}
}

// GenerateCustomers builds count customers with sequential CUST1xx ids,
// random Korean names, and profiles drawn from the distribution. Shortfall
// from ratio rounding is filled with the average profile.
func GenerateCustomers(rng *rand.Rand, count int, distribution map[models.ProfileType]float64) []*models.CustomerTimeSeries {
	if distribution == nil {
		distribution = DefaultDistribution()
	}

	types := make([]models.ProfileType, 0, count)
	// Stable ordering so a fixed seed yields a fixed assignment.
	for _, pt := range []models.ProfileType{models.ProfileAverage, models.ProfileHighRisk, models.ProfilePremium} {
		n := int(float64(count) * distribution[pt])
		for i := 0; i < n && len(types) < count; i++ {
			types = append(types, pt)
		}
	}
	for len(types) < count {
		types = append(types, models.ProfileAverage)
	}
	rng.Shuffle(len(types), func(i, j int) { types[i], types[j] = types[j], types[i] })

	customers := make([]*models.CustomerTimeSeries, 0, count)
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("CUST%d", 100+i)
		name := familyNames[rng.Intn(len(familyNames))] + givenNames[rng.Intn(len(givenNames))]
		customers = append(customers, GenerateSeries(rng, id, name, 12, types[i]))
	}
	return customers
}
