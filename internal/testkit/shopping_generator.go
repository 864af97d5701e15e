package testkit

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"gopivot/domain/pivot"
)

// ShoppingGeneratorConfig configures the synthetic sales data generator
type ShoppingGeneratorConfig struct {
	OrderCount    int       `json:"order_count"`
	ReturnRate    float64   `json:"return_rate"`
	DiscountRate  float64   `json:"discount_rate"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Seed          int64     `json:"seed"`
	SchemaVersion string    `json:"schema_version"`
}

// DefaultShoppingConfig returns sensible defaults for sales data generation
func DefaultShoppingConfig() ShoppingGeneratorConfig {
	return ShoppingGeneratorConfig{
		OrderCount:    500,
		ReturnRate:    0.08,
		DiscountRate:  0.15,
		StartDate:     time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
		Seed:          42,
		SchemaVersion: "1.0.0",
	}
}

// ShoppingColumns is the column layout of every generated data source
var ShoppingColumns = []string{"region", "channel", "category", "product", "year", "quarter", "quantity", "amount", "returned"}

type product struct {
	name     string
	category string
	price    float64
}

var catalog = []product{
	{"Espresso Beans", "Coffee", 14.5},
	{"Filter Roast", "Coffee", 11.0},
	{"Cold Brew Pack", "Coffee", 18.0},
	{"Green Tea", "Tea", 7.5},
	{"Earl Grey", "Tea", 6.0},
	{"Chai Blend", "Tea", 8.25},
	{"French Press", "Equipment", 34.0},
	{"Burr Grinder", "Equipment", 89.0},
	{"Travel Mug", "Equipment", 21.0},
}

var regions = []struct {
	name   string
	weight float64
}{
	{"North", 0.35},
	{"South", 0.25},
	{"East", 0.22},
	{"West", 0.18},
}

var channels = []string{"Online", "Retail", "Wholesale"}

// ShoppingDataGenerator generates deterministic order lines for pivoting
type ShoppingDataGenerator struct {
	config ShoppingGeneratorConfig
	rng    *rand.Rand
}

// NewShoppingDataGenerator creates a new sales data generator
func NewShoppingDataGenerator(config ShoppingGeneratorConfig) *ShoppingDataGenerator {
	return &ShoppingDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds a fresh data source with one row per order line
func (g *ShoppingDataGenerator) Generate() (*pivot.ListDataSource, error) {
	if g.config.OrderCount < 0 {
		return nil, fmt.Errorf("order count must not be negative: %d", g.config.OrderCount)
	}
	if !g.config.EndDate.After(g.config.StartDate) {
		return nil, fmt.Errorf("end date must be after start date")
	}

	ds := pivot.NewListDataSource(ShoppingColumns...)
	// year and quarter are labels to group by, never amounts to add up
	for i, name := range ShoppingColumns {
		if name == "year" || name == "quarter" {
			ds.SetColumnType(i, pivot.FieldText)
		}
	}
	for i := 0; i < g.config.OrderCount; i++ {
		if err := ds.AddRow(g.orderLine()...); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func (g *ShoppingDataGenerator) orderLine() []interface{} {
	p := catalog[g.rng.Intn(len(catalog))]
	at := g.randomTimeInRange(g.config.StartDate, g.config.EndDate)

	quantity := 1 + int(math.Abs(g.rng.NormFloat64()*2))
	if quantity > 12 {
		quantity = 12
	}
	amount := p.price * float64(quantity)
	if g.rng.Float64() < g.config.DiscountRate {
		amount *= 0.9
	}
	returned := "no"
	if g.rng.Float64() < g.config.ReturnRate {
		returned = "yes"
	}

	return []interface{}{
		g.region(),
		channels[g.rng.Intn(len(channels))],
		p.category,
		p.name,
		fmt.Sprintf("%d", at.Year()),
		fmt.Sprintf("Q%d", (int(at.Month())-1)/3+1),
		float64(quantity),
		math.Round(amount*100) / 100,
		returned,
	}
}

func (g *ShoppingDataGenerator) region() string {
	r := g.rng.Float64()
	acc := 0.0
	for _, reg := range regions {
		acc += reg.weight
		if r < acc {
			return reg.name
		}
	}
	return regions[len(regions)-1].name
}

func (g *ShoppingDataGenerator) randomTimeInRange(start, end time.Time) time.Time {
	span := end.Sub(start)
	return start.Add(time.Duration(g.rng.Int63n(int64(span))))
}

// ShoppingLoader serves generated sales data through the data source loader port
type ShoppingLoader struct {
	config ShoppingGeneratorConfig
}

// NewShoppingLoader creates a loader that regenerates the same rows on every load
func NewShoppingLoader(config ShoppingGeneratorConfig) *ShoppingLoader {
	return &ShoppingLoader{config: config}
}

func (l *ShoppingLoader) Name() string {
	return "synthetic sales"
}

func (l *ShoppingLoader) Load(ctx context.Context) (pivot.DataSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, err := NewShoppingDataGenerator(l.config).Generate()
	if err != nil {
		return nil, err
	}
	log.Printf("[ShoppingLoader] Generated %d order lines (seed %d)", ds.RowCount(), l.config.Seed)
	return ds, nil
}
