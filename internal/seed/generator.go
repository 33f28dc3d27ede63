package seed

import (
	_ "embed"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	v1 "github.com/rewardex-lab/rewardex/internal/api/v1"
)

//go:embed products.yaml
var productsYAML []byte

type productCatalog struct {
	Products []string `yaml:"products"`
}

var firstNames = []string{
	"John", "Jane", "Alex", "Emma", "Mike",
	"Sophia", "Will", "Olivia", "James", "Isabella",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones",
	"Garcia", "Miller", "Davis", "Wilson", "Anderson",
}

// Generator produces random but well-formed transaction attributes:
// two-decimal prices, DD-MM-YYYY dates, catalog products, and unique
// transaction IDs. Safe for concurrent use; the create-transaction path
// shares one generator across requests.
type Generator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	products []string
}

// NewGenerator creates a generator seeded from the given source. The
// product catalog comes from the embedded products.yaml.
func NewGenerator(seed int64) (*Generator, error) {
	var catalog productCatalog
	if err := yaml.Unmarshal(productsYAML, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse embedded product catalog: %w", err)
	}
	if len(catalog.Products) == 0 {
		return nil, fmt.Errorf("embedded product catalog is empty")
	}

	return &Generator{
		rng:      rand.New(rand.NewSource(seed)),
		products: catalog.Products,
	}, nil
}

// RandomPrice returns a price in [10, 200) truncated to two decimals.
func (g *Generator) RandomPrice() decimal.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()
	cents := 1000 + g.rng.Int63n(19000)
	return decimal.New(cents, -2)
}

// RandomDate returns a DD-MM-YYYY date between 2020 and 2025. Days stop at
// 28 so every generated date is valid in every month.
func (g *Generator) RandomDate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	year := 2020 + g.rng.Intn(6)
	month := 1 + g.rng.Intn(12)
	day := 1 + g.rng.Intn(28)
	return fmt.Sprintf("%02d-%02d-%d", day, month, year)
}

// RandomProduct picks a product from the catalog.
func (g *Generator) RandomProduct() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.products[g.rng.Intn(len(g.products))]
}

// RandomCustomerName combines a random first and last name.
func (g *Generator) RandomCustomerName() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return firstNames[g.rng.Intn(len(firstNames))] + " " + lastNames[g.rng.Intn(len(lastNames))]
}

// NewTransactionID mints an ID like "TXN1A2B3C4D5E6F": a TXN prefix plus
// 12 hex characters derived from a fresh UUID.
func NewTransactionID() string {
	hex := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "TXN" + hex[:12]
}

// NewTransaction assembles a full transaction from generated attributes,
// with points computed by the caller-supplied formula result.
func NewTransaction(customerID int64, customerName, transactionID, purchaseDate, product string, price decimal.Decimal, points int64) v1.Transaction {
	txn := v1.Transaction{
		CustomerID:    customerID,
		TransactionID: transactionID,
		CustomerName:  customerName,
		PurchaseDate:  purchaseDate,
		Product:       product,
		Price:         price,
	}
	txn.SetPoints(points)
	return txn
}
