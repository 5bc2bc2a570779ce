// Package category manages the user-scoped transaction categories and the
// default set installed for new users.
package category

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/weekly-budget/internal/domain"
	"github.com/dvloznov/weekly-budget/internal/store"
)

// Service reads and seeds categories. Categories carry display metadata
// only; they never enter the balance math.
type Service struct {
	categories store.CategoryRepository
	log        zerolog.Logger
}

// NewService creates a new category service.
func NewService(categories store.CategoryRepository, log zerolog.Logger) *Service {
	return &Service{
		categories: categories,
		log:        log,
	}
}

// FindAllByUser lists the user's categories.
func (s *Service) FindAllByUser(ctx context.Context, userID string) ([]*domain.Category, error) {
	return s.categories.FindByUser(ctx, userID)
}

// SeedDefaults installs the default category set for a new user.
func (s *Service) SeedDefaults(ctx context.Context, userID string) error {
	seed := make([]*domain.Category, 0, len(defaultCategories))
	for _, c := range defaultCategories {
		c.ID = uuid.New().String()
		c.UserID = userID
		seeded := c
		seed = append(seed, &seeded)
	}
	if err := s.categories.CreateMany(ctx, seed); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	s.log.Debug().Str("user_id", userID).Int("count", len(seed)).Msg("Seeded default categories")
	return nil
}

// defaultCategories mirrors the stock category set shown to every new user.
var defaultCategories = []domain.Category{
	{Description: "Income", Icon: "dollarsign.circle.fill", Color: ".green", Type: domain.TransactionIncome, Active: true},
	{Description: "Others", Icon: "ellipsis.circle.fill", Color: ".gray", Type: domain.TransactionIncome, Active: true},
	{Description: "Others", Icon: "ellipsis.circle.fill", Color: ".gray", Type: domain.TransactionExpense, Active: true},
	{Description: "Credit card", Icon: "creditcard.circle.fill", Color: ".orange", Type: domain.TransactionExpense, Active: true},
	{Description: "Dining", Icon: "fork.knife.circle.fill", Color: ".red", Type: domain.TransactionExpense, Active: true},
	{Description: "Groceries", Icon: "cart.circle.fill", Color: ".teal", Type: domain.TransactionExpense, Active: true},
	{Description: "Housing", Icon: "house.circle.fill", Color: ".brown", Type: domain.TransactionExpense, Active: true},
	{Description: "Transport", Icon: "car.circle.fill", Color: ".blue", Type: domain.TransactionExpense, Active: true},
	{Description: "Health", Icon: "cross.circle.fill", Color: ".pink", Type: domain.TransactionExpense, Active: true},
	{Description: "Education", Icon: "book.circle.fill", Color: ".indigo", Type: domain.TransactionExpense, Active: true},
	{Description: "Leisure", Icon: "theatermasks.circle.fill", Color: ".purple", Type: domain.TransactionExpense, Active: true},
	{Description: "Clothing", Icon: "tshirt.circle.fill", Color: ".mint", Type: domain.TransactionExpense, Active: true},
}
