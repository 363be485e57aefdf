package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"household-budget-backend/internal/apperr"
	"household-budget-backend/internal/cache"
	"household-budget-backend/internal/models"
)

// CategoryRepository, CreditCardRepository and BankAccountRepository hold
// soft deleted catalog rows. Lists are cached per user and kind.

type CategoryRepository struct {
	db    *gorm.DB
	cache *cache.QueryCache
}

func NewCategoryRepository(db *gorm.DB, c *cache.QueryCache) *CategoryRepository {
	return &CategoryRepository{db: db, cache: c}
}

func catalogGroup(kind string, userID uuid.UUID) string {
	return kind + ":" + userID.String()
}

// List returns categories by sort order. activeOnly hides soft deleted rows.
func (r *CategoryRepository) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	q, userID, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	return cache.LoadSlice(r.cache, catalogGroup("categories", userID), strconv.FormatBool(activeOnly), func() ([]models.Category, error) {
		if activeOnly {
			q = q.Where("is_active = ?", true)
		}
		var cats []models.Category
		if err := q.Order("sort_order ASC").Order("name ASC").Find(&cats).Error; err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		return cats, nil
	})
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var c models.Category
	if err := q.First(&c, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get category %s: %w", id, apperr.FromStore(err))
	}
	return &c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	_, userID, err := owned(ctx, r.db)
	if err != nil {
		return err
	}
	c.UserID = userID
	c.IsActive = true
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create category: %w", apperr.FromStore(err))
	}
	r.cache.Invalidate(catalogGroup("categories", userID))
	return nil
}

type CategoryPatch struct {
	Name      *string `json:"name"`
	Icon      *string `json:"icon"`
	Color     *string `json:"color"`
	SortOrder *int    `json:"sort_order"`
}

func (r *CategoryRepository) Update(ctx context.Context, id uuid.UUID, p CategoryPatch) (*models.Category, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.SortOrder != nil {
		c.SortOrder = *p.SortOrder
	}
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, fmt.Errorf("update category %s: %w", id, err)
	}
	r.cache.Invalidate(catalogGroup("categories", c.UserID))
	return c, nil
}

// Deactivate soft deletes; referenced rows keep pointing at the category.
func (r *CategoryRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return deactivate(ctx, r.db, r.cache, &models.Category{}, "categories", id)
}

type CreditCardRepository struct {
	db    *gorm.DB
	cache *cache.QueryCache
}

func NewCreditCardRepository(db *gorm.DB, c *cache.QueryCache) *CreditCardRepository {
	return &CreditCardRepository{db: db, cache: c}
}

func (r *CreditCardRepository) List(ctx context.Context, activeOnly bool) ([]models.CreditCard, error) {
	q, userID, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	return cache.LoadSlice(r.cache, catalogGroup("credit_cards", userID), strconv.FormatBool(activeOnly), func() ([]models.CreditCard, error) {
		if activeOnly {
			q = q.Where("is_active = ?", true)
		}
		var cards []models.CreditCard
		if err := q.Order("created_at ASC").Find(&cards).Error; err != nil {
			return nil, fmt.Errorf("list credit cards: %w", err)
		}
		return cards, nil
	})
}

func (r *CreditCardRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CreditCard, error) {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var c models.CreditCard
	if err := q.First(&c, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get credit card %s: %w", id, apperr.FromStore(err))
	}
	return &c, nil
}

func (r *CreditCardRepository) Create(ctx context.Context, c *models.CreditCard) error {
	_, userID, err := owned(ctx, r.db)
	if err != nil {
		return err
	}
	c.UserID = userID
	c.IsActive = true
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create credit card: %w", apperr.FromStore(err))
	}
	r.cache.Invalidate(catalogGroup("credit_cards", userID))
	return nil
}

type CreditCardPatch struct {
	Name        *string          `json:"name"`
	LastFour    *string          `json:"last_four"`
	TotalLimit  *decimal.Decimal `json:"total_limit"`
	BudgetLimit *decimal.Decimal `json:"budget_limit"`
}

func (r *CreditCardRepository) Update(ctx context.Context, id uuid.UUID, p CreditCardPatch) (*models.CreditCard, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.LastFour != nil {
		c.LastFour = p.LastFour
	}
	if p.TotalLimit != nil {
		c.TotalLimit = *p.TotalLimit
	}
	if p.BudgetLimit != nil {
		c.BudgetLimit = *p.BudgetLimit
	}
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, fmt.Errorf("update credit card %s: %w", id, err)
	}
	r.cache.Invalidate(catalogGroup("credit_cards", c.UserID))
	return c, nil
}

func (r *CreditCardRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return deactivate(ctx, r.db, r.cache, &models.CreditCard{}, "credit_cards", id)
}

type BankAccountRepository struct {
	db    *gorm.DB
	cache *cache.QueryCache
}

func NewBankAccountRepository(db *gorm.DB, c *cache.QueryCache) *BankAccountRepository {
	return &BankAccountRepository{db: db, cache: c}
}

func (r *BankAccountRepository) List(ctx context.Context, activeOnly bool) ([]models.BankAccount, error) {
	q, userID, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	return cache.LoadSlice(r.cache, catalogGroup("bank_accounts", userID), strconv.FormatBool(activeOnly), func() ([]models.BankAccount, error) {
		if activeOnly {
			q = q.Where("is_active = ?", true)
		}
		var accounts []models.BankAccount
		if err := q.Order("created_at ASC").Find(&accounts).Error; err != nil {
			return nil, fmt.Errorf("list bank accounts: %w", err)
		}
		return accounts, nil
	})
}

func (r *BankAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BankAccount, error) {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var a models.BankAccount
	if err := q.First(&a, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get bank account %s: %w", id, apperr.FromStore(err))
	}
	return &a, nil
}

func (r *BankAccountRepository) Create(ctx context.Context, a *models.BankAccount) error {
	_, userID, err := owned(ctx, r.db)
	if err != nil {
		return err
	}
	a.UserID = userID
	a.IsActive = true
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create bank account: %w", apperr.FromStore(err))
	}
	r.cache.Invalidate(catalogGroup("bank_accounts", userID))
	return nil
}

type BankAccountPatch struct {
	Name          *string `json:"name"`
	BankName      *string `json:"bank_name"`
	Agency        *string `json:"agency"`
	AccountNumber *string `json:"account_number"`
}

func (r *BankAccountRepository) Update(ctx context.Context, id uuid.UUID, p BankAccountPatch) (*models.BankAccount, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.BankName != nil {
		a.BankName = *p.BankName
	}
	if p.Agency != nil {
		a.Agency = p.Agency
	}
	if p.AccountNumber != nil {
		a.AccountNumber = p.AccountNumber
	}
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		return nil, fmt.Errorf("update bank account %s: %w", id, err)
	}
	r.cache.Invalidate(catalogGroup("bank_accounts", a.UserID))
	return a, nil
}

func (r *BankAccountRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return deactivate(ctx, r.db, r.cache, &models.BankAccount{}, "bank_accounts", id)
}

func deactivate(ctx context.Context, db *gorm.DB, c *cache.QueryCache, model interface{}, kind string, id uuid.UUID) error {
	q, userID, err := owned(ctx, db)
	if err != nil {
		return err
	}
	res := q.Model(model).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate %s %s: %w", kind, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("deactivate %s %s: %w", kind, id, apperr.ErrNotFound)
	}
	c.Invalidate(catalogGroup(kind, userID))
	return nil
}
