package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"shopmart/models"
	"shopmart/repositories"
)

var ErrCartOwnerRequired = errors.New("a user id or session id is required")

// CartStore is the persistence surface the cart service needs.
type CartStore interface {
	FindByUserID(userID int) (*models.Cart, error)
	FindBySessionID(sessionID string) (*models.Cart, error)
	FindByID(id int) (*models.Cart, error)
	Create(cart *models.Cart) error
	GetItems(cartID int) ([]models.CartItem, error)
	GetItemByID(itemID int) (*models.CartItem, error)
	InsertItem(item *models.CartItem) error
	UpdateItem(item *models.CartItem) error
	DeleteItem(itemID int) error
	DeleteItems(cartID int) error
	MoveItems(fromCartID, toCartID int) error
	UpdateTotals(cart *models.Cart) error
	Delete(cartID int) error
	DeleteAbandoned(cutoff time.Time) (int, error)
}

type CatalogStore interface {
	GetProductByID(id int) (*models.Product, error)
	GetVariantByID(id int) (*models.ProductVariant, error)
}

// PricingRules are the fixed tax and shipping parameters applied on every
// totals recomputation.
type PricingRules struct {
	TaxRate           float64
	ShippingFlatRate  float64
	FreeShippingAbove float64
}

type couponRule struct {
	Percent      float64
	MaxDiscount  float64 // 0 means uncapped
	FreeShipping bool
}

// couponTable is the fixed discount lookup. Unknown codes are not an error;
// they simply compute a zero discount.
var couponTable = map[string]couponRule{
	"WELCOME10": {Percent: 0.10},
	"SAVE20":    {Percent: 0.20, MaxDiscount: 50.00},
	"FREESHIP":  {FreeShipping: true},
}

type CartService struct {
	carts   CartStore
	catalog CatalogStore
	pricing PricingRules
}

func NewCartService(carts CartStore, catalog CatalogStore, pricing PricingRules) *CartService {
	return &CartService{carts: carts, catalog: catalog, pricing: pricing}
}

// GetCurrentCart returns the caller's cart, creating an empty one on first
// access. Authenticated users are keyed by user id, anonymous ones by
// session id.
func (s *CartService) GetCurrentCart(userID *int, sessionID string) (*models.Cart, error) {
	switch {
	case userID != nil:
		cart, err := s.carts.FindByUserID(*userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, repositories.ErrCartNotFound) {
			return nil, err
		}
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
		if err := s.carts.Create(cart); err != nil {
			return nil, err
		}
		return cart, nil
	case sessionID != "":
		cart, err := s.carts.FindBySessionID(sessionID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, repositories.ErrCartNotFound) {
			return nil, err
		}
		cart = &models.Cart{SessionID: &sessionID, Items: []models.CartItem{}}
		if err := s.carts.Create(cart); err != nil {
			return nil, err
		}
		return cart, nil
	default:
		return nil, ErrCartOwnerRequired
	}
}

// AddToCart appends a line for (product, variant) or, when an identical line
// exists, increases its quantity and merges the custom options. It performs
// no stock check; callers validate availability beforehand.
func (s *CartService) AddToCart(cart *models.Cart, productID int, variantID *int, quantity int, customOptions map[string]string) (*models.Cart, error) {
	if quantity < 1 {
		return nil, errors.New("quantity must be at least 1")
	}

	product, err := s.catalog.GetProductByID(productID)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}

	var variant *models.ProductVariant
	if variantID != nil {
		variant, err = s.catalog.GetVariantByID(*variantID)
		if err != nil {
			return nil, fmt.Errorf("variant not found: %w", err)
		}
		if variant.ProductID != product.ID {
			return nil, errors.New("variant does not belong to product")
		}
	}

	if existing := findLine(cart.Items, productID, variantID); existing != nil {
		existing.Quantity += quantity
		if existing.CustomOptions == nil && len(customOptions) > 0 {
			existing.CustomOptions = map[string]string{}
		}
		for k, v := range customOptions {
			existing.CustomOptions[k] = v
		}
		if err := s.carts.UpdateItem(existing); err != nil {
			return nil, err
		}
	} else {
		item := &models.CartItem{
			CartID:        cart.ID,
			ProductID:     productID,
			VariantID:     variantID,
			Quantity:      quantity,
			UnitPrice:     models.EffectivePrice(product, variant),
			CustomOptions: customOptions,
		}
		if err := s.carts.InsertItem(item); err != nil {
			return nil, err
		}
	}

	return s.refreshTotals(cart.ID)
}

// CheckAvailability reports whether the cart can take quantity more units of
// the product or variant. The request is counted on top of what the cart
// already holds for that line.
func (s *CartService) CheckAvailability(cart *models.Cart, productID int, variantID *int, quantity int) error {
	product, err := s.catalog.GetProductByID(productID)
	if err != nil {
		return fmt.Errorf("product not found: %w", err)
	}

	var variant *models.ProductVariant
	if variantID != nil {
		variant, err = s.catalog.GetVariantByID(*variantID)
		if err != nil {
			return fmt.Errorf("variant not found: %w", err)
		}
	}

	requested := quantity
	if existing := findLine(cart.Items, productID, variantID); existing != nil {
		requested += existing.Quantity
	}

	if available := models.EffectiveStock(product, variant); available < requested {
		return fmt.Errorf("Only %d of %q in stock (requested %d)", available, product.Name, requested)
	}
	return nil
}

func findLine(items []models.CartItem, productID int, variantID *int) *models.CartItem {
	for i := range items {
		item := &items[i]
		if item.ProductID != productID {
			continue
		}
		if (item.VariantID == nil) != (variantID == nil) {
			continue
		}
		if item.VariantID != nil && *item.VariantID != *variantID {
			continue
		}
		return item
	}
	return nil
}

// UpdateItemQuantity sets the line quantity; zero or less removes the line
// instead of leaving a degenerate record.
func (s *CartService) UpdateItemQuantity(itemID, quantity int) (*models.Cart, error) {
	item, err := s.carts.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := s.carts.DeleteItem(item.ID); err != nil {
			return nil, err
		}
	} else {
		item.Quantity = quantity
		if err := s.carts.UpdateItem(item); err != nil {
			return nil, err
		}
	}

	return s.refreshTotals(item.CartID)
}

func (s *CartService) RemoveFromCart(itemID int) (*models.Cart, error) {
	item, err := s.carts.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.DeleteItem(item.ID); err != nil {
		return nil, err
	}
	return s.refreshTotals(item.CartID)
}

func (s *CartService) ClearCart(cart *models.Cart) error {
	if err := s.carts.DeleteItems(cart.ID); err != nil {
		return err
	}
	cart.Items = nil
	cart.CouponCode = nil
	s.UpdateCartTotals(cart)
	return s.carts.UpdateTotals(cart)
}

// ApplyCoupon records the code and recomputes totals. Unrecognized codes are
// accepted and simply yield a zero discount.
func (s *CartService) ApplyCoupon(cart *models.Cart, code string) (*models.Cart, error) {
	cart.CouponCode = &code
	s.UpdateCartTotals(cart)
	if err := s.carts.UpdateTotals(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) RemoveCoupon(cart *models.Cart) (*models.Cart, error) {
	cart.CouponCode = nil
	s.UpdateCartTotals(cart)
	if err := s.carts.UpdateTotals(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateCartTotals recomputes every derived field in place:
// subtotal as the sum of line totals, tax at the fixed rate, shipping by the
// free-above threshold, coupon discount, and the total floored at zero.
func (s *CartService) UpdateCartTotals(cart *models.Cart) {
	subtotal := 0.0
	for i := range cart.Items {
		subtotal += cart.Items[i].LineTotal()
	}
	cart.Subtotal = round2(subtotal)
	cart.TaxAmount = round2(subtotal * s.pricing.TaxRate)

	rule, known := couponRule{}, false
	if cart.CouponCode != nil {
		rule, known = couponTable[*cart.CouponCode]
	}

	switch {
	case len(cart.Items) == 0:
		cart.ShippingCost = 0
	case known && rule.FreeShipping:
		cart.ShippingCost = 0
	case subtotal >= s.pricing.FreeShippingAbove:
		cart.ShippingCost = 0
	default:
		cart.ShippingCost = s.pricing.ShippingFlatRate
	}

	discount := 0.0
	if known && rule.Percent > 0 {
		discount = subtotal * rule.Percent
		if rule.MaxDiscount > 0 && discount > rule.MaxDiscount {
			discount = rule.MaxDiscount
		}
	}
	cart.DiscountAmount = round2(discount)

	cart.Total = round2(math.Max(0, cart.Subtotal+cart.TaxAmount+cart.ShippingCost-cart.DiscountAmount))
}

// ValidateCartStock returns one shortage message per under-stocked line.
// The cart is not mutated.
func (s *CartService) ValidateCartStock(cart *models.Cart) ([]string, error) {
	problems := []string{}
	for i := range cart.Items {
		item := &cart.Items[i]

		product, err := s.catalog.GetProductByID(item.ProductID)
		if err != nil {
			return nil, err
		}

		var variant *models.ProductVariant
		if item.VariantID != nil {
			variant, err = s.catalog.GetVariantByID(*item.VariantID)
			if err != nil {
				return nil, err
			}
		}

		available := models.EffectiveStock(product, variant)
		if available < item.Quantity {
			problems = append(problems,
				fmt.Sprintf("Only %d of %q in stock (requested %d)", available, product.Name, item.Quantity))
		}
	}
	return problems, nil
}

// MergeSessionCart transfers the anonymous session cart's items into the
// user's cart at login, then discards the session cart.
func (s *CartService) MergeSessionCart(userID int, sessionID string) (*models.Cart, error) {
	sessionCart, err := s.carts.FindBySessionID(sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCartNotFound) {
			return s.GetCurrentCart(&userID, "")
		}
		return nil, err
	}

	userCart, err := s.GetCurrentCart(&userID, "")
	if err != nil {
		return nil, err
	}

	// Conflicting lines fold into the user's line; whatever remains in the
	// session cart is reassigned wholesale.
	for i := range sessionCart.Items {
		src := &sessionCart.Items[i]
		existing := findLine(userCart.Items, src.ProductID, src.VariantID)
		if existing == nil {
			continue
		}
		existing.Quantity += src.Quantity
		if err := s.carts.UpdateItem(existing); err != nil {
			return nil, err
		}
		if err := s.carts.DeleteItem(src.ID); err != nil {
			return nil, err
		}
	}
	if err := s.carts.MoveItems(sessionCart.ID, userCart.ID); err != nil {
		return nil, err
	}

	if err := s.carts.Delete(sessionCart.ID); err != nil {
		return nil, err
	}

	return s.refreshTotals(userCart.ID)
}

// CleanupAbandonedCarts removes empty carts untouched for the given number
// of days and reports how many were deleted.
func (s *CartService) CleanupAbandonedCarts(daysOld int) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -daysOld)
	return s.carts.DeleteAbandoned(cutoff)
}

func (s *CartService) refreshTotals(cartID int) (*models.Cart, error) {
	cart, err := s.carts.FindByID(cartID)
	if err != nil {
		return nil, err
	}
	s.UpdateCartTotals(cart)
	if err := s.carts.UpdateTotals(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
