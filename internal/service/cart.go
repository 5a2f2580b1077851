package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BothSann/kdmv-sub002/internal/domain"
	"github.com/BothSann/kdmv-sub002/internal/event"
	"github.com/BothSann/kdmv-sub002/internal/repository"
	apperrors "github.com/BothSann/kdmv-sub002/pkg/errors"
)

// MaxQuantityPerLine is the maximum quantity accepted in a single add or
// update. Stock-level enforcement is an external concern.
const MaxQuantityPerLine = 100

// AddItemInput holds the parameters for adding an item to the cart.
type AddItemInput struct {
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=100"`
}

// UpdateQuantityInput holds the parameters for updating a line quantity.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=100"`
}

// CartService implements the business logic for the shopping cart.
type CartService struct {
	repo     repository.CartRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, producer *event.Producer, logger *slog.Logger) *CartService {
	return &CartService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// Get returns the user's cart. A user with no lines gets an empty cart, not
// an error.
func (s *CartService) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	lines, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return &domain.Cart{UserID: userID, Lines: lines}, nil
}

// AddItem adds a variant to the user's cart. Repeated adds of the same
// variant merge into one line with the summed quantity; the merge happens in
// a single atomic statement, so concurrent adds never lose an increment.
func (s *CartService) AddItem(ctx context.Context, userID string, input AddItemInput) (*domain.CartLine, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if input.VariantID == "" {
		return nil, apperrors.InvalidInput("variant id is required")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if input.Quantity > MaxQuantityPerLine {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}

	line, err := s.repo.AddLine(ctx, userID, input.VariantID, input.Quantity)
	if err != nil {
		return nil, fmt.Errorf("add cart line: %w", err)
	}

	s.publishUpdated(ctx, line)

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("user_id", userID),
		slog.String("variant_id", input.VariantID),
		slog.Int("quantity", line.Quantity),
	)

	return line, nil
}

// UpdateQuantity replaces the quantity of an existing line. Quantity zero
// removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, variantID string, input UpdateQuantityInput) (*domain.CartLine, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if variantID == "" {
		return nil, apperrors.InvalidInput("variant id is required")
	}
	if input.Quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}
	if input.Quantity > MaxQuantityPerLine {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}

	if input.Quantity == 0 {
		if err := s.RemoveItem(ctx, userID, variantID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	line, err := s.repo.UpdateQuantity(ctx, userID, variantID, input.Quantity)
	if err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, line)

	s.logger.InfoContext(ctx, "cart line quantity updated",
		slog.String("user_id", userID),
		slog.String("variant_id", variantID),
		slog.Int("quantity", line.Quantity),
	)

	return line, nil
}

// RemoveItem deletes a single line from the user's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, variantID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}
	if variantID == "" {
		return apperrors.InvalidInput("variant id is required")
	}

	if err := s.repo.RemoveLine(ctx, userID, variantID); err != nil {
		return err
	}

	s.publishUpdated(ctx, &domain.CartLine{UserID: userID, VariantID: variantID})

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("user_id", userID),
		slog.String("variant_id", variantID),
	)

	return nil
}

// Clear empties the user's cart. Clearing an empty cart succeeds.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	if err := s.repo.Clear(ctx, userID); err != nil {
		return err
	}

	if err := s.producer.PublishCartCleared(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("user_id", userID),
	)

	return nil
}

// publishUpdated emits cart.updated best-effort; a broker outage must not
// fail the customer's request.
func (s *CartService) publishUpdated(ctx context.Context, line *domain.CartLine) {
	cart, err := s.Get(ctx, line.UserID)
	itemCount := 0
	if err == nil {
		itemCount = cart.ItemCount()
	}

	if err := s.producer.PublishCartUpdated(ctx, line, itemCount); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", line.UserID),
			slog.String("error", err.Error()),
		)
	}
}
