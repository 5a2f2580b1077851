package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/BothSann/kdmv-sub002/internal/domain"
	"github.com/BothSann/kdmv-sub002/internal/repository"
	apperrors "github.com/BothSann/kdmv-sub002/pkg/errors"
)

// CreateAddressInput holds the parameters for creating an address.
type CreateAddressInput struct {
	FirstName     string `json:"first_name" validate:"required,max=100"`
	LastName      string `json:"last_name" validate:"required,max=100"`
	Phone         string `json:"phone" validate:"required,kh_phone"`
	StreetAddress string `json:"street_address" validate:"required,max=255"`
	Apartment     string `json:"apartment" validate:"max=100"`
	Country       string `json:"country"`
	Province      string `json:"province" validate:"required"`
	IsDefault     bool   `json:"is_default"`
}

// UpdateAddressInput holds the parameters for editing an address.
type UpdateAddressInput struct {
	FirstName     string `json:"first_name" validate:"required,max=100"`
	LastName      string `json:"last_name" validate:"required,max=100"`
	Phone         string `json:"phone" validate:"required,kh_phone"`
	StreetAddress string `json:"street_address" validate:"required,max=255"`
	Apartment     string `json:"apartment" validate:"max=100"`
	Country       string `json:"country"`
	Province      string `json:"province" validate:"required"`
}

// AddressService implements the business logic for shipping addresses.
type AddressService struct {
	repo   repository.AddressRepository
	logger *slog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(repo repository.AddressRepository, logger *slog.Logger) *AddressService {
	return &AddressService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and persists a new address for the user. When IsDefault is
// requested, the default toggle runs in its own transaction after the insert
// so the previous default is always cleared.
func (s *AddressService) Create(ctx context.Context, userID string, input CreateAddressInput) (*domain.Address, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	phone := domain.NormalizePhone(input.Phone)
	if !domain.IsValidKhPhone(phone) {
		return nil, apperrors.InvalidInput("phone must be a valid Cambodian phone number")
	}

	country := input.Country
	if country == "" {
		country = domain.CountryKH
	}
	if country != domain.CountryKH {
		return nil, apperrors.InvalidInput("only Cambodia (KH) is supported")
	}

	if !domain.IsValidProvince(input.Province) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown province %q", input.Province))
	}

	now := time.Now().UTC()
	addr := &domain.Address{
		ID:            uuid.New().String(),
		UserID:        userID,
		FirstName:     domain.NormalizeName(input.FirstName),
		LastName:      domain.NormalizeName(input.LastName),
		Phone:         phone,
		StreetAddress: domain.NormalizeName(input.StreetAddress),
		Apartment:     domain.NormalizeName(input.Apartment),
		Country:       country,
		Province:      input.Province,
		IsDefault:     false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if addr.FirstName == "" || addr.LastName == "" {
		return nil, apperrors.InvalidInput("first and last name are required")
	}

	if err := s.repo.Create(ctx, addr); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}

	if input.IsDefault {
		if err := s.repo.SetDefault(ctx, userID, addr.ID); err != nil {
			return nil, fmt.Errorf("set new address default: %w", err)
		}
		addr.IsDefault = true
	}

	s.logger.InfoContext(ctx, "address created",
		slog.String("user_id", userID),
		slog.String("address_id", addr.ID),
		slog.Bool("is_default", addr.IsDefault),
	)

	return addr, nil
}

// List returns all addresses for the user, default first, then newest first.
func (s *AddressService) List(ctx context.Context, userID string) ([]domain.Address, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	return s.repo.ListByUserID(ctx, userID)
}

// Get returns a single address scoped to the user. A missing address and an
// address owned by someone else are both reported as not found.
func (s *AddressService) Get(ctx context.Context, userID, addressID string) (*domain.Address, error) {
	addr, err := s.repo.GetByID(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if !domain.BelongsTo(addr, userID) {
		return nil, apperrors.ErrNotFound
	}
	return addr, nil
}

// Update edits an existing address owned by the user.
func (s *AddressService) Update(ctx context.Context, userID, addressID string, input UpdateAddressInput) (*domain.Address, error) {
	addr, err := s.Get(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	phone := domain.NormalizePhone(input.Phone)
	if !domain.IsValidKhPhone(phone) {
		return nil, apperrors.InvalidInput("phone must be a valid Cambodian phone number")
	}

	country := input.Country
	if country == "" {
		country = domain.CountryKH
	}
	if country != domain.CountryKH {
		return nil, apperrors.InvalidInput("only Cambodia (KH) is supported")
	}

	if !domain.IsValidProvince(input.Province) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown province %q", input.Province))
	}

	addr.FirstName = domain.NormalizeName(input.FirstName)
	addr.LastName = domain.NormalizeName(input.LastName)
	addr.Phone = phone
	addr.StreetAddress = domain.NormalizeName(input.StreetAddress)
	addr.Apartment = domain.NormalizeName(input.Apartment)
	addr.Country = country
	addr.Province = input.Province

	if addr.FirstName == "" || addr.LastName == "" {
		return nil, apperrors.InvalidInput("first and last name are required")
	}

	if err := s.repo.Update(ctx, addr); err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}

	s.logger.InfoContext(ctx, "address updated",
		slog.String("user_id", userID),
		slog.String("address_id", addressID),
	)

	return addr, nil
}

// Delete removes an address owned by the user.
func (s *AddressService) Delete(ctx context.Context, userID, addressID string) error {
	if _, err := s.Get(ctx, userID, addressID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, addressID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "address deleted",
		slog.String("user_id", userID),
		slog.String("address_id", addressID),
	)

	return nil
}

// SetDefault marks the address as the user's default, clearing any previous
// default in the same transaction. The repository's double predicate on
// (id, user_id) keeps foreign addresses unreachable.
func (s *AddressService) SetDefault(ctx context.Context, userID, addressID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	if err := s.repo.SetDefault(ctx, userID, addressID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "default address changed",
		slog.String("user_id", userID),
		slog.String("address_id", addressID),
	)

	return nil
}
