package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/mail"
	"storefront/internal/model"
	"storefront/internal/otp"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// userService implements UserService.
type userService struct {
	userRepo repository.UserRepository
	cartRepo repository.CartRepository
	otpStore otp.Store
	mailer   mail.Mailer
	logger   zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	cartRepo repository.CartRepository,
	otpStore otp.Store,
	mailer mail.Mailer,
	logger zerolog.Logger,
) UserService {
	return &userService{
		userRepo: userRepo,
		cartRepo: cartRepo,
		otpStore: otpStore,
		mailer:   mailer,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// SendOTP generates a one-time code for the email and delivers it by mail.
func (s *userService) SendOTP(ctx context.Context, email string) error {
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to send otp: %w", err)
	}
	if exists {
		return model.ErrEmailRegistered
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return fmt.Errorf("failed to send otp: %w", err)
	}

	if err := s.otpStore.Save(ctx, email, code, otp.DefaultTTL); err != nil {
		return fmt.Errorf("failed to send otp: %w", err)
	}

	body := fmt.Sprintf("Your one-time code is %s. It expires in %d minutes.",
		code, int(otp.DefaultTTL.Minutes()))
	if err := s.mailer.Send(ctx, email, "Your OTP for Registration", body); err != nil {
		return fmt.Errorf("failed to send otp: %w", err)
	}

	s.logger.Info().Str("email", email).Msg("otp sent")
	return nil
}

// Register verifies the one-time code, then creates the user together with
// their empty cart in a single transaction.
func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, &model.DomainError{
			Code:    model.ErrCodeInvalidJSON,
			Message: "name, email and password are required",
		}
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	if exists {
		return nil, model.ErrEmailRegistered
	}

	ok, err := s.otpStore.Consume(ctx, req.Email, req.OTP)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	if !ok {
		s.logger.Warn().Str("email", req.Email).Msg("registration with invalid or expired otp")
		return nil, model.ErrInvalidOTP
	}

	user := &model.User{
		ID:              uuid.New(),
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		EmailVerified:   true,
		BillingAddress:  req.BillingAddress,
		ShippingAddress: req.ShippingAddress,
		CreatedAt:       time.Now(),
	}

	tx, err := s.userRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.userRepo.Create(ctx, tx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	cart := &model.Cart{
		ID:        uuid.New(),
		UserID:    user.ID,
		CreatedAt: time.Now(),
	}
	if err = s.cartRepo.Create(ctx, tx, cart); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Str("email", user.Email).Msg("user registered")
	return user, nil
}

// GetByID retrieves a single user.
func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError("user", id.String())
	}
	return user, nil
}

// GetAll retrieves all users.
func (s *userService) GetAll(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

// Update changes a user's name, email and password.
func (s *userService) Update(ctx context.Context, id uuid.UUID, upd *model.User) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError("user", id.String())
	}

	if upd.Name != "" {
		user.Name = upd.Name
	}
	if upd.Email != "" {
		user.Email = upd.Email
	}
	if upd.Password != "" {
		user.Password = upd.Password
	}
	if upd.BillingAddress != "" {
		user.BillingAddress = upd.BillingAddress
	}
	if upd.ShippingAddress != "" {
		user.ShippingAddress = upd.ShippingAddress
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info().Str("user_id", id.String()).Msg("user updated")
	return user, nil
}

// Delete removes a user.
func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !deleted {
		return model.NewNotFoundError("user", id.String())
	}

	s.logger.Info().Str("user_id", id.String()).Msg("user deleted")
	return nil
}
