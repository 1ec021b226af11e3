package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/auth"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
)

const (
	minPasswordLen = 6

	purposeReset  = "reset"
	purposeChange = "change"
)

type AuthService struct {
	users  UserStore
	otps   OTPStore
	mailer Mailer
	tokens *auth.TokenManager
	otpTTL time.Duration
	logger *zap.Logger
	now    Clock
}

func NewAuthService(users UserStore, otps OTPStore, mailer Mailer, tokens *auth.TokenManager, otpTTL time.Duration, logger *zap.Logger, clock Clock) *AuthService {
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	return &AuthService{
		users:  users,
		otps:   otps,
		mailer: mailer,
		tokens: tokens,
		otpTTL: otpTTL,
		logger: logger.Named("auth"),
		now:    clockOrDefault(clock),
	}
}

// Session is returned by every call that signs a user in.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *AuthService) session(u *models.User) (*Session, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: u}, nil
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

func checkPassword(password string) error {
	if len(password) < minPasswordLen {
		return apperr.Validation("Password must be at least 6 characters long")
	}
	return nil
}

// lookup returns the user with email, or nil when there is none.
func (s *AuthService) lookup(ctx context.Context, email string) (*models.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

func mailError(err error, message string) error {
	return apperr.Upstream(err, apperr.CodeMailDelivery, message)
}

// Register stores a pending registration and mails its code. The account
// itself is created by VerifyEmail.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	email := models.NormalizeEmail(in.Email)
	switch {
	case email == "" || !strings.Contains(email, "@"):
		return apperr.Validation("A valid email is required")
	case strings.TrimSpace(in.Name) == "":
		return apperr.Validation("Name is required")
	}
	if err := checkPassword(in.Password); err != nil {
		return err
	}

	existing, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.Conflict(apperr.CodeEmailTaken, "Email already registered. Please login instead.")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return err
	}
	code, err := auth.GenerateOTP()
	if err != nil {
		return err
	}
	pending := &models.PendingRegistration{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
		Code:         code,
		ExpiresAt:    s.now().Add(s.otpTTL),
	}
	if err := s.otps.SavePending(ctx, pending); err != nil {
		return err
	}

	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		if derr := s.otps.DeletePending(ctx, email); derr != nil {
			s.logger.Warn("failed to drop pending registration", zap.String("email", email), zap.Error(derr))
		}
		return mailError(err, "Failed to send verification email. Please try again.")
	}
	s.logger.Info("registration pending", zap.String("email", email))
	return nil
}

// ResendVerification issues a fresh code for a pending registration.
func (s *AuthService) ResendVerification(ctx context.Context, rawEmail string) error {
	email := models.NormalizeEmail(rawEmail)
	existing, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.Conflict(apperr.CodeEmailTaken, "Email already verified. Please login.")
	}

	pending, err := s.otps.GetPending(ctx, email)
	if err != nil {
		return notFound(err, apperr.CodeRegistrationMissing, "No pending registration found. Please register again.")
	}
	code, err := auth.GenerateOTP()
	if err != nil {
		return err
	}
	pending.Code = code
	pending.ExpiresAt = s.now().Add(s.otpTTL)
	if err := s.otps.SavePending(ctx, pending); err != nil {
		return err
	}
	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		return mailError(err, "Failed to send verification email. Please try again.")
	}
	return nil
}

// VerifyEmail confirms the pending registration for email and creates the
// verified account.
func (s *AuthService) VerifyEmail(ctx context.Context, rawEmail, code string) (*Session, error) {
	email := models.NormalizeEmail(rawEmail)
	existing, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.session(existing)
	}

	pending, err := s.otps.GetPending(ctx, email)
	if err != nil {
		return nil, notFound(err, apperr.CodeRegistrationMissing, "No pending registration found. Please register again.")
	}
	if !auth.EqualCode(pending.Code, strings.TrimSpace(code)) {
		return nil, apperr.New(apperr.KindValidation, apperr.CodeInvalidOTP, "Invalid verification code")
	}
	if s.now().After(pending.ExpiresAt) {
		_ = s.otps.DeletePending(ctx, email)
		return nil, apperr.New(apperr.KindValidation, apperr.CodeOTPExpired, "Verification code expired. Please register again.")
	}

	u := &models.User{
		ID:            primitive.NewObjectID(),
		Email:         pending.Email,
		Password:      pending.PasswordHash,
		Name:          pending.Name,
		Phone:         pending.Phone,
		Addresses:     []models.SavedAddress{},
		Role:          models.RoleUser,
		EmailVerified: true,
		CreatedAt:     s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errorsIsDuplicate(err) {
			return nil, apperr.Conflict(apperr.CodeEmailTaken, "Email already registered. Please login instead.")
		}
		return nil, err
	}
	if err := s.otps.DeletePending(ctx, email); err != nil {
		s.logger.Warn("failed to drop pending registration", zap.String("email", email), zap.Error(err))
	}
	s.logger.Info("account created", zap.String("user_id", u.ID.Hex()))
	return s.session(u)
}

func (s *AuthService) Login(ctx context.Context, rawEmail, password string) (*Session, error) {
	invalid := apperr.New(apperr.KindUnauthorized, apperr.CodeInvalidCredentials, "Invalid email or password")

	u, err := s.lookup(ctx, models.NormalizeEmail(rawEmail))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, invalid
	}
	if !u.EmailVerified && !u.IsAdmin() {
		return nil, apperr.New(apperr.KindForbidden, apperr.CodeEmailNotVerified,
			"Email not verified. Please verify your email first.")
	}
	if !auth.CheckPassword(u.Password, password) {
		return nil, invalid
	}
	return s.session(u)
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid token.")
	}
	u, err := s.users.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("Invalid token.")
	}
	return u, err
}

func (s *AuthService) Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, notFound(err, apperr.CodeUserNotFound, "User not found")
	}
	return u, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, patch repository.ProfilePatch) (*models.User, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validation("Name is required")
		}
		patch.Name = &name
	}
	u, err := s.users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return nil, notFound(err, apperr.CodeUserNotFound, "User not found")
	}
	return u, nil
}

type AddressInput struct {
	Name         string             `json:"name"`
	Phone        string             `json:"phone"`
	Email        string             `json:"email"`
	AddressLine1 string             `json:"addressLine1"`
	AddressLine2 string             `json:"addressLine2"`
	Landmark     string             `json:"landmark"`
	City         string             `json:"city"`
	State        string             `json:"state"`
	Pincode      string             `json:"pincode"`
	Country      string             `json:"country"`
	AddressType  models.AddressType `json:"addressType"`
	IsDefault    bool               `json:"isDefault"`
}

func (in AddressInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "", strings.TrimSpace(in.Phone) == "":
		return apperr.Validation("Name and phone are required")
	case strings.TrimSpace(in.AddressLine1) == "":
		return apperr.Validation("Address line 1 is required")
	case strings.TrimSpace(in.City) == "", strings.TrimSpace(in.State) == "", strings.TrimSpace(in.Pincode) == "":
		return apperr.Validation("City, state and pincode are required")
	case in.AddressType != "" && !in.AddressType.Valid():
		return apperr.Validationf("Invalid address type: %s", in.AddressType)
	}
	return nil
}

func (in AddressInput) fill(a *models.SavedAddress) {
	a.Name = strings.TrimSpace(in.Name)
	a.Phone = strings.TrimSpace(in.Phone)
	a.Email = strings.TrimSpace(in.Email)
	a.AddressLine1 = strings.TrimSpace(in.AddressLine1)
	a.AddressLine2 = strings.TrimSpace(in.AddressLine2)
	a.Landmark = strings.TrimSpace(in.Landmark)
	a.City = strings.TrimSpace(in.City)
	a.State = strings.TrimSpace(in.State)
	a.Pincode = strings.TrimSpace(in.Pincode)
	a.Country = firstNonEmpty(in.Country, "India")
	a.AddressType = in.AddressType
	if a.AddressType == "" {
		a.AddressType = models.AddressHome
	}
	a.IsDefault = in.IsDefault
}

// makeDefault leaves id as the only default address.
func makeDefault(addresses []models.SavedAddress, id primitive.ObjectID) {
	for i := range addresses {
		addresses[i].IsDefault = addresses[i].ID == id
	}
}

func findAddress(addresses []models.SavedAddress, id primitive.ObjectID) int {
	for i := range addresses {
		if addresses[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *AuthService) Addresses(ctx context.Context, userID primitive.ObjectID) ([]models.SavedAddress, error) {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Addresses == nil {
		return []models.SavedAddress{}, nil
	}
	return u.Addresses, nil
}

// AddAddress appends an address. The first address becomes the default.
func (s *AuthService) AddAddress(ctx context.Context, userID primitive.ObjectID, in AddressInput) (*models.SavedAddress, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	addresses, err := s.Addresses(ctx, userID)
	if err != nil {
		return nil, err
	}

	a := models.SavedAddress{ID: primitive.NewObjectID(), CreatedAt: s.now()}
	in.fill(&a)
	addresses = append(addresses, a)
	if a.IsDefault || len(addresses) == 1 {
		makeDefault(addresses, a.ID)
	}
	if err := s.users.SetAddresses(ctx, userID, addresses); err != nil {
		return nil, err
	}
	return &addresses[len(addresses)-1], nil
}

func (s *AuthService) UpdateAddress(ctx context.Context, userID primitive.ObjectID, addressID string, in AddressInput) (*models.SavedAddress, error) {
	id, err := parseID(addressID, "address")
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	addresses, err := s.Addresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := findAddress(addresses, id)
	if i < 0 {
		return nil, apperr.NotFound(apperr.CodeAddressNotFound, "Address not found")
	}

	wasDefault := addresses[i].IsDefault
	in.fill(&addresses[i])
	if in.IsDefault {
		makeDefault(addresses, id)
	} else {
		addresses[i].IsDefault = wasDefault
	}
	if err := s.users.SetAddresses(ctx, userID, addresses); err != nil {
		return nil, err
	}
	return &addresses[i], nil
}

func (s *AuthService) DeleteAddress(ctx context.Context, userID primitive.ObjectID, addressID string) ([]models.SavedAddress, error) {
	id, err := parseID(addressID, "address")
	if err != nil {
		return nil, err
	}
	addresses, err := s.Addresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := findAddress(addresses, id)
	if i < 0 {
		return nil, apperr.NotFound(apperr.CodeAddressNotFound, "Address not found")
	}
	addresses = append(addresses[:i], addresses[i+1:]...)
	if err := s.users.SetAddresses(ctx, userID, addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *AuthService) SetDefaultAddress(ctx context.Context, userID primitive.ObjectID, addressID string) ([]models.SavedAddress, error) {
	id, err := parseID(addressID, "address")
	if err != nil {
		return nil, err
	}
	addresses, err := s.Addresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	if findAddress(addresses, id) < 0 {
		return nil, apperr.NotFound(apperr.CodeAddressNotFound, "Address not found")
	}
	makeDefault(addresses, id)
	if err := s.users.SetAddresses(ctx, userID, addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *AuthService) issueCode(ctx context.Context, purpose, email string) (string, error) {
	code, err := auth.GenerateOTP()
	if err != nil {
		return "", err
	}
	if err := s.otps.SaveCode(ctx, purpose, email, code, s.otpTTL); err != nil {
		return "", err
	}
	return code, nil
}

// ForgotPassword mails a reset code to a verified account.
func (s *AuthService) ForgotPassword(ctx context.Context, rawEmail string) error {
	email := models.NormalizeEmail(rawEmail)
	if email == "" {
		return apperr.Validation("Email is required")
	}
	u, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	if u == nil || !u.EmailVerified {
		if _, perr := s.otps.GetPending(ctx, email); perr == nil {
			return apperr.New(apperr.KindValidation, apperr.CodeEmailNotVerified,
				"Account not verified yet. Please verify your email first to complete registration.")
		}
		return apperr.NotFound(apperr.CodeUserNotFound,
			"No account found with this email address. Please check your email or register a new account.")
	}

	code, err := s.issueCode(ctx, purposeReset, email)
	if err != nil {
		return err
	}
	if err := s.mailer.SendPasswordResetCode(ctx, email, code); err != nil {
		return mailError(err, "Failed to send password reset email. Please try again later.")
	}
	return nil
}

// checkCode compares code with the stored one for purpose and email and
// consumes it on success.
func (s *AuthService) checkCode(ctx context.Context, purpose, email, code, missing string) error {
	stored, err := s.otps.GetCode(ctx, purpose, email)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.New(apperr.KindValidation, apperr.CodeOTPExpired, missing)
	}
	if err != nil {
		return err
	}
	if !auth.EqualCode(stored, strings.TrimSpace(code)) {
		return apperr.New(apperr.KindValidation, apperr.CodeInvalidOTP, "Invalid OTP. Please check and try again.")
	}
	return s.otps.DeleteCode(ctx, purpose, email)
}

func (s *AuthService) setPassword(ctx context.Context, id primitive.ObjectID, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.users.SetPassword(ctx, id, hash)
}

func (s *AuthService) ResetPassword(ctx context.Context, rawEmail, code, newPassword string) error {
	email := models.NormalizeEmail(rawEmail)
	if email == "" || strings.TrimSpace(code) == "" || newPassword == "" {
		return apperr.Validation("Email, OTP, and new password are required")
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	u, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound(apperr.CodeUserNotFound, "User not found")
	}
	if err := s.checkCode(ctx, purposeReset, email, code,
		"No password reset request found. Please request a new OTP."); err != nil {
		return err
	}
	if err := s.setPassword(ctx, u.ID, newPassword); err != nil {
		return err
	}
	s.logger.Info("password reset", zap.String("user_id", u.ID.Hex()))
	return nil
}

// RequestPasswordChange mails a change code to the signed-in user.
func (s *AuthService) RequestPasswordChange(ctx context.Context, userID primitive.ObjectID) error {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	code, err := s.issueCode(ctx, purposeChange, u.Email)
	if err != nil {
		return err
	}
	if err := s.mailer.SendPasswordChangeCode(ctx, u.Email, u.Name, code); err != nil {
		return mailError(err, "Failed to send password change OTP email. Please try again later.")
	}
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID primitive.ObjectID, code, newPassword string) error {
	if strings.TrimSpace(code) == "" || newPassword == "" {
		return apperr.Validation("OTP and new password are required")
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	u, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.checkCode(ctx, purposeChange, u.Email, code,
		"No password change request found. Please request a new OTP."); err != nil {
		return err
	}
	if err := s.setPassword(ctx, u.ID, newPassword); err != nil {
		return err
	}
	s.logger.Info("password changed", zap.String("user_id", u.ID.Hex()))
	return nil
}
