package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sailorswift/sailor-swift-api/internal/domain/entity"
	repo "github.com/sailorswift/sailor-swift-api/internal/domain/repository"
	"github.com/sailorswift/sailor-swift-api/pkg/helpers"
)

var (
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned for unknown email, passwordless
	// account and wrong password alike; the single message prevents
	// user enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrInvalidGoogleToken = errors.New("invalid google token")
	// ErrInvalidToken covers every refresh failure: malformed, expired,
	// bad signature, unknown or deactivated subject.
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrWalletRequired    = errors.New("wallet address is required")
	ErrSignatureRequired = errors.New("wallet signature is required")
	ErrInvalidSignature  = errors.New("invalid wallet signature")
)

const walletMessagePrefix = "Sign this message to authenticate with Sailor Swift: "

// walletEmailDomain builds the deterministic placeholder email assigned to
// wallet-only accounts; the users.email unique constraint still applies.
const walletEmailDomain = "@wallet.local"

// GoogleClaims is the claim set the external Google verifier extracts from
// a provider credential.
type GoogleClaims struct {
	GoogleID      string
	Email         string
	FirstName     string
	LastName      string
	EmailVerified bool
}

// GoogleVerifier validates a raw provider token. Verification failures come
// back as errors; infrastructure problems never panic through this boundary.
type GoogleVerifier interface {
	Verify(ctx context.Context, credential string) (*GoogleClaims, error)
}

// WalletVerifier reports whether signature over message recovers address.
type WalletVerifier interface {
	Verify(address, message, signature string) bool
}

// NonceStore issues and consumes one-time wallet challenge nonces.
type NonceStore interface {
	Issue(ctx context.Context, address string) (string, error)
	Consume(ctx context.Context, address, nonce string) bool
}

// Service is the identity resolver: it maps an inbound authentication
// signal (email+password, Google claim, wallet address) to exactly one
// user, creating or linking as needed, then delegates to the token manager.
type Service struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Google GoogleVerifier
	Wallet WalletVerifier
	Nonces NonceStore
	// RequireWalletSignature gates proof-of-key-ownership on the wallet
	// path. Off by default: a bare address authenticates, matching the
	// historical behavior.
	RequireWalletSignature bool
	Logger                 *logrus.Logger
}

func NewService(r repo.UserRepository, jwt *helpers.JWTManager, google GoogleVerifier, wallet WalletVerifier, nonces NonceStore, requireWalletSig bool, logger *logrus.Logger) *Service {
	return &Service{
		Repo:                   r,
		JWT:                    jwt,
		Google:                 google,
		Wallet:                 wallet,
		Nonces:                 nonces,
		RequireWalletSignature: requireWalletSig,
		Logger:                 logger,
	}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type SignupInput struct {
	Email     string
	Password  string
	Username  *string
	FirstName *string
	LastName  *string
}

// Signup registers a password account. The existence checks give friendly
// duplicate messages; the unique constraints on the table remain the actual
// enforcement against concurrent registrations.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*entity.User, TokenPair, error) {
	if _, err := s.Repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, TokenPair{}, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, TokenPair{}, err
	}
	if in.Username != nil && *in.Username != "" {
		if _, err := s.Repo.GetByUsername(ctx, *in.Username); err == nil {
			return nil, TokenPair{}, ErrUsernameTaken
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, TokenPair{}, err
		}
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	u := &entity.User{
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: &hash,
		IsVerified:   false,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateKey) {
			// Lost the race against a concurrent signup.
			return nil, TokenPair{}, ErrEmailTaken
		}
		return nil, TokenPair{}, err
	}

	pair, err := s.issueTokens(u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Login authenticates the password path. Deactivation is only reported
// after the credentials check out.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if !u.HasPassword() || !helpers.CompareHashAndPassword(*u.PasswordHash, password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, TokenPair{}, ErrAccountDeactivated
	}
	pair, err := s.issueTokens(u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// GoogleLogin resolves a verified Google credential to a user: by google id
// first, then by email (linking the google id onto the existing account
// without touching its password hash), and finally by creating a fresh
// account from the provider claims.
func (s *Service) GoogleLogin(ctx context.Context, credential string) (*entity.User, TokenPair, error) {
	claims, err := s.Google.Verify(ctx, credential)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("google token verification failed")
		}
		return nil, TokenPair{}, ErrInvalidGoogleToken
	}

	u, err := s.Repo.GetByGoogleID(ctx, claims.GoogleID)
	if errors.Is(err, repo.ErrNotFound) {
		u, err = s.Repo.GetByEmail(ctx, claims.Email)
		if errors.Is(err, repo.ErrNotFound) {
			return s.createGoogleUser(ctx, claims)
		}
		if err != nil {
			return nil, TokenPair{}, err
		}
		// Link the Google identity onto the existing account. The password
		// hash, if any, stays: password login keeps working after linking.
		u.GoogleID = &claims.GoogleID
	} else if err != nil {
		return nil, TokenPair{}, err
	}

	if !u.IsActive {
		return nil, TokenPair{}, ErrAccountDeactivated
	}

	if claims.FirstName != "" {
		first := claims.FirstName
		u.FirstName = &first
	}
	if claims.LastName != "" {
		last := claims.LastName
		u.LastName = &last
	}
	// is_verified is monotonic: the provider can set it, never clear it.
	if claims.EmailVerified {
		u.IsVerified = true
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateKey) {
			return nil, TokenPair{}, ErrEmailTaken
		}
		return nil, TokenPair{}, err
	}

	pair, err := s.issueTokens(u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

func (s *Service) createGoogleUser(ctx context.Context, claims *GoogleClaims) (*entity.User, TokenPair, error) {
	googleID := claims.GoogleID
	u := &entity.User{
		Email:      claims.Email,
		GoogleID:   &googleID,
		IsVerified: claims.EmailVerified,
	}
	if claims.FirstName != "" {
		first := claims.FirstName
		u.FirstName = &first
	}
	if claims.LastName != "" {
		last := claims.LastName
		u.LastName = &last
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateKey) {
			return nil, TokenPair{}, ErrEmailTaken
		}
		return nil, TokenPair{}, err
	}
	pair, err := s.issueTokens(u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

type WalletLoginInput struct {
	Address   string
	Message   string
	Signature string
}

// WalletLogin authenticates a wallet address, creating the account on first
// sight. Addresses are lower-cased before lookup and storage so checksummed
// and plain spellings resolve to the same identity. Signature proof is only
// enforced when RequireWalletSignature is set.
func (s *Service) WalletLogin(ctx context.Context, in WalletLoginInput) (*entity.User, TokenPair, error) {
	addr := strings.ToLower(strings.TrimSpace(in.Address))
	if addr == "" {
		return nil, TokenPair{}, ErrWalletRequired
	}

	if s.RequireWalletSignature {
		if in.Message == "" || in.Signature == "" {
			return nil, TokenPair{}, ErrSignatureRequired
		}
		nonce := strings.TrimPrefix(in.Message, walletMessagePrefix)
		if nonce == in.Message || !s.Nonces.Consume(ctx, addr, nonce) {
			return nil, TokenPair{}, ErrInvalidSignature
		}
		if !s.Wallet.Verify(addr, in.Message, in.Signature) {
			return nil, TokenPair{}, ErrInvalidSignature
		}
	}

	u, err := s.Repo.GetByWallet(ctx, addr)
	if errors.Is(err, repo.ErrNotFound) {
		wallet := addr
		u = &entity.User{
			Email:         addr + walletEmailDomain,
			WalletAddress: &wallet,
			IsVerified:    true,
		}
		if err := s.Repo.Create(ctx, u); err != nil {
			if errors.Is(err, repo.ErrDuplicateKey) {
				return nil, TokenPair{}, ErrEmailTaken
			}
			return nil, TokenPair{}, err
		}
	} else if err != nil {
		return nil, TokenPair{}, err
	}

	if !u.IsActive {
		return nil, TokenPair{}, ErrAccountDeactivated
	}

	pair, err := s.issueTokens(u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// WalletChallenge issues a one-time nonce for the address and returns the
// exact message the wallet must sign.
func (s *Service) WalletChallenge(ctx context.Context, address string) (string, error) {
	addr := strings.ToLower(strings.TrimSpace(address))
	if addr == "" {
		return "", ErrWalletRequired
	}
	nonce, err := s.Nonces.Issue(ctx, addr)
	if err != nil {
		return "", err
	}
	return walletMessagePrefix + nonce, nil
}

// Refresh rotates a refresh token into a fresh access+refresh pair. Every
// failure collapses to ErrInvalidToken so callers cannot probe which step
// rejected them.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*entity.User, TokenPair, error) {
	sub, err := s.JWT.Verify(refreshToken)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidToken
	}
	u, err := s.Repo.GetByID(ctx, sub)
	if err != nil || u == nil || !u.IsActive {
		return nil, TokenPair{}, ErrInvalidToken
	}
	pair, err := s.issueTokens(u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// CurrentUser fetches the user behind a verified access-token subject.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrInvalidToken
	}
	return u, nil
}

func (s *Service) issueTokens(u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}
