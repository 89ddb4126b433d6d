package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	accounts "github.com/wasiakbar8/smartstudy-accounts"
	"github.com/wasiakbar8/smartstudy-accounts/internal"
	"github.com/wasiakbar8/smartstudy-accounts/jwt"
	"github.com/wasiakbar8/smartstudy-accounts/password"
)

// Config holds the service tunables. Zero values fall back to the documented
// defaults; SessionSigningKey is required.
type Config struct {
	// KeyPrefix namespaces every Redis key the service writes. Default "idp".
	KeyPrefix string
	// SessionSigningKey is the hs256 key for session tokens.
	SessionSigningKey []byte
	// Issuer is stamped into session tokens. Default "smartstudy-accounts".
	Issuer string
	// SessionTTL bounds session tokens and the active-session marker.
	// Default 1h.
	SessionTTL time.Duration
	// VerificationTTL bounds emailed verification challenges. Default 24h.
	VerificationTTL time.Duration
	// ResetTTL bounds emailed password-reset challenges. Default 1h.
	ResetTTL time.Duration

	// LoginWindow and LoginMaxAttempts set the per-email authentication
	// throttle. Defaults 10m and 10.
	LoginWindow      time.Duration
	LoginMaxAttempts int
	// MailWindow and MailMaxSends set the per-address outbound-mail throttle.
	// Defaults 1h and 5.
	MailWindow   time.Duration
	MailMaxSends int

	// Password holds the argon2id parameters. Zero value selects the
	// service defaults.
	Password password.Config

	// Mailer receives outbound verification and reset mail. Default NoOpMailer.
	Mailer Mailer
}

// Service is the Redis-backed identity directory. It satisfies
// accounts.IdentityProvider and additionally completes the emailed challenges
// through ConfirmVerification and ConfirmPasswordReset.
type Service struct {
	redis    *redis.Client
	config   Config
	hasher   *password.Hasher
	sessions *jwt.Manager
	tokens   *mailTokenStore
	loginLim *fixedWindowLimiter
	mailLim  *fixedWindowLimiter
	mailer   Mailer
	now      func() time.Time
}

// New validates cfg and returns a ready Service.
func New(redisClient *redis.Client, cfg Config) (*Service, error) {
	if redisClient == nil {
		return nil, errors.New("identity: redis client is required")
	}
	if len(cfg.SessionSigningKey) == 0 {
		return nil, errors.New("identity: session signing key is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "idp"
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "smartstudy-accounts"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}
	if cfg.VerificationTTL <= 0 {
		cfg.VerificationTTL = 24 * time.Hour
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	if cfg.LoginWindow <= 0 {
		cfg.LoginWindow = 10 * time.Minute
	}
	if cfg.LoginMaxAttempts == 0 {
		cfg.LoginMaxAttempts = 10
	}
	if cfg.MailWindow <= 0 {
		cfg.MailWindow = time.Hour
	}
	if cfg.MailMaxSends == 0 {
		cfg.MailMaxSends = 5
	}
	if cfg.Password == (password.Config{}) {
		cfg.Password = password.Config{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		}
	}
	if cfg.Mailer == nil {
		cfg.Mailer = NoOpMailer{}
	}

	hasher, err := password.New(cfg.Password)
	if err != nil {
		return nil, err
	}

	sessions, err := jwt.NewManager(jwt.Config{
		SessionTTL:    cfg.SessionTTL,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    cfg.SessionSigningKey,
		Issuer:        cfg.Issuer,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		redis:    redisClient,
		config:   cfg,
		hasher:   hasher,
		sessions: sessions,
		tokens:   newMailTokenStore(redisClient, cfg.KeyPrefix),
		loginLim: newFixedWindowLimiter(redisClient, cfg.KeyPrefix+":lgn", cfg.LoginWindow, cfg.LoginMaxAttempts),
		mailLim:  newFixedWindowLimiter(redisClient, cfg.KeyPrefix+":mail", cfg.MailWindow, cfg.MailMaxSends),
		mailer:   cfg.Mailer,
		now:      time.Now,
	}, nil
}

func (s *Service) accountKey(id string) string { return s.config.KeyPrefix + ":acct:" + id }
func (s *Service) emailKey(email string) string {
	return s.config.KeyPrefix + ":email:" + email
}
func (s *Service) sessionKey(id string) string { return s.config.KeyPrefix + ":sess:" + id }

// CreateAccount registers email behind a unique-index claim, stores the
// argon2id credential, and signs the new account in. The verification flag
// starts false.
func (s *Service) CreateAccount(ctx context.Context, email, plaintext string) (*accounts.Account, error) {
	email = accounts.NormalizeEmail(email)
	if email == "" {
		return nil, accounts.NewIdentityError(accounts.IdentityMalformedEmail, "empty email")
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooShort) || errors.Is(err, password.ErrPasswordTooLong) {
			return nil, accounts.NewIdentityError(accounts.IdentityWeakCredential, err.Error())
		}
		return nil, accounts.NewIdentityError(accounts.IdentityUnknown, err.Error())
	}

	id := uuid.NewString()

	claimed, err := s.redis.SetNX(ctx, s.emailKey(email), id, 0).Result()
	if err != nil {
		return nil, accounts.NewIdentityError(accounts.IdentityConnectivity, err.Error())
	}
	if !claimed {
		return nil, accounts.NewIdentityError(accounts.IdentityEmailInUse, "email already registered")
	}

	record := &accountRecord{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().Unix(),
	}
	if err := s.saveRecord(ctx, record); err != nil {
		// Release the index claim so the address is not burned.
		s.redis.Del(context.WithoutCancel(ctx), s.emailKey(email))
		return nil, err
	}

	account := &accounts.Account{ID: id, Email: email}
	if err := s.openSession(ctx, record); err != nil {
		return nil, err
	}

	return account, nil
}

// Authenticate checks the credential under the login throttle and returns the
// account with a freshly read verification flag. Success opens a provider
// session.
func (s *Service) Authenticate(ctx context.Context, email, plaintext string) (*accounts.Account, error) {
	email = accounts.NormalizeEmail(email)

	if err := s.loginLim.enforce(ctx, email); err != nil {
		return nil, s.mapInternal(err)
	}

	record, err := s.recordByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if record.Disabled {
		return nil, accounts.NewIdentityError(accounts.IdentityDisabled, "account disabled")
	}

	ok, err := s.hasher.Verify(plaintext, record.PasswordHash)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooLong) {
			return nil, accounts.NewIdentityError(accounts.IdentityInvalidCredential, err.Error())
		}
		return nil, accounts.NewIdentityError(accounts.IdentityUnknown, err.Error())
	}
	if !ok {
		return nil, accounts.NewIdentityError(accounts.IdentityWrongPassword, "credential mismatch")
	}

	if err := s.openSession(ctx, record); err != nil {
		return nil, err
	}

	return &accounts.Account{
		ID:            record.ID,
		Email:         record.Email,
		DisplayLabel:  record.DisplayLabel,
		EmailVerified: record.EmailVerified,
	}, nil
}

// SendVerificationEmail dispatches a verification challenge for the account.
func (s *Service) SendVerificationEmail(ctx context.Context, account *accounts.Account) error {
	if account == nil || account.ID == "" {
		return accounts.NewIdentityError(accounts.IdentityUserNotFound, "no account")
	}
	return s.sendChallenge(ctx, MailVerification, account.ID, account.Email, s.config.VerificationTTL)
}

// SendPasswordResetEmail dispatches a reset challenge for the address. The
// address must belong to a registered account.
func (s *Service) SendPasswordResetEmail(ctx context.Context, email string) error {
	email = accounts.NormalizeEmail(email)

	record, err := s.recordByEmail(ctx, email)
	if err != nil {
		return err
	}

	return s.sendChallenge(ctx, MailPasswordReset, record.ID, record.Email, s.config.ResetTTL)
}

func (s *Service) sendChallenge(ctx context.Context, kind MailKind, accountID, email string, ttl time.Duration) error {
	if err := s.mailLim.enforce(ctx, string(kind)+":"+email); err != nil {
		return s.mapInternal(err)
	}

	tokenID, err := internal.NewMailTokenID()
	if err != nil {
		return accounts.NewIdentityError(accounts.IdentityUnknown, err.Error())
	}
	secret, err := internal.NewMailSecret()
	if err != nil {
		return accounts.NewIdentityError(accounts.IdentityUnknown, err.Error())
	}

	record := &mailTokenRecord{
		AccountID:  accountID,
		SecretHash: internal.HashMailSecret(secret),
		ExpiresAt:  s.now().Add(ttl).Unix(),
	}
	if err := s.tokens.Save(ctx, kind, tokenID.String(), record, ttl); err != nil {
		return s.mapInternal(err)
	}

	token, err := internal.EncodeMailToken(tokenID.String(), secret)
	if err != nil {
		return accounts.NewIdentityError(accounts.IdentityUnknown, err.Error())
	}

	if err := s.mailer.Send(ctx, Mail{To: email, Kind: kind, Token: token, QueuedAt: s.now()}); err != nil {
		return accounts.NewIdentityError(accounts.IdentityConnectivity, err.Error())
	}

	return nil
}

// ConfirmVerification consumes an emailed verification token and marks the
// account verified.
func (s *Service) ConfirmVerification(ctx context.Context, token string) error {
	record, err := s.consumeChallenge(ctx, MailVerification, token)
	if err != nil {
		return err
	}

	acct, err := s.recordByID(ctx, record.AccountID)
	if err != nil {
		return err
	}
	acct.EmailVerified = true
	return s.saveRecord(ctx, acct)
}

// ConfirmPasswordReset consumes an emailed reset token, rotates the
// credential, and revokes any open session.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	record, err := s.consumeChallenge(ctx, MailPasswordReset, token)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooShort) || errors.Is(err, password.ErrPasswordTooLong) {
			return accounts.NewIdentityError(accounts.IdentityWeakCredential, err.Error())
		}
		return accounts.NewIdentityError(accounts.IdentityUnknown, err.Error())
	}

	acct, err := s.recordByID(ctx, record.AccountID)
	if err != nil {
		return err
	}
	acct.PasswordHash = hash
	if err := s.saveRecord(ctx, acct); err != nil {
		return err
	}

	if err := s.redis.Del(ctx, s.sessionKey(acct.ID)).Err(); err != nil {
		return accounts.NewIdentityError(accounts.IdentityConnectivity, err.Error())
	}
	return nil
}

func (s *Service) consumeChallenge(ctx context.Context, kind MailKind, token string) (*mailTokenRecord, error) {
	tokenID, secret, err := internal.DecodeMailToken(token)
	if err != nil {
		return nil, accounts.NewIdentityError(accounts.IdentityInvalidCredential, err.Error())
	}

	record, err := s.tokens.Consume(ctx, kind, tokenID, internal.HashMailSecret(secret))
	if err != nil {
		switch {
		case errors.Is(err, errTokenNotFound), errors.Is(err, errTokenSecretMismatch), errors.Is(err, errTokenAttemptsExceeded):
			return nil, accounts.NewIdentityError(accounts.IdentityInvalidCredential, err.Error())
		default:
			return nil, s.mapInternal(err)
		}
	}

	return record, nil
}

// UpdateDisplayLabel sets the account's display label in the directory and on
// the passed account.
func (s *Service) UpdateDisplayLabel(ctx context.Context, account *accounts.Account, label string) error {
	if account == nil || account.ID == "" {
		return accounts.NewIdentityError(accounts.IdentityUserNotFound, "no account")
	}

	record, err := s.recordByID(ctx, account.ID)
	if err != nil {
		return err
	}
	record.DisplayLabel = label
	if err := s.saveRecord(ctx, record); err != nil {
		return err
	}

	account.DisplayLabel = label
	return nil
}

// SignOut revokes the account's open session marker.
func (s *Service) SignOut(ctx context.Context, account *accounts.Account) error {
	if account == nil || account.ID == "" {
		return accounts.NewIdentityError(accounts.IdentityUserNotFound, "no account")
	}

	if err := s.redis.Del(ctx, s.sessionKey(account.ID)).Err(); err != nil {
		return accounts.NewIdentityError(accounts.IdentityConnectivity, err.Error())
	}
	return nil
}

// SessionToken returns the account's current session token, or the empty
// string when no session is open.
func (s *Service) SessionToken(ctx context.Context, accountID string) (string, error) {
	token, err := s.redis.Get(ctx, s.sessionKey(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", accounts.NewIdentityError(accounts.IdentityConnectivity, err.Error())
	}
	return token, nil
}

// VerifySessionToken checks a session token's signature and registered claims.
func (s *Service) VerifySessionToken(token string) (*jwt.SessionClaims, error) {
	return s.sessions.ParseSession(token)
}

func (s *Service) openSession(ctx context.Context, record *accountRecord) error {
	token, err := s.sessions.IssueSession(record.ID, record.Email, record.EmailVerified)
	if err != nil {
		return accounts.NewIdentityError(accounts.IdentityUnknown, err.Error())
	}
	if err := s.redis.Set(ctx, s.sessionKey(record.ID), token, s.config.SessionTTL).Err(); err != nil {
		return accounts.NewIdentityError(accounts.IdentityConnectivity, err.Error())
	}
	return nil
}

func (s *Service) recordByEmail(ctx context.Context, email string) (*accountRecord, error) {
	id, err := s.redis.Get(ctx, s.emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, accounts.NewIdentityError(accounts.IdentityUserNotFound, "unregistered email")
		}
		return nil, accounts.NewIdentityError(accounts.IdentityConnectivity, err.Error())
	}
	return s.recordByID(ctx, id)
}

func (s *Service) recordByID(ctx context.Context, id string) (*accountRecord, error) {
	data, err := s.redis.Get(ctx, s.accountKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, accounts.NewIdentityError(accounts.IdentityUserNotFound, "missing account record")
		}
		return nil, accounts.NewIdentityError(accounts.IdentityConnectivity, err.Error())
	}

	record, err := decodeAccountRecord(data)
	if err != nil {
		return nil, accounts.NewIdentityError(accounts.IdentityUnknown, err.Error())
	}
	return record, nil
}

func (s *Service) saveRecord(ctx context.Context, record *accountRecord) error {
	encoded, err := encodeAccountRecord(record)
	if err != nil {
		return accounts.NewIdentityError(accounts.IdentityUnknown, err.Error())
	}
	if err := s.redis.Set(ctx, s.accountKey(record.ID), encoded, 0).Err(); err != nil {
		return accounts.NewIdentityError(accounts.IdentityConnectivity, err.Error())
	}
	return nil
}

func (s *Service) mapInternal(err error) error {
	switch {
	case errors.Is(err, errRateLimited):
		return accounts.NewIdentityError(accounts.IdentityRateLimited, err.Error())
	case errors.Is(err, errRedisUnavailable):
		return accounts.NewIdentityError(accounts.IdentityConnectivity, err.Error())
	default:
		return accounts.NewIdentityError(accounts.IdentityUnknown, err.Error())
	}
}
