package auth

import (
	"fmt"

	"github.com/openioc/vmecore/internal/config"
	"go.uber.org/zap"
)

type Role string

const (
	RoleObserver Role = "observer"
	RoleOperator Role = "operator"
)

// Service authenticates the operators named in the configuration and
// issues access tokens for them. There is no user store: an IOC's operator
// list is deployment configuration, provisioned alongside the record
// databases.
type Service struct {
	jwtHandler *JWTHandler
	hasher     *PasswordHasher
	operators  map[string]config.OperatorConfig
	logger     *zap.Logger
}

func NewService(cfg config.AuthConfig, logger *zap.Logger) *Service {
	operators := make(map[string]config.OperatorConfig, len(cfg.Operators))
	for _, op := range cfg.Operators {
		operators[op.Name] = op
	}

	return &Service{
		jwtHandler: NewJWTHandler(cfg.JWTSecret, cfg.TokenTTL),
		hasher:     NewPasswordHasher(),
		operators:  operators,
		logger:     logger,
	}
}

// Login verifies an operator's password and returns an access token. The
// error is the same whether the name or the password was wrong.
func (s *Service) Login(name, password string) (string, error) {
	op, ok := s.operators[name]
	if !ok {
		s.logger.Warn("Login failed", zap.String("operator", name), zap.String("reason", "unknown operator"))
		return "", fmt.Errorf("invalid credentials")
	}

	valid, err := s.hasher.VerifyPassword(password, op.PasswordHash)
	if err != nil || !valid {
		s.logger.Warn("Login failed", zap.String("operator", name), zap.String("reason", "invalid password"))
		return "", fmt.Errorf("invalid credentials")
	}

	token, err := s.jwtHandler.GenerateToken(op.Name, op.Role)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	s.logger.Info("Operator logged in", zap.String("operator", name), zap.String("role", op.Role))
	return token, nil
}

// ValidateToken parses an access token and returns its claims.
func (s *Service) ValidateToken(token string) (*Claims, error) {
	return s.jwtHandler.ValidateToken(token)
}

// roleAllows reports whether a token role satisfies the required one.
// Operators can do everything observers can.
func roleAllows(role string, required Role) bool {
	switch required {
	case RoleObserver:
		return role == string(RoleObserver) || role == string(RoleOperator)
	case RoleOperator:
		return role == string(RoleOperator)
	default:
		return false
	}
}
