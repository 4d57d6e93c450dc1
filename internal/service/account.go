package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"SignBridge/internal/models"
	"SignBridge/pkg/cache"
	"SignBridge/pkg/errors"
	"SignBridge/pkg/logger"
	"SignBridge/pkg/util"
)

const profileCacheTTL = 5 * time.Minute

// AccountService owns sign-up, sign-in and profile access. Sign-up is a
// two-phase write (credential record, then profile row) with an explicit
// compensating delete; the rollback outcome is surfaced, never swallowed.
type AccountService struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewAccountService(db *gorm.DB, c cache.Cache) *AccountService {
	return &AccountService{db: db, cache: c}
}

// SignUp registers a new user. The duplicate-email check is a read, not a
// constraint: it runs before any credential is created, so a conflicting
// email never leaves a half-written identity behind.
func (s *AccountService) SignUp(ctx context.Context, email, password, fullName, role string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !strings.Contains(email, "@") || len(email) < 5 {
		return nil, errors.WithCode(errors.CodeConflict, "Adresse email invalide")
	}
	if len(password) < 6 {
		return nil, errors.WithCode(errors.CodeConflict, "Le mot de passe doit contenir au moins 6 caractères")
	}
	if !models.ValidRole(role) {
		role = models.RoleEntendant
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "vérification de l'email impossible")
	}
	if count > 0 {
		return nil, errors.WithCode(errors.CodeConflict, "Cet email est déjà enregistré")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hachage du mot de passe impossible")
	}

	identity := &models.AuthIdentity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		RoleHint:     role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(identity).Error; err != nil {
		return nil, errors.Wrap(err, "création de l'identité impossible")
	}

	user := &models.User{
		ID:       identity.ID,
		Email:    email,
		FullName: fullName,
		UserRole: role,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		// compensate: the identity must not outlive a missing profile
		if delErr := s.db.WithContext(ctx).Delete(&models.AuthIdentity{}, "id = ?", identity.ID).Error; delErr != nil {
			logger.Error("identity rollback failed after profile insert error",
				zap.String("identity", identity.ID), zap.Error(delErr))
			return nil, errors.WrapCode(errors.CodePartialRollback, err,
				"création du profil échouée et identité orpheline non supprimée")
		}
		return nil, errors.Wrap(err, "création du profil impossible")
	}

	util.Sig().Emit(models.SigUserCreate, user)
	return user, nil
}

// SignIn checks credentials against the identity record and returns the
// profile. Both unknown-email and bad-password collapse into one
// invalid-credential answer.
func (s *AccountService) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	var identity models.AuthIdentity
	if err := s.db.WithContext(ctx).First(&identity, "email = ?", email).Error; err != nil {
		return nil, errors.WithCode(errors.CodeInvalidCredential, "Email ou mot de passe incorrect")
	}
	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) != nil {
		return nil, errors.WithCode(errors.CodeInvalidCredential, "Email ou mot de passe incorrect")
	}

	return s.GetUserProfile(ctx, identity.ID)
}

// GetUserProfile reads a profile, cache-aside.
func (s *AccountService) GetUserProfile(ctx context.Context, id string) (*models.User, error) {
	key := "profile:" + id
	if s.cache != nil {
		if v, ok := s.cache.Get(ctx, key); ok {
			if u, ok := v.(*models.User); ok {
				return u, nil
			}
		}
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, errors.WrapCode(errors.CodeNotFound, err, "profil introuvable")
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, &user, profileCacheTTL)
	}
	return &user, nil
}

// CheckAndFixUserRole aligns the stored role with expected. It is
// idempotent: a second call with the same expectation is a pure read.
func (s *AccountService) CheckAndFixUserRole(ctx context.Context, id, expectedRole string) (bool, error) {
	if !models.ValidRole(expectedRole) {
		return false, errors.WithCodef(errors.CodeConflict, "rôle inconnu: %s", expectedRole)
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return false, errors.WrapCode(errors.CodeNotFound, err, "profil introuvable")
	}
	if user.UserRole == expectedRole {
		return false, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("user_role", expectedRole).Error; err != nil {
		return false, errors.Wrap(err, "correction du rôle impossible")
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "profile:"+id)
	}
	return true, nil
}
