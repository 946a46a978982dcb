package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
)

// guestMarker is stored under the current-user key while browsing as a guest.
const guestMarker = `"guest"`

// UserRepository defines the current-user and account registry operations
type UserRepository interface {
	GetCurrentUser(ctx context.Context) (*models.User, error)
	SaveCurrentUser(ctx context.Context, user *models.User) error
	ClearCurrentUser(ctx context.Context) error
	SetGuest(ctx context.Context) error
	IsGuest(ctx context.Context) (bool, error)

	GetUserEmail(ctx context.Context) (string, error)
	SaveUserEmail(ctx context.Context, email string) error
	ClearUserEmail(ctx context.Context) error

	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateAccount(ctx context.Context, account *models.Account) error
	GetAccounts(ctx context.Context) ([]models.Account, error)
	SearchUsers(ctx context.Context, query string) ([]models.User, error)
}

// KVUserRepository implements UserRepository on a key-value store
type KVUserRepository struct {
	base
}

// NewUserRepository creates a new user repository
func NewUserRepository(store kvstore.Store, opts ...Option) *KVUserRepository {
	return &KVUserRepository{base: newBase(store, opts)}
}

// GetCurrentUser returns the signed-in user, or nil when nobody or a guest is stored.
func (r *KVUserRepository) GetCurrentUser(ctx context.Context) (*models.User, error) {
	guest, err := r.IsGuest(ctx)
	if err != nil || guest {
		return nil, err
	}
	var user models.User
	found, err := r.load(ctx, r.keys.CurrentUser(), &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

func (r *KVUserRepository) SaveCurrentUser(ctx context.Context, user *models.User) error {
	return r.save(ctx, r.keys.CurrentUser(), user)
}

func (r *KVUserRepository) ClearCurrentUser(ctx context.Context) error {
	return r.remove(ctx, r.keys.CurrentUser())
}

func (r *KVUserRepository) SetGuest(ctx context.Context) error {
	return r.store.Set(ctx, r.keys.CurrentUser(), guestMarker)
}

func (r *KVUserRepository) IsGuest(ctx context.Context) (bool, error) {
	raw, ok, err := r.store.Get(ctx, r.keys.CurrentUser())
	if err != nil || !ok {
		return false, err
	}
	raw = strings.TrimSpace(raw)
	return raw == guestMarker || raw == "guest", nil
}

// GetUserEmail returns the remembered email, stored as a plain string.
func (r *KVUserRepository) GetUserEmail(ctx context.Context) (string, error) {
	email, _, err := r.store.Get(ctx, r.keys.UserEmail())
	return email, err
}

func (r *KVUserRepository) SaveUserEmail(ctx context.Context, email string) error {
	return r.store.Set(ctx, r.keys.UserEmail(), email)
}

func (r *KVUserRepository) ClearUserEmail(ctx context.Context) error {
	return r.remove(ctx, r.keys.UserEmail())
}

// CreateAccount registers account. Emails are unique, compared case-insensitively.
func (r *KVUserRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	accounts, err := r.accountsLenient(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if strings.EqualFold(a.Email, account.Email) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, account.Email)
		}
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = r.now().UTC()
	}
	accounts = append(accounts, *account)
	return r.save(ctx, r.keys.Accounts(), accounts)
}

func (r *KVUserRepository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	accounts, err := r.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if strings.EqualFold(accounts[i].Email, email) {
			return &accounts[i], nil
		}
	}
	return nil, ErrNotFound
}

// UpdateAccount replaces the registry entry with the same id.
func (r *KVUserRepository) UpdateAccount(ctx context.Context, account *models.Account) error {
	accounts, err := r.accountsLenient(ctx)
	if err != nil {
		return err
	}
	for i := range accounts {
		if accounts[i].ID == account.ID {
			accounts[i] = *account
			return r.save(ctx, r.keys.Accounts(), accounts)
		}
	}
	return ErrNotFound
}

func (r *KVUserRepository) GetAccounts(ctx context.Context) ([]models.Account, error) {
	accounts := []models.Account{}
	if _, err := r.load(ctx, r.keys.Accounts(), &accounts); err != nil {
		return []models.Account{}, err
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	return accounts, nil
}

// SearchUsers matches registered users by name or email.
func (r *KVUserRepository) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	accounts, err := r.GetAccounts(ctx)
	if err != nil {
		return []models.User{}, err
	}
	q := strings.ToLower(query)
	users := make([]models.User, 0)
	for _, a := range accounts {
		if strings.Contains(strings.ToLower(a.Name), q) || strings.Contains(strings.ToLower(a.Email), q) {
			users = append(users, a.User)
		}
	}
	return users, nil
}

func (r *KVUserRepository) accountsLenient(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if _, err := r.loadLenient(ctx, r.keys.Accounts(), &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}
