package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-password/password"
	"golang.org/x/crypto/bcrypt"

	"github.com/harsha33983/harshaflix/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailInvalid       = errors.New("email is invalid")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailExists        = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const minPasswordLength = 6

// Service manages persistence of user accounts in a single JSON file.
type Service struct {
	mu       sync.RWMutex
	path     string
	accounts map[string]models.Account
}

// NewService creates an accounts service storing data inside the provided directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create accounts dir: %w", err)
	}

	svc := &Service{
		path:     filepath.Join(storageDir, "accounts.json"),
		accounts: make(map[string]models.Account),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// Get returns the account with the given ID if present.
func (s *Service) Get(id string) (models.Account, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Account{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	return account, ok
}

// GetByEmail returns the account registered under the given email if present.
func (s *Service) GetByEmail(email string) (models.Account, bool) {
	email = normalizeEmail(email)
	if email == "" {
		return models.Account{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if normalizeEmail(a.Email) == email {
			return a, true
		}
	}
	return models.Account{}, false
}

// Exists reports whether an account with the provided ID is registered.
func (s *Service) Exists(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.accounts[id]
	return ok
}

// Create registers a new account under the provided email address.
func (s *Service) Create(email, pass string) (models.Account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return models.Account{}, ErrEmailRequired
	}
	if !validEmail(email) {
		return models.Account{}, ErrEmailInvalid
	}

	pass = strings.TrimSpace(pass)
	if pass == "" {
		return models.Account{}, ErrPasswordRequired
	}
	if len(pass) < minPasswordLength {
		return models.Account{}, ErrPasswordTooShort
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if normalizeEmail(a.Email) == email {
			return models.Account{}, ErrEmailExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, fmt.Errorf("hash password: %w", err)
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	account := models.Account{
		ID:           id,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.accounts[id] = account

	if err := s.saveLocked(); err != nil {
		delete(s.accounts, id)
		return models.Account{}, err
	}

	return account, nil
}

// Authenticate verifies the email and password, returning the account if valid.
func (s *Service) Authenticate(email, pass string) (models.Account, error) {
	email = normalizeEmail(email)
	pass = strings.TrimSpace(pass)

	if email == "" || pass == "" {
		return models.Account{}, ErrInvalidCredentials
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var account models.Account
	found := false
	for _, a := range s.accounts {
		if normalizeEmail(a.Email) == email {
			account = a
			found = true
			break
		}
	}

	if !found {
		// Run a comparison anyway so lookups take constant time.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$dummy"), []byte(pass))
		return models.Account{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(pass)); err != nil {
		return models.Account{}, ErrInvalidCredentials
	}

	return account, nil
}

// UpdatePassword changes the password for an account.
func (s *Service) UpdatePassword(id, newPassword string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrAccountNotFound
	}

	newPassword = strings.TrimSpace(newPassword)
	if newPassword == "" {
		return ErrPasswordRequired
	}
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	account.PasswordHash = string(hash)
	account.UpdatedAt = time.Now().UTC()
	s.accounts[id] = account

	return s.saveLocked()
}

// ResetPassword replaces the account's password with a generated temporary
// one and returns it in plain text, to be shown to the user exactly once.
func (s *Service) ResetPassword(email string) (string, error) {
	account, ok := s.GetByEmail(email)
	if !ok {
		return "", ErrAccountNotFound
	}

	temp, err := password.Generate(16, 4, 0, false, false)
	if err != nil {
		return "", fmt.Errorf("generate temporary password: %w", err)
	}

	if err := s.UpdatePassword(account.ID, temp); err != nil {
		return "", err
	}
	return temp, nil
}

// Delete removes an account by ID.
func (s *Service) Delete(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrAccountNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return ErrAccountNotFound
	}

	delete(s.accounts, id)

	return s.saveLocked()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open accounts file: %w", err)
	}
	defer file.Close()

	dec := json.NewDecoder(file)
	var stored []models.AccountStorage
	if err := dec.Decode(&stored); err != nil {
		return fmt.Errorf("decode accounts: %w", err)
	}

	s.accounts = make(map[string]models.Account, len(stored))
	for _, accountStorage := range stored {
		if strings.TrimSpace(accountStorage.ID) == "" {
			continue
		}
		account := accountStorage.ToAccount()
		if account.CreatedAt.IsZero() {
			account.CreatedAt = time.Now().UTC()
		}
		if account.UpdatedAt.IsZero() {
			account.UpdatedAt = account.CreatedAt
		}
		s.accounts[account.ID] = account
	}

	return nil
}

func (s *Service) saveLocked() error {
	// Storage format carries the password hash; API responses never do.
	storage := make([]models.AccountStorage, 0, len(s.accounts))
	for _, account := range s.accounts {
		storage = append(storage, account.ToStorage())
	}

	sort.Slice(storage, func(i, j int) bool {
		return storage[i].CreatedAt.Before(storage[j].CreatedAt)
	})

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create accounts temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(storage); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode accounts: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync accounts: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close accounts temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace accounts file: %w", err)
	}

	return nil
}
