package security

import "golang.org/x/crypto/bcrypt"

// MaxPasswordBytes is the longest secret bcrypt accepts.
const MaxPasswordBytes = 72

// MinCost is the cheapest bcrypt cost, meant for tests.
const MinCost = bcrypt.MinCost

// Hasher is the one-way secret hasher used for user passwords.
type Hasher interface {
	Hash(plain string) (string, error)
	Matches(plain, hash string) bool
}

// BcryptHasher salts every Hash call; the cost is stored inside the hash.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

func (h *BcryptHasher) Matches(plain, hash string) bool {
	return CheckPassword(hash, plain) == nil
}

// HashPassword hashes a plain text password with bcrypt at the default cost.
func HashPassword(plain string) (string, error) {
	return NewBcryptHasher(bcrypt.DefaultCost).Hash(plain)
}

// CheckPassword compares a bcrypt hash with a plaintext password.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
