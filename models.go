package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ProviderType identifies the identity source an account was created through.
type ProviderType = string

const (
	// ProviderLocal is a password account created through registration
	ProviderLocal ProviderType = "local"
	// ProviderGoogle is an account created or matched via Google federated login
	ProviderGoogle ProviderType = "google"
)

// User is the identity record. Accounts are never physically removed; deletion
// flips the Deleted flag and the record stays behind its unique email.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string       `bun:"email,notnull,unique" json:"email,omitempty"`
	Username      string       `bun:"username,notnull" json:"username,omitempty"`
	PasswordHash  string       `bun:"password_hash" json:"-"`
	Role          UserRole     `bun:"user_role,notnull" json:"user_role,omitempty"`
	Provider      ProviderType `bun:"provider,notnull" json:"provider,omitempty"`
	Active        bool         `bun:"is_active" json:"is_active,omitempty"`
	Locked        bool         `bun:"is_locked" json:"is_locked,omitempty"`
	Deleted       bool         `bun:"is_deleted" json:"is_deleted,omitempty"`
	CreatedAt     *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// TokenType discriminates the opaque credentials we persist. A single record
// type with a type tag, not a hierarchy.
type TokenType = string

const (
	// TokenVerification confirms a fresh registration
	TokenVerification TokenType = "verification"
	// TokenRefresh redeems for a new session, single use
	TokenRefresh TokenType = "refresh"
	// TokenDeletion confirms an account deletion request
	TokenDeletion TokenType = "deletion"
)

// Token is an opaque bearer credential. The value is the capability: anyone
// holding the string can redeem it, so values come from crypto/rand and must
// never be logged.
type Token struct {
	bun.BaseModel `bun:"table:tokens,alias:tkn"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Value         string     `bun:"value,notnull,unique" json:"-"`
	Type          TokenType  `bun:"token_type,notnull" json:"token_type,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// IsValidTokenType checks the discriminator against the known set
func IsValidTokenType(t TokenType) bool {
	switch t {
	case TokenVerification, TokenRefresh, TokenDeletion:
		return true
	default:
		return false
	}
}
