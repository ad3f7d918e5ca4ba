// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/coinvoice/internal/billing"
)

type User struct {
	ID           string             `db:"id"`
	Email        string             `db:"email"`
	PasswordHash string             `db:"password_hash"`
	Name         string             `db:"name"`
	Role         string             `db:"role"`
	Plan         billing.Plan       `db:"plan"`
	Features     billing.FeatureSet `db:"features"`
	InvoiceCount int                `db:"invoice_count"`
	Theme        string             `db:"theme"`
	TokenVersion int                `db:"token_version"`
	CreatedAt    time.Time          `db:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at"`
	DeletedAt    *time.Time         `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)
