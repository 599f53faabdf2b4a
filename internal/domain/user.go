package domain

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleCustomer }

type User struct {
	ID        string `db:"id" json:"id"`
	Email     string `db:"email" json:"email"`
	Hash      string `db:"password_hash" json:"-"`
	Role      Role   `db:"role" json:"role"`
	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"updatedAt,omitempty"`
}

// Identity is what a verified bearer token says about its holder.
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}
