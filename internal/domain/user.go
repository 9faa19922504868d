package domain

type User struct {
	ID    string `db:"id" json:"uid"`
	Email string `db:"email" json:"email"`
	Name  string `db:"name" json:"displayName"`
	Hash  string `db:"password_hash" json:"-"`
}

// SdetUser is the profile kept by the SDET service; counters are owned by that service only.
type SdetUser struct {
	UID         string  `db:"uid" json:"uid"`
	Email       *string `db:"email" json:"email"`
	DisplayName *string `db:"display_name" json:"displayName"`
	Name        string  `db:"name" json:"name"`
	BugsEnabled int     `db:"bugs_enabled" json:"bugsEnabled"`
	BugsFound   int     `db:"bugs_found" json:"bugsFound"`
	CreatedAt   string  `db:"created_at" json:"createdAt"`
	UpdatedAt   string  `db:"updated_at" json:"updatedAt"`
}
