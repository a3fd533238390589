package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table             string
	ID                string
	Username          string
	SecretHash        string
	AvatarURL         string
	IsPremium         string
	PremiumUnlockedAt string
	SelectedTheme     string
	CreatedAt         string
	UpdatedAt         string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:             "users.account",
	ID:                "id",
	Username:          "username",
	SecretHash:        "secrethash",
	AvatarURL:         "avatarurl",
	IsPremium:         "ispremium",
	PremiumUnlockedAt: "premiumunlockedat",
	SelectedTheme:     "selectedtheme",
	CreatedAt:         "createdat",
	UpdatedAt:         "updatedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.SecretHash, t.AvatarURL, t.IsPremium,
		t.PremiumUnlockedAt, t.SelectedTheme, t.CreatedAt, t.UpdatedAt,
	}
}
