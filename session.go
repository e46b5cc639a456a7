package auth

// LoginResult is the payload returned by every successful authentication:
// password login, refresh rotation, and federated login all produce the same
// shape. User fields are denormalized for client convenience.
type LoginResult struct {
	Role         UserRole     `json:"role"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	Email        string       `json:"email"`
	Provider     ProviderType `json:"provider"`
}

func newLoginResult(user *User, accessToken string, refresh *Token) *LoginResult {
	return &LoginResult{
		Role:         user.Role,
		AccessToken:  accessToken,
		RefreshToken: refresh.Value,
		Email:        user.Email,
		Provider:     user.Provider,
	}
}
