package api

import "context"

const (
	pathLogin               = "/auth/login/"
	pathRegister            = "/auth/register/"
	pathRefresh             = "/auth/refresh/"
	pathPasswordReset       = "/auth/password-reset/"
	pathPasswordResetVerify = "/auth/password-reset/confirm/"
)

// Login exchanges credentials for a JWT pair. The caller persists the pair
// via its session store; the client itself holds no credentials.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	var pair TokenPair
	err := c.postJSONOnce(ctx, pathLogin, loginRequest{
		Username: username,
		Password: password,
	}, &pair)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// Register creates an account. Some service builds auto-login and return a
// token pair; the pair is empty otherwise.
func (c *Client) Register(ctx context.Context, username, email, password string) (*TokenPair, error) {
	var pair TokenPair
	err := c.postJSONOnce(ctx, pathRegister, registerRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, &pair)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// RequestPasswordReset asks the service to email a reset token.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.postJSONOnce(ctx, pathPasswordReset, passwordResetRequest{Email: email}, nil)
}

// ConfirmPasswordReset redeems a reset token for a new password.
func (c *Client) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	return c.postJSONOnce(ctx, pathPasswordResetVerify, passwordResetConfirmRequest{
		Token:       token,
		NewPassword: newPassword,
	}, nil)
}
