package identity

import (
	"context"
	"fmt"

	"causeboard/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	cognitotypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// Verifier checks Cognito access tokens against the pool's JWKS and maps
// the claims onto a platform user. Admins are members of the configured
// Cognito group.
type Verifier struct {
	jwksCache  *jwk.Cache
	jwksURL    string
	adminGroup string
}

func NewVerifier(jwksCache *jwk.Cache, jwksURL, adminGroup string) *Verifier {
	return &Verifier{
		jwksCache:  jwksCache,
		jwksURL:    jwksURL,
		adminGroup: adminGroup,
	}
}

func (v *Verifier) Verify(ctx context.Context, accessToken string) (*types.User, error) {
	set, err := v.jwksCache.Lookup(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	token, err := jwt.Parse(
		[]byte(accessToken),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}

	userID, ok := token.Subject()
	if !ok || userID == "" {
		return nil, fmt.Errorf("access token has no subject claim")
	}

	user := &types.User{ID: userID}

	// email is optional on access tokens
	_ = token.Get("email", &user.Email)

	var groups []string
	if err := token.Get("cognito:groups", &groups); err == nil {
		for _, group := range groups {
			if group == v.adminGroup {
				user.IsAdmin = true
				break
			}
		}
	}

	return user, nil
}

// Session is the result of a password login.
type Session struct {
	AccessToken string
	ExpiresIn   int
}

// Authenticator performs the USER_PASSWORD_AUTH flow against Cognito.
type Authenticator struct {
	client   *cognitoidentityprovider.Client
	clientID string
}

func NewAuthenticator(client *cognitoidentityprovider.Client, clientID string) *Authenticator {
	return &Authenticator{client: client, clientID: clientID}
}

func (a *Authenticator) Login(ctx context.Context, email, password string) (*Session, error) {
	input := &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: cognitotypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(a.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	}

	resp, err := a.client.InitiateAuth(ctx, input)
	if err != nil {
		// NotAuthorizedException, UserNotConfirmedException, etc.
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		return nil, fmt.Errorf("authentication returned no access token")
	}

	return &Session{
		AccessToken: aws.ToString(resp.AuthenticationResult.AccessToken),
		ExpiresIn:   int(resp.AuthenticationResult.ExpiresIn),
	}, nil
}
