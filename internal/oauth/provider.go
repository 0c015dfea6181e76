package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var (
	ErrExchangeFailed   = errors.New("failed to upgrade the authorization code")
	ErrUnverifiedEmail  = errors.New("identity provider did not verify the email address")
	ErrIncompleteAnswer = errors.New("identity provider returned no email")
)

// Identity is the verified triple handed over by the identity provider.
type Identity struct {
	Email   string
	Name    string
	Picture string
}

// Provider runs the authorization-code flow against an external identity provider.
type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// Google implements Provider with Google's OAuth 2.0 endpoints.
type Google struct {
	config *oauth2.Config
	// apiEndpoint overrides the userinfo API base URL when set.
	apiEndpoint string
}

func NewGoogle(clientID, clientSecret, redirectURL string) *Google {
	return &Google{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
	}
}

func (g *Google) Name() string { return "google" }

func (g *Google) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (g *Google) Exchange(ctx context.Context, code string) (*Identity, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	opts := []option.ClientOption{option.WithHTTPClient(g.config.Client(ctx, token))}
	if g.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(g.apiEndpoint))
	}
	svc, err := googleoauth.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	return identityFrom(info)
}

func identityFrom(info *googleoauth.Userinfo) (*Identity, error) {
	email := strings.ToLower(strings.TrimSpace(info.Email))
	if email == "" {
		return nil, ErrIncompleteAnswer
	}
	if info.VerifiedEmail == nil || !*info.VerifiedEmail {
		return nil, ErrUnverifiedEmail
	}
	return &Identity{Email: email, Name: info.Name, Picture: info.Picture}, nil
}
