// Package auth materializes a collection.AuthConfig onto a request's headers
// and query params. Earlier standalone bearer/basic/oauth2 helpers each
// produced a header string for a caller to read back; this collapses them
// into a single applier the executor calls directly with live header/query
// maps.
package auth

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/restkit/restkit/pkg/apperr"
	"github.com/restkit/restkit/pkg/collection"
	"github.com/restkit/restkit/pkg/template"
)

// Apply materializes cfg onto headers and query, expanding every templated
// field strictly against vars. Exactly one of the AuthConfig's variants is
// read, selected by cfg.Kind. A pre-existing "Authorization" header (set by
// request inputs before Apply runs) is left untouched: inputs win
// over endpoint-level auth defaults.
func Apply(ctx context.Context, cfg *collection.AuthConfig, headers *collection.OrderedHeaders, query map[string]string, vars map[string]string) error {
	if cfg == nil {
		return nil
	}

	switch cfg.Kind {
	case collection.AuthBearer:
		return applyBearer(cfg.Bearer, headers, vars)
	case collection.AuthBasic:
		return applyBasic(cfg.Basic, headers, vars)
	case collection.AuthApiKey:
		return applyApiKey(cfg.ApiKey, headers, query, vars)
	case collection.AuthOAuth2ClientCredential:
		return applyOAuth2(ctx, cfg.OAuth2, headers, vars)
	default:
		return nil
	}
}

func applyBearer(b *collection.BearerAuth, headers *collection.OrderedHeaders, vars map[string]string) error {
	if b == nil {
		return nil
	}
	if headers.Has("Authorization") {
		return nil
	}
	token, err := template.SubstituteStrict(b.Token, vars)
	if err != nil {
		return err
	}
	headers.Set("Authorization", "Bearer "+token)
	return nil
}

func applyBasic(b *collection.BasicAuth, headers *collection.OrderedHeaders, vars map[string]string) error {
	if b == nil {
		return nil
	}
	if headers.Has("Authorization") {
		return nil
	}
	username, err := template.SubstituteStrict(b.Username, vars)
	if err != nil {
		return err
	}
	password, err := template.SubstituteStrict(b.Password, vars)
	if err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	headers.Set("Authorization", "Basic "+encoded)
	return nil
}

func applyApiKey(k *collection.ApiKeyAuth, headers *collection.OrderedHeaders, query map[string]string, vars map[string]string) error {
	if k == nil {
		return nil
	}
	name, err := template.SubstituteStrict(k.Name, vars)
	if err != nil {
		return err
	}
	value, err := template.SubstituteStrict(k.Value, vars)
	if err != nil {
		return err
	}

	switch k.Location {
	case collection.ApiKeyQueryParam:
		query[name] = value
	case collection.ApiKeyHeader:
		fallthrough
	default:
		if !headers.Has(name) {
			headers.Set(name, value)
		}
	}
	return nil
}

// applyOAuth2 fetches a client-credentials token from o.TokenURL and
// materializes it as a Bearer Authorization header, unless the caller has
// already set one via request inputs.
func applyOAuth2(ctx context.Context, o *collection.OAuth2Auth, headers *collection.OrderedHeaders, vars map[string]string) error {
	if o == nil {
		return nil
	}
	if headers.Has("Authorization") {
		return nil
	}

	tokenURL, err := template.SubstituteStrict(o.TokenURL, vars)
	if err != nil {
		return err
	}
	clientID, err := template.SubstituteStrict(o.ClientID, vars)
	if err != nil {
		return err
	}
	clientSecret, err := template.SubstituteStrict(o.ClientSecret, vars)
	if err != nil {
		return err
	}

	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       o.Scopes,
	}

	tok, err := cfg.Token(ctx)
	if err != nil {
		return &apperr.Request{Msg: fmt.Sprintf("oauth2 client_credentials token fetch from %s", tokenURL), Err: err}
	}

	headers.Set("Authorization", "Bearer "+tok.AccessToken)
	return nil
}
