package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/restkit/restkit/pkg/collection"
)

// endpointFromForm materializes the scratch form fields (plus whatever the
// nested header sub-mode accumulated) into an Endpoint. id is reused when
// editing, or freshly generated by the caller when creating.
func endpointFromForm(f editFormFields, headers collection.OrderedHeaders, id string) collection.Endpoint {
	ep := collection.Endpoint{
		ID:           id,
		Name:         f.name,
		Method:       collection.Method(f.method),
		URL:          f.url,
		Headers:      headers,
		BodyTemplate: f.bodyTmpl,
		Description:  f.description,
	}
	if f.timeoutSecs != "" {
		if secs, err := strconv.Atoi(f.timeoutSecs); err == nil {
			ep.TimeoutSecs = &secs
		}
	}
	ep.Auth = authFromForm(f)
	return ep
}

func authFromForm(f editFormFields) *collection.AuthConfig {
	switch collection.AuthKind(f.authKind) {
	case collection.AuthBearer:
		return &collection.AuthConfig{
			Kind:   collection.AuthBearer,
			Bearer: &collection.BearerAuth{Token: f.bearerToken},
		}
	case collection.AuthBasic:
		return &collection.AuthConfig{
			Kind:  collection.AuthBasic,
			Basic: &collection.BasicAuth{Username: f.basicUser, Password: f.basicPass},
		}
	case collection.AuthApiKey:
		return &collection.AuthConfig{
			Kind: collection.AuthApiKey,
			ApiKey: &collection.ApiKeyAuth{
				Name:     f.apiKeyName,
				Value:    f.apiKeyValue,
				Location: collection.ApiKeyLocation(f.apiKeyLoc),
			},
		}
	case collection.AuthOAuth2ClientCredential:
		var scopes []string
		for _, s := range strings.Split(f.oauthScopes, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				scopes = append(scopes, s)
			}
		}
		return &collection.AuthConfig{
			Kind: collection.AuthOAuth2ClientCredential,
			OAuth2: &collection.OAuth2Auth{
				TokenURL:     f.oauthURL,
				ClientID:     f.oauthID,
				ClientSecret: f.oauthSecret,
				Scopes:       scopes,
			},
		}
	default:
		return nil
	}
}

// loadTestConfigFromForm parses the scratch fields into a LoadTestConfig.
// Returns an error string (not apperr, since this is a pure parse step before
// loadtest.Validate ever runs) when a numeric/duration field can't parse.
func loadTestConfigFromForm(f editFormFields) (collection.LoadTestConfig, string) {
	concurrency, err := strconv.Atoi(f.ltConcurrency)
	if err != nil {
		return collection.LoadTestConfig{}, "concurrency must be an integer"
	}
	duration, err := time.ParseDuration(f.ltDuration)
	if err != nil {
		return collection.LoadTestConfig{}, "duration must look like \"30s\" or \"5m\""
	}

	cfg := collection.LoadTestConfig{Concurrency: concurrency, Duration: duration}

	if f.ltRampUp != "" {
		rampUp, err := time.ParseDuration(f.ltRampUp)
		if err != nil {
			return collection.LoadTestConfig{}, "ramp-up must look like \"5s\""
		}
		cfg.RampUp = &rampUp
	}
	if f.ltRateLimit != "" {
		rate, err := strconv.Atoi(f.ltRateLimit)
		if err != nil {
			return collection.LoadTestConfig{}, "rate limit must be an integer"
		}
		cfg.RateLimit = &rate
	}
	return cfg, ""
}
