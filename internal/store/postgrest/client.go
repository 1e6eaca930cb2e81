// Package postgrest implements the store interfaces against a Supabase
// PostgREST endpoint. Two credential levels exist: a caller-scoped client
// that forwards the caller's bearer token so row-level security applies, and
// an elevated client using the service-role key, handed out per request only
// when the access gate grants escalation.
package postgrest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	pg "github.com/supabase-community/postgrest-go"

	"github.com/mv4digital/chuvinha/internal/store"
)

// ErrNoServiceRoleKey is returned by Elevated when the privileged credential
// is not configured. The configuration key name is part of the message
// because the assistant surfaces it in-band.
var ErrNoServiceRoleKey = errors.New("SUPABASE_SERVICE_ROLE_KEY não configurada")

// Config carries the connection settings for the Supabase project.
type Config struct {
	// URL is the project base URL, e.g. https://xyz.supabase.co.
	URL string
	// AnonKey is the public (anonymous) API key.
	AnonKey string
	// ServiceRoleKey is the privileged key; may be empty, in which case
	// Elevated fails.
	ServiceRoleKey string
}

// Provider creates scoped clients. It implements store.Provider.
type Provider struct {
	cfg Config
}

// NewProvider validates the config and returns a provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.URL == "" || cfg.AnonKey == "" {
		return nil, fmt.Errorf("postgrest: SUPABASE_URL and SUPABASE_ANON_KEY are required")
	}
	cfg.URL = strings.TrimSuffix(cfg.URL, "/")
	return &Provider{cfg: cfg}, nil
}

// ForCaller returns a store that authenticates every request with the
// caller's own bearer token.
func (p *Provider) ForCaller(bearer string) store.Store {
	return &Client{api: p.newREST(p.cfg.AnonKey, bearer)}
}

// Elevated returns a store using the service-role key. The returned client
// must not outlive the request it was created for.
func (p *Provider) Elevated() (store.Store, error) {
	if p.cfg.ServiceRoleKey == "" {
		return nil, ErrNoServiceRoleKey
	}
	return &Client{api: p.newREST(p.cfg.ServiceRoleKey, p.cfg.ServiceRoleKey)}, nil
}

// ElevatedImporter returns the batch-import surface at service-role level.
// The importer always runs privileged; there is no caller-scoped variant.
func (p *Provider) ElevatedImporter() (store.ImportStore, error) {
	if p.cfg.ServiceRoleKey == "" {
		return nil, ErrNoServiceRoleKey
	}
	return &Client{api: p.newREST(p.cfg.ServiceRoleKey, p.cfg.ServiceRoleKey)}, nil
}

func (p *Provider) newREST(apiKey, bearer string) *pg.Client {
	return pg.NewClient(p.cfg.URL+"/rest/v1", "public", map[string]string{
		"apikey":        apiKey,
		"Authorization": "Bearer " + bearer,
	})
}

// Client is one scoped PostgREST store. It implements store.Store and
// store.ImportStore.
type Client struct {
	api *pg.Client
}

var descCreatedAt = &pg.OrderOpts{Ascending: false}

func parseTS(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
