package botframe

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xpanvictor/newscap/pkg/Logger"
)

const (
	// DefaultOpenIDMetadataURL is the channel service's discovery document.
	DefaultOpenIDMetadataURL = "https://login.botframework.com/v1/.well-known/openidconfiguration"
	// ChannelIssuer is the iss claim connector tokens carry.
	ChannelIssuer = "https://api.botframework.com"

	keyCacheTTL = 24 * time.Hour
)

var ErrNoToken = errors.New("missing bearer token")

// TokenValidator checks inbound channel JWTs against the service's JWKS.
// Keys are cached and refetched when a token names an unknown kid.
type TokenValidator struct {
	appID    string
	metadata string
	http     *http.Client
	logger   *Logger.Logger

	// Issuers lists the trusted iss claims. Defaults to the channel
	// service; emulator setups append their login authority.
	Issuers []string

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	refreshed time.Time
}

func NewTokenValidator(appID, metadataURL string, logger *Logger.Logger) *TokenValidator {
	if metadataURL == "" {
		metadataURL = DefaultOpenIDMetadataURL
	}
	return &TokenValidator{
		appID:    appID,
		metadata: metadataURL,
		http:     &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
		Issuers:  []string{ChannelIssuer},
		keys:     map[string]*rsa.PublicKey{},
	}
}

// Validate checks the Authorization header of a webhook request.
func (v *TokenValidator) Validate(ctx context.Context, authHeader string) error {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ErrNoToken
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if raw == "" {
		return ErrNoToken
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token missing kid header")
		}
		return v.key(ctx, kid)
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.appID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("channel token: %w", err)
	}

	iss, err := token.Claims.GetIssuer()
	if err != nil {
		return fmt.Errorf("channel token: %w", err)
	}
	for _, trusted := range v.Issuers {
		if iss == trusted {
			return nil
		}
	}
	return fmt.Errorf("channel token: issuer %q not trusted", iss)
}

func (v *TokenValidator) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := time.Since(v.refreshed) < keyCacheTTL
	v.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}

	if err := v.refreshKeys(ctx); err != nil {
		if ok {
			// stale key over a hard failure while the jwks endpoint is down
			return key, nil
		}
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	if key, ok := v.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("signing key %s not in jwks", kid)
}

func (v *TokenValidator) refreshKeys(ctx context.Context) error {
	var meta struct {
		JWKSURI string `json:"jwks_uri"`
	}
	if err := v.getJSON(ctx, v.metadata, &meta); err != nil {
		return fmt.Errorf("openid metadata: %w", err)
	}
	if meta.JWKSURI == "" {
		return errors.New("openid metadata missing jwks_uri")
	}

	var jwks struct {
		Keys []struct {
			Kty string `json:"kty"`
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := v.getJSON(ctx, meta.JWKSURI, &jwks); err != nil {
		return fmt.Errorf("jwks fetch: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(jwks.Keys))
	for _, k := range jwks.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := parseRSAKey(k.N, k.E)
		if err != nil {
			v.logger.Warnf("skipping jwks key %s: %v", k.Kid, err)
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("jwks held no usable keys")
	}

	v.mu.Lock()
	v.keys = keys
	v.refreshed = time.Now()
	v.mu.Unlock()

	v.logger.Debugf("loaded %d channel signing keys", len(keys))
	return nil
}

func (v *TokenValidator) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := v.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func parseRSAKey(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("exponent: %w", err)
	}

	exp := 0
	for _, b := range eb {
		exp = exp<<8 | int(b)
	}
	if exp == 0 {
		return nil, errors.New("zero exponent")
	}

	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: exp}, nil
}
