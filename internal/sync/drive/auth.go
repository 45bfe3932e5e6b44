package drive

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drivev3 "google.golang.org/api/drive/v3"

	"github.com/keirinjingle/mofu/internal/types"
)

// Config is the installed-app OAuth client used for Drive access.
type Config struct {
	ClientID     string
	ClientSecret string
}

// TokenCache persists the acquired credential between runs. The store's
// credential slot implements it.
type TokenCache interface {
	LoadCredential() (*types.Credential, error)
	SaveCredential(c types.Credential) error
}

// expirySkew is shaved off the reported token lifetime so a token is never
// used within seconds of expiring mid-request.
const expirySkew = 5 * time.Second

func oauthConfig(cfg Config, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drivev3.DriveAppdataScope},
		RedirectURL:  redirectURL,
	}
}

// tokenSource returns an oauth2 source backed by the cached credential,
// running the interactive loopback flow when no usable credential exists.
func tokenSource(ctx context.Context, cfg Config, cache TokenCache, logger *log.Logger) (oauth2.TokenSource, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrDisabled
	}

	tok := cachedToken(cache, logger)
	if tok == nil {
		var err error
		tok, err = interactiveFlow(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		saveToken(cache, tok, logger)
	}

	base := oauthConfig(cfg, "").TokenSource(ctx, tok)
	return &persistingSource{base: base, cache: cache, last: tok, logger: logger}, nil
}

// cachedToken loads the credential slot; expired or missing credentials
// yield nil. A token with a refresh token is returned even when expired,
// since the oauth2 source can renew it silently.
func cachedToken(cache TokenCache, logger *log.Logger) *oauth2.Token {
	cred, err := cache.LoadCredential()
	if err != nil {
		logger.Printf("load credential: %v", err)
		return nil
	}
	if cred == nil {
		return nil
	}
	if !cred.Valid(time.Now().UnixMilli()) && cred.RefreshToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		Expiry:       time.UnixMilli(cred.Expiry),
	}
}

func saveToken(cache TokenCache, tok *oauth2.Token, logger *log.Logger) {
	cred := types.Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry.Add(-expirySkew).UnixMilli(),
	}
	if err := cache.SaveCredential(cred); err != nil {
		logger.Printf("save credential: %v", err)
	}
}

// persistingSource wraps a refreshing token source and writes every renewed
// token back to the cache.
type persistingSource struct {
	base   oauth2.TokenSource
	cache  TokenCache
	last   *oauth2.Token
	logger *log.Logger
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	if p.last == nil || tok.AccessToken != p.last.AccessToken {
		p.last = tok
		saveToken(p.cache, tok, p.logger)
	}
	return tok, nil
}

// interactiveFlow runs the loopback authorization-code flow: start a local
// listener, hand the user the consent URL, wait for the redirect, exchange
// the code.
func interactiveFlow(ctx context.Context, cfg Config, logger *log.Logger) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("start callback listener: %w", err)
	}
	defer ln.Close()

	redirectURL := fmt.Sprintf("http://%s/oauth2/callback", ln.Addr().String())
	oc := oauthConfig(cfg, redirectURL)

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errCh <- fmt.Errorf("oauth state mismatch")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			errCh <- fmt.Errorf("authorization denied")
			return
		}
		fmt.Fprintln(w, "Authorized. You can close this tab and return to mofu.")
		codeCh <- code
	})

	srv := &http.Server{Handler: mux, ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	defer srv.Close()

	authURL := oc.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Open this URL in your browser to authorize Drive sync:\n\n  %s\n\n", authURL)
	logger.Printf("waiting for oauth callback on %s", redirectURL)

	select {
	case code := <-codeCh:
		tok, err := oc.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("exchange authorization code: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, fmt.Errorf("oauth callback: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func randomState() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}
