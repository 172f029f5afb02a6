package googleoauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sailorswift/sailor-swift-api/internal/application"
)

// Verifier validates a Google ID token against the tokeninfo endpoint and
// extracts the claims the identity resolver needs. Any non-200 status,
// missing sub/email claim, or audience mismatch is a verification failure;
// network errors are never propagated past this boundary as anything other
// than an error result.
type Verifier struct {
	ClientID string
	BaseURL  string
	HTTP     *http.Client
}

func NewVerifier(clientID, baseURL string) *Verifier {
	return &Verifier{
		ClientID: clientID,
		BaseURL:  baseURL,
		// The upstream call gets a hard deadline so a hung Google endpoint
		// cannot stall the handling goroutine indefinitely.
		HTTP: &http.Client{Timeout: 10 * time.Second},
	}
}

type tokenInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	Audience      string `json:"aud"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	EmailVerified string `json:"email_verified"`
}

func (v *Verifier) Verify(ctx context.Context, credential string) (*application.GoogleClaims, error) {
	u := v.BaseURL + "?id_token=" + url.QueryEscape(credential)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := v.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokeninfo status %d", res.StatusCode)
	}

	var info tokenInfo
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.Sub == "" || info.Email == "" {
		return nil, errors.New("tokeninfo missing required claims")
	}
	if info.Audience != v.ClientID {
		return nil, errors.New("tokeninfo audience mismatch")
	}

	// tokeninfo serializes email_verified as a string.
	verified, _ := strconv.ParseBool(info.EmailVerified)

	return &application.GoogleClaims{
		GoogleID:      info.Sub,
		Email:         info.Email,
		FirstName:     info.GivenName,
		LastName:      info.FamilyName,
		EmailVerified: verified,
	}, nil
}

var _ application.GoogleVerifier = (*Verifier)(nil)
