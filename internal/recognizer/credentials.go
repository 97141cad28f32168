package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// LoadCredentials reads a Google service-account key file.
func LoadCredentials(ctx context.Context, path string) (*google.Credentials, error) {
	const op = "load credentials"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: ErrAuthentication, Op: op, Err: err}
	}

	var key struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, &Error{Kind: ErrAuthentication, Op: op, Err: fmt.Errorf("%s: %w", path, err)}
	}
	if key.Type != "service_account" {
		return nil, &Error{Kind: ErrAuthentication, Op: op, Err: fmt.Errorf("%s: expected a service_account key, got %q", path, key.Type)}
	}

	creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
	if err != nil {
		return nil, &Error{Kind: ErrAuthentication, Op: op, Err: err}
	}
	return creds, nil
}
