// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

// GoogleMapsAPIKeyEnv is the environment variable holding the API key.
const GoogleMapsAPIKeyEnv = "GOOGLE_MAPS_API_KEY"

// GoogleMapsAPIKey returns the API key from the environment, falling back to
// Application Default Credentials when it is not set.
func GoogleMapsAPIKey(ctx context.Context, keyDisplayName string) (string, error) {
	if apiKey := os.Getenv(GoogleMapsAPIKeyEnv); apiKey != "" {
		return apiKey, nil
	}

	log.Printf("%s is not set. Attempting to retrieve via ADC...", GoogleMapsAPIKeyEnv)

	apiKey, err := APIKeyFromADC(ctx, keyDisplayName)
	if err != nil {
		return "", fmt.Errorf("%s is not set and ADC failed: %w", GoogleMapsAPIKeyEnv, err)
	}

	log.Println("✅ Successfully retrieved Google Maps API Key via ADC")

	return apiKey, nil
}

// APIKeyFromADC finds the API key named keyDisplayName in the project of the
// default credentials and returns its secret.
func APIKeyFromADC(ctx context.Context, keyDisplayName string) (string, error) {
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("finding default credentials: %w", err)
	}

	projectID := creds.ProjectID
	if projectID == "" {
		return "", errors.New("no project ID found in default credentials")
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	it := client.ListKeys(ctx, &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	})

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName != keyDisplayName {
			continue
		}

		// ListKeys redacts the KeyString.
		log.Printf("Found key resource '%s', retrieving secret...", key.Name)

		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.Name})
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("key '%s' found but KeyString is empty", keyDisplayName)
		}

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("key with display name '%s' not found in project %s", keyDisplayName, projectID)
}
