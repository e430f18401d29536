// Package spdx provides an HTTP client for the SPDX license list.
//
// The SPDX project publishes the canonical list of open source license
// identifiers (https://spdx.org/licenses/). The [Client] fetches that list
// and exposes the identifiers, which are used to validate the license a
// project declares in its metadata.
package spdx

import (
	"context"
	"time"

	"github.com/NiklasRosenstein/slap-sub001/pkg/cache"
	"github.com/NiklasRosenstein/slap-sub001/pkg/integrations"
)

const licenseListURL = "https://raw.githubusercontent.com/spdx/license-list-data/main/json/licenses.json"

// Client fetches the SPDX license list with caching and retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	url string
}

// NewClient creates an SPDX client with the given cache backend. The license
// list changes only a few times a year, so a long ttl is fine.
func NewClient(backend cache.Cache, ttl time.Duration) *Client {
	return &Client{
		Client: integrations.NewClient(backend, "spdx:", ttl, nil),
		url:    licenseListURL,
	}
}

// Licenses returns all known SPDX license identifiers, including deprecated
// ones so older projects still validate. If refresh is true, the cache is
// bypassed.
func (c *Client) Licenses(ctx context.Context, refresh bool) ([]string, error) {
	var ids []string
	err := c.Cached(ctx, "licenses", refresh, &ids, func() error {
		var data listResponse
		if err := c.Get(ctx, c.url, &data); err != nil {
			return err
		}
		ids = ids[:0]
		for _, l := range data.Licenses {
			ids = append(ids, l.LicenseID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

type listResponse struct {
	LicenseListVersion string        `json:"licenseListVersion"`
	Licenses           []listLicense `json:"licenses"`
}

type listLicense struct {
	LicenseID  string `json:"licenseId"`
	Name       string `json:"name"`
	Deprecated bool   `json:"isDeprecatedLicenseId"`
}
