// Package mart speaks the service's wire protocol: request parameters
// for the catalog endpoints and the XML query document for data
// retrieval.
package mart

import (
	"net/url"
	"strings"
)

// DefaultPath is where the service listens when a base URL names only a
// host.
const DefaultPath = "/biomart/martservice"

// Endpoint normalizes a service base URL. A bare host gets the
// well-known service path appended; anything with an explicit path is
// taken as-is.
func Endpoint(base string) string {
	b := strings.TrimRight(strings.TrimSpace(base), "/")
	u, err := url.Parse(b)
	if err != nil || u.Path != "" {
		return b
	}
	return b + DefaultPath
}

// RegistryParams requests the database registry.
func RegistryParams() url.Values {
	params := url.Values{}
	params.Set("type", "registry")
	return params
}

// DatasetsParams requests the dataset listing of one mart.
func DatasetsParams(mart string) url.Values {
	params := url.Values{}
	params.Set("type", "datasets")
	params.Set("mart", mart)
	return params
}

// ConfigParams requests the configuration document of one dataset.
func ConfigParams(dataset string) url.Values {
	params := url.Values{}
	params.Set("type", "configuration")
	params.Set("dataset", dataset)
	return params
}

// QueryParams submits a built query document.
func QueryParams(doc []byte) url.Values {
	params := url.Values{}
	params.Set("query", string(doc))
	return params
}
