package asset

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// The client used for fetching remote resources.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// The Resource type wraps a streamable local file or remote asset.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Returns the last element of the resource path.
func (r *Resource) Name() string {
	return path.Base(r.url.Path)
}

// Returns the lower-cased extension of the resource path including the
// leading dot. Query strings of remote resources are ignored.
func (r *Resource) Ext() string {
	return strings.ToLower(path.Ext(r.url.Path))
}

// Returns true if the Resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Open a resource stream. If relTo is specified and pathToResource does not
// define a scheme, then the path to the new Resource is resolved against the
// directory of relTo.
//
// Remote http/https resources are fetched with a GET request. The caller must
// close the returned resource.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	// Normalize windows path separators before parsing as a URL
	resURL, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, fmt.Errorf("asset: invalid resource path %q: %w", pathToResource, err)
	}

	if resURL.Scheme == "" && relTo != nil {
		resURL, err = resolveRelative(resURL.Path, relTo)
		if err != nil {
			return nil, err
		}
	}

	var reader io.ReadCloser
	switch resURL.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(resURL.Path))
		if err != nil {
			return nil, fmt.Errorf("asset: could not open %q: %w", resURL.Path, err)
		}
	case "http", "https":
		resp, err := httpClient.Get(resURL.String())
		if err != nil {
			return nil, fmt.Errorf("asset: could not fetch %q: %w", resURL.String(), err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("asset: could not fetch %q: status %d", resURL.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, fmt.Errorf("asset: unsupported scheme %q", resURL.Scheme)
	}

	return &Resource{
		ReadCloser: reader,
		url:        resURL,
	}, nil
}

// Clone the URL of relTo and replace its path with relPath resolved against
// the parent's directory.
func resolveRelative(relPath string, relTo *Resource) (*url.URL, error) {
	resURL := *relTo.url
	if filepath.IsAbs(relPath) {
		resURL.Path = relPath
		return &resURL, nil
	}

	prefix := resURL.Path
	if resURL.Scheme == "" {
		abs, err := filepath.Abs(relTo.url.Path)
		if err != nil {
			return nil, fmt.Errorf("asset: could not detect abs path for %q: %w", relTo.url.Path, err)
		}
		prefix = filepath.ToSlash(abs)
	}
	resURL.Path = path.Join(path.Dir(prefix), relPath)
	resURL.RawQuery = ""
	return &resURL, nil
}

// Create a resource from a reader. The name is used for error reporting and
// extension detection.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	resURL, err := url.Parse(name)
	if err != nil {
		resURL = &url.URL{Path: name}
	}
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        resURL,
	}
}
