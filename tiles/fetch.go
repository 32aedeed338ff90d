package tiles

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	"github.com/pkg/errors"
)

const fetchUserAgent = "Slipway 1.0"

// Completion is the result of one tile fetch, delivered on the fetcher's
// channel and applied by the owner's tick.
type Completion struct {
	Addr  Address
	Image image.Image
	Err   error
}

// HTTPFetcher downloads tiles in background goroutines and reports results
// on Completions. The channel is buffered so slow consumers do not block
// downloads of a full request set.
type HTTPFetcher struct {
	Client      *http.Client
	Completions chan Completion
}

// NewHTTPFetcher builds a fetcher with a default client and a channel sized
// for the request set bound.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:      &http.Client{},
		Completions: make(chan Completion, DefaultMaxRequested),
	}
}

// Fetch starts a background download of one tile.
func (f *HTTPFetcher) Fetch(layer Layer, a Address) {
	go func() {
		img, err := f.fetch(layer.URL(a))
		f.Completions <- Completion{Addr: a, Image: img, Err: err}
	}()
}

// Drain applies every completion already queued without blocking.
func (f *HTTPFetcher) Drain(apply func(Completion)) {
	for {
		select {
		case c := <-f.Completions:
			apply(c)
		default:
			return
		}
	}
}

func (f *HTTPFetcher) fetch(url string) (image.Image, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "creating request for %s", url)
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetching %s: %s", url, resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", url)
	}
	return img, nil
}
