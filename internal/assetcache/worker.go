package assetcache

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Worker owns one cache generation and serves the site's asset traffic
// offline-first. Lifecycle: Install populates the generation from the
// manifest (all-or-nothing), Activate sweeps older generations, and the
// Worker itself is the http.Handler for the fetch path.
type Worker struct {
	store    *Store
	origin   *url.URL
	version  string
	manifest []string
	client   *http.Client
}

// NewWorker creates a worker for the given origin, cache version and
// asset manifest.
func NewWorker(store *Store, origin, version string, manifest []string) (*Worker, error) {
	base, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parsing origin %q: %w", origin, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("origin %q must be an absolute URL", origin)
	}

	return &Worker{
		store:    store,
		origin:   base,
		version:  version,
		manifest: manifest,
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Version returns the active cache generation name.
func (w *Worker) Version() string {
	return w.version
}

// Ready reports whether the active generation has been installed.
func (w *Worker) Ready() bool {
	return w.store.Has(w.version)
}

// Install fetches every manifest asset into the current generation.
// Any failure removes the partial generation and fails the install; a
// generation is only ever complete or absent.
func (w *Worker) Install(ctx context.Context) error {
	log.Printf("Installing asset cache generation %s (%d assets)...", w.version, len(w.manifest))

	for _, path := range w.manifest {
		if err := w.installOne(ctx, path); err != nil {
			if delErr := w.store.Delete(w.version); delErr != nil {
				log.Printf("Failed to remove partial generation %s: %v", w.version, delErr)
			}
			return fmt.Errorf("installing %s: %w", path, err)
		}
	}

	log.Printf("Asset cache generation %s installed", w.version)
	return nil
}

// Bootstrap brings the current generation online: install when absent,
// then activate. When the install fails the activation is skipped, so a
// complete earlier generation is never swept away on the failure path.
func (w *Worker) Bootstrap(ctx context.Context) error {
	if !w.Ready() {
		if err := w.Install(ctx); err != nil {
			return err
		}
	}
	return w.Activate()
}

// Activate deletes every generation other than the current one,
// reclaiming storage from prior deployments.
func (w *Worker) Activate() error {
	removed, err := w.store.Sweep(w.version)
	if err != nil {
		return err
	}
	if len(removed) > 0 {
		log.Printf("Swept stale cache generations: %s", strings.Join(removed, ", "))
	}
	return nil
}

// ServeHTTP is the fetch path: cached GET responses are served directly,
// misses go to the origin and qualifying responses are cached on the way
// through. Non-GET requests pass through untouched so non-idempotent
// calls are never replayed from cache.
func (w *Worker) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.passThrough(rw, r)
		return
	}

	if entry, body, ok := w.store.Get(w.version, r.URL.Path); ok {
		if entry.ContentType != "" {
			rw.Header().Set("Content-Type", entry.ContentType)
		}
		rw.Header().Set("X-Cache", "HIT")
		rw.WriteHeader(entry.Status)
		rw.Write(body)
		return
	}

	resp, err := w.fetch(r.Context(), r.URL.Path)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusBadGateway)
		return
	}

	copyHeader(rw.Header(), resp.Header)
	rw.Header().Set("X-Cache", "MISS")
	rw.WriteHeader(resp.StatusCode)
	rw.Write(body)

	// Fire-and-forget: the response is not held back by the cache write.
	// Concurrent misses on the same path race and the last writer wins,
	// which is fine because bodies are stable within one version.
	if resp.StatusCode == http.StatusOK {
		path := r.URL.Path
		entry := Entry{Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type")}
		go func() {
			if err := w.store.Put(w.version, path, entry, body); err != nil {
				log.Printf("Failed to cache %s: %v", path, err)
			}
		}()
	}
}

func (w *Worker) installOne(ctx context.Context, path string) error {
	resp, err := w.fetch(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("origin returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}

	entry := Entry{Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type")}
	return w.store.Put(w.version, path, entry, body)
}

func (w *Worker) fetch(ctx context.Context, path string) (*http.Response, error) {
	target := w.origin.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}
	return w.client.Do(req)
}

// passThrough forwards a request to the origin unchanged and copies the
// response back. Failures surface to the caller; there is no retry and
// no fallback content.
func (w *Worker) passThrough(rw http.ResponseWriter, r *http.Request) {
	target := w.origin.JoinPath(r.URL.Path)
	target.RawQuery = r.URL.RawQuery

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), r.Body)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)
		return
	}
	req.Header = r.Header.Clone()

	resp, err := w.client.Do(req)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	copyHeader(rw.Header(), resp.Header)
	rw.WriteHeader(resp.StatusCode)
	io.Copy(rw, resp.Body)
}

func copyHeader(dst, src http.Header) {
	for k, v := range src {
		dst[k] = v
	}
}
