package api

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// storedCookie is the serialized form of one cookie.
type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"http_only,omitempty"`
}

// PersistentJar is a cookie jar that can snapshot its cookies to disk, so a
// short-lived process keeps the session the way a browser keeps its cookie
// store. It records cookies as servers set them and replays them on load.
type PersistentJar struct {
	mu    sync.Mutex
	inner http.CookieJar
	path  string
	// byURL keeps the last cookies each origin set, keyed by scheme://host.
	byURL map[string][]storedCookie
}

// NewPersistentJar creates a jar backed by the given file path. If the file
// exists, its cookies are loaded best-effort; a corrupt or missing file just
// means an empty jar.
func NewPersistentJar(path string) (*PersistentJar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	j := &PersistentJar{inner: inner, path: path, byURL: map[string][]storedCookie{}}
	j.load()
	return j, nil
}

// SetCookies implements http.CookieJar.
func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	key := u.Scheme + "://" + u.Host
	stored := j.byURL[key]
	for _, c := range cookies {
		sc := storedCookie{
			Name: c.Name, Value: c.Value, Path: c.Path, Domain: c.Domain,
			Expires: c.Expires, Secure: c.Secure, HTTPOnly: c.HttpOnly,
		}
		replaced := false
		for i := range stored {
			if stored[i].Name == c.Name && stored[i].Path == c.Path && stored[i].Domain == c.Domain {
				stored[i] = sc
				replaced = true
				break
			}
		}
		if !replaced {
			stored = append(stored, sc)
		}
	}
	j.byURL[key] = stored
	j.mu.Unlock()

	j.inner.SetCookies(u, cookies)
}

// Cookies implements http.CookieJar.
func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// Save writes the jar snapshot with owner-only permissions. Expired cookies
// are dropped.
func (j *PersistentJar) Save() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	out := map[string][]storedCookie{}
	for key, cookies := range j.byURL {
		kept := cookies[:0:0]
		for _, c := range cookies {
			if !c.Expires.IsZero() && c.Expires.Before(now) {
				continue
			}
			kept = append(kept, c)
		}
		if len(kept) > 0 {
			out[key] = kept
		}
	}

	if err := os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(j.path, b, 0o600)
}

// Clear drops every cookie, in memory and on disk.
func (j *PersistentJar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.byURL = map[string][]storedCookie{}
	if inner, err := cookiejar.New(nil); err == nil {
		j.inner = inner
	}
	_ = os.Remove(j.path)
}

// load replays the on-disk snapshot into the live jar.
func (j *PersistentJar) load() {
	b, err := os.ReadFile(j.path)
	if err != nil {
		return
	}
	var stored map[string][]storedCookie
	if err := json.Unmarshal(b, &stored); err != nil {
		return
	}
	now := time.Now()
	for key, cookies := range stored {
		u, err := url.Parse(key)
		if err != nil {
			continue
		}
		replay := make([]*http.Cookie, 0, len(cookies))
		kept := make([]storedCookie, 0, len(cookies))
		for _, c := range cookies {
			if !c.Expires.IsZero() && c.Expires.Before(now) {
				continue
			}
			kept = append(kept, c)
			replay = append(replay, &http.Cookie{
				Name: c.Name, Value: c.Value, Path: c.Path, Domain: c.Domain,
				Expires: c.Expires, Secure: c.Secure, HttpOnly: c.HTTPOnly,
			})
		}
		if len(replay) == 0 {
			continue
		}
		j.byURL[key] = kept
		j.inner.SetCookies(u, replay)
	}
}
