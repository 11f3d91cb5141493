// Package browser hands web links to the desktop.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// ErrScheme is returned for links that are not http or https.
var ErrScheme = errors.New("browser: only http and https links can be opened")

// Check parses raw and rejects anything but an absolute web link.
func Check(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("browser: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrScheme
	}
	if u.Host == "" {
		return nil, fmt.Errorf("browser: %q has no host", raw)
	}
	return u, nil
}

// Open opens the URL in the user's default browser.
func Open(raw string) error {
	u, err := Check(raw)
	if err != nil {
		return err
	}
	return command(runtime.GOOS, u.String())
}

func command(goos, link string) error {
	switch goos {
	case "darwin":
		return exec.Command("open", link).Start()
	case "linux":
		return exec.Command("xdg-open", link).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", link).Start()
	default:
		return fmt.Errorf("unsupported OS: %s", goos)
	}
}
