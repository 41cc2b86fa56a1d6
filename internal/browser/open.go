// Package browser hands map links and uploaded images to the desktop browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Command returns the program and arguments that open rawURL on goos.
// Only absolute http and https URLs are accepted.
func Command(goos, rawURL string) (string, []string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("browser: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", nil, fmt.Errorf("browser: refusing to open %q", rawURL)
	}
	switch goos {
	case "darwin":
		return "open", []string{rawURL}, nil
	case "linux", "freebsd", "openbsd":
		return "xdg-open", []string{rawURL}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}, nil
	}
	return "", nil, fmt.Errorf("browser: unsupported OS %s", goos)
}

// Open opens rawURL in the user's default browser without waiting for it.
func Open(rawURL string) error {
	name, args, err := Command(runtime.GOOS, rawURL)
	if err != nil {
		return err
	}
	return exec.Command(name, args...).Start()
}
