package lcu

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ghostscout/internal/lol"
)

// ErrLockfileNotFound is returned when no lockfile exists in any candidate location
var ErrLockfileNotFound = fmt.Errorf("%w: lockfile not found", lol.ErrUnavailable)

// Credential holds the connection details parsed from the lockfile.
// It lives for one poll cycle; the client rewrites it on every restart.
type Credential struct {
	ProcessName string
	PID         string
	Port        uint16
	Password    string
	Protocol    string
}

// Locator finds the lockfile path, reporting false when there is none
type Locator func() (string, bool)

// LockfileCandidates lists where the lockfile may live, most specific first
func LockfileCandidates(configDir string) []string {
	var candidates []string

	if configDir != "" {
		candidates = append(candidates, filepath.Join(configDir, "lockfile"))
	}
	if dir := os.Getenv("LOL_LOCKFILE_DIR"); dir != "" {
		candidates = append(candidates, filepath.Join(dir, "lockfile"))
	}

	// Common League installation paths on Windows
	candidates = append(candidates,
		"C:/Riot Games/League of Legends/lockfile",
		"C:/Program Files/Riot Games/League of Legends/lockfile",
		"C:/Program Files (x86)/Riot Games/League of Legends/lockfile",
		"D:/Riot Games/League of Legends/lockfile",
		"D:/League of Legends/lockfile",
		"D:/Riot Games/LeagueClient/lockfile",
	)
	for _, drive := range []string{"E:", "F:", "G:"} {
		candidates = append(candidates, filepath.Join(drive, "Riot Games/League of Legends/lockfile"))
	}

	if local := os.Getenv("LOCALAPPDATA"); local != "" {
		candidates = append(candidates, filepath.Join(local, "Riot Games", "Riot Client", "Config", "lockfile"))
	}
	if pd := os.Getenv("PROGRAMDATA"); pd != "" {
		candidates = append(candidates, filepath.Join(pd, "Riot Games", "Riot Client", "Config", "lockfile"))
	}

	return candidates
}

// FindLockfile returns the first candidate path that exists
func FindLockfile(configDir string) (string, error) {
	for _, path := range LockfileCandidates(configDir) {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrLockfileNotFound
}

// NewLocator returns a Locator over LockfileCandidates(configDir)
func NewLocator(configDir string) Locator {
	return func() (string, bool) {
		path, err := FindLockfile(configDir)
		return path, err == nil
	}
}

// ParseCredential parses lockfile content.
// Lockfile format: LeagueClient:pid:port:password:protocol
func ParseCredential(content string) (*Credential, error) {
	parts := strings.Split(strings.TrimSpace(content), ":")
	if len(parts) != 5 {
		return nil, fmt.Errorf("%w: invalid lockfile format: expected 5 parts, got %d", lol.ErrMalformedInput, len(parts))
	}

	port, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid lockfile port %q", lol.ErrMalformedInput, parts[2])
	}

	return &Credential{
		ProcessName: parts[0],
		PID:         parts[1],
		Port:        uint16(port),
		Password:    parts[3],
		Protocol:    parts[4],
	}, nil
}

// ReadCredential reads and parses the lockfile at path
func ReadCredential(path string) (*Credential, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read lockfile: %v", lol.ErrUnavailable, err)
	}
	return ParseCredential(string(content))
}
