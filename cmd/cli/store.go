package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// tokenFile is the persisted session of the CLI.
type tokenFile struct {
	Server       string `json:"server"`
	SessionToken string `json:"session_token"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "todokeeper")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "todokeeper")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(server, tok string) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{Server: server, SessionToken: tok})
}

// loadToken returns the session saved for server.
func loadToken(server string) (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errors.New("not logged in (run login first)")
		}
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.SessionToken == "" || tf.Server != server {
		return "", errors.New("not logged in to " + server + " (run login first)")
	}
	return tf.SessionToken, nil
}

func clearToken() error {
	err := os.Remove(tokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
