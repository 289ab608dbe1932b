package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/insights/internal/shared"
	tu "github.com/desertthunder/insights/internal/testing"
)

func stubConfig(stub *tu.ProviderStub) *shared.Config {
	config := shared.DefaultConfig()
	config.Credentials.Spotify = stub.SpotifyConfig()
	config.Server.AllowedOrigins = []string{config.Frontend.Origin}
	return config
}

func newTestRunner(config *shared.Config, client *http.Client) (*Runner, *bytes.Buffer) {
	output := &bytes.Buffer{}
	return NewRunner(RunnerOpts{
		Config:     config,
		HTTPClient: client,
		Logger:     shared.NewLogger(io.Discard),
		Output:     output,
	}), output
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected stdout to be the default output")
			}
		})

		t.Run("client uses the upstream timeout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			config := shared.DefaultConfig()
			config.Server.TimeoutSeconds = 7

			if got := runner.client(config).Timeout; got != 7*time.Second {
				t.Errorf("expected 7s timeout, got %v", got)
			}
		})
	})

	t.Run("buildServer", func(t *testing.T) {
		t.Run("rejects missing credentials", func(t *testing.T) {
			runner, _ := newTestRunner(nil, nil)

			_, err := runner.buildServer(shared.DefaultConfig())
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("assembles the relay", func(t *testing.T) {
			stub := tu.NewProviderStub(t)
			runner, _ := newTestRunner(nil, stub.Client())

			srv, err := runner.buildServer(stubConfig(stub))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(srv.Routes()) != 4 {
				t.Errorf("expected 4 routes, got %d", len(srv.Routes()))
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("pretty", func(t *testing.T) {
			runner, output := newTestRunner(nil, nil)
			if err := runner.writeJSON(map[string]string{"a": "b"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "{\n  \"a\": \"b\"\n}\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("marshal failure", func(t *testing.T) {
			runner, _ := newTestRunner(nil, nil)
			if err := runner.writeJSON(make(chan int), false); err == nil {
				t.Error("expected marshal error")
			}
		})

		t.Run("write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}, Logger: shared.NewLogger(io.Discard)})
			if err := runner.writeJSON(map[string]string{}, false); err == nil {
				t.Error("expected write error")
			}
		})

		t.Run("newline failure", func(t *testing.T) {
			lw := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &lw, Logger: shared.NewLogger(io.Discard)})
			if err := runner.writeJSON(map[string]string{}, false); err == nil {
				t.Error("expected newline write error")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}, Logger: shared.NewLogger(io.Discard)})
		if err := runner.writePlain("hello %s", "world"); err == nil {
			t.Error("expected write error")
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("config init", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		runner, output := newTestRunner(nil, nil)

		if err := NewApp(runner).Run(context.Background(), []string{"insights", "config", "init", "--config", path}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected config file to be created: %v", err)
		}
		if !strings.Contains(output.String(), path) {
			t.Errorf("expected path in output, got %q", output.String())
		}

		err := NewApp(runner).Run(context.Background(), []string{"insights", "config", "init", "--config", path})
		if err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Errorf("expected refusal to overwrite, got %v", err)
		}
	})

	t.Run("config show redacts the secret", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		content := `
[credentials.spotify]
client_id = "file_client_id"
client_secret = "super_secret"
redirect_uri = "http://localhost:5000/api/auth/callback"
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		runner, output := newTestRunner(nil, nil)
		args := []string{"insights", "config", "show", "--config", path, "--env-file", filepath.Join(dir, "missing.env")}
		if err := NewApp(runner).Run(context.Background(), args); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if strings.Contains(output.String(), "super_secret") {
			t.Errorf("expected secret to be redacted, got %s", output.String())
		}

		var shown shared.Config
		if err := json.Unmarshal(output.Bytes(), &shown); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", output.String(), err)
		}
		if shown.Credentials.Spotify.ClientID != "file_client_id" {
			t.Errorf("expected client id from file, got %q", shown.Credentials.Spotify.ClientID)
		}
		if shown.Frontend.Origin == "" {
			t.Error("expected the embedded frontend origin default")
		}
	})

	t.Run("auth url", func(t *testing.T) {
		stub := tu.NewProviderStub(t)
		runner, output := newTestRunner(stubConfig(stub), stub.Client())

		var opened string
		runner.openBrowser = func(u string) error {
			opened = u
			return nil
		}

		if err := NewApp(runner).Run(context.Background(), []string{"insights", "auth", "url", "--open"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		u, err := url.Parse(strings.TrimSpace(output.String()))
		if err != nil {
			t.Fatalf("expected a URL, got %q", output.String())
		}
		if u.Query().Get("client_id") != "test_client_id" || u.Query().Get("state") == "" {
			t.Errorf("expected client_id and state, got %s", u.RawQuery)
		}
		if opened != strings.TrimSpace(output.String()) {
			t.Errorf("expected the printed URL to be opened, got %q", opened)
		}
	})

	t.Run("auth url without credentials", func(t *testing.T) {
		runner, _ := newTestRunner(shared.DefaultConfig(), nil)

		err := NewApp(runner).Run(context.Background(), []string{"insights", "auth", "url"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

func TestServe(t *testing.T) {
	stub := tu.NewProviderStub(t)
	runner, output := newTestRunner(stubConfig(stub), stub.Client())

	srv, err := runner.buildServer(stubConfig(stub))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runner.serve(ctx, srv, ln, "http://localhost:3000")
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/test")
	if err != nil {
		cancel()
		t.Fatalf("expected the relay to answer, got %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "API is working!") {
		t.Errorf("unexpected response %d %s", resp.StatusCode, body)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	if !strings.Contains(output.String(), "/api/user/top-tracks") {
		t.Errorf("expected route table in output, got %q", output.String())
	}
}
