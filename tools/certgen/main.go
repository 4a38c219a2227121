// Package main writes TLS material for the viewer host under a directory:
// a local CA (reused when already present) and a server certificate for the
// given hosts, or a single self-signed certificate with -self-signed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atinyakov/GophShare/internal/certgen"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	dir := fs.String("dir", "certs", "output directory")
	hosts := fs.String("hosts", "localhost,127.0.0.1,::1", "comma-separated DNS names and IPs")
	days := fs.Int("days", 365, "server certificate validity in days")
	selfSigned := fs.Bool("self-signed", false, "write a self-signed server certificate without a CA")
	if err := fs.Parse(args); err != nil {
		return err
	}

	names := splitHosts(*hosts)
	validFor := time.Duration(*days) * 24 * time.Hour
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", *dir, err)
	}

	if *selfSigned {
		certPEM, keyPEM, err := certgen.GenerateSelfSigned(names, validFor)
		if err != nil {
			return err
		}
		if err := writePair(*dir, "server", certPEM, keyPEM); err != nil {
			return err
		}
		fmt.Fprintf(out, "Self-signed certificate for %s written to %s\n", strings.Join(names, ", "), *dir)
		return nil
	}

	caCertPath := filepath.Join(*dir, "ca.crt")
	caKeyPath := filepath.Join(*dir, "ca.key")
	if _, err := os.Stat(caCertPath); errors.Is(err, os.ErrNotExist) {
		certPEM, keyPEM, err := certgen.GenerateCA("GophShare Local CA", 10*365*24*time.Hour)
		if err != nil {
			return err
		}
		if err := writePair(*dir, "ca", certPEM, keyPEM); err != nil {
			return err
		}
		fmt.Fprintf(out, "New CA written to %s; import ca.crt into your browser's trust store\n", *dir)
	}

	caCert, caKey, err := certgen.LoadCACredentials(caCertPath, caKeyPath)
	if err != nil {
		return err
	}
	certPEM, keyPEM, err := certgen.GenerateServerCertificate(names, caCert, caKey, validFor)
	if err != nil {
		return err
	}
	if err := writePair(*dir, "server", certPEM, keyPEM); err != nil {
		return err
	}
	fmt.Fprintf(out, "Server certificate for %s written to %s\n", strings.Join(names, ", "), *dir)
	return nil
}

func splitHosts(s string) []string {
	var hosts []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// writePair writes <name>.crt and a private <name>.key into dir.
func writePair(dir, name string, certPEM, keyPEM []byte) error {
	if err := os.WriteFile(filepath.Join(dir, name+".crt"), certPEM, 0o644); err != nil {
		return fmt.Errorf("write %s cert: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".key"), keyPEM, 0o600); err != nil {
		return fmt.Errorf("write %s key: %w", name, err)
	}
	return nil
}
