package certgen

import (
	"crypto/ecdsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseCert(t *testing.T, certPEM []byte) *x509.Certificate {
	t.Helper()
	block, _ := pem.Decode(certPEM)
	require.NotNil(t, block)
	require.Equal(t, "CERTIFICATE", block.Type)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	return cert
}

// writeCA generates a CA and writes it under a temp dir.
func writeCA(t *testing.T) (certPath, keyPath string, certPEM []byte) {
	t.Helper()
	certPEM, keyPEM, err := GenerateCA("Test CA", 24*time.Hour)
	require.NoError(t, err)

	dir := t.TempDir()
	certPath = filepath.Join(dir, "ca.crt")
	keyPath = filepath.Join(dir, "ca.key")
	require.NoError(t, os.WriteFile(certPath, certPEM, 0o600))
	require.NoError(t, os.WriteFile(keyPath, keyPEM, 0o600))
	return certPath, keyPath, certPEM
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.pem")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGenerateCA(t *testing.T) {
	certPEM, keyPEM, err := GenerateCA("GophShare Local CA", 48*time.Hour)
	require.NoError(t, err)

	ca := parseCert(t, certPEM)
	assert.True(t, ca.IsCA)
	assert.True(t, ca.BasicConstraintsValid)
	assert.Equal(t, "GophShare Local CA", ca.Subject.CommonName)
	assert.NotZero(t, ca.KeyUsage&x509.KeyUsageCertSign)
	assert.InDelta(t, (48 * time.Hour).Seconds(), ca.NotAfter.Sub(ca.NotBefore).Seconds(), 120)
	require.NoError(t, ca.CheckSignatureFrom(ca))

	_, err = tls.X509KeyPair(certPEM, keyPEM)
	assert.NoError(t, err)
}

func TestLoadCACredentials_Success(t *testing.T) {
	certPath, keyPath, certPEM := writeCA(t)
	want := parseCert(t, certPEM)

	caCert, caKey, err := LoadCACredentials(certPath, keyPath)
	require.NoError(t, err)
	assert.Equal(t, want.Subject.CommonName, caCert.Subject.CommonName)

	parsedKey, ok := caKey.(*ecdsa.PrivateKey)
	require.True(t, ok, "key type = %T", caKey)
	assert.True(t, parsedKey.PublicKey.Equal(want.PublicKey))
}

func TestLoadCACredentials_Errors(t *testing.T) {
	certPath, keyPath, _ := writeCA(t)
	leafPEM, leafKeyPEM, err := GenerateSelfSigned([]string{"localhost"}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name     string
		certPath string
		keyPath  string
		want     string
	}{
		{"missing cert", "/no/such/file.pem", keyPath, "read ca cert"},
		{"missing key", certPath, "/no/such/key.pem", "read ca key"},
		{"bad cert PEM", writeTemp(t, "not a cert"), keyPath, "invalid CA cert PEM"},
		{"bad key PEM", certPath, writeTemp(t, "not a key"), "invalid CA key PEM"},
		{"not a CA", writeTemp(t, string(leafPEM)), writeTemp(t, string(leafKeyPEM)), "not a CA"},
		{"unsupported key", certPath, writeTemp(t, "-----BEGIN FOO KEY-----\nAAAA\n-----END FOO KEY-----\n"), "unsupported key type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadCACredentials(tt.certPath, tt.keyPath)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestGenerateServerCertificate(t *testing.T) {
	certPath, keyPath, _ := writeCA(t)
	caCert, caKey, err := LoadCACredentials(certPath, keyPath)
	require.NoError(t, err)

	certPEM, keyPEM, err := GenerateServerCertificate(
		[]string{"share.local", "localhost", "127.0.0.1", "::1"}, caCert, caKey, time.Hour)
	require.NoError(t, err)

	cert := parseCert(t, certPEM)
	assert.Equal(t, "share.local", cert.Subject.CommonName)
	assert.Equal(t, []string{"share.local", "localhost"}, cert.DNSNames)
	require.Len(t, cert.IPAddresses, 2)
	assert.True(t, cert.IPAddresses[0].Equal(net.ParseIP("127.0.0.1")))
	assert.Equal(t, []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}, cert.ExtKeyUsage)
	assert.False(t, cert.IsCA)
	require.NoError(t, cert.CheckSignatureFrom(caCert))

	roots := x509.NewCertPool()
	roots.AddCert(caCert)
	_, err = cert.Verify(x509.VerifyOptions{DNSName: "localhost", Roots: roots})
	assert.NoError(t, err)

	_, err = tls.X509KeyPair(certPEM, keyPEM)
	assert.NoError(t, err)
}

func TestGenerateSelfSigned(t *testing.T) {
	certPEM, keyPEM, err := GenerateSelfSigned([]string{"localhost"}, time.Hour)
	require.NoError(t, err)

	cert := parseCert(t, certPEM)
	assert.Equal(t, []string{"localhost"}, cert.DNSNames)
	assert.NoError(t, cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature))

	block, _ := pem.Decode(keyPEM)
	require.NotNil(t, block)
	assert.Equal(t, "EC PRIVATE KEY", block.Type)
	_, err = x509.ParseECPrivateKey(block.Bytes)
	assert.NoError(t, err)
}

func TestGenerate_NoHosts(t *testing.T) {
	_, _, err := GenerateSelfSigned(nil, time.Hour)
	assert.ErrorIs(t, err, ErrNoHosts)
}
