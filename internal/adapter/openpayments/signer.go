package openpayments

import (
	"crypto/ed25519"
	"crypto/sha512"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidKey is returned when key material is not an Ed25519 PKCS#8 key.
var ErrInvalidKey = errors.New("openpayments: private key is not an Ed25519 PKCS#8 key")

// LoadPrivateKey accepts a PEM block, a base64-encoded PEM block, or a path
// to a PEM file.
func LoadPrivateKey(material string) (ed25519.PrivateKey, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		return nil, ErrInvalidKey
	}

	pemBytes := []byte(material)
	if !strings.Contains(material, "-----BEGIN") {
		if decoded, err := base64.StdEncoding.DecodeString(material); err == nil && strings.Contains(string(decoded), "-----BEGIN") {
			pemBytes = decoded
		} else {
			data, err := os.ReadFile(material)
			if err != nil {
				return nil, fmt.Errorf("reading private key file: %w", err)
			}
			pemBytes = data
		}
	}

	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, ErrInvalidKey
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	key, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, ErrInvalidKey
	}
	return key, nil
}

// Signer produces RFC 9421 HTTP message signatures with an Ed25519 key.
type Signer struct {
	keyID string
	key   ed25519.PrivateKey
	now   func() time.Time
}

// NewSigner creates a signer for the given key id.
func NewSigner(keyID string, key ed25519.PrivateKey) *Signer {
	return &Signer{keyID: keyID, key: key, now: time.Now}
}

// ContentDigest renders the RFC 9530 sha-512 Content-Digest value.
func ContentDigest(body []byte) string {
	sum := sha512.Sum512(body)
	return "sha-512=:" + base64.StdEncoding.EncodeToString(sum[:]) + ":"
}

// Sign sets Content-Digest (when body is non-empty), Signature-Input and
// Signature on req. Authorization and content headers must already be set.
func (s *Signer) Sign(req *http.Request, body []byte) error {
	components := []string{"@method", "@target-uri"}
	if req.Header.Get("Authorization") != "" {
		components = append(components, "authorization")
	}
	if len(body) > 0 {
		req.Header.Set("Content-Digest", ContentDigest(body))
		req.Header.Set("Content-Length", strconv.Itoa(len(body)))
		components = append(components, "content-digest", "content-length", "content-type")
	}

	quoted := make([]string, len(components))
	for i, c := range components {
		quoted[i] = strconv.Quote(c)
	}
	params := fmt.Sprintf("(%s);keyid=%s;created=%d",
		strings.Join(quoted, " "), strconv.Quote(s.keyID), s.now().Unix())

	base, err := signatureBase(req, components, params)
	if err != nil {
		return err
	}
	sig := ed25519.Sign(s.key, []byte(base))

	req.Header.Set("Signature-Input", "sig1="+params)
	req.Header.Set("Signature", "sig1=:"+base64.StdEncoding.EncodeToString(sig)+":")
	return nil
}

func signatureBase(req *http.Request, components []string, params string) (string, error) {
	var b strings.Builder
	for _, c := range components {
		var v string
		switch c {
		case "@method":
			v = strings.ToUpper(req.Method)
		case "@target-uri":
			v = req.URL.String()
		default:
			v = strings.TrimSpace(req.Header.Get(c))
			if v == "" {
				return "", fmt.Errorf("signature component %q missing from request", c)
			}
		}
		fmt.Fprintf(&b, "%q: %s\n", c, v)
	}
	fmt.Fprintf(&b, "%q: %s", "@signature-params", params)
	return b.String(), nil
}
