package openpayments

import (
	"context"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/config"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/metrics"
	"github.com/isaoPastelin/Interledger-Hackathon/pkg/apperror"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"
)

// Factory implements ports.ClientFactory. Clients are cached by a
// fingerprint of the credentials, so two accounts share a client only when
// wallet, key id and key material are all equal.
type Factory struct {
	cache    *expirable.LRU[string, *Client]
	enc      ports.EncryptionService
	breakers *Breakers
	http     *http.Client
	log      zerolog.Logger
}

// NewFactory creates a client factory from configuration.
func NewFactory(cfg config.OpenPaymentsConfig, enc ports.EncryptionService, log zerolog.Logger) *Factory {
	size := cfg.ClientCacheSize
	if size <= 0 {
		size = 128
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Factory{
		cache:    expirable.NewLRU[string, *Client](size, nil, cfg.ClientCacheTTL),
		enc:      enc,
		breakers: NewBreakers(cfg.BreakerMaxFailures, cfg.BreakerTimeout, log),
		http:     &http.Client{Timeout: timeout},
		log:      log,
	}
}

// ForAccount returns the cached client for account's credentials, building
// it on a miss.
func (f *Factory) ForAccount(ctx context.Context, account *domain.Account) (ports.PaymentNetworkClient, error) {
	if account == nil || !account.HasWallet() {
		id := ""
		if account != nil {
			id = account.ID
		}
		return nil, apperror.ErrWalletNotConfigured(id)
	}

	material, err := f.enc.Decrypt(account.PrivateKeyEnc)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(err)
	}

	key := Fingerprint(account.WalletAddressURL, account.KeyID, material)
	if c, ok := f.cache.Get(key); ok {
		metrics.ClientCacheLookups.WithLabelValues("hit").Inc()
		return c, nil
	}
	metrics.ClientCacheLookups.WithLabelValues("miss").Inc()

	priv, err := LoadPrivateKey(material)
	if err != nil {
		f.log.Warn().Err(err).Str("account_id", account.ID).Msg("unusable payment network key")
		return nil, apperror.ErrWalletNotConfigured(account.ID)
	}

	c := NewClient(account.WalletAddressURL, NewSigner(account.KeyID, priv), f.http, f.breakers,
		f.log.With().Str("wallet", account.WalletAddressURL).Logger())
	f.cache.Add(key, c)
	return c, nil
}

// Len returns the number of cached clients.
func (f *Factory) Len() int {
	return f.cache.Len()
}

// Fingerprint is the blake2b-256 digest identifying one credential set.
func Fingerprint(walletURL, keyID, material string) string {
	h, _ := blake2b.New256(nil)
	for _, part := range []string{walletURL, keyID, material} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
