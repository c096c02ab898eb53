package app

import (
	"fmt"

	cryptoDomain "github.com/allisson/erpnext-api-tester/internal/crypto/domain"
	cryptoService "github.com/allisson/erpnext-api-tester/internal/crypto/service"
)

func (c *Container) AEADManager() cryptoService.AEADManager {
	m, _ := c.aeadManager.get(func() (cryptoService.AEADManager, error) {
		return cryptoService.NewAEADManager(), nil
	})
	return m
}

// KMSService opens gocloud.dev keepers for KMS_KEY_URI.
func (c *Container) KMSService() cryptoService.KMSService {
	svc, _ := c.kmsService.get(func() (cryptoService.KMSService, error) {
		return cryptoService.NewKMSService(), nil
	})
	return svc
}

// SealingAlgorithm returns the configured AEAD for new seals.
func (c *Container) SealingAlgorithm() (cryptoDomain.Algorithm, error) {
	return cryptoDomain.ParseAlgorithm(c.config.SealingAlgorithm)
}

// MasterKeyHolder returns the holder of the active master key. The key is loaded and
// validated once; a failure wraps errors.ErrConfiguration.
func (c *Container) MasterKeyHolder() (*cryptoDomain.MasterKeyHolder, error) {
	return c.masterKeyHolder.get(c.initMasterKeyHolder)
}

func (c *Container) initMasterKeyHolder() (*cryptoDomain.MasterKeyHolder, error) {
	loader := cryptoService.NewMasterKeyLoader(c.KMSService(), c.Logger())

	key, err := loader.LoadMasterKey(c.ctx, c.config.EncryptionKeyBase64, c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to load master key: %w", err)
	}
	return cryptoDomain.NewMasterKeyHolder(key), nil
}
