package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	connectionDomain "github.com/allisson/erpnext-api-tester/internal/connection/domain"
	cryptoDomain "github.com/allisson/erpnext-api-tester/internal/crypto/domain"
	cryptoService "github.com/allisson/erpnext-api-tester/internal/crypto/service"
	"github.com/allisson/erpnext-api-tester/internal/database"
	apperrors "github.com/allisson/erpnext-api-tester/internal/errors"
)

const verifyConcurrency = 8

// ErrSameMasterKey indicates a rotation to the key that is already active.
var ErrSameMasterKey = apperrors.Wrap(apperrors.ErrInvalidInput, "new master key equals the active key")

// connectionUseCase implements ConnectionUseCase.
type connectionUseCase struct {
	txManager   database.TxManager
	repo        ConnectionRepository
	aeadManager cryptoService.AEADManager
	algorithm   cryptoDomain.Algorithm
	keyHolder   *cryptoDomain.MasterKeyHolder
	logger      *slog.Logger
}

// NewConnectionUseCase creates a ConnectionUseCase sealing new credentials with algorithm.
func NewConnectionUseCase(
	txManager database.TxManager,
	repo ConnectionRepository,
	aeadManager cryptoService.AEADManager,
	algorithm cryptoDomain.Algorithm,
	keyHolder *cryptoDomain.MasterKeyHolder,
	logger *slog.Logger,
) ConnectionUseCase {
	return &connectionUseCase{
		txManager:   txManager,
		repo:        repo,
		aeadManager: aeadManager,
		algorithm:   algorithm,
		keyHolder:   keyHolder,
		logger:      logger,
	}
}

// sealer returns the engine for alg. Rows store their algorithm, so a process sealing
// with ChaCha20 can still open rows sealed with AES-GCM.
func (c *connectionUseCase) sealer(alg cryptoDomain.Algorithm) cryptoService.Sealer {
	return cryptoService.NewSealingEngine(c.aeadManager, alg)
}

func (c *connectionUseCase) sealPair(
	apiKey, apiSecret string,
	masterKey *cryptoDomain.MasterKey,
) (connectionDomain.CredentialPair, error) {
	engine := c.sealer(c.algorithm)

	sealedKey, err := engine.Seal(apiKey, masterKey)
	if err != nil {
		return connectionDomain.CredentialPair{}, err
	}
	sealedSecret, err := engine.Seal(apiSecret, masterKey)
	if err != nil {
		return connectionDomain.CredentialPair{}, err
	}
	return connectionDomain.CredentialPair{APIKey: sealedKey, APISecret: sealedSecret}, nil
}

func (c *connectionUseCase) unsealPair(
	conn *connectionDomain.Connection,
	masterKey *cryptoDomain.MasterKey,
) (*connectionDomain.RevealedCredentials, error) {
	if !conn.HasSecrets() {
		return nil, connectionDomain.ErrCredentialsMissing
	}

	engine := c.sealer(conn.Algorithm)

	apiKey, err := engine.Unseal(conn.Credentials.APIKey, masterKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", connectionDomain.ErrCredentialDecryption, err)
	}
	apiSecret, err := engine.Unseal(conn.Credentials.APISecret, masterKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", connectionDomain.ErrCredentialDecryption, err)
	}
	return &connectionDomain.RevealedCredentials{APIKey: apiKey, APISecret: apiSecret}, nil
}

// Create validates and seals the credentials and persists a new connection.
func (c *connectionUseCase) Create(
	ctx context.Context,
	name, baseURL, apiKey, apiSecret string,
) (*connectionDomain.Connection, error) {
	if err := connectionDomain.ValidateName(name); err != nil {
		return nil, err
	}
	if err := connectionDomain.ValidateBaseURL(baseURL); err != nil {
		return nil, err
	}
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(apiSecret) == "" {
		return nil, connectionDomain.ErrCredentialsRequired
	}

	pair, err := c.sealPair(apiKey, apiSecret, c.keyHolder.Load())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	conn := &connectionDomain.Connection{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        connectionDomain.NormalizeName(name),
		BaseURL:     connectionDomain.NormalizeBaseURL(baseURL),
		Credentials: pair,
		Algorithm:   c.algorithm,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return c.repo.Create(txCtx, conn)
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Get retrieves a connection by ID.
func (c *connectionUseCase) Get(ctx context.Context, id uuid.UUID) (*connectionDomain.Connection, error) {
	return c.repo.Get(ctx, id)
}

// List returns every connection, newest first.
func (c *connectionUseCase) List(ctx context.Context) ([]*connectionDomain.Connection, error) {
	return c.repo.List(ctx)
}

// Update applies a partial update. The credential pair is replaced only when both
// secrets are supplied.
func (c *connectionUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	input UpdateInput,
) (*connectionDomain.Connection, error) {
	if (input.APIKey == nil) != (input.APISecret == nil) {
		return nil, connectionDomain.ErrCredentialsIncomplete
	}
	if input.Name != nil {
		if err := connectionDomain.ValidateName(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.BaseURL != nil {
		if err := connectionDomain.ValidateBaseURL(*input.BaseURL); err != nil {
			return nil, err
		}
	}

	var pair *connectionDomain.CredentialPair
	if input.APIKey != nil {
		if strings.TrimSpace(*input.APIKey) == "" || strings.TrimSpace(*input.APISecret) == "" {
			return nil, connectionDomain.ErrCredentialsRequired
		}
		sealed, err := c.sealPair(*input.APIKey, *input.APISecret, c.keyHolder.Load())
		if err != nil {
			return nil, err
		}
		pair = &sealed
	}

	var updated *connectionDomain.Connection
	err := c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		conn, err := c.repo.Get(txCtx, id)
		if err != nil {
			return err
		}

		if input.Name != nil {
			conn.Name = connectionDomain.NormalizeName(*input.Name)
		}
		if input.BaseURL != nil {
			conn.BaseURL = connectionDomain.NormalizeBaseURL(*input.BaseURL)
		}
		if pair != nil {
			conn.Credentials = *pair
			conn.Algorithm = c.algorithm
		}
		conn.UpdatedAt = time.Now().UTC()

		if err := c.repo.Update(txCtx, conn); err != nil {
			return err
		}
		updated = conn
		return nil
	})
	if err != nil {
		return nil, err
	}

	if pair != nil {
		c.logger.Info("connection credentials rotated", slog.String("connection_id", id.String()))
	}
	return updated, nil
}

// Delete removes a connection and its credential pair.
func (c *connectionUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return c.repo.Delete(ctx, id)
}

// DeleteAll removes every connection.
func (c *connectionUseCase) DeleteAll(ctx context.Context) (int64, error) {
	deleted, err := c.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	c.logger.Warn("all connections deleted", slog.Int64("count", deleted))
	return deleted, nil
}

// RevealCredentials unseals the credentials of a connection under the active key.
func (c *connectionUseCase) RevealCredentials(
	ctx context.Context,
	id uuid.UUID,
) (*connectionDomain.RevealedCredentials, error) {
	conn, err := c.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	creds, err := c.unsealPair(conn, c.keyHolder.Load())
	if err != nil {
		c.logger.Warn("failed to unseal connection credentials",
			slog.String("connection_id", id.String()),
			slog.String("reason", failureReason(err)),
		)
		return nil, err
	}
	return creds, nil
}

// RotateMasterKey reseals every stored pair under newKey. Any failure rolls the
// transaction back and leaves the active key unchanged.
func (c *connectionUseCase) RotateMasterKey(ctx context.Context, newKey *cryptoDomain.MasterKey) (int, error) {
	current := c.keyHolder.Load()
	if newKey == nil {
		return 0, cryptoDomain.ErrInvalidMasterKey
	}
	if current.Equal(newKey) {
		return 0, ErrSameMasterKey
	}

	var resealed int
	err := c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		resealed = 0

		conns, err := c.repo.ListForUpdate(txCtx)
		if err != nil {
			return err
		}

		for _, conn := range conns {
			creds, err := c.unsealPair(conn, current)
			if err != nil {
				return apperrors.Wrapf(err, "connection %s", conn.ID)
			}

			pair, err := c.sealPair(creds.APIKey, creds.APISecret, newKey)
			if err != nil {
				return err
			}

			conn.Credentials = pair
			conn.Algorithm = c.algorithm
			conn.UpdatedAt = time.Now().UTC()
			if err := c.repo.Update(txCtx, conn); err != nil {
				return err
			}
			resealed++
		}
		return nil
	})
	if err != nil {
		c.logger.Error("master key rotation rolled back", slog.String("reason", failureReason(err)))
		return 0, err
	}

	c.keyHolder.Swap(newKey)
	c.logger.Info("master key rotated", slog.Int("resealed", resealed))
	return resealed, nil
}

// VerifyCredentials tries to unseal every stored pair and reports the ones that fail.
func (c *connectionUseCase) VerifyCredentials(ctx context.Context) (*VerificationReport, error) {
	conns, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	masterKey := c.keyHolder.Load()

	var mu sync.Mutex
	failures := make([]VerificationFailure, 0)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(verifyConcurrency)
	for _, conn := range conns {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := c.unsealPair(conn, masterKey); err != nil {
				mu.Lock()
				failures = append(failures, VerificationFailure{
					ConnectionID: conn.ID,
					Name:         conn.Name,
					Reason:       failureReason(err),
				})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(failures, func(i, j int) bool {
		return failures[i].ConnectionID.String() < failures[j].ConnectionID.String()
	})

	return &VerificationReport{
		Total:    len(conns),
		Valid:    len(conns) - len(failures),
		Failures: failures,
	}, nil
}

// failureReason classifies an unseal failure without exposing any sealed material.
func failureReason(err error) string {
	switch {
	case errors.Is(err, connectionDomain.ErrCredentialsMissing):
		return "missing"
	case errors.Is(err, cryptoDomain.ErrMalformedInput):
		return "malformed"
	case errors.Is(err, cryptoDomain.ErrIntegrity):
		return "integrity"
	default:
		return "error"
	}
}
