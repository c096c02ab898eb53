package app

import (
	"fmt"

	connectionDomain "github.com/allisson/erpnext-api-tester/internal/connection/domain"
	connectionHTTP "github.com/allisson/erpnext-api-tester/internal/connection/http"
	connectionRepository "github.com/allisson/erpnext-api-tester/internal/connection/repository"
	connectionUseCase "github.com/allisson/erpnext-api-tester/internal/connection/usecase"
	"github.com/allisson/erpnext-api-tester/internal/database"
	"github.com/allisson/erpnext-api-tester/internal/erpnext"
)

// ConnectionRepository returns the connection repository for the configured driver.
func (c *Container) ConnectionRepository() (connectionUseCase.ConnectionRepository, error) {
	return c.connectionRepository.get(c.initConnectionRepository)
}

// ConnectionUseCase returns the connection use case, wrapped with metrics.
func (c *Container) ConnectionUseCase() (connectionUseCase.ConnectionUseCase, error) {
	return c.connectionUseCase.get(c.initConnectionUseCase)
}

// RequestUseCase returns the use case running ERPNext calls for stored connections.
func (c *Container) RequestUseCase() (connectionUseCase.RequestUseCase, error) {
	return c.requestUseCase.get(c.initRequestUseCase)
}

// ConnectionHandler returns the HTTP handler for connection endpoints.
func (c *Container) ConnectionHandler() (*connectionHTTP.ConnectionHandler, error) {
	return c.connectionHandler.get(c.initConnectionHandler)
}

// ERPNextClientFactory returns the factory building one outbound client per call,
// configured with the ERPNext timeout and retry settings.
func (c *Container) ERPNextClientFactory() connectionUseCase.ClientFactory {
	logger := c.Logger()
	timeout := c.config.ERPNextTimeout
	retries := c.config.ERPNextMaxRetries

	return func(baseURL string, creds connectionDomain.RevealedCredentials) connectionUseCase.ERPNextClient {
		return erpnext.NewClient(
			baseURL,
			erpnext.Credentials{APIKey: creds.APIKey, APISecret: creds.APISecret},
			erpnext.WithTimeout(timeout),
			erpnext.WithMaxRetries(retries),
			erpnext.WithLogger(logger),
		)
	}
}

func (c *Container) initConnectionRepository() (connectionUseCase.ConnectionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for connection repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return connectionRepository.NewPostgreSQLConnectionRepository(db), nil
	case database.DriverMySQL:
		return connectionRepository.NewMySQLConnectionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initConnectionUseCase() (connectionUseCase.ConnectionUseCase, error) {
	algorithm, err := c.SealingAlgorithm()
	if err != nil {
		return nil, err
	}

	keyHolder, err := c.MasterKeyHolder()
	if err != nil {
		return nil, err
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for connection use case: %w", err)
	}

	repo, err := c.ConnectionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection repository for connection use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for connection use case: %w", err)
	}

	useCase := connectionUseCase.NewConnectionUseCase(
		txManager,
		repo,
		c.AEADManager(),
		algorithm,
		keyHolder,
		c.Logger(),
	)
	return connectionUseCase.NewConnectionUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initRequestUseCase() (connectionUseCase.RequestUseCase, error) {
	connections, err := c.ConnectionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection use case for request use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for request use case: %w", err)
	}

	useCase := connectionUseCase.NewRequestUseCase(connections, c.ERPNextClientFactory())
	return connectionUseCase.NewRequestUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initConnectionHandler() (*connectionHTTP.ConnectionHandler, error) {
	connections, err := c.ConnectionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection use case for connection handler: %w", err)
	}

	requests, err := c.RequestUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get request use case for connection handler: %w", err)
	}

	return connectionHTTP.NewConnectionHandler(connections, requests, c.Logger()), nil
}
