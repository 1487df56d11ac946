package datasource

import (
	"fmt"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

// ExecutorFactory creates statement executors from connection parameters.
// Use this interface for dependency injection and testing.
type ExecutorFactory interface {
	// NewExecutor returns an executor for params.Driver (postgres when empty).
	NewExecutor(params models.ConnectionParams) (StatementExecutor, error)

	// ListTypes returns info for all registered adapter types.
	ListTypes() []DatasourceAdapterInfo
}

type registryFactory struct{}

// NewExecutorFactory returns a factory backed by the global registry.
func NewExecutorFactory() ExecutorFactory {
	return &registryFactory{}
}

func (f *registryFactory) NewExecutor(params models.ConnectionParams) (StatementExecutor, error) {
	driver := params.DriverOrDefault()
	factory := GetFactory(driver)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedDriver, driver)
	}
	return factory(params)
}

func (f *registryFactory) ListTypes() []DatasourceAdapterInfo {
	return RegisteredAdapters()
}

// Ensure registryFactory implements ExecutorFactory at compile time.
var _ ExecutorFactory = (*registryFactory)(nil)
