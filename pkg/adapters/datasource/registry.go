package datasource

import (
	"sort"
	"strings"
	"sync"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

// DatasourceAdapterInfo describes a registered adapter for the driver select.
type DatasourceAdapterInfo struct {
	Type        string `json:"type"`         // "postgres", "sqlserver", "mysql", "sqlite"
	DisplayName string `json:"display_name"` // "PostgreSQL", "Microsoft SQL Server"
	Description string `json:"description"`
	DefaultPort string `json:"default_port,omitempty"`
}

// DatasourceAdapterRegistration contains info + the executor factory for one driver.
type DatasourceAdapterRegistration struct {
	Info    DatasourceAdapterInfo
	Aliases []string
	Factory func(params models.ConnectionParams) (StatementExecutor, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]DatasourceAdapterRegistration)
	aliases    = make(map[string]string)
)

// Register is called by each adapter's init() function.
func Register(reg DatasourceAdapterRegistration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Type] = reg
	for _, alias := range reg.Aliases {
		aliases[alias] = reg.Info.Type
	}
}

// RegisteredAdapters returns info for all registered adapters, sorted by type.
func RegisteredAdapters() []DatasourceAdapterInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]DatasourceAdapterInfo, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result
}

// GetFactory returns the executor factory for a driver name or alias.
// Returns nil if the driver is not registered.
func GetFactory(driver string) func(params models.ConnectionParams) (StatementExecutor, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if reg, ok := lookup(driver); ok {
		return reg.Factory
	}
	return nil
}

// CanonicalType resolves a driver name or alias to its registered type.
// ok is false when no adapter matches.
func CanonicalType(driver string) (string, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	reg, ok := lookup(driver)
	return reg.Info.Type, ok
}

// lookup finds a registration by type or alias. The caller holds registryMu.
func lookup(driver string) (DatasourceAdapterRegistration, bool) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if canonical, ok := aliases[driver]; ok {
		driver = canonical
	}
	reg, ok := registry[driver]
	return reg, ok
}

// IsRegistered checks if a driver is available.
func IsRegistered(driver string) bool {
	return GetFactory(driver) != nil
}
