package models

import "fmt"

// ConnectionParams are the fields needed to reach a relational database.
// Values are held as entered; nothing is validated or encrypted.
type ConnectionParams struct {
	Driver   string `json:"driver" yaml:"driver"` // "postgres", "sqlserver", "mysql", "sqlite"
	Database string `json:"database" yaml:"database"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"-" yaml:"-"`
	Host     string `json:"host" yaml:"host"`
	Port     string `json:"port" yaml:"port"`
}

// DefaultDriver is used when ConnectionParams.Driver is empty.
const DefaultDriver = "postgres"

// DriverOrDefault returns the configured driver, falling back to DefaultDriver.
func (p ConnectionParams) DriverOrDefault() string {
	if p.Driver == "" {
		return DefaultDriver
	}
	return p.Driver
}

// String renders the params for logs without the password.
func (p ConnectionParams) String() string {
	return fmt.Sprintf("%s://%s@%s:%s/%s", p.DriverOrDefault(), p.User, p.Host, p.Port, p.Database)
}
