package config

import "fmt"

// DbConfig is what the database connector needs from a configuration.
type DbConfig interface {
	GetConnectionString() string
}

func (pc *PostgresConfig) GetConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName)
}
