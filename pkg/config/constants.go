package config

const (
	EnvPrefix = "COILPRINT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"

	EnvDBDSN = "COILPRINT_DB_DSN"

	// DefaultSQLiteDSN keeps plant-local installs working out of the box.
	DefaultSQLiteDSN = "file:labelprinting.db?_busy_timeout=5000&_journal_mode=WAL&_fk=1"
)
