package config

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "NICHESMITH"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "NICHESMITH_DB_DSN"
	EnvDBHost = "NICHESMITH_DB_HOST"
	EnvDBUser = "NICHESMITH_DB_USER"
	EnvDBName = "NICHESMITH_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
