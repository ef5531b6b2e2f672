package config

// EnvPrefix scopes all environment variables consumed by the storefront.
const EnvPrefix = "ARKI"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)
