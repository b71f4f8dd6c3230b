package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "ACCSWAP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "ACCSWAP_APP_ENV"
	EnvPort       = "ACCSWAP_APP_PORT"
	EnvDBDSN      = "ACCSWAP_DB_DSN"
	EnvDBHost     = "ACCSWAP_DB_HOST"
	EnvDBUser     = "ACCSWAP_DB_USER"
	EnvDBName     = "ACCSWAP_DB_NAME"
	EnvRedisURL   = "ACCSWAP_REDIS_URL"
	EnvJWTSecret  = "ACCSWAP_JWT_SECRET"
	EnvJWTIssuer  = "ACCSWAP_JWT_ISSUER"
	EnvJWTExpMins = "ACCSWAP_JWT_EXPIRATION_MINUTES"

	EnvCredentialKey         = "ACCSWAP_CREDENTIAL_KEY"
	EnvRazorpayKeyID         = "ACCSWAP_RAZORPAY_KEY_ID"
	EnvRazorpayKeySecret     = "ACCSWAP_RAZORPAY_KEY_SECRET"
	EnvRazorpayWebhookSecret = "ACCSWAP_RAZORPAY_WEBHOOK_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
