package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	// BaseDomain is the platform apex domain tenant hostnames are derived
	// from, e.g. subdomain "acmeco" becomes "acmeco.mausamcrm.site".
	BaseDomain string

	AuthJWTSecret    string
	EntitlementToken string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	AWS AWSConfig
}

// AWSConfig carries the settings the tenant provisioners need to reach the
// shared VPC, load balancer and hosted zone.
type AWSConfig struct {
	Region          string
	AMIID           string
	InstanceType    string
	SubnetID        string
	SecurityGroupID string
	VPCID           string

	HTTPListenerARN  string
	HTTPSListenerARN string

	HostedZoneID string
	DNSEnabled   bool

	TablePrefix string
}

// Module provides the configuration to the fx graph.
var Module = fx.Provide(Load)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "platform"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		BaseDomain: getenv("PLATFORM_BASE_DOMAIN", "mausamcrm.site"),

		AuthJWTSecret:    strings.TrimSpace(getenv("AUTH_JWT_SECRET", "")),
		EntitlementToken: strings.TrimSpace(getenv("SUBSCRIPTION_VALIDATION_SECRET", "")),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "platform"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		AWS: AWSConfig{
			Region:           getenv("AWS_REGION", "us-east-2"),
			AMIID:            getenv("AWS_AMI_ID", ""),
			InstanceType:     getenv("AWS_INSTANCE_TYPE", "t2.micro"),
			SubnetID:         getenv("AWS_SUBNET_ID", ""),
			SecurityGroupID:  getenv("AWS_SECURITY_GROUP_ID", ""),
			VPCID:            getenv("AWS_VPC_ID", ""),
			HTTPListenerARN:  getenv("AWS_LISTENER_ARN_HTTP", ""),
			HTTPSListenerARN: getenv("AWS_LISTENER_ARN_HTTPS", ""),
			HostedZoneID:     getenv("AWS_HOSTED_ZONE_ID", ""),
			DNSEnabled:       getenvBool("AWS_DNS_ENABLED", false),
			TablePrefix:      getenv("TENANT_TABLE_PREFIX", "NestCRM"),
		},
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		switch value {
		case "yes", "y", "on":
			return true
		case "no", "n", "off":
			return false
		}
		return def
	}
	return parsed
}
