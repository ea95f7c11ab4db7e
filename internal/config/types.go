package config

// AppConfig holds runtime startup configuration loaded from YAML.
// It is constructed once at process start and passed by reference; nothing
// reads ambient environment state after Load returns.
type AppConfig struct {
	Port           int            `yaml:"port"`
	DSN            string         `yaml:"dsn"` // MySQL DSN
	RedisURL       string         `yaml:"redis_url"`
	Env            string         `yaml:"env"` // "development" | "production"
	BaseDomain     string         `yaml:"base_domain"`
	Protocol       string         `yaml:"protocol"`
	JWTSecret      string         `yaml:"jwt_secret"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
	Wiki           WikiConfig     `yaml:"wiki"`
	Uploads        UploadsConfig  `yaml:"uploads"`
	S3             S3Config       `yaml:"s3"`
}

// WikiConfig points at the MediaWiki farm backing tenant sites.
type WikiConfig struct {
	// FarmAPI is the api.php endpoint of the platform wiki used for tenant
	// lifecycle actions (createwiki/managewiki) and the global search index.
	FarmAPI        string `yaml:"farm_api"`
	AdminToken     string `yaml:"admin_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// UploadsConfig controls the local fallback store for uploaded assets.
type UploadsConfig struct {
	Dir        string `yaml:"dir"`
	PublicBase string `yaml:"public_base"`
}

// S3Config enables the optional S3 storage backend for uploads.
type S3Config struct {
	Enable     bool   `yaml:"enable"`
	Endpoint   string `yaml:"endpoint"`
	Region     string `yaml:"region"`
	Bucket     string `yaml:"bucket"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	PublicBase string `yaml:"public_base"`
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }

// SubdomainURL returns the public URL for a tenant subdomain.
func (c *AppConfig) SubdomainURL(subdomain string) string {
	return c.Protocol + "://" + subdomain + "." + c.BaseDomain
}

// WikiAPIURL derives the per-tenant wiki api.php endpoint.
func (c *AppConfig) WikiAPIURL(subdomain string) string {
	return c.SubdomainURL(subdomain) + "/api.php"
}
