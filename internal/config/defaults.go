package config

// Default configuration values.
const (
	DefaultBaseURL        = "http://localhost:8080"
	DefaultRequestTimeout = "30s"
	DefaultConnectTimeout = "10s"
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = "250ms"
	DefaultMaxBackoff     = "2s"
	DefaultNavigateDelay  = "500ms"
	DefaultSchemaPage     = "/tables"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
	DefaultLogOutput      = "stderr"
)

// DefaultTables are the tables of the recipe database the backend serves.
var DefaultTables = []string{
	"item",
	"recipe",
	"method",
	"nutrient_lu",
	"nutrient_cat_lu",
	"unit_lu",
	"tag_lu",
	"timing_lu",
	"nutrition_junc",
	"conversion_junc",
	"recipe_item_junc",
	"tag_junc",
	"timing_junc",
	"method_junc",
}

// defaultValues returns the defaults as flat koanf keys.
func defaultValues() map[string]interface{} {
	return map[string]interface{}{
		"backend.base_url":        DefaultBaseURL,
		"backend.request_timeout": DefaultRequestTimeout,
		"connect.timeout":         DefaultConnectTimeout,
		"connect.max_retries":     DefaultMaxRetries,
		"connect.initial_backoff": DefaultInitialBackoff,
		"connect.max_backoff":     DefaultMaxBackoff,
		"connect.navigate_delay":  DefaultNavigateDelay,
		"connect.schema_page":     DefaultSchemaPage,
		"intake.extensions":       []string{".csv"},
		"intake.start_dir":        "",
		"tables":                  append([]string(nil), DefaultTables...),
		"log.level":               DefaultLogLevel,
		"log.format":              DefaultLogFormat,
		"log.output":              DefaultLogOutput,
		"log.file":                "",
		"store.endpoint":          "",
		"store.access_key":        "",
		"store.secret_key":        "",
		"store.use_ssl":           false,
		"store.region":            "",
		"store.bucket":            "",
		"store.prefix":            "",
		"store.staging_dir":       "",
	}
}
