package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/fairdraw/internal/flagx"
	"github.com/dmitrijs2005/fairdraw/internal/timex"
)

// JsonConfig is the intermediate DTO for reading JSON configuration files.
// Interval fields use timex.Duration so both "30s" strings and integer
// nanoseconds parse; values are copied into the runtime Config afterwards.
type JsonConfig struct {
	EndpointAddrHTTP           string         `json:"endpoint_addr_http"`
	DatabaseDSN                string         `json:"database_dsn"`
	SecretKey                  string         `json:"secret_key"`
	AdminPassword              string         `json:"admin_password"`
	AdminTokenValidityDuration timex.Duration `json:"admin_token_validity_duration"`
	SchedulerInterval          timex.Duration `json:"scheduler_interval"`
	SchedulerBatchSize         int            `json:"scheduler_batch_size"`
	S3RootUser                 string         `json:"s3_root_user"`
	S3RootPassword             string         `json:"s3_root_password"`
	S3Bucket                   string         `json:"s3_bucket"`
	S3Region                   string         `json:"s3_region"`
	S3BaseEndpoint             string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration from the JSON file given via -c/-config.
// If no flag is set, nothing is loaded. Read or parse failures panic; a
// half-applied config file is worse than a crash at startup.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AdminPassword = c.AdminPassword
	config.AdminTokenValidityDuration = c.AdminTokenValidityDuration.Duration
	config.SchedulerInterval = c.SchedulerInterval.Duration
	config.SchedulerBatchSize = c.SchedulerBatchSize
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
