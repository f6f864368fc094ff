package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophaccounts/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for JSON/YAML decoding. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
// Zero values are treated as "not set" and leave the current value alone.
type FileConfig struct {
	EndpointAddrGRPC                string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	EndpointAddrHTTP                string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	DatabaseDSN                     string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                       string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration     timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration    timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	ActivationTokenValidityDuration timex.Duration `json:"activation_token_validity_duration" yaml:"activation_token_validity_duration"`
	BcryptCost                      int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	LogLevel                        string         `json:"log_level" yaml:"log_level"`
	Mailer                          string         `json:"mailer" yaml:"mailer"`
	MailFrom                        string         `json:"mail_from" yaml:"mail_from"`
	S3RootUser                      string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword                  string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                        string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                        string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint                  string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
}

// parseFile overlays values from the JSON or YAML file at path onto config.
// The format is chosen by extension: .yaml/.yml is YAML, anything else JSON.
// An empty path is a no-op.
func parseFile(config *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, fc.DatabaseDSN)
	setString(&config.SecretKey, fc.SecretKey)
	setString(&config.LogLevel, fc.LogLevel)
	setString(&config.Mailer, fc.Mailer)
	setString(&config.MailFrom, fc.MailFrom)
	setString(&config.S3RootUser, fc.S3RootUser)
	setString(&config.S3RootPassword, fc.S3RootPassword)
	setString(&config.S3Bucket, fc.S3Bucket)
	setString(&config.S3Region, fc.S3Region)
	setString(&config.S3BaseEndpoint, fc.S3BaseEndpoint)

	if fc.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
	if fc.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = fc.RefreshTokenValidityDuration.Duration
	}
	if fc.ActivationTokenValidityDuration.Duration > 0 {
		config.ActivationTokenValidityDuration = fc.ActivationTokenValidityDuration.Duration
	}
	if fc.BcryptCost > 0 {
		config.BcryptCost = fc.BcryptCost
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
