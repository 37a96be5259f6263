// Package config reads the host service settings from the environment.
package config

import (
	"fmt"
	"os"
)

// Config holds every setting the host service reads at startup.
type Config struct {
	TableServiceURL   string
	TransactionsTable string
	AccountsTable     string
	DecisionsTable    string

	BlobServiceURL   string
	UploadsContainer string

	QueueServiceURL string
	ProcessQueue    string

	CommunicationServicesEndpoint string
	SenderEmail                   string
	UserEmail                     string

	Port string
}

// Load reads the environment, applying the local development defaults.
func Load() *Config {
	return &Config{
		TableServiceURL:   os.Getenv("TABLE_SERVICE_URL"),
		TransactionsTable: getenv("TRANSACTIONS_TABLE", "transactions"),
		AccountsTable:     getenv("ACCOUNTS_TABLE", "accounts"),
		DecisionsTable:    getenv("DECISIONS_TABLE", "decisions"),

		BlobServiceURL:   os.Getenv("BLOB_SERVICE_URL"),
		UploadsContainer: getenv("UPLOADS_CONTAINER", "uploads"),

		QueueServiceURL: os.Getenv("QUEUE_SERVICE_URL"),
		ProcessQueue:    getenv("PROCESS_QUEUE", "csv-processing"),

		CommunicationServicesEndpoint: os.Getenv("COMMUNICATION_SERVICES_ENDPOINT"),
		SenderEmail:                   os.Getenv("SENDER_EMAIL"),
		UserEmail:                     os.Getenv("USER_EMAIL"),

		Port: getenv("FUNCTIONS_CUSTOMHANDLER_PORT", "8080"),
	}
}

// Validate checks the settings the storage services cannot start without.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"TABLE_SERVICE_URL", c.TableServiceURL},
		{"BLOB_SERVICE_URL", c.BlobServiceURL},
		{"QUEUE_SERVICE_URL", c.QueueServiceURL},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s environment variable is required", r.name)
		}
	}
	return nil
}

// EmailEnabled reports whether the notification settings are complete.
func (c *Config) EmailEnabled() bool {
	return c.CommunicationServicesEndpoint != "" && c.SenderEmail != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); len(v) != 0 {
		return v
	}
	return fallback
}
