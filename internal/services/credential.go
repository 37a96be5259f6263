package services

import (
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

const (
	// Standard Azurite account name and key
	azuriteAccountName = "devstoreaccount1"
	azuriteAccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// storageAuth selects how a storage client authenticates against serviceURL.
// Plain http endpoints are Azurite and use the well-known shared key;
// everything else uses the managed identity.
type storageAuth struct {
	serviceURL string
	local      bool
	account    string
	key        string
}

func authFor(serviceURL string) storageAuth {
	a := storageAuth{serviceURL: serviceURL, local: isLocal(serviceURL)}
	if a.local {
		a.account, a.key = azuriteAccountName, azuriteAccountKey
	}
	return a
}

// isLocal checks if the service URL is a plain http (Azurite) endpoint.
func isLocal(serviceURL string) bool {
	return strings.HasPrefix(serviceURL, "http://")
}

// newDefaultAzureCredential creates a new DefaultAzureCredential.
func newDefaultAzureCredential() (azcore.TokenCredential, error) {
	slog.Info("using default azure credentials")
	return azidentity.NewDefaultAzureCredential(nil)
}
