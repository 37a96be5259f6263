package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/rocjay1/spend-sentinel/internal/config"
	"github.com/rocjay1/spend-sentinel/internal/models"
	"github.com/shopspring/decimal"
)

const communicationScope = "https://communication.azure.com//.default"

// EmailService handles sending emails via Azure Communication Services REST API.
type EmailService struct {
	endpoint   string
	sender     string
	cred       azcore.TokenCredential
	httpClient *http.Client
}

// NewEmailService creates a new EmailService instance.
// If cred is nil, it defaults to using DefaultAzureCredential.
func NewEmailService(cfg *config.Config, cred azcore.TokenCredential) (*EmailService, error) {
	if cfg.CommunicationServicesEndpoint == "" {
		return nil, fmt.Errorf("COMMUNICATION_SERVICES_ENDPOINT environment variable is required")
	}
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("SENDER_EMAIL environment variable is required")
	}

	if cred == nil {
		var err error
		cred, err = newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
	}

	return &EmailService{
		endpoint:   cfg.CommunicationServicesEndpoint,
		sender:     cfg.SenderEmail,
		cred:       cred,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type emailAddress struct {
	Address string `json:"address"`
}

type emailRecipients struct {
	To []emailAddress `json:"to"`
}

type emailContent struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type emailRequest struct {
	SenderAddress string          `json:"senderAddress"`
	Content       emailContent    `json:"content"`
	Recipients    emailRecipients `json:"recipients"`
}

// SendEmail sends an email to the specified recipients using the REST API.
func (s *EmailService) SendEmail(ctx context.Context, to []string, subject, body string) error {
	token, err := s.cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{communicationScope},
	})
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	recipients := make([]emailAddress, len(to))
	for i, email := range to {
		recipients[i] = emailAddress{Address: email}
	}

	jsonBody, err := json.Marshal(emailRequest{
		SenderAddress: s.sender,
		Content:       emailContent{Subject: subject, HTML: body},
		Recipients:    emailRecipients{To: recipients},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	url := fmt.Sprintf("%s/emails:send?api-version=2023-03-31", s.endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.Token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	slog.Info("email sent successfully", "recipients", to, "subject", subject)
	return nil
}

// SendErrorEmail reports the rows an upload had to skip.
func (s *EmailService) SendErrorEmail(ctx context.Context, recipients []string, errors []string) error {
	return s.SendEmail(ctx, recipients, "Spend Sentinel - Upload Issues", RenderErrorBody(errors))
}

// SendDuplicateReport mails the unresolved flags of clusters.
func (s *EmailService) SendDuplicateReport(ctx context.Context, recipients []string, clusters []models.DuplicateCluster) error {
	flagged, total := 0, decimal.Zero
	for _, c := range clusters {
		flagged += len(c.Suspicious)
		total = total.Add(c.UnresolvedTotal)
	}
	subject := fmt.Sprintf("Spend Sentinel - %d suspicious charge(s), $%s", flagged, total.StringFixed(2))
	return s.SendEmail(ctx, recipients, subject, RenderDuplicateReport(clusters))
}
