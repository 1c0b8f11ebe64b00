package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lexora/lexora_backend/config"
	"github.com/lexora/lexora_backend/models"
)

// SMSService sends text messages through the BestSMSBulk HTTP API
type SMSService struct {
	Username string
	Password string
	SenderID string
	APIPath  string
	Client   *http.Client
	log      *zap.Logger
}

// SMSResponse represents the response from BestSMSBulk API
type SMSResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"message_id"`
		Cost      string `json:"cost"`
	} `json:"data"`
}

func NewSMSService(s *config.Settings, log *zap.Logger) *SMSService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SMSService{
		Username: s.SMSUsername,
		Password: s.SMSPassword,
		SenderID: s.SMSSenderID,
		APIPath:  s.SMSAPIURL,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// Enabled is false until credentials are configured
func (s *SMSService) Enabled() bool {
	return s.Username != "" && s.Password != "" && s.APIPath != ""
}

// Send delivers message to phoneNumber
func (s *SMSService) Send(ctx context.Context, phoneNumber, message string) error {
	if !s.Enabled() {
		return errors.New("sms service is not configured")
	}
	if !strings.HasPrefix(phoneNumber, "+") {
		phoneNumber = "+" + phoneNumber
	}

	params := url.Values{}
	params.Set("username", s.Username)
	params.Set("password", s.Password)
	params.Set("senderid", s.SenderID)
	params.Set("destination", phoneNumber)
	params.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.APIPath+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("User-Agent", "Lexora-SMS-Service/1.0")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var smsResp SMSResponse
	if err := json.Unmarshal(body, &smsResp); err != nil {
		// the gateway sometimes answers with plain text
		text := strings.ToLower(strings.TrimSpace(string(body)))
		if strings.Contains(text, "success") || strings.Contains(text, "sent") {
			s.log.Debug("sms sent", zap.String("destination", phoneNumber))
			return nil
		}
		return fmt.Errorf("failed to parse SMS response: %w", err)
	}
	if smsResp.Status == "success" || smsResp.Status == "sent" {
		s.log.Debug("sms sent", zap.String("destination", phoneNumber), zap.String("messageId", smsResp.Data.MessageID))
		return nil
	}
	return fmt.Errorf("SMS sending failed: %s", smsResp.Message)
}

// TokenRegisteredMessage is the text a customer receives once their token is on file
func TokenRegisteredMessage(customer models.Customer, salesman *models.User) string {
	return fmt.Sprintf("Dear %s, your LEXORA token %s has been registered on %s by %s. Thank you for choosing LEXORA.",
		customer.Name,
		customer.TokenSerial,
		customer.SaleDate.Format("02 Jan 2006"),
		salesman.FullName,
	)
}

// OnCustomerRegistered texts the customer their token confirmation
func (s *SMSService) OnCustomerRegistered(ctx context.Context, result *CascadeResult, salesman *models.User) error {
	if !s.Enabled() || result.Customer.Phone == "" {
		return nil
	}
	return s.Send(ctx, result.Customer.Phone, TokenRegisteredMessage(result.Customer, salesman))
}
