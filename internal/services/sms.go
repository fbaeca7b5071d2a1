package services

import (
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/example/safemeet/internal/utils"
)

// SMSService sends text messages through Twilio. A single send is one
// attempt with no retry or delivery receipt.
type SMSService struct {
	client *twilio.RestClient
	from   string
}

// NewSMSService creates the Twilio-backed SMS channel. With empty
// credentials it degrades to log-only mode so development environments
// work without an account.
func NewSMSService(accountSID, authToken, from string) *SMSService {
	if accountSID == "" || authToken == "" || from == "" {
		log.Println("[SMS] Twilio not configured, messages will be logged only")
		return &SMSService{}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &SMSService{client: client, from: from}
}

// Send delivers one SMS to the given phone number.
func (s *SMSService) Send(to, body string) error {
	to = utils.NormalizePhone(to)

	if s.client == nil {
		log.Printf("[SMS] (dev) to %s: %s", to, body)
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(s.from)
	params.SetTo(to)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("[SMS] failed to send to %s: %v", to, err)
		return err
	}

	if resp.Sid != nil {
		log.Printf("[SMS] sent to %s, SID: %s", to, *resp.Sid)
	}
	return nil
}
