package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/guonaihong/gout"
	"github.com/guonaihong/gout/dataflow"

	"github.com/bodegaapp/bodega-api/internal/config"
)

var ErrUnknownTemplate = errors.New("unknown whatsapp template")

// templateParams lists, per template, the data keys in the order the
// approved template body expects its {{n}} placeholders.
var templateParams = map[string][]string{
	TemplatePurchaseReceipt:      {"customerName", "itemsList", "total", "date", "paymentMethod"},
	TemplateCreditPaymentReceipt: {"customerName", "amount", "remainingBalance", "date"},
	TemplatePaymentReminder:      {"customerName", "amount", "dueDate"},
}

// CloudAPISender delivers template messages through the WhatsApp Business
// Cloud API.
type CloudAPISender struct {
	client        *dataflow.Gout
	baseURL       string
	phoneNumberID string
	accessToken   string
	language      string
}

func NewCloudAPISender(conf *config.WhatsAppConfig) *CloudAPISender {
	return &CloudAPISender{
		client:        gout.New(&http.Client{Timeout: conf.Timeout}),
		baseURL:       strings.TrimRight(conf.BaseURL, "/"),
		phoneNumberID: conf.PhoneNumberID,
		accessToken:   conf.AccessToken,
		language:      conf.Language,
	}
}

type cloudParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type cloudComponent struct {
	Type       string           `json:"type"`
	Parameters []cloudParameter `json:"parameters"`
}

type cloudLanguage struct {
	Code string `json:"code"`
}

type cloudTemplate struct {
	Name       string           `json:"name"`
	Language   cloudLanguage    `json:"language"`
	Components []cloudComponent `json:"components"`
}

type cloudRequest struct {
	MessagingProduct string        `json:"messaging_product"`
	To               string        `json:"to"`
	Type             string        `json:"type"`
	Template         cloudTemplate `json:"template"`
}

type cloudResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (s *CloudAPISender) Send(ctx context.Context, msg Message) error {
	keys, ok := templateParams[msg.TemplateName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTemplate, msg.TemplateName)
	}

	params := make([]cloudParameter, len(keys))
	for i, key := range keys {
		// Template parameters may not contain new lines.
		text := strings.ReplaceAll(msg.TemplateData[key], "\n", "; ")
		params[i] = cloudParameter{Type: "text", Text: text}
	}

	body := cloudRequest{
		MessagingProduct: "whatsapp",
		To:               NormalizePhone(msg.To),
		Type:             "template",
		Template: cloudTemplate{
			Name:     msg.TemplateName,
			Language: cloudLanguage{Code: s.language},
			Components: []cloudComponent{
				{Type: "body", Parameters: params},
			},
		},
	}

	var (
		resp cloudResponse
		code int
	)
	err := s.client.POST(fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneNumberID)).
		WithContext(ctx).
		SetHeader(gout.H{"Authorization": "Bearer " + s.accessToken}).
		SetJSON(body).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return fmt.Errorf("cloud api request -> %w", err)
	}

	if code >= http.StatusMultipleChoices {
		if resp.Error != nil {
			return fmt.Errorf("cloud api responded %d: %s (code %d)", code, resp.Error.Message, resp.Error.Code)
		}

		return fmt.Errorf("cloud api responded %d", code)
	}

	return nil
}

// NormalizePhone keeps only digits and prefixes Peruvian mobile numbers
// (9 digits starting with 9) with the 51 country code.
func NormalizePhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}

		return -1
	}, phone)

	if len(digits) == 9 && digits[0] == '9' {
		return "51" + digits
	}

	return digits
}

// NewSender builds the sender selected by conf.Provider.
func NewSender(conf *config.WhatsAppConfig) Sender {
	if conf.Provider == "cloudapi" {
		return NewCloudAPISender(conf)
	}

	return LogSender{}
}
