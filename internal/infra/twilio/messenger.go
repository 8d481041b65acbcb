// Package twilio places voice calls and sends SMS through the Twilio REST API.
package twilio

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/ports"
)

// apiClient is the part of the Twilio v2010 API the messenger uses.
type apiClient interface {
	CreateCall(params *api.CreateCallParams) (*api.ApiV2010Call, error)
	CreateMessage(params *api.CreateMessageParams) (*api.ApiV2010Message, error)
}

type Messenger struct {
	api apiClient
}

var _ ports.Messenger = (*Messenger)(nil)

// New builds a messenger from account credentials.
func New(cfg domain.TwilioConfig) (*Messenger, error) {
	if strings.TrimSpace(cfg.AccountSID) == "" || strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, &domain.OpError{
			Op:   "twilio.new",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("alert.twilio.account_sid and auth_token are required: %w", domain.ErrInvalidConfig),
		}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &Messenger{api: client.Api}, nil
}

// PlaceCall starts an outbound call that plays the TwiML document at payload.
func (m *Messenger) PlaceCall(ctx context.Context, to, from, payload string) (domain.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return domain.Receipt{}, err
	}

	params := &api.CreateCallParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetUrl(payload)

	resp, err := m.api.CreateCall(params)
	if err != nil {
		return domain.Receipt{}, dispatchErr("twilio.call", to, err)
	}
	return receipt(resp.Sid), nil
}

func (m *Messenger) SendMessage(ctx context.Context, to, from, body string) (domain.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return domain.Receipt{}, err
	}

	params := &api.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := m.api.CreateMessage(params)
	if err != nil {
		return domain.Receipt{}, dispatchErr("twilio.message", to, err)
	}
	return receipt(resp.Sid), nil
}

func dispatchErr(op, to string, err error) error {
	return &domain.OpError{Op: op, Kind: domain.KindDispatch, Path: to, Err: err}
}

// receipt reports a request Twilio accepted; delivery status arrives later via callbacks.
func receipt(sid *string) domain.Receipt {
	r := domain.Receipt{Status: "accepted"}
	if sid != nil {
		r.ID = *sid
	}
	return r
}
