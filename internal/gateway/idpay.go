package gateway

import (
	"context"
	"encoding/json"
)

// Config is the immutable per-request view of the gateway settings.
type Config struct {
	Endpoint       string
	APIKey         string
	Sandbox        bool
	Reseller       string
	SuccessMessage string
	FailedMessage  string
}

func (c Config) PaymentEndpoint() string { return c.Endpoint + "/payment" }

func (c Config) VerifyEndpoint() string { return c.Endpoint + "/payment/verify" }

func (c Config) headers() map[string]string {
	sandbox := "false"
	if c.Sandbox {
		sandbox = "true"
	}
	return map[string]string{
		"X-API-KEY": c.APIKey,
		"X-SANDBOX": sandbox,
	}
}

// CreateRequest is the transaction-creation payload.
type CreateRequest struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Mail     string `json:"mail"`
	Desc     string `json:"desc"`
	Callback string `json:"callback"`
	Reseller string `json:"reseller"`
}

// CreateResult is the decoded creation response plus the HTTP status, left
// for the caller to interpret (201 + id + link is the success shape).
type CreateResult struct {
	HTTPStatus int

	ID   string `json:"id"`
	Link string `json:"link"`

	ErrorCode    FlexString `json:"error_code"`
	ErrorMessage string     `json:"error_message"`
}

// VerifyResult is the decoded verification response plus the HTTP status.
// Every field may be absent; absent fields decode to the empty string.
type VerifyResult struct {
	HTTPStatus int

	Status  FlexString `json:"status"`
	TrackID FlexString `json:"track_id"`
	ID      FlexString `json:"id"`
	OrderID FlexString `json:"order_id"`
	Amount  FlexString `json:"amount"`
	Payment struct {
		CardNo       FlexString `json:"card_no"`
		HashedCardNo FlexString `json:"hashed_card_no"`
		Date         FlexString `json:"date"`
	} `json:"payment"`

	ErrorCode    FlexString `json:"error_code"`
	ErrorMessage string     `json:"error_message"`
}

// IDPay talks to the remote gateway's payment API.
type IDPay struct {
	client *Client
}

func NewIDPay(client *Client) *IDPay {
	return &IDPay{client: client}
}

// CreateTransaction registers a new remote transaction. An error is
// returned only for transport-level failure; HTTP rejections come back in
// the result for the caller to inspect.
func (g *IDPay) CreateTransaction(ctx context.Context, cfg Config, req CreateRequest) (*CreateResult, error) {
	resp, err := g.client.Post(ctx, cfg.PaymentEndpoint(), req, cfg.headers())
	if err != nil {
		return nil, err
	}

	result := &CreateResult{HTTPStatus: resp.StatusCode}
	// A malformed body is tolerated; the zero fields fail the caller's
	// 201+id+link check.
	_ = json.Unmarshal(resp.Body, result)
	return result, nil
}

// VerifyTransaction performs the authoritative server-side verification of
// a transaction after the payer returns from the gateway.
func (g *IDPay) VerifyTransaction(ctx context.Context, cfg Config, transactionID, orderID string) (*VerifyResult, error) {
	payload := map[string]string{
		"id":       transactionID,
		"order_id": orderID,
	}

	resp, err := g.client.Post(ctx, cfg.VerifyEndpoint(), payload, cfg.headers())
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{HTTPStatus: resp.StatusCode}
	_ = json.Unmarshal(resp.Body, result)
	return result, nil
}
